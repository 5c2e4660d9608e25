package secure

import (
	"sync"

	"github.com/awnumar/memguard"
)

// SecureBuffer stores a credential value encrypted in memory. The value
// is only decrypted for the lifetime of the LockedBuffer returned by
// Open, which the caller must Destroy.
type SecureBuffer struct {
	enclave   *memguard.Enclave
	mu        sync.RWMutex
	destroyed bool
}

// NewSecureBuffer copies data into a protected memory region. memguard
// wipes the source slice, so callers must not reuse it.
func NewSecureBuffer(data []byte) *SecureBuffer {
	return &SecureBuffer{enclave: memguard.NewEnclave(data)}
}

// NewSecureBufferFromString seals a string value. The string itself
// cannot be wiped; prefer the byte form where the caller controls the
// allocation.
func NewSecureBufferFromString(value string) *SecureBuffer {
	return NewSecureBuffer([]byte(value))
}

// Open decrypts the buffer. The caller must Destroy the returned
// LockedBuffer when done with the plaintext.
func (s *SecureBuffer) Open() (*memguard.LockedBuffer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.destroyed {
		return memguard.NewBufferFromBytes([]byte{}), nil
	}
	return s.enclave.Open()
}

// WithValue runs fn with the decrypted value, destroying the plaintext
// buffer afterwards regardless of outcome.
func (s *SecureBuffer) WithValue(fn func(value []byte) error) error {
	locked, err := s.Open()
	if err != nil {
		return err
	}
	defer locked.Destroy()
	return fn(locked.Bytes())
}

// Destroy prevents further use of the buffer. Idempotent; after Destroy
// Open returns an empty buffer. The encrypted enclave itself is safe to
// leave for the garbage collector, with memguard.Purge at exit for full
// cleanup.
func (s *SecureBuffer) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.destroyed {
		return
	}
	s.enclave = nil
	s.destroyed = true
}
