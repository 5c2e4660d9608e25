package stores

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/awnumar/memguard"
	"golang.org/x/crypto/scrypt"

	claverrors "github.com/openclaw/clawvault/internal/errors"
)

// passphraseEnvVar supplies the encrypted-file passphrase when it is not
// set in the configuration.
const passphraseEnvVar = "CLAWVAULT_PASSPHRASE"

// scrypt parameters; interactive-use profile.
const (
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
	keyLen  = 32
)

// EncryptedFileStore is the fallback backend for hosts without an OS
// keyring: an AES-256-GCM encrypted JSON map on disk, key derived from a
// passphrase with scrypt. The passphrase is held in a memguard enclave so
// it is encrypted at rest in process memory.
type EncryptedFileStore struct {
	path       string
	passphrase *memguard.Enclave
	mu         sync.Mutex
}

type encryptedFile struct {
	Version int    `json:"version"`
	Salt    string `json:"salt"`
	Nonce   string `json:"nonce"`
	Data    string `json:"data"`
}

// NewEncryptedFileStore creates an encrypted-file store. Config keys:
//
//	path:       secrets file location (default ~/.clawvault/secrets.enc)
//	passphrase: encryption passphrase; CLAWVAULT_PASSPHRASE is consulted
//	            when absent
func NewEncryptedFileStore(config map[string]any) (*EncryptedFileStore, error) {
	path, _ := config["path"].(string)
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		path = filepath.Join(home, ".clawvault", "secrets.enc")
	}

	passphrase, _ := config["passphrase"].(string)
	if passphrase == "" {
		passphrase = os.Getenv(passphraseEnvVar)
	}
	if passphrase == "" {
		return nil, claverrors.UserError{
			Message:    "encrypted-file store needs a passphrase",
			Suggestion: "Set " + passphraseEnvVar + " or the store's passphrase config key",
		}
	}

	return &EncryptedFileStore{
		path:       path,
		passphrase: memguard.NewEnclave([]byte(passphrase)),
	}, nil
}

func (s *EncryptedFileStore) Name() string { return "encrypted-file" }

func (s *EncryptedFileStore) Set(_ context.Context, name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	secrets, err := s.load()
	if err != nil {
		return err
	}
	secrets[name] = value
	return s.save(secrets)
}

func (s *EncryptedFileStore) Get(_ context.Context, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	secrets, err := s.load()
	if err != nil {
		return "", err
	}
	value, ok := secrets[name]
	if !ok {
		return "", NotFoundError{Store: s.Name(), Key: name}
	}
	return value, nil
}

// Validate decrypts the secrets file if it exists, proving the passphrase
// is correct before any migration writes with it.
func (s *EncryptedFileStore) Validate(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.load()
	return err
}

func (s *EncryptedFileStore) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}

	var file encryptedFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}

	salt, err := base64.StdEncoding.DecodeString(file.Salt)
	if err != nil {
		return nil, fmt.Errorf("decoding salt in %s: %w", s.path, err)
	}
	nonce, err := base64.StdEncoding.DecodeString(file.Nonce)
	if err != nil {
		return nil, fmt.Errorf("decoding nonce in %s: %w", s.path, err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(file.Data)
	if err != nil {
		return nil, fmt.Errorf("decoding data in %s: %w", s.path, err)
	}

	gcm, err := s.cipherFor(salt)
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, claverrors.UserError{
			Message:    "cannot decrypt " + s.path,
			Suggestion: "Check the passphrase in " + passphraseEnvVar,
			Err:        err,
		}
	}
	defer wipe(plaintext)

	var secrets map[string]string
	if err := json.Unmarshal(plaintext, &secrets); err != nil {
		return nil, fmt.Errorf("parsing decrypted content of %s: %w", s.path, err)
	}
	return secrets, nil
}

func (s *EncryptedFileStore) save(secrets map[string]string) error {
	plaintext, err := json.Marshal(secrets)
	if err != nil {
		return fmt.Errorf("serializing secrets: %w", err)
	}
	defer wipe(plaintext)

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("generating salt: %w", err)
	}

	gcm, err := s.cipherFor(salt)
	if err != nil {
		return err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("generating nonce: %w", err)
	}

	file := encryptedFile{
		Version: 1,
		Salt:    base64.StdEncoding.EncodeToString(salt),
		Nonce:   base64.StdEncoding.EncodeToString(nonce),
		Data:    base64.StdEncoding.EncodeToString(gcm.Seal(nil, nonce, plaintext, nil)),
	}

	out, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing %s: %w", s.path, err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(s.path), err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, out, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing %s: %w", s.path, err)
	}
	return nil
}

// cipherFor derives the AES-GCM cipher for a given salt, opening the
// passphrase enclave only for the duration of key derivation.
func (s *EncryptedFileStore) cipherFor(salt []byte) (cipher.AEAD, error) {
	buf, err := s.passphrase.Open()
	if err != nil {
		return nil, fmt.Errorf("opening passphrase enclave: %w", err)
	}
	defer buf.Destroy()

	key, err := scrypt.Key(buf.Bytes(), salt, scryptN, scryptR, scryptP, keyLen)
	if err != nil {
		return nil, fmt.Errorf("deriving key: %w", err)
	}
	defer wipe(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
