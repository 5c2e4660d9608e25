package stores

import (
	"context"
	"errors"
	"os"
	"runtime"

	"github.com/zalando/go-keyring"

	claverrors "github.com/openclaw/clawvault/internal/errors"
)

// defaultKeyringService is the service name secrets are filed under in the
// OS keyring (macOS Keychain, Linux Secret Service, Windows Credential
// Manager).
const defaultKeyringService = "clawvault"

// KeyringStore writes secrets to the OS keyring via the platform's native
// backend.
type KeyringStore struct {
	service string
}

// NewKeyringStore creates a keyring store. Config keys:
//
//	service: keyring service name (default "clawvault")
func NewKeyringStore(config map[string]any) *KeyringStore {
	service := defaultKeyringService
	if s, ok := config["service"].(string); ok && s != "" {
		service = s
	}
	return &KeyringStore{service: service}
}

func (k *KeyringStore) Name() string { return "keyring" }

func (k *KeyringStore) Set(_ context.Context, name, value string) error {
	return keyring.Set(k.service, name, value)
}

func (k *KeyringStore) Get(_ context.Context, name string) (string, error) {
	value, err := keyring.Get(k.service, name)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", NotFoundError{Store: k.Name(), Key: name}
		}
		return "", err
	}
	return value, nil
}

// Validate checks the keyring is reachable. On Linux the Secret Service
// needs a desktop session; headless hosts should use the encrypted-file
// store instead.
func (k *KeyringStore) Validate(context.Context) error {
	if runtime.GOOS == "linux" && isHeadless() {
		return claverrors.UserError{
			Message:    "OS keyring requires a desktop session (headless environment detected)",
			Suggestion: "Use the encrypted-file store for servers and CI environments",
		}
	}
	return nil
}

func isHeadless() bool {
	if os.Getenv("SSH_TTY") != "" {
		return true
	}
	if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
		return true
	}
	if os.Getenv("CI") != "" {
		return true
	}
	return false
}
