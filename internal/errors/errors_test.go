package errors_test

import (
	goerrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openclaw/clawvault/internal/errors"
)

// TestUserErrorFormatting verifies UserError displays properly
func TestUserErrorFormatting(t *testing.T) {
	t.Parallel()

	err := errors.UserError{
		Message:    "Migration failed",
		Details:    "Connection timeout",
		Suggestion: "Check network connectivity",
	}

	errMsg := err.Error()

	assert.Contains(t, errMsg, "Migration failed")
	assert.Contains(t, errMsg, "Connection timeout")
	assert.Contains(t, errMsg, "Check network connectivity")
}

// TestFormatErrorCarriesOnlyPath verifies FormatError names the file without
// including any of its content
func TestFormatErrorCarriesOnlyPath(t *testing.T) {
	t.Parallel()

	err := errors.FormatError{
		Path:    "/srv/agents/bot-1/agent/auth-profiles.json",
		Message: "root is not an object",
	}

	errMsg := err.Error()

	assert.Contains(t, errMsg, "/srv/agents/bot-1/agent/auth-profiles.json")
	assert.Contains(t, errMsg, "root is not an object")
}

// TestNameErrorFormatting verifies NameError identifies the offending name
func TestNameErrorFormatting(t *testing.T) {
	t.Parallel()

	err := errors.NameError{Name: "9BAD-NAME"}

	assert.Contains(t, err.Error(), "9BAD-NAME")
	assert.Contains(t, err.Error(), "^[A-Z][A-Z0-9_]*$")
}

// TestStorageErrorContext verifies StorageError includes all non-secret
// context and the wrapped cause, and never the secret value
func TestStorageErrorContext(t *testing.T) {
	t.Parallel()

	secretValue := "sk-ant-plaintext-value"
	cause := fmt.Errorf("write rejected")

	err := errors.StorageError{
		Store:     "keyring",
		AgentID:   "bot-1",
		ProfileID: "anthropic:default",
		Field:     "key",
		EnvVar:    "OPENCLAW_ANTHROPIC_ANTHROPIC_DEFAULT_KEY",
		Provider:  "anthropic",
		Path:      "/srv/agents/bot-1/agent/auth-profiles.json",
		Err:       cause,
	}

	errMsg := err.Error()

	assert.Contains(t, errMsg, "bot-1")
	assert.Contains(t, errMsg, "anthropic:default")
	assert.Contains(t, errMsg, "key")
	assert.Contains(t, errMsg, "OPENCLAW_ANTHROPIC_ANTHROPIC_DEFAULT_KEY")
	assert.Contains(t, errMsg, "write rejected")
	assert.NotContains(t, errMsg, secretValue)

	assert.True(t, goerrors.Is(err, cause), "StorageError should unwrap to its cause")
}

// TestDiscoveryErrorUnwrap verifies the underlying filesystem error survives
func TestDiscoveryErrorUnwrap(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("permission denied")
	err := errors.DiscoveryError{Root: "/srv/openclaw", Err: cause}

	assert.Contains(t, err.Error(), "/srv/openclaw")
	assert.True(t, goerrors.Is(err, cause))
}

// TestIsRetryable checks retryable error classification
func TestIsRetryable(t *testing.T) {
	t.Parallel()

	assert.True(t, errors.IsRetryable(fmt.Errorf("request timeout")))
	assert.True(t, errors.IsRetryable(fmt.Errorf("ThrottlingException: slow down")))
	assert.False(t, errors.IsRetryable(fmt.Errorf("access denied")))
	assert.False(t, errors.IsRetryable(nil))
}
