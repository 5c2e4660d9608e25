package execenv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openclaw/clawvault/internal/authstore"
	"github.com/openclaw/clawvault/internal/logging"
	"github.com/openclaw/clawvault/internal/stores"
)

func writeAuthStore(t *testing.T, content string) *authstore.Document {
	t.Helper()
	path := filepath.Join(t.TempDir(), "auth-profiles.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	doc, err := authstore.Load(path)
	require.NoError(t, err)
	return doc
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	store := stores.NewMockStore()
	require.NoError(t, store.Set(ctx, "OPENCLAW_ANTHROPIC_MAIN_KEY", "sk-ant-1"))
	require.NoError(t, store.Set(ctx, "OPENCLAW_GITHUB_MAIN_KEY", "ghp_1"))

	doc := writeAuthStore(t, `{
  "profiles": {
    "anthropic:main": {"type": "api_key", "key": "${OPENCLAW_ANTHROPIC_MAIN_KEY}"},
    "github:main": {"type": "api_key", "key": "${OPENCLAW_GITHUB_MAIN_KEY}"}
  }
}`)

	executor := New(logging.New(false, true), store)
	env, err := executor.Resolve(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"OPENCLAW_ANTHROPIC_MAIN_KEY": "sk-ant-1",
		"OPENCLAW_GITHUB_MAIN_KEY":    "ghp_1",
	}, env)
}

func TestResolveMissingSecret(t *testing.T) {
	doc := writeAuthStore(t, `{
  "profiles": {
    "anthropic:main": {"type": "api_key", "key": "${OPENCLAW_ANTHROPIC_MAIN_KEY}"}
  }
}`)

	executor := New(logging.New(false, true), stores.NewMockStore())
	_, err := executor.Resolve(context.Background(), doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENCLAW_ANTHROPIC_MAIN_KEY")
	assert.Contains(t, err.Error(), "not in the mock store")
}

func TestResolveIgnoresPlaintextFields(t *testing.T) {
	ctx := context.Background()
	store := stores.NewMockStore()

	// Unmigrated values and non-placeholder strings resolve nothing
	doc := writeAuthStore(t, `{
  "profiles": {
    "anthropic:main": {"type": "api_key", "key": "sk-ant-plaintext"}
  }
}`)

	executor := New(logging.New(false, true), store)
	env, err := executor.Resolve(ctx, doc)
	require.NoError(t, err)
	assert.Empty(t, env)
}

func TestExecNoCommand(t *testing.T) {
	executor := New(logging.New(false, true), stores.NewMockStore())

	err := executor.Exec(context.Background(), ExecOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No command specified")
}

func TestExecUnknownCommand(t *testing.T) {
	executor := New(logging.New(false, true), stores.NewMockStore())

	err := executor.Exec(context.Background(), ExecOptions{
		Command: []string{"clawvault-definitely-not-a-command"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestBuildEnvironmentResolvedWins(t *testing.T) {
	t.Setenv("CLAWVAULT_TEST_VAR", "inherited")

	env := buildEnvironment(map[string]string{"CLAWVAULT_TEST_VAR": "resolved"})

	assert.Contains(t, env, "CLAWVAULT_TEST_VAR=resolved")
	assert.NotContains(t, env, "CLAWVAULT_TEST_VAR=inherited")
}

func TestMaskValue(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "(empty)"},
		{"ab", "**"},
		{"abcd", "a**d"},
		{"abcdefgh", "a******h"},
		{"mysupersecretpassword", "mys********rd"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, maskValue(tt.input), "input %q", tt.input)
	}
}
