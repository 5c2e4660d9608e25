package stores

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileStore(t *testing.T, passphrase string) (*EncryptedFileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "secrets.enc")
	store, err := NewEncryptedFileStore(map[string]any{
		"path":       path,
		"passphrase": passphrase,
	})
	require.NoError(t, err)
	return store, path
}

func TestEncryptedFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, path := newTestFileStore(t, "correct horse battery staple")

	_, err := store.Get(ctx, "OPENCLAW_ANTHROPIC_KEY")
	assert.True(t, IsNotFound(err))

	require.NoError(t, store.Set(ctx, "OPENCLAW_ANTHROPIC_KEY", "sk-ant-secret"))
	require.NoError(t, store.Set(ctx, "OPENCLAW_GITHUB_TOKEN", "ghp_secret"))

	got, err := store.Get(ctx, "OPENCLAW_ANTHROPIC_KEY")
	require.NoError(t, err)
	assert.Equal(t, "sk-ant-secret", got)

	// Secrets must not be readable from the file itself
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "sk-ant-secret")
	assert.NotContains(t, string(raw), "ghp_secret")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestEncryptedFileStorePersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	store, path := newTestFileStore(t, "pass-one")

	require.NoError(t, store.Set(ctx, "OPENCLAW_KEY", "value-1"))

	reopened, err := NewEncryptedFileStore(map[string]any{
		"path":       path,
		"passphrase": "pass-one",
	})
	require.NoError(t, err)

	got, err := reopened.Get(ctx, "OPENCLAW_KEY")
	require.NoError(t, err)
	assert.Equal(t, "value-1", got)
}

func TestEncryptedFileStoreWrongPassphrase(t *testing.T) {
	ctx := context.Background()
	store, path := newTestFileStore(t, "right")

	require.NoError(t, store.Set(ctx, "OPENCLAW_KEY", "value"))

	wrong, err := NewEncryptedFileStore(map[string]any{
		"path":       path,
		"passphrase": "wrong",
	})
	require.NoError(t, err)

	_, err = wrong.Get(ctx, "OPENCLAW_KEY")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot decrypt")
	require.Error(t, wrong.Validate(ctx))
}

func TestEncryptedFileStorePassphraseFromEnv(t *testing.T) {
	t.Setenv(passphraseEnvVar, "env-pass")
	path := filepath.Join(t.TempDir(), "secrets.enc")

	store, err := NewEncryptedFileStore(map[string]any{"path": path})
	require.NoError(t, err)
	require.NoError(t, store.Set(context.Background(), "OPENCLAW_KEY", "v"))
}

func TestEncryptedFileStoreRequiresPassphrase(t *testing.T) {
	t.Setenv(passphraseEnvVar, "")

	_, err := NewEncryptedFileStore(map[string]any{
		"path": filepath.Join(t.TempDir(), "secrets.enc"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "passphrase")
}

func TestEncryptedFileStoreValidateMissingFile(t *testing.T) {
	store, _ := newTestFileStore(t, "pass")
	// A store that has never been written to is still valid
	require.NoError(t, store.Validate(context.Background()))
}
