package migrate_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openclaw/clawvault/internal/migrate"
)

func provisionAgent(t *testing.T, root, agentID, content string) string {
	t.Helper()
	dir := filepath.Join(root, "agents", agentID, "agent")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, "auth-profiles.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDiscoverFindsProvisionedAgents(t *testing.T) {
	root := t.TempDir()
	pathA := provisionAgent(t, root, "agent-a", `{"profiles": {}}`)
	pathB := provisionAgent(t, root, "agent-b", `{"profiles": {}}`)

	// an agent directory without an auth store is not a target
	require.NoError(t, os.MkdirAll(filepath.Join(root, "agents", "agent-c"), 0o755))

	// stray files under agents/ are ignored
	require.NoError(t, os.WriteFile(filepath.Join(root, "agents", "README.md"), []byte("x"), 0o644))

	targets, err := migrate.Discover(root, "")
	require.NoError(t, err)
	require.Len(t, targets, 2)
	assert.Equal(t, migrate.Target{AgentID: "agent-a", Path: pathA}, targets[0])
	assert.Equal(t, migrate.Target{AgentID: "agent-b", Path: pathB}, targets[1])
}

func TestDiscoverFiltersToSingleAgent(t *testing.T) {
	root := t.TempDir()
	provisionAgent(t, root, "agent-a", `{"profiles": {}}`)
	pathB := provisionAgent(t, root, "agent-b", `{"profiles": {}}`)

	targets, err := migrate.Discover(root, "agent-b")
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, pathB, targets[0].Path)

	targets, err = migrate.Discover(root, "nonexistent")
	require.NoError(t, err)
	assert.Empty(t, targets)
}

func TestDiscoverMissingRootIsEmptyNotError(t *testing.T) {
	targets, err := migrate.Discover(filepath.Join(t.TempDir(), "never-created"), "")
	require.NoError(t, err)
	assert.Empty(t, targets)
}

func TestDiscoverRootWithoutAgentsDir(t *testing.T) {
	targets, err := migrate.Discover(t.TempDir(), "")
	require.NoError(t, err)
	assert.Empty(t, targets)
}
