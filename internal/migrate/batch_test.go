package migrate_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openclaw/clawvault/internal/migrate"
)

func TestMigrateAllAcrossAgents(t *testing.T) {
	root := t.TempDir()
	provisionAgent(t, root, "agent-a", `{"profiles": {"anthropic:default": {"type": "api_key", "key": "secret-a"}}}`)
	provisionAgent(t, root, "agent-b", `{"profiles": {"openai:main": {"type": "api_key", "key": "secret-b"}}}`)

	storage := newFakeStorage()
	bm := migrate.NewBatchMigrator(root, "", migrate.Options{
		Prefix:  "OPENCLAW",
		Storage: storage,
	})

	reports, err := bm.MigrateAll(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 2)

	assert.Equal(t, 2, migrate.TotalChanges(reports))
	assert.Equal(t, 0, migrate.TotalFailures(reports))
	assert.Equal(t, "secret-a", storage.values["OPENCLAW_ANTHROPIC_ANTHROPIC_DEFAULT_KEY"])
	assert.Equal(t, "secret-b", storage.values["OPENCLAW_OPENAI_OPENAI_MAIN_KEY"])
}

func TestMigrateAllIsolatesPerFileFailures(t *testing.T) {
	root := t.TempDir()
	badPath := provisionAgent(t, root, "agent-bad", `{"not-json`)
	provisionAgent(t, root, "agent-good", `{"profiles": {"anthropic:default": {"type": "api_key", "key": "secret-ok"}}}`)

	storage := newFakeStorage()
	bm := migrate.NewBatchMigrator(root, "", migrate.Options{
		Prefix:  "OPENCLAW",
		Storage: storage,
	})

	reports, err := bm.MigrateAll(context.Background())
	require.NoError(t, err, "one failed file must not abort the batch")
	require.Len(t, reports, 2)

	assert.NotEmpty(t, reports[0].Error)
	assert.Contains(t, reports[0].Error, badPath)
	assert.False(t, reports[0].Changed)

	assert.Empty(t, reports[1].Error)
	assert.True(t, reports[1].Changed)
	assert.Equal(t, "secret-ok", storage.values["OPENCLAW_ANTHROPIC_ANTHROPIC_DEFAULT_KEY"])
}

func TestMigrateAllReportsErrorWhenEveryFileFails(t *testing.T) {
	root := t.TempDir()
	provisionAgent(t, root, "agent-a", `{"broken`)
	provisionAgent(t, root, "agent-b", `[]`)

	bm := migrate.NewBatchMigrator(root, "", migrate.Options{
		Prefix:  "OPENCLAW",
		Storage: newFakeStorage(),
	})

	reports, err := bm.MigrateAll(context.Background())
	require.Error(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, 2, migrate.TotalFailures(reports))
}

func TestMigrateAllEmptyRoot(t *testing.T) {
	bm := migrate.NewBatchMigrator(t.TempDir(), "", migrate.Options{
		Prefix:  "OPENCLAW",
		Storage: newFakeStorage(),
	})

	reports, err := bm.MigrateAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestMigrateAllApplyThenApplyIsIdempotent(t *testing.T) {
	root := t.TempDir()
	path := provisionAgent(t, root, "agent-a", `{"profiles": {"anthropic:default": {"type": "api_key", "key": "secret-a"}}}`)

	opts := migrate.Options{Prefix: "OPENCLAW", Storage: newFakeStorage()}

	first, err := migrate.NewBatchMigrator(root, "", opts).MigrateAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, migrate.TotalChanges(first))

	contentAfterFirst, err := os.ReadFile(path)
	require.NoError(t, err)

	second, err := migrate.NewBatchMigrator(root, "", opts).MigrateAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, migrate.TotalChanges(second))
	require.Len(t, second, 1)
	assert.False(t, second[0].Changed)

	contentAfterSecond, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(contentAfterFirst), string(contentAfterSecond))
}
