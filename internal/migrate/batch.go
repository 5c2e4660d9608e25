package migrate

import (
	"context"

	claverrors "github.com/openclaw/clawvault/internal/errors"
	"github.com/openclaw/clawvault/internal/logging"
)

// BatchMigrator drives the file migrator across every discovered agent.
type BatchMigrator struct {
	root   string
	agent  string
	fm     *FileMigrator
	logger *logging.Logger
}

// NewBatchMigrator creates a batch migrator over rootDir. agentID, when
// non-empty, restricts the batch to one agent.
func NewBatchMigrator(rootDir, agentID string, opts Options) *BatchMigrator {
	logger := opts.Logger
	if logger == nil {
		logger = logging.New(false, true)
	}
	return &BatchMigrator{
		root:   rootDir,
		agent:  agentID,
		fm:     NewFileMigrator(opts),
		logger: logger,
	}
}

// MigrateAll migrates every discovered auth store sequentially and returns
// one report per file. Failures are isolated per file: a failed file gets
// a report with its (non-secret) error message and the batch continues
// with the remaining agents. The returned error is non-nil only when
// discovery itself fails or when every discovered file fails.
func (b *BatchMigrator) MigrateAll(ctx context.Context) ([]*FileReport, error) {
	targets, err := Discover(b.root, b.agent)
	if err != nil {
		return nil, err
	}

	reports := make([]*FileReport, 0, len(targets))
	for _, target := range targets {
		report, err := b.fm.Migrate(ctx, target.AgentID, target.Path)
		if err != nil {
			b.logger.Error("agent %s: %v", target.AgentID, err)
			report = &FileReport{
				AgentID: target.AgentID,
				Path:    target.Path,
				DryRun:  b.fm.opts.DryRun,
				Changes: []Change{},
				Skipped: []Skip{},
				Error:   err.Error(),
			}
			recordFileReport(report)
		}
		reports = append(reports, report)
	}

	if len(reports) > 0 && TotalFailures(reports) == len(reports) {
		return reports, claverrors.UserError{
			Message:    "migration failed for every agent",
			Suggestion: "Inspect the per-agent errors in the report output",
		}
	}
	return reports, nil
}
