package migrate

import (
	"context"
	"time"

	"github.com/openclaw/clawvault/internal/authstore"
	claverrors "github.com/openclaw/clawvault/internal/errors"
	"github.com/openclaw/clawvault/internal/logging"
)

// Storage is the narrow capability the engine needs from a secret store.
// The engine only ever writes; it never reads, lists, or deletes.
type Storage interface {
	Name() string
	Set(ctx context.Context, name, value string) error
}

// Options configures a migration run. The same options drive dry-run and
// apply mode so both modes make identical classification decisions.
type Options struct {
	DryRun       bool
	IncludeOAuth bool
	Prefix       string
	Backup       bool
	Overrides    map[string]string
	Storage      Storage
	Logger       *logging.Logger
}

// FileMigrator migrates a single auth-store file.
type FileMigrator struct {
	opts   Options
	logger *logging.Logger
	now    func() time.Time
}

// NewFileMigrator creates a file migrator. Storage may be nil only when
// Options.DryRun is set.
func NewFileMigrator(opts Options) *FileMigrator {
	logger := opts.Logger
	if logger == nil {
		logger = logging.New(false, true)
	}
	return &FileMigrator{opts: opts, logger: logger, now: time.Now}
}

// Migrate runs the per-file algorithm: parse, classify every profile,
// write eligible values to storage (apply mode), substitute placeholders,
// back up and atomically rewrite the file, and report.
//
// Storage writes begin only after the whole file has classified cleanly,
// so a naming error never leaves values behind in the store. A storage
// write failure aborts the file before any rewrite: fields stored earlier
// in the same file remain in the store while the file still holds their
// plaintext. This partial-completion window is deliberate and documented;
// re-running the migration converges because stored fields are rewritten
// on the next successful pass.
func (m *FileMigrator) Migrate(ctx context.Context, agentID, path string) (*FileReport, error) {
	doc, err := authstore.Load(path)
	if err != nil {
		return nil, err
	}

	report := &FileReport{
		AgentID: agentID,
		Path:    path,
		DryRun:  m.opts.DryRun,
		Changes: []Change{},
		Skipped: []Skip{},
	}

	classifier := &Classifier{
		Prefix:       m.opts.Prefix,
		IncludeOAuth: m.opts.IncludeOAuth,
		Overrides:    m.opts.Overrides,
	}

	var pending []pendingChange
	for _, profileID := range doc.ProfileIDs() {
		raw, _ := doc.Profile(profileID)
		changes, skips, err := classifier.Classify(profileID, raw)
		if err != nil {
			return nil, err
		}
		pending = append(pending, changes...)
		report.Skipped = append(report.Skipped, skips...)
	}

	if !m.opts.DryRun {
		for _, p := range pending {
			m.logger.Debug("storing %s for profile %s field %s", p.EnvVar, p.ProfileID, p.Field)
			if err := m.opts.Storage.Set(ctx, p.EnvVar, p.Value); err != nil {
				return nil, claverrors.StorageError{
					Store:     m.opts.Storage.Name(),
					AgentID:   agentID,
					ProfileID: p.ProfileID,
					Field:     p.Field,
					EnvVar:    p.EnvVar,
					Provider:  p.Provider,
					Path:      path,
					Err:       err,
				}
			}
		}
	}

	for _, p := range pending {
		if !m.opts.DryRun {
			doc.SetField(p.ProfileID, p.Field, authstore.Placeholder(p.EnvVar))
		}
		report.Changes = append(report.Changes, Change{
			AgentID:   agentID,
			Path:      path,
			ProfileID: p.ProfileID,
			Provider:  p.Provider,
			Field:     p.Field,
			EnvVar:    p.EnvVar,
			ValueLen:  len(p.Value),
		})
	}
	report.Changed = len(report.Changes) > 0

	if report.Changed && !m.opts.DryRun {
		if m.opts.Backup {
			backup, err := doc.WriteBackup(m.now())
			if err != nil {
				return nil, err
			}
			report.Backup = backup
			m.logger.Debug("wrote backup %s", backup)
		}

		data, err := doc.Render()
		if err != nil {
			return nil, err
		}
		if err := doc.WriteAtomic(data); err != nil {
			return nil, err
		}
		m.logger.Info("migrated %d field(s) in %s", len(report.Changes), path)
	}

	recordFileReport(report)
	return report, nil
}
