package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/openclaw/clawvault/internal/authstore"
	"github.com/openclaw/clawvault/internal/config"
	claverrors "github.com/openclaw/clawvault/internal/errors"
	"github.com/openclaw/clawvault/internal/migrate"
)

func NewRestoreCommand(cfg *config.Config) *cobra.Command {
	var (
		rootDir string
		agentID string
		dryRun  bool
	)

	cmd := &cobra.Command{
		Use:   "restore --agent <id>",
		Short: "Restore an agent's auth store from its latest backup",
		Long: `Restore replaces an agent's auth-profiles.json with the most recent
backup written by a previous migration. The current file is not deleted:
restore itself writes a backup of it first, so a restore can be undone.

Restore does not remove secrets that earlier migrations put in the
store; it only rolls the file back.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cfg, true); err != nil {
				return err
			}

			root, err := resolveRoot(cfg, rootDir)
			if err != nil {
				return err
			}

			targets, err := migrate.Discover(root, agentID)
			if err != nil {
				return err
			}
			if len(targets) == 0 {
				return claverrors.UserError{
					Message:    fmt.Sprintf("No auth store found for agent '%s' under %s", agentID, root),
					Suggestion: "Check the agent id and --root",
				}
			}
			target := targets[0]

			backup, err := latestBackup(target.Path)
			if err != nil {
				return err
			}

			if dryRun {
				fmt.Printf("Would restore %s from %s\n", target.Path, backup)
				return nil
			}

			doc, err := authstore.Load(target.Path)
			if err != nil {
				// A corrupt current file is exactly when restore matters;
				// copy the backup over it directly.
				cfg.Logger.Warn("Current auth store is unreadable, restoring over it: %v", err)
				doc = nil
			}

			data, err := os.ReadFile(backup)
			if err != nil {
				return fmt.Errorf("reading backup %s: %w", backup, err)
			}

			if doc != nil {
				if _, err := doc.WriteBackup(time.Now()); err != nil {
					return err
				}
				if err := doc.WriteAtomic(data); err != nil {
					return err
				}
			} else if err := os.WriteFile(target.Path, data, authstore.FileMode); err != nil {
				return fmt.Errorf("restoring %s: %w", target.Path, err)
			}

			cfg.Logger.Info("Restored %s from %s", target.Path, backup)
			return nil
		},
	}

	cmd.Flags().StringVar(&rootDir, "root", "", "Agent root directory (default: config root or ~/.openclaw)")
	cmd.Flags().StringVar(&agentID, "agent", "", "Agent to restore (required)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show which backup would be restored")
	_ = cmd.MarkFlagRequired("agent")

	return cmd
}

// latestBackup finds the newest <path>.bak.<ms> sibling of an auth store.
func latestBackup(path string) (string, error) {
	matches, err := filepath.Glob(path + ".bak.*")
	if err != nil {
		return "", fmt.Errorf("listing backups for %s: %w", path, err)
	}

	var backups []string
	for _, m := range matches {
		suffix := strings.TrimPrefix(m, path+".bak.")
		if suffix != "" && strings.IndexFunc(suffix, func(r rune) bool { return r < '0' || r > '9' }) == -1 {
			backups = append(backups, m)
		}
	}
	if len(backups) == 0 {
		return "", claverrors.UserError{
			Message:    fmt.Sprintf("No backups found for %s", path),
			Suggestion: "Backups are written by 'clawvault migrate' unless --no-backup was used",
		}
	}

	// Timestamps are unix milliseconds; same-length strings sort
	// numerically, and longer suffixes are always newer.
	sort.Slice(backups, func(i, j int) bool {
		if len(backups[i]) != len(backups[j]) {
			return len(backups[i]) < len(backups[j])
		}
		return backups[i] < backups[j]
	})
	return backups[len(backups)-1], nil
}
