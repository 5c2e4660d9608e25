package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/openclaw/clawvault/internal/config"
	claverrors "github.com/openclaw/clawvault/internal/errors"
	"github.com/openclaw/clawvault/internal/migrate"
)

func NewMigrateCommand(cfg *config.Config) *cobra.Command {
	var (
		rootDir      string
		agentID      string
		storeName    string
		prefix       string
		dryRun       bool
		includeOAuth bool
		noBackup     bool
		outputJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Move plaintext credentials into the secret store",
		Long: `Migrate scans every agent's auth-profiles.json under the root
directory, writes each plaintext credential to the secret store, and
replaces it in the file with a ${ENV_VAR} placeholder. The original file
is backed up first.

Running with --dry-run classifies everything and prints the same report
without writing to the store or touching any file. The report never
contains secret values, only names, paths and value lengths.

Examples:
  clawvault migrate --dry-run
  clawvault migrate --store local
  clawvault migrate --agent main --include-oauth`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cfg, dryRun); err != nil {
				return err
			}

			root, err := resolveRoot(cfg, rootDir)
			if err != nil {
				return err
			}

			opts := migrate.Options{
				DryRun:       dryRun,
				IncludeOAuth: includeOAuth || cfg.Definition.IncludeOAuth,
				Prefix:       cfg.EffectivePrefix(),
				Backup:       cfg.BackupEnabled() && !noBackup,
				Overrides:    cfg.Definition.Overrides,
				Logger:       cfg.Logger,
			}
			if prefix != "" {
				opts.Prefix = prefix
			}

			if !dryRun {
				store, err := buildStore(cfg, storeName)
				if err != nil {
					return err
				}
				if err := store.Validate(context.Background()); err != nil {
					return claverrors.UserError{
						Message:    fmt.Sprintf("Store '%s' failed its pre-flight check", store.Name()),
						Details:    err.Error(),
						Suggestion: "Fix the store configuration before migrating, or use --dry-run",
						Err:        err,
					}
				}
				opts.Storage = store
			}

			migrate.InitMetrics()
			batch := migrate.NewBatchMigrator(root, agentID, opts)
			reports, runErr := batch.MigrateAll(context.Background())
			if runErr != nil && len(reports) == 0 {
				return runErr
			}

			// Print the report even when the batch failed so the
			// per-agent errors are visible
			if outputJSON {
				if err := outputReportsJSON(reports); err != nil {
					return err
				}
			} else if err := outputReportsTable(cfg, reports, dryRun); err != nil {
				return err
			}
			return runErr
		},
	}

	cmd.Flags().StringVar(&rootDir, "root", "", "Agent root directory (default: config root or ~/.openclaw)")
	cmd.Flags().StringVar(&agentID, "agent", "", "Migrate a single agent")
	cmd.Flags().StringVar(&storeName, "store", "", "Store to migrate into (default: config defaultStore)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Env var name prefix (default: config prefix or OPENCLAW)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Classify and report without writing anything")
	cmd.Flags().BoolVar(&includeOAuth, "include-oauth", false, "Also migrate oauth credential fields")
	cmd.Flags().BoolVar(&noBackup, "no-backup", false, "Skip the pre-migration backup")
	cmd.Flags().BoolVar(&outputJSON, "json", false, "Output the report as JSON")

	return cmd
}

func outputReportsJSON(reports []*migrate.FileReport) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(reports)
}

func outputReportsTable(cfg *config.Config, reports []*migrate.FileReport, dryRun bool) error {
	if len(reports) == 0 {
		fmt.Println("No auth stores found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "AGENT\tPROFILE\tFIELD\tENV VAR\tLENGTH")
	for _, report := range reports {
		for _, change := range report.Changes {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
				change.AgentID, change.ProfileID, change.Field, change.EnvVar, change.ValueLen)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	mode := "Migrated"
	if dryRun {
		mode = "Would migrate"
	}
	fmt.Printf("\n%s %d field(s) across %d file(s)\n", mode, migrate.TotalChanges(reports), len(reports))

	for _, report := range reports {
		if report.Error != "" {
			cfg.Logger.Error("agent %s: %s", report.AgentID, report.Error)
		}
		if report.Backup != "" {
			cfg.Logger.Debug("agent %s backup: %s", report.AgentID, report.Backup)
		}
		for _, skip := range report.Skipped {
			cfg.Logger.Debug("skipped %s/%s: %s", skip.ProfileID, skip.Field, skip.Reason)
		}
	}
	return nil
}
