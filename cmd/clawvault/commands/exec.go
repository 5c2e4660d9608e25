package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openclaw/clawvault/internal/authstore"
	"github.com/openclaw/clawvault/internal/config"
	claverrors "github.com/openclaw/clawvault/internal/errors"
	"github.com/openclaw/clawvault/internal/execenv"
	"github.com/openclaw/clawvault/internal/migrate"
)

func NewExecCommand(cfg *config.Config) *cobra.Command {
	var (
		rootDir    string
		agentID    string
		storeName  string
		printVars  bool
		workingDir string
		timeout    int
	)

	cmd := &cobra.Command{
		Use:   "exec --agent <id> -- <command> [args...]",
		Short: "Run a command with the agent's migrated credentials",
		Long: `Exec resolves every ${ENV_VAR} placeholder in the agent's auth store
back from the secret store and runs the command with those variables in
an explicit child environment. The parent environment is not mutated and
nothing is written to disk.

The command must be separated from clawvault arguments with '--'.

Examples:
  clawvault exec --agent main -- openclaw-gateway
  clawvault exec --agent main --print -- env`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return claverrors.UserError{
					Message:    "No command specified",
					Suggestion: "Use: clawvault exec --agent <id> -- <command> [args...]",
				}
			}

			if err := cfg.Load(); err != nil {
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

			doc, err := authstore.Load(targets[0].Path)
			if err != nil {
				return err
			}

			store, err := buildStore(cfg, storeName)
			if err != nil {
				return err
			}

			executor := execenv.New(cfg.Logger, store)
			ctx := context.Background()

			env, err := executor.Resolve(ctx, doc)
			if err != nil {
				return err
			}

			return executor.Exec(ctx, execenv.ExecOptions{
				Command:     args,
				Environment: env,
				PrintVars:   printVars,
				WorkingDir:  workingDir,
				Timeout:     timeout,
			})
		},
	}

	cmd.Flags().StringVar(&rootDir, "root", "", "Agent root directory (default: config root or ~/.openclaw)")
	cmd.Flags().StringVar(&agentID, "agent", "", "Agent whose credentials to resolve (required)")
	cmd.Flags().StringVar(&storeName, "store", "", "Store to resolve from (default: config defaultStore)")
	cmd.Flags().BoolVar(&printVars, "print", false, "Print resolved variable names (values masked)")
	cmd.Flags().StringVar(&workingDir, "cwd", "", "Working directory for the command")
	cmd.Flags().IntVar(&timeout, "timeout", 0, "Timeout in seconds (0 for none)")
	_ = cmd.MarkFlagRequired("agent")

	return cmd
}
