package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/openclaw/clawvault/internal/config"
)

// NewCompletionCommand creates the completion command for generating shell completions.
func NewCompletionCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for clawvault.

To load completions:

Bash:
  $ source <(clawvault completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ clawvault completion bash > /etc/bash_completion.d/clawvault
  # macOS:
  $ clawvault completion bash > $(brew --prefix)/etc/bash_completion.d/clawvault

Zsh:
  $ clawvault completion zsh > "${fpath[1]}/_clawvault"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ clawvault completion fish | source

  # To load completions for each session, execute once:
  $ clawvault completion fish > ~/.config/fish/completions/clawvault.fish

PowerShell:
  PS> clawvault completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}
