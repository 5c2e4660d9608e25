package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/openclaw/clawvault/internal/authstore"
	"github.com/openclaw/clawvault/internal/config"
	"github.com/openclaw/clawvault/internal/migrate"
)

// agentStatus summarizes one agent's migration state without touching
// anything: how many credential fields still hold plaintext and how many
// are already placeholders.
type agentStatus struct {
	AgentID      string `json:"agentId"`
	Path         string `json:"authStorePath"`
	Profiles     int    `json:"profiles"`
	Plaintext    int    `json:"plaintextFields"`
	Placeholders int    `json:"placeholderFields"`
	Error        string `json:"error,omitempty"`
}

func NewStatusCommand(cfg *config.Config) *cobra.Command {
	var (
		rootDir    string
		agentID    string
		outputJSON bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show which agents still hold plaintext credentials",
		Long: `Status runs the migration classification in read-only mode and
reports, per agent, how many credential fields are still plaintext and
how many already reference the secret store. Nothing is written.`,
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

			statuses := make([]agentStatus, 0, len(targets))
			for _, target := range targets {
				statuses = append(statuses, statusFor(cfg, target))
			}

			if outputJSON {
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")
				return encoder.Encode(statuses)
			}
			return outputStatusTable(statuses)
		},
	}

	cmd.Flags().StringVar(&rootDir, "root", "", "Agent root directory (default: config root or ~/.openclaw)")
	cmd.Flags().StringVar(&agentID, "agent", "", "Show a single agent")
	cmd.Flags().BoolVar(&outputJSON, "json", false, "Output as JSON")

	return cmd
}

func statusFor(cfg *config.Config, target migrate.Target) agentStatus {
	status := agentStatus{AgentID: target.AgentID, Path: target.Path}

	doc, err := authstore.Load(target.Path)
	if err != nil {
		status.Error = err.Error()
		return status
	}

	classifier := migrate.Classifier{
		Prefix:       cfg.EffectivePrefix(),
		IncludeOAuth: true,
		Overrides:    cfg.Definition.Overrides,
	}

	for _, profileID := range doc.ProfileIDs() {
		status.Profiles++
		raw, _ := doc.Profile(profileID)

		pending, skips, err := classifier.Classify(profileID, raw)
		if err != nil {
			// A naming error still means the field holds plaintext
			status.Plaintext++
			continue
		}
		status.Plaintext += len(pending)
		for _, skip := range skips {
			if skip.Reason == migrate.SkipAlreadyPlaceholder {
				status.Placeholders++
			}
		}
	}
	return status
}

func outputStatusTable(statuses []agentStatus) error {
	if len(statuses) == 0 {
		fmt.Println("No auth stores found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "AGENT\tPROFILES\tPLAINTEXT\tMIGRATED")
	for _, status := range statuses {
		if status.Error != "" {
			fmt.Fprintf(w, "%s\t-\t-\terror: %s\n", status.AgentID, status.Error)
			continue
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\n",
			status.AgentID, status.Profiles, status.Plaintext, status.Placeholders)
	}
	return w.Flush()
}
