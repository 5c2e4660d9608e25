package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/openclaw/clawvault/internal/config"
	"github.com/openclaw/clawvault/internal/stores"
)

func NewStoresCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stores",
		Short: "List configured stores and check they are usable",
		Long: `Stores lists every store defined in clawvault.yaml, builds each one,
and runs its pre-flight check. Use it before a migration to find
credential or connectivity problems without writing anything.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(); err != nil {
				return err
			}

			names := cfg.StoreNames()
			if len(names) == 0 {
				fmt.Println("No stores configured")
				fmt.Printf("Supported types: %s\n", strings.Join(stores.NewRegistry().SupportedTypes(), ", "))
				return nil
			}

			registry := stores.NewRegistry()
			ctx := context.Background()

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tTYPE\tDEFAULT\tSTATUS")
			for _, name := range names {
				storeConfig, err := cfg.GetStore(name)
				if err != nil {
					return err
				}

				isDefault := ""
				if name == cfg.Definition.DefaultStore {
					isDefault = "*"
				}

				status := "ok"
				store, err := registry.Create(storeConfig.Type, storeConfig.Config)
				if err != nil {
					status = "error: " + err.Error()
				} else if err := store.Validate(ctx); err != nil {
					status = "error: " + firstLine(err.Error())
				}

				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, storeConfig.Type, isDefault, status)
			}
			return w.Flush()
		},
	}

	return cmd
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
