package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/openclaw/clawvault/internal/config"
	"github.com/openclaw/clawvault/internal/submit"
)

func NewServeCommand(cfg *config.Config) *cobra.Command {
	var (
		storeName string
		port      int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Accept one secret over localhost HTTP",
		Long: `Serve starts a loopback HTTP server that accepts a single secret
submission and writes it straight into the secret store. The one-time
bearer token is printed on startup; hand it to the collaborator
submitting the credential. The value never appears in logs, shell
history, or the auth store file.

Submit with:
  curl -X POST http://127.0.0.1:<port>/submit \
    -H "Authorization: Bearer <token>" \
    -d '{"name": "OPENCLAW_ANTHROPIC_MAIN_KEY", "value": "..."}'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(); err != nil {
				return err
			}

			store, err := buildStore(cfg, storeName)
			if err != nil {
				return err
			}
			if err := store.Validate(context.Background()); err != nil {
				return err
			}

			serverConfig := submit.DefaultServerConfig()
			if port != 0 {
				serverConfig.Port = port
			}

			server, err := submit.NewServer(serverConfig, cfg.Logger, store)
			if err != nil {
				return err
			}

			fmt.Printf("Submission URL:   %s\n", server.URL())
			fmt.Printf("One-time token:   %s\n", server.Token())
			fmt.Println("Press Ctrl+C to stop")

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return server.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&storeName, "store", "", "Store to submit into (default: config defaultStore)")
	cmd.Flags().IntVar(&port, "port", 0, "Port to listen on (default 7784)")

	return cmd
}
