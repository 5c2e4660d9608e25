package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/openclaw/clawvault/internal/config"
	claverrors "github.com/openclaw/clawvault/internal/errors"
	"github.com/openclaw/clawvault/internal/stores"
)

// loadConfig loads clawvault.yaml, tolerating a missing file when
// optional is set so commands can run on flags alone.
func loadConfig(cfg *config.Config, optional bool) error {
	err := cfg.Load()
	if err == nil {
		return nil
	}
	if optional {
		var configErr claverrors.ConfigError
		if errors.As(err, &configErr) && configErr.Field == "path" {
			cfg.Definition = &config.Definition{}
			return nil
		}
	}
	return err
}

// buildStore resolves the selected store definition and constructs it.
func buildStore(cfg *config.Config, storeName string) (stores.Store, error) {
	name, storeConfig, err := cfg.ResolveStore(storeName)
	if err != nil {
		return nil, err
	}

	registry := stores.NewRegistry()
	store, err := registry.Create(storeConfig.Type, storeConfig.Config)
	if err != nil {
		return nil, claverrors.UserError{
			Message:    fmt.Sprintf("Failed to create store '%s'", name),
			Details:    err.Error(),
			Suggestion: "Check the store's configuration in clawvault.yaml",
			Err:        err,
		}
	}
	return store, nil
}

// resolveRoot picks the agent root directory: the --root flag, the
// config's root, or ~/.openclaw.
func resolveRoot(cfg *config.Config, flagRoot string) (string, error) {
	if flagRoot != "" {
		return flagRoot, nil
	}
	if cfg.Definition != nil && cfg.Definition.Root != "" {
		return cfg.Definition.Root, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".openclaw"), nil
}
