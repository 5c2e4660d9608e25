package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	claverrors "github.com/openclaw/clawvault/internal/errors"
	"github.com/openclaw/clawvault/internal/logging"
)

// DefaultPrefix is the leading env var name component when the config
// does not set one.
const DefaultPrefix = "OPENCLAW"

// Config holds the runtime configuration
type Config struct {
	Path           string
	Logger         *logging.Logger
	NonInteractive bool
	Definition     *Definition
}

// Definition represents the clawvault.yaml structure
type Definition struct {
	Version      int                    `yaml:"version"`
	Root         string                 `yaml:"root,omitempty"`
	Prefix       string                 `yaml:"prefix,omitempty"`
	IncludeOAuth bool                   `yaml:"includeOauth,omitempty"`
	Backup       *bool                  `yaml:"backup,omitempty"`
	DefaultStore string                 `yaml:"defaultStore,omitempty"`
	Stores       map[string]StoreConfig `yaml:"stores,omitempty"`
	Overrides    map[string]string      `yaml:"overrides,omitempty"`
}

// StoreConfig holds store-specific configuration
type StoreConfig struct {
	Type   string         `yaml:"type"`
	Config map[string]any `yaml:",inline"`
}

// Load reads and parses the clawvault.yaml file
func (c *Config) Load() error {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return claverrors.ConfigError{
				Field:      "path",
				Value:      c.Path,
				Message:    "configuration file not found",
				Suggestion: "Create a clawvault.yaml or pass --config",
			}
		}
		return claverrors.UserError{
			Message:    "Failed to read configuration file",
			Details:    err.Error(),
			Suggestion: "Check file permissions and path",
			Err:        err,
		}
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return claverrors.ConfigError{
			Message:    "invalid YAML syntax in configuration file",
			Suggestion: "Check for indentation errors, missing quotes, or invalid characters. Use a YAML validator",
		}
	}

	if err := validateRaw(raw); err != nil {
		return err
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return claverrors.ConfigError{
			Message:    "invalid YAML syntax in configuration file",
			Suggestion: "Check for indentation errors, missing quotes, or invalid characters. Use a YAML validator",
		}
	}

	if def.Version != 0 {
		return claverrors.ConfigError{
			Field:      "version",
			Value:      def.Version,
			Message:    "unsupported configuration version",
			Suggestion: "Set 'version: 0' at the top of your clawvault.yaml file",
		}
	}

	c.Definition = &def
	return nil
}

// GetStore returns the configuration for a named store
func (c *Config) GetStore(name string) (StoreConfig, error) {
	if c.Definition == nil {
		return StoreConfig{}, claverrors.UserError{
			Message:    "Configuration not loaded",
			Suggestion: "This is an internal error. Please report it",
		}
	}

	if store, ok := c.Definition.Stores[name]; ok {
		return store, nil
	}

	suggestion := "Add a stores entry to your clawvault.yaml"
	if available := c.StoreNames(); len(available) > 0 {
		suggestion = fmt.Sprintf("Available stores: %s", strings.Join(available, ", "))
	}

	return StoreConfig{}, claverrors.ConfigError{
		Field:      "store",
		Value:      name,
		Message:    "store not found",
		Suggestion: suggestion,
	}
}

// StoreNames returns the configured store names, sorted.
func (c *Config) StoreNames() []string {
	if c.Definition == nil {
		return nil
	}
	names := make([]string, 0, len(c.Definition.Stores))
	for name := range c.Definition.Stores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveStore picks the store to use: an explicit name, the config's
// defaultStore, or the sole configured store.
func (c *Config) ResolveStore(name string) (string, StoreConfig, error) {
	if name == "" && c.Definition != nil {
		name = c.Definition.DefaultStore
	}
	if name == "" && c.Definition != nil && len(c.Definition.Stores) == 1 {
		name = c.StoreNames()[0]
	}
	if name == "" {
		return "", StoreConfig{}, claverrors.ConfigError{
			Field:      "defaultStore",
			Message:    "no store selected",
			Suggestion: "Pass --store or set defaultStore in clawvault.yaml",
		}
	}

	store, err := c.GetStore(name)
	if err != nil {
		return "", StoreConfig{}, err
	}
	return name, store, nil
}

// EffectivePrefix returns the configured prefix, or the default.
func (c *Config) EffectivePrefix() string {
	if c.Definition != nil && c.Definition.Prefix != "" {
		return c.Definition.Prefix
	}
	return DefaultPrefix
}

// BackupEnabled reports whether migrated files get a backup first.
// Backups default on; the config has to opt out.
func (c *Config) BackupEnabled() bool {
	if c.Definition != nil && c.Definition.Backup != nil {
		return *c.Definition.Backup
	}
	return true
}
