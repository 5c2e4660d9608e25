package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	claverrors "github.com/openclaw/clawvault/internal/errors"
)

// definitionSchema constrains clawvault.yaml beyond what unmarshaling
// checks: the prefix and override targets must already satisfy the env
// var grammar, and every store needs a type.
const definitionSchema = `{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "version": { "type": "integer" },
    "root": { "type": "string" },
    "prefix": { "type": "string", "pattern": "^[A-Z][A-Z0-9_]*$" },
    "includeOauth": { "type": "boolean" },
    "backup": { "type": "boolean" },
    "defaultStore": { "type": "string" },
    "stores": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "properties": {
          "type": { "type": "string", "minLength": 1 }
        },
        "required": ["type"]
      }
    },
    "overrides": {
      "type": "object",
      "additionalProperties": {
        "type": "string",
        "pattern": "^[A-Z][A-Z0-9_]*$"
      }
    }
  }
}`

// validateRaw checks the parsed YAML document against the schema before
// it is bound to the Definition struct, so unknown keys and bad field
// shapes surface instead of being dropped.
func validateRaw(raw map[string]any) error {
	if raw == nil {
		raw = map[string]any{}
	}

	jsonData, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration for validation: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(definitionSchema),
		gojsonschema.NewBytesLoader(jsonData),
	)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		var errorMessages []string
		for _, desc := range result.Errors() {
			errorMessages = append(errorMessages, desc.String())
		}
		return claverrors.ConfigError{
			Message:    "configuration failed schema validation:\n  - " + strings.Join(errorMessages, "\n  - "),
			Suggestion: "Fix the listed fields in clawvault.yaml",
		}
	}

	return nil
}
