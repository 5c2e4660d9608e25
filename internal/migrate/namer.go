package migrate

import (
	"regexp"
	"strings"

	claverrors "github.com/openclaw/clawvault/internal/errors"
)

var (
	envVarNamePattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)
	nonAlnumRuns      = regexp.MustCompile(`[^A-Z0-9]+`)
)

// BuildEnvVarName produces the deterministic environment variable name for a
// migrated field. Each component is normalized independently (uppercase,
// non-alphanumeric runs collapsed to one underscore, leading and trailing
// underscores trimmed); empty components are dropped and the rest joined
// with underscores. Identical inputs always yield identical output.
func BuildEnvVarName(prefix, provider, profileID, field string) string {
	components := []string{prefix, provider, profileID, field}
	parts := make([]string, 0, len(components))
	for _, c := range components {
		if n := normalizeComponent(c); n != "" {
			parts = append(parts, n)
		}
	}
	return strings.Join(parts, "_")
}

func normalizeComponent(s string) string {
	s = strings.ToUpper(s)
	s = nonAlnumRuns.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// ValidateEnvVarName checks a name against the naming grammar
// ^[A-Z][A-Z0-9_]*$. Both generated and override-supplied names go through
// this check before any storage write.
func ValidateEnvVarName(name string) error {
	if !envVarNamePattern.MatchString(name) {
		return claverrors.NameError{Name: name}
	}
	return nil
}
