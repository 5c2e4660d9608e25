package migrate

import (
	"strings"

	"github.com/openclaw/clawvault/internal/authstore"
)

// pendingChange is an eligible field migration that has not yet been
// written to storage. It is the only place the engine holds a secret value,
// and it never leaves this package.
type pendingChange struct {
	ProfileID string
	Provider  string
	Field     string
	EnvVar    string
	Value     string
}

// Classifier decides, per credential field, whether to migrate or skip.
// Classification is pure: it makes identical decisions in dry-run and
// apply mode.
type Classifier struct {
	// Prefix is the leading env var name component, e.g. "OPENCLAW".
	Prefix string

	// IncludeOAuth enables migration of oauth credentials. When false an
	// oauth credential is skipped whole with reason unsupported_type.
	IncludeOAuth bool

	// Overrides maps profile ids to explicit env var names. Consulted for
	// api_key credentials only.
	Overrides map[string]string
}

// Classify evaluates one profile entry. It returns the eligible field
// migrations and the skip records, or an error when a chosen env var name
// fails the naming grammar.
func (c *Classifier) Classify(profileID string, raw any) ([]pendingChange, []Skip, error) {
	cred := authstore.ParseCredential(profileID, raw)

	switch cred := cred.(type) {
	case authstore.MalformedCredential:
		return nil, []Skip{{ProfileID: profileID, Provider: "unknown", Field: "credential", Reason: SkipMissing}}, nil

	case authstore.OtherCredential:
		return nil, []Skip{{ProfileID: profileID, Provider: cred.Provider, Reason: SkipUnsupportedType}}, nil

	case authstore.APIKeyCredential:
		return c.classifyAPIKey(profileID, cred)

	case authstore.OAuthCredential:
		return c.classifyOAuth(profileID, cred)
	}

	return nil, nil, nil
}

func (c *Classifier) classifyAPIKey(profileID string, cred authstore.APIKeyCredential) ([]pendingChange, []Skip, error) {
	if skip, skipped := classifyField(profileID, cred.Provider, "key", cred.Key); skipped {
		return nil, []Skip{skip}, nil
	}

	envVar, overridden := c.Overrides[profileID]
	if !overridden {
		envVar = BuildEnvVarName(c.Prefix, cred.Provider, profileID, "key")
	}
	if err := ValidateEnvVarName(envVar); err != nil {
		return nil, nil, err
	}

	return []pendingChange{{
		ProfileID: profileID,
		Provider:  cred.Provider,
		Field:     "key",
		EnvVar:    envVar,
		Value:     cred.Key.Value,
	}}, nil, nil
}

func (c *Classifier) classifyOAuth(profileID string, cred authstore.OAuthCredential) ([]pendingChange, []Skip, error) {
	if !c.IncludeOAuth {
		return nil, []Skip{{ProfileID: profileID, Provider: cred.Provider, Reason: SkipUnsupportedType}}, nil
	}

	var changes []pendingChange
	var skips []Skip

	// Overrides never apply to oauth credentials; note the ignored entry
	// but keep processing the fields normally.
	if _, ok := c.Overrides[profileID]; ok {
		skips = append(skips, Skip{ProfileID: profileID, Provider: cred.Provider, Reason: SkipMapIgnored})
	}

	for _, field := range cred.Fields {
		if !field.Value.Present {
			// absent oauth fields are not enumerated in the report
			continue
		}
		if skip, skipped := classifyField(profileID, cred.Provider, field.Name, field.Value); skipped {
			skips = append(skips, skip)
			continue
		}

		envVar := BuildEnvVarName(c.Prefix, cred.Provider, profileID, field.Name)
		if err := ValidateEnvVarName(envVar); err != nil {
			return nil, nil, err
		}

		changes = append(changes, pendingChange{
			ProfileID: profileID,
			Provider:  cred.Provider,
			Field:     field.Name,
			EnvVar:    envVar,
			Value:     field.Value.Value,
		})
	}

	return changes, skips, nil
}

// classifyField applies the per-field skip rules in order: placeholder,
// missing (absent or non-string), empty. The second return is false when
// the field is eligible for migration.
func classifyField(profileID, provider, name string, v authstore.FieldValue) (Skip, bool) {
	if v.Present && v.IsString && authstore.IsPlaceholder(v.Value) {
		return Skip{ProfileID: profileID, Provider: provider, Field: name, Reason: SkipAlreadyPlaceholder}, true
	}
	if !v.Present || !v.IsString {
		return Skip{ProfileID: profileID, Provider: provider, Field: name, Reason: SkipMissing}, true
	}
	if strings.TrimSpace(v.Value) == "" {
		return Skip{ProfileID: profileID, Provider: provider, Field: name, Reason: SkipEmpty}, true
	}
	return Skip{}, false
}
