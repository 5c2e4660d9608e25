package authstore

import (
	"regexp"
	"strings"
)

// Credential types recognized by the migration engine. Any other type is
// never inspected for secrets.
const (
	TypeAPIKey = "api_key"
	TypeOAuth  = "oauth"
)

// OAuthSecretFields is the fixed set of secret-bearing fields an oauth
// credential may carry, in evaluation order.
var OAuthSecretFields = []string{
	"accessToken",
	"refreshToken",
	"idToken",
	"token",
	"secret",
	"clientSecret",
	"access",
	"refresh",
}

var placeholderPattern = regexp.MustCompile(`^\$\{[A-Z][A-Z0-9_]*\}$`)

// IsPlaceholder reports whether s is a ${UPPER_SNAKE} placeholder. A field
// matching this grammar is always treated as already migrated, never as a
// plaintext secret.
func IsPlaceholder(s string) bool {
	return placeholderPattern.MatchString(s)
}

// Placeholder returns the substitution string for an environment variable.
func Placeholder(envVar string) string {
	return "${" + envVar + "}"
}

// FieldValue captures the classification-relevant state of one credential
// field: whether it exists, whether it is a string, and its value if so.
type FieldValue struct {
	Present  bool
	IsString bool
	Value    string
}

// Credential is the tagged union over the "type" discriminator of a profile
// entry.
type Credential interface {
	credential()
}

// APIKeyCredential carries exactly one secret-bearing field, "key".
type APIKeyCredential struct {
	Provider string
	Key      FieldValue
}

func (APIKeyCredential) credential() {}

// OAuthField pairs a recognized oauth field name with its state.
type OAuthField struct {
	Name  string
	Value FieldValue
}

// OAuthCredential carries zero or more secret-bearing fields among the
// recognized oauth set, in canonical order.
type OAuthCredential struct {
	Provider string
	Fields   []OAuthField
}

func (OAuthCredential) credential() {}

// OtherCredential is any credential whose type is neither api_key nor
// oauth. It is never inspected for secrets.
type OtherCredential struct {
	Type     string
	Provider string
}

func (OtherCredential) credential() {}

// MalformedCredential is a profile entry that is not a JSON object.
type MalformedCredential struct{}

func (MalformedCredential) credential() {}

// ParseCredential classifies one raw profile entry into the credential
// union. profileID is used for provider inference when the record carries
// no provider of its own.
func ParseCredential(profileID string, raw any) Credential {
	record, ok := raw.(map[string]any)
	if !ok {
		return MalformedCredential{}
	}

	credType, _ := record["type"].(string)
	provider := resolveProvider(record, profileID)

	switch credType {
	case TypeAPIKey:
		return APIKeyCredential{
			Provider: provider,
			Key:      fieldValue(record, "key"),
		}
	case TypeOAuth:
		fields := make([]OAuthField, 0, len(OAuthSecretFields))
		for _, name := range OAuthSecretFields {
			fields = append(fields, OAuthField{Name: name, Value: fieldValue(record, name)})
		}
		return OAuthCredential{Provider: provider, Fields: fields}
	default:
		return OtherCredential{Type: credType, Provider: provider}
	}
}

func fieldValue(record map[string]any, name string) FieldValue {
	raw, ok := record[name]
	if !ok {
		return FieldValue{}
	}
	s, isString := raw.(string)
	return FieldValue{Present: true, IsString: isString, Value: s}
}

// resolveProvider prefers the credential's own provider field; otherwise it
// infers the provider from the profile id prefix before the first ':',
// defaulting to "unknown".
func resolveProvider(record map[string]any, profileID string) string {
	if p, ok := record["provider"].(string); ok && strings.TrimSpace(p) != "" {
		return p
	}
	if idx := strings.Index(profileID, ":"); idx > 0 {
		return profileID[:idx]
	}
	if profileID != "" && !strings.Contains(profileID, ":") {
		return profileID
	}
	return "unknown"
}
