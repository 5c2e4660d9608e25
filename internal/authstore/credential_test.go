package authstore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openclaw/clawvault/internal/authstore"
)

func TestIsPlaceholder(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"${ANTHROPIC_API_KEY}", true},
		{"${A}", true},
		{"${A_1_B}", true},
		{"${lower_case}", false},
		{"${1STARTS_WITH_DIGIT}", false},
		{"$MISSING_BRACES", false},
		{"${}", false},
		{"sk-ant-plaintext", false},
		{"  ${PADDED}  ", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, authstore.IsPlaceholder(tt.input), "input %q", tt.input)
	}
}

func TestPlaceholder(t *testing.T) {
	assert.Equal(t, "${OPENCLAW_ANTHROPIC_KEY}", authstore.Placeholder("OPENCLAW_ANTHROPIC_KEY"))
}

func TestParseAPIKeyCredential(t *testing.T) {
	cred := authstore.ParseCredential("anthropic:default", map[string]any{
		"type":     "api_key",
		"provider": "anthropic",
		"key":      "abc123",
	})

	apiKey, ok := cred.(authstore.APIKeyCredential)
	require.True(t, ok)
	assert.Equal(t, "anthropic", apiKey.Provider)
	assert.True(t, apiKey.Key.Present)
	assert.True(t, apiKey.Key.IsString)
	assert.Equal(t, "abc123", apiKey.Key.Value)
}

func TestParseOAuthCredentialEnumeratesRecognizedFields(t *testing.T) {
	cred := authstore.ParseCredential("google:work", map[string]any{
		"type":         "oauth",
		"accessToken":  "at-1",
		"refreshToken": "rt-1",
		"expiresAt":    12345,
	})

	oauth, ok := cred.(authstore.OAuthCredential)
	require.True(t, ok)
	assert.Equal(t, "google", oauth.Provider)
	assert.Len(t, oauth.Fields, len(authstore.OAuthSecretFields))

	byName := map[string]authstore.FieldValue{}
	for _, f := range oauth.Fields {
		byName[f.Name] = f.Value
	}
	assert.Equal(t, "at-1", byName["accessToken"].Value)
	assert.Equal(t, "rt-1", byName["refreshToken"].Value)
	assert.False(t, byName["idToken"].Present)
}

func TestParseOtherCredential(t *testing.T) {
	cred := authstore.ParseCredential("custom:one", map[string]any{
		"type": "mtls_cert",
		"cert": "-----BEGIN CERT-----",
	})

	other, ok := cred.(authstore.OtherCredential)
	require.True(t, ok)
	assert.Equal(t, "mtls_cert", other.Type)
	assert.Equal(t, "custom", other.Provider)
}

func TestParseMalformedCredential(t *testing.T) {
	cred := authstore.ParseCredential("broken:entry", "just a string")
	assert.IsType(t, authstore.MalformedCredential{}, cred)

	cred = authstore.ParseCredential("broken:entry", nil)
	assert.IsType(t, authstore.MalformedCredential{}, cred)
}

func TestProviderResolution(t *testing.T) {
	tests := []struct {
		name      string
		profileID string
		record    map[string]any
		want      string
	}{
		{"explicit provider wins", "other:x", map[string]any{"type": "api_key", "provider": "anthropic"}, "anthropic"},
		{"whitespace provider ignored", "openai:x", map[string]any{"type": "api_key", "provider": "   "}, "openai"},
		{"inferred from profile id", "openai:main", map[string]any{"type": "api_key"}, "openai"},
		{"id without separator", "anthropic", map[string]any{"type": "api_key"}, "anthropic"},
		{"empty id", "", map[string]any{"type": "api_key"}, "unknown"},
		{"leading separator", ":weird", map[string]any{"type": "api_key"}, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cred := authstore.ParseCredential(tt.profileID, tt.record)
			apiKey, ok := cred.(authstore.APIKeyCredential)
			require.True(t, ok)
			assert.Equal(t, tt.want, apiKey.Provider)
		})
	}
}

func TestNonStringSecretField(t *testing.T) {
	cred := authstore.ParseCredential("p:x", map[string]any{
		"type": "api_key",
		"key":  42,
	})

	apiKey, ok := cred.(authstore.APIKeyCredential)
	require.True(t, ok)
	assert.True(t, apiKey.Key.Present)
	assert.False(t, apiKey.Key.IsString)
}
