package logging

import (
	"testing"
)

func TestSecretRedaction(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "secret is redacted",
			input:    "sk-ant-live-0123456789",
			expected: "[REDACTED]",
		},
		{
			name:     "empty secret is still redacted",
			input:    "",
			expected: "[REDACTED]",
		},
		{
			name:     "complex secret is redacted",
			input:    "refresh-token!@#$%",
			expected: "[REDACTED]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Secret(tt.input).String()
			if result != tt.expected {
				t.Errorf("Secret(%q).String() = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestSecretGoString(t *testing.T) {
	if got := Secret("abc123").GoString(); got != "[REDACTED]" {
		t.Errorf("GoString() = %q, want [REDACTED]", got)
	}
}

func TestRedact(t *testing.T) {
	out := Redact("wrote abc123 to OPENCLAW_ANTHROPIC_KEY", []string{"abc123"})
	if out != "wrote [REDACTED] to OPENCLAW_ANTHROPIC_KEY" {
		t.Errorf("Redact() = %q", out)
	}

	// values of three or fewer characters are left alone to avoid
	// shredding unrelated log text
	out = Redact("set x=1", []string{"1"})
	if out != "set x=1" {
		t.Errorf("Redact() = %q", out)
	}
}
