package errors

import (
	"fmt"
	"strings"
)

// UserError represents an error that should be shown to the user with helpful context
type UserError struct {
	Message    string
	Suggestion string
	Details    string
	Err        error
}

func (e UserError) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Details != "" {
		parts = append(parts, "\n  Details: "+e.Details)
	}

	if e.Suggestion != "" {
		parts = append(parts, "\n  💡 Try: "+e.Suggestion)
	}

	return strings.Join(parts, "")
}

func (e UserError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error with helpful context
type ConfigError struct {
	Field      string
	Value      interface{}
	Message    string
	Suggestion string
}

func (e ConfigError) Error() string {
	msg := "Configuration error"
	if e.Field != "" {
		msg += fmt.Sprintf(" in field '%s'", e.Field)
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	msg += ": " + e.Message

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

// FormatError reports a malformed auth-store file. It carries only the file
// path, never any file content.
type FormatError struct {
	Path    string
	Message string
}

func (e FormatError) Error() string {
	msg := fmt.Sprintf("invalid auth store %s", e.Path)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// NameError reports an environment variable name that fails the naming
// grammar ^[A-Z][A-Z0-9_]*$. It carries only the offending name.
type NameError struct {
	Name string
}

func (e NameError) Error() string {
	return fmt.Sprintf("invalid environment variable name %q (must match ^[A-Z][A-Z0-9_]*$)", e.Name)
}

// DiscoveryError reports a root directory that could not be enumerated for a
// reason other than not existing.
type DiscoveryError struct {
	Root string
	Err  error
}

func (e DiscoveryError) Error() string {
	return fmt.Sprintf("failed to discover agents under %s: %v", e.Root, e.Err)
}

func (e DiscoveryError) Unwrap() error {
	return e.Err
}

// StorageError wraps a secret store write failure with non-secret context.
// It identifies the field being migrated but never carries its value.
type StorageError struct {
	Store    string
	AgentID  string
	ProfileID string
	Field    string
	EnvVar   string
	Provider string
	Path     string
	Err      error
}

func (e StorageError) Error() string {
	msg := fmt.Sprintf("storage write failed for agent %s profile %s field %s (env var %s, provider %s, file %s)",
		e.AgentID, e.ProfileID, e.Field, e.EnvVar, e.Provider, e.Path)
	if e.Store != "" {
		msg = fmt.Sprintf("%s store: %s", e.Store, msg)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if s := storeSuggestion(e.Store, e.Err); s != "" {
		msg += "\n  💡 " + s
	}
	return msg
}

func (e StorageError) Unwrap() error {
	return e.Err
}

// storeSuggestion returns helpful suggestions based on store type and error
func storeSuggestion(store string, err error) string {
	if err == nil {
		return ""
	}
	errStr := err.Error()

	switch store {
	case "keyring":
		if strings.Contains(errStr, "secret service") || strings.Contains(errStr, "dbus") {
			return "Make sure a Secret Service implementation (gnome-keyring, KWallet) is running"
		}
		if strings.Contains(errStr, "headless") {
			return "The OS keyring needs a desktop session. Use the encrypted-file store for servers and CI"
		}
	case "aws-secretsmanager":
		if strings.Contains(errStr, "credentials") || strings.Contains(errStr, "authorization") {
			return "Configure AWS credentials: 'aws configure' or set AWS_PROFILE"
		}
		if strings.Contains(errStr, "AccessDenied") {
			return "Check IAM permissions for secretsmanager:CreateSecret and secretsmanager:PutSecretValue"
		}
		if strings.Contains(errStr, "ThrottlingException") {
			return "AWS rate limit exceeded. Wait a moment and try again"
		}
	case "gcp-secretmanager":
		if strings.Contains(errStr, "PermissionDenied") {
			return "Check IAM permissions for roles/secretmanager.admin on the project"
		}
		if strings.Contains(errStr, "could not find default credentials") {
			return "Run 'gcloud auth application-default login' or set GOOGLE_APPLICATION_CREDENTIALS"
		}
	case "azure-keyvault":
		if strings.Contains(errStr, "Forbidden") {
			return "Check the Key Vault access policy grants the secrets/set permission"
		}
	}

	if strings.Contains(errStr, "timeout") {
		return "The operation timed out. Check your network connection and try again"
	}
	if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "no such host") {
		return "Unable to connect. Check your network and store configuration"
	}

	return ""
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	retryablePatterns := []string{
		"timeout",
		"temporary failure",
		"connection reset",
		"broken pipe",
		"rate limit",
		"throttling",
		"too many requests",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(strings.ToLower(errStr), pattern) {
			return true
		}
	}

	return false
}
