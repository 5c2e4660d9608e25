package stores

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"

	claverrors "github.com/openclaw/clawvault/internal/errors"
)

// KeyVaultAPI defines the Azure Key Vault operations the store uses.
// This allows for mocking in tests.
type KeyVaultAPI interface {
	SetSecret(ctx context.Context, name string, parameters azsecrets.SetSecretParameters, options *azsecrets.SetSecretOptions) (azsecrets.SetSecretResponse, error)
	GetSecret(ctx context.Context, name string, version string, options *azsecrets.GetSecretOptions) (azsecrets.GetSecretResponse, error)
}

// AzureKeyVaultStore writes secrets to Azure Key Vault. Vault secret
// names cannot contain underscores, so env var names are stored with
// dashes and mapped back symmetrically on reads.
type AzureKeyVaultStore struct {
	client   KeyVaultAPI
	vaultURL string
}

// AzureOption is a functional option for configuring the Azure store.
type AzureOption func(*AzureKeyVaultStore)

// WithKeyVaultClient sets a custom Key Vault client (for testing)
func WithKeyVaultClient(client KeyVaultAPI) AzureOption {
	return func(s *AzureKeyVaultStore) {
		s.client = client
	}
}

// NewAzureKeyVaultStore creates an Azure Key Vault store. Config keys:
//
//	vault_url:     https://<vault>.vault.azure.net (required)
//	tenant_id:     service principal tenant
//	client_id:     service principal client
//	client_secret: service principal secret
//
// Without a full service principal triple the default credential chain
// is used (environment, managed identity, Azure CLI).
func NewAzureKeyVaultStore(storeConfig map[string]any, opts ...AzureOption) (*AzureKeyVaultStore, error) {
	vaultURL, _ := storeConfig["vault_url"].(string)
	if vaultURL == "" {
		return nil, claverrors.UserError{
			Message:    "vault_url is required for Azure Key Vault",
			Suggestion: "Set vault_url in the store config, e.g. https://myvault.vault.azure.net",
		}
	}

	s := &AzureKeyVaultStore{vaultURL: vaultURL}

	for _, opt := range opts {
		opt(s)
	}

	if s.client == nil {
		tenantID, _ := storeConfig["tenant_id"].(string)
		clientID, _ := storeConfig["client_id"].(string)
		clientSecret, _ := storeConfig["client_secret"].(string)

		var (
			cred azcore.TokenCredential
			err  error
		)
		if tenantID != "" && clientID != "" && clientSecret != "" {
			cred, err = azidentity.NewClientSecretCredential(tenantID, clientID, clientSecret, nil)
		} else {
			cred, err = azidentity.NewDefaultAzureCredential(nil)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure credential: %w", err)
		}

		client, err := azsecrets.NewClient(vaultURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure Key Vault client: %w", err)
		}
		s.client = client
	}

	return s, nil
}

func (s *AzureKeyVaultStore) Name() string { return "azure-keyvault" }

// vaultSecretName maps an env var name onto the Key Vault name grammar.
func vaultSecretName(name string) string {
	return strings.ReplaceAll(name, "_", "-")
}

func (s *AzureKeyVaultStore) Set(ctx context.Context, name, value string) error {
	_, err := s.client.SetSecret(ctx, vaultSecretName(name), azsecrets.SetSecretParameters{
		Value: &value,
	}, nil)
	return err
}

func (s *AzureKeyVaultStore) Get(ctx context.Context, name string) (string, error) {
	resp, err := s.client.GetSecret(ctx, vaultSecretName(name), "", nil)
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound {
			return "", NotFoundError{Store: s.Name(), Key: name}
		}
		return "", err
	}
	if resp.Value == nil {
		return "", fmt.Errorf("secret %q in vault %s has no value", name, s.vaultURL)
	}
	return *resp.Value, nil
}

// Validate probes the vault with a read that is expected to miss.
func (s *AzureKeyVaultStore) Validate(ctx context.Context) error {
	_, err := s.client.GetSecret(ctx, "clawvault-connectivity-probe", "", nil)
	if err == nil {
		return nil
	}
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound {
		return nil
	}
	return fmt.Errorf("Azure Key Vault check failed for %s: %w", s.vaultURL, err)
}
