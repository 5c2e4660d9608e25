package stores

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	claverrors "github.com/openclaw/clawvault/internal/errors"
)

// SecretManagerAPI is the subset of GCP Secret Manager operations the
// store uses. The real *secretmanager.Client is adapted through
// gcpClientAdapter; tests supply a fake directly.
type SecretManagerAPI interface {
	CreateSecret(ctx context.Context, req *secretmanagerpb.CreateSecretRequest) (*secretmanagerpb.Secret, error)
	AddSecretVersion(ctx context.Context, req *secretmanagerpb.AddSecretVersionRequest) (*secretmanagerpb.SecretVersion, error)
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest) (*secretmanagerpb.AccessSecretVersionResponse, error)
}

type gcpClientAdapter struct {
	client *secretmanager.Client
}

func (a *gcpClientAdapter) CreateSecret(ctx context.Context, req *secretmanagerpb.CreateSecretRequest) (*secretmanagerpb.Secret, error) {
	return a.client.CreateSecret(ctx, req)
}

func (a *gcpClientAdapter) AddSecretVersion(ctx context.Context, req *secretmanagerpb.AddSecretVersionRequest) (*secretmanagerpb.SecretVersion, error) {
	return a.client.AddSecretVersion(ctx, req)
}

func (a *gcpClientAdapter) AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest) (*secretmanagerpb.AccessSecretVersionResponse, error) {
	return a.client.AccessSecretVersion(ctx, req)
}

// GCPSecretManagerStore writes secrets to Google Cloud Secret Manager.
// Each Set creates the secret if needed and adds a new version.
type GCPSecretManagerStore struct {
	client    SecretManagerAPI
	projectID string
}

// GCPOption is a functional option for configuring the GCP store.
type GCPOption func(*GCPSecretManagerStore)

// WithSecretManagerClient sets a custom Secret Manager client (for testing)
func WithSecretManagerClient(client SecretManagerAPI) GCPOption {
	return func(s *GCPSecretManagerStore) {
		s.client = client
	}
}

// NewGCPSecretManagerStore creates a GCP Secret Manager store. Config keys:
//
//	project_id:               GCP project (falls back to GOOGLE_CLOUD_PROJECT)
//	service_account_key_path: path to a service account key file
func NewGCPSecretManagerStore(storeConfig map[string]any, opts ...GCPOption) (*GCPSecretManagerStore, error) {
	projectID, _ := storeConfig["project_id"].(string)
	if projectID == "" {
		projectID = os.Getenv("GOOGLE_CLOUD_PROJECT")
	}
	if projectID == "" {
		return nil, claverrors.UserError{
			Message:    "project_id is required for GCP Secret Manager",
			Suggestion: "Set project_id in the store config or the GOOGLE_CLOUD_PROJECT environment variable",
		}
	}

	s := &GCPSecretManagerStore{projectID: projectID}

	for _, opt := range opts {
		opt(s)
	}

	if s.client == nil {
		var clientOptions []option.ClientOption
		if keyPath, ok := storeConfig["service_account_key_path"].(string); ok && keyPath != "" {
			if strings.HasPrefix(keyPath, "~/") {
				home, err := os.UserHomeDir()
				if err != nil {
					return nil, fmt.Errorf("failed to get home directory: %w", err)
				}
				keyPath = filepath.Join(home, keyPath[2:])
			}
			clientOptions = append(clientOptions, option.WithCredentialsFile(keyPath))
		}

		client, err := secretmanager.NewClient(context.Background(), clientOptions...)
		if err != nil {
			return nil, fmt.Errorf("failed to create GCP Secret Manager client: %w", err)
		}
		s.client = &gcpClientAdapter{client: client}
	}

	return s, nil
}

func (s *GCPSecretManagerStore) Name() string { return "gcp-secretmanager" }

func (s *GCPSecretManagerStore) secretResource(name string) string {
	return fmt.Sprintf("projects/%s/secrets/%s", s.projectID, name)
}

func (s *GCPSecretManagerStore) Set(ctx context.Context, name, value string) error {
	_, err := s.client.CreateSecret(ctx, &secretmanagerpb.CreateSecretRequest{
		Parent:   fmt.Sprintf("projects/%s", s.projectID),
		SecretId: name,
		Secret: &secretmanagerpb.Secret{
			Replication: &secretmanagerpb.Replication{
				Replication: &secretmanagerpb.Replication_Automatic_{
					Automatic: &secretmanagerpb.Replication_Automatic{},
				},
			},
		},
	})
	if err != nil && status.Code(err) != codes.AlreadyExists {
		return err
	}

	_, err = s.client.AddSecretVersion(ctx, &secretmanagerpb.AddSecretVersionRequest{
		Parent: s.secretResource(name),
		Payload: &secretmanagerpb.SecretPayload{
			Data: []byte(value),
		},
	})
	return err
}

func (s *GCPSecretManagerStore) Get(ctx context.Context, name string) (string, error) {
	result, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: s.secretResource(name) + "/versions/latest",
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return "", NotFoundError{Store: s.Name(), Key: name}
		}
		return "", err
	}
	if result.Payload == nil || result.Payload.Data == nil {
		return "", fmt.Errorf("secret %q has no data", name)
	}
	return string(result.Payload.Data), nil
}

// Validate probes the project with a read that is expected to miss.
// NotFound still proves the credentials and project are usable.
func (s *GCPSecretManagerStore) Validate(ctx context.Context) error {
	_, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: s.secretResource("clawvault-connectivity-probe") + "/versions/latest",
	})
	if err == nil || status.Code(err) == codes.NotFound {
		return nil
	}
	return fmt.Errorf("GCP Secret Manager check failed for project %s: %w", s.projectID, err)
}
