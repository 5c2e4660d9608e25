package stores

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// SecretsManagerAPI is the subset of AWS Secrets Manager operations the
// store uses. This allows for mocking in tests.
type SecretsManagerAPI interface {
	CreateSecret(ctx context.Context, params *secretsmanager.CreateSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.CreateSecretOutput, error)
	PutSecretValue(ctx context.Context, params *secretsmanager.PutSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.PutSecretValueOutput, error)
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// STSAPI is the subset of AWS STS used for validation.
type STSAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// AWSSecretsManagerStore writes secrets to AWS Secrets Manager, creating
// the secret on first write and adding a new version afterwards.
type AWSSecretsManagerStore struct {
	client SecretsManagerAPI
	sts    STSAPI
	region string
}

// AWSOption is a functional option for configuring the AWS store.
type AWSOption func(*AWSSecretsManagerStore)

// WithSecretsManagerClient sets a custom Secrets Manager client (for testing)
func WithSecretsManagerClient(client SecretsManagerAPI) AWSOption {
	return func(s *AWSSecretsManagerStore) {
		s.client = client
	}
}

// WithSTSClient sets a custom STS client (for testing)
func WithSTSClient(client STSAPI) AWSOption {
	return func(s *AWSSecretsManagerStore) {
		s.sts = client
	}
}

// NewAWSSecretsManagerStore creates an AWS Secrets Manager store. Config
// keys:
//
//	region:            AWS region (default us-east-1)
//	endpoint:          custom endpoint for LocalStack or testing
//	access_key_id:     static credentials for LocalStack or testing
//	secret_access_key: static credentials for LocalStack or testing
func NewAWSSecretsManagerStore(storeConfig map[string]any, opts ...AWSOption) (*AWSSecretsManagerStore, error) {
	region := "us-east-1"
	if r, ok := storeConfig["region"].(string); ok && r != "" {
		region = r
	}

	var endpoint string
	if e, ok := storeConfig["endpoint"].(string); ok && e != "" {
		endpoint = e
	}

	var accessKeyID, secretAccessKey string
	if ak, ok := storeConfig["access_key_id"].(string); ok && ak != "" {
		accessKeyID = ak
	}
	if sk, ok := storeConfig["secret_access_key"].(string); ok && sk != "" {
		secretAccessKey = sk
	}

	s := &AWSSecretsManagerStore{region: region}

	for _, opt := range opts {
		opt(s)
	}

	if s.client == nil || s.sts == nil {
		var configOpts []func(*config.LoadOptions) error
		configOpts = append(configOpts, config.WithRegion(region))

		if accessKeyID != "" && secretAccessKey != "" {
			configOpts = append(configOpts, config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
			))
		}

		cfg, err := config.LoadDefaultConfig(context.Background(), configOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}

		if s.client == nil {
			var clientOpts []func(*secretsmanager.Options)
			if endpoint != "" {
				clientOpts = append(clientOpts, func(o *secretsmanager.Options) {
					o.BaseEndpoint = aws.String(endpoint)
				})
			}
			s.client = secretsmanager.NewFromConfig(cfg, clientOpts...)
		}
		if s.sts == nil {
			var stsOpts []func(*sts.Options)
			if endpoint != "" {
				stsOpts = append(stsOpts, func(o *sts.Options) {
					o.BaseEndpoint = aws.String(endpoint)
				})
			}
			s.sts = sts.NewFromConfig(cfg, stsOpts...)
		}
	}

	return s, nil
}

func (s *AWSSecretsManagerStore) Name() string { return "aws-secretsmanager" }

func (s *AWSSecretsManagerStore) Set(ctx context.Context, name, value string) error {
	_, err := s.client.CreateSecret(ctx, &secretsmanager.CreateSecretInput{
		Name:         aws.String(name),
		SecretString: aws.String(value),
	})
	if err == nil {
		return nil
	}

	var exists *types.ResourceExistsException
	if !errors.As(err, &exists) {
		return err
	}

	_, err = s.client.PutSecretValue(ctx, &secretsmanager.PutSecretValueInput{
		SecretId:     aws.String(name),
		SecretString: aws.String(value),
	})
	return err
}

func (s *AWSSecretsManagerStore) Get(ctx context.Context, name string) (string, error) {
	out, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return "", NotFoundError{Store: s.Name(), Key: name}
		}
		return "", err
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("secret %q in region %s has no string value", name, s.region)
	}
	return *out.SecretString, nil
}

// Validate confirms credentials resolve by asking STS who we are.
func (s *AWSSecretsManagerStore) Validate(ctx context.Context) error {
	if _, err := s.sts.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{}); err != nil {
		return fmt.Errorf("AWS credentials check failed: %w", err)
	}
	return nil
}
