package stores

import (
	"fmt"
	"sort"
)

// StoreFactory creates a store instance from configuration
type StoreFactory func(storeConfig map[string]any) (Store, error)

// Registry manages store creation and registration
type Registry struct {
	factories map[string]StoreFactory
}

// NewRegistry creates a store registry with the built-in backends
func NewRegistry() *Registry {
	registry := &Registry{
		factories: make(map[string]StoreFactory),
	}

	registry.RegisterFactory("mock", func(storeConfig map[string]any) (Store, error) {
		return NewMockStore(), nil
	})
	registry.RegisterFactory("keyring", func(storeConfig map[string]any) (Store, error) {
		return NewKeyringStore(storeConfig), nil
	})
	registry.RegisterFactory("encrypted-file", func(storeConfig map[string]any) (Store, error) {
		return NewEncryptedFileStore(storeConfig)
	})
	registry.RegisterFactory("aws-secretsmanager", func(storeConfig map[string]any) (Store, error) {
		return NewAWSSecretsManagerStore(storeConfig)
	})
	registry.RegisterFactory("gcp-secretmanager", func(storeConfig map[string]any) (Store, error) {
		return NewGCPSecretManagerStore(storeConfig)
	})
	registry.RegisterFactory("azure-keyvault", func(storeConfig map[string]any) (Store, error) {
		return NewAzureKeyVaultStore(storeConfig)
	})

	return registry
}

// RegisterFactory registers a store factory for a given type
func (r *Registry) RegisterFactory(storeType string, factory StoreFactory) {
	r.factories[storeType] = factory
}

// Create builds a store instance of the given type
func (r *Registry) Create(storeType string, storeConfig map[string]any) (Store, error) {
	factory, exists := r.factories[storeType]
	if !exists {
		return nil, fmt.Errorf("unknown store type: %s", storeType)
	}
	return factory(storeConfig)
}

// SupportedTypes returns the registered store types, sorted.
func (r *Registry) SupportedTypes() []string {
	types := make([]string, 0, len(r.factories))
	for storeType := range r.factories {
		types = append(types, storeType)
	}
	sort.Strings(types)
	return types
}

// IsSupported checks if a store type is registered
func (r *Registry) IsSupported(storeType string) bool {
	_, exists := r.factories[storeType]
	return exists
}
