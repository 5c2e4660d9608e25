// Package stores implements the secret store backends that receive
// migrated credential values.
//
// The migration engine consumes only the Set half of a Store; Get exists
// for the gateway-launch path, which resolves placeholder names back into
// an environment map. Stores are constructed from configuration through
// the registry in this package.
package stores

import (
	"context"
	"errors"
	"fmt"
)

// Store is a named secret store backend.
type Store interface {
	// Name returns the backend type name, e.g. "keyring".
	Name() string

	// Set writes a secret value under the given environment variable
	// name, creating or overwriting as needed.
	Set(ctx context.Context, name, value string) error

	// Get returns the stored value for name, or NotFoundError.
	Get(ctx context.Context, name string) (string, error)

	// Validate checks that the backend is usable in this environment
	// without writing anything.
	Validate(ctx context.Context) error
}

// NotFoundError indicates a secret does not exist in a store.
type NotFoundError struct {
	Store string
	Key   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("secret %q not found in %s store", e.Key, e.Store)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}
