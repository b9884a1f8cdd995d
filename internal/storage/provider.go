// Package storage defines the interface for persisting the rendered
// artifacts. This abstraction keeps the pipeline independent of the concrete
// backend (Redis, the local filesystem, or an in-memory store in tests).
package storage

import (
	"context"
)

// Provider defines the common interface for an artifact store.
type Provider interface {
	// Save writes data under the given key, replacing any previous value.
	Save(ctx context.Context, key string, data []byte) error
}

// NoOpProvider is a storage provider that performs no operations. It is
// useful for dry runs where data is fetched and merged but not persisted.
type NoOpProvider struct{}

// Save for NoOpProvider does nothing and always returns nil.
func (n *NoOpProvider) Save(_ context.Context, _ string, _ []byte) error {
	return nil
}
