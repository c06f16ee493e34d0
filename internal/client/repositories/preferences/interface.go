// Package preferences persists raw preference values in the local SQLite
// database. Values are opaque byte slices; typing and validation live in
// the store package.
package preferences

import (
	"context"
)

// Repository is a durable key/value table.
//
// Get returns (nil, nil) for a key that was never set. Clear reports how
// many keys it removed.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) (int64, error)
}
