package store

import "context"

// DocumentStore persists whole named documents. Every write replaces the
// previous value of the key.
type DocumentStore interface {
	// Load returns the stored bytes, or nil with no error when the key has
	// never been written.
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Close() error
}
