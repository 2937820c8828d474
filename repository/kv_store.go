package repository

import "context"

// KeyValueStore holds string records under string keys. Get returns
// domain.ErrNotFound when the key is absent.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Close() error
}
