// Package kv defines the durable key-value contract all ledger state
// is persisted through: a map from string keys to JSON-serializable
// values. Backends only need to honor this contract; the ledger never
// assumes any further structure.
package kv

import "context"

//go:generate mockgen -source=kv.go -destination=store_mock.go -package=kv
type Store interface {
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value any) error
	// Get loads the value stored under key into dest. It reports
	// whether the key was present; when it is not, dest is left
	// untouched so callers can pre-load defaults.
	Get(ctx context.Context, key string, dest any) (bool, error)
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
	// Clear deletes every key.
	Clear(ctx context.Context) error
}
