package cache

import (
	"context"
	"time"

	"github.com/frame-go/cachekit/errors"
)

const (
	// KeepExpiration keeps current expiration for existing value
	KeepExpiration time.Duration = -1

	// DefaultExpiration applies Config.ExpireTime of the client
	DefaultExpiration time.Duration = -2
)

// Nil error returned when key does not exist.
var Nil = errors.New("cache_key_not_found")

// Client is a Cache client representing a connection pool.
// It is safe for concurrent use by multiple goroutines.
type Client interface {
	// GetRawClient gets underlying client object
	GetRawClient() any

	// Add adds key if key does not exist. When key already holds a value, no operation is performed.
	// Returns whether the key is added.
	Add(ctx context.Context, key string, value any, expiration time.Duration) (bool, error)

	// Delete removes the keys. When key does not exist, no operation is performed.
	// Returns the number of keys that were removed.
	Delete(ctx context.Context, keys ...string) (int, error)

	// Exists checks if keys exist.
	// Returns the number of keys that exist.
	Exists(ctx context.Context, keys ...string) (int, error)

	// Expire updates the expiration of key. When key does not exist, no operation is performed.
	// Returns whether the expiration is updated.
	Expire(ctx context.Context, key string, expiration time.Duration) (bool, error)

	// Get gets value of key.
	// `value` should be initialized to a pointer to output data type.
	// If the key does not exist, returns `Nil` error
	Get(ctx context.Context, key string, value any) error

	// IncrBy increments the number stored at key by `value`.
	// If the key does not exist, it is set to 0 before performing the operation.
	// Returns the value after increment.
	IncrBy(ctx context.Context, key string, value int64) (int64, error)

	// Set adds or updates key.
	// Zero expiration means the key has no expiration time; KeepExpiration keeps existing expiration;
	// DefaultExpiration uses the configured expire time.
	Set(ctx context.Context, key string, value any, expiration time.Duration) error

	// Update updates key if key exists. When key does not exist, no operation is performed.
	// Returns whether the key is updated.
	Update(ctx context.Context, key string, value any, expiration time.Duration) (bool, error)

	// Close releases the connections held by the client
	Close() error
}

// ResolveExpiration maps DefaultExpiration to the config expire time.
// NeverExpire in config becomes zero, meaning no expiration.
func ResolveExpiration(expiration time.Duration, config *Config) time.Duration {
	if expiration != DefaultExpiration {
		return expiration
	}
	if config == nil || config.ExpireTime <= 0 {
		return 0
	}
	return time.Duration(config.ExpireTime) * time.Second
}
