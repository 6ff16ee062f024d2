package local

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/frame-go/cachekit/cache"
	"github.com/frame-go/cachekit/cache/codec"
	"github.com/frame-go/cachekit/errors"
	"github.com/frame-go/cachekit/utils"
)

// Client implements cache.Client on a ristretto cache.
// Writes are serialized so conditional operations are atomic.
type Client struct {
	mu     sync.Mutex
	store  *ristretto.Cache
	config *cache.Config
}

var _ cache.Client = (*Client)(nil)

func NewClient(config *cache.Config, maxEntries int64) (*Client, error) {
	if config == nil {
		return nil, errors.New("local_nil_config")
	}
	store, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
		// cost counts entries, not bytes
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "local_new_cache_error").With("max_entries", maxEntries)
	}
	return &Client{store: store, config: config}, nil
}

func (c *Client) GetRawClient() any {
	return c.store
}

func (c *Client) Add(_ context.Context, key string, value any, expiration time.Duration) (bool, error) {
	b, err := codec.Marshal(value)
	if err != nil {
		return false, errors.Wrap(err, "local_add_serialize_value_error").With("key", key)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.store.Get(key); ok {
		return false, nil
	}
	if err = c.set(key, b, c.ttl(key, expiration)); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Client) Delete(_ context.Context, keys ...string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	deleted := 0
	for _, key := range keys {
		if _, ok := c.store.Get(key); ok {
			c.store.Del(key)
			deleted++
		}
	}
	c.store.Wait()
	return deleted, nil
}

func (c *Client) Exists(_ context.Context, keys ...string) (int, error) {
	exists := 0
	for _, key := range keys {
		if _, ok := c.store.Get(key); ok {
			exists++
		}
	}
	return exists, nil
}

func (c *Client) Expire(_ context.Context, key string, expiration time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.store.Get(key)
	if !ok {
		return false, nil
	}
	if err := c.set(key, v.([]byte), c.ttl(key, expiration)); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Client) Get(_ context.Context, key string, value any) error {
	v, ok := c.store.Get(key)
	if !ok {
		return errors.Wrap(cache.Nil, "local_get_request_error").With("key", key)
	}
	if err := codec.Unmarshal(v.([]byte), value); err != nil {
		return errors.Wrap(err, "local_get_deserialize_value_error").With("key", key)
	}
	return nil
}

func (c *Client) IncrBy(_ context.Context, key string, value int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var current int64
	if v, ok := c.store.Get(key); ok {
		var err error
		current, err = strconv.ParseInt(utils.BytesToString(v.([]byte)), 10, 64)
		if err != nil {
			return 0, errors.Wrap(err, "local_incrby_value_not_integer").With("key", key)
		}
	}
	current += value
	if err := c.set(key, strconv.AppendInt(nil, current, 10), c.ttl(key, cache.KeepExpiration)); err != nil {
		return 0, err
	}
	return current, nil
}

func (c *Client) Set(_ context.Context, key string, value any, expiration time.Duration) error {
	b, err := codec.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "local_set_serialize_value_error").With("key", key)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.set(key, b, c.ttl(key, expiration))
}

func (c *Client) Update(_ context.Context, key string, value any, expiration time.Duration) (bool, error) {
	b, err := codec.Marshal(value)
	if err != nil {
		return false, errors.Wrap(err, "local_update_serialize_value_error").With("key", key)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.store.Get(key); !ok {
		return false, nil
	}
	if err = c.set(key, b, c.ttl(key, expiration)); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Client) Close() error {
	c.store.Close()
	return nil
}

// set stores a private copy of value and waits until it is visible to Get
func (c *Client) set(key string, value []byte, ttl time.Duration) error {
	value = append([]byte(nil), value...)
	if !c.store.SetWithTTL(key, value, 1, ttl) {
		return errors.New("local_set_dropped").With("key", key)
	}
	c.store.Wait()
	return nil
}

// ttl resolves expiration for key; KeepExpiration keeps the remaining ttl of an existing key
func (c *Client) ttl(key string, expiration time.Duration) time.Duration {
	if expiration == cache.KeepExpiration {
		if remaining, ok := c.store.GetTTL(key); ok {
			return remaining
		}
		return 0
	}
	expiration = cache.ResolveExpiration(expiration, c.config)
	if expiration < 0 {
		return 0
	}
	return expiration
}
