package bigcache

import (
	"context"
	"encoding/binary"
	"strconv"
	"sync"
	"time"

	bc "github.com/allegro/bigcache/v3"
	"github.com/rs/zerolog"

	"github.com/frame-go/cachekit/cache"
	"github.com/frame-go/cachekit/cache/codec"
	"github.com/frame-go/cachekit/errors"
	"github.com/frame-go/cachekit/utils"
)

const (
	headerSize = 8

	foreverWindow = 100 * 365 * 24 * time.Hour
)

// Client implements cache.Client on a BigCache.
// Each entry is an 8 byte big endian deadline in unix nanoseconds, 0 for none, followed by the value.
type Client struct {
	mu     sync.Mutex
	store  *bc.BigCache
	config *cache.Config
}

var _ cache.Client = (*Client)(nil)

func NewClient(config *cache.Config, hardMaxSize int, logger *zerolog.Logger) (*Client, error) {
	if config == nil {
		return nil, errors.New("bigcache_nil_config")
	}
	// expiry is tracked by the entry deadline; bigcache itself never expires entries
	conf := bc.DefaultConfig(foreverWindow)
	conf.HardMaxCacheSize = hardMaxSize
	if logger != nil {
		conf.Logger = logger
	}
	store, err := bc.New(context.Background(), conf)
	if err != nil {
		return nil, errors.Wrap(err, "bigcache_new_cache_error")
	}
	return &Client{store: store, config: config}, nil
}

func (c *Client) GetRawClient() any {
	return c.store
}

func (c *Client) Add(_ context.Context, key string, value any, expiration time.Duration) (bool, error) {
	b, err := codec.Marshal(value)
	if err != nil {
		return false, errors.Wrap(err, "bigcache_add_serialize_value_error").With("key", key)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.load(key); ok {
		return false, nil
	}
	if err = c.store.Set(key, encodeEntry(c.deadline(nil, expiration), b)); err != nil {
		return false, errors.Wrap(err, "bigcache_add_request_error").With("key", key)
	}
	return true, nil
}

func (c *Client) Delete(_ context.Context, keys ...string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	deleted := 0
	for _, key := range keys {
		_, ok := c.load(key)
		if err := c.store.Delete(key); err != nil && !errors.Is(err, bc.ErrEntryNotFound) {
			return deleted, errors.Wrap(err, "bigcache_delete_request_error").With("key", key)
		}
		if ok {
			deleted++
		}
	}
	return deleted, nil
}

func (c *Client) Exists(_ context.Context, keys ...string) (int, error) {
	exists := 0
	for _, key := range keys {
		if _, ok := c.load(key); ok {
			exists++
		}
	}
	return exists, nil
}

func (c *Client) Expire(_ context.Context, key string, expiration time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.load(key)
	if !ok {
		return false, nil
	}
	if err := c.store.Set(key, encodeEntry(c.deadline(entry, expiration), entry[headerSize:])); err != nil {
		return false, errors.Wrap(err, "bigcache_expire_request_error").With("key", key)
	}
	return true, nil
}

func (c *Client) Get(_ context.Context, key string, value any) error {
	entry, ok := c.load(key)
	if !ok {
		return errors.Wrap(cache.Nil, "bigcache_get_request_error").With("key", key)
	}
	if err := codec.Unmarshal(entry[headerSize:], value); err != nil {
		return errors.Wrap(err, "bigcache_get_deserialize_value_error").With("key", key)
	}
	return nil
}

func (c *Client) IncrBy(_ context.Context, key string, value int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var current int64
	entry, ok := c.load(key)
	if ok {
		var err error
		current, err = strconv.ParseInt(utils.BytesToString(entry[headerSize:]), 10, 64)
		if err != nil {
			return 0, errors.Wrap(err, "bigcache_incrby_value_not_integer").With("key", key)
		}
	}
	current += value
	deadline := c.deadline(entry, cache.KeepExpiration)
	if err := c.store.Set(key, encodeEntry(deadline, strconv.AppendInt(nil, current, 10))); err != nil {
		return 0, errors.Wrap(err, "bigcache_incrby_request_error").With("key", key)
	}
	return current, nil
}

func (c *Client) Set(_ context.Context, key string, value any, expiration time.Duration) error {
	b, err := codec.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "bigcache_set_serialize_value_error").With("key", key)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	var entry []byte
	if expiration == cache.KeepExpiration {
		entry, _ = c.load(key)
	}
	if err = c.store.Set(key, encodeEntry(c.deadline(entry, expiration), b)); err != nil {
		return errors.Wrap(err, "bigcache_set_request_error").With("key", key)
	}
	return nil
}

func (c *Client) Update(_ context.Context, key string, value any, expiration time.Duration) (bool, error) {
	b, err := codec.Marshal(value)
	if err != nil {
		return false, errors.Wrap(err, "bigcache_update_serialize_value_error").With("key", key)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.load(key)
	if !ok {
		return false, nil
	}
	if err = c.store.Set(key, encodeEntry(c.deadline(entry, expiration), b)); err != nil {
		return false, errors.Wrap(err, "bigcache_update_request_error").With("key", key)
	}
	return true, nil
}

func (c *Client) Close() error {
	return c.store.Close()
}

// load returns the live entry of key, header included
func (c *Client) load(key string) ([]byte, bool) {
	entry, err := c.store.Get(key)
	if err != nil || len(entry) < headerSize {
		return nil, false
	}
	deadline := int64(binary.BigEndian.Uint64(entry))
	if deadline != 0 && time.Now().UnixNano() >= deadline {
		return nil, false
	}
	return entry, true
}

// deadline computes the deadline stored with a write; entry is the current live entry, if any
func (c *Client) deadline(entry []byte, expiration time.Duration) int64 {
	if expiration == cache.KeepExpiration {
		if len(entry) >= headerSize {
			return int64(binary.BigEndian.Uint64(entry))
		}
		return 0
	}
	expiration = cache.ResolveExpiration(expiration, c.config)
	if expiration <= 0 {
		return 0
	}
	return time.Now().Add(expiration).UnixNano()
}

func encodeEntry(deadline int64, value []byte) []byte {
	entry := make([]byte, headerSize+len(value))
	binary.BigEndian.PutUint64(entry, uint64(deadline))
	copy(entry[headerSize:], value)
	return entry
}
