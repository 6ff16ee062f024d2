package redis

import (
	"context"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/frame-go/cachekit/cache"
	"github.com/frame-go/cachekit/cache/codec"
	"github.com/frame-go/cachekit/errors"
)

// Client implements cache.Client on a go-redis UniversalClient.
type Client struct {
	client redis.UniversalClient
	config *cache.Config
}

var _ cache.Client = (*Client)(nil)

// NewClient creates a client from config, see cache.ClusterMode for supported topologies
func NewClient(config *cache.Config) (*Client, error) {
	if config == nil {
		return nil, errors.New("redis_nil_config")
	}
	c, err := newUniversalClient(config)
	if err != nil {
		return nil, errors.Wrap(err, "redis_new_client_error").With("cluster_mode", config.ClusterMode)
	}
	return &Client{client: c, config: config}, nil
}

func (c *Client) GetRawClient() any {
	return c.client
}

func (c *Client) Add(ctx context.Context, key string, value any, expiration time.Duration) (bool, error) {
	b, err := codec.Marshal(value)
	if err != nil {
		return false, errors.Wrap(err, "redis_add_serialize_value_error").With("key", key)
	}
	result, err := c.client.SetNX(ctx, key, b, c.expiration(expiration)).Result()
	if err != nil {
		return false, errors.Wrap(err, "redis_add_request_error").With("key", key)
	}
	return result, nil
}

func (c *Client) Delete(ctx context.Context, keys ...string) (int, error) {
	result, err := c.client.Del(ctx, keys...).Result()
	if err != nil {
		return 0, errors.Wrap(err, "redis_delete_request_error").With("keys", keys)
	}
	return int(result), nil
}

func (c *Client) Exists(ctx context.Context, keys ...string) (int, error) {
	result, err := c.client.Exists(ctx, keys...).Result()
	if err != nil {
		return 0, errors.Wrap(err, "redis_exists_request_error").With("keys", keys)
	}
	return int(result), nil
}

// Expire sets the ttl of key. A resolved expiration of zero removes the ttl instead of deleting
// the key, and KeepExpiration only reports whether the key exists.
func (c *Client) Expire(ctx context.Context, key string, expiration time.Duration) (bool, error) {
	var result bool
	var err error
	switch resolved := c.expiration(expiration); {
	case expiration == cache.KeepExpiration:
		var n int64
		n, err = c.client.Exists(ctx, key).Result()
		result = n > 0
	case resolved <= 0:
		// PERSIST answers false for a key without ttl, so check existence on that path
		result, err = c.client.Persist(ctx, key).Result()
		if err == nil && !result {
			var n int64
			n, err = c.client.Exists(ctx, key).Result()
			result = n > 0
		}
	default:
		result, err = c.client.Expire(ctx, key, resolved).Result()
	}
	if err != nil {
		return false, errors.Wrap(err, "redis_expire_request_error").With("key", key)
	}
	return result, nil
}

func (c *Client) Get(ctx context.Context, key string, value any) error {
	v, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return errors.Wrap(cache.Nil, "redis_get_request_error").With("key", key)
	}
	if err != nil {
		return errors.Wrap(err, "redis_get_request_error").With("key", key)
	}
	err = codec.Unmarshal(v, value)
	if err != nil {
		return errors.Wrap(err, "redis_get_deserialize_value_error").With("key", key)
	}
	return nil
}

func (c *Client) IncrBy(ctx context.Context, key string, value int64) (int64, error) {
	result, err := c.client.IncrBy(ctx, key, value).Result()
	if err != nil {
		return 0, errors.Wrap(err, "redis_incrby_request_error").With("key", key)
	}
	return result, nil
}

func (c *Client) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	b, err := codec.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "redis_set_serialize_value_error").With("key", key)
	}
	err = c.client.Set(ctx, key, b, c.expiration(expiration)).Err()
	if err != nil {
		return errors.Wrap(err, "redis_set_request_error").With("key", key)
	}
	return nil
}

func (c *Client) Update(ctx context.Context, key string, value any, expiration time.Duration) (bool, error) {
	b, err := codec.Marshal(value)
	if err != nil {
		return false, errors.Wrap(err, "redis_update_serialize_value_error").With("key", key)
	}
	result, err := c.client.SetXX(ctx, key, b, c.expiration(expiration)).Result()
	if err != nil {
		return false, errors.Wrap(err, "redis_update_request_error").With("key", key)
	}
	return result, nil
}

func (c *Client) Close() error {
	err := c.client.Close()
	if err != nil && !errors.Is(err, redis.ErrClosed) {
		return errors.Wrap(err, "redis_close_error")
	}
	return nil
}

func (c *Client) expiration(expiration time.Duration) time.Duration {
	return cache.ResolveExpiration(expiration, c.config)
}
