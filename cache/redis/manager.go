package redis

import (
	"sort"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/frame-go/cachekit/cache"
	"github.com/frame-go/cachekit/errors"
	"github.com/frame-go/cachekit/log"
)

// ProviderName is the name this backend registers in the cache provider table.
const ProviderName = "redis"

const (
	defaultPort     = 6379
	connMaxIdleTime = 60 * time.Second
	connMaxLifeTime = 10 * time.Minute
)

func init() {
	cache.RegisterProvider(ProviderName, func(logger *zerolog.Logger) (cache.Manager, error) {
		return NewManager(WithLogger(logger)), nil
	})
}

type options struct {
	logger *zerolog.Logger
}

type Option func(*options)

// WithLogger sets the manager logger. go-redis has one process-wide logger, so only the first
// manager created with a logger routes go-redis internal messages to it.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Manager keeps one go-redis client per registered cache name.
type Manager struct {
	mu      sync.RWMutex
	clients map[string]*Client
	logger  *zerolog.Logger
}

var _ cache.Manager = (*Manager)(nil)

func NewManager(opts ...Option) *Manager {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.Get()
	} else {
		installRedisLogger(o.logger)
	}
	return &Manager{
		clients: make(map[string]*Client),
		logger:  o.logger,
	}
}

func (m *Manager) Register(name string, config *cache.Config) bool {
	client, err := NewClient(config)
	if err != nil {
		errors.LogError(m.logger.Error(), err).Str("name", name).Msg("create_redis_client_error")
		return false
	}
	m.mu.Lock()
	previous := m.clients[name]
	m.clients[name] = client
	m.mu.Unlock()
	if previous != nil {
		m.closeClient(name, previous)
	}
	m.logger.Info().Str("name", name).Str("cluster_mode", config.Mode().String()).
		Int("servers", len(config.Servers)).Msg("redis_client_registered")
	return true
}

func (m *Manager) Registered(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.clients[name]
	return ok
}

func (m *Manager) Client(name string) (cache.Client, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	client, ok := m.clients[name]
	if !ok {
		return nil, false
	}
	return client, true
}

func (m *Manager) Deregister(name string) {
	m.mu.Lock()
	client, ok := m.clients[name]
	delete(m.clients, name)
	m.mu.Unlock()
	if ok {
		m.closeClient(name, client)
	}
}

func (m *Manager) Destroy() {
	m.mu.Lock()
	clients := m.clients
	m.clients = make(map[string]*Client)
	m.mu.Unlock()
	for name, client := range clients {
		m.closeClient(name, client)
	}
}

func (m *Manager) closeClient(name string, client *Client) {
	if err := client.Close(); err != nil {
		errors.LogError(m.logger.Warn(), err).Str("name", name).Msg("close_redis_client_error")
	}
}

var (
	redisLoggerOnce sync.Once
	installedLogger *redisLogger
)

func installRedisLogger(logger *zerolog.Logger) {
	redisLoggerOnce.Do(func() {
		installedLogger = newRedisLogger(logger)
		redis.SetLogger(installedLogger)
	})
}

// newUniversalClient maps cache config to the go-redis client of its cluster mode
func newUniversalClient(config *cache.Config) (redis.UniversalClient, error) {
	if len(config.Servers) == 0 {
		return nil, errors.New("redis_no_server_configured")
	}
	dialTimeout := time.Duration(config.ConnectTimeout) * time.Second
	poolSize, minIdle := poolSizes(config)
	switch mode := config.Mode(); mode {
	case cache.Standalone:
		return redis.NewClient(&redis.Options{
			Addr:            primaryServer(config.Servers).HostPort(defaultPort),
			Username:        config.Username,
			Password:        config.Password,
			DialTimeout:     dialTimeout,
			MaxRetries:      config.RetryCount,
			PoolSize:        poolSize,
			MinIdleConns:    minIdle,
			ConnMaxIdleTime: connMaxIdleTime,
			ConnMaxLifetime: connMaxLifeTime,
		}), nil
	case cache.Sharded:
		addrs := make(map[string]string, len(config.Servers))
		for _, server := range config.Servers {
			addr := server.HostPort(defaultPort)
			addrs[addr] = addr
		}
		return redis.NewRing(&redis.RingOptions{
			Addrs:           addrs,
			Username:        config.Username,
			Password:        config.Password,
			DialTimeout:     dialTimeout,
			MaxRetries:      config.RetryCount,
			PoolSize:        poolSize,
			MinIdleConns:    minIdle,
			ConnMaxIdleTime: connMaxIdleTime,
			ConnMaxLifetime: connMaxLifeTime,
		}), nil
	case cache.Cluster:
		return redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:           serverAddrs(config.Servers),
			Username:        config.Username,
			Password:        config.Password,
			DialTimeout:     dialTimeout,
			MaxRetries:      config.RetryCount,
			PoolSize:        poolSize,
			MinIdleConns:    minIdle,
			ConnMaxIdleTime: connMaxIdleTime,
			ConnMaxLifetime: connMaxLifeTime,
		}), nil
	case cache.Sentinel:
		if config.MasterName == "" {
			return nil, errors.New("redis_sentinel_master_name_empty")
		}
		return redis.NewFailoverClient(&redis.FailoverOptions{
			MasterName:      config.MasterName,
			SentinelAddrs:   serverAddrs(config.Servers),
			Username:        config.Username,
			Password:        config.Password,
			DialTimeout:     dialTimeout,
			MaxRetries:      config.RetryCount,
			PoolSize:        poolSize,
			MinIdleConns:    minIdle,
			ConnMaxIdleTime: connMaxIdleTime,
			ConnMaxLifetime: connMaxLifeTime,
		}), nil
	default:
		return nil, errors.New("redis_unsupported_cluster_mode").With("cluster_mode", mode.String())
	}
}

// poolSizes returns the pool size per node and the idle connections kept open
func poolSizes(config *cache.Config) (int, int) {
	poolSize := config.MaximumClient
	minIdle := config.ClientPoolSize
	if minIdle > poolSize {
		minIdle = poolSize
	}
	return poolSize, minIdle
}

// primaryServer returns the server with the highest weight, first one on ties
func primaryServer(servers []cache.ServerConfig) cache.ServerConfig {
	primary := servers[0]
	for _, server := range servers[1:] {
		if server.Weight > primary.Weight {
			primary = server
		}
	}
	return primary
}

// serverAddrs returns host:port of servers, heavier servers first
func serverAddrs(servers []cache.ServerConfig) []string {
	sorted := append([]cache.ServerConfig(nil), servers...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Weight > sorted[j].Weight
	})
	addrs := make([]string, 0, len(sorted))
	for _, server := range sorted {
		addrs = append(addrs, server.HostPort(defaultPort))
	}
	return addrs
}
