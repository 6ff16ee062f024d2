// Package bigcache provides an in-process cache.Manager backed by allegro/bigcache.
// Values carry their own deadline, so per-key expiration works although bigcache
// only knows a cache wide life window.
package bigcache

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/frame-go/cachekit/cache"
	"github.com/frame-go/cachekit/errors"
	"github.com/frame-go/cachekit/log"
)

// ProviderName is the name this backend registers in the cache provider table.
const ProviderName = "bigcache"

func init() {
	cache.RegisterProvider(ProviderName, func(logger *zerolog.Logger) (cache.Manager, error) {
		return NewManager(WithLogger(logger)), nil
	})
}

type options struct {
	logger      *zerolog.Logger
	hardMaxSize int
}

type Option func(*options)

func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithHardMaxCacheSize limits each cache to sizeMB megabytes, 0 means unlimited
func WithHardMaxCacheSize(sizeMB int) Option {
	return func(o *options) {
		o.hardMaxSize = sizeMB
	}
}

type Manager struct {
	mu          sync.RWMutex
	clients     map[string]*Client
	logger      *zerolog.Logger
	hardMaxSize int
}

var _ cache.Manager = (*Manager)(nil)

func NewManager(opts ...Option) *Manager {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.Get()
	}
	return &Manager{
		clients:     make(map[string]*Client),
		logger:      o.logger,
		hardMaxSize: o.hardMaxSize,
	}
}

func (m *Manager) Register(name string, config *cache.Config) bool {
	client, err := NewClient(config, m.hardMaxSize, m.logger)
	if err != nil {
		errors.LogError(m.logger.Error(), err).Str("name", name).Msg("create_bigcache_client_error")
		return false
	}
	m.mu.Lock()
	previous := m.clients[name]
	m.clients[name] = client
	m.mu.Unlock()
	if previous != nil {
		_ = previous.Close()
	}
	m.logger.Info().Str("name", name).Int("expire_time", config.ExpireTime).Msg("bigcache_client_registered")
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
		_ = client.Close()
	}
}

func (m *Manager) Destroy() {
	m.mu.Lock()
	clients := m.clients
	m.clients = make(map[string]*Client)
	m.mu.Unlock()
	for _, client := range clients {
		_ = client.Close()
	}
}
