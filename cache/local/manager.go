// Package local provides an in-process cache.Manager backed by ristretto.
// Server topology in the config is ignored; each registered name gets its own store.
package local

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/frame-go/cachekit/cache"
	"github.com/frame-go/cachekit/errors"
	"github.com/frame-go/cachekit/log"
)

// ProviderName is the name this backend registers in the cache provider table.
const ProviderName = "local"

const defaultMaxEntries = 100000

func init() {
	cache.RegisterProvider(ProviderName, func(logger *zerolog.Logger) (cache.Manager, error) {
		return NewManager(WithLogger(logger)), nil
	})
}

type options struct {
	logger     *zerolog.Logger
	maxEntries int64
}

type Option func(*options)

func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMaxEntries bounds the number of entries kept per cache name
func WithMaxEntries(n int64) Option {
	return func(o *options) {
		o.maxEntries = n
	}
}

type Manager struct {
	mu         sync.RWMutex
	clients    map[string]*Client
	logger     *zerolog.Logger
	maxEntries int64
}

var _ cache.Manager = (*Manager)(nil)

func NewManager(opts ...Option) *Manager {
	o := options{maxEntries: defaultMaxEntries}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.Get()
	}
	if o.maxEntries <= 0 {
		o.maxEntries = defaultMaxEntries
	}
	return &Manager{
		clients:    make(map[string]*Client),
		logger:     o.logger,
		maxEntries: o.maxEntries,
	}
}

func (m *Manager) Register(name string, config *cache.Config) bool {
	client, err := NewClient(config, m.maxEntries)
	if err != nil {
		errors.LogError(m.logger.Error(), err).Str("name", name).Msg("create_local_client_error")
		return false
	}
	m.mu.Lock()
	previous := m.clients[name]
	m.clients[name] = client
	m.mu.Unlock()
	if previous != nil {
		_ = previous.Close()
	}
	m.logger.Info().Str("name", name).Int64("max_entries", m.maxEntries).Msg("local_client_registered")
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
