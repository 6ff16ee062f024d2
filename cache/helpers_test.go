package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeClient struct {
	Client
	name   string
	config *Config
}

type fakeManager struct {
	mu        sync.Mutex
	clients   map[string]*fakeClient
	reject    bool
	destroyed int
}

func newFakeManager() *fakeManager {
	return &fakeManager{clients: make(map[string]*fakeClient)}
}

func (m *fakeManager) Register(name string, config *Config) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reject {
		return false
	}
	m.clients[name] = &fakeClient{name: name, config: config}
	return true
}

func (m *fakeManager) Registered(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.clients[name]
	return ok
}

func (m *fakeManager) Client(name string) (Client, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clients[name]
	if !ok {
		return nil, false
	}
	return c, true
}

func (m *fakeManager) Deregister(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.clients, name)
}

func (m *fakeManager) Destroy() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients = make(map[string]*fakeClient)
	m.destroyed++
}

type memoryStore struct {
	configs map[string]*Config
	writes  int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{configs: make(map[string]*Config)}
}

func (s *memoryStore) ReadConfig(name string) (*Config, error) {
	config, ok := s.configs[name]
	if !ok {
		return nil, ErrConfigNotFound
	}
	return config.Clone(), nil
}

func (s *memoryStore) WriteConfig(name string, config *Config) error {
	s.configs[name] = config.Clone()
	s.writes++
	return nil
}

// useProviders replaces the provider table for the duration of the test
func useProviders(t *testing.T, factories map[string]ProviderFactory) {
	providersMu.Lock()
	saved := providers
	providers = make(map[string]ProviderFactory)
	providersMu.Unlock()
	for name, factory := range factories {
		RegisterProvider(name, factory)
	}
	t.Cleanup(func() {
		providersMu.Lock()
		providers = saved
		providersMu.Unlock()
	})
}

func managerFactory(m Manager, calls *int) ProviderFactory {
	return func(*zerolog.Logger) (Manager, error) {
		if calls != nil {
			*calls++
		}
		return m, nil
	}
}

// fixClock makes nowFunc return ms, restoring it at cleanup
func fixClock(t *testing.T, ms int64) {
	saved := nowFunc
	nowFunc = func() time.Time { return time.UnixMilli(ms) }
	t.Cleanup(func() { nowFunc = saved })
}

func sampleConfig() *Config {
	config := NewConfig()
	config.ProviderName = "fake"
	config.Servers = []ServerConfig{
		{Address: "cache01.internal", Port: 6379, Weight: 10, LastModified: 100},
		{Address: "cache02.internal", Port: 6379, Weight: 5, LastModified: 100},
	}
	config.LastModified = 100
	return config
}
