package cache

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/frame-go/cachekit/errors"
)

// Manager turns named configs into live clients and keeps the name to client bindings.
// Implementations must be safe for concurrent use.
type Manager interface {
	// Register creates a client from config and binds it to name, replacing any previous binding.
	// Returns whether the client was created.
	Register(name string, config *Config) bool

	// Registered checks whether name is bound to a client
	Registered(name string) bool

	// Client gets the client bound to name
	Client(name string) (Client, bool)

	// Deregister closes and removes the client bound to name
	Deregister(name string)

	// Destroy closes all clients
	Destroy()
}

// ProviderFactory creates a Manager. Backends register one from init().
type ProviderFactory func(logger *zerolog.Logger) (Manager, error)

var (
	ErrNoProvider        = errors.New("no_cache_provider_registered")
	ErrAmbiguousProvider = errors.New("multiple_cache_providers_registered")
	ErrUnknownProvider   = errors.New("unknown_cache_provider")
)

var (
	providersMu sync.RWMutex
	providers   = make(map[string]ProviderFactory)
)

// RegisterProvider makes a Manager implementation available by name.
// It panics if called twice with the same name or with a nil factory.
func RegisterProvider(name string, factory ProviderFactory) {
	providersMu.Lock()
	defer providersMu.Unlock()
	if factory == nil {
		panic("cache: RegisterProvider factory is nil")
	}
	if _, dup := providers[name]; dup {
		panic("cache: RegisterProvider called twice for provider " + name)
	}
	providers[name] = factory
}

// Providers returns a sorted list of the names of the registered providers
func Providers() []string {
	providersMu.RLock()
	defer providersMu.RUnlock()
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// resolveProvider selects the preferred provider, or the only registered one.
func resolveProvider(preferred string) (string, ProviderFactory, error) {
	providersMu.RLock()
	defer providersMu.RUnlock()
	if preferred != "" {
		factory, ok := providers[preferred]
		if !ok {
			return "", nil, errors.Wrap(ErrUnknownProvider, "resolve_cache_provider_error").With("provider", preferred)
		}
		return preferred, factory, nil
	}
	switch len(providers) {
	case 0:
		return "", nil, ErrNoProvider
	case 1:
		for name, factory := range providers {
			return name, factory, nil
		}
	}
	return "", nil, errors.Wrap(ErrAmbiguousProvider, "resolve_cache_provider_error").With("providers", len(providers))
}
