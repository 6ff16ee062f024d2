package cache

import (
	"github.com/rs/zerolog"

	"github.com/frame-go/cachekit/errors"
	"github.com/frame-go/cachekit/log"
)

type options struct {
	logger   *zerolog.Logger
	provider string
	manager  Manager
}

type Option func(*options)

// WithLogger sets the logger of registry and the manager it creates
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithProvider selects a provider by name when several are registered
func WithProvider(name string) Option {
	return func(o *options) {
		o.provider = name
	}
}

// WithManager uses manager directly instead of resolving a provider
func WithManager(manager Manager) Option {
	return func(o *options) {
		o.manager = manager
	}
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = log.Get()
	}
	return o
}

// Registry binds cache names to clients through a Manager.
// Methods of a nil *Registry behave as if nothing is registered.
type Registry struct {
	manager  Manager
	store    Store
	provider string
	logger   *zerolog.Logger
}

// NewRegistry resolves the Manager and registers DefaultName from store.
// Failing to register DefaultName is logged and does not fail the registry.
func NewRegistry(store Store, opts ...Option) (*Registry, error) {
	o := newOptions(opts)
	r := &Registry{
		manager: o.manager,
		store:   store,
		logger:  o.logger,
	}
	if r.manager == nil {
		name, factory, err := resolveProvider(o.provider)
		if err != nil {
			return nil, err
		}
		manager, err := factory(o.logger)
		if err != nil {
			return nil, errors.Wrap(err, "create_cache_manager_error").With("provider", name)
		}
		r.manager = manager
		r.provider = name
	}
	if !r.Register(DefaultName) {
		r.logger.Warn().Str("name", DefaultName).Msg("register_default_cache_failed")
	}
	return r, nil
}

// Provider returns the name of the resolved provider, empty when the manager was injected
func (r *Registry) Provider() string {
	if r == nil {
		return ""
	}
	return r.provider
}

// Register registers name with the config read from store.
// This is the only way to (re)register DefaultName.
func (r *Registry) Register(name string) bool {
	if r == nil || name == "" || r.store == nil {
		return false
	}
	config, err := r.store.ReadConfig(name)
	if err != nil {
		errors.LogError(r.logger.Debug(), err).Str("name", name).Msg("read_cache_config_error")
		return false
	}
	return r.register(name, config)
}

// RegisterConfig registers name with config. Empty names and DefaultName are rejected.
func (r *Registry) RegisterConfig(name string, config *Config) bool {
	if r == nil || name == "" || name == DefaultName || config == nil {
		return false
	}
	r.logger.Debug().Str("name", name).Str("provider", config.ProviderName).
		Int("servers", len(config.Servers)).Msg("register_cache")
	return r.register(name, config.Clone())
}

func (r *Registry) register(name string, config *Config) bool {
	if r.provider != "" && config.ProviderName != "" && config.ProviderName != r.provider {
		r.logger.Warn().Str("name", name).Str("provider", r.provider).
			Str("config_provider", config.ProviderName).Msg("cache_provider_mismatch")
		return false
	}
	return r.manager.Register(name, config)
}

// Registered checks whether name is bound to a client
func (r *Registry) Registered(name string) bool {
	if r == nil || name == "" {
		return false
	}
	return r.manager.Registered(name)
}

// Client gets the client bound to name
func (r *Registry) Client(name string) (Client, bool) {
	if r == nil || name == "" {
		return nil, false
	}
	return r.manager.Client(name)
}

// Deregister removes the client bound to name
func (r *Registry) Deregister(name string) {
	if r == nil || name == "" {
		return
	}
	r.manager.Deregister(name)
}

// Destroy releases all clients of the manager
func (r *Registry) Destroy() {
	if r == nil {
		return
	}
	r.manager.Destroy()
}
