package cache

import (
	"sync"

	"go.uber.org/atomic"

	"github.com/frame-go/cachekit/errors"
)

var (
	instanceMu    sync.Mutex
	instance      = atomic.NewPointer[Registry](nil)
	instanceStore Store
	instanceOpts  []Option
)

// SetupInstance sets how GetInstance creates the process-wide registry.
// It does not affect a registry already created; call Destroy first to rebuild.
func SetupInstance(store Store, opts ...Option) {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	instanceStore = store
	instanceOpts = opts
}

// GetInstance returns the process-wide registry, creating it on first use.
// A creation failure is logged and returned; the next call retries.
func GetInstance() (*Registry, error) {
	if r := instance.Load(); r != nil {
		return r, nil
	}
	instanceMu.Lock()
	defer instanceMu.Unlock()
	if r := instance.Load(); r != nil {
		return r, nil
	}
	r, err := NewRegistry(instanceStore, instanceOpts...)
	if err != nil {
		errors.LogError(newOptions(instanceOpts).logger.Warn(), err).Msg("init_cache_registry_error")
		return nil, err
	}
	instance.Store(r)
	return r, nil
}

// Register registers name from the store with the process-wide registry
func Register(name string) bool {
	r, _ := GetInstance()
	return r.Register(name)
}

// RegisterConfig registers name with config in the process-wide registry
func RegisterConfig(name string, config *Config) bool {
	r, _ := GetInstance()
	return r.RegisterConfig(name, config)
}

// Registered checks name in the process-wide registry
func Registered(name string) bool {
	r, _ := GetInstance()
	return r.Registered(name)
}

// GetClient gets the client bound to name in the process-wide registry
func GetClient(name string) (Client, bool) {
	r, _ := GetInstance()
	return r.Client(name)
}

// Deregister removes name from the process-wide registry
func Deregister(name string) {
	r, _ := GetInstance()
	r.Deregister(name)
}

// Destroy releases the process-wide registry. The next GetInstance creates a new one.
func Destroy() {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	if r := instance.Load(); r != nil {
		instance.Store(nil)
		r.Destroy()
	}
}
