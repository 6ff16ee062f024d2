package cache

import (
	"github.com/frame-go/cachekit/errors"
)

// ErrConfigNotFound is returned by Store when no config is persisted under the name.
var ErrConfigNotFound = errors.New("cache_config_not_found")

// Store persists cache configs by name.
type Store interface {
	// ReadConfig returns the config stored under name, or ErrConfigNotFound
	ReadConfig(name string) (*Config, error)

	// WriteConfig persists config under name
	WriteConfig(name string, config *Config) error
}
