package cache

import (
	"time"

	"github.com/frame-go/cachekit/errors"
	"github.com/frame-go/cachekit/log"
	"github.com/frame-go/cachekit/utils"
)

// ErrEmptyServerAddress is returned when a confirmed server has no address.
var ErrEmptyServerAddress = errors.New("server_address_empty")

var nowFunc = time.Now

// ParentBuilder receives the result of a nested builder
type ParentBuilder[T any] interface {
	ConfirmChild(child T) error
}

// Builder accumulates changes to a Config.
// A Builder is owned by a single goroutine.
type Builder struct {
	parent   ParentBuilder[*Config]
	config   *Config
	snapshot *Config
	// working server list, merged into config on every server change
	servers []ServerConfig
}

// NewBuilder creates a builder for a new default config
func NewBuilder() *Builder {
	return NewNestedBuilder(nil, nil)
}

// NewBuilderFromConfig creates a builder starting from a copy of config
func NewBuilderFromConfig(config *Config) *Builder {
	return NewNestedBuilder(nil, config)
}

// NewNestedBuilder creates a builder whose Build hands the result to parent.
// A nil config starts from NewConfig.
func NewNestedBuilder(parent ParentBuilder[*Config], config *Config) *Builder {
	if config == nil {
		config = NewConfig()
	} else {
		config = config.Clone()
	}
	return &Builder{
		parent:   parent,
		config:   config,
		snapshot: config.Clone(),
		servers:  cloneServers(config.Servers),
	}
}

// LoadBuilder creates a builder from the config stored under name.
// An empty name loads DefaultName; a missing config starts from NewConfig.
// Build writes the result back to store under the same name.
func LoadBuilder(store Store, name string) *Builder {
	if name == "" {
		name = DefaultName
	}
	if store == nil {
		return NewBuilder()
	}
	config, err := store.ReadConfig(name)
	if err != nil {
		if !errors.Is(err, ErrConfigNotFound) {
			errors.LogError(log.Get().Warn(), err).Str("name", name).Msg("load_cache_config_error")
		}
		config = nil
	}
	return NewNestedBuilder(&storeParent{store: store, name: name}, config)
}

// ProviderName sets the provider expected to serve the config
func (b *Builder) ProviderName(providerName string) *Builder {
	if utils.IsBlank(providerName) || b.config.ProviderName == providerName {
		return b
	}
	b.config.ProviderName = providerName
	return b
}

// ConnectTimeout sets connect timeout in seconds
func (b *Builder) ConnectTimeout(connectTimeout int) *Builder {
	if connectTimeout <= 0 || b.config.ConnectTimeout == connectTimeout {
		return b
	}
	b.config.ConnectTimeout = connectTimeout
	return b
}

// ExpireTime sets default expire time in seconds, or NeverExpire
func (b *Builder) ExpireTime(expireTime int) *Builder {
	if (expireTime <= 0 && expireTime != NeverExpire) || b.config.ExpireTime == expireTime {
		return b
	}
	b.config.ExpireTime = expireTime
	return b
}

// ClientPoolSize sets the number of idle clients kept open
func (b *Builder) ClientPoolSize(clientPoolSize int) *Builder {
	if clientPoolSize <= 0 || b.config.ClientPoolSize == clientPoolSize {
		return b
	}
	b.config.ClientPoolSize = clientPoolSize
	return b
}

// MaximumClient sets the maximum number of clients
func (b *Builder) MaximumClient(maximumClient int) *Builder {
	if maximumClient <= 0 || b.config.MaximumClient == maximumClient {
		return b
	}
	b.config.MaximumClient = maximumClient
	return b
}

// RetryCount sets how many times a failed command is retried
func (b *Builder) RetryCount(retryCount int) *Builder {
	if retryCount <= 0 || b.config.RetryCount == retryCount {
		return b
	}
	b.config.RetryCount = retryCount
	return b
}

// Authorization sets credentials. A blank username is ignored; a blank password clears the password.
func (b *Builder) Authorization(username, password string) *Builder {
	if !utils.IsBlank(username) && b.config.Username != username {
		b.config.Username = username
	}
	if utils.IsBlank(password) {
		password = ""
	}
	if b.config.Password != password {
		b.config.Password = password
	}
	return b
}

// ClusterMode sets the server topology; unknown modes are ignored
func (b *Builder) ClusterMode(clusterMode ClusterMode) *Builder {
	if !clusterMode.Valid() || b.config.ClusterMode == clusterMode.String() {
		return b
	}
	b.config.ClusterMode = clusterMode.String()
	return b
}

// MasterName sets the sentinel master name
func (b *Builder) MasterName(masterName string) *Builder {
	if b.config.MasterName == masterName {
		return b
	}
	b.config.MasterName = masterName
	return b
}

// Servers merges servers described in topology text, see ParseServers.
// Malformed lines are skipped.
func (b *Builder) Servers(serverInfo string) *Builder {
	servers, err := ParseServers(serverInfo)
	if err != nil {
		errors.LogError(log.Get().Debug(), err).Msg("skip_malformed_servers")
	}
	for _, server := range servers {
		index := indexOfMatch(b.servers, server.Address, server.Port)
		if index < 0 {
			server.LastModified = nextTimestamp(0)
			b.servers = append(b.servers, server)
			continue
		}
		if b.servers[index].Weight != server.Weight {
			server.LastModified = nextTimestamp(b.servers[index].LastModified)
			b.servers[index] = server
		}
	}
	b.config.Servers = cloneServers(b.servers)
	return b
}

// ServerBuilder creates a nested builder for a new server
func (b *Builder) ServerBuilder() *ServerConfigBuilder {
	return newServerConfigBuilder(b, NewServerConfig())
}

// ServerBuilderFor creates a nested builder seeded with the stored server matching address and port,
// or with a new server if none matches.
func (b *Builder) ServerBuilderFor(address string, port int) *ServerConfigBuilder {
	index := indexOfMatch(b.config.Servers, address, port)
	if index < 0 {
		return b.ServerBuilder()
	}
	return newServerConfigBuilder(b, b.config.Servers[index])
}

// ConfirmChild merges a server confirmed by a ServerConfigBuilder into the working list.
// A matching server is replaced only when LastModified differs.
func (b *Builder) ConfirmChild(server ServerConfig) error {
	if utils.IsBlank(server.Address) {
		return errors.Wrap(ErrEmptyServerAddress, "confirm_server_error").
			With("port", server.Port).With("weight", server.Weight)
	}
	index := indexOfMatch(b.servers, server.Address, server.Port)
	if index < 0 {
		b.servers = append(b.servers, server)
	} else if b.servers[index].LastModified != server.LastModified {
		b.servers[index] = server
	}
	b.config.Servers = cloneServers(b.servers)
	return nil
}

func (b *Builder) lookupServer(address string, port int) (ServerConfig, bool) {
	index := indexOfMatch(b.servers, address, port)
	if index < 0 {
		return ServerConfig{}, false
	}
	return b.servers[index], true
}

// RemoveServer removes the first server matching address and port
func (b *Builder) RemoveServer(address string, port int) *Builder {
	if index := indexOfMatch(b.config.Servers, address, port); index >= 0 {
		b.config.Servers = append(b.config.Servers[:index:index], b.config.Servers[index+1:]...)
	}
	if index := indexOfMatch(b.servers, address, port); index >= 0 {
		b.servers = append(b.servers[:index:index], b.servers[index+1:]...)
	}
	return b
}

// Modified reports whether Confirm would refresh LastModified
func (b *Builder) Modified() bool {
	return serversDiffer(b.config.Servers, b.servers) || !b.config.sameContent(b.snapshot)
}

// Confirm reconciles the working server list with the config and returns a copy of the result.
// LastModified is refreshed only when the config differs from its state at the previous Confirm,
// or at builder creation.
func (b *Builder) Confirm() *Config {
	if serversDiffer(b.config.Servers, b.servers) {
		b.config.Servers = cloneServers(b.servers)
	}
	if !b.config.sameContent(b.snapshot) {
		b.config.LastModified = nextTimestamp(b.config.LastModified)
	}
	b.snapshot = b.config.Clone()
	return b.config.Clone()
}

// Build confirms the config and hands it to the parent builder, if any
func (b *Builder) Build() (*Config, error) {
	config := b.Confirm()
	if b.parent == nil {
		return config, nil
	}
	if err := b.parent.ConfirmChild(config.Clone()); err != nil {
		return config, errors.Wrap(err, "confirm_cache_config_error")
	}
	return config, nil
}

// serversDiffer reports whether the lists differ by size, or any server of either list
// has no match in the other one.
func serversDiffer(stored, working []ServerConfig) bool {
	if len(stored) != len(working) {
		return true
	}
	for _, server := range stored {
		if !containsMatch(working, server) {
			return true
		}
	}
	for _, server := range working {
		if !containsMatch(stored, server) {
			return true
		}
	}
	return false
}

// nextTimestamp returns current UTC milliseconds, strictly greater than previous
func nextTimestamp(previous int64) int64 {
	now := nowFunc().UTC().UnixMilli()
	if now <= previous {
		return previous + 1
	}
	return now
}

type storeParent struct {
	store Store
	name  string
}

func (p *storeParent) ConfirmChild(config *Config) error {
	return p.store.WriteConfig(p.name, config)
}
