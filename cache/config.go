package cache

import (
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/frame-go/cachekit/errors"
)

// DefaultName is the reserved cache name bootstrapped by the registry.
const DefaultName = "default"

const (
	// NeverExpire marks cached values without expiration.
	NeverExpire = -1

	DefaultConnectTimeout = 1
	DefaultExpireTime     = NeverExpire
	DefaultClientPoolSize = 5
	DefaultMaximumClient  = 500
	DefaultRetryCount     = 3

	// DefaultPort means the server port is not set; backends apply their own port.
	DefaultPort = 0
	// DefaultWeight is the weight of a server parsed without a weight suffix.
	DefaultWeight = 1
)

// ClusterMode is the topology of the cache servers.
type ClusterMode int

const (
	Standalone ClusterMode = iota
	Sharded
	Cluster
	Sentinel
)

var clusterModeNames = []string{"standalone", "sharded", "cluster", "sentinel"}

// String returns the canonical form stored in Config.ClusterMode
func (m ClusterMode) String() string {
	if m < 0 || int(m) >= len(clusterModeNames) {
		return "unknown(" + strconv.Itoa(int(m)) + ")"
	}
	return clusterModeNames[m]
}

// Valid reports whether m is one of the declared modes
func (m ClusterMode) Valid() bool {
	return m >= 0 && int(m) < len(clusterModeNames)
}

// ParseClusterMode parses the canonical name case-insensitively.
func ParseClusterMode(s string) (ClusterMode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range clusterModeNames {
		if n == name {
			return ClusterMode(i), nil
		}
	}
	return Standalone, errors.New("unknown_cluster_mode").With("cluster_mode", s)
}

// Config describes one named cache topology.
type Config struct {
	// Name of the Manager provider expected to serve this config, e.g. "redis".
	ProviderName string `json:"provider_name" mapstructure:"provider_name"`

	// Connect timeout in seconds.
	ConnectTimeout int `json:"connect_timeout" mapstructure:"connect_timeout" validate:"gt=0"`

	// Default expire time in seconds, or NeverExpire.
	ExpireTime int `json:"expire_time" mapstructure:"expire_time" validate:"min=-1,ne=0"`

	ClientPoolSize int `json:"client_pool_size" mapstructure:"client_pool_size" validate:"gt=0"`
	MaximumClient  int `json:"maximum_client" mapstructure:"maximum_client" validate:"gt=0"`
	RetryCount     int `json:"retry_count" mapstructure:"retry_count" validate:"gt=0"`

	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`

	// Canonical string of ClusterMode.
	ClusterMode string `json:"cluster_mode" mapstructure:"cluster_mode" validate:"omitempty,oneof=standalone sharded cluster sentinel"`

	// Only used in Sentinel mode.
	MasterName string `json:"master_name" mapstructure:"master_name"`

	Servers []ServerConfig `json:"servers" mapstructure:"servers" validate:"dive"`

	// UTC unix milliseconds.
	LastModified int64 `json:"last_modified" mapstructure:"last_modified"`
}

// ServerConfig describes one cache server endpoint.
type ServerConfig struct {
	Address      string `json:"address" mapstructure:"address" validate:"required"`
	Port         int    `json:"port" mapstructure:"port" validate:"min=0,max=65535"`
	Weight       int    `json:"weight" mapstructure:"weight" validate:"min=0"`
	LastModified int64  `json:"last_modified" mapstructure:"last_modified"`
}

// NewConfig returns a config filled with default values
func NewConfig() *Config {
	return &Config{
		ConnectTimeout: DefaultConnectTimeout,
		ExpireTime:     DefaultExpireTime,
		ClientPoolSize: DefaultClientPoolSize,
		MaximumClient:  DefaultMaximumClient,
		RetryCount:     DefaultRetryCount,
		ClusterMode:    Standalone.String(),
	}
}

// NewServerConfig returns a server with default port and weight
func NewServerConfig() ServerConfig {
	return ServerConfig{Port: DefaultPort, Weight: DefaultWeight}
}

// Mode parses ClusterMode, falling back to Standalone
func (c *Config) Mode() ClusterMode {
	mode, err := ParseClusterMode(c.ClusterMode)
	if err != nil {
		return Standalone
	}
	return mode
}

// Clone returns a copy which shares no server slice with c
func (c *Config) Clone() *Config {
	clone := *c
	clone.Servers = cloneServers(c.Servers)
	return &clone
}

// sameContent compares every field except LastModified. Nil and empty server lists are equal.
func (c *Config) sameContent(o *Config) bool {
	if o == nil {
		return false
	}
	a, b := *c, *o
	a.Servers, b.Servers = nil, nil
	a.LastModified, b.LastModified = 0, 0
	return reflect.DeepEqual(a, b) && slices.Equal(c.Servers, o.Servers)
}

// Match reports whether the server has the given address and port.
// Weight and LastModified are not part of server identity.
func (s ServerConfig) Match(address string, port int) bool {
	return s.Address == address && s.Port == port
}

// MatchServer reports whether both servers have the same address and port
func (s ServerConfig) MatchServer(o ServerConfig) bool {
	return s.Match(o.Address, o.Port)
}

// HostPort returns "address:port", using defaultPort when port is not set
func (s ServerConfig) HostPort(defaultPort int) string {
	port := s.Port
	if port == DefaultPort {
		port = defaultPort
	}
	return s.Address + ":" + strconv.Itoa(port)
}

// String renders the server in the topology text format: address[:port]|weight
func (s ServerConfig) String() string {
	var sb strings.Builder
	sb.WriteString(s.Address)
	if s.Port != DefaultPort {
		sb.WriteByte(portSeparator)
		sb.WriteString(strconv.Itoa(s.Port))
	}
	sb.WriteByte(weightSeparator)
	sb.WriteString(strconv.Itoa(s.Weight))
	return sb.String()
}

func cloneServers(servers []ServerConfig) []ServerConfig {
	if servers == nil {
		return nil
	}
	return append(make([]ServerConfig, 0, len(servers)), servers...)
}

func containsMatch(servers []ServerConfig, server ServerConfig) bool {
	return indexOfMatch(servers, server.Address, server.Port) >= 0
}

func indexOfMatch(servers []ServerConfig, address string, port int) int {
	for i := range servers {
		if servers[i].Match(address, port) {
			return i
		}
	}
	return -1
}
