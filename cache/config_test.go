package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frame-go/cachekit/errors"
)

func TestNewConfigDefaults(t *testing.T) {
	config := NewConfig()
	assert.Equal(t, DefaultConnectTimeout, config.ConnectTimeout)
	assert.Equal(t, NeverExpire, config.ExpireTime)
	assert.Equal(t, DefaultClientPoolSize, config.ClientPoolSize)
	assert.Equal(t, DefaultMaximumClient, config.MaximumClient)
	assert.Equal(t, DefaultRetryCount, config.RetryCount)
	assert.Equal(t, "standalone", config.ClusterMode)
	assert.Equal(t, "", config.Password)
	assert.Empty(t, config.Servers)
}

func TestClusterMode(t *testing.T) {
	for _, mode := range []ClusterMode{Standalone, Sharded, Cluster, Sentinel} {
		parsed, err := ParseClusterMode(mode.String())
		require.NoError(t, err)
		assert.Equal(t, mode, parsed)
		assert.True(t, mode.Valid())
	}
	parsed, err := ParseClusterMode(" Sentinel ")
	require.NoError(t, err)
	assert.Equal(t, Sentinel, parsed)

	_, err = ParseClusterMode("ring")
	assert.Error(t, err)
	assert.False(t, ClusterMode(9).Valid())
	assert.Equal(t, "unknown(9)", ClusterMode(9).String())

	config := NewConfig()
	config.ClusterMode = "bogus"
	assert.Equal(t, Standalone, config.Mode())
	config.ClusterMode = "cluster"
	assert.Equal(t, Cluster, config.Mode())
}

func TestServerMatch(t *testing.T) {
	a := ServerConfig{Address: "h1", Port: 100, Weight: 1, LastModified: 1}
	b := ServerConfig{Address: "h1", Port: 100, Weight: 9, LastModified: 2}
	assert.True(t, a.MatchServer(b))
	assert.True(t, a.Match("h1", 100))
	assert.False(t, a.Match("h1", 101))
	assert.False(t, a.Match("h2", 100))
}

func TestServerHostPortAndString(t *testing.T) {
	server := ServerConfig{Address: "h1", Weight: 3}
	assert.Equal(t, "h1:6379", server.HostPort(6379))
	assert.Equal(t, "h1|3", server.String())
	server.Port = 7000
	assert.Equal(t, "h1:7000", server.HostPort(6379))
	assert.Equal(t, "h1:7000|3", server.String())
}

func TestCloneIsIndependent(t *testing.T) {
	config := sampleConfig()
	clone := config.Clone()
	clone.Servers[0].Weight = 99
	assert.Equal(t, 10, config.Servers[0].Weight)
	assert.True(t, config.sameContent(config.Clone()))
	assert.False(t, config.sameContent(clone))
	assert.False(t, config.sameContent(nil))
}

func TestSameContentIgnoresLastModified(t *testing.T) {
	a := NewConfig()
	b := NewConfig()
	b.LastModified = 12345
	b.Servers = []ServerConfig{}
	assert.True(t, a.sameContent(b))
}

func TestParseServers(t *testing.T) {
	servers, err := ParseServers("h1:100|5\nh2|3\nh3:200")
	require.NoError(t, err)
	assert.Equal(t, []ServerConfig{
		{Address: "h1", Port: 100, Weight: 5},
		{Address: "h2", Port: DefaultPort, Weight: 3},
		{Address: "h3", Port: 200, Weight: DefaultWeight},
	}, servers)
}

func TestParseServersSkipsMalformed(t *testing.T) {
	servers, err := ParseServers("cache01.internal:6379|10\r\n\n:6379\nh2:abc\nh3|x\n  \ncache02.internal:6379|5\n")
	assert.Error(t, err)
	var detailErr *errors.Error
	require.True(t, errors.As(err, &detailErr))
	lines, ok := detailErr.Detail("lines")
	require.True(t, ok)
	assert.Equal(t, []string{":6379", "h2:abc", "h3|x"}, lines)
	assert.Equal(t, []ServerConfig{
		{Address: "cache01.internal", Port: 6379, Weight: 10},
		{Address: "cache02.internal", Port: 6379, Weight: 5},
	}, servers)
}

func TestFormatServersRoundTrip(t *testing.T) {
	text := "h1:100|5\nh2|3"
	servers, err := ParseServers(text)
	require.NoError(t, err)
	assert.Equal(t, text, FormatServers(servers))
}
