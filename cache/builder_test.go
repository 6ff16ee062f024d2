package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frame-go/cachekit/errors"
)

func TestSettersIgnoreInvalidOrEqualValues(t *testing.T) {
	fixClock(t, 5000)
	config := sampleConfig()
	config.Username = "user"
	config.Password = "pass"
	config.MasterName = "mymaster"
	b := NewBuilderFromConfig(config)

	b.ProviderName("").ProviderName("  ").ProviderName(config.ProviderName).
		ConnectTimeout(0).ConnectTimeout(-3).ConnectTimeout(config.ConnectTimeout).
		ExpireTime(0).ExpireTime(-5).ExpireTime(config.ExpireTime).
		ClientPoolSize(0).ClientPoolSize(config.ClientPoolSize).
		MaximumClient(-1).MaximumClient(config.MaximumClient).
		RetryCount(0).RetryCount(config.RetryCount).
		ClusterMode(ClusterMode(42)).ClusterMode(Standalone).
		MasterName("mymaster").
		Authorization("", "pass").
		Authorization(" ", "pass").
		Authorization("user", "pass")
	assert.False(t, b.Modified())

	result := b.Confirm()
	assert.Equal(t, config, result)
	assert.Equal(t, int64(100), result.LastModified)
}

func TestSettersApplyValidValues(t *testing.T) {
	fixClock(t, 5000)
	b := NewBuilder().
		ProviderName("redis").
		ConnectTimeout(3).
		ExpireTime(600).
		ClientPoolSize(8).
		MaximumClient(64).
		RetryCount(2).
		ClusterMode(Sentinel).
		MasterName("mymaster").
		Authorization("admin", "secret")
	assert.True(t, b.Modified())

	result := b.Confirm()
	assert.Equal(t, "redis", result.ProviderName)
	assert.Equal(t, 3, result.ConnectTimeout)
	assert.Equal(t, 600, result.ExpireTime)
	assert.Equal(t, 8, result.ClientPoolSize)
	assert.Equal(t, 64, result.MaximumClient)
	assert.Equal(t, 2, result.RetryCount)
	assert.Equal(t, "sentinel", result.ClusterMode)
	assert.Equal(t, "mymaster", result.MasterName)
	assert.Equal(t, "admin", result.Username)
	assert.Equal(t, "secret", result.Password)
	assert.Equal(t, int64(5000), result.LastModified)

	result = NewBuilderFromConfig(result).ExpireTime(NeverExpire).Confirm()
	assert.Equal(t, NeverExpire, result.ExpireTime)
}

func TestAuthorizationNormalizesBlankPassword(t *testing.T) {
	config := NewConfig()
	config.Password = "old"
	result := NewBuilderFromConfig(config).Authorization("", "   ").Confirm()
	assert.Equal(t, "", result.Password)
	assert.Equal(t, "", result.Username)
}

func TestConfirmIsIdempotent(t *testing.T) {
	fixClock(t, 7000)
	b := NewBuilder().ConnectTimeout(9)
	first := b.Confirm()
	assert.Equal(t, int64(7000), first.LastModified)

	fixClock(t, 8000)
	second := b.Confirm()
	assert.Equal(t, first.LastModified, second.LastModified)
	assert.False(t, b.Modified())

	third := b.RetryCount(7).Confirm()
	assert.Equal(t, int64(8000), third.LastModified)
}

func TestConfirmReturnsCopy(t *testing.T) {
	config := sampleConfig()
	b := NewBuilderFromConfig(config)
	result := b.Confirm()
	result.Servers[0].Weight = 1
	assert.Equal(t, 10, config.Servers[0].Weight)
	assert.Equal(t, 10, b.Confirm().Servers[0].Weight)
}

func TestServersMergesIntoWorkingList(t *testing.T) {
	fixClock(t, 9000)
	b := NewBuilderFromConfig(sampleConfig()).
		Servers("cache01.internal:6379|10\ncache03.internal:6380|1\nbroken:port")
	result := b.Confirm()
	require.Len(t, result.Servers, 3)
	assert.Equal(t, int64(100), result.Servers[0].LastModified)
	assert.Equal(t, ServerConfig{Address: "cache03.internal", Port: 6380, Weight: 1, LastModified: 9000}, result.Servers[2])
	assert.Equal(t, int64(9000), result.LastModified)

	result = b.Servers("cache02.internal:6379|50").Confirm()
	assert.Equal(t, 50, result.Servers[1].Weight)
	assert.Equal(t, int64(9000), result.Servers[1].LastModified)
	assert.Equal(t, int64(9001), result.LastModified)
}

func TestServerBuilderAppendsNewServer(t *testing.T) {
	fixClock(t, 2000)
	b := NewBuilder()
	server, err := b.ServerBuilder().AddressPort("h1", 100).Weight(5).Confirm()
	require.NoError(t, err)
	assert.Equal(t, ServerConfig{Address: "h1", Port: 100, Weight: 5, LastModified: 2000}, server)
	assert.True(t, b.Modified())

	result := b.Confirm()
	assert.Equal(t, []ServerConfig{server}, result.Servers)
	assert.Equal(t, int64(2000), result.LastModified)
}

func TestServerBuilderReplacesWhenTimestampDiffers(t *testing.T) {
	fixClock(t, 100)
	b := NewBuilderFromConfig(sampleConfig())

	server, err := b.ServerBuilderFor("cache01.internal", 6379).Weight(20).Confirm()
	require.NoError(t, err)
	assert.Equal(t, int64(101), server.LastModified)

	result := b.Confirm()
	assert.Equal(t, 20, result.Servers[0].Weight)
	assert.Equal(t, int64(101), result.Servers[0].LastModified)
	assert.Equal(t, int64(101), result.LastModified)
}

func TestFreshServerBuilderReplacesServerOfSameMillisecond(t *testing.T) {
	fixClock(t, 4000)
	b := NewBuilder().Servers("h1:100|5")

	server, err := b.ServerBuilder().AddressPort("h1", 100).Weight(9).Confirm()
	require.NoError(t, err)
	assert.Equal(t, int64(4001), server.LastModified)

	result := b.Confirm()
	require.Len(t, result.Servers, 1)
	assert.Equal(t, 9, result.Servers[0].Weight)
	assert.Equal(t, int64(4001), result.Servers[0].LastModified)
}

func TestFreshServerBuilderUpdatesWithRealClock(t *testing.T) {
	lost := 0
	for i := 0; i < 1000; i++ {
		b := NewBuilder().Servers("h1:100|5")
		_, err := b.ServerBuilder().AddressPort("h1", 100).Weight(9).Confirm()
		require.NoError(t, err)
		if b.Confirm().Servers[0].Weight != 9 {
			lost++
		}
	}
	assert.Zero(t, lost)
}

func TestServerBuilderUnchangedKeepsEntry(t *testing.T) {
	fixClock(t, 3000)
	b := NewBuilderFromConfig(sampleConfig())
	server, err := b.ServerBuilderFor("cache02.internal", 6379).Weight(5).Confirm()
	require.NoError(t, err)
	assert.Equal(t, int64(100), server.LastModified)
	assert.False(t, b.Modified())
	assert.Equal(t, int64(100), b.Confirm().LastModified)
}

func TestConfirmChildSkipsSameTimestamp(t *testing.T) {
	b := NewBuilderFromConfig(sampleConfig())
	require.NoError(t, b.ConfirmChild(ServerConfig{Address: "cache01.internal", Port: 6379, Weight: 99, LastModified: 100}))
	assert.Equal(t, 10, b.Confirm().Servers[0].Weight)
}

func TestServerBuilderForUnknownStartsFresh(t *testing.T) {
	b := NewBuilderFromConfig(sampleConfig())
	sb := b.ServerBuilderFor("nowhere", 1)
	assert.Equal(t, NewServerConfig(), sb.server)
}

func TestServerBuilderEmptyAddressFails(t *testing.T) {
	b := NewBuilderFromConfig(sampleConfig())
	_, err := b.ServerBuilder().Weight(3).Confirm()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyServerAddress))

	_, err = b.ServerBuilder().Address("  ").Confirm()
	assert.True(t, errors.Is(err, ErrEmptyServerAddress))
	assert.Len(t, b.Confirm().Servers, 2)
}

func TestServerBuilderIgnoresEqualValues(t *testing.T) {
	sb := newServerConfigBuilder(nil, ServerConfig{Address: "h1", Port: 1, Weight: 2, LastModified: 50})
	server, err := sb.AddressPort("h1", 1).AddressPort("h1", -1).Weight(2).Weight(-1).Confirm()
	require.NoError(t, err)
	assert.Equal(t, int64(50), server.LastModified)

	server, err = sb.Address("h1").Confirm()
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, server.Port)
	assert.Greater(t, server.LastModified, int64(50))
}

func TestRemoveServerRemovesFirstMatchOnly(t *testing.T) {
	fixClock(t, 4000)
	config := sampleConfig()
	config.Servers = append(config.Servers, ServerConfig{Address: "cache01.internal", Port: 6379, Weight: 1})
	b := NewBuilderFromConfig(config).RemoveServer("cache01.internal", 6379)

	result := b.Confirm()
	assert.Equal(t, []ServerConfig{
		{Address: "cache02.internal", Port: 6379, Weight: 5, LastModified: 100},
		{Address: "cache01.internal", Port: 6379, Weight: 1},
	}, result.Servers)
	assert.Equal(t, int64(4000), result.LastModified)

	result = b.RemoveServer("missing", 1).Confirm()
	assert.Len(t, result.Servers, 2)
	assert.Equal(t, int64(4000), result.LastModified)
}

func TestServersDiffer(t *testing.T) {
	a := []ServerConfig{{Address: "h1", Port: 1}, {Address: "h2", Port: 2}}
	b := []ServerConfig{{Address: "h2", Port: 2, Weight: 7}, {Address: "h1", Port: 1}}
	c := []ServerConfig{{Address: "h1", Port: 1}, {Address: "h3", Port: 3}}
	assert.False(t, serversDiffer(a, b))
	assert.True(t, serversDiffer(a, c))
	assert.True(t, serversDiffer(c, a))
	assert.True(t, serversDiffer(a, a[:1]))
	assert.False(t, serversDiffer(nil, []ServerConfig{}))
}

func TestNextTimestampIsMonotonic(t *testing.T) {
	fixClock(t, 10)
	assert.Equal(t, int64(10), nextTimestamp(0))
	assert.Equal(t, int64(11), nextTimestamp(10))
	assert.Equal(t, int64(21), nextTimestamp(20))
}

func TestLoadBuilderBuildWritesStore(t *testing.T) {
	fixClock(t, 6000)
	store := newMemoryStore()
	store.configs["sessions"] = sampleConfig()

	config, err := LoadBuilder(store, "sessions").RetryCount(9).Build()
	require.NoError(t, err)
	assert.Equal(t, 9, config.RetryCount)
	assert.Equal(t, int64(6000), store.configs["sessions"].LastModified)
	assert.Equal(t, 9, store.configs["sessions"].RetryCount)
	assert.Equal(t, 1, store.writes)
}

func TestLoadBuilderFallsBackToNewConfig(t *testing.T) {
	store := newMemoryStore()
	b := LoadBuilder(store, "")
	config, err := b.Servers("h1:100").Build()
	require.NoError(t, err)
	assert.Equal(t, DefaultRetryCount, config.RetryCount)
	require.Contains(t, store.configs, DefaultName)
	assert.Len(t, store.configs[DefaultName].Servers, 1)

	assert.Equal(t, NewConfig(), LoadBuilder(nil, "x").Confirm())
}

type failingParent struct{}

func (failingParent) ConfirmChild(*Config) error {
	return errors.New("parent_rejected")
}

func TestBuildReportsParentError(t *testing.T) {
	config, err := NewNestedBuilder(failingParent{}, nil).ConnectTimeout(4).Build()
	require.Error(t, err)
	assert.Equal(t, 4, config.ConnectTimeout)

	config, err = NewBuilder().Build()
	require.NoError(t, err)
	assert.Equal(t, NewConfig(), config)
}
