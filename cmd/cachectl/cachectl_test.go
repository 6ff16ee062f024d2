package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
caches:
  default:
    provider_name: local
  sessions:
    provider_name: local
    servers:
      - address: cache01.internal
        port: 6379
        weight: 2
`

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cachekit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestListAndShow(t *testing.T) {
	path := writeConfig(t)

	out, err := run(t, "list", "-c", path)
	require.NoError(t, err)
	assert.Equal(t, "default\nsessions\n", out)

	out, err = run(t, "show", "sessions", "-c", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"address": "cache01.internal"`)
	assert.Contains(t, out, `"connect_timeout": 1`)

	out, err = run(t, "show", "sessions", "-c", path, "--field", "servers[0].weight")
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)

	_, err = run(t, "show", "missing", "-c", path)
	assert.Error(t, err)
}

func TestSetAndRemoveServer(t *testing.T) {
	path := writeConfig(t)

	_, err := run(t, "set", "orders", "-c", path, "--cache-secret", "s3cret",
		"--provider", "local", "--mode", "sharded", "--password", "hunter2",
		"--servers", "cache01.internal:6379|3", "--servers", "cache02.internal")
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hunter2")

	out, err := run(t, "show", "orders", "-c", path, "--cache-secret", "s3cret")
	require.NoError(t, err)
	assert.Contains(t, out, `"cluster_mode": "sharded"`)
	assert.Contains(t, out, `"password": "******"`)
	assert.Contains(t, out, `"address": "cache02.internal"`)

	out, err = run(t, "remove-server", "orders", "cache01.internal", "6379", "-c", path, "--cache-secret", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "cache02.internal|1\n", out)

	_, err = run(t, "remove-server", "orders", "cache01.internal", "6379", "-c", path, "--cache-secret", "s3cret")
	assert.ErrorIs(t, err, errServerNotFound)
}

func TestSetRejectsBadInput(t *testing.T) {
	path := writeConfig(t)

	_, err := run(t, "set", "orders", "-c", path, "--servers", "cache01.internal:port")
	assert.Error(t, err)

	_, err = run(t, "set", "orders", "-c", path, "--mode", "mesh")
	assert.Error(t, err)
}

func TestPingLocal(t *testing.T) {
	path := writeConfig(t)

	out, err := run(t, "ping", "sessions", "-c", path)
	require.NoError(t, err)
	assert.Contains(t, out, "PONG sessions provider=local")

	out, err = run(t, "ping", "default", "-c", path, "--cache-provider", "local")
	require.NoError(t, err)
	assert.Contains(t, out, "PONG default provider=local")

	out, err = run(t, "ping", "sessions", "-c", path, "--metrics")
	require.NoError(t, err)
	assert.Contains(t, out, `cachectl_cache_requests_total{cache="sessions",op="get",result="ok"} 1`)
}

func TestPingBigcacheOverride(t *testing.T) {
	path := writeConfig(t)
	_, err := run(t, "set", "blobs", "-c", path, "--provider", "bigcache", "--expire", "60")
	require.NoError(t, err)

	out, err := run(t, "ping", "blobs", "-c", path)
	require.NoError(t, err)
	assert.Contains(t, out, "PONG blobs provider=bigcache")
}
