package json

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type server struct {
	Address string `json:"address"`
	Port    int    `json:"port,omitempty"`
}

func TestMarshalString(t *testing.T) {
	s, err := MarshalString(server{Address: "cache01.internal"})
	require.NoError(t, err)
	assert.Equal(t, `{"address":"cache01.internal"}`, s)

	var out server
	require.NoError(t, UnmarshalString(`{"address":"cache02.internal","port":6380}`, &out))
	assert.Equal(t, server{Address: "cache02.internal", Port: 6380}, out)
}

func TestMarshalIndentString(t *testing.T) {
	s, err := MarshalIndentString(map[string]int{"port": 6379})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"port\": 6379\n}", s)
}

func TestUnmarshalNumbersAsFloat(t *testing.T) {
	var out map[string]interface{}
	require.NoError(t, UnmarshalString(`{"last_modified":1700000000000}`, &out))
	assert.Equal(t, float64(1700000000000), out["last_modified"])
}

func TestUnmarshalError(t *testing.T) {
	var out server
	assert.Error(t, UnmarshalString(`{"address":`, &out))
}
