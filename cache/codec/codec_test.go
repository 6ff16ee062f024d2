package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type session struct {
	UserID int64
	Roles  []string
}

func TestScalarsUseTextForm(t *testing.T) {
	for value, expected := range map[any]string{
		int(-100):        "-100",
		uint32(3000):     "3000",
		float64(3.14159): "3.14159",
		"String":         "String",
		true:             "true",
	} {
		b, err := Marshal(value)
		require.NoError(t, err)
		assert.Equal(t, expected, string(b))
	}
}

func TestRoundTrip(t *testing.T) {
	var i int64
	b, err := Marshal(int64(-40000000000000))
	require.NoError(t, err)
	require.NoError(t, Unmarshal(b, &i))
	assert.Equal(t, int64(-40000000000000), i)

	var f float32
	b, err = Marshal(float32(3.1415))
	require.NoError(t, err)
	require.NoError(t, Unmarshal(b, &f))
	assert.Equal(t, float32(3.1415), f)

	var raw []byte
	require.NoError(t, Unmarshal([]byte{1, 2, 3}, &raw))
	assert.Equal(t, []byte{1, 2, 3}, raw)

	in := session{UserID: 7, Roles: []string{"admin"}}
	b, err = Marshal(in)
	require.NoError(t, err)
	var out session
	require.NoError(t, Unmarshal(b, &out))
	assert.Equal(t, in, out)

	var outPtr *session
	require.NoError(t, Unmarshal(b, &outPtr))
	assert.Equal(t, &in, outPtr)
}

func TestUnmarshalRejectsBadNumber(t *testing.T) {
	var i int8
	assert.Error(t, Unmarshal([]byte("1000"), &i))
	assert.Error(t, Unmarshal([]byte("abc"), &i))
}
