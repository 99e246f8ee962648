package sharecode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	codec, err := New("test-salt", 6)
	require.NoError(t, err)

	code, err := codec.Encode(42)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(code), 6)

	id, err := codec.Decode(code)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestDecodeGarbage(t *testing.T) {
	codec, err := New("test-salt", 6)
	require.NoError(t, err)

	_, err = codec.Decode("!!not a code!!")
	assert.Error(t, err)
}

func TestDifferentSaltsProduceDifferentCodes(t *testing.T) {
	a, err := New("salt-a", 6)
	require.NoError(t, err)
	b, err := New("salt-b", 6)
	require.NoError(t, err)

	codeA, err := a.Encode(7)
	require.NoError(t, err)
	codeB, err := b.Encode(7)
	require.NoError(t, err)

	assert.NotEqual(t, codeA, codeB)
}
