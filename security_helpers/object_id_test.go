package security_helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setTestKeys(t *testing.T) {
	t.Helper()

	t.Setenv("AES_KEY", "0123456789abcdef0123456789abcdef")
	t.Setenv("AES_IV", "fedcba9876543210")
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	setTestKeys(t)

	encoded := Encode(42, "Posts", "a-salt")
	require.NotEmpty(t, encoded)

	id, objectType := Decode(encoded)

	assert.Equal(t, uint64(42), id)
	assert.Equal(t, "Posts", objectType)
}

func TestEncodeSaltKeepsTokensDistinct(t *testing.T) {
	setTestKeys(t)

	a := Encode(7, "Communities", "salt-one")
	b := Encode(7, "Communities", "salt-two")

	assert.NotEqual(t, a, b)
}

func TestDecodeCarriesObjectType(t *testing.T) {
	setTestKeys(t)

	encoded := Encode(7, "Communities", "s")

	id, objectType := Decode(encoded)

	assert.Equal(t, uint64(7), id)
	assert.NotEqual(t, "Posts", objectType)
}

func TestDecodeGarbage(t *testing.T) {
	setTestKeys(t)

	id, objectType := Decode("not-a-real-token")

	assert.Equal(t, uint64(0), id)
	assert.Equal(t, "", objectType)
}

func TestDecodeEmpty(t *testing.T) {
	setTestKeys(t)

	id, objectType := Decode("")

	assert.Equal(t, uint64(0), id)
	assert.Equal(t, "", objectType)
}
