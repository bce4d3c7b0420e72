package security_helpers

import (
	"crypto/sha1"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageUrlIsSigned(t *testing.T) {
	t.Setenv("PRIVATE_FILES_URL", "https://files.example.com")
	t.Setenv("IMG_PROXY", "https://img.example.com")
	t.Setenv("IMGPROXY_KEY", "736563726574")
	t.Setenv("IMGPROXY_SALT", "73616c74")

	url, err := ImageUrl("uploads/cover.png", 600, 400)

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://img.example.com/"))
	assert.Contains(t, url, "/s:600:400:true:true/")
}

func TestImageUrlBadKey(t *testing.T) {
	t.Setenv("IMGPROXY_KEY", "not hex")
	t.Setenv("IMGPROXY_SALT", "73616c74")

	_, err := ImageUrl("uploads/cover.png", 600, 400)

	assert.Error(t, err)
}

func TestHMACSignerDeterministic(t *testing.T) {
	signer := NewHMACSigner(sha1.New, 0, "secret")

	a := signer.Sign("600x400/0x0/https://files.example.com/clip.mp4")
	b := signer.Sign("600x400/0x0/https://files.example.com/clip.mp4")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, signer.Sign("something else"))
}

func TestHMACSignerTruncates(t *testing.T) {
	signer := NewHMACSigner(sha1.New, 8, "secret")

	assert.Len(t, signer.Sign("a path"), 8)
}
