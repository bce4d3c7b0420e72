package security_helpers

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"hash"
	"os"
)

// Gated media is never served directly: post rows hold the raw storage
// location, and viewers that pass the membership check get short
// imgproxy/vidproxy URLs signed here.

func ImageUrl(file string, width int, height int) (string, error) {
	sourceFile := os.Getenv("PRIVATE_FILES_URL") + "/" + file

	options := fmt.Sprintf("/s:%d:%d:true:true/%s", width, height, base64.RawURLEncoding.EncodeToString([]byte(sourceFile)))

	signature, err := imageHMAC(options)

	if err != nil {
		return "", err
	}

	return os.Getenv("IMG_PROXY") + signature + options, nil
}

func imageHMAC(path string) (string, error) {
	keyBin, err := hex.DecodeString(os.Getenv("IMGPROXY_KEY"))

	if err != nil {
		return "", err
	}

	saltBin, err := hex.DecodeString(os.Getenv("IMGPROXY_SALT"))

	if err != nil {
		return "", err
	}

	mac := hmac.New(sha256.New, keyBin)
	mac.Write(saltBin)
	mac.Write([]byte(path))

	return fmt.Sprintf("/%s", base64.RawURLEncoding.EncodeToString(mac.Sum(nil))), nil
}

func VideoUrl(file string, width int, height int) (string, error) {
	sourceFile := os.Getenv("FILES_URL") + "/" + file

	options := fmt.Sprintf("%dx%d/0x0/%s", width, height, sourceFile)

	signer := NewDefaultSigner(os.Getenv("VIDPROXY_KEY"))

	return os.Getenv("VID_PROXY") + "/" + signer.Sign(options) + "/" + options, nil
}

// Signer produces URL path signatures for the media proxies.
type Signer interface {
	Sign(path string) string
}

func NewDefaultSigner(secret string) Signer {
	return NewHMACSigner(sha1.New, 0, secret)
}

func NewHMACSigner(alg func() hash.Hash, truncate int, secret string) Signer {
	return &hmacSigner{
		alg:      alg,
		truncate: truncate,
		secret:   []byte(secret),
	}
}

type hmacSigner struct {
	alg      func() hash.Hash
	truncate int
	secret   []byte
}

func (s *hmacSigner) Sign(path string) string {
	h := hmac.New(s.alg, s.secret)
	h.Write([]byte(path))
	sig := base64.URLEncoding.EncodeToString(h.Sum(nil))

	if s.truncate > 0 && len(sig) > s.truncate {
		return sig[:s.truncate]
	}

	return sig
}
