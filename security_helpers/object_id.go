package security_helpers

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Public object IDs are AES encrypted "id/type/salt" triples. The per-row
// salt keeps tokens for the same numeric id distinct across objects, and
// the type segment stops a token minted for one table being replayed
// against another.

func aesEncrypt(plaintext string) (string, error) {
	key := os.Getenv("AES_KEY")
	iv := os.Getenv("AES_IV")

	block, err := aes.NewCipher([]byte(key))

	if err != nil {
		return "", err
	}

	pad := aes.BlockSize - len(plaintext)%aes.BlockSize
	padded := append([]byte(plaintext), bytes.Repeat([]byte{byte(pad)}, pad)...)

	ciphertext := make([]byte, len(padded))
	mode := cipher.NewCBCEncrypter(block, []byte(iv))
	mode.CryptBlocks(ciphertext, padded)

	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func aesDecrypt(encrypted string) ([]byte, error) {
	key := os.Getenv("AES_KEY")
	iv := os.Getenv("AES_IV")

	ciphertext, err := base64.StdEncoding.DecodeString(encrypted)

	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher([]byte(key))

	if err != nil {
		return nil, err
	}

	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("ciphertext is not block aligned")
	}

	mode := cipher.NewCBCDecrypter(block, []byte(iv))
	mode.CryptBlocks(ciphertext, ciphertext)

	pad := int(ciphertext[len(ciphertext)-1])

	if pad < 1 || pad > aes.BlockSize || pad > len(ciphertext) {
		return nil, fmt.Errorf("bad padding")
	}

	return ciphertext[:len(ciphertext)-pad], nil
}

func Encode(id uint64, object string, objectSalt string) string {
	encrypted, err := aesEncrypt(fmt.Sprintf("%d/%s/%s", id, object, objectSalt))

	if err != nil {
		slog.Error("Encode error for object id 💀",
			slog.String("error", err.Error()))

		return ""
	}

	return base64.RawURLEncoding.EncodeToString([]byte(encrypted))
}

// Decode returns the numeric id and object type of a public token, or
// (0, "") when the token is garbage.
func Decode(encoded string) (uint64, string) {
	decoded, err := base64.RawURLEncoding.DecodeString(encoded)

	if err != nil {
		return 0, ""
	}

	decrypted, err := aesDecrypt(string(decoded))

	if err != nil {
		slog.Error("Decode error for object id 💀",
			slog.String("error", err.Error()))

		return 0, ""
	}

	split := strings.Split(string(decrypted), "/")

	if len(split) != 3 {
		return 0, ""
	}

	id, err := strconv.ParseUint(split[0], 10, 64)

	if err != nil {
		return 0, ""
	}

	return id, split[1]
}
