package auth

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

// cookieKeys expands the configured session secret into an HMAC key and an
// AES-256 key, so session cookies are both signed and encrypted.
func cookieKeys(secret string) (hashKey, blockKey []byte, err error) {
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte("collabify session cookie"))
	hashKey = make([]byte, 64)
	blockKey = make([]byte, 32)
	if _, err := io.ReadFull(r, hashKey); err != nil {
		return nil, nil, err
	}
	if _, err := io.ReadFull(r, blockKey); err != nil {
		return nil, nil, err
	}
	return hashKey, blockKey, nil
}
