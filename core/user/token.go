package user

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"

	"github.com/pkg/errors"
)

const sessionTokenBytes = 32 // 256 bits of entropy

// NewSessionToken returns a URL-safe opaque bearer token. The raw token
// is only ever handed to the client; the store keeps its hash.
func NewSessionToken() (string, error) {
	b := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "generating session token")
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HashToken returns the deterministic lookup key for a session token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
