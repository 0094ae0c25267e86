package user

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/scrypt"
)

// Stored hashes are tagged strings: "scrypt:<salt-hex>:<digest-hex>".
const (
	passwordHashAlgorithm = "scrypt"
	passwordSaltBytes     = 16
	passwordKeyLength     = 64

	// scrypt cost parameters
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

// MakePasswordHash derives a salted scrypt hash of the given password.
// The salt is random, so two calls never produce the same output.
func MakePasswordHash(pwd string) (string, error) {
	salt := make([]byte, passwordSaltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", errors.Wrap(err, "generating password salt")
	}
	saltHex := hex.EncodeToString(salt)

	digest, err := scrypt.Key([]byte(pwd), []byte(saltHex), scryptN, scryptR, scryptP, passwordKeyLength)
	if err != nil {
		return "", errors.Wrap(err, "deriving password hash")
	}
	return fmt.Sprintf("%s:%s:%s", passwordHashAlgorithm, saltHex, hex.EncodeToString(digest)), nil
}

// CheckPassword re-derives the digest with the stored salt and compares
// in constant time. It returns false, never an error, on malformed
// stored hashes or algorithm mismatches.
func CheckPassword(pwd, storedHash string) bool {
	parts := strings.Split(storedHash, ":")
	if len(parts) != 3 {
		return false
	}
	algorithm, salt, digestHex := parts[0], parts[1], parts[2]
	if algorithm != passwordHashAlgorithm || salt == "" || digestHex == "" {
		return false
	}

	digest, err := hex.DecodeString(digestHex)
	if err != nil {
		return false
	}

	expected, err := scrypt.Key([]byte(pwd), []byte(salt), scryptN, scryptR, scryptP, passwordKeyLength)
	if err != nil {
		return false
	}
	if len(expected) != len(digest) {
		return false
	}
	return subtle.ConstantTimeCompare(expected, digest) == 1
}
