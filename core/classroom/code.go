package classroom

import (
	"crypto/rand"
	"math/big"
	"regexp"

	"github.com/pkg/errors"

	"github.com/taskit/backend/core"
)

const (
	codeAlphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength      = 7
	maxCodeAttempts = 1000
)

var codeRegex = regexp.MustCompile(`^[A-Z0-9]{7}$`)

// IsValidCode reports whether s is a well-formed join code.
func IsValidCode(s string) bool {
	return codeRegex.MatchString(s)
}

// generateCode draws each character independently and uniformly from the
// code alphabet using a cryptographically strong source. Codes double as
// a shared secret so weak randomness is not acceptable here.
func generateCode() (string, error) {
	alphabetLen := big.NewInt(int64(len(codeAlphabet)))
	buf := make([]byte, codeLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", errors.Wrap(err, "generating classroom code")
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// generateUniqueCode allocates a code no other classroom uses. The code
// space holds 36^7 values so repeated collisions signal a systemic fault;
// running out of attempts is treated as fatal.
func (svc *Service) generateUniqueCode() (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := generateCode()
		if err != nil {
			return "", err
		}
		exists, err := svc.repo.CodeExists(code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", core.NewShutdownError("classroom code space exhausted after " +
		"1000 attempts; check the classroom table for corruption")
}
