package passwords

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/pkg/errors"

	apperrors "github.com/iamwavecut/securebot/internal/errors"
)

const (
	MinLength     = 6
	MaxLength     = 64
	DefaultLength = 16

	lowers   = "abcdefghijklmnopqrstuvwxyz"
	uppers   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits   = "0123456789"
	specials = "!@#$%^&*()_-+=<>?/{}[]|"
)

// ClampLength forces the requested length into the allowed range. Out of
// range values are clamped, never rejected.
func ClampLength(length int) int {
	if length < MinLength {
		return MinLength
	}
	if length > MaxLength {
		return MaxLength
	}
	return length
}

// Generate produces a random credential of the given length containing at
// least one lowercase letter, one uppercase letter, one digit and, when
// useSpecial is set, one special character. Candidates missing a class are
// resampled.
func Generate(length int, useSpecial bool) (string, error) {
	if length < MinLength || length > MaxLength {
		return "", errors.Wrapf(apperrors.ErrInvalidInput, "length %d out of range", length)
	}
	alphabet := lowers + uppers + digits
	if useSpecial {
		alphabet += specials
	}
	for {
		candidate, err := randomString(alphabet, length)
		if err != nil {
			return "", errors.WithMessage(err, "cant sample credential")
		}
		if satisfies(candidate, useSpecial) {
			return candidate, nil
		}
	}
}

func randomString(alphabet string, length int) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(alphabet[n.Int64()])
	}
	return b.String(), nil
}

func satisfies(candidate string, useSpecial bool) bool {
	return strings.ContainsAny(candidate, lowers) &&
		strings.ContainsAny(candidate, uppers) &&
		strings.ContainsAny(candidate, digits) &&
		(!useSpecial || strings.ContainsAny(candidate, specials))
}
