package helpers

import (
	"crypto/rand"
	"strings"

	"github.com/google/uuid"
)

const suffixAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewCrossRef generates the opaque reference joining a relational identity
// row to its profile document. It is the only cross-store link and carries
// no meaning beyond uniqueness.
func NewCrossRef() string {
	return uuid.NewString()
}

// NewFriendlyID builds the public handle from a username plus a short random
// suffix, e.g. "ada-x7Gh2kQ9". Falls back to "user" for an empty base.
func NewFriendlyID(base string) (string, error) {
	base = slugify(base)
	if base == "" {
		base = "user"
	}
	suffix, err := randomSuffix(8)
	if err != nil {
		return "", err
	}
	return base + "-" + suffix, nil
}

func randomSuffix(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = suffixAlphabet[int(b[i])%len(suffixAlphabet)]
	}
	return string(b), nil
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			sb.WriteByte('-')
		}
	}
	return strings.Trim(sb.String(), "-")
}
