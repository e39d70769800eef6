package crypto

import (
	"errors"
	"io"
	"strings"
)

const (
	// SaltSize is the length of a salt in characters.
	SaltSize = 16
	// saltGroupSize is the block size of the display form.
	saltGroupSize = 4

	saltAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	// bytes at or above this bound are rejected to keep
	// the alphabet uniformly distributed
	saltRejectBound = 256 - 256%len(saltAlphabet)
)

var (
	// ErrMalformedSalt indicates a salt that is not made of exactly
	// SaltSize alphanumeric characters.
	ErrMalformedSalt = errors.New("[crypto] Malformed salt")
)

// A Salt is the per-record secret mixed into every leaf hash.
// It consists of SaltSize characters taken from [A-Za-z0-9].
// A Salt must never be reused across records.
type Salt string

// NewSalt draws a fresh salt from rand, which should be a
// cryptographically secure source such as crypto/rand.Reader.
func NewSalt(rand io.Reader) (Salt, error) {
	var sb strings.Builder
	sb.Grow(SaltSize)
	for sb.Len() < SaltSize {
		buf, err := MakeRand(rand, SaltSize)
		if err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= saltRejectBound {
				continue
			}
			sb.WriteByte(saltAlphabet[int(b)%len(saltAlphabet)])
			if sb.Len() == SaltSize {
				break
			}
		}
	}
	return Salt(sb.String()), nil
}

// ParseSalt parses either the hashing form ("AAAA1111BBBB2222")
// or the display form ("AAAA-1111-BBBB-2222") of a salt.
func ParseSalt(s string) (Salt, error) {
	if len(s) == SaltSize+SaltSize/saltGroupSize-1 {
		for i := saltGroupSize; i < len(s); i += saltGroupSize + 1 {
			if s[i] != '-' {
				return "", ErrMalformedSalt
			}
		}
		s = strings.ReplaceAll(s, "-", "")
	}
	salt := Salt(s)
	if err := salt.Validate(); err != nil {
		return "", err
	}
	return salt, nil
}

// Validate returns ErrMalformedSalt if salt is not in the hashing form.
func (salt Salt) Validate() error {
	if len(salt) != SaltSize {
		return ErrMalformedSalt
	}
	for i := 0; i < len(salt); i++ {
		if strings.IndexByte(saltAlphabet, salt[i]) < 0 {
			return ErrMalformedSalt
		}
	}
	return nil
}

// String returns the hashing form of the salt.
func (salt Salt) String() string {
	return string(salt)
}

// Display returns the salt grouped in blocks of four characters
// separated by hyphens. It is meant for printed documents only;
// hashing always uses String().
func (salt Salt) Display() string {
	s := string(salt)
	if len(s) != SaltSize {
		return s
	}
	groups := make([]string, 0, SaltSize/saltGroupSize)
	for i := 0; i < SaltSize; i += saltGroupSize {
		groups = append(groups, s[i:i+saltGroupSize])
	}
	return strings.Join(groups, "-")
}
