package crypto

import (
	"errors"
	"io"
)

// ErrNoRandSource indicates that a nil randomness source was passed in.
var ErrNoRandSource = errors.New("[crypto] No randomness source")

// MakeRand returns n random bytes read from rand.
// It returns an error if rand is nil or could not deliver
// enough bytes.
func MakeRand(rand io.Reader, n int) ([]byte, error) {
	if rand == nil {
		return nil, ErrNoRandSource
	}
	r := make([]byte, n)
	if _, err := io.ReadFull(rand, r); err != nil {
		return nil, err
	}
	return r, nil
}
