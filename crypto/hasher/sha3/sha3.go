// Package sha3 implements a certificate tree hasher on top of SHA3-256
// with explicit domain separation between leaves and interior nodes.
package sha3

import (
	"github.com/klever-hub/kleverblockchain-certificates/crypto/hasher"
	xsha3 "golang.org/x/crypto/sha3"
)

func init() {
	hasher.RegisterHasher(ID, New)
}

const (
	// ID is the identity of the SHA3-256 hasher.
	ID = "SHA3-256"

	leafIdentifier     = 'L'
	interiorIdentifier = 'I'
)

type sha3Hasher struct{}

// New returns an instance of the SHA3-256 hasher.
func New() hasher.TreeHasher {
	return sha3Hasher{}
}

func (sha3Hasher) ID() string {
	return ID
}

func (sha3Hasher) Size() int {
	return 32
}

func (sha3Hasher) digest(ms ...[]byte) []byte {
	h := xsha3.New256()
	for _, m := range ms {
		h.Write(m)
	}
	return h.Sum(nil)
}

// HashLeaf computes SHA3-256('L' || encoded).
func (h sha3Hasher) HashLeaf(encoded []byte) []byte {
	return h.digest([]byte{leafIdentifier}, encoded)
}

// HashInterior computes SHA3-256('I' || left || right).
func (h sha3Hasher) HashInterior(left, right []byte) []byte {
	return h.digest([]byte{interiorIdentifier}, left, right)
}
