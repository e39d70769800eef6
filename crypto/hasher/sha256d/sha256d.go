// Package sha256d implements the default certificate tree hasher.
// Leaves are hashed twice with SHA-256 and interior nodes once over
// the concatenation of the raw child digests.
package sha256d

import (
	"crypto/sha256"

	"github.com/klever-hub/kleverblockchain-certificates/crypto/hasher"
)

func init() {
	hasher.RegisterHasher(ID, New)
}

// ID is the identity of the double SHA-256 hasher.
const ID = hasher.DefaultHasherID

type sha256dHasher struct{}

// New returns an instance of the double SHA-256 hasher.
func New() hasher.TreeHasher {
	return sha256dHasher{}
}

func (sha256dHasher) ID() string {
	return ID
}

func (sha256dHasher) Size() int {
	return sha256.Size
}

// HashLeaf computes SHA-256(SHA-256(encoded)).
func (sha256dHasher) HashLeaf(encoded []byte) []byte {
	first := sha256.Sum256(encoded)
	second := sha256.Sum256(first[:])
	return second[:]
}

// HashInterior computes SHA-256(left || right).
func (sha256dHasher) HashInterior(left, right []byte) []byte {
	h := sha256.New()
	h.Write(left)
	h.Write(right)
	return h.Sum(nil)
}
