package merkletree

import (
	"encoding/hex"

	"github.com/klever-hub/kleverblockchain-certificates/crypto/hasher"
)

// MaxDepth bounds the number of levels above the leaves. It is far
// beyond any certificate schema and only guards verification against
// oversized proofs.
const MaxDepth = 64

// Tree is an immutable Merkle tree over an ordered list of leaf digests.
// levels[0] holds the leaves and the last level holds the root.
type Tree struct {
	hasher hasher.TreeHasher
	levels [][][]byte
}

// Build constructs the tree over leaves using h. The leaves are copied.
func Build(h hasher.TreeHasher, leaves [][]byte) (*Tree, error) {
	if len(leaves) == 0 {
		return nil, ErrNoLeaves
	}
	level := make([][]byte, len(leaves))
	for i, l := range leaves {
		if len(l) != h.Size() {
			return nil, ErrBadDigestSize
		}
		level[i] = append([]byte{}, l...)
	}
	levels := [][][]byte{level}
	for len(level) > 1 {
		next := make([][]byte, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				next = append(next, h.HashInterior(level[i], level[i+1]))
			} else {
				// odd node out: promote unchanged
				next = append(next, level[i])
			}
		}
		levels = append(levels, next)
		level = next
	}
	return &Tree{hasher: h, levels: levels}, nil
}

// Height returns the number of levels above the leaves of a tree
// with n leaves, which is also the number of steps in each of its proofs.
func Height(n int) int {
	height := 0
	for n > 1 {
		n = (n + 1) / 2
		height++
	}
	return height
}

// Hasher returns the hasher the tree was built with.
func (t *Tree) Hasher() hasher.TreeHasher {
	return t.hasher
}

// Len returns the number of leaves.
func (t *Tree) Len() int {
	return len(t.levels[0])
}

// Leaf returns a copy of the i-th leaf digest.
func (t *Tree) Leaf(i int) []byte {
	return append([]byte{}, t.levels[0][i]...)
}

// Leaves returns a copy of all leaf digests in order.
func (t *Tree) Leaves() [][]byte {
	leaves := make([][]byte, t.Len())
	for i := range leaves {
		leaves[i] = t.Leaf(i)
	}
	return leaves
}

// Root returns a copy of the root digest.
func (t *Tree) Root() []byte {
	return append([]byte{}, t.levels[len(t.levels)-1][0]...)
}

// RootHex returns the hex encoding of the root digest.
func (t *Tree) RootHex() string {
	return hex.EncodeToString(t.levels[len(t.levels)-1][0])
}

// Proof returns the inclusion proof of the i-th leaf.
func (t *Tree) Proof(i int) (*Proof, error) {
	if i < 0 || i >= t.Len() {
		return nil, ErrIndexOutOfRange
	}
	p := &Proof{
		LeafIndex: i,
		LeafCount: t.Len(),
		Path:      make([]Step, 0, len(t.levels)-1),
	}
	idx := i
	for _, level := range t.levels[:len(t.levels)-1] {
		switch {
		case idx%2 == 1:
			p.Path = append(p.Path, Step{
				Hash:      append([]byte{}, level[idx-1]...),
				Direction: Left,
			})
		case idx+1 < len(level):
			p.Path = append(p.Path, Step{
				Hash:      append([]byte{}, level[idx+1]...),
				Direction: Right,
			})
		default:
			p.Path = append(p.Path, Step{Direction: Right, NoOp: true})
		}
		idx /= 2
	}
	return p, nil
}
