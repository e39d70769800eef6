package merkletree

import (
	"bytes"
	"fmt"

	"github.com/klever-hub/kleverblockchain-certificates/crypto/hasher"
)

// Verify replays p from leaf and compares the recomputed root with
// root, which must come from a trusted source such as a ledger anchor.
// It returns nil on success, ErrUnequalTreeHashes if the roots differ,
// and a *MalformedProofError if p is structurally invalid.
func Verify(h hasher.TreeHasher, root, leaf []byte, p *Proof) error {
	if err := validate(h, root, leaf, p); err != nil {
		return err
	}
	running := leaf
	idx, width := p.LeafIndex, p.LeafCount
	for i, s := range p.Path {
		isLeftChild := idx%2 == 0
		switch {
		case s.Direction != Left && s.Direction != Right:
			return malformed(fmt.Sprintf("step %d: invalid direction tag", i))
		case s.NoOp:
			if len(s.Hash) != 0 {
				return malformed(fmt.Sprintf("step %d: no-op step carries a digest", i))
			}
			if !isLeftChild || s.Direction != Right ||
				(width != 0 && (idx != width-1 || width%2 == 0)) {
				return malformed(fmt.Sprintf("step %d: no-op at a position that is not promoted", i))
			}
		default:
			if len(s.Hash) != h.Size() {
				return malformed(fmt.Sprintf("step %d: wrong digest length %d", i, len(s.Hash)))
			}
			if isLeftChild != (s.Direction == Right) {
				return malformed(fmt.Sprintf("step %d: direction does not match the leaf index", i))
			}
			if width != 0 && isLeftChild && idx+1 >= width {
				return malformed(fmt.Sprintf("step %d: sibling beyond the end of the level", i))
			}
			if s.Direction == Right {
				running = h.HashInterior(running, s.Hash)
			} else {
				running = h.HashInterior(s.Hash, running)
			}
		}
		idx /= 2
		if width != 0 {
			width = (width + 1) / 2
		}
	}
	if !bytes.Equal(running, root) {
		return ErrUnequalTreeHashes
	}
	return nil
}

func validate(h hasher.TreeHasher, root, leaf []byte, p *Proof) error {
	switch {
	case p == nil:
		return malformed("missing proof")
	case len(root) != h.Size():
		return malformed(fmt.Sprintf("root has wrong length %d", len(root)))
	case len(leaf) != h.Size():
		return malformed(fmt.Sprintf("leaf has wrong length %d", len(leaf)))
	case p.LeafIndex < 0:
		return malformed("negative leaf index")
	case p.LeafCount < 0:
		return malformed("negative leaf count")
	case len(p.Path) > MaxDepth:
		return malformed(fmt.Sprintf("too many steps (%d)", len(p.Path)))
	case p.LeafIndex>>uint(len(p.Path)) != 0:
		return malformed("leaf index is not reachable with this many steps")
	}
	if p.LeafCount != 0 {
		if p.LeafIndex >= p.LeafCount {
			return malformed("leaf index beyond leaf count")
		}
		if want := Height(p.LeafCount); len(p.Path) != want {
			return malformed(fmt.Sprintf("wrong step count %d, want %d", len(p.Path), want))
		}
	}
	return nil
}
