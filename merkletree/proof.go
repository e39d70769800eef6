package merkletree

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

// Direction is the position of a sibling relative to the running node.
type Direction uint8

const (
	invalidDirection Direction = iota
	// Left means the sibling is the left child: H(sibling || running).
	Left
	// Right means the sibling is the right child: H(running || sibling).
	Right
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "invalid"
	}
}

// MarshalJSON encodes d as "left" or "right".
func (d Direction) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts any string; unknown tags decode to an invalid
// direction that Verify reports as a malformed proof.
func (d *Direction) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch s {
	case "left":
		*d = Left
	case "right":
		*d = Right
	default:
		*d = invalidDirection
	}
	return nil
}

// A Step is one level of a sibling path.
type Step struct {
	Hash      []byte
	Direction Direction
	NoOp      bool
}

type stepJSON struct {
	Hash      string    `json:"hash"`
	Direction Direction `json:"direction"`
	NoOp      bool      `json:"noop"`
}

// MarshalJSON encodes the sibling digest as hex.
func (s Step) MarshalJSON() ([]byte, error) {
	return json.Marshal(stepJSON{
		Hash:      hex.EncodeToString(s.Hash),
		Direction: s.Direction,
		NoOp:      s.NoOp,
	})
}

// UnmarshalJSON decodes a step, returning a *MalformedProofError
// if the digest is not valid hex.
func (s *Step) UnmarshalJSON(b []byte) error {
	var sj stepJSON
	if err := json.Unmarshal(b, &sj); err != nil {
		return err
	}
	hash, err := hex.DecodeString(sj.Hash)
	if err != nil {
		return malformed(fmt.Sprintf("sibling digest is not hex: %v", err))
	}
	if len(hash) == 0 {
		hash = nil
	}
	*s = Step{Hash: hash, Direction: sj.Direction, NoOp: sj.NoOp}
	return nil
}

// Proof is the portable inclusion proof of one leaf. It holds neither
// the field value nor the salt.
type Proof struct {
	LeafIndex int    `json:"leafIndex"`
	LeafCount int    `json:"leafCount,omitempty"`
	Path      []Step `json:"path"`
}

// ParseProof decodes a JSON encoded proof. Any decoding failure is
// reported as a *MalformedProofError.
func ParseProof(b []byte) (*Proof, error) {
	p := new(Proof)
	if err := json.Unmarshal(b, p); err != nil {
		var me *MalformedProofError
		if errors.As(err, &me) {
			return nil, me
		}
		return nil, malformed(err.Error())
	}
	return p, nil
}

// Clone returns a deep copy of p.
func (p *Proof) Clone() *Proof {
	c := &Proof{
		LeafIndex: p.LeafIndex,
		LeafCount: p.LeafCount,
		Path:      make([]Step, len(p.Path)),
	}
	for i, s := range p.Path {
		c.Path[i] = Step{
			Hash:      append([]byte(nil), s.Hash...),
			Direction: s.Direction,
			NoOp:      s.NoOp,
		}
	}
	return c
}
