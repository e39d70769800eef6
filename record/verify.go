package record

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/klever-hub/kleverblockchain-certificates/crypto"
	"github.com/klever-hub/kleverblockchain-certificates/crypto/hasher"
	"github.com/klever-hub/kleverblockchain-certificates/merkletree"
)

// Reason classifies the outcome of a verification query.
type Reason int

const (
	// ReasonOK means the claimed value is committed by the root.
	ReasonOK Reason = iota
	// ReasonMismatch means the proof is well formed but the claimed
	// value, the salt or the root is wrong.
	ReasonMismatch
	// ReasonMalformedProof means the proof is structurally invalid.
	ReasonMalformedProof
	// ReasonMalformedInput means the root, salt or field name cannot
	// be used to run the query.
	ReasonMalformedInput
)

var reasonNames = [...]string{
	ReasonOK:             "ok",
	ReasonMismatch:       "mismatch",
	ReasonMalformedProof: "malformed_proof",
	ReasonMalformedInput: "malformed_input",
}

func (r Reason) String() string {
	if r < 0 || int(r) >= len(reasonNames) {
		return fmt.Sprintf("Reason(%d)", int(r))
	}
	return reasonNames[r]
}

// MarshalJSON encodes the reason as its name.
func (r Reason) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON decodes a reason name.
func (r *Reason) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	for i, name := range reasonNames {
		if name == s {
			*r = Reason(i)
			return nil
		}
	}
	return fmt.Errorf("[record] Unknown reason %q", s)
}

// Result is the outcome of a verification query. A false claim is a
// Result with Verified unset, not an error.
type Result struct {
	Verified bool   `json:"verified"`
	Reason   Reason `json:"reason"`
	// Err carries the underlying cause when Reason is not ReasonOK.
	Err error `json:"-"`
}

// VerifyField reports whether value is the committed value of the
// field called name under the root given as hex, using salt and the
// field's inclusion proof. The salt may be given in plain or display
// form.
func VerifyField(h hasher.TreeHasher, rootHex, salt, name, value string, p *merkletree.Proof) Result {
	root, err := hex.DecodeString(rootHex)
	if err != nil {
		return Result{Reason: ReasonMalformedInput, Err: fmt.Errorf("[record] Malformed root: %w", err)}
	}
	if len(root) != h.Size() {
		return Result{Reason: ReasonMalformedInput, Err: fmt.Errorf("[record] Root must be %d bytes", h.Size())}
	}
	s, err := crypto.ParseSalt(salt)
	if err != nil {
		return Result{Reason: ReasonMalformedInput, Err: err}
	}
	return verify(h, root, s, name, value, p)
}

func verify(h hasher.TreeHasher, root []byte, salt crypto.Salt, name, value string, p *merkletree.Proof) Result {
	leaf, err := LeafDigest(h, salt, name, value)
	if err != nil {
		return Result{Reason: ReasonMalformedInput, Err: err}
	}
	switch err := merkletree.Verify(h, root, leaf, p); {
	case err == nil:
		return Result{Verified: true, Reason: ReasonOK}
	case errors.Is(err, merkletree.ErrUnequalTreeHashes):
		return Result{Reason: ReasonMismatch, Err: err}
	case errors.Is(err, merkletree.ErrMalformedProof):
		return Result{Reason: ReasonMalformedProof, Err: err}
	default:
		return Result{Reason: ReasonMalformedInput, Err: err}
	}
}
