package merkletree

import "errors"

var (
	// ErrNoLeaves indicates an attempt to build a tree without leaves.
	ErrNoLeaves = errors.New("[merkletree] Tree has no leaves")
	// ErrBadDigestSize indicates a leaf whose length does not match
	// the hasher's output size.
	ErrBadDigestSize = errors.New("[merkletree] Bad digest size")
	// ErrIndexOutOfRange indicates a proof request for a leaf
	// that is not in the tree.
	ErrIndexOutOfRange = errors.New("[merkletree] Leaf index out of range")
	// ErrUnequalTreeHashes indicates that the root recomputed from a
	// proof differs from the trusted root.
	ErrUnequalTreeHashes = errors.New("[merkletree] Recomputed root does not match the trusted root")
	// ErrMalformedProof is matched by every *MalformedProofError.
	ErrMalformedProof = errors.New("[merkletree] Malformed proof")
)

// A MalformedProofError describes a structural defect in a proof.
// It signals a broken input rather than a false claim.
type MalformedProofError struct {
	Reason string
}

func malformed(reason string) *MalformedProofError {
	return &MalformedProofError{Reason: reason}
}

func (e *MalformedProofError) Error() string {
	return ErrMalformedProof.Error() + ": " + e.Reason
}

// Unwrap makes errors.Is(err, ErrMalformedProof) hold.
func (e *MalformedProofError) Unwrap() error {
	return ErrMalformedProof
}
