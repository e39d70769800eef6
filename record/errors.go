package record

import "errors"

var (
	// ErrSealed indicates an attempt to mutate a sealed record.
	ErrSealed = errors.New("[record] Record is sealed")
	// ErrUnknownField indicates a field name that is not in the
	// record's schema.
	ErrUnknownField = errors.New("[record] Unknown field")
	// ErrMissingID indicates a record without an identifier.
	ErrMissingID = errors.New("[record] Record has no identifier")
	// ErrStaleProof indicates a sealed record whose stored root, leaves
	// or proofs do not match its fields and salt.
	ErrStaleProof = errors.New("[record] Stored root or proofs do not match the record")
	// ErrNoProof indicates a proof request for a field the record
	// does not have.
	ErrNoProof = errors.New("[record] No proof for field")
)
