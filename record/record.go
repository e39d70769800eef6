package record

import (
	"fmt"
	"io"

	"github.com/klever-hub/kleverblockchain-certificates/canonical"
	"github.com/klever-hub/kleverblockchain-certificates/crypto"
	"github.com/klever-hub/kleverblockchain-certificates/crypto/hasher"
	"github.com/klever-hub/kleverblockchain-certificates/merkletree"
)

// State is the lifecycle state of a Record.
type State int

const (
	// StateUnsealed records accept field updates.
	StateUnsealed State = iota
	// StateSealed records are frozen; their root and proofs are final.
	StateSealed
)

func (s State) String() string {
	if s == StateSealed {
		return "sealed"
	}
	return "unsealed"
}

// A Record holds the fields of one certificate before it is sealed.
// A Record is not safe for concurrent mutation; independent records
// can be built and sealed in parallel.
type Record struct {
	id     string
	schema *canonical.Schema
	salt   crypto.Salt
	fields canonical.Fields
	sealed *Sealed
}

// New returns an unsealed record identified by id, with every field of
// schema present and empty, and a fresh salt drawn from rand.
func New(id string, schema *canonical.Schema, rand io.Reader) (*Record, error) {
	if id == "" {
		return nil, ErrMissingID
	}
	salt, err := crypto.NewSalt(rand)
	if err != nil {
		return nil, err
	}
	return &Record{
		id:     id,
		schema: schema,
		salt:   salt,
		fields: schema.Empty(),
	}, nil
}

// ID returns the record identifier.
func (r *Record) ID() string {
	return r.id
}

// State returns the lifecycle state.
func (r *Record) State() State {
	if r.sealed != nil {
		return StateSealed
	}
	return StateUnsealed
}

// Salt returns the record's salt.
func (r *Record) Salt() crypto.Salt {
	return r.salt
}

// Fields returns a copy of the current fields.
func (r *Record) Fields() canonical.Fields {
	return r.fields.Clone()
}

// Set assigns value to the field called name.
func (r *Record) Set(name, value string) error {
	if r.sealed != nil {
		return ErrSealed
	}
	i := r.schema.Index(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	r.fields[i].Value = value
	return nil
}

// SetAll assigns every value of values. Nothing is assigned if any
// name is unknown.
func (r *Record) SetAll(values map[string]string) error {
	if r.sealed != nil {
		return ErrSealed
	}
	for name := range values {
		if !r.schema.Has(name) {
			return fmt.Errorf("%w: %q", ErrUnknownField, name)
		}
	}
	for i, f := range r.fields {
		if v, ok := values[f.Name]; ok {
			r.fields[i].Value = v
		}
	}
	return nil
}

// RegenerateSalt replaces the salt with a fresh one drawn from rand.
func (r *Record) RegenerateSalt(rand io.Reader) error {
	if r.sealed != nil {
		return ErrSealed
	}
	salt, err := crypto.NewSalt(rand)
	if err != nil {
		return err
	}
	r.salt = salt
	return nil
}

// Seal freezes the record and derives its leaves, root and proofs
// using h. Sealing an already sealed record returns ErrSealed.
func (r *Record) Seal(h hasher.TreeHasher) (*Sealed, error) {
	if r.sealed != nil {
		return nil, ErrSealed
	}
	tree, err := computeTree(h, r.salt, r.fields)
	if err != nil {
		return nil, err
	}
	raw, err := canonical.EncodeRaw(r.fields)
	if err != nil {
		return nil, err
	}
	s := &Sealed{
		id:       r.id,
		hasherID: h.ID(),
		salt:     r.salt,
		fields:   r.fields.Clone(),
		leaves:   tree.Leaves(),
		root:     tree.Root(),
		raw:      raw,
		proofs:   make(map[string]*merkletree.Proof, len(r.fields)),
	}
	for i, f := range r.fields {
		p, err := tree.Proof(i)
		if err != nil {
			return nil, err
		}
		s.proofs[f.Name] = p
	}
	r.sealed = s
	return s, nil
}

// Sealed returns the sealed form of the record, or nil if it is
// still unsealed.
func (r *Record) Sealed() *Sealed {
	return r.sealed
}

// LeafDigest hashes the canonical encoding of (salt, name, value).
func LeafDigest(h hasher.TreeHasher, salt crypto.Salt, name, value string) ([]byte, error) {
	enc, err := canonical.EncodeLeaf(salt.String(), name, value)
	if err != nil {
		return nil, err
	}
	return h.HashLeaf(enc), nil
}

func computeTree(h hasher.TreeHasher, salt crypto.Salt, fields canonical.Fields) (*merkletree.Tree, error) {
	if err := salt.Validate(); err != nil {
		return nil, err
	}
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	leaves := make([][]byte, len(fields))
	for i, f := range fields {
		leaf, err := LeafDigest(h, salt, f.Name, f.Value)
		if err != nil {
			return nil, err
		}
		leaves[i] = leaf
	}
	return merkletree.Build(h, leaves)
}
