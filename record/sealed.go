package record

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/klever-hub/kleverblockchain-certificates/canonical"
	"github.com/klever-hub/kleverblockchain-certificates/crypto"
	"github.com/klever-hub/kleverblockchain-certificates/crypto/hasher"
	"github.com/klever-hub/kleverblockchain-certificates/merkletree"
)

// Sealed is the immutable form of a record: its fields, salt, leaf
// digests, Merkle root and the inclusion proof of every field.
// Accessors return copies.
type Sealed struct {
	id       string
	hasherID string
	salt     crypto.Salt
	fields   canonical.Fields
	leaves   [][]byte
	root     []byte
	raw      string
	proofs   map[string]*merkletree.Proof
}

// Restore seals fields and salt again under the hasher named
// hasherID. It is used to rebuild proofs from persisted certificate
// data, such as the data embedded in a document.
func Restore(id, hasherID string, salt crypto.Salt, fields canonical.Fields) (*Sealed, error) {
	if id == "" {
		return nil, ErrMissingID
	}
	h, err := hasher.Hasher(hasherID)
	if err != nil {
		return nil, err
	}
	r := &Record{id: id, salt: salt, fields: fields.Clone()}
	return r.Seal(h)
}

// ID returns the record identifier.
func (s *Sealed) ID() string {
	return s.id
}

// HasherID returns the ID of the hasher the root was computed with.
func (s *Sealed) HasherID() string {
	return s.hasherID
}

// Hasher returns the hasher the root was computed with.
func (s *Sealed) Hasher() (hasher.TreeHasher, error) {
	return hasher.Hasher(s.hasherID)
}

// Salt returns the record's salt.
func (s *Sealed) Salt() crypto.Salt {
	return s.salt
}

// Fields returns a copy of the sealed fields.
func (s *Sealed) Fields() canonical.Fields {
	return s.fields.Clone()
}

// Root returns a copy of the Merkle root.
func (s *Sealed) Root() []byte {
	return append([]byte(nil), s.root...)
}

// RootHex returns the Merkle root as lowercase hex.
func (s *Sealed) RootHex() string {
	return hex.EncodeToString(s.root)
}

// Leaves returns copies of the leaf digests in field order.
func (s *Sealed) Leaves() [][]byte {
	leaves := make([][]byte, len(s.leaves))
	for i, l := range s.leaves {
		leaves[i] = append([]byte(nil), l...)
	}
	return leaves
}

// Raw returns the raw delimited encoding of the fields.
func (s *Sealed) Raw() string {
	return s.raw
}

// Proof returns a copy of the inclusion proof of the named field.
func (s *Sealed) Proof(name string) (*merkletree.Proof, error) {
	p, ok := s.proofs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoProof, name)
	}
	return p.Clone(), nil
}

// VerifyField checks a claimed value of the named field against the
// record's own root and proof.
func (s *Sealed) VerifyField(name, value string) Result {
	p, ok := s.proofs[name]
	if !ok {
		return Result{Reason: ReasonMalformedInput, Err: fmt.Errorf("%w: %q", ErrNoProof, name)}
	}
	h, err := s.Hasher()
	if err != nil {
		return Result{Reason: ReasonMalformedInput, Err: err}
	}
	return verify(h, s.root, s.salt, name, value, p)
}

// Check recomputes the leaves, root and proofs from the stored
// fields and salt and returns ErrStaleProof if they differ from the
// stored ones.
func (s *Sealed) Check() error {
	h, err := s.Hasher()
	if err != nil {
		return err
	}
	tree, err := computeTree(h, s.salt, s.fields)
	if err != nil {
		return err
	}
	if !bytes.Equal(tree.Root(), s.root) {
		return fmt.Errorf("%w: root", ErrStaleProof)
	}
	if len(s.leaves) != tree.Len() {
		return fmt.Errorf("%w: leaf count", ErrStaleProof)
	}
	for i := range s.leaves {
		if !bytes.Equal(s.leaves[i], tree.Leaf(i)) {
			return fmt.Errorf("%w: leaf %d", ErrStaleProof, i)
		}
	}
	raw, err := canonical.EncodeRaw(s.fields)
	if err != nil {
		return err
	}
	if raw != s.raw {
		return fmt.Errorf("%w: raw data", ErrStaleProof)
	}
	if len(s.proofs) != len(s.fields) {
		return fmt.Errorf("%w: proof count", ErrStaleProof)
	}
	for i, f := range s.fields {
		p, ok := s.proofs[f.Name]
		if !ok || p.LeafIndex != i {
			return fmt.Errorf("%w: proof of %q", ErrStaleProof, f.Name)
		}
		if err := merkletree.Verify(h, s.root, s.leaves[i], p); err != nil {
			return fmt.Errorf("%w: proof of %q: %v", ErrStaleProof, f.Name, err)
		}
	}
	return nil
}

type sealedJSON struct {
	ID     string                       `json:"id"`
	Hasher string                       `json:"hasher"`
	Salt   crypto.Salt                  `json:"salt"`
	Fields canonical.Fields             `json:"fields"`
	Leaves []string                     `json:"leaves"`
	Root   string                       `json:"root"`
	Raw    string                       `json:"raw"`
	Proofs map[string]*merkletree.Proof `json:"proofs"`
}

// MarshalJSON implements json.Marshaler.
func (s *Sealed) MarshalJSON() ([]byte, error) {
	leaves := make([]string, len(s.leaves))
	for i, l := range s.leaves {
		leaves[i] = hex.EncodeToString(l)
	}
	return json.Marshal(sealedJSON{
		ID:     s.id,
		Hasher: s.hasherID,
		Salt:   s.salt,
		Fields: s.fields,
		Leaves: leaves,
		Root:   s.RootHex(),
		Raw:    s.raw,
		Proofs: s.proofs,
	})
}

// UnmarshalJSON implements json.Unmarshaler. It does not check the
// decoded record; call Check for that.
func (s *Sealed) UnmarshalJSON(b []byte) error {
	var v sealedJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if v.ID == "" {
		return ErrMissingID
	}
	root, err := hex.DecodeString(v.Root)
	if err != nil {
		return fmt.Errorf("[record] Malformed root: %w", err)
	}
	leaves := make([][]byte, len(v.Leaves))
	for i, l := range v.Leaves {
		if leaves[i], err = hex.DecodeString(l); err != nil {
			return fmt.Errorf("[record] Malformed leaf %d: %w", i, err)
		}
	}
	for name, p := range v.Proofs {
		if p == nil {
			return fmt.Errorf("[record] Missing proof for %q", name)
		}
	}
	*s = Sealed{
		id:       v.ID,
		hasherID: v.Hasher,
		salt:     v.Salt,
		fields:   v.Fields,
		leaves:   leaves,
		root:     root,
		raw:      v.Raw,
		proofs:   v.Proofs,
	}
	return nil
}
