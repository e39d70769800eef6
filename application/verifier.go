package application

import (
	"context"
	"errors"

	"github.com/klever-hub/kleverblockchain-certificates/anchor"
	"github.com/klever-hub/kleverblockchain-certificates/crypto/hasher"
	"github.com/klever-hub/kleverblockchain-certificates/merkletree"
	"github.com/klever-hub/kleverblockchain-certificates/record"
	"github.com/klever-hub/kleverblockchain-certificates/storage/kv"
	"github.com/klever-hub/kleverblockchain-certificates/storage/recordkv"
)

// A Verifier answers verification queries against stored records and
// anchored roots.
type Verifier struct {
	db     kv.DB
	ledger anchor.Ledger
	logger *Logger
}

// NewVerifier returns a Verifier reading records from db and trusted
// roots from ledger. A nil logger discards output.
func NewVerifier(db kv.DB, ledger anchor.Ledger, logger *Logger) *Verifier {
	if logger == nil {
		logger = NewNopLogger()
	}
	return &Verifier{db: db, ledger: ledger, logger: logger}
}

// A Claim is a holder's assertion that a field of a record has a
// value. Salt, Hasher and Proof may be left empty, in which case the
// stored ones are used. A claim naming a record is always checked
// against the anchored root; a Root it carries must equal that root.
// Only claims without ID are checked against their own Root.
type Claim struct {
	ID     string            `json:"id,omitempty"`
	Root   string            `json:"root,omitempty"`
	Salt   string            `json:"salt,omitempty"`
	Hasher string            `json:"hasher,omitempty"`
	Field  string            `json:"field"`
	Value  string            `json:"value"`
	Proof  *merkletree.Proof `json:"proof,omitempty"`
}

// ErrRootNotAnchored indicates a claim naming a record whose anchored
// root differs from the root the claim carries.
var ErrRootNotAnchored = errors.New("[application] Claimed root differs from the anchored root")

// ErrIncompleteClaim indicates a claim that names no record and does
// not carry its own root, salt and proof.
var ErrIncompleteClaim = errors.New("[application] Claim needs a record identifier or a root, salt and proof")

// VerifyField checks that the field name of record id has value.
// The proof and salt come from the record store, the root from the
// ledger. A false claim is reported in the Result, not as an error.
func (v *Verifier) VerifyField(ctx context.Context, id, name, value string) (record.Result, error) {
	return v.VerifyClaim(ctx, &Claim{ID: id, Field: name, Value: value})
}

// VerifyClaim checks c, completing it from the store and the ledger
// where it leaves values empty.
func (v *Verifier) VerifyClaim(ctx context.Context, c *Claim) (record.Result, error) {
	if c.ID == "" && (c.Root == "" || c.Salt == "" || c.Proof == nil) {
		return record.Result{}, ErrIncompleteClaim
	}
	hasherID := c.Hasher
	root, salt, proof := c.Root, c.Salt, c.Proof
	if c.ID != "" && (salt == "" || proof == nil || hasherID == "") {
		s, err := recordkv.LoadRecord(v.db, c.ID)
		if err != nil {
			return record.Result{}, err
		}
		if salt == "" {
			salt = s.Salt().String()
		}
		if hasherID == "" {
			hasherID = s.HasherID()
		}
		if proof == nil {
			p, err := s.Proof(c.Field)
			if err != nil {
				return record.Result{Reason: record.ReasonMalformedInput, Err: err}, nil
			}
			proof = p
		}
	}
	if c.ID != "" {
		anchored, err := v.ledger.Root(ctx, c.ID)
		if err != nil {
			return record.Result{}, err
		}
		if root != "" {
			claimed, err := anchor.NormalizeRoot(root)
			if err != nil {
				return record.Result{Reason: record.ReasonMalformedInput, Err: err}, nil
			}
			if claimed != anchored {
				v.logger.Info("Claimed root is not anchored", "id", c.ID, "field", c.Field)
				return record.Result{Reason: record.ReasonMismatch, Err: ErrRootNotAnchored}, nil
			}
		}
		root = anchored
	}
	if hasherID == "" {
		hasherID = hasher.DefaultHasherID
	}
	h, err := hasher.Hasher(hasherID)
	if err != nil {
		return record.Result{Reason: record.ReasonMalformedInput, Err: err}, nil
	}

	res := record.VerifyField(h, root, salt, c.Field, c.Value, proof)
	v.logger.Info("Verified claim", "id", c.ID, "field", c.Field,
		"verified", res.Verified, "reason", res.Reason.String())
	if res.Err != nil {
		v.logger.Debug("Verification detail", "id", c.ID, "error", res.Err)
	}
	return res, nil
}

// FindByField returns the identifiers of all stored records whose
// field name verifiably has value under their anchored root.
// Records without an anchored root are skipped.
func (v *Verifier) FindByField(ctx context.Context, name, value string) ([]string, error) {
	records, err := recordkv.ListRecords(v.db)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, s := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := s.Proof(name)
		if err != nil {
			continue
		}
		root, err := v.ledger.Root(ctx, s.ID())
		if errors.Is(err, anchor.ErrNotAnchored) {
			v.logger.Warn("Skipping unanchored record", "id", s.ID())
			continue
		}
		if err != nil {
			return nil, err
		}
		h, err := s.Hasher()
		if err != nil {
			return nil, err
		}
		if res := record.VerifyField(h, root, s.Salt().String(), name, value, p); res.Verified {
			ids = append(ids, s.ID())
		}
	}
	return ids, nil
}
