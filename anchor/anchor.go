// Package anchor is the boundary to the external ledger that holds the
// trusted roots of issued certificates. Only a record identifier and
// its root hash ever cross this boundary; fields, salts and proofs
// stay with the issuer and the holder.
package anchor

import (
	"context"
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrNotAnchored indicates that no root is anchored for a record.
	ErrNotAnchored = errors.New("[anchor] Record is not anchored")
	// ErrAlreadyAnchored indicates an attempt to anchor a different
	// root for a record that already has one.
	ErrAlreadyAnchored = errors.New("[anchor] Record is anchored with a different root")
	// ErrMalformedRoot indicates a root that is not a hex string.
	ErrMalformedRoot = errors.New("[anchor] Malformed root")
	// ErrMissingID indicates an empty record identifier.
	ErrMissingID = errors.New("[anchor] Missing record identifier")
)

// A Ledger stores one immutable root per record identifier.
// Anchoring the root a record already has is a no-op.
type Ledger interface {
	Anchor(ctx context.Context, id, rootHex string) error
	Root(ctx context.Context, id string) (string, error)
}

// RootMessage is the wire form of an anchored root.
type RootMessage struct {
	ID   string `json:"id"`
	Root string `json:"root"`
}

// NormalizeRoot validates rootHex and returns it in lowercase.
func NormalizeRoot(rootHex string) (string, error) {
	root := strings.ToLower(strings.TrimSpace(rootHex))
	if root == "" {
		return "", ErrMalformedRoot
	}
	if _, err := hex.DecodeString(root); err != nil {
		return "", errors.Wrap(ErrMalformedRoot, err.Error())
	}
	return root, nil
}
