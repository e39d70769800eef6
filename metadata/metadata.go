// Package metadata carries the verification data of a certificate in
// the metadata dictionary of the issued document. The document itself
// is opaque here: a Properties map is what a document writer embeds,
// and a JSON sidecar file stands in for it when no writer is wired.
//
// The document's own hash is never part of the Merkle tree, because
// embedding the metadata changes the document bytes.
package metadata

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/klever-hub/kleverblockchain-certificates/canonical"
	"github.com/klever-hub/kleverblockchain-certificates/crypto"
	"github.com/klever-hub/kleverblockchain-certificates/crypto/hasher"
	"github.com/klever-hub/kleverblockchain-certificates/record"
)

// Metadata keys written into the document.
const (
	KeyNFTID           = "/NFT_ID"
	KeyRootHash        = "/RootHash"
	KeySalt            = "/Salt"
	KeyHasher          = "/Hasher"
	KeyVerifyURL       = "/VerifyURL"
	KeyCertificateData = "/CertificateData"
)

// SidecarSuffix is appended to the record identifier to name the
// sidecar file.
const SidecarSuffix = ".meta.json"

var (
	// ErrMissingProperty indicates that a required key is absent.
	ErrMissingProperty = errors.New("[metadata] Missing property")
	// ErrRootMismatch indicates embedded data whose recomputed root
	// differs from the embedded root.
	ErrRootMismatch = errors.New("[metadata] Embedded data does not match the embedded root")
)

// Properties is a document metadata dictionary.
type Properties map[string]string

// Embedded is the verification data read back from a document.
type Embedded struct {
	ID        string
	RootHex   string
	Salt      crypto.Salt
	HasherID  string
	VerifyURL string
	Raw       string
	Fields    canonical.Fields
}

// VerifyURL returns the address a holder visits to verify the record
// id, or the empty string if base is empty.
func VerifyURL(base, id string) string {
	if base == "" {
		return ""
	}
	return base + "?id=" + url.QueryEscape(id)
}

// Embed writes the verification data of s into props, keeping any
// other properties already there. A nil props is allocated.
func Embed(props Properties, s *record.Sealed, verifyURL string) Properties {
	if props == nil {
		props = make(Properties)
	}
	props[KeyNFTID] = s.ID()
	props[KeyRootHash] = s.RootHex()
	props[KeySalt] = s.Salt().String()
	props[KeyHasher] = s.HasherID()
	props[KeyVerifyURL] = verifyURL
	props[KeyCertificateData] = s.Raw()
	return props
}

// Extract reads the verification data back from props. A missing
// hasher property means the default hasher.
func Extract(props Properties) (*Embedded, error) {
	for _, k := range []string{KeyNFTID, KeyRootHash, KeySalt, KeyCertificateData} {
		if props[k] == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingProperty, k)
		}
	}
	salt, err := crypto.ParseSalt(props[KeySalt])
	if err != nil {
		return nil, err
	}
	fields, err := canonical.DecodeRaw(props[KeyCertificateData])
	if err != nil {
		return nil, err
	}
	e := &Embedded{
		ID:        props[KeyNFTID],
		RootHex:   props[KeyRootHash],
		Salt:      salt,
		HasherID:  props[KeyHasher],
		VerifyURL: props[KeyVerifyURL],
		Raw:       props[KeyCertificateData],
		Fields:    fields,
	}
	if e.HasherID == "" {
		e.HasherID = hasher.DefaultHasherID
	}
	return e, nil
}

// Restore rebuilds the sealed record from the embedded fields and
// salt, and checks that it reproduces the embedded root.
func (e *Embedded) Restore() (*record.Sealed, error) {
	s, err := record.Restore(e.ID, e.HasherID, e.Salt, e.Fields)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(s.RootHex(), e.RootHex) {
		return nil, fmt.Errorf("%w: computed %s, embedded %s", ErrRootMismatch, s.RootHex(), e.RootHex)
	}
	return s, nil
}

// SidecarPath returns the path of the sidecar file of id in dir.
func SidecarPath(dir, id string) string {
	return filepath.Join(dir, id+SidecarSuffix)
}

// SaveFile writes props to path as indented JSON.
func SaveFile(path string, props Properties) error {
	buf, err := json.MarshalIndent(props, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(buf, '\n'), 0644)
}

// LoadFile reads properties written by SaveFile.
func LoadFile(path string) (Properties, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var props Properties
	if err := json.Unmarshal(buf, &props); err != nil {
		return nil, fmt.Errorf("[metadata] Malformed metadata file %s: %w", path, err)
	}
	return props, nil
}
