package anchor

import (
	"context"
	"sync"

	"github.com/klever-hub/kleverblockchain-certificates/storage/kv"
	"github.com/pkg/errors"
)

// AnchorIdentifier prefixes the keys of anchored roots.
const AnchorIdentifier = 'A'

// KVLedger keeps anchored roots in a local kv.DB. It serves as the
// ledger of a standalone issuer and as the backing store of the
// anchor endpoints of the verification server.
type KVLedger struct {
	mu sync.Mutex
	db kv.DB
}

var _ Ledger = (*KVLedger)(nil)

// NewKVLedger returns a ledger backed by db.
func NewKVLedger(db kv.DB) *KVLedger {
	return &KVLedger{db: db}
}

// Anchor records rootHex as the root of id.
func (l *KVLedger) Anchor(ctx context.Context, id, rootHex string) error {
	if id == "" {
		return ErrMissingID
	}
	root, err := NormalizeRoot(rootHex)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	switch old, err := l.db.Get(anchorKey(id)); {
	case err == nil:
		if string(old) == root {
			return nil
		}
		return errors.Wrapf(ErrAlreadyAnchored, "id %q", id)
	case err != l.db.ErrNotFound():
		return errors.Wrapf(err, "anchor: lookup %q", id)
	}
	return errors.Wrapf(l.db.Put(anchorKey(id), []byte(root)), "anchor: write %q", id)
}

// Root returns the root anchored for id.
func (l *KVLedger) Root(ctx context.Context, id string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	root, err := l.db.Get(anchorKey(id))
	if err == l.db.ErrNotFound() {
		return "", errors.Wrapf(ErrNotAnchored, "id %q", id)
	}
	if err != nil {
		return "", errors.Wrapf(err, "anchor: read %q", id)
	}
	return string(root), nil
}

func anchorKey(id string) []byte {
	key := make([]byte, 0, 1+len(id))
	key = append(key, AnchorIdentifier)
	key = append(key, id...)
	return key
}
