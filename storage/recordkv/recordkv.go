// Package recordkv persists sealed certificate records in a kv.DB.
// Records are stored as JSON under the key 'R' || id and are
// write-once: a record is never overwritten once stored.
package recordkv

import (
	"encoding/json"

	"github.com/klever-hub/kleverblockchain-certificates/record"
	"github.com/klever-hub/kleverblockchain-certificates/storage/kv"
	"github.com/pkg/errors"
)

// RecordIdentifier prefixes the keys of stored records.
const RecordIdentifier = 'R'

var (
	// ErrRecordExists indicates an attempt to store a record under an
	// identifier that is already taken.
	ErrRecordExists = errors.New("[recordkv] Record already exists")
	// ErrRecordNotFound indicates that no record is stored under the
	// requested identifier.
	ErrRecordNotFound = errors.New("[recordkv] Record not found")
)

// StoreRecord stores r under its identifier. Callers that store
// concurrently must serialize calls for the same identifier.
func StoreRecord(db kv.DB, r *record.Sealed) error {
	key := recordKey(r.ID())
	switch _, err := db.Get(key); {
	case err == nil:
		return errors.Wrapf(ErrRecordExists, "id %q", r.ID())
	case err != db.ErrNotFound():
		return errors.Wrapf(err, "recordkv: lookup %q", r.ID())
	}
	buf, err := json.Marshal(r)
	if err != nil {
		return errors.Wrapf(err, "recordkv: encode %q", r.ID())
	}
	wb := db.NewBatch()
	wb.Put(key, buf)
	return errors.Wrapf(db.Write(wb), "recordkv: write %q", r.ID())
}

// LoadRecord loads the record stored under id and checks that its
// root and proofs still match its fields.
func LoadRecord(db kv.DB, id string) (*record.Sealed, error) {
	buf, err := db.Get(recordKey(id))
	if err == db.ErrNotFound() {
		return nil, errors.Wrapf(ErrRecordNotFound, "id %q", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "recordkv: read %q", id)
	}
	return decodeRecord(id, buf)
}

// ListRecords loads every stored record in identifier order.
func ListRecords(db kv.DB) ([]*record.Sealed, error) {
	iter := db.NewIterator(kv.BytesPrefix([]byte{RecordIdentifier}))
	defer iter.Release()
	var records []*record.Sealed
	for iter.Next() {
		id := string(iter.Key()[1:])
		r, err := decodeRecord(id, iter.Value())
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := iter.Error(); err != nil {
		return nil, errors.Wrap(err, "recordkv: iterate")
	}
	return records, nil
}

func decodeRecord(id string, buf []byte) (*record.Sealed, error) {
	r := new(record.Sealed)
	if err := json.Unmarshal(buf, r); err != nil {
		return nil, errors.Wrapf(err, "recordkv: decode %q", id)
	}
	if err := r.Check(); err != nil {
		return nil, errors.Wrapf(err, "recordkv: record %q", id)
	}
	return r, nil
}

func recordKey(id string) []byte {
	key := make([]byte, 0, 1+len(id))
	key = append(key, RecordIdentifier)
	key = append(key, id...)
	return key
}
