package recordkv

import (
	"errors"
	"fmt"
	"testing"

	"github.com/klever-hub/kleverblockchain-certificates/canonical"
	"github.com/klever-hub/kleverblockchain-certificates/crypto"
	"github.com/klever-hub/kleverblockchain-certificates/crypto/hasher/sha256d"
	"github.com/klever-hub/kleverblockchain-certificates/record"
	"github.com/klever-hub/kleverblockchain-certificates/storage/kv"
	"github.com/klever-hub/kleverblockchain-certificates/storage/kv/leveldbkv"
)

func withDB(t *testing.T, f func(db kv.DB)) {
	db, err := leveldbkv.OpenMem()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	f(db)
}

func newSealed(t *testing.T, id, course string) *record.Sealed {
	s, err := record.Restore(id, sha256d.ID, crypto.Salt("AAAA1111BBBB2222"), canonical.Fields{
		{Name: "name", Value: "Ana"},
		{Name: "course", Value: course},
	})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestStoreLoad(t *testing.T) {
	withDB(t, func(db kv.DB) {
		s := newSealed(t, "cert-1", "X")
		if err := StoreRecord(db, s); err != nil {
			t.Fatal(err)
		}
		got, err := LoadRecord(db, "cert-1")
		if err != nil {
			t.Fatal(err)
		}
		if got.RootHex() != s.RootHex() || !got.Fields().Equal(s.Fields()) {
			t.Fatal("loaded record differs from stored record")
		}
		if res := got.VerifyField("course", "X"); !res.Verified {
			t.Fatal("loaded record does not verify", res)
		}
	})
}

func TestStoreIsWriteOnce(t *testing.T) {
	withDB(t, func(db kv.DB) {
		if err := StoreRecord(db, newSealed(t, "cert-1", "X")); err != nil {
			t.Fatal(err)
		}
		err := StoreRecord(db, newSealed(t, "cert-1", "Z"))
		if !errors.Is(err, ErrRecordExists) {
			t.Fatal("Expect ErrRecordExists", "got", err)
		}
		got, err := LoadRecord(db, "cert-1")
		if err != nil {
			t.Fatal(err)
		}
		if v, _ := got.Fields().Get("course"); v != "X" {
			t.Fatal("stored record was overwritten", "got", v)
		}
	})
}

func TestLoadMissing(t *testing.T) {
	withDB(t, func(db kv.DB) {
		if _, err := LoadRecord(db, "cert-404"); !errors.Is(err, ErrRecordNotFound) {
			t.Fatal("Expect ErrRecordNotFound", "got", err)
		}
	})
}

func TestLoadStale(t *testing.T) {
	withDB(t, func(db kv.DB) {
		if err := db.Put(recordKey("cert-1"), []byte(`{"id":"cert-1","hasher":"SHA-256d","salt":"AAAA1111BBBB2222",`+
			`"fields":[{"name":"name","value":"Ana"}],"leaves":["00"],"root":"00","raw":"name|Ana","proofs":{}}`)); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadRecord(db, "cert-1"); !errors.Is(err, record.ErrStaleProof) {
			t.Fatal("Expect ErrStaleProof", "got", err)
		}
		if err := db.Put(recordKey("cert-2"), []byte("{")); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadRecord(db, "cert-2"); err == nil {
			t.Fatal("Expect decoding error")
		}
	})
}

func TestListRecords(t *testing.T) {
	withDB(t, func(db kv.DB) {
		for i := 3; i >= 1; i-- {
			if err := StoreRecord(db, newSealed(t, fmt.Sprintf("cert-%d", i), "X")); err != nil {
				t.Fatal(err)
			}
		}
		// entries under other prefixes are ignored
		if err := db.Put([]byte("Acert-1"), []byte("root")); err != nil {
			t.Fatal(err)
		}
		records, err := ListRecords(db)
		if err != nil {
			t.Fatal(err)
		}
		if len(records) != 3 {
			t.Fatal("Expect 3 records", "got", len(records))
		}
		for i, r := range records {
			if r.ID() != fmt.Sprintf("cert-%d", i+1) {
				t.Fatal("records out of order", "got", r.ID())
			}
		}
	})
}
