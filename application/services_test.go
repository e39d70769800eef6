package application

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"path/filepath"
	"testing"

	"github.com/klever-hub/kleverblockchain-certificates/anchor"
	"github.com/klever-hub/kleverblockchain-certificates/canonical"
	"github.com/klever-hub/kleverblockchain-certificates/crypto/hasher/sha256d"
	"github.com/klever-hub/kleverblockchain-certificates/ingest"
	"github.com/klever-hub/kleverblockchain-certificates/metadata"
	"github.com/klever-hub/kleverblockchain-certificates/record"
	"github.com/klever-hub/kleverblockchain-certificates/storage/kv/leveldbkv"
	"github.com/klever-hub/kleverblockchain-certificates/storage/recordkv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSchema = canonical.MustSchema("name", "course", "issuer", "nft_id")

func newTestApp(t *testing.T, outputDir string) *App {
	db, err := leveldbkv.OpenMem()
	require.NoError(t, err)
	conf := NewConfig(filepath.Join(t.TempDir(), "config.toml"), "toml")
	conf.OutputDir = outputDir
	conf.VerifyURL = "https://example.org/verify"
	app := newApp(conf, NewNopLogger(), db, testSchema, sha256d.New())
	t.Cleanup(func() { app.Close() })
	return app
}

func testRows(n int) []ingest.Row {
	rows := make([]ingest.Row, n)
	for i := range rows {
		id := fmt.Sprintf("CERT-1/%d", i+1)
		rows[i] = ingest.Row{
			ID:   id,
			Line: i + 2,
			Values: map[string]string{
				"name":   fmt.Sprintf("Holder %d", i+1),
				"course": "X",
				"issuer": "Y",
				"nft_id": id,
			},
		}
	}
	return rows
}

func TestIssueAll(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	app := newTestApp(t, dir)

	sealed, err := app.Issuer.IssueAll(ctx, testRows(10))
	require.NoError(t, err)
	require.Len(t, sealed, 10)

	for i, s := range sealed {
		assert.Equal(t, fmt.Sprintf("CERT-1/%d", i+1), s.ID())
		stored, err := recordkv.LoadRecord(app.DB, s.ID())
		require.NoError(t, err)
		assert.Equal(t, s.RootHex(), stored.RootHex())

		root, err := app.Ledger.Root(ctx, s.ID())
		require.NoError(t, err)
		assert.Equal(t, s.RootHex(), root)

		props, err := metadata.LoadFile(metadata.SidecarPath(dir, fmt.Sprintf("CERT-1_%d", i+1)))
		require.NoError(t, err)
		assert.Equal(t, s.RootHex(), props[metadata.KeyRootHash])
		assert.Equal(t, "https://example.org/verify?id=CERT-1%2F"+fmt.Sprint(i+1), props[metadata.KeyVerifyURL])
	}
	// every record gets its own salt
	assert.NotEqual(t, sealed[0].Salt(), sealed[1].Salt())
}

func TestIssueAllRejectsExistingRecords(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t, "")
	_, err := app.Issuer.IssueAll(ctx, testRows(2))
	require.NoError(t, err)

	rows := testRows(3)
	_, err = app.Issuer.IssueAll(ctx, rows)
	require.ErrorIs(t, err, recordkv.ErrRecordExists)
	_, err = recordkv.LoadRecord(app.DB, "CERT-1/3")
	require.ErrorIs(t, err, recordkv.ErrRecordNotFound)

	dup := testRows(1)
	dup[0].ID = "CERT-2/1"
	_, err = app.Issuer.IssueAll(ctx, append(dup, dup[0]))
	require.ErrorIs(t, err, ingest.ErrDuplicateID)
}

// flakyLedger fails the first failures anchoring attempts.
type flakyLedger struct {
	anchor.Ledger
	failures int
}

var errLedgerDown = errors.New("ledger unavailable")

func (l *flakyLedger) Anchor(ctx context.Context, id, rootHex string) error {
	if l.failures > 0 {
		l.failures--
		return errLedgerDown
	}
	return l.Ledger.Anchor(ctx, id, rootHex)
}

func TestIssueAllResumesUnanchoredRecords(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t, "")
	issuer := NewIssuer(IssuerOptions{
		DB:     app.DB,
		Ledger: &flakyLedger{Ledger: app.Ledger, failures: 1},
		Hasher: sha256d.New(),
		Schema: testSchema,
		Rand:   rand.Reader,
	})

	issued, err := issuer.IssueAll(ctx, testRows(2))
	require.ErrorIs(t, err, errLedgerDown)
	assert.Empty(t, issued)
	stored, err := recordkv.LoadRecord(app.DB, "CERT-1/1")
	require.NoError(t, err)

	// a changed row does not take over the stored record
	changed := testRows(1)
	changed[0].Values["course"] = "Z"
	_, err = issuer.IssueAll(ctx, changed)
	require.ErrorIs(t, err, recordkv.ErrRecordExists)

	issued, err = issuer.IssueAll(ctx, testRows(2))
	require.NoError(t, err)
	require.Len(t, issued, 2)
	assert.Equal(t, stored.RootHex(), issued[0].RootHex())
	assert.Equal(t, stored.Salt(), issued[0].Salt())

	for _, s := range issued {
		res, err := app.Verifier.VerifyField(ctx, s.ID(), "course", "X")
		require.NoError(t, err)
		assert.True(t, res.Verified, s.ID())
	}

	// once anchored the record is issued for good
	_, err = issuer.IssueAll(ctx, testRows(1))
	require.ErrorIs(t, err, recordkv.ErrRecordExists)
}

func TestIssueAllRejectsUnknownField(t *testing.T) {
	app := newTestApp(t, "")
	rows := testRows(3)
	rows[1].Values["grade"] = "A"
	_, err := app.Issuer.IssueAll(context.Background(), rows)
	require.ErrorIs(t, err, record.ErrUnknownField)
	records, err := recordkv.ListRecords(app.DB)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestIssueAllCancelled(t *testing.T) {
	app := newTestApp(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := app.Issuer.IssueAll(ctx, testRows(50))
	require.ErrorIs(t, err, context.Canceled)
}

func TestVerifierVerifyField(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t, "")
	_, err := app.Issuer.IssueAll(ctx, testRows(3))
	require.NoError(t, err)

	res, err := app.Verifier.VerifyField(ctx, "CERT-1/2", "name", "Holder 2")
	require.NoError(t, err)
	assert.True(t, res.Verified)
	assert.Equal(t, record.ReasonOK, res.Reason)

	res, err = app.Verifier.VerifyField(ctx, "CERT-1/2", "name", "Holder 3")
	require.NoError(t, err)
	assert.False(t, res.Verified)
	assert.Equal(t, record.ReasonMismatch, res.Reason)

	res, err = app.Verifier.VerifyField(ctx, "CERT-1/2", "grade", "A")
	require.NoError(t, err)
	assert.Equal(t, record.ReasonMalformedInput, res.Reason)

	_, err = app.Verifier.VerifyField(ctx, "CERT-9/9", "name", "Holder 2")
	require.ErrorIs(t, err, recordkv.ErrRecordNotFound)
}

func TestVerifierUsesLedgerRoot(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t, "")
	s, err := record.Restore("CERT-1/1", sha256d.ID, "AAAA1111BBBB2222", canonical.Fields{
		{Name: "name", Value: "Ana"},
		{Name: "course", Value: "X"},
	})
	require.NoError(t, err)
	require.NoError(t, recordkv.StoreRecord(app.DB, s))

	// stored but not anchored
	_, err = app.Verifier.VerifyField(ctx, "CERT-1/1", "name", "Ana")
	require.ErrorIs(t, err, anchor.ErrNotAnchored)

	// anchored under a different root: the stored record is not trusted
	other, err := record.Restore("CERT-1/1", sha256d.ID, "CCCC3333DDDD4444", s.Fields())
	require.NoError(t, err)
	require.NoError(t, app.Ledger.Anchor(ctx, "CERT-1/1", other.RootHex()))
	res, err := app.Verifier.VerifyField(ctx, "CERT-1/1", "name", "Ana")
	require.NoError(t, err)
	assert.Equal(t, record.ReasonMismatch, res.Reason)
}

func TestVerifierVerifyClaim(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t, "")
	sealed, err := app.Issuer.IssueAll(ctx, testRows(1))
	require.NoError(t, err)
	s := sealed[0]
	p, err := s.Proof("course")
	require.NoError(t, err)

	// self-contained claim, no record identifier
	res, err := app.Verifier.VerifyClaim(ctx, &Claim{
		Root:  s.RootHex(),
		Salt:  s.Salt().Display(),
		Field: "course",
		Value: "X",
		Proof: p,
	})
	require.NoError(t, err)
	assert.True(t, res.Verified)

	// identifier plus a holder-supplied proof and salt; root from the ledger
	res, err = app.Verifier.VerifyClaim(ctx, &Claim{
		ID:    s.ID(),
		Salt:  s.Salt().String(),
		Field: "course",
		Value: "Z",
		Proof: p,
	})
	require.NoError(t, err)
	assert.Equal(t, record.ReasonMismatch, res.Reason)

	_, err = app.Verifier.VerifyClaim(ctx, &Claim{Field: "course", Value: "X"})
	require.ErrorIs(t, err, ErrIncompleteClaim)

	res, err = app.Verifier.VerifyClaim(ctx, &Claim{
		Root: s.RootHex(), Salt: s.Salt().String(), Hasher: "MD5",
		Field: "course", Value: "X", Proof: p,
	})
	require.NoError(t, err)
	assert.Equal(t, record.ReasonMalformedInput, res.Reason)
}

func TestVerifierRejectsForgedRoot(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t, "")
	sealed, err := app.Issuer.IssueAll(ctx, testRows(1))
	require.NoError(t, err)
	s := sealed[0]

	// a self-consistent record that was never anchored under this id
	forged, err := record.Restore(s.ID(), sha256d.ID, "ZZZZ1111ZZZZ2222", canonical.Fields{
		{Name: "name", Value: "Holder 1"},
		{Name: "course", Value: "FAKE"},
		{Name: "issuer", Value: "Y"},
		{Name: "nft_id", Value: s.ID()},
	})
	require.NoError(t, err)
	p, err := forged.Proof("course")
	require.NoError(t, err)

	res, err := app.Verifier.VerifyClaim(ctx, &Claim{
		ID:    s.ID(),
		Root:  forged.RootHex(),
		Salt:  "ZZZZ1111ZZZZ2222",
		Field: "course",
		Value: "FAKE",
		Proof: p,
	})
	require.NoError(t, err)
	assert.False(t, res.Verified)
	assert.Equal(t, record.ReasonMismatch, res.Reason)
	assert.ErrorIs(t, res.Err, ErrRootNotAnchored)

	// the anchored root in any case is accepted
	p, err = s.Proof("course")
	require.NoError(t, err)
	res, err = app.Verifier.VerifyClaim(ctx, &Claim{
		ID:    s.ID(),
		Root:  strings.ToUpper(s.RootHex()),
		Salt:  s.Salt().String(),
		Field: "course",
		Value: "X",
		Proof: p,
	})
	require.NoError(t, err)
	assert.True(t, res.Verified)

	res, err = app.Verifier.VerifyClaim(ctx, &Claim{ID: s.ID(), Root: "zz", Field: "course", Value: "X"})
	require.NoError(t, err)
	assert.Equal(t, record.ReasonMalformedInput, res.Reason)
}

func TestVerifierFindByField(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t, "")
	rows := testRows(4)
	rows[2].Values["course"] = "Z"
	_, err := app.Issuer.IssueAll(ctx, rows)
	require.NoError(t, err)

	// a stored record without an anchor is skipped
	s, err := record.Restore("CERT-9/1", sha256d.ID, "AAAA1111BBBB2222", canonical.Fields{{Name: "course", Value: "X"}})
	require.NoError(t, err)
	require.NoError(t, recordkv.StoreRecord(app.DB, s))

	ids, err := app.Verifier.FindByField(ctx, "course", "X")
	require.NoError(t, err)
	assert.Equal(t, []string{"CERT-1/1", "CERT-1/2", "CERT-1/4"}, ids)

	ids, err = app.Verifier.FindByField(ctx, "grade", "A")
	require.NoError(t, err)
	assert.Empty(t, ids)
}
