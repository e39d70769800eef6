package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/klever-hub/kleverblockchain-certificates/anchor"
	"github.com/klever-hub/kleverblockchain-certificates/application"
	"github.com/klever-hub/kleverblockchain-certificates/canonical"
	"github.com/klever-hub/kleverblockchain-certificates/crypto/hasher/sha256d"
	"github.com/klever-hub/kleverblockchain-certificates/record"
	"github.com/klever-hub/kleverblockchain-certificates/storage/kv"
	"github.com/klever-hub/kleverblockchain-certificates/storage/kv/leveldbkv"
	"github.com/klever-hub/kleverblockchain-certificates/storage/recordkv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testID = "CERT-1/1"

type testEnv struct {
	db      kv.DB
	ledger  *anchor.KVLedger
	sealed  *record.Sealed
	handler http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	db, err := leveldbkv.OpenMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s, err := record.Restore(testID, sha256d.ID, "AAAA1111BBBB2222", canonical.Fields{
		{Name: "name", Value: "Ana"},
		{Name: "course", Value: "X"},
		{Name: "issuer", Value: "Y"},
	})
	require.NoError(t, err)
	require.NoError(t, recordkv.StoreRecord(db, s))
	ledger := anchor.NewKVLedger(db)
	require.NoError(t, ledger.Anchor(context.Background(), testID, s.RootHex()))

	srv := New(db, application.NewVerifier(db, ledger, nil), ledger, nil)
	return &testEnv{db: db, ledger: ledger, sealed: s, handler: srv.Router()}
}

func (env *testEnv) do(t *testing.T, method, target string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	rr := httptest.NewRecorder()
	env.handler.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	require.NoError(t, json.NewDecoder(rr.Body).Decode(v))
}

func TestGetRecord(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, http.MethodGet, "/records/CERT-1%2F1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var summary RecordSummary
	decode(t, rr, &summary)
	assert.Equal(t, RecordSummary{
		ID:     testID,
		Root:   env.sealed.RootHex(),
		Hasher: sha256d.ID,
		Fields: []string{"name", "course", "issuer"},
	}, summary)
	assert.NotContains(t, rr.Body.String(), "AAAA1111BBBB2222")

	rr = env.do(t, http.MethodGet, "/records/CERT-9%2F9", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestProofAndVerify(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, http.MethodGet, "/records/CERT-1%2F1/proofs/course", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var pr ProofResponse
	decode(t, rr, &pr)
	assert.Equal(t, 1, pr.Proof.LeafIndex)
	assert.Equal(t, env.sealed.RootHex(), pr.Root)

	// the holder presents the proof with their salt
	for value, verified := range map[string]bool{"X": true, "Z": false} {
		rr = env.do(t, http.MethodPost, VerifyPath, application.Claim{
			ID:    testID,
			Salt:  "AAAA-1111-BBBB-2222",
			Field: "course",
			Value: value,
			Proof: pr.Proof,
		})
		require.Equal(t, http.StatusOK, rr.Code)
		var res record.Result
		decode(t, rr, &res)
		assert.Equal(t, verified, res.Verified, value)
	}

	rr = env.do(t, http.MethodGet, "/records/CERT-1%2F1/proofs/grade", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestVerifyErrors(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, VerifyPath, bytes.NewBufferString("{"))
	rr := httptest.NewRecorder()
	env.handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	var res record.Result
	decode(t, rr, &res)
	assert.Equal(t, record.ReasonMalformedInput, res.Reason)

	rr = env.do(t, http.MethodPost, VerifyPath, application.Claim{Field: "course", Value: "X"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodPost, VerifyPath, application.Claim{ID: "CERT-9/9", Field: "course", Value: "X"})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do(t, http.MethodPost, VerifyPath, json.RawMessage(
		`{"id":"CERT-1/1","field":"course","value":"X","proof":{"leafIndex":1,"path":[{"hash":"zz","direction":"left"}]}}`))
	require.Equal(t, http.StatusOK, rr.Code)
	decode(t, rr, &res)
	assert.Equal(t, record.ReasonMalformedProof, res.Reason)
}

func TestVerifyForgedRoot(t *testing.T) {
	env := newTestEnv(t)
	forged, err := record.Restore(testID, sha256d.ID, "ZZZZ1111ZZZZ2222", canonical.Fields{
		{Name: "name", Value: "Ana"},
		{Name: "course", Value: "FAKE"},
		{Name: "issuer", Value: "Y"},
	})
	require.NoError(t, err)
	p, err := forged.Proof("course")
	require.NoError(t, err)

	rr := env.do(t, http.MethodPost, VerifyPath, application.Claim{
		ID:    testID,
		Root:  forged.RootHex(),
		Salt:  "ZZZZ1111ZZZZ2222",
		Field: "course",
		Value: "FAKE",
		Proof: p,
	})
	require.Equal(t, http.StatusOK, rr.Code)
	var res record.Result
	decode(t, rr, &res)
	assert.False(t, res.Verified)
	assert.Equal(t, record.ReasonMismatch, res.Reason)
}

func TestSearch(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, http.MethodGet, SearchPath+"?field=course&value=X", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var sr SearchResponse
	decode(t, rr, &sr)
	assert.Equal(t, []string{testID}, sr.IDs)

	rr = env.do(t, http.MethodGet, SearchPath+"?field=course&value=Z", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	decode(t, rr, &sr)
	assert.Empty(t, sr.IDs)

	rr = env.do(t, http.MethodGet, SearchPath, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRoots(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, http.MethodGet, "/roots/CERT-1%2F1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var msg anchor.RootMessage
	decode(t, rr, &msg)
	assert.Equal(t, anchor.RootMessage{ID: testID, Root: env.sealed.RootHex()}, msg)

	rr = env.do(t, http.MethodGet, "/roots/CERT-2%2F1", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	root := "2bd806c97f0e00af1a1fc3328fa763a9269723c8db8fac4f93af71db186d6e90"
	rr = env.do(t, http.MethodPut, "/roots/CERT-2%2F1", anchor.RootMessage{Root: root})
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = env.do(t, http.MethodPut, "/roots/CERT-2%2F1", anchor.RootMessage{Root: "00" + root[2:]})
	assert.Equal(t, http.StatusConflict, rr.Code)
	rr = env.do(t, http.MethodPut, "/roots/CERT-3%2F1", anchor.RootMessage{Root: "xyz"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = env.do(t, http.MethodPut, "/roots/CERT-3%2F1", anchor.RootMessage{ID: "CERT-4/1", Root: root})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestNoAnchorRoutesWithoutLedger(t *testing.T) {
	env := newTestEnv(t)
	srv := New(env.db, application.NewVerifier(env.db, env.ledger, nil), nil, nil)
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/roots/CERT-1%2F1", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHTTPLedgerAgainstServer(t *testing.T) {
	env := newTestEnv(t)
	srv := New(env.db, application.NewVerifier(env.db, env.ledger, nil), env.ledger, nil)
	addr, err := srv.ListenAndServe("127.0.0.1:0")
	require.NoError(t, err)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		assert.NoError(t, srv.Shutdown(ctx))
	}()

	ctx := context.Background()
	remote := anchor.NewHTTPLedger("http://"+addr.String(), nil, 0)
	root, err := remote.Root(ctx, testID)
	require.NoError(t, err)
	assert.Equal(t, env.sealed.RootHex(), root)

	other, err := record.Restore("CERT-1/2", sha256d.ID, "CCCC3333DDDD4444", env.sealed.Fields())
	require.NoError(t, err)
	require.NoError(t, remote.Anchor(ctx, other.ID(), other.RootHex()))
	root, err = env.ledger.Root(ctx, other.ID())
	require.NoError(t, err)
	assert.Equal(t, other.RootHex(), root)

	_, err = remote.Root(ctx, "CERT-404")
	require.ErrorIs(t, err, anchor.ErrNotAnchored)
}
