// Package server exposes record lookup, proof retrieval, claim
// verification and root anchoring over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/klever-hub/kleverblockchain-certificates/anchor"
	"github.com/klever-hub/kleverblockchain-certificates/application"
	"github.com/klever-hub/kleverblockchain-certificates/merkletree"
	"github.com/klever-hub/kleverblockchain-certificates/record"
	"github.com/klever-hub/kleverblockchain-certificates/storage/kv"
	"github.com/klever-hub/kleverblockchain-certificates/storage/recordkv"
)

// Route paths.
const (
	RecordPath = "/records/{id}"
	ProofPath  = "/records/{id}/proofs/{field}"
	VerifyPath = "/verify"
	SearchPath = "/search"
	RootPath   = "/roots/{id}"
)

// maxBodySize bounds request bodies.
const maxBodySize = 1 << 20

// A Handler is one route of the server.
type Handler struct {
	Path   string
	Method string
	Handle http.HandlerFunc
}

// RecordSummary is the public view of a stored record. It names the
// fields but never reveals their values or the salt.
type RecordSummary struct {
	ID     string   `json:"id"`
	Root   string   `json:"root"`
	Hasher string   `json:"hasher"`
	Fields []string `json:"fields"`
}

// ProofResponse carries the inclusion proof of one field.
type ProofResponse struct {
	ID     string            `json:"id"`
	Field  string            `json:"field"`
	Root   string            `json:"root"`
	Hasher string            `json:"hasher"`
	Proof  *merkletree.Proof `json:"proof"`
}

// SearchResponse lists the records matching a search.
type SearchResponse struct {
	IDs []string `json:"ids"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// A Server is the HTTP front end of a Verifier.
type Server struct {
	db       kv.DB
	verifier *application.Verifier
	anchors  anchor.Ledger
	logger   *application.Logger
	handlers []Handler

	httpServer *http.Server
	waitStop   sync.WaitGroup
}

// New returns a server answering from db through verifier. If
// anchors is not nil, the server also accepts and serves roots for
// it under /roots/{id}.
func New(db kv.DB, verifier *application.Verifier, anchors anchor.Ledger, logger *application.Logger) *Server {
	if logger == nil {
		logger = application.NewNopLogger()
	}
	s := &Server{db: db, verifier: verifier, anchors: anchors, logger: logger}
	s.registerHandlers()
	return s
}

func (s *Server) registerHandlers() {
	s.handlers = []Handler{
		{RecordPath, http.MethodGet, s.GetRecord},
		{ProofPath, http.MethodGet, s.GetProof},
		{VerifyPath, http.MethodPost, s.Verify},
		{SearchPath, http.MethodGet, s.Search},
	}
	if s.anchors != nil {
		s.handlers = append(s.handlers,
			Handler{RootPath, http.MethodGet, s.GetRoot},
			Handler{RootPath, http.MethodPut, s.PutRoot},
		)
	}
}

// Handlers returns the routes of the server.
func (s *Server) Handlers() []Handler {
	return s.handlers
}

// Router returns the routes of the server mounted on a mux router.
// Record identifiers in paths are percent-encoded, so identifiers
// such as "CERT-1/7" are written "CERT-1%2F7".
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter().UseEncodedPath()
	router.Use(s.logRequests)
	for _, h := range s.handlers {
		router.HandleFunc(h.Path, h.Handle).Methods(h.Method)
	}
	return router
}

// ListenAndServe serves on addr in the background and returns the
// address it listens on.
func (s *Server) ListenAndServe(addr string) (net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	s.httpServer = &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.waitStop.Add(1)
	go func() {
		defer s.waitStop.Done()
		s.logger.Info("Listen", "address", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error(err.Error())
		}
	}()
	return ln.Addr(), nil
}

// Shutdown stops accepting connections and waits for pending requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	err := s.httpServer.Shutdown(ctx)
	s.waitStop.Wait()
	return err
}

// GetRecord serves GET /records/{id}.
func (s *Server) GetRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := pathVar(w, r, "id")
	if !ok {
		return
	}
	rec, err := recordkv.LoadRecord(s.db, id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RecordSummary{
		ID:     rec.ID(),
		Root:   rec.RootHex(),
		Hasher: rec.HasherID(),
		Fields: rec.Fields().Names(),
	})
}

// GetProof serves GET /records/{id}/proofs/{field}.
func (s *Server) GetProof(w http.ResponseWriter, r *http.Request) {
	id, ok := pathVar(w, r, "id")
	if !ok {
		return
	}
	field, ok := pathVar(w, r, "field")
	if !ok {
		return
	}
	rec, err := recordkv.LoadRecord(s.db, id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	p, err := rec.Proof(field)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ProofResponse{
		ID:     rec.ID(),
		Field:  field,
		Root:   rec.RootHex(),
		Hasher: rec.HasherID(),
		Proof:  p,
	})
}

// Verify serves POST /verify. The body is an application.Claim and
// the answer a record.Result; a false claim is a 200 response.
func (s *Server) Verify(w http.ResponseWriter, r *http.Request) {
	var c application.Claim
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(&c); err != nil {
		reason := record.ReasonMalformedInput
		var mpe *merkletree.MalformedProofError
		if errors.As(err, &mpe) {
			reason = record.ReasonMalformedProof
		}
		writeJSON(w, http.StatusOK, record.Result{Reason: reason})
		s.logger.Debug("Malformed claim", "error", err)
		return
	}
	res, err := s.verifier.VerifyClaim(r.Context(), &c)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Search serves GET /search?field=...&value=...
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	field := q.Get("field")
	if field == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "field is required"})
		return
	}
	ids, err := s.verifier.FindByField(r.Context(), field, q.Get("value"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{IDs: ids})
}

// GetRoot serves GET /roots/{id}.
func (s *Server) GetRoot(w http.ResponseWriter, r *http.Request) {
	id, ok := pathVar(w, r, "id")
	if !ok {
		return
	}
	root, err := s.anchors.Root(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, anchor.RootMessage{ID: id, Root: root})
}

// PutRoot serves PUT /roots/{id}.
func (s *Server) PutRoot(w http.ResponseWriter, r *http.Request) {
	id, ok := pathVar(w, r, "id")
	if !ok {
		return
	}
	var msg anchor.RootMessage
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(&msg); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if msg.ID != "" && msg.ID != id {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "identifier in body does not match path"})
		return
	}
	if err := s.anchors.Anchor(r.Context(), id, msg.Root); err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("Anchored root", "id", id, "root", msg.Root)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("Request", "method", r.Method, "path", r.URL.EscapedPath(),
			"remote", r.RemoteAddr, "duration", time.Since(start))
	})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, recordkv.ErrRecordNotFound),
		errors.Is(err, record.ErrNoProof),
		errors.Is(err, anchor.ErrNotAnchored):
		status = http.StatusNotFound
	case errors.Is(err, anchor.ErrAlreadyAnchored):
		status = http.StatusConflict
	case errors.Is(err, application.ErrIncompleteClaim),
		errors.Is(err, anchor.ErrMalformedRoot),
		errors.Is(err, anchor.ErrMissingID):
		status = http.StatusBadRequest
	default:
		s.logger.Error("Request failed", "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func pathVar(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	v, err := url.PathUnescape(mux.Vars(r)[name])
	if err != nil || v == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed " + name})
		return "", false
	}
	return v, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
