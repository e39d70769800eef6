package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/klever-hub/kleverblockchain-certificates/anchor"
	"github.com/klever-hub/kleverblockchain-certificates/canonical"
	"github.com/klever-hub/kleverblockchain-certificates/crypto/hasher"
	"github.com/klever-hub/kleverblockchain-certificates/ingest"
	"github.com/klever-hub/kleverblockchain-certificates/metadata"
	"github.com/klever-hub/kleverblockchain-certificates/record"
	"github.com/klever-hub/kleverblockchain-certificates/storage/kv"
	"github.com/klever-hub/kleverblockchain-certificates/storage/recordkv"
)

// An Issuer seals, stores and anchors certificate records.
type Issuer struct {
	db     kv.DB
	ledger anchor.Ledger
	hasher hasher.TreeHasher
	schema *canonical.Schema
	// rand must be safe for concurrent use.
	rand      io.Reader
	workers   int
	outputDir string
	verifyURL string
	logger    *Logger
}

// IssuerOptions configures an Issuer.
type IssuerOptions struct {
	DB     kv.DB
	Ledger anchor.Ledger
	Hasher hasher.TreeHasher
	Schema *canonical.Schema
	// Rand is the salt source. It must be safe for concurrent use;
	// crypto/rand.Reader is.
	Rand io.Reader
	// Workers bounds concurrent sealing. Values below 1 mean 1.
	Workers int
	// OutputDir receives metadata sidecars; empty disables them.
	OutputDir string
	VerifyURL string
	Logger    *Logger
}

// NewIssuer returns an Issuer built from opts.
func NewIssuer(opts IssuerOptions) *Issuer {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = NewNopLogger()
	}
	return &Issuer{
		db:        opts.DB,
		ledger:    opts.Ledger,
		hasher:    opts.Hasher,
		schema:    opts.Schema,
		rand:      opts.Rand,
		workers:   workers,
		outputDir: opts.OutputDir,
		verifyURL: opts.VerifyURL,
		logger:    logger,
	}
}

// IssueAll issues one record per row. Repeated identifiers and
// identifiers already issued are rejected before anything is
// written. Records are sealed concurrently, then stored, anchored and
// given a metadata sidecar one by one in row order; an error stops
// the run, leaving the records before it issued.
//
// A row whose record was stored by an earlier run but never anchored
// resumes that record: its stored salt and root are anchored again
// instead of sealing a new one. The row must carry the stored values.
func (is *Issuer) IssueAll(ctx context.Context, rows []ingest.Row) ([]*record.Sealed, error) {
	seen := make(map[string]bool, len(rows))
	sealed := make([]*record.Sealed, len(rows))
	stored := make([]bool, len(rows))
	for i, row := range rows {
		if seen[row.ID] {
			return nil, fmt.Errorf("line %d: %w: %q", row.Line, ingest.ErrDuplicateID, row.ID)
		}
		seen[row.ID] = true
		s, err := is.pending(ctx, row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", row.Line, err)
		}
		if s != nil {
			is.logger.Warn("Resuming unanchored record", "id", row.ID)
			sealed[i], stored[i] = s, true
		}
	}

	if err := is.sealAll(ctx, rows, sealed); err != nil {
		return nil, err
	}
	is.logger.Info("Sealed records", "count", len(sealed), "hasher", is.hasher.ID())

	if is.outputDir != "" {
		if err := os.MkdirAll(is.outputDir, 0755); err != nil {
			return nil, err
		}
	}
	for i, s := range sealed {
		if err := is.publish(ctx, s, stored[i]); err != nil {
			is.logger.Error("Issuing stopped", "id", s.ID(), "issued", i, "error", err)
			return sealed[:i], err
		}
	}
	return sealed, nil
}

// pending returns the stored record of row if it was never anchored,
// and nil if row has no stored record.
func (is *Issuer) pending(ctx context.Context, row ingest.Row) (*record.Sealed, error) {
	s, err := recordkv.LoadRecord(is.db, row.ID)
	if errors.Is(err, recordkv.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	_, err = is.ledger.Root(ctx, row.ID)
	if err == nil {
		return nil, fmt.Errorf("%w: %q", recordkv.ErrRecordExists, row.ID)
	}
	if !errors.Is(err, anchor.ErrNotAnchored) {
		return nil, err
	}
	for _, f := range s.Fields() {
		if row.Values[f.Name] != f.Value {
			return nil, fmt.Errorf("%w: %q is stored unanchored with another %s",
				recordkv.ErrRecordExists, row.ID, f.Name)
		}
	}
	return s, nil
}

// Issue issues a single record.
func (is *Issuer) Issue(ctx context.Context, row ingest.Row) (*record.Sealed, error) {
	sealed, err := is.IssueAll(ctx, []ingest.Row{row})
	if err != nil {
		return nil, err
	}
	return sealed[0], nil
}

// sealAll seals the rows whose entry in sealed is nil.
func (is *Issuer) sealAll(ctx context.Context, rows []ingest.Row, sealed []*record.Sealed) error {
	errs := make([]error, len(rows))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < is.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				sealed[i], errs[i] = is.seal(rows[i])
			}
		}()
	}
feed:
	for i := range rows {
		if sealed[i] != nil {
			continue
		}
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	for i, err := range errs {
		if err != nil {
			return fmt.Errorf("line %d (%s): %w", rows[i].Line, rows[i].ID, err)
		}
	}
	return nil
}

func (is *Issuer) seal(row ingest.Row) (*record.Sealed, error) {
	r, err := record.New(row.ID, is.schema, is.rand)
	if err != nil {
		return nil, err
	}
	if err := r.SetAll(row.Values); err != nil {
		return nil, err
	}
	return r.Seal(is.hasher)
}

func (is *Issuer) publish(ctx context.Context, s *record.Sealed, stored bool) error {
	if !stored {
		if err := recordkv.StoreRecord(is.db, s); err != nil {
			return err
		}
	}
	if err := is.ledger.Anchor(ctx, s.ID(), s.RootHex()); err != nil {
		return err
	}
	logger := is.logger.With("id", s.ID(), "root", s.RootHex())
	if is.outputDir != "" {
		props := metadata.Embed(nil, s, metadata.VerifyURL(is.verifyURL, s.ID()))
		path := metadata.SidecarPath(is.outputDir, sidecarName(s.ID()))
		if err := metadata.SaveFile(path, props); err != nil {
			return err
		}
		logger.Debug("Wrote metadata", "path", path)
	}
	logger.Info("Issued record")
	return nil
}

// sidecarName maps a record identifier to a file name. Identifiers
// such as "CERT-1/7" contain path separators.
func sidecarName(id string) string {
	b := []byte(id)
	for i, c := range b {
		switch c {
		case '/', '\\', ':':
			b[i] = '_'
		}
	}
	return string(b)
}
