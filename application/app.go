package application

import (
	"crypto/rand"

	"github.com/klever-hub/kleverblockchain-certificates/anchor"
	"github.com/klever-hub/kleverblockchain-certificates/canonical"
	"github.com/klever-hub/kleverblockchain-certificates/crypto/hasher"
	"github.com/klever-hub/kleverblockchain-certificates/storage/kv"
	"github.com/klever-hub/kleverblockchain-certificates/storage/kv/leveldbkv"
)

// An App bundles the services of one installation.
type App struct {
	Config *Config
	Logger *Logger
	DB     kv.DB
	// Ledger is the configured ledger; Anchors is the local one,
	// which the server can expose to other installations.
	Ledger   anchor.Ledger
	Anchors  *anchor.KVLedger
	Schema   *canonical.Schema
	Issuer   *Issuer
	Verifier *Verifier
}

// OpenApp opens the database and builds the services described by conf.
func OpenApp(conf *Config) (*App, error) {
	logger, err := NewLogger(conf.Logger)
	if err != nil {
		return nil, err
	}
	schema, err := conf.LoadSchema()
	if err != nil {
		return nil, err
	}
	h, err := hasher.Hasher(conf.Hasher)
	if err != nil {
		return nil, err
	}
	db, err := leveldbkv.OpenDB(conf.DatabasePath)
	if err != nil {
		return nil, err
	}
	return newApp(conf, logger, db, schema, h), nil
}

func newApp(conf *Config, logger *Logger, db kv.DB, schema *canonical.Schema, h hasher.TreeHasher) *App {
	local := anchor.NewKVLedger(db)
	var ledger anchor.Ledger = local
	if conf.Ledger.Kind == HTTPLedger {
		ledger = anchor.NewHTTPLedger(conf.Ledger.URL, nil, conf.Ledger.MaxRetries)
	}
	return &App{
		Config:  conf,
		Logger:  logger,
		DB:      db,
		Ledger:  ledger,
		Anchors: local,
		Schema:  schema,
		Issuer: NewIssuer(IssuerOptions{
			DB:        db,
			Ledger:    ledger,
			Hasher:    h,
			Schema:    schema,
			Rand:      rand.Reader,
			Workers:   conf.Workers,
			OutputDir: conf.OutputDir,
			VerifyURL: conf.VerifyURL,
			Logger:    logger.With("service", "issuer"),
		}),
		Verifier: NewVerifier(db, ledger, logger.With("service", "verifier")),
	}
}

// Close flushes the logger and closes the database.
func (a *App) Close() error {
	a.Logger.Sync()
	return a.DB.Close()
}
