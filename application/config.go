package application

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/klever-hub/kleverblockchain-certificates/canonical"
	"github.com/klever-hub/kleverblockchain-certificates/crypto/hasher"
)

// Ledger kinds.
const (
	LocalLedger = "local"
	HTTPLedger  = "http"
)

// Environment variables overriding configured values.
const (
	EnvDatabasePath = "CERTREE_DATABASE_PATH"
	EnvLedgerURL    = "CERTREE_LEDGER_URL"
	EnvVerifyURL    = "CERTREE_VERIFY_URL"
)

// AppConfig provides an abstraction of the
// underlying encoding format for the configs.
type AppConfig interface {
	Load(file, encoding string) error
	Save() error
	GetPath() string
}

// A LedgerConfig selects where record roots are anchored: the local
// database ("local") or a remote anchor service ("http").
type LedgerConfig struct {
	Kind       string `toml:"kind" yaml:"kind"`
	URL        string `toml:"url,omitempty" yaml:"url,omitempty"`
	MaxRetries uint64 `toml:"max_retries,omitempty" yaml:"max_retries,omitempty"`
}

// A ServerConfig contains the verification server settings.
type ServerConfig struct {
	Address string `toml:"address" yaml:"address"`
	// ServeAnchors exposes the local ledger through PUT/GET /roots/{id}.
	ServeAnchors bool `toml:"serve_anchors,omitempty" yaml:"serve_anchors,omitempty"`
}

// Config is the configuration of a certree installation.
type Config struct {
	Path     string `toml:"-" yaml:"-"`
	Encoding string `toml:"-" yaml:"-"`

	Logger *LoggerConfig `toml:"logger" yaml:"logger"`
	// DatabasePath is the leveldb directory holding records and,
	// for a local ledger, anchored roots.
	DatabasePath string `toml:"database_path" yaml:"database_path"`
	// Hasher is the ID of the tree hasher used to seal new records.
	Hasher string `toml:"hasher" yaml:"hasher"`
	// Workers bounds the number of records sealed concurrently.
	Workers int `toml:"workers,omitempty" yaml:"workers,omitempty"`
	// OutputDir receives one metadata sidecar per issued record.
	// Empty disables sidecars.
	OutputDir string `toml:"output_dir,omitempty" yaml:"output_dir,omitempty"`
	// VerifyURL is the public verification page embedded in documents.
	VerifyURL string `toml:"verify_url,omitempty" yaml:"verify_url,omitempty"`
	// Schema lists the certificate fields in leaf order. Empty means
	// the built-in certificate schema.
	Schema []string `toml:"schema,omitempty" yaml:"schema,omitempty"`
	// Defaults are course-wide values for fields missing from the input.
	Defaults map[string]string `toml:"defaults,omitempty" yaml:"defaults,omitempty"`

	Ledger *LedgerConfig `toml:"ledger" yaml:"ledger"`
	Server *ServerConfig `toml:"server" yaml:"server"`

	loader ConfigLoader
}

var _ AppConfig = (*Config)(nil)

// NewConfig returns the default configuration to be saved at file,
// with all relative paths next to it.
func NewConfig(file, encoding string) *Config {
	return &Config{
		Path:     file,
		Encoding: encoding,
		Logger: &LoggerConfig{
			Environment: "development",
		},
		DatabasePath: "certree.db",
		Hasher:       hasher.DefaultHasherID,
		Workers:      4,
		OutputDir:    "certificates",
		Ledger: &LedgerConfig{
			Kind: LocalLedger,
		},
		Server: &ServerConfig{
			Address: "127.0.0.1:8080",
		},
		loader: newConfigLoader(encoding),
	}
}

// LoadConfig reads the configuration stored at file in the given
// encoding.
func LoadConfig(file, encoding string) (*Config, error) {
	conf := new(Config)
	if err := conf.Load(file, encoding); err != nil {
		return nil, err
	}
	return conf, nil
}

// Load decodes the configuration stored at file, applies environment
// overrides, resolves relative paths against the directory of file
// and validates the result.
func (conf *Config) Load(file, encoding string) error {
	conf.Path = file
	conf.Encoding = encoding
	conf.loader = newConfigLoader(encoding)
	if err := conf.loader.Decode(conf); err != nil {
		return err
	}
	conf.applyEnvOverrides()
	if conf.Logger == nil {
		conf.Logger = &LoggerConfig{Environment: "production"}
	}
	if conf.Ledger == nil {
		conf.Ledger = &LedgerConfig{Kind: LocalLedger}
	}
	if conf.Server == nil {
		conf.Server = &ServerConfig{}
	}
	if conf.Hasher == "" {
		conf.Hasher = hasher.DefaultHasherID
	}
	conf.DatabasePath = resolvePath(conf.DatabasePath, file)
	conf.OutputDir = resolvePath(conf.OutputDir, file)
	conf.Logger.Path = resolvePath(conf.Logger.Path, file)
	return conf.Validate()
}

// Save writes the configuration to its path. It never overwrites an
// existing file.
func (conf *Config) Save() error {
	if conf.loader == nil {
		conf.loader = newConfigLoader(conf.Encoding)
	}
	return conf.loader.Encode(conf)
}

// GetPath returns the path of the configuration file.
func (conf *Config) GetPath() string {
	return conf.Path
}

// Validate checks that the configuration can run.
func (conf *Config) Validate() error {
	if conf.DatabasePath == "" {
		return fmt.Errorf("[application] database_path must be set")
	}
	if _, err := hasher.Hasher(conf.Hasher); err != nil {
		return fmt.Errorf("[application] %v (available: %s)", err, strings.Join(hasher.Registered(), ", "))
	}
	if conf.Workers < 0 {
		return fmt.Errorf("[application] workers must not be negative (got %d)", conf.Workers)
	}
	switch conf.Ledger.Kind {
	case LocalLedger, "":
	case HTTPLedger:
		if conf.Ledger.URL == "" {
			return fmt.Errorf("[application] ledger.url must be set for an http ledger")
		}
	default:
		return fmt.Errorf("[application] Unknown ledger kind %q", conf.Ledger.Kind)
	}
	schema, err := conf.LoadSchema()
	if err != nil {
		return err
	}
	for name := range conf.Defaults {
		if !schema.Has(name) {
			return fmt.Errorf("[application] Default for unknown field %q", name)
		}
	}
	return nil
}

// LoadSchema returns the configured certificate schema.
func (conf *Config) LoadSchema() (*canonical.Schema, error) {
	if len(conf.Schema) == 0 {
		return canonical.CertificateSchema, nil
	}
	return canonical.NewSchema(conf.Schema...)
}

func (conf *Config) applyEnvOverrides() {
	if v := os.Getenv(EnvDatabasePath); v != "" {
		conf.DatabasePath = v
	}
	if v := os.Getenv(EnvVerifyURL); v != "" {
		conf.VerifyURL = v
	}
	if v := os.Getenv(EnvLedgerURL); v != "" {
		if conf.Ledger == nil {
			conf.Ledger = new(LedgerConfig)
		}
		conf.Ledger.Kind = HTTPLedger
		conf.Ledger.URL = v
	}
}

// resolvePath returns file unchanged if it is empty or absolute, and
// relative to the directory of other otherwise.
func resolvePath(file, other string) string {
	if file == "" || filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(filepath.Dir(other), file)
}
