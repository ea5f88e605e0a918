// Package config loads artitracker settings.
//
// Settings are layered, later sources overriding earlier ones:
//
//  1. built-in defaults
//  2. the TOML file ($XDG_CONFIG_HOME/artitracker/config.toml or --config)
//  3. a .env file in the working directory
//  4. ARTITRACKER_* environment variables
//
// Command-line flags are applied on top by the CLI.
package config

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	aterrors "github.com/syslex/artitracker/pkg/errors"
	"github.com/syslex/artitracker/pkg/report"
	"github.com/syslex/artitracker/pkg/store"
)

// EnvPrefix prefixes every environment variable read by [Load].
const EnvPrefix = "ARTITRACKER_"

// Config holds all settings.
type Config struct {
	// URL is the tracking endpoint reports are published to.
	URL string `toml:"url"`
	// APIKey authenticates against URL.
	APIKey string `toml:"api_key"`
	// Format is the default output format of the report command.
	Format string `toml:"format"`

	Store  StoreConfig  `toml:"store"`
	Server ServerConfig `toml:"server"`

	// Path is the file the settings were read from, empty if none.
	Path string `toml:"-"`
}

// StoreConfig selects and configures the report history backend.
type StoreConfig struct {
	Backend  string         `toml:"backend"`
	Dir      string         `toml:"dir"`
	Redis    RedisConfig    `toml:"redis"`
	Mongo    MongoConfig    `toml:"mongo"`
	S3       S3Config       `toml:"s3"`
	Postgres PostgresConfig `toml:"postgres"`
}

type RedisConfig struct {
	Addr     string   `toml:"addr"`
	Password string   `toml:"password"`
	DB       int      `toml:"db"`
	Prefix   string   `toml:"prefix"`
	TTL      Duration `toml:"ttl"`
}

type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

type S3Config struct {
	Endpoint  string `toml:"endpoint"`
	Region    string `toml:"region"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	Bucket    string `toml:"bucket"`
	UseSSL    bool   `toml:"use_ssl"`
}

type PostgresConfig struct {
	DSN string `toml:"dsn"`
}

// ServerConfig configures the tracking server.
type ServerConfig struct {
	Addr      string   `toml:"addr"`
	APIKeys   []string `toml:"api_keys"`
	CacheSize int      `toml:"cache_size"`
}

// Duration is a time.Duration written as a string such as "72h".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Format: string(report.FormatJSON),
		Store: StoreConfig{
			Backend: store.BackendFile,
		},
		Server: ServerConfig{
			Addr:      ":8080",
			CacheSize: 1024,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/artitracker/config.toml, falling
// back to ~/.config.
func DefaultPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", aterrors.Wrap(aterrors.ErrCodeInvalidPath, err, "get home dir")
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "artitracker", "config.toml"), nil
}

// Load reads the settings. An explicit path must exist; when path is empty
// the default location is used if present.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	if err := cfg.readFile(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return aterrors.Wrap(aterrors.ErrCodeNotFound, err, "config file %s", path)
		}
		return aterrors.Wrap(aterrors.ErrCodeInvalidPath, err, "config file %s", path)
	}
	meta, err := toml.DecodeFile(path, c)
	if err != nil {
		return aterrors.Wrap(aterrors.ErrCodeInvalidInput, err, "%s: failed to parse TOML", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return aterrors.New(aterrors.ErrCodeInvalidInput, "%s: unknown setting %q", path, undecoded[0].String())
	}
	c.Path = path
	return nil
}

// loadDotEnv loads name into the process environment without overriding
// variables that are already set. A missing file is not an error.
func loadDotEnv(name string) error {
	if _, err := os.Stat(name); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(name); err != nil {
		return aterrors.Wrap(aterrors.ErrCodeInvalidInput, err, "load %s", name)
	}
	return nil
}

func env(name string) string {
	return strings.TrimSpace(os.Getenv(EnvPrefix + name))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (c *Config) applyEnv() {
	c.URL = firstNonEmpty(env("URL"), c.URL)
	c.APIKey = firstNonEmpty(env("API_KEY"), c.APIKey)
	c.Format = firstNonEmpty(env("FORMAT"), c.Format)

	s := &c.Store
	s.Backend = firstNonEmpty(env("STORE_BACKEND"), s.Backend)
	s.Dir = firstNonEmpty(env("STORE_DIR"), s.Dir)
	s.Redis.Addr = firstNonEmpty(env("REDIS_ADDR"), s.Redis.Addr)
	s.Redis.Password = firstNonEmpty(env("REDIS_PASSWORD"), s.Redis.Password)
	if v, err := strconv.Atoi(env("REDIS_DB")); err == nil {
		s.Redis.DB = v
	}
	s.Mongo.URI = firstNonEmpty(env("MONGO_URI"), s.Mongo.URI)
	s.Postgres.DSN = firstNonEmpty(env("POSTGRES_DSN"), s.Postgres.DSN)
	s.S3.Endpoint = firstNonEmpty(env("S3_ENDPOINT"), s.S3.Endpoint)
	s.S3.Region = firstNonEmpty(env("S3_REGION"), s.S3.Region)
	s.S3.AccessKey = firstNonEmpty(env("S3_ACCESS_KEY"), s.S3.AccessKey)
	s.S3.SecretKey = firstNonEmpty(env("S3_SECRET_KEY"), s.S3.SecretKey)
	s.S3.Bucket = firstNonEmpty(env("S3_BUCKET"), s.S3.Bucket)
	if v, err := strconv.ParseBool(env("S3_USE_SSL")); err == nil {
		s.S3.UseSSL = v
	}

	c.Server.Addr = firstNonEmpty(env("SERVER_ADDR"), c.Server.Addr)
	if keys := env("SERVER_API_KEYS"); keys != "" {
		c.Server.APIKeys = splitList(keys)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks enumerated settings and normalizes their spelling.
func (c *Config) Validate() error {
	f, err := report.ParseFormat(c.Format)
	if err != nil {
		return err
	}
	c.Format = string(f)

	b, err := store.ParseBackend(c.Store.Backend)
	if err != nil {
		return err
	}
	c.Store.Backend = b

	if c.URL != "" {
		if err := aterrors.ValidateURL(c.URL); err != nil {
			return err
		}
	}
	if c.Server.CacheSize < 0 {
		return aterrors.New(aterrors.ErrCodeInvalidInput, "server.cache_size must not be negative")
	}
	return nil
}

// Redacted returns a copy with secrets masked, for display.
func (c *Config) Redacted() *Config {
	out := *c
	out.APIKey = mask(c.APIKey)
	out.Store.Redis.Password = mask(c.Store.Redis.Password)
	out.Store.S3.SecretKey = mask(c.Store.S3.SecretKey)
	out.Store.Mongo.URI = maskURL(c.Store.Mongo.URI)
	out.Store.Postgres.DSN = maskURL(c.Store.Postgres.DSN)
	if len(c.Server.APIKeys) > 0 {
		out.Server.APIKeys = make([]string, len(c.Server.APIKeys))
		for i, k := range c.Server.APIKeys {
			out.Server.APIKeys[i] = mask(k)
		}
	}
	return &out
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}

// maskURL hides the password of a user:password@host connection string.
func maskURL(s string) string {
	scheme, rest, ok := strings.Cut(s, "://")
	if !ok {
		return s
	}
	creds, host, ok := strings.Cut(rest, "@")
	if !ok {
		return s
	}
	user, _, hasPass := strings.Cut(creds, ":")
	if !hasPass {
		return s
	}
	return scheme + "://" + user + ":********@" + host
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
