// Package config loads faultdrill settings from a YAML file, an optional
// .env file and FAULTDRILL_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/faultdrill/internal/llm"
	"github.com/abhisek/faultdrill/internal/store"
)

// Config is the top-level configuration.
type Config struct {
	Storage   StorageConfig   `yaml:"storage"`
	Scenarios ScenariosConfig `yaml:"scenarios"`
	Logging   LoggingConfig   `yaml:"logging"`
	HTTP      HTTPConfig      `yaml:"http"`
	Broker    BrokerConfig    `yaml:"broker"`
	Feedback  FeedbackConfig  `yaml:"feedback"`
	LLM       LLMConfig       `yaml:"llm"`
}

// StorageConfig selects the history backend.
type StorageConfig struct {
	Driver   string `yaml:"driver"`   // sqlite, postgres, mongo, memory
	Path     string `yaml:"path"`     // SQLite file; empty uses the data dir
	DSN      string `yaml:"dsn"`      // postgres or mongo connection string
	Database string `yaml:"database"` // mongo database name
}

// ScenariosConfig points at an alternative scenario pool.
type ScenariosConfig struct {
	Path string `yaml:"path"` // empty uses the embedded pool
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // used by the TUI; empty uses the state dir
}

// HTTPConfig configures `faultdrill serve`.
type HTTPConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
	// SessionTTL is how long finished sessions stay readable.
	SessionTTL time.Duration `yaml:"session_ttl"`
}

// BrokerConfig configures event publication. An empty URL disables it.
type BrokerConfig struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

// FeedbackConfig toggles terminal cues.
type FeedbackConfig struct {
	Bell bool `yaml:"bell"`
}

// LLMConfig overrides the provider settings read from the environment.
type LLMConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Driver:   string(store.DriverSQLite),
			Database: "faultdrill",
		},
		Logging: LoggingConfig{Level: "info"},
		HTTP: HTTPConfig{
			Addr:        ":8080",
			CORSOrigins: []string{"*"},
			SessionTTL:  10 * time.Minute,
		},
		Broker: BrokerConfig{Exchange: "faultdrill.events"},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/faultdrill/config.yaml, falling back
// to ~/.config.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get home dir: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "faultdrill", "config.yaml"), nil
}

// Load reads the config file at path (empty resolves DefaultPath). A missing
// file yields the defaults. The .env file in the working directory and
// FAULTDRILL_* variables are applied on top.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	// godotenv never overrides variables that are already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("FAULTDRILL_STORAGE_DRIVER"); v != "" {
		c.Storage.Driver = v
	}
	if v := os.Getenv("FAULTDRILL_DB"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("FAULTDRILL_STORAGE_DSN"); v != "" {
		c.Storage.DSN = v
	}
	if v := os.Getenv("FAULTDRILL_STORAGE_DATABASE"); v != "" {
		c.Storage.Database = v
	}
	if v := os.Getenv("FAULTDRILL_SCENARIOS"); v != "" {
		c.Scenarios.Path = v
	}
	if v := os.Getenv("FAULTDRILL_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("FAULTDRILL_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
	if v := os.Getenv("FAULTDRILL_HTTP_ADDR"); v != "" {
		c.HTTP.Addr = v
	}
	if v := os.Getenv("FAULTDRILL_CORS_ORIGINS"); v != "" {
		c.HTTP.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("FAULTDRILL_SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.HTTP.SessionTTL = d
		}
	}
	if v := os.Getenv("FAULTDRILL_BROKER_URL"); v != "" {
		c.Broker.URL = v
	}
	if v := os.Getenv("FAULTDRILL_BROKER_EXCHANGE"); v != "" {
		c.Broker.Exchange = v
	}
	if v := os.Getenv("FAULTDRILL_BELL"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Feedback.Bell = b
		}
	}
	if v := os.Getenv("FAULTDRILL_LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
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

// Validate checks enumerated values.
func (c *Config) Validate() error {
	var errs []error
	d, err := store.ParseDriver(c.Storage.Driver)
	if err != nil {
		errs = append(errs, err)
	}
	if (d == store.DriverPostgres || d == store.DriverMongo) && c.Storage.DSN == "" {
		errs = append(errs, fmt.Errorf("storage.dsn is required for the %s driver", d))
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	if c.HTTP.Addr == "" {
		errs = append(errs, errors.New("http.addr must not be empty"))
	}
	if c.HTTP.SessionTTL < 0 {
		errs = append(errs, errors.New("http.session_ttl must not be negative"))
	}
	return errors.Join(errs...)
}

// StoreOptions converts the storage section into store.Options.
func (c *Config) StoreOptions() (store.Options, error) {
	d, err := store.ParseDriver(c.Storage.Driver)
	if err != nil {
		return store.Options{}, err
	}
	return store.Options{
		Driver:   d,
		Path:     c.Storage.Path,
		DSN:      c.Storage.DSN,
		Database: c.Storage.Database,
	}, nil
}

// LLMSettings resolves the coach provider. The llm section names the
// provider and model; FAULTDRILL_LLM_* variables override it. With neither
// set, standard API key variables are checked. ok is false when nothing
// usable is configured.
func (c *Config) LLMSettings() (llm.Config, bool) {
	cfg, ok := llm.ConfigFromEnv()
	if !ok && c.LLM.Provider != "" {
		cfg, ok = llm.ForProvider(c.LLM.Provider), true
	}
	if !ok {
		cfg, ok = llm.DiscoverConfig()
	}
	if !ok {
		return llm.Config{}, false
	}
	if c.LLM.Model != "" && os.Getenv("FAULTDRILL_LLM_MODEL") == "" {
		cfg.Model = c.LLM.Model
	}
	return cfg, cfg.Validate() == nil
}
