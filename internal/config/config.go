package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/crewdeck/crewctl/internal/errors"
)

// Defaults applied when the config file or individual fields are absent.
const (
	DefaultAPIURL         = "http://localhost:8000"
	DefaultRequestTimeout = 30 * time.Second
	DefaultFreshFor       = time.Minute
	DefaultPollInterval   = 30 * time.Second
)

// Config holds client-side configuration for crewctl.
type Config struct {
	// APIURL is the base address of the Crewdeck API
	APIURL string `yaml:"api_url"`

	// RequestTimeout bounds every individual remote call
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// FreshFor is the cache freshness window before an entry goes stale
	FreshFor time.Duration `yaml:"fresh_for"`

	// PollInterval is the fixed interval used by the live activity feed
	PollInterval time.Duration `yaml:"poll_interval"`

	// RedirectAfter is where the browser lands after an OAuth grant completes
	RedirectAfter string `yaml:"redirect_after"`

	// TokenPassphrase, when set, seals the persisted session record at rest.
	// Usually supplied via CREWDECK_TOKEN_PASSPHRASE rather than the file.
	TokenPassphrase string `yaml:"token_passphrase,omitempty"`

	// LogLevel controls the structured logger (debug, info, warn, error)
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		APIURL:         DefaultAPIURL,
		RequestTimeout: DefaultRequestTimeout,
		FreshFor:       DefaultFreshFor,
		PollInterval:   DefaultPollInterval,
		LogLevel:       "info",
	}
}

// Dir returns the crewctl configuration directory (~/.crewctl).
func Dir() string {
	if dir := os.Getenv("CREWCTL_HOME"); dir != "" {
		return dir
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".crewctl"
	}
	return filepath.Join(homeDir, ".crewctl")
}

// Path returns the location of the config file.
func Path() string {
	if path := os.Getenv("CREWCTL_CONFIG"); path != "" {
		return path
	}
	return filepath.Join(Dir(), "config.yaml")
}

// SessionPath returns the fixed location of the persisted session record.
func SessionPath() string {
	return filepath.Join(Dir(), "session.json")
}

// Load reads the config file, fills in defaults, and applies environment
// overrides. A missing file is not an error; a malformed one is.
func Load() (Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads configuration from an explicit path.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.NewConfigInvalidError(path, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, errors.Wrap(errors.ErrCodeFileReadFailed, "read config file", err)
	}

	applyDefaults(&cfg)
	applyEnv(&cfg)
	return cfg, nil
}

// Save writes the configuration to its default path.
func (c Config) Save() error {
	if err := os.MkdirAll(Dir(), 0o700); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "create config dir", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "marshal config", err)
	}

	if err := os.WriteFile(Path(), data, 0o600); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "write config file", err)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.FreshFor <= 0 {
		cfg.FreshFor = DefaultFreshFor
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.RedirectAfter == "" {
		cfg.RedirectAfter = cfg.APIURL + "/integrations"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

func applyEnv(cfg *Config) {
	if url := os.Getenv("CREWDECK_API_URL"); url != "" {
		cfg.APIURL = url
	}
	if passphrase := os.Getenv("CREWDECK_TOKEN_PASSPHRASE"); passphrase != "" {
		cfg.TokenPassphrase = passphrase
	}
	if level := os.Getenv("CREWCTL_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
}
