// Package config loads application configuration from environment variables
// (prefix VASD) and an optional YAML file, environment taking precedence, and
// resolves the explicit path set the rest of the application is constructed
// with.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Cache   CacheConfig   `yaml:"cache" envconfig:"CACHE"`
	Fetch   FetchConfig   `yaml:"fetch" envconfig:"FETCH"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/vaschooldata.log"`
}

// CacheConfig contains the cache layer configuration. MaxAge governs settled
// historical years; RecentMaxAge is the shorter window for the most recent
// end year, which the agency may still revise.
type CacheConfig struct {
	Dir          string        `yaml:"dir" envconfig:"DIR"`
	MaxAge       time.Duration `yaml:"max_age" envconfig:"MAX_AGE" default:"720h"`
	RecentMaxAge time.Duration `yaml:"recent_max_age" envconfig:"RECENT_MAX_AGE" default:"168h"`
}

// FetchConfig contains the retrieval client configuration
type FetchConfig struct {
	Timeout        time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"60s"`
	Retries        int           `yaml:"retries" envconfig:"RETRIES" default:"3"`
	RequestsPerSec float64       `yaml:"requests_per_sec" envconfig:"REQUESTS_PER_SEC" default:"2"`
	Burst          int           `yaml:"burst" envconfig:"BURST" default:"4"`
	UserAgent      string        `yaml:"user_agent" envconfig:"USER_AGENT" default:"vaschooldata/1.0"`
}

// Load loads configuration from environment variables and an optional config
// file (vaschooldata.yml in the working directory, or $VASD_CONFIG_FILE).
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("VASD", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	configFile := os.Getenv("VASD_CONFIG_FILE")
	if configFile == "" {
		configFile = "vaschooldata.yml"
	}
	if _, err := os.Stat(configFile); err == nil {
		fileCfg, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileCfg, cfg)
	}

	if err := cfg.resolvePaths(); err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config (env takes precedence)
func mergeConfigs(fileCfg, envCfg Config) Config {
	if envCfg.Logging.Level == "" {
		envCfg.Logging.Level = fileCfg.Logging.Level
	}
	if envCfg.Logging.Output == "" {
		envCfg.Logging.Output = fileCfg.Logging.Output
	}
	if envCfg.Logging.FilePath == "" {
		envCfg.Logging.FilePath = fileCfg.Logging.FilePath
	}
	if envCfg.Cache.Dir == "" {
		envCfg.Cache.Dir = fileCfg.Cache.Dir
	}
	if envCfg.Cache.MaxAge == 0 {
		envCfg.Cache.MaxAge = fileCfg.Cache.MaxAge
	}
	if envCfg.Cache.RecentMaxAge == 0 {
		envCfg.Cache.RecentMaxAge = fileCfg.Cache.RecentMaxAge
	}
	if envCfg.Fetch.Timeout == 0 {
		envCfg.Fetch.Timeout = fileCfg.Fetch.Timeout
	}
	if envCfg.Fetch.Retries == 0 {
		envCfg.Fetch.Retries = fileCfg.Fetch.Retries
	}
	if envCfg.Fetch.RequestsPerSec == 0 {
		envCfg.Fetch.RequestsPerSec = fileCfg.Fetch.RequestsPerSec
	}
	if envCfg.Fetch.Burst == 0 {
		envCfg.Fetch.Burst = fileCfg.Fetch.Burst
	}
	if envCfg.Fetch.UserAgent == "" {
		envCfg.Fetch.UserAgent = fileCfg.Fetch.UserAgent
	}
	return envCfg
}

// resolvePaths fills in the default cache directory when none is configured.
// The cache root stays an explicit value threaded into constructors; nothing
// reads it from package-level state.
func (c *Config) resolvePaths() error {
	if c.Cache.Dir != "" {
		return nil
	}
	paths, err := DefaultPaths()
	if err != nil {
		return err
	}
	c.Cache.Dir = paths.CacheDir
	return nil
}

// validate checks configuration values
func (c *Config) validate() error {
	switch c.Logging.Output {
	case "", "console", "file", "both":
	default:
		return fmt.Errorf("invalid logging output %q (want console, file or both)", c.Logging.Output)
	}
	if c.Cache.MaxAge < 0 {
		return fmt.Errorf("cache max_age must not be negative, got %s", c.Cache.MaxAge)
	}
	if c.Fetch.Retries < 0 {
		return fmt.Errorf("fetch retries must not be negative, got %d", c.Fetch.Retries)
	}
	if c.Fetch.RequestsPerSec <= 0 {
		return fmt.Errorf("fetch requests_per_sec must be positive, got %f", c.Fetch.RequestsPerSec)
	}
	return nil
}
