package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	configName      = "config"
	configType      = "toml"
	configDirName   = ".claude-usage"
	configFileName  = "config.toml"
	configFileMode  = 0o600
	configDirMode   = 0o700
	tempFilePattern = ".config-*.toml.tmp"

	keyBaseURL         = "api.base_url"
	keyUserAgent       = "api.user_agent"
	keyTimeout         = "api.timeout"
	keyRefreshInterval = "refresh.interval"
	keySecretsPath     = "secrets.path"

	defaultBaseURL         = "https://claude.ai/api"
	defaultUserAgent       = "Claude Usage Tracker/1.0"
	defaultTimeout         = 10 * time.Second
	defaultRefreshInterval = 60 * time.Second
)

var ErrUnknownKey = errors.New("unknown config key")

var mu sync.Mutex

// Config holds the tracker settings read from ~/.claude-usage/config.toml.
// A missing file yields the defaults; a malformed one is an error.
type Config struct {
	BaseURL         string
	UserAgent       string
	Timeout         time.Duration
	RefreshInterval time.Duration
	SecretsPath     string

	path string
}

func Load(cfg *viper.Viper) (*Config, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, configDirName)

	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(configDir)
	cfg.SetDefault(keyBaseURL, defaultBaseURL)
	cfg.SetDefault(keyUserAgent, defaultUserAgent)
	cfg.SetDefault(keyTimeout, defaultTimeout.String())
	cfg.SetDefault(keyRefreshInterval, defaultRefreshInterval.String())
	cfg.SetDefault(keySecretsPath, filepath.Join(configDir, "secrets"))

	err = cfg.ReadInConfig()
	if err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	timeout := cfg.GetDuration(keyTimeout)
	if timeout <= 0 {
		return nil, fmt.Errorf("invalid %s: %q", keyTimeout, cfg.GetString(keyTimeout))
	}
	interval := cfg.GetDuration(keyRefreshInterval)
	if interval <= 0 {
		return nil, fmt.Errorf("invalid %s: %q", keyRefreshInterval, cfg.GetString(keyRefreshInterval))
	}

	return &Config{
		BaseURL:         cfg.GetString(keyBaseURL),
		UserAgent:       cfg.GetString(keyUserAgent),
		Timeout:         timeout,
		RefreshInterval: interval,
		SecretsPath:     cfg.GetString(keySecretsPath),
		path:            filepath.Join(configDir, configFileName),
	}, nil
}

func (c *Config) Path() string {
	return c.path
}

// Get returns the string form of one settable key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case keyBaseURL:
		return c.BaseURL, nil
	case keyUserAgent:
		return c.UserAgent, nil
	case keyTimeout:
		return c.Timeout.String(), nil
	case keyRefreshInterval:
		return c.RefreshInterval.String(), nil
	case keySecretsPath:
		return c.SecretsPath, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
}

// Set validates and applies one key in memory; Save persists the result.
func (c *Config) Set(key string, value string) error {
	switch key {
	case keyBaseURL:
		c.BaseURL = value
	case keyUserAgent:
		c.UserAgent = value
	case keyTimeout:
		parsed, err := time.ParseDuration(value)
		if err != nil || parsed <= 0 {
			return fmt.Errorf("invalid %s: %q", keyTimeout, value)
		}
		c.Timeout = parsed
	case keyRefreshInterval:
		parsed, err := time.ParseDuration(value)
		if err != nil || parsed <= 0 {
			return fmt.Errorf("invalid %s: %q", keyRefreshInterval, value)
		}
		c.RefreshInterval = parsed
	case keySecretsPath:
		c.SecretsPath = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	return nil
}

// Keys lists the settable keys in display order.
func Keys() []string {
	return []string{keyBaseURL, keyUserAgent, keyTimeout, keyRefreshInterval, keySecretsPath}
}

type fileSchema struct {
	API struct {
		BaseURL   string `toml:"base_url"`
		UserAgent string `toml:"user_agent"`
		Timeout   string `toml:"timeout"`
	} `toml:"api"`
	Refresh struct {
		Interval string `toml:"interval"`
	} `toml:"refresh"`
	Secrets struct {
		Path string `toml:"path"`
	} `toml:"secrets"`
}

// Save writes the full config atomically: temp file in the target
// directory, then rename.
func (c *Config) Save() error {
	mu.Lock()
	defer mu.Unlock()

	var schema fileSchema
	schema.API.BaseURL = c.BaseURL
	schema.API.UserAgent = c.UserAgent
	schema.API.Timeout = c.Timeout.String()
	schema.Refresh.Interval = c.RefreshInterval.String()
	schema.Secrets.Path = c.SecretsPath

	encoded, err := toml.Marshal(schema)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, configDirMode); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp config file: %w", err)
	}
	tempPath := tempFile.Name()

	if _, err := tempFile.Write(encoded); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("write temp config file: %w", err)
	}
	if err := tempFile.Chmod(configFileMode); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("set config file mode: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("close temp config file: %w", err)
	}

	if err := os.Rename(tempPath, c.path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("replace config file: %w", err)
	}

	return nil
}
