package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variables that steer loading itself.
const (
	EnvPrefix     = "HEALTHDASH_"
	EnvConfigFile = EnvPrefix + "CONFIG"
	EnvDotenvFile = EnvPrefix + "ENV_FILE"

	defaultDotenvFile = ".env"
)

// Load builds a Config by layering defaults, an optional YAML file and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if HEALTHDASH_CONFIG is set
//  3. env (prefix HEALTHDASH_), after merging a .env file when one exists
//
// Variables already present in the process environment win over the .env file.
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	if err := loadDotenv(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	k := koanf.New(".")

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// listKeys are read from the environment as comma-separated lists.
var listKeys = map[string]bool{
	"cors_allowed_origins": true,
}

// envValue maps HEALTHDASH_API_BASE_URL to api_base_url. Keys stay flat so
// underscores line up with the koanf tags.
func envValue(key, value string) (string, interface{}) {
	key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(EnvPrefix))
	if !listKeys[key] {
		return key, value
	}
	items := []string{}
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return key, items
}

// Validate checks invariants the binaries rely on.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return fmt.Errorf("%w: api_base_url must not be empty", ErrInvalidConfig)
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: api_base_url must be an absolute http(s) URL, got %q", ErrInvalidConfig, c.APIBaseURL)
	}
	if c.DBMaxConns < 0 {
		return fmt.Errorf("%w: db_max_conns must not be negative", ErrInvalidConfig)
	}
	return nil
}

// loadDotenv merges the .env file into the process environment if present.
// A missing default file is not an error; a missing explicit one is.
func loadDotenv() error {
	path := os.Getenv(EnvDotenvFile)
	explicit := path != ""
	if !explicit {
		path = defaultDotenvFile
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}
