// Package config loads the service configuration from a YAML (or JSON) file
// with environment overrides.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/lousa/pkg/relay"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "lousa.yaml"

// Config is the full service configuration.
type Config struct {
	Addr     string `yaml:"addr" json:"addr"`
	LogLevel string `yaml:"log_level" json:"log_level"`

	// SettingsDir is used by the file settings store when Redis is not configured.
	SettingsDir string      `yaml:"settings_dir" json:"settings_dir"`
	Redis       RedisConfig `yaml:"redis" json:"redis"`

	AuditDB    string `yaml:"audit_db" json:"audit_db"`
	ArchiveDir string `yaml:"archive_dir" json:"archive_dir"`

	HistoryLimit int `yaml:"history_limit" json:"history_limit"`

	// CameraURLs are the snapshot URLs a capture request may open.
	CameraURLs []string `yaml:"camera_urls" json:"camera_urls"`

	UpstreamTimeout time.Duration             `yaml:"upstream_timeout" json:"upstream_timeout"`
	Providers       map[string]ProviderConfig `yaml:"providers" json:"providers"`
}

// RedisConfig enables the Redis settings store when Addr is set.
type RedisConfig struct {
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db"`
	Prefix   string `yaml:"prefix" json:"prefix"`
}

// ProviderConfig overrides one upstream. Empty fields keep the defaults.
type ProviderConfig struct {
	URL    string `yaml:"url" json:"url"`
	KeyEnv string `yaml:"key_env" json:"key_env"`
	Model  string `yaml:"model" json:"model"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:            ":8787",
		LogLevel:        "info",
		SettingsDir:     ".lousa",
		Redis:           RedisConfig{Prefix: "lousa:"},
		AuditDB:         filepath.Join(".lousa", "audit.db"),
		ArchiveDir:      filepath.Join(".lousa", "solutions"),
		HistoryLimit:    50,
		UpstreamTimeout: relay.DefaultTimeout,
	}
}

// Load reads path over the defaults and then applies environment overrides.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if strings.ToLower(filepath.Ext(path)) == ".json" {
			if err := json.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnv(os.Getenv)
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("LOUSA_ADDR"); v != "" {
		c.Addr = v
	} else if v := getenv("PORT"); v != "" {
		c.Addr = ":" + v
	}
	if v := getenv("LOUSA_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := getenv("LOUSA_REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := getenv("LOUSA_REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := getenv("LOUSA_SETTINGS_DIR"); v != "" {
		c.SettingsDir = v
	}
	if v := getenv("LOUSA_AUDIT_DB"); v != "" {
		c.AuditDB = v
	}
	if v := getenv("LOUSA_ARCHIVE_DIR"); v != "" {
		c.ArchiveDir = v
	}
	if v := getenv("LOUSA_CAMERA_URLS"); v != "" {
		c.CameraURLs = nil
		for _, u := range strings.Split(v, ",") {
			if u = strings.TrimSpace(u); u != "" {
				c.CameraURLs = append(c.CameraURLs, u)
			}
		}
	}
	if v := getenv("LOUSA_HISTORY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.HistoryLimit = n
		}
	}
}

// Level parses LogLevel, falling back to info.
func (c Config) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// Upstreams merges the provider overrides into relay.DefaultUpstreams.
func (c Config) Upstreams() []relay.Upstream {
	defaults := relay.DefaultUpstreams()
	out := make([]relay.Upstream, 0, len(defaults))
	for _, name := range []string{relay.ProviderOpenAI, relay.ProviderOpenRouter} {
		u := defaults[name]
		if p, ok := c.Providers[name]; ok {
			if p.URL != "" {
				u.URL = p.URL
			}
			if p.KeyEnv != "" {
				u.KeyEnv = p.KeyEnv
			}
			if p.Model != "" {
				u.DefaultModel = p.Model
			}
		}
		out = append(out, u)
	}
	return out
}
