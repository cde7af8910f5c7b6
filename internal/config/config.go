package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultProvider    = "gemini"
	DefaultModel       = "gemini-2.5-flash"
	DefaultDBPath      = "aulaplan.db"
	DefaultAddr        = ":8080"
	DefaultLanguage    = "Castellano"
	DefaultLogMode     = "dev"
	DefaultMaxUploadMB = 20
	DefaultTimeoutSecs = 180
)

type Config struct {
	AI struct {
		Provider       string `yaml:"provider"`
		Model          string `yaml:"model"`
		APIKey         string `yaml:"api_key"`
		BaseURL        string `yaml:"base_url"` // openai-compatible endpoint
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"ai"`
	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`
	Server struct {
		Addr        string `yaml:"addr"`
		MaxUploadMB int    `yaml:"max_upload_mb"`
	} `yaml:"server"`
	Document struct {
		Language string `yaml:"language"`
	} `yaml:"document"`
	Log struct {
		Mode string `yaml:"mode"`
	} `yaml:"log"`
}

// Default returns a config with every field set to its default.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// LoadConfig reads .env, then the YAML file at path, then environment
// overrides. A missing file leaves the defaults in place.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	var cfg Config

	// 2. Load YAML config
	if path != "" {
		file, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(file, &cfg); err != nil {
				return nil, err
			}
		}
	}

	// 3. Override with Environment Variables if present
	overrides := []struct {
		env string
		dst *string
	}{
		{"AULAPLAN_API_KEY", &cfg.AI.APIKey},
		{"AULAPLAN_AI_PROVIDER", &cfg.AI.Provider},
		{"AULAPLAN_MODEL", &cfg.AI.Model},
		{"AULAPLAN_DB", &cfg.Storage.Path},
		{"AULAPLAN_ADDR", &cfg.Server.Addr},
		{"AULAPLAN_LANGUAGE", &cfg.Document.Language},
		{"AULAPLAN_LOG_MODE", &cfg.Log.Mode},
	}
	for _, o := range overrides {
		if v := strings.TrimSpace(os.Getenv(o.env)); v != "" {
			*o.dst = v
		}
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.AI.Provider == "" {
		c.AI.Provider = DefaultProvider
	}
	if c.AI.Model == "" {
		c.AI.Model = DefaultModel
	}
	if c.AI.TimeoutSeconds <= 0 {
		c.AI.TimeoutSeconds = DefaultTimeoutSecs
	}
	if c.Storage.Path == "" {
		c.Storage.Path = DefaultDBPath
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.MaxUploadMB <= 0 {
		c.Server.MaxUploadMB = DefaultMaxUploadMB
	}
	if c.Document.Language == "" {
		c.Document.Language = DefaultLanguage
	}
	if c.Log.Mode == "" {
		c.Log.Mode = DefaultLogMode
	}
}

// Timeout is the upper bound for one AI request.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.AI.TimeoutSeconds) * time.Second
}

// MaxUploadBytes is the largest curriculum PDF the server accepts.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) << 20
}
