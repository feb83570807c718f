// Package config loads the application configuration from YAML. Secrets
// (API keys, connection strings) are referenced by environment variable
// name and never stored in the file itself.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// OpenAIConfig configures an OpenAI-compatible endpoint.
type OpenAIConfig struct {
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
}

// EmbedderConfig selects and configures the embedder implementation.
type EmbedderConfig struct {
	Type      string        `yaml:"type"` // "openai" or "local"
	Dimension int           `yaml:"dimension"`
	OpenAI    *OpenAIConfig `yaml:"openai,omitempty"`
}

// SummarizerConfig selects and configures the summarizer.
type SummarizerConfig struct {
	Type   string        `yaml:"type"` // "openai" or "none"
	OpenAI *OpenAIConfig `yaml:"openai,omitempty"`
}

// MongoConfig contains connection details for the Atlas-backed store.
type MongoConfig struct {
	URIEnv           string `yaml:"uri_env"`
	Database         string `yaml:"database"`
	Collection       string `yaml:"collection"`
	IndexName        string `yaml:"index_name"`
	PollIntervalSecs int    `yaml:"poll_interval_secs"`
	MaxPollAttempts  int    `yaml:"max_poll_attempts"`
}

// StorageConfig selects and configures the project store.
type StorageConfig struct {
	Type  string       `yaml:"type"` // "mongo" or "memory"
	Mongo *MongoConfig `yaml:"mongo,omitempty"`
}

// SearchConfig tunes similarity queries.
type SearchConfig struct {
	DefaultK            int `yaml:"default_k"`
	CandidateMultiplier int `yaml:"candidate_multiplier"`
}

// ScraperConfig tunes the devpost fetcher.
type ScraperConfig struct {
	TimeoutSecs int `yaml:"timeout_secs"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// AppConfig is the root configuration structure.
type AppConfig struct {
	Embedder   EmbedderConfig   `yaml:"embedder"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
	Storage    StorageConfig    `yaml:"storage"`
	Search     SearchConfig     `yaml:"search"`
	Scraper    ScraperConfig    `yaml:"scraper"`
	Server     ServerConfig     `yaml:"server"`
}

// Load reads the config from path. A missing file yields the defaults:
// local embedder and in-memory storage, suitable for keyless development.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := &AppConfig{}
			applyDefaults(cfg)
			return cfg, nil
		}
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "local"
	}
	if cfg.Embedder.Dimension == 0 {
		if cfg.Embedder.Type == "openai" {
			cfg.Embedder.Dimension = 1536
		} else {
			cfg.Embedder.Dimension = 64
		}
	}
	if cfg.Embedder.Type == "openai" {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIConfig{}
		}
		applyOpenAIDefaults(cfg.Embedder.OpenAI, "text-embedding-ada-002")
	}
	if cfg.Summarizer.Type == "" {
		cfg.Summarizer.Type = "none"
	}
	if cfg.Summarizer.Type == "openai" {
		if cfg.Summarizer.OpenAI == nil {
			cfg.Summarizer.OpenAI = &OpenAIConfig{}
		}
		applyOpenAIDefaults(cfg.Summarizer.OpenAI, "")
	}
	if cfg.Storage.Type == "" {
		cfg.Storage.Type = "memory"
	}
	if cfg.Storage.Type == "mongo" {
		if cfg.Storage.Mongo == nil {
			cfg.Storage.Mongo = &MongoConfig{}
		}
		m := cfg.Storage.Mongo
		if m.URIEnv == "" {
			m.URIEnv = "MONGODB_URI"
		}
		if m.Database == "" {
			m.Database = "hackmatch"
		}
		if m.Collection == "" {
			m.Collection = "projects"
		}
		if m.IndexName == "" {
			m.IndexName = "vector_index_projects"
		}
		if m.PollIntervalSecs == 0 {
			m.PollIntervalSecs = 5
		}
		if m.MaxPollAttempts == 0 {
			m.MaxPollAttempts = 60
		}
	}
	if cfg.Search.DefaultK == 0 {
		cfg.Search.DefaultK = 5
	}
	if cfg.Search.CandidateMultiplier == 0 {
		cfg.Search.CandidateMultiplier = 20
	}
	if cfg.Scraper.TimeoutSecs == 0 {
		cfg.Scraper.TimeoutSecs = 30
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
}

func applyOpenAIDefaults(c *OpenAIConfig, model string) {
	if c.APIKeyEnv == "" {
		c.APIKeyEnv = "OPENAI_API_KEY"
	}
	if c.Model == "" && model != "" {
		c.Model = model
	}
}
