// Package config loads and validates the nabsearch configuration.
//
// Configuration is resolved in order of increasing priority:
//  1. Built-in defaults (Default)
//  2. YAML config file
//  3. Environment variables (NABSEARCH_*)
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	nberrors "github.com/tislab/nabsearch/internal/errors"
)

// Config is the complete nabsearch configuration.
type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	Embeddings EmbeddingsConfig `yaml:"embeddings"`
	Rerank     RerankConfig     `yaml:"rerank"`
	Search     SearchConfig     `yaml:"search"`
	LogLevel   string           `yaml:"log_level"`
}

// DatabaseConfig configures the knowledge-base connection.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// ConnectionString builds a postgres connection URL.
func (c DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

// ProviderConfig configures one embedding API provider.
type ProviderConfig struct {
	APIKey     string        `yaml:"api_key"`
	Model      string        `yaml:"model"`
	Dimensions int           `yaml:"dimensions"`
	BaseURL    string        `yaml:"base_url"`
	Timeout    time.Duration `yaml:"timeout"`
	CacheSize  int           `yaml:"cache_size"`
}

// EmbeddingsConfig holds the two embedding provider configurations.
// Document is tuned for prose/documentation, Code for source code.
type EmbeddingsConfig struct {
	Document ProviderConfig `yaml:"document"`
	Code     ProviderConfig `yaml:"code"`
}

// RerankConfig configures the cross-encoder rerank endpoint.
type RerankConfig struct {
	APIKey  string        `yaml:"api_key"`
	Model   string        `yaml:"model"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	// TopN is the default result count when callers pass topN <= 0.
	TopN int `yaml:"top_n"`
}

// SearchConfig configures the hybrid search pipeline.
type SearchConfig struct {
	// CandidateK is the per-branch candidate width in hybrid mode.
	CandidateK int `yaml:"candidate_k"`

	// RRFConstant is the RRF smoothing parameter k.
	RRFConstant int `yaml:"rrf_constant"`

	// VectorTimeout bounds the vector branch in hybrid mode.
	VectorTimeout time.Duration `yaml:"vector_timeout"`

	// DefaultTopK is the result count when callers do not specify one.
	DefaultTopK int `yaml:"default_top_k"`

	// MaxTopK caps the requested result count.
	MaxTopK int `yaml:"max_top_k"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     "5432",
			User:     "nabsearch",
			Database: "nabsearch",
			SSLMode:  "disable",
		},
		Embeddings: EmbeddingsConfig{
			Document: ProviderConfig{
				Model:      "jina-embeddings-v4",
				Dimensions: 1024,
				BaseURL:    "https://api.jina.ai/v1/embeddings",
				Timeout:    30 * time.Second,
				CacheSize:  1000,
			},
			Code: ProviderConfig{
				Model:      "voyage-code-3",
				Dimensions: 1024,
				BaseURL:    "https://api.voyageai.com/v1/embeddings",
				Timeout:    30 * time.Second,
				CacheSize:  1000,
			},
		},
		Rerank: RerankConfig{
			Model:   "jina-reranker-v2-base-multilingual",
			BaseURL: "https://api.jina.ai/v1/rerank",
			Timeout: 3 * time.Second,
			TopN:    10,
		},
		Search: SearchConfig{
			CandidateK:    50,
			RRFConstant:   60,
			VectorTimeout: 10 * time.Second,
			DefaultTopK:   10,
			MaxTopK:       100,
		},
		LogLevel: "info",
	}
}

// Load reads the config file at path, merged over defaults and under
// environment overrides. An empty path loads defaults + env only.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nberrors.Wrap(nberrors.ErrCodeConfigNotFound, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, nberrors.Wrap(nberrors.ErrCodeConfigInvalid, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies NABSEARCH_* environment variables.
func (c *Config) applyEnvOverrides() {
	setString(&c.Database.Host, "NABSEARCH_DB_HOST")
	setString(&c.Database.Port, "NABSEARCH_DB_PORT")
	setString(&c.Database.User, "NABSEARCH_DB_USER")
	setString(&c.Database.Password, "NABSEARCH_DB_PASSWORD")
	setString(&c.Database.Database, "NABSEARCH_DB_NAME")
	setString(&c.Database.SSLMode, "NABSEARCH_DB_SSLMODE")

	setString(&c.Embeddings.Document.APIKey, "NABSEARCH_JINA_API_KEY")
	setString(&c.Embeddings.Code.APIKey, "NABSEARCH_VOYAGE_API_KEY")
	setString(&c.Rerank.APIKey, "NABSEARCH_RERANK_API_KEY")

	setString(&c.LogLevel, "NABSEARCH_LOG_LEVEL")

	if v := os.Getenv("NABSEARCH_RRF_CONSTANT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Search.RRFConstant = n
		}
	}
	if v := os.Getenv("NABSEARCH_CANDIDATE_K"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Search.CandidateK = n
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks the configuration for impossible values.
func (c *Config) Validate() error {
	if c.Search.CandidateK < 1 {
		return nberrors.New(nberrors.ErrCodeConfigInvalid,
			fmt.Sprintf("search.candidate_k must be >= 1, got %d", c.Search.CandidateK), nil)
	}
	if c.Search.RRFConstant < 1 {
		return nberrors.New(nberrors.ErrCodeConfigInvalid,
			fmt.Sprintf("search.rrf_constant must be >= 1, got %d", c.Search.RRFConstant), nil)
	}
	if c.Search.VectorTimeout <= 0 {
		return nberrors.New(nberrors.ErrCodeConfigInvalid,
			"search.vector_timeout must be positive", nil)
	}
	if c.Search.DefaultTopK < 1 || c.Search.DefaultTopK > c.Search.MaxTopK {
		return nberrors.New(nberrors.ErrCodeConfigInvalid,
			fmt.Sprintf("search.default_top_k must be in [1, %d], got %d",
				c.Search.MaxTopK, c.Search.DefaultTopK), nil)
	}
	if c.Rerank.TopN < 1 {
		return nberrors.New(nberrors.ErrCodeConfigInvalid,
			fmt.Sprintf("rerank.top_n must be >= 1, got %d", c.Rerank.TopN), nil)
	}
	for name, p := range map[string]ProviderConfig{
		"embeddings.document": c.Embeddings.Document,
		"embeddings.code":     c.Embeddings.Code,
	} {
		if p.Dimensions < 1 {
			return nberrors.New(nberrors.ErrCodeConfigInvalid,
				fmt.Sprintf("%s.dimensions must be >= 1, got %d", name, p.Dimensions), nil)
		}
		if p.Timeout <= 0 {
			return nberrors.New(nberrors.ErrCodeConfigInvalid,
				fmt.Sprintf("%s.timeout must be positive", name), nil)
		}
	}
	return nil
}
