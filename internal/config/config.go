// Package config provides configuration loading for matchd.
package config

import (
	"fmt"
	"time"
)

// Config holds the complete matchd configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Logging    LoggingConfig    `koanf:"logging"`
	LLM        LLMConfig        `koanf:"llm"`
	Embeddings EmbeddingsConfig `koanf:"embeddings"`
	Qdrant     QdrantConfig     `koanf:"qdrant"`
	Scoring    ScoringConfig    `koanf:"scoring"`
	RecLog     RecLogConfig     `koanf:"reclog"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string   `koanf:"host"`
	Port            int      `koanf:"http_port"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
}

// LoggingConfig holds structured logging configuration.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// LLMConfig holds text-completion provider configuration.
type LLMConfig struct {
	// Provider selects the completion backend: "gemini", "openai" or
	// "disabled". A disabled provider fails every call so the pipeline
	// runs on its heuristic fallbacks.
	Provider string   `koanf:"provider"`
	Model    string   `koanf:"model"`
	APIKey   Secret   `koanf:"api_key"`
	BaseURL  string   `koanf:"base_url"`
	Timeout  Duration `koanf:"timeout"`
}

// EmbeddingsConfig holds embedding provider configuration.
type EmbeddingsConfig struct {
	// Provider selects the embedding backend: "gemini" or "openai"
	// (OpenAI-compatible, which covers TEI gateways).
	Provider  string `koanf:"provider"`
	Model     string `koanf:"model"`
	APIKey    Secret `koanf:"api_key"`
	BaseURL   string `koanf:"base_url"`
	Dimension int    `koanf:"dimension"`
}

// QdrantConfig holds vector index configuration.
type QdrantConfig struct {
	Host       string `koanf:"host"`
	Port       int    `koanf:"grpc_port"`
	UseTLS     bool   `koanf:"use_tls"`
	APIKey     Secret `koanf:"api_key"`
	Collection string `koanf:"collection"`
}

// ScoringConfig holds candidate scoring configuration.
type ScoringConfig struct {
	TopK            int     `koanf:"top_k"`
	RetrieveK       int     `koanf:"retrieve_k"`
	PersonaWeight   float64 `koanf:"persona_weight"`
	HeuristicWeight float64 `koanf:"heuristic_weight"`
}

// RecLogConfig holds best-effort recommendation log configuration.
type RecLogConfig struct {
	// DSN is a Postgres connection string. Empty disables the log.
	DSN Secret `koanf:"dsn"`
}

// NewDefaultConfig returns config with production-ready defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "localhost",
			Port:            9180,
			ShutdownTimeout: Duration(10 * time.Second),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		LLM: LLMConfig{
			Provider: "gemini",
			Model:    "gemini-2.5-flash",
			BaseURL:  "",
			Timeout:  Duration(30 * time.Second),
		},
		Embeddings: EmbeddingsConfig{
			Provider:  "gemini",
			Model:     "text-embedding-004",
			Dimension: 3072,
		},
		Qdrant: QdrantConfig{
			Host:       "localhost",
			Port:       6334,
			Collection: "lifestyle-to-vehicle",
		},
		Scoring: ScoringConfig{
			TopK:            3,
			RetrieveK:       20,
			PersonaWeight:   0.25,
			HeuristicWeight: 0.15,
		},
	}
}

// Validate checks config for errors.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging format must be 'json' or 'console', got %q", c.Logging.Format)
	}
	switch c.LLM.Provider {
	case "gemini", "openai", "disabled":
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	switch c.Embeddings.Provider {
	case "gemini", "openai":
	default:
		return fmt.Errorf("unknown embeddings provider %q", c.Embeddings.Provider)
	}
	if c.Qdrant.Collection == "" {
		return fmt.Errorf("qdrant collection is required")
	}
	if c.Scoring.TopK <= 0 {
		return fmt.Errorf("scoring top_k must be > 0, got %d", c.Scoring.TopK)
	}
	if c.Scoring.RetrieveK < c.Scoring.TopK {
		return fmt.Errorf("scoring retrieve_k (%d) must be >= top_k (%d)", c.Scoring.RetrieveK, c.Scoring.TopK)
	}
	if c.Scoring.PersonaWeight < 0 || c.Scoring.HeuristicWeight < 0 {
		return fmt.Errorf("scoring weights must be non-negative")
	}
	return nil
}

// applyDefaults fills zero-valued fields with defaults.
func applyDefaults(cfg *Config) {
	def := NewDefaultConfig()

	if cfg.Server.Host == "" {
		cfg.Server.Host = def.Server.Host
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = def.Server.Port
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = def.Server.ShutdownTimeout
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = def.Logging.Format
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = def.LLM.Provider
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = def.LLM.Model
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = def.LLM.Timeout
	}
	if cfg.Embeddings.Provider == "" {
		cfg.Embeddings.Provider = def.Embeddings.Provider
	}
	if cfg.Embeddings.Model == "" {
		cfg.Embeddings.Model = def.Embeddings.Model
	}
	if cfg.Embeddings.Dimension == 0 {
		cfg.Embeddings.Dimension = def.Embeddings.Dimension
	}
	if cfg.Qdrant.Host == "" {
		cfg.Qdrant.Host = def.Qdrant.Host
	}
	if cfg.Qdrant.Port == 0 {
		cfg.Qdrant.Port = def.Qdrant.Port
	}
	if cfg.Qdrant.Collection == "" {
		cfg.Qdrant.Collection = def.Qdrant.Collection
	}
	if cfg.Scoring.TopK == 0 {
		cfg.Scoring.TopK = def.Scoring.TopK
	}
	if cfg.Scoring.RetrieveK == 0 {
		cfg.Scoring.RetrieveK = def.Scoring.RetrieveK
	}
	if cfg.Scoring.PersonaWeight == 0 {
		cfg.Scoring.PersonaWeight = def.Scoring.PersonaWeight
	}
	if cfg.Scoring.HeuristicWeight == 0 {
		cfg.Scoring.HeuristicWeight = def.Scoring.HeuristicWeight
	}
}
