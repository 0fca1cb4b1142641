package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, 9180, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout.Duration())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "gemini", cfg.Embeddings.Provider)
	assert.Equal(t, 3072, cfg.Embeddings.Dimension)
	assert.Equal(t, "lifestyle-to-vehicle", cfg.Qdrant.Collection)
	assert.Equal(t, 3, cfg.Scoring.TopK)
	assert.Equal(t, 20, cfg.Scoring.RetrieveK)
	assert.Equal(t, 0.25, cfg.Scoring.PersonaWeight)
	assert.Equal(t, 0.15, cfg.Scoring.HeuristicWeight)

	require.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid default",
			mutate: func(c *Config) {},
		},
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Server.Port = -1 },
			wantErr: "invalid server port",
		},
		{
			name:    "bad logging format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "logging format",
		},
		{
			name:    "unknown llm provider",
			mutate:  func(c *Config) { c.LLM.Provider = "oracle" },
			wantErr: "unknown llm provider",
		},
		{
			name:    "unknown embeddings provider",
			mutate:  func(c *Config) { c.Embeddings.Provider = "oracle" },
			wantErr: "unknown embeddings provider",
		},
		{
			name:    "missing collection",
			mutate:  func(c *Config) { c.Qdrant.Collection = "" },
			wantErr: "collection is required",
		},
		{
			name:    "top_k zero",
			mutate:  func(c *Config) { c.Scoring.TopK = 0 },
			wantErr: "top_k",
		},
		{
			name:    "retrieve_k below top_k",
			mutate:  func(c *Config) { c.Scoring.RetrieveK = 1 },
			wantErr: "retrieve_k",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  http_port: 8085
llm:
  provider: openai
  model: gpt-4o-mini
  api_key: sk-test
scoring:
  top_k: 5
  retrieve_k: 40
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8085, cfg.Server.Port)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey.Value())
	assert.Equal(t, 5, cfg.Scoring.TopK)
	assert.Equal(t, 40, cfg.Scoring.RetrieveK)

	// Defaults fill the rest.
	assert.Equal(t, "gemini", cfg.Embeddings.Provider)
	assert.Equal(t, "lifestyle-to-vehicle", cfg.Qdrant.Collection)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SERVER_HTTP_PORT", "7070")
	t.Setenv("QDRANT_COLLECTION", "vehicles-test")
	t.Setenv("LLM_PROVIDER", "disabled")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "vehicles-test", cfg.Qdrant.Collection)
	assert.Equal(t, "disabled", cfg.LLM.Provider)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, NewDefaultConfig().Server.Port, cfg.Server.Port)
}

func TestSecretRedaction(t *testing.T) {
	s := Secret("very-secret")
	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "very-secret", s.Value())
	assert.True(t, s.IsSet())

	data, err := s.MarshalJSON()
	require.NoError(t, err)
	assert.NotContains(t, string(data), "very-secret")

	var empty Secret
	assert.Equal(t, "", empty.String())
	assert.False(t, empty.IsSet())
}

func TestDurationUnmarshal(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("90s")))
	assert.Equal(t, 90*time.Second, d.Duration())

	assert.Error(t, d.UnmarshalText([]byte("-5s")))
	assert.Error(t, d.UnmarshalText([]byte("bogus")))
}
