package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cover-letter-agent/internal/schemas"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "gemini-2.5-flash-lite", cfg.Model)
	assert.Equal(t, "lite", cfg.ModelTier)
	assert.Equal(t, "text-embedding-004", cfg.EmbeddingModel)
	assert.InDelta(t, 0.7, cfg.Temperature, 1e-6)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout())
	assert.Equal(t, 5*time.Second, cfg.PageLoadTimeout())
	assert.Equal(t, 30*time.Second, cfg.RenderTimeout())
	assert.Equal(t, 3000, cfg.MaxJobDescriptionLength)
	assert.Equal(t, 1000, cfg.ChunkSize)
	assert.Equal(t, 200, cfg.ChunkOverlap)
	assert.Equal(t, 3, cfg.TopK)
	assert.Equal(t, "static_content", cfg.StaticContentDir)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes())
}

func TestLoadConfig_ValidJSON(t *testing.T) {
	path := writeFile(t, "config.json", `{
		"model": "gemini-2.5-flash",
		"temperature": 0,
		"top_k": 5,
		"log": {"level": "debug", "format": "json"}
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.5-flash", cfg.Model)
	assert.Zero(t, cfg.Temperature)
	assert.Equal(t, 5, cfg.TopK)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	// Untouched keys keep their defaults.
	assert.Equal(t, 1000, cfg.ChunkSize)
	assert.Equal(t, "text-embedding-004", cfg.EmbeddingModel)
}

func TestLoadConfig_ValidYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
chunk_size: 800
chunk_overlap: 100
model_tier: standard
static_content_dir: ./samples
server:
  port: 9090
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 800, cfg.ChunkSize)
	assert.Equal(t, 100, cfg.ChunkOverlap)
	assert.Equal(t, "standard", cfg.ModelTier)
	assert.Equal(t, "./samples", cfg.StaticContentDir)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Server.MaxUploadMB)
}

func TestLoadConfig_EmptyYAML(t *testing.T) {
	cfg, err := LoadConfig(writeFile(t, "config.yml", ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
}

func TestLoadConfig_SchemaViolation(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"unknown key", "config.json", `{"database_url": "postgres://localhost"}`},
		{"wrong type", "config.json", `{"top_k": "three"}`},
		{"out of range", "config.yaml", "temperature: 5\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(writeFile(t, tt.file, tt.content))
			assert.Nil(t, cfg)
			var validationErr *schemas.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Contains(t, err.Error(), "invalid config")
		})
	}
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	cfg, err := LoadConfig(writeFile(t, "config.json", `{ invalid json }`))
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestApplyEnv(t *testing.T) {
	env := func(values map[string]string) func(string) string {
		return func(key string) string { return values[key] }
	}

	tests := []struct {
		name   string
		preset string
		env    map[string]string
		want   string
	}{
		{"gemini key first", "", map[string]string{EnvGeminiAPIKey: "gemini", EnvGoogleAPIKey: "google"}, "gemini"},
		{"google key fallback", "", map[string]string{EnvGoogleAPIKey: "google"}, "google"},
		{"file value wins", "from-file", map[string]string{EnvGeminiAPIKey: "gemini"}, "from-file"},
		{"none", "", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.APIKey = tt.preset
			cfg.ApplyEnv(env(tt.env))
			assert.Equal(t, tt.want, cfg.APIKey)
		})
	}

	cfg := Default()
	cfg.ApplyEnv(env(map[string]string{"CHROME_PATH": "/opt/chrome"}))
	assert.Equal(t, "/opt/chrome", cfg.ChromePath)
}

func TestLoad(t *testing.T) {
	t.Setenv(EnvGeminiAPIKey, "")
	t.Setenv(EnvGoogleAPIKey, "google-key")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "google-key", cfg.APIKey)

	_, err = Load(writeFile(t, "config.json", `{"chunk_size": 100, "chunk_overlap": 100}`))
	assert.ErrorContains(t, err, "chunk_overlap")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"empty model", func(c *Config) { c.Model = "" }, "model"},
		{"unknown tier", func(c *Config) { c.ModelTier = "turbo" }, "model_tier"},
		{"negative temperature", func(c *Config) { c.Temperature = -0.1 }, "temperature"},
		{"zero timeout", func(c *Config) { c.RequestTimeoutSeconds = 0 }, "timeouts"},
		{"short limit", func(c *Config) { c.MaxJobDescriptionLength = 99 }, "max_job_description_length"},
		{"overlap equals size", func(c *Config) { c.ChunkOverlap = c.ChunkSize }, "chunk_overlap"},
		{"zero top k", func(c *Config) { c.TopK = 0 }, "top_k"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}
