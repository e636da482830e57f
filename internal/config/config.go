// Package config provides configuration loading and validation for the CLI and API server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/cover-letter-agent/internal/logger"
	"github.com/jonathan/cover-letter-agent/internal/schemas"
	schemafiles "github.com/jonathan/cover-letter-agent/schemas"
)

// API key environment variables, in lookup order.
const (
	EnvGeminiAPIKey = "GEMINI_API_KEY"
	EnvGoogleAPIKey = "GOOGLE_API_KEY"
)

// Config represents the application configuration. A file only needs the keys it
// changes; everything else keeps the value from Default. Model names the
// lite-tier model; ModelTier picks the tier used for generation.
type Config struct {
	APIKey         string  `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Model          string  `json:"model" yaml:"model"`
	ModelTier      string  `json:"model_tier" yaml:"model_tier"`
	EmbeddingModel string  `json:"embedding_model" yaml:"embedding_model"`
	Temperature    float32 `json:"temperature" yaml:"temperature"`

	RequestTimeoutSeconds  int `json:"request_timeout_seconds" yaml:"request_timeout_seconds"`
	PageLoadTimeoutSeconds int `json:"page_load_timeout_seconds" yaml:"page_load_timeout_seconds"`
	RenderTimeoutSeconds   int `json:"render_timeout_seconds" yaml:"render_timeout_seconds"`

	MaxJobDescriptionLength int `json:"max_job_description_length" yaml:"max_job_description_length"`

	ChunkSize    int `json:"chunk_size" yaml:"chunk_size"`
	ChunkOverlap int `json:"chunk_overlap" yaml:"chunk_overlap"`
	TopK         int `json:"top_k" yaml:"top_k"`

	StaticContentDir string `json:"static_content_dir" yaml:"static_content_dir"`
	ChromePath       string `json:"chrome_path,omitempty" yaml:"chrome_path,omitempty"`

	Server ServerConfig  `json:"server" yaml:"server"`
	Log    logger.Config `json:"log" yaml:"log"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port        int `json:"port" yaml:"port"`
	MaxUploadMB int `json:"max_upload_mb" yaml:"max_upload_mb"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Model:                   "gemini-2.5-flash-lite",
		ModelTier:               "lite",
		EmbeddingModel:          "text-embedding-004",
		Temperature:             0.7,
		RequestTimeoutSeconds:   5,
		PageLoadTimeoutSeconds:  5,
		RenderTimeoutSeconds:    30,
		MaxJobDescriptionLength: 3000,
		ChunkSize:               1000,
		ChunkOverlap:            200,
		TopK:                    3,
		StaticContentDir:        "static_content",
		Server: ServerConfig{
			Port:        8080,
			MaxUploadMB: 10,
		},
		Log: logger.Config{
			Level:  "info",
			Format: "pretty",
		},
	}
}

// LoadConfig loads a JSON or YAML configuration file (by extension) on top of
// Default. The file is checked against the embedded schema before decoding.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	isYAML := false
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		isYAML = true
	}

	var doc any
	if isYAML {
		err = yaml.Unmarshal(data, &doc)
	} else {
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if doc == nil {
		doc = map[string]any{}
	}

	if err := schemas.ValidateDocument("config.schema.json", schemafiles.Config, doc); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	cfg := Default()
	if isYAML {
		err = yaml.Unmarshal(data, &cfg)
	} else {
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	return &cfg, nil
}

// Load returns Default, overlaid with the file at path when path is set, then
// with the environment, and validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnv fills the API key from GEMINI_API_KEY, then GOOGLE_API_KEY, and the
// browser path from CHROME_PATH, leaving values already set alone.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if c.APIKey == "" {
		c.APIKey = getenv(EnvGeminiAPIKey)
	}
	if c.APIKey == "" {
		c.APIKey = getenv(EnvGoogleAPIKey)
	}
	if c.ChromePath == "" {
		c.ChromePath = getenv("CHROME_PATH")
	}
}

// Validate checks that the configuration has valid values.
// The API key is not required here; operations that need it report its absence.
func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("config error: 'model' must not be empty")
	}
	switch c.ModelTier {
	case "lite", "standard", "advanced":
	default:
		return fmt.Errorf("config error: 'model_tier' must be lite, standard or advanced")
	}
	if c.EmbeddingModel == "" {
		return fmt.Errorf("config error: 'embedding_model' must not be empty")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("config error: 'temperature' must be between 0 and 2")
	}
	if c.RequestTimeoutSeconds <= 0 || c.PageLoadTimeoutSeconds <= 0 || c.RenderTimeoutSeconds <= 0 {
		return fmt.Errorf("config error: timeouts must be positive")
	}
	if c.MaxJobDescriptionLength < 100 {
		return fmt.Errorf("config error: 'max_job_description_length' must be at least 100")
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("config error: 'chunk_size' must be positive")
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("config error: 'chunk_overlap' must be in [0, chunk_size)")
	}
	if c.TopK <= 0 {
		return fmt.Errorf("config error: 'top_k' must be positive")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config error: 'server.port' must be a valid port")
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("config error: 'server.max_upload_mb' must be positive")
	}
	return nil
}

// RequestTimeout bounds static fetches and generation calls.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// PageLoadTimeout bounds rendered page navigation.
func (c *Config) PageLoadTimeout() time.Duration {
	return time.Duration(c.PageLoadTimeoutSeconds) * time.Second
}

// RenderTimeout bounds a whole browser session, for rendered fetches and PDF output.
func (c *Config) RenderTimeout() time.Duration {
	return time.Duration(c.RenderTimeoutSeconds) * time.Second
}

// MaxUploadBytes is the multipart upload limit of the API server.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) << 20
}
