package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/iishyfishyy/recoforge/internal/embeddings"
)

const (
	ConfigDirName  = ".recoforge"
	ConfigFileName = "config.json"
	EnvFileName    = ".env"

	// DefaultK is the number of recommendations returned when none is requested
	DefaultK = 5
)

// Environment variables that override the config file
const (
	EnvHome     = "RECOFORGE_HOME"
	EnvProvider = "RECOFORGE_PROVIDER"
	EnvOpenAI   = "OPENAI_API_KEY"
	EnvOllama   = "OLLAMA_HOST"
)

// OllamaConfig configures the local Ollama embedder
type OllamaConfig struct {
	URL   string `json:"url,omitempty"`
	Model string `json:"model,omitempty"`
}

// OpenAIConfig configures an OpenAI-compatible embeddings API
type OpenAIConfig struct {
	APIKey  string `json:"api_key,omitempty"`
	BaseURL string `json:"base_url,omitempty"`
	Model   string `json:"model,omitempty"`
}

// EmbeddingsConfig selects and configures the embedding provider
type EmbeddingsConfig struct {
	Provider string       `json:"provider"`
	Ollama   OllamaConfig `json:"ollama"`
	OpenAI   OpenAIConfig `json:"openai"`
}

// Config represents the application configuration
type Config struct {
	Embeddings EmbeddingsConfig `json:"embeddings"`

	// Catalog is the default catalog path; empty means the embedded sample
	Catalog  string `json:"catalog,omitempty"`
	DefaultK int    `json:"default_k"`
	History  bool   `json:"history"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		Embeddings: EmbeddingsConfig{Provider: embeddings.ProviderTFIDF},
		DefaultK:   DefaultK,
		History:    true,
	}
}

// ApplyDefaults fills zero values left by a partial config file
func (c *Config) ApplyDefaults() {
	if c.Embeddings.Provider == "" {
		c.Embeddings.Provider = embeddings.ProviderTFIDF
	}
	if c.DefaultK < 1 {
		c.DefaultK = DefaultK
	}
}

// ApplyEnv lets environment variables override file values
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvProvider)); v != "" {
		c.Embeddings.Provider = v
	}
	if v := os.Getenv(EnvOpenAI); v != "" {
		c.Embeddings.OpenAI.APIKey = v
	}
	if v := os.Getenv(EnvOllama); v != "" {
		if !strings.Contains(v, "://") {
			v = "http://" + v
		}
		c.Embeddings.Ollama.URL = v
	}
}

// EmbedderConfig converts the embeddings section for embeddings.NewEmbedder
func (c *Config) EmbedderConfig() embeddings.Config {
	return embeddings.Config{
		Provider:      c.Embeddings.Provider,
		OllamaURL:     c.Embeddings.Ollama.URL,
		OllamaModel:   c.Embeddings.Ollama.Model,
		OpenAIKey:     c.Embeddings.OpenAI.APIKey,
		OpenAIModel:   c.Embeddings.OpenAI.Model,
		OpenAIBaseURL: c.Embeddings.OpenAI.BaseURL,
	}
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ConfigDirName), nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, ConfigFileName), nil
}

// LoadEnv loads .env from the working directory and then from the config
// directory. Variables already set in the process are never overwritten.
func LoadEnv() error {
	paths := []string{EnvFileName}
	if dir, err := GetConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, EnvFileName))
	}

	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads the configuration from disk and applies environment overrides.
// A missing file yields Default().
func Load() (*Config, error) {
	cfg, err := LoadFile()
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// LoadFile reads the configuration file without environment overrides
func LoadFile() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	cfg := Default()

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.ApplyDefaults()
	return cfg, nil
}

// Save writes the configuration to disk
func Save(cfg *Config) error {
	configDir, err := GetConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// may hold an API key
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Exists checks if a configuration file exists
func Exists() (bool, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return false, err
	}

	_, err = os.Stat(configPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}
