// Package config loads pipeline settings from a JSON file with
// validation and defaulting. A Config is immutable per request: the
// caller may reload between prompts, but a loaded value is never
// mutated once a request is built from it.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/pedrocandeias/idaia"
	"github.com/pedrocandeias/idaia/openaichat"
)

// Config is the recognized configuration surface.
type Config struct {
	Provider       string  `json:"provider"` // ollama, openai, anthropic, gemini
	Model          string  `json:"model"`
	BaseURL        string  `json:"base_url"`
	APIKey         string  `json:"api_key"`
	Temperature    float64 `json:"temperature"`
	TimeoutSeconds int     `json:"timeout_seconds"`
	MaxRetries     int     `json:"max_retries"`
	ParametricMode bool    `json:"parametric_mode"`
	LogLevel       string  `json:"log_level"`
	SessionPath    string  `json:"session_path"`
}

// Default returns the configuration used when no file exists: a local
// Ollama backend, conservative temperature, and the standard retry
// budget.
func Default() Config {
	return Config{
		Provider:       string(idaia.ProviderOllama),
		Model:          "llama3.1:8b",
		BaseURL:        openaichat.OllamaBaseURL,
		Temperature:    0.1,
		TimeoutSeconds: 120,
		MaxRetries:     idaia.DefaultMaxRetries,
		LogLevel:       "info",
	}
}

// Load reads and validates a config file.
func Load(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	cfg := Config{
		Temperature:    0.1,
		TimeoutSeconds: 120,
		MaxRetries:     idaia.DefaultMaxRetries,
		LogLevel:       "info",
	}
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadOrDefault reads the config file if it exists; a missing file
// yields the defaults, matching the addon's first-run behavior.
func LoadOrDefault(path string) (Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

func (c *Config) applyDefaults() {
	if c.Provider == "" {
		c.Provider = string(idaia.ProviderOllama)
	}
	if c.BaseURL == "" {
		switch idaia.ProviderKind(c.Provider) {
		case idaia.ProviderOllama:
			c.BaseURL = openaichat.OllamaBaseURL
		case idaia.ProviderOpenAI:
			c.BaseURL = openaichat.DefaultBaseURL
		}
		// anthropic and gemini clients default internally
	}
	if c.Model == "" && idaia.ProviderKind(c.Provider) == idaia.ProviderOllama {
		c.Model = "llama3.1:8b"
	}
}

// Validate checks the configuration surface's documented ranges.
func (c Config) Validate() error {
	if _, ok := idaia.ParseProviderKind(c.Provider); !ok {
		return fmt.Errorf("provider must be one of ollama, openai, anthropic, gemini; got %q", c.Provider)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be in [0, 2], got %g", c.Temperature)
	}
	if c.TimeoutSeconds < 5 || c.TimeoutSeconds > 300 {
		return fmt.Errorf("timeout_seconds must be in [5, 300], got %d", c.TimeoutSeconds)
	}
	if c.MaxRetries < 1 || c.MaxRetries > 10 {
		return fmt.Errorf("max_retries must be in [1, 10], got %d", c.MaxRetries)
	}
	return nil
}

// Kind returns the parsed provider kind. Validate must have passed.
func (c Config) Kind() idaia.ProviderKind {
	k, _ := idaia.ParseProviderKind(c.Provider)
	return k
}

// Timeout returns the per-request timeout.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
