package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pedrocandeias/idaia"
	"github.com/pedrocandeias/idaia/config"
	"github.com/pedrocandeias/idaia/openaichat"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `{
		"provider": "anthropic",
		"model": "claude-sonnet-4-20250514",
		"api_key": "sk-ant-test",
		"temperature": 0.3,
		"timeout_seconds": 60,
		"max_retries": 3,
		"parametric_mode": true
	}`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, idaia.ProviderAnthropic, cfg.Kind())
	assert.Equal(t, 0.3, cfg.Temperature)
	assert.Equal(t, 60*time.Second, cfg.Timeout())
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.True(t, cfg.ParametricMode)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_DefaultsFillGaps(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `{"provider": "ollama"}`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, openaichat.OllamaBaseURL, cfg.BaseURL)
	assert.Equal(t, "llama3.1:8b", cfg.Model)
	assert.Equal(t, idaia.DefaultMaxRetries, cfg.MaxRetries)
	assert.Equal(t, 120*time.Second, cfg.Timeout())
}

func TestLoad_OpenAIBaseURLDefault(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `{"provider": "openai", "api_key": "sk-test"}`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, openaichat.DefaultBaseURL, cfg.BaseURL)
}

func TestLoad_Invalid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		content string
	}{
		{"unknown provider", `{"provider": "skynet"}`},
		{"temperature out of range", `{"provider": "ollama", "temperature": 5}`},
		{"timeout too small", `{"provider": "ollama", "timeout_seconds": 1}`},
		{"retries out of range", `{"provider": "ollama", "max_retries": 50}`},
		{"not json", `provider = ollama`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := writeConfig(t, tt.content)
			_, err := config.Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	t.Parallel()
	cfg, err := config.LoadOrDefault(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.NoError(t, cfg.Validate())
}
