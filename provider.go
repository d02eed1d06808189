package idaia

import "context"

// ProviderKind selects an LLM backend.
type ProviderKind string

const (
	ProviderOllama    ProviderKind = "ollama"
	ProviderOpenAI    ProviderKind = "openai"
	ProviderAnthropic ProviderKind = "anthropic"
	ProviderGemini    ProviderKind = "gemini"
)

// ParseProviderKind maps a config token to its ProviderKind.
func ParseProviderKind(s string) (ProviderKind, bool) {
	switch ProviderKind(s) {
	case ProviderOllama:
		return ProviderOllama, true
	case ProviderOpenAI:
		return ProviderOpenAI, true
	case ProviderAnthropic:
		return ProviderAnthropic, true
	case ProviderGemini:
		return ProviderGemini, true
	}
	return "", false
}

// Provider is a strategy pattern interface for LLM backends. Complete
// returns the raw text of the model's reply. Implementations classify
// failures as *ProviderError so the retry layer can act on them.
type Provider interface {
	Complete(ctx context.Context, req Request) (string, error)
}
