// Package openaichat implements [idaia.Provider] for OpenAI-compatible
// chat-completion endpoints. Both the OpenAI API and a local Ollama
// server speak this shape; they differ only in base URL and whether an
// API key is required.
package openaichat

const (
	// DefaultBaseURL is the hosted OpenAI endpoint.
	DefaultBaseURL = "https://api.openai.com/v1"

	// OllamaBaseURL is the default local Ollama endpoint.
	OllamaBaseURL = "http://localhost:11434/v1"

	defaultModel    = "gpt-4o-mini"
	completionsPath = "/chat/completions"
)

// apiRequest is the JSON body sent to the chat-completions endpoint.
type apiRequest struct {
	Model       string       `json:"model"`
	Messages    []apiMessage `json:"messages"`
	Temperature *float64     `json:"temperature,omitempty"`
	MaxTokens   int          `json:"max_tokens,omitempty"`
	Stream      bool         `json:"stream"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// apiErrorResponse is the JSON body returned on non-2xx HTTP responses.
type apiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}
