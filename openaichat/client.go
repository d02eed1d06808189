package openaichat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pedrocandeias/idaia"
)

// Interface compliance check.
var _ idaia.Provider = (*Client)(nil)

// Client implements [idaia.Provider] for OpenAI-compatible backends.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the API base URL. Point it at [OllamaBaseURL] for a
// local Ollama server, or at httptest in tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithHTTPClient sets a custom HTTP client, typically to carry the
// configured request timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a new [Client]. apiKey may be empty for backends that do
// not authenticate (Ollama).
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: http.DefaultClient,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Complete sends a non-streaming chat-completion request and returns
// the reply text of the first choice.
func (c *Client) Complete(ctx context.Context, req idaia.Request) (string, error) {
	body, err := json.Marshal(buildRequestBody(req))
	if err != nil {
		return "", fmt.Errorf("openaichat: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+completionsPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("openaichat: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("openaichat: %w", idaia.ClassifyTransport(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openaichat: %w", parseHTTPError(resp))
	}

	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("openaichat: decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("openaichat: response has no choices")
	}
	return out.Choices[0].Message.Content, nil
}

func buildRequestBody(req idaia.Request) apiRequest {
	model := req.Model
	if model == "" {
		model = defaultModel
	}

	msgs := make([]apiMessage, 0, len(req.Turns)+2)
	if req.SystemPrompt != "" {
		msgs = append(msgs, apiMessage{Role: "system", Content: req.SystemPrompt})
	}
	for _, t := range req.Transcript() {
		msgs = append(msgs, apiMessage{Role: string(t.Role), Content: t.Text})
	}

	return apiRequest{
		Model:       model,
		Messages:    msgs,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      false,
	}
}

func parseHTTPError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return idaia.ClassifyStatus(resp.StatusCode, fmt.Sprintf("failed to read body: %v", err))
	}
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Error.Message == "" {
		return idaia.ClassifyStatus(resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return idaia.ClassifyStatus(resp.StatusCode, apiErr.Error.Message)
}
