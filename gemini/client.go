package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/pedrocandeias/idaia"
)

// Interface compliance check.
var _ idaia.Provider = (*Client)(nil)

// Client implements [idaia.Provider] for the Google Gemini API.
type Client struct {
	client *genai.Client
	model  string
	hc     *http.Client
}

// Option configures a [Client].
type Option func(*Client)

// WithModel sets the fallback model ID used when a request does not
// name one.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithHTTPClient sets the HTTP client the SDK sends requests through,
// including its timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// New creates a new Gemini [Client] with the given API key and options.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	c := &Client{model: defaultModel}
	for _, o := range opts {
		o(c)
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: c.hc,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	c.client = gc
	return c, nil
}

// Complete sends a non-streaming generation request and returns the
// reply text.
func (c *Client) Complete(ctx context.Context, req idaia.Request) (string, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	resp, err := c.client.Models.GenerateContent(ctx, model, convertTurns(req), buildConfig(req))
	if err != nil {
		return "", fmt.Errorf("gemini: %w", classify(err))
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("gemini: response has no text content")
	}
	return text, nil
}

func buildConfig(req idaia.Request) *genai.GenerateContentConfig {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
	}
	if req.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemPrompt}},
		}
	}
	if req.Temperature != nil {
		temp := float32(*req.Temperature)
		config.Temperature = &temp
	}
	return config
}

// convertTurns maps the conversation window plus the user prompt to
// genai contents. Gemini names the assistant role "model".
func convertTurns(req idaia.Request) []*genai.Content {
	turns := req.Transcript()
	out := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		role := "user"
		if t.Role == idaia.RoleAssistant {
			role = "model"
		}
		out = append(out, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: t.Text}},
		})
	}
	return out
}

// classify maps SDK failures onto the pipeline's provider error
// taxonomy so the retry layer treats Gemini like the HTTP backends.
func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return idaia.ClassifyStatus(apiErr.Code, apiErr.Message)
	}
	return idaia.ClassifyTransport(err)
}
