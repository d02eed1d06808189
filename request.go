package idaia

import "fmt"

// Request carries a single provider invocation. The provider uses its
// own defaults when fields are zero/nil. A Request is immutable once
// built; configuration reloads apply between requests, never within
// one.
type Request struct {
	Model        string // model ID, provider-specific; empty = provider default
	SystemPrompt string
	Turns        []Turn // prior conversation window, oldest first
	UserPrompt   string
	MaxTokens    int      // 0 = provider default
	Temperature  *float64 // nil = provider default
}

// Validate checks universal constraints on Request.
// Provider implementations may apply additional provider-specific validation.
func (r Request) Validate() error {
	if r.UserPrompt == "" {
		return fmt.Errorf("user prompt must not be empty: %w", ErrValidation)
	}
	if r.Temperature != nil {
		if *r.Temperature < 0 || *r.Temperature > 2 {
			return fmt.Errorf("temperature must be in [0, 2], got %g: %w", *r.Temperature, ErrValidation)
		}
	}
	if r.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must be non-negative, got %d: %w", r.MaxTokens, ErrValidation)
	}
	return nil
}

// Transcript flattens the context window plus the user prompt into the
// chat order providers expect.
func (r Request) Transcript() []Turn {
	out := make([]Turn, 0, len(r.Turns)+1)
	out = append(out, r.Turns...)
	out = append(out, Turn{Role: RoleUser, Text: r.UserPrompt})
	return out
}
