// Package agent composes provider requests from a prompt plus the
// session context and decodes the model's structured reply into the
// same command representation the rule-based parser produces.
package agent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pedrocandeias/idaia"
)

const defaultMaxTokens = 1024

// Agent drives AI interpretation through a Provider. The provider is
// expected to be retry-wrapped; the agent itself never retries a
// malformed reply, since the same prompt will likely fail identically.
type Agent struct {
	provider    idaia.Provider
	model       string
	maxTokens   int
	temperature *float64
	log         *zap.Logger
}

// Option configures an [Agent].
type Option func(*Agent)

// WithModel sets the model ID. Empty string means the provider default.
func WithModel(model string) Option {
	return func(a *Agent) { a.model = model }
}

// WithMaxTokens sets the reply token budget.
func WithMaxTokens(n int) Option {
	return func(a *Agent) { a.maxTokens = n }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(a *Agent) { a.temperature = &t }
}

// WithLogger sets the logger. Default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *Agent) { a.log = l }
}

// New creates an Agent backed by the given provider.
func New(provider idaia.Provider, opts ...Option) *Agent {
	a := &Agent{
		provider:  provider,
		maxTokens: defaultMaxTokens,
		log:       zap.NewNop(),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Interpret resolves a free-text prompt into a command set. The session
// supplies the bounded turn window and the scene snapshot; Interpret
// reads it but never writes it; context mutation on success belongs to
// the dispatcher, which knows whether the reply was applied or
// discarded as stale.
func (a *Agent) Interpret(ctx context.Context, prompt string, sess *idaia.Session) (idaia.CommandSet, error) {
	req := idaia.Request{
		Model:        a.model,
		SystemPrompt: systemPrompt(sess),
		UserPrompt:   prompt,
		MaxTokens:    a.maxTokens,
		Temperature:  a.temperature,
	}
	if sess != nil {
		req.Turns = sess.Window()
	}
	if err := req.Validate(); err != nil {
		return idaia.CommandSet{}, fmt.Errorf("agent: %w", err)
	}

	raw, err := a.provider.Complete(ctx, req)
	if err != nil {
		return idaia.CommandSet{}, fmt.Errorf("agent: provider: %w", err)
	}

	set, err := decodeReply(raw)
	if err != nil {
		a.log.Warn("model reply rejected", zap.Error(err), zap.String("reply_head", head(raw)))
		return idaia.CommandSet{}, fmt.Errorf("agent: %w", err)
	}
	a.log.Debug("interpreted prompt",
		zap.Int("shapes", len(set.Shapes)),
		zap.Float64("confidence", set.Confidence))
	return set, nil
}

// Ping sends a minimal request and reports whether the backend
// answered. No context is attached and nothing is recorded.
func (a *Agent) Ping(ctx context.Context) error {
	req := idaia.Request{
		Model:        a.model,
		SystemPrompt: "You are a connectivity check. Reply with the single word OK.",
		UserPrompt:   "Respond with 'OK'.",
		MaxTokens:    16,
	}
	reply, err := a.provider.Complete(ctx, req)
	if err != nil {
		return fmt.Errorf("agent: ping: %w", err)
	}
	if !strings.Contains(strings.ToLower(reply), "ok") {
		return fmt.Errorf("agent: ping: unexpected reply %q", head(reply))
	}
	return nil
}

func head(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 120 {
		return s[:120] + "..."
	}
	return s
}
