// Package dispatch routes prompts to AI or rule-based interpretation,
// applies the single fallback hop, and enforces the session's
// at-most-one-in-flight discipline with stale-reply discard.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/pedrocandeias/idaia"
)

// Interpreter is the AI interpretation seam.
type Interpreter interface {
	Interpret(ctx context.Context, prompt string, sess *idaia.Session) (idaia.CommandSet, error)
}

// RuleParser is the deterministic fallback seam.
type RuleParser interface {
	Parse(text string) (idaia.CommandSet, error)
}

// Result is the terminal outcome of one pipeline invocation: either a
// command set or a single classified error, never both, never a partial
// set.
type Result struct {
	Commands idaia.CommandSet
	Err      error
}

// Dispatcher owns one document session's pipeline. The session and the
// parameter-name set are the only shared mutable state; serializing
// every invocation through the in-flight gate makes them safe without
// locking in the session itself.
type Dispatcher struct {
	agent  Interpreter // nil when AI is disabled
	parser RuleParser
	sess   *idaia.Session
	log    *zap.Logger

	mu     sync.Mutex
	busy   bool
	gen    uint64 // bumped on every submit and cancel; stale replies see a newer gen
	cancel context.CancelFunc
}

// Option configures a [Dispatcher].
type Option func(*Dispatcher)

// WithAgent enables AI interpretation with rule-based fallback.
func WithAgent(a Interpreter) Option {
	return func(d *Dispatcher) { d.agent = a }
}

// WithLogger sets the logger. Default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(d *Dispatcher) { d.log = l }
}

// New creates a Dispatcher over the given session. parser is required;
// AI is enabled by WithAgent.
func New(parser RuleParser, sess *idaia.Session, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		parser: parser,
		sess:   sess,
		log:    zap.NewNop(),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Session returns the dispatcher's document session.
func (d *Dispatcher) Session() *idaia.Session { return d.sess }

// Busy reports whether a request is in flight.
func (d *Dispatcher) Busy() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.busy
}

// Submit starts resolving a prompt off the caller's thread. It returns
// [idaia.ErrBusy] when a request is already outstanding for this
// session: overlapping prompts are rejected, never interleaved. The
// returned channel delivers exactly one Result and is then closed; if
// the invocation is abandoned via Cancel or a newer Submit, the channel
// is closed without a Result and any reply that still arrives is
// discarded rather than applied.
func (d *Dispatcher) Submit(ctx context.Context, prompt string) (<-chan Result, error) {
	d.mu.Lock()
	if d.busy {
		d.mu.Unlock()
		return nil, idaia.ErrBusy
	}
	d.busy = true
	d.gen++
	gen := d.gen
	cctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.mu.Unlock()

	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		defer cancel()
		set, err := d.resolve(cctx, prompt)

		d.mu.Lock()
		defer d.mu.Unlock()
		if gen != d.gen {
			d.log.Info("discarding stale reply", zap.Uint64("generation", gen))
			return
		}
		d.busy = false
		d.cancel = nil
		if err == nil && set.Source == idaia.SourceAI {
			d.sess.AppendExchange(prompt, summarize(set))
		}
		ch <- Result{Commands: set, Err: err}
	}()
	return ch, nil
}

// Dispatch resolves a prompt synchronously. It shares Submit's gate so
// a concurrent invocation is still rejected with [idaia.ErrBusy].
func (d *Dispatcher) Dispatch(ctx context.Context, prompt string) (idaia.CommandSet, error) {
	ch, err := d.Submit(ctx, prompt)
	if err != nil {
		return idaia.CommandSet{}, err
	}
	res, ok := <-ch
	if !ok {
		return idaia.CommandSet{}, context.Canceled
	}
	return res.Commands, res.Err
}

// Cancel abandons the in-flight invocation, if any. The pipeline
// becomes immediately available for a new prompt; the abandoned
// request's eventual reply is dropped without touching the session.
func (d *Dispatcher) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.busy {
		return
	}
	d.gen++
	d.busy = false
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

// resolve runs the per-invocation state machine:
//
//	AI enabled:  AIAttempt → {success → done; failure → FallbackAttempt} → {success → done; failure → fatal}
//	AI disabled: RuleAttempt → {success → done; failure → fatal}
//
// Only one fallback hop is permitted; a double failure is terminal.
func (d *Dispatcher) resolve(ctx context.Context, prompt string) (idaia.CommandSet, error) {
	if d.agent == nil {
		set, err := d.parser.Parse(prompt)
		if err != nil {
			return idaia.CommandSet{}, fmt.Errorf("rule-based: %v: %w", err, idaia.ErrNoInterpretation)
		}
		return set, nil
	}

	set, aiErr := d.agent.Interpret(ctx, prompt, d.sess)
	if aiErr == nil {
		return set, nil
	}
	if errors.Is(aiErr, context.Canceled) {
		return idaia.CommandSet{}, aiErr
	}
	d.log.Warn("AI interpretation failed, falling back", zap.Error(aiErr))

	set, ruleErr := d.parser.Parse(prompt)
	if ruleErr != nil {
		return idaia.CommandSet{}, fmt.Errorf("ai: %v; rule-based: %v: %w", aiErr, ruleErr, idaia.ErrNoInterpretation)
	}
	return set, nil
}

// summarize synthesizes the assistant turn recorded after a successful
// AI interpretation. Fallback and rule-based successes never reach
// here: they were not AI-authored, and recording them would pollute the
// context with a different agent's voice.
func summarize(set idaia.CommandSet) string {
	if set.Explanation != "" {
		return set.Explanation
	}
	out := "Created"
	for i, s := range set.Shapes {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf(" %s %s", s.Kind, s.Name)
	}
	return out
}
