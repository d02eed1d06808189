package dispatch_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pedrocandeias/idaia"
	"github.com/pedrocandeias/idaia/agent"
	"github.com/pedrocandeias/idaia/dispatch"
	"github.com/pedrocandeias/idaia/mock"
	"github.com/pedrocandeias/idaia/ruleparser"
)

type fakeAgent struct {
	fn func(ctx context.Context, prompt string, sess *idaia.Session) (idaia.CommandSet, error)
}

func (f *fakeAgent) Interpret(ctx context.Context, prompt string, sess *idaia.Session) (idaia.CommandSet, error) {
	return f.fn(ctx, prompt, sess)
}

type fakeParser struct {
	fn func(text string) (idaia.CommandSet, error)
}

func (f *fakeParser) Parse(text string) (idaia.CommandSet, error) {
	return f.fn(text)
}

func aiSet(explanation string) idaia.CommandSet {
	return idaia.CommandSet{
		Shapes: []idaia.ShapeSpec{{
			Kind: idaia.Box,
			Dimensions: map[string]idaia.Dimension{
				"length": idaia.MM("length", 10),
				"width":  idaia.MM("width", 10),
				"height": idaia.MM("height", 10),
			},
		}},
		Explanation: explanation,
		Source:      idaia.SourceAI,
	}
}

func ruleSet() idaia.CommandSet {
	set := aiSet("")
	set.Source = idaia.SourceRule
	return set
}

func failingParser(t *testing.T) dispatch.RuleParser {
	t.Helper()
	return &fakeParser{fn: func(string) (idaia.CommandSet, error) {
		return idaia.CommandSet{}, idaia.ErrNoShapeRecognized
	}}
}

func TestDispatcher_RuleOnly(t *testing.T) {
	t.Parallel()
	sess := idaia.NewSession("doc")
	parser := &fakeParser{fn: func(string) (idaia.CommandSet, error) { return ruleSet(), nil }}
	d := dispatch.New(parser, sess)

	set, err := d.Dispatch(context.Background(), "a box")
	require.NoError(t, err)
	assert.Equal(t, idaia.SourceRule, set.Source)

	// Rule-based successes never touch the conversation context.
	assert.Empty(t, sess.Window())
}

func TestDispatcher_AISuccessAppendsContext(t *testing.T) {
	t.Parallel()
	sess := idaia.NewSession("doc")
	ai := &fakeAgent{fn: func(ctx context.Context, prompt string, s *idaia.Session) (idaia.CommandSet, error) {
		return aiSet("A 10mm cube."), nil
	}}
	d := dispatch.New(failingParser(t), sess, dispatch.WithAgent(ai))

	set, err := d.Dispatch(context.Background(), "a cube")
	require.NoError(t, err)
	assert.Equal(t, idaia.SourceAI, set.Source)

	window := sess.Window()
	require.Len(t, window, 2)
	assert.Equal(t, "a cube", window[0].Text)
	assert.Equal(t, "A 10mm cube.", window[1].Text)
}

func TestDispatcher_FallbackOnAIFailure(t *testing.T) {
	t.Parallel()
	sess := idaia.NewSession("doc")
	ai := &fakeAgent{fn: func(ctx context.Context, prompt string, s *idaia.Session) (idaia.CommandSet, error) {
		return idaia.CommandSet{}, idaia.ErrMalformedReply
	}}
	parser := &fakeParser{fn: func(string) (idaia.CommandSet, error) { return ruleSet(), nil }}
	d := dispatch.New(parser, sess, dispatch.WithAgent(ai))

	set, err := d.Dispatch(context.Background(), "a box")
	require.NoError(t, err)
	assert.Equal(t, idaia.SourceRule, set.Source)

	// The fallback result is not AI-authored; context stays clean.
	assert.Empty(t, sess.Window())
}

func TestDispatcher_DoubleFailureIsTerminal(t *testing.T) {
	t.Parallel()
	ai := &fakeAgent{fn: func(ctx context.Context, prompt string, s *idaia.Session) (idaia.CommandSet, error) {
		return idaia.CommandSet{}, idaia.ClassifyStatus(500, "down")
	}}
	d := dispatch.New(failingParser(t), idaia.NewSession("doc"), dispatch.WithAgent(ai))

	_, err := d.Dispatch(context.Background(), "gibberish")
	require.Error(t, err)
	assert.ErrorIs(t, err, idaia.ErrNoInterpretation)
}

func TestDispatcher_CancellationSkipsFallback(t *testing.T) {
	t.Parallel()
	parserCalled := false
	ai := &fakeAgent{fn: func(ctx context.Context, prompt string, s *idaia.Session) (idaia.CommandSet, error) {
		return idaia.CommandSet{}, context.Canceled
	}}
	parser := &fakeParser{fn: func(string) (idaia.CommandSet, error) {
		parserCalled = true
		return ruleSet(), nil
	}}
	d := dispatch.New(parser, idaia.NewSession("doc"), dispatch.WithAgent(ai))

	_, err := d.Dispatch(context.Background(), "a box")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, parserCalled)
}

func TestDispatcher_RejectsOverlap(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	started := make(chan struct{})
	ai := &fakeAgent{fn: func(ctx context.Context, prompt string, s *idaia.Session) (idaia.CommandSet, error) {
		close(started)
		<-release
		return aiSet(""), nil
	}}
	d := dispatch.New(failingParser(t), idaia.NewSession("doc"), dispatch.WithAgent(ai))

	ch, err := d.Submit(context.Background(), "first")
	require.NoError(t, err)
	<-started
	assert.True(t, d.Busy())

	_, err = d.Submit(context.Background(), "second")
	assert.ErrorIs(t, err, idaia.ErrBusy)

	close(release)
	res, ok := <-ch
	require.True(t, ok)
	require.NoError(t, res.Err)
	assert.False(t, d.Busy())
}

func TestDispatcher_CancelDiscardsStaleReply(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	started := make(chan struct{})
	sess := idaia.NewSession("doc")
	ai := &fakeAgent{fn: func(ctx context.Context, prompt string, s *idaia.Session) (idaia.CommandSet, error) {
		close(started)
		<-release
		return aiSet("stale"), nil
	}}
	d := dispatch.New(failingParser(t), sess, dispatch.WithAgent(ai))

	ch, err := d.Submit(context.Background(), "slow prompt")
	require.NoError(t, err)
	<-started

	d.Cancel()
	assert.False(t, d.Busy())

	// The abandoned invocation completes, but its reply is dropped:
	// the channel closes without a result and the session is untouched.
	close(release)
	_, ok := <-ch
	assert.False(t, ok)
	assert.Empty(t, sess.Window())
}

func TestDispatcher_AvailableAfterCancel(t *testing.T) {
	t.Parallel()
	block := make(chan struct{})
	var calls atomic.Int32
	ai := &fakeAgent{fn: func(ctx context.Context, prompt string, s *idaia.Session) (idaia.CommandSet, error) {
		if calls.Add(1) == 1 {
			<-block
			return idaia.CommandSet{}, ctx.Err()
		}
		return aiSet("fresh"), nil
	}}
	d := dispatch.New(failingParser(t), idaia.NewSession("doc"), dispatch.WithAgent(ai))

	_, err := d.Submit(context.Background(), "first")
	require.NoError(t, err)
	d.Cancel()
	close(block)

	set, err := d.Dispatch(context.Background(), "second")
	require.NoError(t, err)
	assert.Equal(t, "fresh", set.Explanation)
}

func TestDispatcher_CancelWhenIdleIsNoop(t *testing.T) {
	t.Parallel()
	parser := &fakeParser{fn: func(string) (idaia.CommandSet, error) { return ruleSet(), nil }}
	d := dispatch.New(parser, idaia.NewSession("doc"))

	d.Cancel()
	_, err := d.Dispatch(context.Background(), "a box")
	assert.NoError(t, err)
}

func TestDispatcher_RuleOnlyFailure(t *testing.T) {
	t.Parallel()
	d := dispatch.New(failingParser(t), idaia.NewSession("doc"))

	_, err := d.Dispatch(context.Background(), "gibberish")
	require.Error(t, err)
	assert.ErrorIs(t, err, idaia.ErrNoInterpretation)
}

// Full pipeline: a backend that fails every attempt exhausts the retry
// budget, then the rule-based fallback still resolves the prompt.
func TestDispatcher_RetryBudgetThenFallback(t *testing.T) {
	t.Parallel()
	attempts := 0
	provider := &mock.Provider{
		CompleteFn: func(ctx context.Context, req idaia.Request) (string, error) {
			attempts++
			return "", idaia.ClassifyStatus(500, "persistent failure")
		},
	}
	retrier := idaia.NewRetrier(provider, 2, idaia.WithSleep(
		func(ctx context.Context, d time.Duration) error { return nil },
	))
	d := dispatch.New(ruleparser.New(), idaia.NewSession("doc"),
		dispatch.WithAgent(agent.New(retrier)))

	set, err := d.Dispatch(context.Background(), "create a cylinder radius 8 height 25 mm")
	require.NoError(t, err)

	assert.Equal(t, 3, attempts)
	assert.Equal(t, idaia.SourceRule, set.Source)
	require.Len(t, set.Shapes, 1)
	r, _ := set.Shapes[0].Dimension("radius")
	h, _ := set.Shapes[0].Dimension("height")
	assert.Equal(t, 8.0, r)
	assert.Equal(t, 25.0, h)
}

func TestDispatcher_SubmitDeliversExactlyOnce(t *testing.T) {
	t.Parallel()
	parser := &fakeParser{fn: func(string) (idaia.CommandSet, error) { return ruleSet(), nil }}
	d := dispatch.New(parser, idaia.NewSession("doc"))

	ch, err := d.Submit(context.Background(), "a box")
	require.NoError(t, err)

	select {
	case res, ok := <-ch:
		require.True(t, ok)
		assert.NoError(t, res.Err)
	case <-time.After(5 * time.Second):
		t.Fatal("no result delivered")
	}

	// Channel closes after the single result.
	_, ok := <-ch
	assert.False(t, ok)
}
