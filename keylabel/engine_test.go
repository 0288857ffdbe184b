package keylabel

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietEngine(opts ...Option) *Engine {
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	return New(opts...)
}

func next(t *testing.T, e *Engine) Update {
	t.Helper()
	select {
	case u, ok := <-e.Updates():
		require.True(t, ok, "updates closed")
		return u
	case <-time.After(2 * time.Second):
		t.Fatal("no update")
	}
	return Update{}
}

func noUpdate(t *testing.T, e *Engine, wait time.Duration) {
	t.Helper()
	select {
	case u, ok := <-e.Updates():
		if ok {
			t.Fatalf("unexpected update %v %q", u.Kind, u.Label.Text)
		}
	case <-time.After(wait):
	}
}

func typeInto(e *Engine, keysyms ...string) {
	for _, k := range keysyms {
		e.Push(press(k))
		e.Push(release(k))
	}
}

func TestEngineLabels(t *testing.T) {
	e := quietEngine()
	defer e.Close()

	cfg := plain(DefaultConfig())
	cfg.Timeout = 0
	require.NoError(t, e.Start(cfg))

	typeInto(e, "h", "i")
	u1 := next(t, e)
	u2 := next(t, e)

	assert.Equal(t, UpdateLabel, u2.Kind)
	assert.Equal(t, "h", u1.Label.Text)
	assert.Equal(t, "hi", u2.Label.Text)
	assert.Equal(t, e.Session(), u2.Label.Session)
	assert.Greater(t, u2.Label.Generation, u1.Label.Generation)
}

func TestEngineTimeoutClearsOnce(t *testing.T) {
	e := quietEngine()
	defer e.Close()

	cfg := plain(DefaultConfig())
	cfg.Timeout = 50 * time.Millisecond
	require.NoError(t, e.Start(cfg))

	typeInto(e, "a")
	assert.Equal(t, "a", next(t, e).Label.Text)

	u := next(t, e)
	assert.Equal(t, UpdateClear, u.Kind)
	assert.Empty(t, u.Label.Text)

	noUpdate(t, e, 200*time.Millisecond)
}

func TestEngineTimeoutRestartsOnKey(t *testing.T) {
	e := quietEngine()
	defer e.Close()

	cfg := plain(DefaultConfig())
	cfg.Timeout = 300 * time.Millisecond
	require.NoError(t, e.Start(cfg))

	typeInto(e, "a")
	next(t, e)
	time.Sleep(100 * time.Millisecond)
	typeInto(e, "b")
	assert.Equal(t, "ab", next(t, e).Label.Text)

	start := time.Now()
	assert.Equal(t, UpdateClear, next(t, e).Kind)
	assert.GreaterOrEqual(t, time.Since(start), 200*time.Millisecond)
}

func TestEngineRecency(t *testing.T) {
	e := quietEngine()
	defer e.Close()

	cfg := DefaultConfig()
	cfg.Timeout = 0
	cfg.RecentThreshold = 30 * time.Millisecond
	require.NoError(t, e.Start(cfg))

	typeInto(e, "a")
	u := next(t, e)
	assert.Equal(t, "<u>a</u>", u.Label.Markup)

	swept := next(t, e)
	assert.Equal(t, UpdateLabel, swept.Kind)
	assert.Equal(t, "a", swept.Label.Markup)
	assert.Equal(t, u.Label.Generation, swept.Label.Generation)
}

func TestEngineSuppressedKeysSendNothing(t *testing.T) {
	e := quietEngine()
	defer e.Close()

	cfg := plain(DefaultConfig())
	cfg.Timeout = 0
	cfg.Ignore = []string{"a"}
	require.NoError(t, e.Start(cfg))

	typeInto(e, "a", "Shift_L")
	noUpdate(t, e, 100*time.Millisecond)
}

func TestEngineIgnoredModifierLeavesChords(t *testing.T) {
	e := quietEngine()
	defer e.Close()

	cfg := plain(DefaultConfig())
	cfg.Timeout = 0
	cfg.Ignore = []string{"Control_L"}
	require.NoError(t, e.Start(cfg))

	e.Push(press("Control_L"))
	typeInto(e, "c")
	e.Push(release("Control_L"))
	assert.Equal(t, "c", next(t, e).Label.Text)

	e.Push(press("Control_R"))
	typeInto(e, "c")
	e.Push(release("Control_R"))
	assert.Equal(t, "c Ctrl+C", next(t, e).Label.Text)
}

func TestEngineStopSilencesTimers(t *testing.T) {
	e := quietEngine()
	defer e.Close()

	cfg := DefaultConfig()
	cfg.Timeout = 30 * time.Millisecond
	cfg.RecentThreshold = 20 * time.Millisecond
	require.NoError(t, e.Start(cfg))

	typeInto(e, "a")
	next(t, e)
	e.Stop()
	e.Stop()

	assert.False(t, e.Running())
	assert.False(t, e.Push(press("b")))
	noUpdate(t, e, 150*time.Millisecond)
}

func TestEngineRestart(t *testing.T) {
	e := quietEngine()
	defer e.Close()

	cfg := plain(DefaultConfig())
	cfg.Timeout = 0
	require.NoError(t, e.Start(cfg))
	first := e.Session()

	typeInto(e, "a")
	next(t, e)

	cfg.KeyMode = KeyModeRaw
	require.NoError(t, e.Restart(cfg))
	assert.NotEqual(t, first, e.Session())

	typeInto(e, "Shift_L")
	u := next(t, e)
	assert.Equal(t, "Shift_L", u.Label.Text, "old transcript is gone")
	assert.Equal(t, e.Session(), u.Label.Session)
}

func TestEngineStartErrors(t *testing.T) {
	e := quietEngine()

	bad := DefaultConfig()
	bad.Timeout = -time.Second
	assert.ErrorIs(t, e.Start(bad), ErrInvalidConfig)
	assert.False(t, e.Running())

	require.NoError(t, e.Start(DefaultConfig()))
	assert.ErrorIs(t, e.Start(DefaultConfig()), ErrRunning)
	assert.ErrorIs(t, e.Restart(bad), ErrInvalidConfig)
	assert.True(t, e.Running(), "failed restart keeps the pipeline")

	e.Close()
	e.Close()
	_, ok := <-e.Updates()
	assert.False(t, ok)
	assert.ErrorIs(t, e.Start(DefaultConfig()), ErrClosed)
	assert.False(t, e.Push(press("a")))
}

func TestPipelineIgnoresStaleTicks(t *testing.T) {
	out := make(chan Update, 8)
	o := options{
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		queueSize: 1,
		now:       func() time.Time { return t0 },
	}
	cfg := plain(DefaultConfig())
	cfg.Timeout = time.Hour
	p := newPipeline(cfg, "test", o, out)
	defer p.cancel()
	defer p.stopTimers()

	p.handleKey(press("a"))
	p.handleKey(press("b"))
	require.Len(t, out, 2)
	<-out
	<-out

	p.handleTick(tick{kind: tickTimeout, gen: 1})
	assert.Empty(t, out)
	assert.False(t, p.buf.Empty())

	p.handleTick(tick{kind: tickTimeout, gen: p.gen})
	require.Len(t, out, 1)
	u := <-out
	assert.Equal(t, UpdateClear, u.Kind)
	assert.True(t, p.buf.Empty())

	// A second tick from the same generation is stale after the clear.
	p.handleTick(tick{kind: tickTimeout, gen: u.Label.Generation - 1})
	assert.Empty(t, out)
}
