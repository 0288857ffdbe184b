// Package keylabel turns keyboard events into the text of an on-screen
// keystroke label.
//
// An Engine owns one pipeline at a time. Key events go in through Push and
// rendered labels come out of Updates. A pipeline is built from a complete
// Config and replaced wholesale by Restart.
package keylabel

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrRunning is returned by Start when a pipeline is already running.
	ErrRunning = errors.New("engine already running")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("engine closed")
)

type options struct {
	logger    *slog.Logger
	maxWidth  int
	queueSize int
	now       func() time.Time
}

// Option configures an Engine.
type Option func(*options)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMaxWidth bounds the label width in terminal cells. n <= 0 disables
// eviction.
func WithMaxWidth(n int) Option {
	return func(o *options) { o.maxWidth = n }
}

// WithQueueSize sets how many key events may wait for the pipeline.
func WithQueueSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.queueSize = n
		}
	}
}

// WithClock replaces time.Now for timestamps on runs.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Engine is the keystroke label engine. It is safe for concurrent use.
type Engine struct {
	opts options
	out  chan Update

	// life serializes Start, Stop, Restart and Close.
	life   sync.Mutex
	mu     sync.RWMutex
	cur    *pipeline
	closed bool
}

// New creates a stopped engine.
func New(opts ...Option) *Engine {
	o := options{
		logger:    slog.Default(),
		maxWidth:  DefaultMaxWidth,
		queueSize: 64,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Engine{
		opts: o,
		out:  make(chan Update),
	}
}

// Updates returns the channel labels are delivered on. It is the same
// channel for the life of the engine and is closed by Close.
func (e *Engine) Updates() <-chan Update {
	return e.out
}

// Start launches a pipeline with cfg.
func (e *Engine) Start(cfg Config) error {
	e.life.Lock()
	defer e.life.Unlock()
	return e.start(cfg)
}

func (e *Engine) start(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	if e.cur != nil {
		return ErrRunning
	}

	p := newPipeline(cfg.clone(), uuid.NewString(), e.opts, e.out)
	e.cur = p
	go p.run()

	p.log.Info("label pipeline started",
		"key_mode", cfg.KeyMode,
		"bak_mode", cfg.BackspaceMode,
		"mods_mode", cfg.ModsMode,
		"timeout", cfg.Timeout)
	return nil
}

// Stop halts the running pipeline and waits for it to exit. No update from
// that pipeline is delivered after Stop returns. Stopping a stopped engine
// is a no-op.
func (e *Engine) Stop() {
	e.life.Lock()
	defer e.life.Unlock()
	e.stop()
}

func (e *Engine) stop() {
	e.mu.Lock()
	p := e.cur
	e.cur = nil
	e.mu.Unlock()

	if p == nil {
		return
	}
	p.stop()
	p.log.Debug("label pipeline stopped")
}

// Restart replaces the running pipeline with a fresh one built from cfg.
// The old transcript is discarded.
func (e *Engine) Restart(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("restart: %w", err)
	}
	e.life.Lock()
	defer e.life.Unlock()
	e.stop()
	return e.start(cfg)
}

// Running reports whether a pipeline is active.
func (e *Engine) Running() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cur != nil
}

// Session returns the id of the running pipeline, or "".
func (e *Engine) Session() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.cur == nil {
		return ""
	}
	return e.cur.session
}

// Push hands a key event to the running pipeline. It reports false when no
// pipeline is running.
func (e *Engine) Push(ev KeyEvent) bool {
	e.mu.RLock()
	p := e.cur
	e.mu.RUnlock()
	if p == nil {
		return false
	}
	return p.push(ev)
}

// Close stops the engine for good and closes the updates channel.
func (e *Engine) Close() {
	e.life.Lock()
	defer e.life.Unlock()

	e.stop()
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.closed {
		e.closed = true
		close(e.out)
	}
}
