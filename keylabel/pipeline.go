package keylabel

import (
	"context"
	"log/slog"
	"time"
)

// UpdateKind distinguishes label updates from clears.
type UpdateKind int

const (
	UpdateLabel UpdateKind = iota
	// UpdateClear is sent once when the inactivity timeout empties the label.
	UpdateClear
)

func (k UpdateKind) String() string {
	if k == UpdateClear {
		return "clear"
	}
	return "label"
}

// Update is one message to the display.
type Update struct {
	Kind  UpdateKind
	Label Label
}

type tickKind int

const (
	tickTimeout tickKind = iota
	tickRecent
)

// tick is posted by a timer. It only counts when gen is still current.
type tick struct {
	kind tickKind
	gen  uint64
}

// pipeline owns one run of the engine: tracker, buffer and timers all live
// on its goroutine.
type pipeline struct {
	cfg     Config
	session string
	log     *slog.Logger
	now     func() time.Time
	out     chan<- Update
	in      chan KeyEvent
	ticks   chan tick
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}

	tracker Tracker
	buf     *Buffer
	gen     uint64
	timeout *time.Timer
	recent  *time.Timer
}

func newPipeline(cfg Config, session string, o options, out chan<- Update) *pipeline {
	ctx, cancel := context.WithCancel(context.Background())
	return &pipeline{
		cfg:     cfg,
		session: session,
		log:     o.logger.With("session", session),
		now:     o.now,
		out:     out,
		in:      make(chan KeyEvent, o.queueSize),
		ticks:   make(chan tick, 4),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
		buf:     NewBuffer(cfg, o.maxWidth),
	}
}

func (p *pipeline) run() {
	defer close(p.done)
	defer p.stopTimers()

	for {
		select {
		case <-p.ctx.Done():
			return
		case ev := <-p.in:
			p.handleKey(ev)
		case t := <-p.ticks:
			p.handleTick(t)
		}
	}
}

// push queues ev. It blocks while the queue is full and fails once the
// pipeline is stopped.
func (p *pipeline) push(ev KeyEvent) bool {
	select {
	case <-p.ctx.Done():
		return false
	default:
	}
	select {
	case p.in <- ev:
		return true
	case <-p.ctx.Done():
		return false
	}
}

func (p *pipeline) stop() {
	p.cancel()
	<-p.done
}

func (p *pipeline) handleKey(ev KeyEvent) {
	// An ignored modifier does not take part in chords either.
	if p.cfg.ignores(ev.Keysym) {
		return
	}
	st := p.tracker.Observe(ev)
	r := Translate(ev, st, p.cfg)
	if r.Unknown {
		p.log.Debug("unknown key", "keysym", ev.Keysym, "keycode", ev.Keycode, "symbol", r.Symbol)
	}

	now := p.now()
	if !p.buf.Apply(r, now) {
		return
	}
	p.gen++
	p.buf.Sweep(now, p.cfg.RecentThreshold)
	p.emit(UpdateLabel)
	p.schedule()
}

func (p *pipeline) handleTick(t tick) {
	if t.gen != p.gen {
		p.log.Debug("stale timer", "tick_gen", t.gen, "gen", p.gen)
		return
	}
	switch t.kind {
	case tickTimeout:
		p.buf.Clear()
		p.gen++
		p.stopTimers()
		p.emit(UpdateClear)
	case tickRecent:
		if p.buf.Sweep(p.now(), p.cfg.RecentThreshold) {
			p.emit(UpdateLabel)
		}
	}
}

// schedule re-arms the timers for the current generation.
func (p *pipeline) schedule() {
	p.stopTimers()
	gen := p.gen
	if p.cfg.Timeout > 0 {
		p.timeout = time.AfterFunc(p.cfg.Timeout, func() { p.post(tick{tickTimeout, gen}) })
	}
	if p.cfg.RecentThreshold > 0 {
		p.recent = time.AfterFunc(p.cfg.RecentThreshold, func() { p.post(tick{tickRecent, gen}) })
	}
}

func (p *pipeline) post(t tick) {
	select {
	case p.ticks <- t:
	case <-p.ctx.Done():
	}
}

func (p *pipeline) stopTimers() {
	if p.timeout != nil {
		p.timeout.Stop()
		p.timeout = nil
	}
	if p.recent != nil {
		p.recent.Stop()
		p.recent = nil
	}
}

func (p *pipeline) emit(kind UpdateKind) {
	l := Render(p.buf, p.cfg)
	l.Session = p.session
	l.Generation = p.gen
	select {
	case p.out <- Update{Kind: kind, Label: l}:
	case <-p.ctx.Done():
	}
}
