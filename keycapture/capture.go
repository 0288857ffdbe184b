// Package keycapture reads global keyboard events through gohook and hands
// them on as keylabel events.
package keycapture

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	hook "github.com/robotn/gohook"

	"go.aimuz.me/screenkey/keylabel"
)

// ErrRunning is returned by Start while a capture is active. gohook supports
// one listener per process.
var ErrRunning = errors.New("key capture already running")

// Capture is a global keyboard listener.
type Capture struct {
	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates an idle capture.
func New() *Capture {
	return &Capture{}
}

// Start installs the hook and delivers events until ctx is done or Stop is
// called. The returned channel is closed when capture ends.
func (c *Capture) Start(ctx context.Context) (<-chan keylabel.KeyEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil, ErrRunning
	}

	ctx, c.cancel = context.WithCancel(ctx)
	c.done = make(chan struct{})
	c.running = true

	src := hook.Start()
	out := make(chan keylabel.KeyEvent, 64)
	go c.pump(ctx, src, out)

	slog.Info("key capture started")
	return out, nil
}

func (c *Capture) pump(ctx context.Context, src chan hook.Event, out chan<- keylabel.KeyEvent) {
	defer close(c.done)
	defer close(out)
	defer hook.End()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-src:
			if !ok {
				return
			}
			kev, ok := Convert(ev)
			if !ok {
				continue
			}
			select {
			case out <- kev:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Stop removes the hook and waits for the event channel to close.
func (c *Capture) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	c.cancel()
	done := c.done
	c.mu.Unlock()

	<-done
	slog.Info("key capture stopped")
}

// Running reports whether the hook is installed.
func (c *Capture) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Convert turns a gohook event into a key transition. Mouse events and the
// typed-character events that follow a key press are dropped.
func Convert(ev hook.Event) (keylabel.KeyEvent, bool) {
	var pressed bool
	switch ev.Kind {
	case hook.KeyHold:
		pressed = true
	case hook.KeyUp:
	default:
		return keylabel.KeyEvent{}, false
	}

	when := ev.When
	if when.IsZero() {
		when = time.Now()
	}
	return keylabel.KeyEvent{
		Keycode: ev.Keycode,
		Keysym:  Keysym(ev.Keycode),
		Pressed: pressed,
		Time:    when,
	}, true
}
