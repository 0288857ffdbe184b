package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.aimuz.me/screenkey/keylabel"
)

// KeySource produces key transitions until its context ends or Stop is
// called. keycapture.Capture implements it.
type KeySource interface {
	Start(ctx context.Context) (<-chan keylabel.KeyEvent, error)
	Stop()
}

// KeyAdapter pumps a key source into the label engine with proper
// synchronization.
type KeyAdapter struct {
	mu     sync.Mutex
	source KeySource
	cancel context.CancelFunc
	done   chan struct{}
}

// Start begins capture. Stops any existing capture first.
func (ka *KeyAdapter) Start(source KeySource, push func(keylabel.KeyEvent) bool) error {
	ka.mu.Lock()
	defer ka.mu.Unlock()

	ka.stopLocked()

	ctx, cancel := context.WithCancel(context.Background())
	events, err := source.Start(ctx)
	if err != nil {
		cancel()
		return fmt.Errorf("start key source: %w", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		dropped := 0
		for ev := range events {
			if !push(ev) {
				dropped++
			}
		}
		if dropped > 0 {
			slog.Debug("key events dropped while engine stopped", "count", dropped)
		}
	}()

	ka.source = source
	ka.cancel = cancel
	ka.done = done
	return nil
}

// Stop ends capture and waits for the pump to drain.
func (ka *KeyAdapter) Stop() {
	ka.mu.Lock()
	defer ka.mu.Unlock()
	ka.stopLocked()
}

func (ka *KeyAdapter) stopLocked() {
	if ka.source == nil {
		return
	}
	ka.cancel()
	ka.source.Stop()
	<-ka.done

	ka.source = nil
	ka.cancel = nil
	ka.done = nil
}

// Running reports whether a source is attached.
func (ka *KeyAdapter) Running() bool {
	ka.mu.Lock()
	defer ka.mu.Unlock()
	return ka.source != nil
}
