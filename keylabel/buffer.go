package keylabel

import (
	"slices"
	"strings"
	"time"

	"github.com/rivo/uniseg"
)

// DefaultMaxWidth bounds the rendered transcript, in terminal cells.
const DefaultMaxWidth = 60

// Run is a group of identical consecutive symbols.
type Run struct {
	Symbol string
	Kind   Kind
	Count  int

	CreatedAt time.Time
	// TouchedAt is the last time the run grew or changed.
	TouchedAt time.Time
	Recent    bool

	// Deleted runs are shown struck through.
	Deleted bool
	Spaced  bool

	// marker runs record a backspace in full mode.
	marker bool
}

// Buffer is the visible transcript. It is owned by one goroutine.
type Buffer struct {
	cfg      Config
	maxWidth int
	runs     []Run
}

// NewBuffer creates an empty buffer. maxWidth <= 0 disables eviction.
func NewBuffer(cfg Config, maxWidth int) *Buffer {
	return &Buffer{
		cfg:      cfg,
		maxWidth: maxWidth,
		runs:     make([]Run, 0, 32),
	}
}

// Apply performs a translated action and reports whether the content changed.
func (b *Buffer) Apply(r Result, now time.Time) bool {
	switch r.Action {
	case Emit:
		b.Append(r.Symbol, r.Kind, r.Spaced, now)
		return true
	case Backspace:
		return b.Backspace(r.Symbol, now)
	default:
		return false
	}
}

// Append adds a symbol, growing the tail run when it repeats.
func (b *Buffer) Append(symbol string, kind Kind, spaced bool, now time.Time) {
	b.push(Run{
		Symbol:    symbol,
		Kind:      kind,
		Count:     1,
		CreatedAt: now,
		TouchedAt: now,
		Spaced:    spaced,
	})
	b.evict()
}

func (b *Buffer) push(r Run) {
	r.Recent = b.cfg.RecentThreshold > 0
	if n := len(b.runs); n > 0 && mergeable(b.runs[n-1], r) {
		tail := &b.runs[n-1]
		tail.Count += r.Count
		tail.TouchedAt = r.TouchedAt
		tail.Recent = r.Recent
		return
	}
	b.runs = append(b.runs, r)
}

func mergeable(a, c Run) bool {
	return a.Symbol == c.Symbol &&
		a.Kind == c.Kind &&
		a.Kind != KindNewline &&
		a.Deleted == c.Deleted &&
		a.marker == c.marker
}

// Backspace applies the configured backspace mode. glyph is what the key
// looks like when it is shown rather than performed.
func (b *Buffer) Backspace(glyph string, now time.Time) bool {
	switch b.cfg.BackspaceMode {
	case BackspaceBaked:
		return b.bake(glyph, now)
	case BackspaceFull:
		return b.strike(glyph, now)
	default:
		b.Append(glyph, KindControl, false, now)
		return true
	}
}

// bake deletes the last literal symbol or line break. Keys that are not
// text stop it.
func (b *Buffer) bake(glyph string, now time.Time) bool {
	n := len(b.runs)
	if n == 0 {
		return false
	}
	tail := &b.runs[n-1]
	text := tail.Kind == KindLiteral || tail.Kind == KindNewline
	if !text || tail.Deleted || tail.marker {
		b.Append(glyph, KindControl, false, now)
		return true
	}
	tail.Count--
	tail.TouchedAt = now
	if tail.Count == 0 {
		b.runs = b.runs[:n-1]
	}
	return true
}

// strike marks the last live literal symbol deleted and records a marker.
func (b *Buffer) strike(glyph string, now time.Time) bool {
	if len(b.runs) == 0 {
		return false
	}
	for i := len(b.runs) - 1; i >= 0; i-- {
		r := &b.runs[i]
		if r.marker || r.Deleted {
			continue
		}
		if r.Kind == KindLiteral {
			b.strikeAt(i, now)
		}
		break
	}
	b.push(Run{
		Symbol:    glyph,
		Kind:      KindControl,
		Count:     1,
		CreatedAt: now,
		TouchedAt: now,
		marker:    true,
	})
	b.evict()
	return true
}

func (b *Buffer) strikeAt(i int, now time.Time) {
	r := &b.runs[i]
	if r.Count == 1 {
		r.Deleted = true
		r.TouchedAt = now
		r.Recent = b.cfg.RecentThreshold > 0
	} else {
		r.Count--
		b.runs = slices.Insert(b.runs, i+1, Run{
			Symbol:    r.Symbol,
			Kind:      r.Kind,
			Count:     1,
			CreatedAt: r.CreatedAt,
			TouchedAt: now,
			Recent:    b.cfg.RecentThreshold > 0,
			Deleted:   true,
			Spaced:    r.Spaced,
		})
		i++
	}
	if i+1 < len(b.runs) && mergeable(b.runs[i], b.runs[i+1]) {
		b.runs[i].Count += b.runs[i+1].Count
		b.runs = slices.Delete(b.runs, i+1, i+2)
	}
}

// evict drops the oldest runs until the transcript fits. The tail run is
// never dropped.
func (b *Buffer) evict() {
	if b.maxWidth <= 0 {
		return
	}
	for len(b.runs) > 1 && b.Width() > b.maxWidth {
		b.runs = slices.Delete(b.runs, 0, 1)
		for len(b.runs) > 1 && b.runs[0].Kind == KindNewline {
			b.runs = slices.Delete(b.runs, 0, 1)
		}
	}
}

// Sweep clears the recent flag of runs untouched for at least threshold.
func (b *Buffer) Sweep(now time.Time, threshold time.Duration) bool {
	changed := false
	for i := range b.runs {
		r := &b.runs[i]
		if r.Recent && now.Sub(r.TouchedAt) >= threshold {
			r.Recent = false
			changed = true
		}
	}
	return changed
}

// Clear empties the buffer.
func (b *Buffer) Clear() {
	b.runs = b.runs[:0]
}

// Empty reports whether there is nothing to show.
func (b *Buffer) Empty() bool {
	return len(b.runs) == 0
}

// Len is the number of symbols, counting repeats, struck symbols and markers.
func (b *Buffer) Len() int {
	n := 0
	for _, r := range b.runs {
		n += r.Count
	}
	return n
}

// Width is the rendered width in terminal cells. A line break counts as one.
func (b *Buffer) Width() int {
	text := renderText(b.runs, b.cfg)
	return uniseg.StringWidth(strings.ReplaceAll(text, "\n", " "))
}

// Runs returns a copy of the runs, oldest first.
func (b *Buffer) Runs() []Run {
	return slices.Clone(b.runs)
}

// Lines returns the runs split into lines. Newline runs are not included.
func (b *Buffer) Lines() [][]Run {
	return splitLines(b.runs)
}

func splitLines(runs []Run) [][]Run {
	lines := [][]Run{nil}
	for _, r := range runs {
		if r.Kind == KindNewline {
			for range r.Count {
				lines = append(lines, nil)
			}
			continue
		}
		lines[len(lines)-1] = append(lines[len(lines)-1], r)
	}
	return lines
}
