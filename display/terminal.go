// Package display renders key labels outside the overlay window.
package display

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"go.aimuz.me/screenkey/internal/types"
)

// clearLine returns the cursor to column 0 and erases the line.
const clearLine = "\r\x1b[2K"

// Terminal draws the label on a single terminal line. It is used for
// headless runs and for debugging over SSH.
type Terminal struct {
	mu   sync.Mutex
	w    io.Writer
	r    *lipgloss.Renderer
	base lipgloss.Style
}

// NewTerminal creates a terminal surface writing to w.
func NewTerminal(w io.Writer) *Terminal {
	r := lipgloss.NewRenderer(w)
	return &Terminal{
		w: w,
		r: r,
		base: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffff00")).
			Background(lipgloss.Color("#000000")),
	}
}

// ShowLabel redraws the line with the label.
func (t *Terminal) ShowLabel(ev types.LabelEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var sb strings.Builder
	sb.WriteString(t.base.Render(" "))
	for _, seg := range ev.Segments {
		text := strings.ReplaceAll(seg.Text, "\n", " ")
		if text == "" {
			continue
		}
		sb.WriteString(t.segmentStyle(seg).Render(text))
	}
	sb.WriteString(t.base.Render(" "))
	t.write(clearLine + sb.String())
}

func (t *Terminal) segmentStyle(seg types.LabelSegment) lipgloss.Style {
	st := t.base
	if seg.Recent {
		st = st.Underline(true)
	}
	if seg.Struck {
		st = st.Strikethrough(true)
	}
	return st
}

// Clear erases the line. A persistent surface keeps an empty bar.
func (t *Terminal) Clear(persist bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if persist {
		t.write(clearLine + t.base.Render("  "))
		return
	}
	t.write(clearLine)
}

// SetAppearance adopts the overlay colours and font weight.
func (t *Terminal) SetAppearance(a types.Appearance) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.base = t.r.NewStyle().
		Bold(a.FontWeight == "bold").
		Italic(a.FontStyle == "italic").
		Foreground(lipgloss.Color(a.ForeHex)).
		Background(lipgloss.Color(a.BackHex))
}

// SetStatus logs state changes; the terminal has no menu to update.
func (t *Terminal) SetStatus(st types.Status) {
	slog.Debug("status changed",
		"enabled", st.Enabled,
		"session", st.Session,
		"key_mode", st.KeyMode)
}

func (t *Terminal) write(s string) {
	if _, err := fmt.Fprint(t.w, s); err != nil {
		slog.Debug("write terminal label", "error", err)
	}
}
