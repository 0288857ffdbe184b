package app

import (
	"log/slog"
	"sync"

	"github.com/wailsapp/wails/v3/pkg/application"

	"go.aimuz.me/screenkey/internal/types"
)

// Surface shows labels to the user. Implementations must be safe for
// concurrent use.
type Surface interface {
	ShowLabel(types.LabelEvent)
	// Clear empties the label. The surface stays visible when persist is set.
	Clear(persist bool)
	SetAppearance(types.Appearance)
	SetStatus(types.Status)
}

// WindowSurface drives the Wails overlay window.
type WindowSurface struct {
	app    *application.App
	window application.Window

	mu         sync.Mutex
	appearance types.Appearance
	placed     bool
}

// NewWindowSurface creates a surface for window.
func NewWindowSurface(app *application.App, window application.Window) *WindowSurface {
	return &WindowSurface{app: app, window: window}
}

// ShowLabel sends the label to the frontend and shows the window.
func (w *WindowSurface) ShowLabel(ev types.LabelEvent) {
	w.mu.Lock()
	if !w.placed {
		w.placeLocked()
	}
	w.mu.Unlock()

	w.emit(EventLabel, ev)
	w.window.Show()
}

// Clear empties the label and hides the window unless persist is set.
func (w *WindowSurface) Clear(persist bool) {
	w.emit(EventClear, nil)
	if !persist {
		w.window.Hide()
	}
}

// SetAppearance restyles and repositions the window.
func (w *WindowSurface) SetAppearance(a types.Appearance) {
	w.emit(EventAppearance, a)

	w.mu.Lock()
	w.appearance = a
	w.placeLocked()
	w.mu.Unlock()

	if a.Persist {
		w.window.Show()
	}
}

// placeLocked moves the window. The screen is unknown until the window has
// been realized, so placement is retried on the next label.
func (w *WindowSurface) placeLocked() {
	screen, err := w.window.GetScreen()
	if err != nil || screen == nil {
		slog.Debug("get window screen", "error", err)
		w.placed = false
		return
	}
	area := types.Rect{
		X:      screen.WorkArea.X,
		Y:      screen.WorkArea.Y,
		Width:  screen.WorkArea.Width,
		Height: screen.WorkArea.Height,
	}
	r := placement(w.appearance, area)
	w.window.SetSize(r.Width, r.Height)
	w.window.SetPosition(r.X, r.Y)
	w.placed = true
}

// SetStatus notifies the frontend of a state change.
func (w *WindowSurface) SetStatus(st types.Status) {
	w.emit(EventStatus, st)
}

// emit is a safe wrapper around app.Event.Emit
func (w *WindowSurface) emit(name string, data any) {
	if w.app != nil {
		w.app.Event.Emit(name, data)
	}
}
