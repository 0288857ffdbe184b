// Package types provides shared type definitions for the application.
package types

// ─────────────────────────────────────────────────────────────────────────────
// Label Types
// ─────────────────────────────────────────────────────────────────────────────

// LabelSegment is a run of label text with one style.
type LabelSegment struct {
	Text   string `json:"text"`
	Recent bool   `json:"recent"` // Typed within the recency threshold
	Struck bool   `json:"struck"` // Deleted in full backspace mode
}

// LabelEvent is sent to the overlay whenever the label changes.
type LabelEvent struct {
	Session    string         `json:"session"`    // Pipeline that produced the label
	Generation uint64         `json:"generation"` // Increases with every content change
	Text       string         `json:"text"`       // Plain text, lines separated by "\n"
	Markup     string         `json:"markup"`     // Pango-style markup
	Segments   []LabelSegment `json:"segments"`
	Lines      int            `json:"lines"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Window Types
// ─────────────────────────────────────────────────────────────────────────────

// Rect is a screen area in pixels.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Appearance describes how the overlay looks and where it sits.
type Appearance struct {
	FontFamily string `json:"fontFamily"`
	FontWeight string `json:"fontWeight"` // "normal" or "bold"
	FontStyle  string `json:"fontStyle"`  // "normal" or "italic"
	FontSize   int    `json:"fontSize"`   // Points
	Foreground string `json:"foreground"` // CSS colour
	Background string `json:"background"` // CSS colour including opacity
	ForeHex    string `json:"foreHex"`    // #rrggbb, for terminals
	BackHex    string `json:"backHex"`
	Position   string `json:"position"`           // top, center, bottom or fixed
	Geometry   *Rect  `json:"geometry,omitempty"` // Only for fixed position
	Persist    bool   `json:"persist"`
}

// Status is the state shown in the tray menu and settings page.
type Status struct {
	Enabled  bool   `json:"enabled"`
	Session  string `json:"session"`
	KeyMode  string `json:"keyMode"`
	BakMode  string `json:"bakMode"`
	ModsMode string `json:"modsMode"`
	Persist  bool   `json:"persist"`
}
