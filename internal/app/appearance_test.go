package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go.aimuz.me/screenkey/config"
	"go.aimuz.me/screenkey/internal/types"
	"go.aimuz.me/screenkey/keylabel"
)

func TestSplitFontDesc(t *testing.T) {
	tests := []struct {
		desc                  string
		family, weight, style string
	}{
		{"Sans Bold", "Sans", "bold", "normal"},
		{"DejaVu Sans Mono", "DejaVu Sans Mono", "normal", "normal"},
		{"Serif Bold Italic", "Serif", "bold", "italic"},
		{"", "sans-serif", "normal", "normal"},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			family, weight, style := splitFontDesc(tt.desc)
			assert.Equal(t, tt.family, family)
			assert.Equal(t, tt.weight, weight)
			assert.Equal(t, tt.style, style)
		})
	}
}

func TestAppearanceFrom(t *testing.T) {
	s := config.Default()
	s.Position = config.PositionFixed
	s.Geometry = &config.Geometry{X: 1, Y: 2, Width: 3, Height: 4}

	a := appearanceFrom(s)
	assert.Equal(t, "Sans", a.FontFamily)
	assert.Equal(t, "bold", a.FontWeight)
	assert.Equal(t, 12, a.FontSize)
	assert.Equal(t, "rgba(255, 255, 0, 1)", a.Foreground)
	assert.Equal(t, "rgba(0, 0, 0, 0.8)", a.Background)
	assert.Equal(t, "#ffff00", a.ForeHex)
	assert.Equal(t, "#000000", a.BackHex)
	assert.Equal(t, &types.Rect{X: 1, Y: 2, Width: 3, Height: 4}, a.Geometry)

	// The geometry is copied, not shared.
	s.Geometry.X = 99
	assert.Equal(t, 1, a.Geometry.X)
}

func TestPlacement(t *testing.T) {
	area := types.Rect{X: 0, Y: 20, Width: 1000, Height: 800}
	tests := []struct {
		name     string
		position string
		want     types.Rect
	}{
		{"top", config.PositionTop, types.Rect{X: 0, Y: 100, Width: 1000, Height: 48}},
		{"center", config.PositionCenter, types.Rect{X: 0, Y: 396, Width: 1000, Height: 48}},
		{"bottom", config.PositionBottom, types.Rect{X: 0, Y: 692, Width: 1000, Height: 48}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := types.Appearance{FontSize: 12, Position: tt.position}
			assert.Equal(t, tt.want, placement(a, area))
		})
	}

	fixed := types.Appearance{
		FontSize: 12,
		Position: config.PositionFixed,
		Geometry: &types.Rect{X: 5, Y: 6, Width: 7, Height: 8},
	}
	assert.Equal(t, types.Rect{X: 5, Y: 6, Width: 7, Height: 8}, placement(fixed, area))
}

func TestLabelEvent(t *testing.T) {
	l := keylabel.Label{
		Session:    "s1",
		Generation: 4,
		Text:       "ab",
		Markup:     "<u>a</u>b",
		Segments: []keylabel.Segment{
			{Text: "a", Recent: true},
			{Text: "b"},
		},
		Lines: 1,
	}
	ev := labelEvent(l)
	assert.Equal(t, "s1", ev.Session)
	assert.Equal(t, uint64(4), ev.Generation)
	assert.Equal(t, []types.LabelSegment{{Text: "a", Recent: true}, {Text: "b"}}, ev.Segments)
}
