package app

import (
	"strings"

	"go.aimuz.me/screenkey/config"
	"go.aimuz.me/screenkey/internal/types"
	"go.aimuz.me/screenkey/keylabel"
)

// appearanceFrom converts settings into what the overlay needs.
func appearanceFrom(s *config.Settings) types.Appearance {
	family, weight, style := splitFontDesc(s.FontDesc)
	a := types.Appearance{
		FontFamily: family,
		FontWeight: weight,
		FontStyle:  style,
		FontSize:   s.FontSize,
		Foreground: cssColor(s.FontColor, 1, "rgba(255, 255, 0, 1)"),
		Background: cssColor(s.BgColor, s.Opacity, "rgba(0, 0, 0, 0.8)"),
		ForeHex:    hexColor(s.FontColor, "#ffff00"),
		BackHex:    hexColor(s.BgColor, "#000000"),
		Position:   s.Position,
		Persist:    s.Persist,
	}
	if g := s.Geometry; g != nil {
		a.Geometry = &types.Rect{X: g.X, Y: g.Y, Width: g.Width, Height: g.Height}
	}
	return a
}

// splitFontDesc reads a Pango font description such as "Sans Bold Italic".
func splitFontDesc(desc string) (family, weight, style string) {
	weight, style = "normal", "normal"
	var rest []string
	for _, f := range strings.Fields(desc) {
		switch strings.ToLower(f) {
		case "bold":
			weight = "bold"
		case "italic", "oblique":
			style = "italic"
		default:
			rest = append(rest, f)
		}
	}
	family = strings.Join(rest, " ")
	if family == "" {
		family = "sans-serif"
	}
	return family, weight, style
}

func cssColor(s string, opacity float64, fallback string) string {
	css, err := config.CSSColor(s, opacity)
	if err != nil {
		return fallback
	}
	return css
}

func hexColor(s, fallback string) string {
	c, _, err := config.ParseColor(s)
	if err != nil {
		return fallback
	}
	return c.Hex()
}

// placement computes the overlay rectangle inside a screen area.
func placement(a types.Appearance, area types.Rect) types.Rect {
	if a.Position == config.PositionFixed && a.Geometry != nil {
		return *a.Geometry
	}

	height := a.FontSize * area.Height / 200
	r := types.Rect{X: area.X, Width: area.Width, Height: height}
	switch a.Position {
	case config.PositionTop:
		r.Y = area.Y + area.Height/10
	case config.PositionCenter:
		r.Y = area.Y + area.Height/2 - height/2
	default:
		r.Y = area.Y + area.Height*9/10 - height
	}
	return r
}

func labelEvent(l keylabel.Label) types.LabelEvent {
	segs := make([]types.LabelSegment, len(l.Segments))
	for i, s := range l.Segments {
		segs[i] = types.LabelSegment{Text: s.Text, Recent: s.Recent, Struck: s.Struck}
	}
	return types.LabelEvent{
		Session:    l.Session,
		Generation: l.Generation,
		Text:       l.Text,
		Markup:     l.Markup,
		Segments:   segs,
		Lines:      l.Lines,
	}
}
