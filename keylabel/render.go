package keylabel

import (
	"html"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Segment is a stretch of label text with uniform styling.
type Segment struct {
	Text   string `json:"text"`
	Recent bool   `json:"recent,omitempty"`
	Struck bool   `json:"struck,omitempty"`
}

// Label is a rendered snapshot of the buffer.
type Label struct {
	Session    string `json:"session"`
	Generation uint64 `json:"generation"`
	// Text is the plain text, lines separated by "\n".
	Text string `json:"text"`
	// Markup is Pango compatible: <u> for recent runs, <s> for struck ones.
	Markup   string    `json:"markup"`
	Segments []Segment `json:"segments"`
	Lines    int       `json:"lines"`
}

// Render converts the buffer into a label. Session and Generation are left
// for the caller to fill.
func Render(b *Buffer, cfg Config) Label {
	segs := renderSegments(b.runs, cfg)
	var text, markup strings.Builder
	for _, s := range segs {
		text.WriteString(s.Text)
		markup.WriteString(s.markup())
	}
	return Label{
		Text:     text.String(),
		Markup:   markup.String(),
		Segments: segs,
		Lines:    len(splitLines(b.runs)),
	}
}

func (s Segment) markup() string {
	m := html.EscapeString(s.Text)
	if s.Struck {
		m = "<s>" + m + "</s>"
	}
	if s.Recent {
		m = "<u>" + m + "</u>"
	}
	return m
}

func renderText(runs []Run, cfg Config) string {
	var b strings.Builder
	for _, s := range renderSegments(runs, cfg) {
		b.WriteString(s.Text)
	}
	return b.String()
}

// renderSegments lays out runs line by line and coalesces equal styles.
func renderSegments(runs []Run, cfg Config) []Segment {
	var segs []Segment
	add := func(s Segment) {
		if s.Text == "" {
			return
		}
		if n := len(segs); n > 0 && segs[n-1].Recent == s.Recent && segs[n-1].Struck == s.Struck {
			segs[n-1].Text += s.Text
			return
		}
		segs = append(segs, s)
	}

	for i, line := range splitLines(runs) {
		if i > 0 {
			add(Segment{Text: "\n"})
		}
		for j, r := range line {
			if j > 0 && (r.Spaced || line[j-1].Spaced) {
				prev := line[j-1]
				add(Segment{
					Text:   " ",
					Recent: prev.Recent && r.Recent,
					Struck: prev.Deleted && r.Deleted,
				})
			}
			add(Segment{
				Text:   runText(r, cfg.CompressCount),
				Recent: r.Recent,
				Struck: r.Deleted,
			})
		}
	}
	for i := range segs {
		segs[i].Text = norm.NFC.String(segs[i].Text)
	}
	return segs
}

// runText spells a run, as "sym×N" once it repeats more than compress times.
func runText(r Run, compress int) string {
	if compress > 0 && r.Count > compress {
		return r.Symbol + "×" + strconv.Itoa(r.Count)
	}
	if r.Spaced && r.Count > 1 {
		return strings.TrimSuffix(strings.Repeat(r.Symbol+" ", r.Count), " ")
	}
	return strings.Repeat(r.Symbol, r.Count)
}
