package display

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"go.aimuz.me/screenkey/internal/types"
)

func TestTerminalShowLabel(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf)

	term.ShowLabel(types.LabelEvent{
		Text: "hel\nlo",
		Segments: []types.LabelSegment{
			{Text: "hel"},
			{Text: "\n"},
			{Text: "lo", Recent: true},
		},
	})

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, clearLine))
	assert.Contains(t, out, "hel")
	assert.Contains(t, out, "lo")
	assert.NotContains(t, out, "\n")
}

func TestTerminalClear(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf)

	term.Clear(false)
	assert.Equal(t, clearLine, buf.String())

	buf.Reset()
	term.Clear(true)
	assert.True(t, strings.HasPrefix(buf.String(), clearLine))
	assert.Greater(t, buf.Len(), len(clearLine))
}

func TestTerminalSetAppearance(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf)

	term.SetAppearance(types.Appearance{FontWeight: "normal", ForeHex: "#ffffff", BackHex: "#202020"})
	term.ShowLabel(types.LabelEvent{Segments: []types.LabelSegment{{Text: "x", Struck: true}}})
	assert.Contains(t, buf.String(), "x")
}
