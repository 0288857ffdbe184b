package keylabel

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// keyRepl describes how a named key is displayed outside raw mode.
type keyRepl struct {
	repl string
	// text keys insert whitespace and are treated as literals.
	text bool
	// spaced keys are separated from their neighbours by a space.
	spaced bool
}

var replaceSyms = map[string]keyRepl{
	"Escape":       {"Esc", false, true},
	"Tab":          {"↹", true, false},
	"ISO_Left_Tab": {"↹", true, false},
	"Return":       {"⏎", true, false},
	"KP_Enter":     {"⏎", true, false},
	"BackSpace":    {"⌫", false, false},
	"Caps_Lock":    {"Caps", false, true},
	"Num_Lock":     {"NumLk", false, true},
	"Scroll_Lock":  {"ScrLk", false, true},
	"Pause":        {"Pause", false, true},
	"Print":        {"Print", false, true},
	"Multi_key":    {"Compose", false, true},
	"Menu":         {"Menu", false, true},
	"Up":           {"↑", false, false},
	"Down":         {"↓", false, false},
	"Left":         {"←", false, false},
	"Right":        {"→", false, false},
	"KP_Up":        {"↑", false, false},
	"KP_Down":      {"↓", false, false},
	"KP_Left":      {"←", false, false},
	"KP_Right":     {"→", false, false},
	"Prior":        {"PgUp", false, true},
	"Next":         {"PgDn", false, true},
	"KP_Prior":     {"PgUp", false, true},
	"KP_Next":      {"PgDn", false, true},
	"Home":         {"Home", false, true},
	"End":          {"End", false, true},
	"KP_Home":      {"Home", false, true},
	"KP_End":       {"End", false, true},
	"Insert":       {"Ins", false, true},
	"Delete":       {"Del", false, true},
	"KP_Insert":    {"Ins", false, true},
	"KP_Delete":    {"Del", false, true},
}

// emacsSyms are the Emacs spellings of keys inside a chord.
var emacsSyms = map[string]string{
	"space":     "SPC",
	"Return":    "RET",
	"KP_Enter":  "RET",
	"Tab":       "TAB",
	"Escape":    "ESC",
	"BackSpace": "DEL",
	"Delete":    "<delete>",
}

// printableSyms maps keysym names of printable keys to their unshifted text.
var printableSyms = map[string]string{
	"space":        " ",
	"exclam":       "!",
	"quotedbl":     "\"",
	"numbersign":   "#",
	"dollar":       "$",
	"percent":      "%",
	"ampersand":    "&",
	"apostrophe":   "'",
	"parenleft":    "(",
	"parenright":   ")",
	"asterisk":     "*",
	"plus":         "+",
	"comma":        ",",
	"minus":        "-",
	"period":       ".",
	"slash":        "/",
	"colon":        ":",
	"semicolon":    ";",
	"less":         "<",
	"equal":        "=",
	"greater":      ">",
	"question":     "?",
	"at":           "@",
	"bracketleft":  "[",
	"backslash":    "\\",
	"bracketright": "]",
	"asciicircum":  "^",
	"underscore":   "_",
	"grave":        "`",
	"braceleft":    "{",
	"bar":          "|",
	"braceright":   "}",
	"asciitilde":   "~",
	"KP_Add":       "+",
	"KP_Subtract":  "-",
	"KP_Multiply":  "*",
	"KP_Divide":    "/",
	"KP_Decimal":   ".",
	"KP_Equal":     "=",
}

// usShift is the shifted counterpart of each key on a US layout.
var usShift = map[string]string{
	"1": "!", "2": "@", "3": "#", "4": "$", "5": "%",
	"6": "^", "7": "&", "8": "*", "9": "(", "0": ")",
	"-": "_", "=": "+", "[": "{", "]": "}", "\\": "|",
	";": ":", "'": "\"", ",": "<", ".": ">", "/": "?", "`": "~",
}

// modNames spells each modifier for chords, indexed by ModsMode.
var modNames = []struct {
	mod   Modifiers
	names [3]string
}{
	{ModCtrl, [3]string{"Ctrl+", "C-", "⌘"}},
	{ModAlt, [3]string{"Alt+", "M-", "⌥"}},
	{ModSuper, [3]string{"Super+", "s-", "❖"}},
	{ModHyper, [3]string{"Hyper+", "H-", "✦"}},
	{ModAltGr, [3]string{"AltGr+", "AltGr-", "⌥"}},
	{ModShift, [3]string{"Shift+", "S-", "⇧"}},
}

// chordPrefix spells the modifiers in mods in a fixed order.
func chordPrefix(mods Modifiers, mode ModsMode) string {
	var b strings.Builder
	for _, n := range modNames {
		if mods.Any(n.mod) {
			b.WriteString(n.names[mode])
		}
	}
	return b.String()
}

// modifierName is the stand-alone name of a single modifier.
func modifierName(mod Modifiers, mode ModsMode) string {
	name := chordPrefix(mod, mode)
	if mode == ModsModeNormal {
		name = strings.TrimSuffix(name, "+")
	}
	return name
}

// keypadDigit returns the digit of a KP_0..KP_9 keysym.
func keypadDigit(keysym string) (string, bool) {
	d, ok := strings.CutPrefix(keysym, "KP_")
	if ok && len(d) == 1 && d[0] >= '0' && d[0] <= '9' {
		return d, true
	}
	return "", false
}

// baseText returns the unshifted text a printable keysym produces.
func baseText(keysym string) (string, bool) {
	if s, ok := printableSyms[keysym]; ok {
		return s, true
	}
	if d, ok := keypadDigit(keysym); ok {
		return d, true
	}
	if utf8.RuneCountInString(keysym) == 1 {
		r, _ := utf8.DecodeRuneInString(keysym)
		if unicode.IsPrint(r) {
			return keysym, true
		}
	}
	return "", false
}

// layoutText applies shift and caps lock the way a US layout does.
func layoutText(base string, mods Modifiers) string {
	r, _ := utf8.DecodeRuneInString(base)
	if unicode.IsLetter(r) {
		if mods.Has(ModShift) != mods.Has(ModCapsLock) {
			return strings.ToUpper(base)
		}
		return strings.ToLower(base)
	}
	if mods.Has(ModShift) {
		if s, ok := usShift[base]; ok {
			return s
		}
	}
	return base
}

func isFunctionKey(keysym string) bool {
	n, ok := strings.CutPrefix(keysym, "F")
	if !ok || n == "" || len(n) > 2 {
		return false
	}
	for _, c := range n {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// isKnownKeysym reports whether the tables recognise keysym.
func isKnownKeysym(keysym string) bool {
	if _, ok := replaceSyms[keysym]; ok {
		return true
	}
	if _, ok := baseText(keysym); ok {
		return true
	}
	return ModifierOf(keysym) != 0 || isFunctionKey(keysym)
}
