package keylabel

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Action is what a translated key does to the buffer.
type Action int

const (
	Suppressed Action = iota
	Emit
	Backspace
)

func (a Action) String() string {
	switch a {
	case Emit:
		return "emit"
	case Backspace:
		return "backspace"
	default:
		return "suppressed"
	}
}

// Kind classifies a displayed symbol.
type Kind int

const (
	KindLiteral Kind = iota
	KindControl
	KindChord
	// KindNewline separates lines in multiline mode.
	KindNewline
)

func (k Kind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindControl:
		return "control"
	case KindChord:
		return "chord"
	case KindNewline:
		return "newline"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Result is the outcome of translating one key event.
type Result struct {
	Action Action
	Symbol string
	Kind   Kind
	Spaced bool
	// Unknown is set when the keysym was not recognised and the symbol is a
	// best-effort name.
	Unknown bool
}

type translateFunc func(KeyEvent, ModifierState, Config) Result

var translators = [...]translateFunc{
	KeyModeComposed:   translateComposed,
	KeyModeTranslated: translateTranslated,
	KeyModeKeysyms:    translateKeysyms,
	KeyModeRaw:        translateRaw,
}

// Translate maps a key transition and the modifier state to a display action.
func Translate(ev KeyEvent, st ModifierState, cfg Config) Result {
	if cfg.ignores(ev.Keysym) {
		return Result{}
	}
	if cfg.KeyMode < 0 || int(cfg.KeyMode) >= len(translators) {
		return Result{}
	}
	if cfg.ModsMode < 0 || int(cfg.ModsMode) >= len(modsModeNames) {
		return Result{}
	}
	r := translators[cfg.KeyMode](ev, st, cfg)
	if cfg.ModsOnly {
		r = modsOnly(ev, st, cfg, r)
	}
	return r
}

// modsOnly keeps only modifier sequences.
func modsOnly(ev KeyEvent, st ModifierState, cfg Config, r Result) Result {
	switch {
	case r.Action != Emit:
		return Result{}
	case r.Kind == KindChord:
		return r
	case cfg.KeyMode == KeyModeComposed:
		return Result{}
	case st.Held.Any(chordMods) || ModifierOf(ev.Keysym) != 0:
		return r
	}
	return Result{}
}

func translateRaw(ev KeyEvent, _ ModifierState, cfg Config) Result {
	if !ev.Pressed {
		return Result{}
	}
	name := ev.Keysym
	if name == "" {
		return degraded(ev)
	}
	if name == "BackSpace" {
		return Result{Action: Backspace, Symbol: name, Kind: KindControl}
	}
	if r, ok := whitespace(name, cfg); ok && r.Kind == KindNewline {
		return r
	}
	r := Result{Action: Emit, Symbol: name, Unknown: !isKnownKeysym(name)}
	if utf8.RuneCountInString(name) > 1 {
		r.Kind = KindControl
		r.Spaced = true
	}
	return r
}

func translateKeysyms(ev KeyEvent, _ ModifierState, cfg Config) Result {
	if !ev.Pressed {
		return Result{}
	}
	if ev.Keysym == "BackSpace" {
		return backspace()
	}
	if r, ok := modifierKey(ev.Keysym, cfg); ok {
		return r
	}
	if r, ok := whitespace(ev.Keysym, cfg); ok {
		return r
	}
	if r, ok := namedKey(ev.Keysym); ok {
		return r
	}
	if text, ok := baseText(ev.Keysym); ok {
		return literal(text)
	}
	return degraded(ev)
}

func translateTranslated(ev KeyEvent, st ModifierState, cfg Config) Result {
	if !ev.Pressed {
		return Result{}
	}
	if ev.Keysym == "BackSpace" {
		return backspace()
	}
	if r, ok := modifierKey(ev.Keysym, cfg); ok {
		return r
	}
	if r, ok := whitespace(ev.Keysym, cfg); ok {
		return r
	}
	if text, ok := keyText(ev, st.Held); ok {
		return literal(text)
	}
	if r, ok := namedKey(ev.Keysym); ok {
		return r
	}
	return degraded(ev)
}

func translateComposed(ev KeyEvent, st ModifierState, cfg Config) Result {
	if !ev.Pressed {
		if st.Tapped == 0 || (st.Tapped == ModShift && !cfg.VisShift) {
			return Result{}
		}
		return control(modifierName(st.Tapped, cfg.ModsMode), true)
	}
	if ModifierOf(ev.Keysym) != 0 {
		// Shown with the next key, or on release if tapped alone.
		return Result{}
	}

	mods := st.Held & (chordMods | ModShift | ModAltGr)
	if mods.Has(ModShift) && !mods.Any(chordMods) && !cfg.VisShift && shiftIsText(ev.Keysym) {
		mods &^= ModShift
	}
	if mods.Any(chordMods | ModShift) {
		return chord(ev, mods&^ModAltGr, cfg)
	}
	return translateTranslated(ev, st, cfg)
}

// chord spells a modifier combination and its key as one symbol.
func chord(ev KeyEvent, mods Modifiers, cfg Config) Result {
	return Result{
		Action: Emit,
		Symbol: chordPrefix(mods, cfg.ModsMode) + chordKey(ev, cfg.ModsMode),
		Kind:   KindChord,
		Spaced: true,
	}
}

func chordKey(ev KeyEvent, mode ModsMode) string {
	if mode == ModsModeEmacs {
		if s, ok := emacsSyms[ev.Keysym]; ok {
			return s
		}
	}
	if ev.Keysym == "space" {
		return "Space"
	}
	if base, ok := baseText(ev.Keysym); ok {
		if mode == ModsModeEmacs {
			return strings.ToLower(base)
		}
		return strings.ToUpper(base)
	}
	if rep, ok := replaceSyms[ev.Keysym]; ok {
		return rep.repl
	}
	if ev.Keysym == "" {
		return degraded(ev).Symbol
	}
	return ev.Keysym
}

// keyText is the text the layout produces for ev, ignoring shortcuts.
func keyText(ev KeyEvent, held Modifiers) (string, bool) {
	if ev.Text != "" && !held.Any(chordMods) && isPrintable(ev.Text) {
		return ev.Text, true
	}
	if base, ok := baseText(ev.Keysym); ok {
		return layoutText(base, held), true
	}
	return "", false
}

func modifierKey(keysym string, cfg Config) (Result, bool) {
	mod := ModifierOf(keysym)
	if mod == 0 {
		return Result{}, false
	}
	if mod == ModShift && !cfg.VisShift {
		return Result{}, true
	}
	return control(modifierName(mod, cfg.ModsMode), true), true
}

func whitespace(keysym string, cfg Config) (Result, bool) {
	switch keysym {
	case "space":
		if cfg.VisSpace {
			return literal("␣"), true
		}
		return literal(" "), true
	case "Return", "KP_Enter":
		if cfg.Multiline {
			return Result{Action: Emit, Symbol: "\n", Kind: KindNewline}, true
		}
	}
	return Result{}, false
}

func namedKey(keysym string) (Result, bool) {
	if rep, ok := replaceSyms[keysym]; ok {
		if rep.text {
			return literal(rep.repl), true
		}
		return control(rep.repl, rep.spaced), true
	}
	if isFunctionKey(keysym) {
		return control(keysym, true), true
	}
	return Result{}, false
}

// shiftIsText reports whether Shift+keysym is ordinary typing rather than a
// shortcut.
func shiftIsText(keysym string) bool {
	if _, ok := baseText(keysym); ok {
		return true
	}
	if keysym == "BackSpace" {
		return true
	}
	rep, ok := replaceSyms[keysym]
	return ok && rep.text
}

// degraded names a key the tables do not know.
func degraded(ev KeyEvent) Result {
	name := ev.Keysym
	if name == "" && isPrintable(ev.Text) {
		name = ev.Text
	}
	if name == "" {
		name = fmt.Sprintf("#%d", ev.Keycode)
	}
	r := Result{Action: Emit, Symbol: name, Unknown: true}
	if utf8.RuneCountInString(name) > 1 {
		r.Kind = KindControl
		r.Spaced = true
	}
	return r
}

func backspace() Result {
	return Result{Action: Backspace, Symbol: replaceSyms["BackSpace"].repl, Kind: KindControl}
}

func literal(s string) Result {
	return Result{Action: Emit, Symbol: s, Kind: KindLiteral}
}

func control(s string, spaced bool) Result {
	return Result{Action: Emit, Symbol: s, Kind: KindControl, Spaced: spaced}
}

func isPrintable(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}
