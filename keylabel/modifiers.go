package keylabel

import "time"

// KeyEvent is one observed key transition.
type KeyEvent struct {
	Keycode uint16
	// Keysym is the X11 keysym name, e.g. "a", "Shift_L", "BackSpace".
	Keysym string
	// Text is what the keyboard layout would insert, if the source knows it.
	Text    string
	Pressed bool
	Time    time.Time
}

// Modifiers is a set of modifier keys.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
	ModSuper
	ModHyper
	ModAltGr
	// ModCapsLock is latched, not held.
	ModCapsLock
)

// chordMods are the modifiers that turn a key into a shortcut.
const chordMods = ModCtrl | ModAlt | ModSuper | ModHyper

// Has reports whether all of m2 are set in m.
func (m Modifiers) Has(m2 Modifiers) bool { return m&m2 == m2 }

// Any reports whether any of m2 is set in m.
func (m Modifiers) Any(m2 Modifiers) bool { return m&m2 != 0 }

var modifierKeysyms = map[string]Modifiers{
	"Shift_L":          ModShift,
	"Shift_R":          ModShift,
	"Control_L":        ModCtrl,
	"Control_R":        ModCtrl,
	"Alt_L":            ModAlt,
	"Alt_R":            ModAlt,
	"Meta_L":           ModAlt,
	"Meta_R":           ModAlt,
	"Super_L":          ModSuper,
	"Super_R":          ModSuper,
	"Hyper_L":          ModHyper,
	"Hyper_R":          ModHyper,
	"ISO_Level3_Shift": ModAltGr,
	"Mode_switch":      ModAltGr,
}

// ModifierOf returns the modifier a keysym controls, or 0.
func ModifierOf(keysym string) Modifiers {
	return modifierKeysyms[keysym]
}

// ModifierState is a snapshot of the tracker.
type ModifierState struct {
	Held Modifiers
	// Tapped is set on the release of a modifier pressed and released
	// without any other key in between.
	Tapped Modifiers
}

// Tracker follows which modifiers are held. It is owned by one goroutine.
// A modifier stays held while any of its keys is down, so releasing Shift_R
// keeps Shift held when Shift_L is still pressed.
type Tracker struct {
	held    Modifiers
	pending Modifiers
	down    map[string]Modifiers
}

// Observe updates the tracker with ev and returns the resulting state.
func (t *Tracker) Observe(ev KeyEvent) ModifierState {
	if ev.Keysym == "Caps_Lock" {
		if ev.Pressed {
			t.held ^= ModCapsLock
			t.pending = 0
		}
		return ModifierState{Held: t.held}
	}

	mod := ModifierOf(ev.Keysym)
	if mod == 0 {
		if ev.Pressed {
			t.pending = 0
		}
		return ModifierState{Held: t.held}
	}

	if ev.Pressed {
		// Only a modifier pressed on its own can become a tap.
		if t.held&^(mod|ModCapsLock) != 0 {
			t.pending = 0
		} else if !t.held.Any(mod) {
			t.pending |= mod
		}
		if t.down == nil {
			t.down = make(map[string]Modifiers)
		}
		t.down[ev.Keysym] = mod
		t.held |= mod
		return ModifierState{Held: t.held}
	}

	delete(t.down, ev.Keysym)
	for _, m := range t.down {
		if m == mod {
			return ModifierState{Held: t.held}
		}
	}
	tapped := t.pending & mod
	t.held &^= mod
	t.pending &^= mod
	return ModifierState{Held: t.held, Tapped: tapped}
}

// State returns the current state without observing an event.
func (t *Tracker) State() ModifierState {
	return ModifierState{Held: t.held}
}

// Reset forgets all held modifiers.
func (t *Tracker) Reset() {
	t.held = 0
	t.pending = 0
	clear(t.down)
}
