package keycapture

import (
	hook "github.com/robotn/gohook"
)

// hookNames maps gohook key names to X11 keysym names.
var hookNames = map[string]string{
	"`":         "grave",
	"-":         "minus",
	"=":         "equal",
	"[":         "bracketleft",
	"]":         "bracketright",
	"\\":        "backslash",
	";":         "semicolon",
	"'":         "apostrophe",
	",":         "comma",
	".":         "period",
	"/":         "slash",
	"space":     "space",
	"enter":     "Return",
	"tab":       "Tab",
	"backspace": "BackSpace",
	"esc":       "Escape",
	"delete":    "Delete",
	"insert":    "Insert",
	"home":      "Home",
	"end":       "End",
	"pageup":    "Prior",
	"pagedown":  "Next",
	"up":        "Up",
	"down":      "Down",
	"left":      "Left",
	"right":     "Right",
	"capslock":  "Caps_Lock",
	"shift":     "Shift_L",
	"rshift":    "Shift_R",
	"ctrl":      "Control_L",
	"rctrl":     "Control_R",
	"alt":       "Alt_L",
	"ralt":      "Alt_R",
	"cmd":       "Super_L",
	"rcmd":      "Super_R",
}

var byKeycode = buildKeycodes()

func buildKeycodes() map[uint16]string {
	m := make(map[uint16]string, len(hookNames)+48)
	add := func(name, keysym string) {
		if code, ok := hook.Keycode[name]; ok {
			if _, dup := m[code]; !dup {
				m[code] = keysym
			}
		}
	}
	for name, keysym := range hookNames {
		add(name, keysym)
	}
	for c := 'a'; c <= 'z'; c++ {
		add(string(c), string(c))
	}
	for c := '0'; c <= '9'; c++ {
		add(string(c), string(c))
	}
	for _, f := range []string{"f1", "f2", "f3", "f4", "f5", "f6", "f7", "f8", "f9", "f10", "f11", "f12"} {
		add(f, "F"+f[1:])
	}
	return m
}

// Keysym returns the X11 keysym name for a gohook keycode, or "".
func Keysym(keycode uint16) string {
	return byKeycode[keycode]
}
