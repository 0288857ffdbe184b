package keylabel

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// ErrInvalidConfig is returned by Start when a Config field is out of range.
var ErrInvalidConfig = errors.New("invalid config")

// KeyMode selects how faithfully key presses are represented.
type KeyMode int

const (
	KeyModeComposed KeyMode = iota
	KeyModeTranslated
	KeyModeKeysyms
	KeyModeRaw
)

var keyModeNames = []string{"composed", "translated", "keysyms", "raw"}

func (m KeyMode) String() string { return enumName(keyModeNames, int(m)) }

// ParseKeyMode parses the settings name of a key mode.
func ParseKeyMode(s string) (KeyMode, error) {
	i, err := parseEnum(keyModeNames, "key mode", s)
	return KeyMode(i), err
}

// BackspaceMode selects what a BackSpace does to the transcript.
type BackspaceMode int

const (
	// BackspaceNormal shows the key like any other.
	BackspaceNormal BackspaceMode = iota
	// BackspaceBaked deletes the previous symbol.
	BackspaceBaked
	// BackspaceFull strikes the previous symbol through and keeps it.
	BackspaceFull
)

var backspaceModeNames = []string{"normal", "baked", "full"}

func (m BackspaceMode) String() string { return enumName(backspaceModeNames, int(m)) }

// ParseBackspaceMode parses the settings name of a backspace mode.
func ParseBackspaceMode(s string) (BackspaceMode, error) {
	i, err := parseEnum(backspaceModeNames, "backspace mode", s)
	return BackspaceMode(i), err
}

// ModsMode selects how modifier names are spelled.
type ModsMode int

const (
	ModsModeNormal ModsMode = iota
	ModsModeEmacs
	ModsModeMac
)

var modsModeNames = []string{"normal", "emacs", "mac"}

func (m ModsMode) String() string { return enumName(modsModeNames, int(m)) }

// ParseModsMode parses the settings name of a modifier naming mode.
func ParseModsMode(s string) (ModsMode, error) {
	i, err := parseEnum(modsModeNames, "modifiers mode", s)
	return ModsMode(i), err
}

// KeyModes lists the accepted key mode names in menu order.
func KeyModes() []string { return slices.Clone(keyModeNames) }

// BackspaceModes lists the accepted backspace mode names.
func BackspaceModes() []string { return slices.Clone(backspaceModeNames) }

// ModsModes lists the accepted modifier naming modes.
func ModsModes() []string { return slices.Clone(modsModeNames) }

// Config is the complete engine configuration. It is supplied whole at
// (re)start and never changed while a pipeline runs.
type Config struct {
	KeyMode       KeyMode
	BackspaceMode BackspaceMode
	ModsMode      ModsMode

	// ModsOnly shows modifier sequences only.
	ModsOnly  bool
	Multiline bool
	// VisShift always shows Shift.
	VisShift bool
	// VisSpace shows whitespace as visible glyphs.
	VisSpace bool

	// RecentThreshold is how long a run stays highlighted.
	RecentThreshold time.Duration
	// CompressCount compresses runs longer than this many repeats. 0 disables.
	CompressCount int
	// Ignore lists keysym names that never produce output.
	Ignore []string
	// Timeout clears the label after this much inactivity. 0 disables.
	Timeout time.Duration
}

// DefaultConfig returns the stock screencast configuration.
func DefaultConfig() Config {
	return Config{
		KeyMode:         KeyModeComposed,
		BackspaceMode:   BackspaceBaked,
		ModsMode:        ModsModeNormal,
		VisSpace:        true,
		RecentThreshold: 100 * time.Millisecond,
		CompressCount:   3,
		Timeout:         2500 * time.Millisecond,
	}
}

// Validate reports the first out-of-range field.
func (c Config) Validate() error {
	switch {
	case c.KeyMode < KeyModeComposed || c.KeyMode > KeyModeRaw:
		return fmt.Errorf("%w: key mode %d", ErrInvalidConfig, c.KeyMode)
	case c.BackspaceMode < BackspaceNormal || c.BackspaceMode > BackspaceFull:
		return fmt.Errorf("%w: backspace mode %d", ErrInvalidConfig, c.BackspaceMode)
	case c.ModsMode < ModsModeNormal || c.ModsMode > ModsModeMac:
		return fmt.Errorf("%w: modifiers mode %d", ErrInvalidConfig, c.ModsMode)
	case c.RecentThreshold < 0:
		return fmt.Errorf("%w: negative recent threshold", ErrInvalidConfig)
	case c.CompressCount < 0:
		return fmt.Errorf("%w: negative compress count", ErrInvalidConfig)
	case c.Timeout < 0:
		return fmt.Errorf("%w: negative timeout", ErrInvalidConfig)
	}
	return nil
}

func (c Config) clone() Config {
	c.Ignore = slices.Clone(c.Ignore)
	return c
}

func (c Config) ignores(keysym string) bool {
	return keysym != "" && slices.Contains(c.Ignore, keysym)
}

func enumName(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return fmt.Sprintf("unknown(%d)", i)
	}
	return names[i]
}

func parseEnum(names []string, what, s string) (int, error) {
	i := slices.Index(names, s)
	if i < 0 {
		return 0, fmt.Errorf("%w: unknown %s %q", ErrInvalidConfig, what, s)
	}
	return i, nil
}
