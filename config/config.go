// Package config handles application settings.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"go.aimuz.me/screenkey/keylabel"
)

const (
	appName        = "screenkey"
	legacyFileName = "screenkey.json"
	configFileName = "config.json"
)

// Window positions.
const (
	PositionTop    = "top"
	PositionCenter = "center"
	PositionBottom = "bottom"
	PositionFixed  = "fixed"
)

var positions = []string{PositionTop, PositionCenter, PositionBottom, PositionFixed}

// Positions lists the accepted window positions.
func Positions() []string { return slices.Clone(positions) }

// Geometry is a fixed window placement in screen pixels.
type Geometry struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// UnmarshalJSON also accepts the [x, y, width, height] form of older
// releases.
func (g *Geometry) UnmarshalJSON(data []byte) error {
	var list []int
	if err := json.Unmarshal(data, &list); err == nil {
		if len(list) != 4 {
			return fmt.Errorf("geometry needs 4 values, got %d", len(list))
		}
		*g = Geometry{X: list[0], Y: list[1], Width: list[2], Height: list[3]}
		return nil
	}
	type plain Geometry
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("unmarshal geometry: %w", err)
	}
	*g = Geometry(p)
	return nil
}

// Settings is the persisted application configuration. Durations are stored
// in seconds.
type Settings struct {
	KeyMode   string   `json:"key_mode"`
	BakMode   string   `json:"bak_mode"`
	ModsMode  string   `json:"mods_mode"`
	ModsOnly  bool     `json:"mods_only"`
	Multiline bool     `json:"multiline"`
	VisShift  bool     `json:"vis_shift"`
	VisSpace  bool     `json:"vis_space"`
	RecentThr float64  `json:"recent_thr"`
	ComprCnt  int      `json:"compr_cnt"`
	Ignore    []string `json:"ignore"`
	Timeout   float64  `json:"timeout"`

	// Window
	Persist   bool      `json:"persist"`
	Position  string    `json:"position"`
	Geometry  *Geometry `json:"geometry,omitempty"`
	FontDesc  string    `json:"font_desc"`
	FontSize  int       `json:"font_size"`
	FontColor string    `json:"font_color"`
	BgColor   string    `json:"bg_color"`
	Opacity   float64   `json:"opacity"`
	NoSystray bool      `json:"no_systray"`
}

// Default returns the stock settings.
func Default() *Settings {
	return &Settings{
		KeyMode:   "composed",
		BakMode:   "baked",
		ModsMode:  "normal",
		VisSpace:  true,
		RecentThr: 0.1,
		ComprCnt:  3,
		Ignore:    []string{},
		Timeout:   2.5,
		Position:  PositionBottom,
		FontDesc:  "Sans Bold",
		FontSize:  12,
		FontColor: "FFFF00FF",
		BgColor:   "000000FF",
		Opacity:   0.8,
	}
}

// Load loads settings from the user config directory.
// Returns defaults if the file doesn't exist.
func Load() (*Settings, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("get user config dir: %w", err)
	}
	if err := migrateLegacyConfig(dir); err != nil {
		return nil, fmt.Errorf("migrate legacy config: %w", err)
	}
	return LoadFile(filepath.Join(dir, appName, configFileName))
}

// LoadFile loads settings from path. Keys missing from the file keep their
// default values.
func LoadFile(path string) (*Settings, error) {
	s := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if s.Ignore == nil {
		s.Ignore = []string{}
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return s, nil
}

// Save persists the settings to the user config directory.
func (s *Settings) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return s.SaveFile(path)
}

// SaveFile writes the settings to path.
func (s *Settings) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	// Write then rename so a watcher never reads a partial file.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}

// Path returns the settings file location.
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get user config dir: %w", err)
	}
	return filepath.Join(dir, appName, configFileName), nil
}

// Validate checks every field and returns the first problem.
func (s *Settings) Validate() error {
	if _, err := keylabel.ParseKeyMode(s.KeyMode); err != nil {
		return err
	}
	if _, err := keylabel.ParseBackspaceMode(s.BakMode); err != nil {
		return err
	}
	if _, err := keylabel.ParseModsMode(s.ModsMode); err != nil {
		return err
	}
	if s.RecentThr < 0 {
		return fmt.Errorf("recent_thr must not be negative")
	}
	if s.ComprCnt < 0 {
		return fmt.Errorf("compr_cnt must not be negative")
	}
	if s.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if !slices.Contains(positions, s.Position) {
		return fmt.Errorf("unknown position %q", s.Position)
	}
	if s.Position == PositionFixed && s.Geometry == nil {
		return fmt.Errorf("fixed position requires geometry")
	}
	if s.FontSize <= 0 {
		return fmt.Errorf("font_size must be positive")
	}
	if s.Opacity < 0 || s.Opacity > 1 {
		return fmt.Errorf("opacity must be between 0 and 1")
	}
	if _, _, err := ParseColor(s.FontColor); err != nil {
		return fmt.Errorf("font_color: %w", err)
	}
	if _, _, err := ParseColor(s.BgColor); err != nil {
		return fmt.Errorf("bg_color: %w", err)
	}
	return nil
}

// EngineConfig builds the label engine configuration.
func (s *Settings) EngineConfig() (keylabel.Config, error) {
	km, err := keylabel.ParseKeyMode(s.KeyMode)
	if err != nil {
		return keylabel.Config{}, err
	}
	bm, err := keylabel.ParseBackspaceMode(s.BakMode)
	if err != nil {
		return keylabel.Config{}, err
	}
	mm, err := keylabel.ParseModsMode(s.ModsMode)
	if err != nil {
		return keylabel.Config{}, err
	}

	cfg := keylabel.Config{
		KeyMode:         km,
		BackspaceMode:   bm,
		ModsMode:        mm,
		ModsOnly:        s.ModsOnly,
		Multiline:       s.Multiline,
		VisShift:        s.VisShift,
		VisSpace:        s.VisSpace,
		RecentThreshold: seconds(s.RecentThr),
		CompressCount:   s.ComprCnt,
		Ignore:          slices.Clone(s.Ignore),
		Timeout:         seconds(s.Timeout),
	}
	return cfg, cfg.Validate()
}

// Clone returns a deep copy.
func (s *Settings) Clone() *Settings {
	c := *s
	c.Ignore = slices.Clone(s.Ignore)
	if s.Geometry != nil {
		g := *s.Geometry
		c.Geometry = &g
	}
	return &c
}

func seconds(f float64) time.Duration {
	return time.Duration(math.Round(f * float64(time.Second)))
}

// ParseColor parses "RRGGBB" or "RRGGBBAA", with or without a leading "#".
// Alpha defaults to 1.
func ParseColor(s string) (colorful.Color, float64, error) {
	hex := strings.TrimPrefix(s, "#")
	alpha := 1.0
	switch len(hex) {
	case 6:
	case 8:
		var a uint8
		if _, err := fmt.Sscanf(hex[6:], "%02x", &a); err != nil {
			return colorful.Color{}, 0, fmt.Errorf("parse alpha %q: %w", s, err)
		}
		alpha = float64(a) / 255
		hex = hex[:6]
	default:
		return colorful.Color{}, 0, fmt.Errorf("invalid color %q", s)
	}
	c, err := colorful.Hex("#" + hex)
	if err != nil {
		return colorful.Color{}, 0, fmt.Errorf("parse color %q: %w", s, err)
	}
	return c, alpha, nil
}

// CSSColor converts a settings colour to a CSS rgba() value.
func CSSColor(s string, opacity float64) (string, error) {
	c, a, err := ParseColor(s)
	if err != nil {
		return "", err
	}
	r, g, b := c.RGB255()
	return fmt.Sprintf("rgba(%d, %d, %d, %.3g)", r, g, b, a*opacity), nil
}

// migrateLegacyConfig moves the single-file settings used by older releases
// into the application directory.
func migrateLegacyConfig(configDir string) error {
	oldPath := filepath.Join(configDir, legacyFileName)
	newPath := filepath.Join(configDir, appName, configFileName)

	if _, err := os.Stat(oldPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat legacy config: %w", err)
	}

	_, err := os.Stat(newPath)
	if err == nil {
		// New file already exists, no migration needed
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(newPath), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.Rename(oldPath, newPath); err != nil {
		return fmt.Errorf("move legacy config: %w", err)
	}
	return nil
}
