// Package app provides the core application service for Wails bindings.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/wailsapp/wails/v3/pkg/application"

	"go.aimuz.me/screenkey/config"
	"go.aimuz.me/screenkey/internal/types"
	"go.aimuz.me/screenkey/keylabel"
)

// ErrNoSurface is returned by Start before Init.
var ErrNoSurface = errors.New("no display surface")

// Options configures a Service.
type Options struct {
	Version string
	// Path is the settings file. Empty disables saving and watching.
	Path string
	// Override adjusts settings for this run only, e.g. from flags.
	Override func(*config.Settings)
	Source   KeySource
	// MaxWidth bounds the label in character cells.
	MaxWidth int
	Logger   *slog.Logger
}

// Service provides application functionality bound to Wails.
// This struct focuses on orchestration; the label logic lives in keylabel.
type Service struct {
	opts    Options
	engine  *keylabel.Engine
	keys    KeyAdapter
	surface Surface
	persist atomic.Bool
	wg      sync.WaitGroup

	mu      sync.Mutex
	stored  *config.Settings
	current *config.Settings
	enabled bool
	started bool
	watcher *config.Watcher
}

// New creates a new Service from the stored settings. Call Init() before
// Start().
func New(stored *config.Settings, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	engineOpts := []keylabel.Option{keylabel.WithLogger(opts.Logger)}
	if opts.MaxWidth > 0 {
		engineOpts = append(engineOpts, keylabel.WithMaxWidth(opts.MaxWidth))
	}

	s := &Service{
		opts:   opts,
		engine: keylabel.New(engineOpts...),
		stored: stored.Clone(),
	}
	s.current = s.effective(s.stored)
	s.persist.Store(s.current.Persist)
	return s
}

// Init attaches the display surface.
func (s *Service) Init(surface Surface) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.surface = surface
}

// ServiceStartup is called by Wails when the application starts.
func (s *Service) ServiceStartup(_ context.Context, _ application.ServiceOptions) error {
	return s.Start()
}

// ServiceShutdown is called by Wails when the application quits.
func (s *Service) ServiceShutdown() error {
	s.Shutdown()
	return nil
}

// Start shows the initial appearance and begins displaying keys.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.surface == nil {
		return ErrNoSurface
	}
	if s.started {
		return nil
	}
	if err := s.current.Validate(); err != nil {
		return fmt.Errorf("validate settings: %w", err)
	}
	s.started = true

	s.wg.Go(s.forwardUpdates)
	s.surface.SetAppearance(appearanceFrom(s.current))

	if s.opts.Path != "" {
		w, err := config.Watch(s.opts.Path, s.reload)
		if err != nil {
			slog.Warn("watch config", "path", s.opts.Path, "error", err)
		} else {
			s.watcher = w
		}
	}

	return s.setEnabledLocked(true)
}

// Shutdown cleans up resources. It is safe to call more than once.
func (s *Service) Shutdown() {
	s.mu.Lock()
	w := s.watcher
	s.watcher = nil
	s.started = false
	s.mu.Unlock()

	// A reload in progress needs s.mu, so close without holding it.
	if w != nil {
		if err := w.Close(); err != nil {
			slog.Error("close config watcher", "error", err)
		}
	}

	s.mu.Lock()
	s.keys.Stop()
	s.enabled = false
	s.mu.Unlock()

	// Closing the engine ends forwardUpdates.
	s.engine.Close()
	s.wg.Wait()
}

// forwardUpdates hands engine output to the surface until the engine closes.
func (s *Service) forwardUpdates() {
	for u := range s.engine.Updates() {
		switch u.Kind {
		case keylabel.UpdateClear:
			s.surface.Clear(s.persist.Load())
		default:
			s.surface.ShowLabel(labelEvent(u.Label))
		}
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Enable / Disable
// ─────────────────────────────────────────────────────────────────────────────

// SetEnabled turns key display on or off.
func (s *Service) SetEnabled(on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setEnabledLocked(on)
}

// ToggleEnabled flips key display and returns the new state.
func (s *Service) ToggleEnabled() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.setEnabledLocked(!s.enabled)
	return s.enabled, err
}

func (s *Service) setEnabledLocked(on bool) error {
	if on == s.enabled {
		return nil
	}

	if !on {
		s.keys.Stop()
		s.engine.Stop()
		s.surface.Clear(false)
		s.enabled = false
		s.surface.SetStatus(s.statusLocked())
		slog.Info("key display disabled")
		return nil
	}

	cfg, err := s.current.EngineConfig()
	if err != nil {
		return fmt.Errorf("build engine config: %w", err)
	}
	if err := s.engine.Start(cfg); err != nil {
		return fmt.Errorf("start engine: %w", err)
	}
	if s.opts.Source != nil {
		if err := s.keys.Start(s.opts.Source, s.engine.Push); err != nil {
			s.engine.Stop()
			return err
		}
	}
	s.enabled = true
	s.surface.SetStatus(s.statusLocked())
	slog.Info("key display enabled", "session", s.engine.Session())
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Settings
// ─────────────────────────────────────────────────────────────────────────────

// GetVersion returns the application version.
func (s *Service) GetVersion() string {
	return s.opts.Version
}

// GetStatus returns the current state for menus.
func (s *Service) GetStatus() types.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

func (s *Service) statusLocked() types.Status {
	return types.Status{
		Enabled:  s.enabled,
		Session:  s.engine.Session(),
		KeyMode:  s.current.KeyMode,
		BakMode:  s.current.BakMode,
		ModsMode: s.current.ModsMode,
		Persist:  s.current.Persist,
	}
}

// GetSettings returns a copy of the effective settings.
func (s *Service) GetSettings() config.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.current.Clone()
}

// GetAppearance returns the overlay styling.
func (s *Service) GetAppearance() types.Appearance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return appearanceFrom(s.current)
}

// SetKeyMode switches the key representation mode.
func (s *Service) SetKeyMode(mode string) error {
	return s.update(func(c *config.Settings) { c.KeyMode = mode })
}

// SetBackspaceMode switches the backspace mode.
func (s *Service) SetBackspaceMode(mode string) error {
	return s.update(func(c *config.Settings) { c.BakMode = mode })
}

// SetModsMode switches how modifiers are spelled.
func (s *Service) SetModsMode(mode string) error {
	return s.update(func(c *config.Settings) { c.ModsMode = mode })
}

// SetPersist keeps the window visible after the label clears.
func (s *Service) SetPersist(on bool) error {
	return s.update(func(c *config.Settings) { c.Persist = on })
}

// SetPosition moves the window.
func (s *Service) SetPosition(pos string) error {
	return s.update(func(c *config.Settings) { c.Position = pos })
}

// update applies fn to both the stored and the effective settings, then
// saves the stored copy.
func (s *Service) update(fn func(*config.Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.stored.Clone()
	fn(stored)
	current := s.current.Clone()
	fn(current)

	if err := s.applyLocked(stored, current); err != nil {
		return err
	}
	if s.opts.Path == "" {
		return nil
	}
	if err := s.stored.SaveFile(s.opts.Path); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// reload is called by the watcher with freshly loaded settings.
func (s *Service) reload(stored *config.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started || reflect.DeepEqual(stored, s.stored) {
		return
	}
	if err := s.applyLocked(stored, s.effective(stored)); err != nil {
		slog.Error("apply reloaded settings", "error", err)
	}
}

func (s *Service) effective(stored *config.Settings) *config.Settings {
	c := stored.Clone()
	if s.opts.Override != nil {
		s.opts.Override(c)
	}
	return c
}

// applyLocked switches to new settings, restarting the engine when its
// configuration changed.
func (s *Service) applyLocked(stored, current *config.Settings) error {
	if err := current.Validate(); err != nil {
		return fmt.Errorf("validate settings: %w", err)
	}
	next, err := current.EngineConfig()
	if err != nil {
		return fmt.Errorf("build engine config: %w", err)
	}
	prev, _ := s.current.EngineConfig()

	s.stored = stored
	s.current = current
	s.persist.Store(current.Persist)

	if s.surface != nil && s.started {
		s.surface.SetAppearance(appearanceFrom(current))
		defer func() { s.surface.SetStatus(s.statusLocked()) }()
	}
	if s.enabled && !reflect.DeepEqual(prev, next) {
		if err := s.engine.Restart(next); err != nil {
			return fmt.Errorf("restart engine: %w", err)
		}
		slog.Info("label engine restarted",
			"session", s.engine.Session(),
			"key_mode", current.KeyMode,
			"bak_mode", current.BakMode,
			"mods_mode", current.ModsMode)
	}
	return nil
}
