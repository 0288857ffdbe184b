package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"go.aimuz.me/screenkey/config"
	"go.aimuz.me/screenkey/display"
	"go.aimuz.me/screenkey/internal/app"
	"go.aimuz.me/screenkey/keycapture"
	"go.aimuz.me/screenkey/keylabel"
)

// flags holds the command line. Only flags the user set override the stored
// settings, and only for this run.
type flags struct {
	timeout      float64
	keyMode      string
	bakMode      string
	modsMode     string
	modsOnly     bool
	multiline    bool
	visShift     bool
	noWhitespace bool
	comprCnt     int
	ignore       []string
	persist      bool
	noSystray    bool
	position     string
	fontSize     int

	debug        bool
	term         bool
	showSettings bool
}

// newRootCommand creates the screenkey command.
func newRootCommand() *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:     "screenkey",
		Short:   "Screencast your keys",
		Long:    `Screenkey shows the keys you type in an overlay, for screencasts and presentations.`,
		Version: fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		Args:    cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(f.debug)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, f)
		},
		SilenceUsage: true,
	}
	f.register(cmd)
	return cmd
}

func (f *flags) register(cmd *cobra.Command) {
	def := config.Default()
	fs := cmd.Flags()
	fs.Float64VarP(&f.timeout, "timeout", "t", def.Timeout, "Timeout in seconds before the label clears")
	fs.StringVarP(&f.keyMode, "key-mode", "M", def.KeyMode, "Key mode: composed, translated, keysyms or raw")
	fs.StringVar(&f.bakMode, "bak-mode", def.BakMode, "Backspace mode: normal, baked or full")
	fs.StringVar(&f.modsMode, "mods-mode", def.ModsMode, "Modifiers mode: normal, emacs or mac")
	fs.BoolVarP(&f.modsOnly, "mods-only", "m", false, "Show only modifier combinations")
	fs.BoolVar(&f.multiline, "multiline", false, "Span the label over multiple lines")
	fs.BoolVar(&f.visShift, "vis-shift", false, "Always show Shift when modifiers are pressed")
	fs.BoolVar(&f.noWhitespace, "no-whitespace", false, "Disable visualization of whitespace")
	fs.IntVar(&f.comprCnt, "compr-cnt", def.ComprCnt, "Compress repeated keys over this count (0 disables)")
	fs.StringSliceVar(&f.ignore, "ignore", nil, "Ignore the specified keysym (repeatable)")
	fs.BoolVar(&f.persist, "persist", false, "Keep the window visible after the label clears")
	fs.BoolVar(&f.noSystray, "no-systray", false, "Do not create a system tray icon")
	fs.StringVarP(&f.position, "position", "p", def.Position, "Window position: top, center, bottom or fixed")
	fs.IntVarP(&f.fontSize, "font-size", "s", def.FontSize, "Font size as a percentage of screen height")
	fs.BoolVar(&f.debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&f.term, "term", false, "Show keys in this terminal instead of an overlay window")
	fs.BoolVar(&f.showSettings, "show-settings", false, "Print the effective settings and exit")
}

// override returns the adjustments made by the flags the user set.
func (f *flags) override(cmd *cobra.Command) func(*config.Settings) {
	changed := cmd.Flags().Changed
	return func(s *config.Settings) {
		if changed("timeout") {
			s.Timeout = f.timeout
		}
		if changed("key-mode") {
			s.KeyMode = f.keyMode
		}
		if changed("bak-mode") {
			s.BakMode = f.bakMode
		}
		if changed("mods-mode") {
			s.ModsMode = f.modsMode
		}
		if changed("mods-only") {
			s.ModsOnly = f.modsOnly
		}
		if changed("multiline") {
			s.Multiline = f.multiline
		}
		if changed("vis-shift") {
			s.VisShift = f.visShift
		}
		if changed("no-whitespace") {
			s.VisSpace = !f.noWhitespace
		}
		if changed("compr-cnt") {
			s.ComprCnt = f.comprCnt
		}
		if changed("ignore") {
			s.Ignore = append([]string{}, f.ignore...)
		}
		if changed("persist") {
			s.Persist = f.persist
		}
		if changed("no-systray") {
			s.NoSystray = f.noSystray
		}
		if changed("position") {
			s.Position = f.position
		}
		if changed("font-size") {
			s.FontSize = f.fontSize
		}
	}
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
	})))
}

func run(cmd *cobra.Command, f *flags) error {
	stored, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		stored = config.Default()
	}
	path, err := config.Path()
	if err != nil {
		slog.Warn("settings will not be saved", "error", err)
		path = ""
	}

	override := f.override(cmd)
	effective := stored.Clone()
	override(effective)
	if err := effective.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	if f.showSettings {
		data, err := json.MarshalIndent(effective, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal settings: %w", err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}

	opts := app.Options{
		Version:  version,
		Path:     path,
		Override: override,
		Source:   keycapture.New(),
		MaxWidth: keylabel.DefaultMaxWidth,
	}
	if f.term {
		return runTerminal(cmd.Context(), stored, opts)
	}
	return runWindow(stored, opts)
}

// runTerminal shows keys on stdout until interrupted.
func runTerminal(ctx context.Context, stored *config.Settings, opts app.Options) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := app.New(stored, opts)
	svc.Init(display.NewTerminal(os.Stdout))
	if err := svc.Start(); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	slog.Info("showing keys in terminal, press Ctrl+C to quit")

	<-ctx.Done()
	svc.Shutdown()
	fmt.Println()
	return nil
}
