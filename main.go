package main

import (
	"embed"
	"log/slog"
	"os"

	"github.com/wailsapp/wails/v3/pkg/application"
	"github.com/wailsapp/wails/v3/pkg/events"

	"go.aimuz.me/screenkey/config"
	"go.aimuz.me/screenkey/internal/app"
	"go.aimuz.me/screenkey/keylabel"
)

//go:embed all:frontend/dist
var assets embed.FS

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// runWindow shows keys in a transparent overlay window with a tray menu.
func runWindow(stored *config.Settings, opts app.Options) error {
	slog.Info("starting app", "version", version, "commit", commit, "date", date)
	svc := app.New(stored, opts)

	wails := application.New(application.Options{
		Name:        "Screenkey",
		Description: "Screencast your keys",
		Services: []application.Service{
			application.NewService(svc),
		},
		Assets: application.AssetOptions{
			Handler: application.BundledAssetFileServer(assets),
		},
		Mac: application.MacOptions{
			// Don't quit when the overlay hides
			ApplicationShouldTerminateAfterLastWindowClosed: false,
			ActivationPolicy: application.ActivationPolicyAccessory,
		},
	})

	overlay := wails.Window.NewWithOptions(application.WebviewWindowOptions{
		Name:              "overlay",
		Title:             "Screenkey",
		Width:             800,
		Height:            100,
		URL:               "/",
		Frameless:         true,
		AlwaysOnTop:       true,
		Hidden:            true,
		IgnoreMouseEvents: true,
		BackgroundType:    application.BackgroundTypeTransparent,
	})

	// Intercept window close: hide instead of destroy so keys keep showing
	overlay.RegisterHook(events.Common.WindowClosing, func(e *application.WindowEvent) {
		e.Cancel()
		overlay.Hide()
	})

	svc.Init(app.NewWindowSurface(wails, overlay))

	if !svc.GetSettings().NoSystray {
		setupTray(wails, svc)
	}

	if err := wails.Run(); err != nil {
		slog.Error("run app", "error", err)
		return err
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// System Tray
// ─────────────────────────────────────────────────────────────────────────────

func setupTray(wails *application.App, svc *app.Service) {
	systemTray := wails.SystemTray.New()
	systemTray.SetLabel("⌨")
	systemTray.SetTooltip("Screenkey")

	st := svc.GetStatus()
	trayMenu := wails.NewMenu()

	trayMenu.AddCheckbox("Show keys", true).OnClick(func(ctx *application.Context) {
		if _, err := svc.ToggleEnabled(); err != nil {
			slog.Error("toggle key display", "error", err)
		}
	})
	trayMenu.AddSeparator()

	modeMenu := trayMenu.AddSubmenu("Keyboard mode")
	for _, m := range keylabel.KeyModes() {
		mode := m
		modeMenu.AddRadio(mode, mode == st.KeyMode).OnClick(func(ctx *application.Context) {
			if err := svc.SetKeyMode(mode); err != nil {
				slog.Error("set key mode", "mode", mode, "error", err)
			}
		})
	}

	bakMenu := trayMenu.AddSubmenu("Backspace mode")
	for _, m := range keylabel.BackspaceModes() {
		mode := m
		bakMenu.AddRadio(mode, mode == st.BakMode).OnClick(func(ctx *application.Context) {
			if err := svc.SetBackspaceMode(mode); err != nil {
				slog.Error("set backspace mode", "mode", mode, "error", err)
			}
		})
	}

	modsMenu := trayMenu.AddSubmenu("Modifiers mode")
	for _, m := range keylabel.ModsModes() {
		mode := m
		modsMenu.AddRadio(mode, mode == st.ModsMode).OnClick(func(ctx *application.Context) {
			if err := svc.SetModsMode(mode); err != nil {
				slog.Error("set modifiers mode", "mode", mode, "error", err)
			}
		})
	}

	persist := trayMenu.AddCheckbox("Persistent window", st.Persist)
	persist.OnClick(func(ctx *application.Context) {
		if err := svc.SetPersist(persist.Checked()); err != nil {
			slog.Error("set persist", "error", err)
		}
	})

	trayMenu.AddSeparator()
	trayMenu.Add("Quit").
		SetAccelerator("CmdOrCtrl+Q").
		OnClick(func(ctx *application.Context) {
			svc.Shutdown()
			wails.Quit()
		})

	systemTray.SetMenu(trayMenu)
}
