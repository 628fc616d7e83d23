// Package app - app.go
//
// Wires the configured backend, the template locator and the navigation
// engine into one running application.
//
// Startup:
//  1. Logging from the config (file + optional colored console)
//  2. Backend: desktop (kbinani capture + robotgo input) or browser
//     (chromedp viewport capture + CDP input), with cookies restored
//  3. Locator: cache policy from config, template scale from the capture size
//  4. Template index from the assets directory
//  5. Navigator, owned by a single Worker goroutine
//
// Watch keeps the running app in step with the config file and the assets
// directory: config edits are applied between navigations and new template
// files are indexed without a restart.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/YusufSemihCan/Charon-LCBot/internal/browser"
	"github.com/YusufSemihCan/Charon-LCBot/internal/config"
	"github.com/YusufSemihCan/Charon-LCBot/internal/input"
	"github.com/YusufSemihCan/Charon-LCBot/internal/logging"
	"github.com/YusufSemihCan/Charon-LCBot/internal/navigation"
	"github.com/YusufSemihCan/Charon-LCBot/internal/screen"
	"github.com/YusufSemihCan/Charon-LCBot/internal/vision"
)

// latch is the fail-safe control both backends expose.
type latch interface {
	Trip()
	Reset()
}

// App is a bootstrapped navigator.
type App struct {
	Config     config.Config
	ConfigPath string
	AssetsDir  string

	Screen    screen.Provider
	Actuator  input.Actuator
	Locator   *vision.Locator
	Navigator *navigation.Navigator
	Worker    *Worker

	latch   latch
	session *browser.Session
	closers []func()
}

// Bootstrap builds the application from cfg. configPath is remembered for
// Watch and may be empty. onResult is forwarded to the Worker.
func Bootstrap(configPath string, cfg config.Config, onResult func(Result)) (*App, error) {
	a := &App{Config: cfg, ConfigPath: configPath}

	if err := a.openBackend(); err != nil {
		a.Close()
		return nil, err
	}

	info := screen.NewInfo(a.Screen.Bounds())
	opts, err := LocatorOptions(cfg, info.ScaleFactor())
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Locator = vision.NewLocator(opts...)
	a.closers = append(a.closers, a.Locator.Close)

	dir, err := cfg.ResolveAssetsDir(searchRoots()...)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.AssetsDir = dir
	n, err := a.Locator.IndexTemplates(dir)
	if err != nil {
		a.Close()
		return nil, err
	}
	if n == 0 {
		logging.Warn("No templates found under %s", dir)
	}

	a.Navigator = navigation.New(a.Screen, a.Locator, a.Actuator, NavigatorOptions(cfg))
	a.Worker = NewWorker(a.Navigator, onResult)

	logging.Info("Bootstrap complete: backend=%s screen=%dx%d templates=%d", cfg.Backend, info.Width, info.Height, n)
	return a, nil
}

func (a *App) openBackend() error {
	switch a.Config.Backend {
	case config.BackendBrowser:
		b := a.Config.Browser
		s := browser.NewSession(browser.Options{
			URL:      b.URL,
			Width:    b.Width,
			Height:   b.Height,
			Headless: b.Headless,
		})
		cookies, err := browser.LoadCookies(b.CookieFile)
		if err != nil {
			logging.Warn("Cookies not restored: %v", err)
		}
		if err := s.Start(cookies); err != nil {
			s.Close()
			return err
		}
		a.Screen, a.Actuator, a.latch, a.session = s, s, s, s
		a.closers = append(a.closers, func() {
			if b.CookieFile != "" {
				if err := s.SaveCookies(b.CookieFile); err != nil {
					logging.Warn("Cookies not saved: %v", err)
				}
			}
			s.Close()
		})
	default:
		d, err := screen.NewDesktop(0)
		if err != nil {
			return err
		}
		r := input.NewRobot(d.Origin())
		a.Screen, a.Actuator, a.latch = d, r, r
	}
	return nil
}

// searchRoots lists the directories searched for the assets folder: the
// executable's directory first, then the working directory.
func searchRoots() []string {
	var roots []string
	if exe, err := os.Executable(); err == nil {
		roots = append(roots, filepath.Dir(exe))
	}
	if wd, err := os.Getwd(); err == nil {
		roots = append(roots, wd)
	}
	return roots
}

// Trip halts all input until Reset.
func (a *App) Trip() {
	if a.latch != nil {
		a.latch.Trip()
	}
}

// Reset clears the fail-safe.
func (a *App) Reset() {
	if a.latch != nil {
		a.latch.Reset()
	}
}

// Close releases everything Bootstrap opened, in reverse order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// Watch applies config edits and indexes new templates until ctx is done.
func (a *App) Watch(ctx context.Context) error {
	w, err := config.NewWatcher(a.ConfigPath, a.AssetsDir)
	if err != nil {
		return fmt.Errorf("app: watch: %w", err)
	}
	defer w.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-w.Events:
			if !ok {
				return nil
			}
			a.apply(ctx, change)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logging.Warn("Watcher error: %v", err)
		}
	}
}

func (a *App) apply(ctx context.Context, change config.Change) {
	switch change.Kind {
	case config.ConfigChanged:
		cfg, err := config.Load(a.ConfigPath)
		if err != nil {
			logging.Error("Config reload rejected: %v", err)
			return
		}
		if cfg.Backend != a.Config.Backend || cfg.Vision.CacheMode != a.Config.Vision.CacheMode {
			logging.Warn("Backend and cache mode changes take effect after restart")
		}
		if err := a.Worker.Reconfigure(ctx, NavigatorOptions(cfg)); err != nil {
			logging.Warn("Config reload not applied: %v", err)
			return
		}
		logging.SetLevel(logging.ParseLevel(cfg.Log.Level))
		a.Config = cfg
		logging.Info("Config reloaded from %s", a.ConfigPath)

	case config.AssetsChanged:
		name := strings.TrimSuffix(filepath.Base(change.Path), filepath.Ext(change.Path))
		err := a.Worker.Do(ctx, func() {
			a.Locator.Unload(name)
			if _, err := a.Locator.IndexTemplates(a.AssetsDir); err != nil {
				logging.Warn("Reindex failed: %v", err)
			}
		})
		if err != nil {
			logging.Warn("Reindex of %s not applied: %v", name, err)
			return
		}
		logging.Info("Template %s refreshed", name)
	}
}
