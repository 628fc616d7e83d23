// Package main - tray.go
//
// System tray front end. Uses getlantern/systray for the cross-platform menu.
//
// Menu Structure:
//
//	Charon
//	├─ Status: current state | last result (read-only)
//	├─ Navigate
//	│  ├─ Hub
//	│  ├─ Drive
//	│  └─ ... one entry per navigable state
//	├─ Resync (resolve the screen again)
//	├─ Stop (trip the fail-safe)
//	├─ Resume (reset the fail-safe)
//	└─ Quit
//
// Menu handlers never touch the navigator directly: requests go through the
// app Worker, so a click while a navigation is running queues behind it.
package main

import (
	"context"
	"fmt"

	"github.com/getlantern/systray"

	"github.com/YusufSemihCan/Charon-LCBot/internal/app"
	"github.com/YusufSemihCan/Charon-LCBot/internal/logging"
	"github.com/YusufSemihCan/Charon-LCBot/internal/navigation"
)

// TrayApp manages the system tray menu.
type TrayApp struct {
	ctx    context.Context
	app    *app.App
	cancel context.CancelFunc

	statusItem *systray.MenuItem
	syncItem   *systray.MenuItem
	stopItem   *systray.MenuItem
	resumeItem *systray.MenuItem
	quitItem   *systray.MenuItem
}

// NewTrayApp creates the tray for a bootstrapped app. cancel stops the
// worker when the tray exits.
func NewTrayApp(ctx context.Context, a *app.App, cancel context.CancelFunc) *TrayApp {
	return &TrayApp{ctx: ctx, app: a, cancel: cancel}
}

// Run blocks until Quit or ctx is cancelled.
func (t *TrayApp) Run() {
	logging.Info("Starting system tray application")
	systray.Run(t.onReady, func() {
		logging.Info("System tray exit")
		t.app.Trip()
		t.cancel()
	})
	logging.Info("System tray Run() returned")
}

func (t *TrayApp) onReady() {
	systray.SetTitle("Charon")
	systray.SetTooltip("Charon menu navigator")

	t.statusItem = systray.AddMenuItem("Status: Starting...", "Current screen")
	t.statusItem.Disable()

	systray.AddSeparator()

	navMenu := systray.AddMenuItem("Navigate", "Go to a screen")
	for _, s := range navigation.Targets() {
		item := navMenu.AddSubMenuItem(s.String(), fmt.Sprintf("Navigate to %s", s))
		go t.handleNavigate(s, item)
	}

	t.syncItem = systray.AddMenuItem("Resync", "Resolve the current screen")

	systray.AddSeparator()

	t.stopItem = systray.AddMenuItem("Stop", "Halt all input (fail-safe)")
	t.resumeItem = systray.AddMenuItem("Resume", "Clear the fail-safe")
	t.resumeItem.Disable()

	systray.AddSeparator()

	t.quitItem = systray.AddMenuItem("Quit", "Quit the application")

	go t.handleEvents()
	go t.resync()

	logging.Info("System tray initialized")
}

func (t *TrayApp) handleNavigate(target navigation.State, item *systray.MenuItem) {
	for {
		select {
		case <-t.ctx.Done():
			return
		case <-item.ClickedCh:
			logging.Info("Tray: navigate to %s", target)
			t.updateStatus(fmt.Sprintf("-> %s...", target))
			res, err := t.app.Worker.Navigate(t.ctx, target)
			switch {
			case err != nil:
				t.updateStatus(fmt.Sprintf("%s | error: %v", res.State, err))
			case res.Reached:
				t.updateStatus(fmt.Sprintf("%s | reached", res.State))
			default:
				t.updateStatus(fmt.Sprintf("%s | %s not reached", res.State, target))
			}
		}
	}
}

func (t *TrayApp) handleEvents() {
	for {
		select {
		case <-t.ctx.Done():
			systray.Quit()
			return
		case <-t.syncItem.ClickedCh:
			go t.resync()
		case <-t.stopItem.ClickedCh:
			t.app.Trip()
			t.stopItem.Disable()
			t.resumeItem.Enable()
			t.updateStatus("stopped")
		case <-t.resumeItem.ClickedCh:
			t.app.Reset()
			t.resumeItem.Disable()
			t.stopItem.Enable()
			go t.resync()
		case <-t.quitItem.ClickedCh:
			logging.Info("Quit requested by user")
			systray.Quit()
			return
		}
	}
}

func (t *TrayApp) resync() {
	s, err := t.app.Worker.Synchronize(t.ctx)
	if err != nil {
		t.updateStatus(fmt.Sprintf("error: %v", err))
		return
	}
	t.updateStatus(s.String())
}

func (t *TrayApp) updateStatus(status string) {
	if t.statusItem != nil {
		t.statusItem.SetTitle("Status: " + status)
	}
}
