// Package browser - session.go
//
// A chromedp-driven Chrome window hosting a browser-delivered game client
// (cloud/streamed builds). The Session is both a screen.Provider (viewport
// screenshots) and an input.Actuator (CDP Input domain events), so the
// navigator runs unchanged against it.
//
// Lifecycle:
//  1. NewSession with window size and start URL
//  2. Start: allocator + tab context, restore cookies, navigate
//  3. CaptureFrame/MoveTo/Click/PressKey during automation
//  4. SaveCookies and Close on shutdown
//
// Every CDP round trip runs under its own timeout derived from the tab
// context, so a hung renderer surfaces as an error instead of a stall.
package browser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/YusufSemihCan/Charon-LCBot/internal/logging"
	"github.com/YusufSemihCan/Charon-LCBot/internal/screen"
)

// ErrNotRunning is returned when the tab context is missing or cancelled.
var ErrNotRunning = errors.New("browser: context is invalid")

const (
	navigateTimeout = 60 * time.Second
	captureTimeout  = 5 * time.Second
	inputTimeout    = 2 * time.Second
)

// Options configures the Chrome window.
type Options struct {
	URL      string
	Width    int
	Height   int
	Headless bool
}

// Session owns one Chrome window.
type Session struct {
	opts        Options
	ctx         context.Context
	cancel      context.CancelFunc
	allocCtx    context.Context
	allocCancel context.CancelFunc

	mu      sync.Mutex
	pointer image.Point
	rng     *rand.Rand
	tripped atomic.Bool
	sleep   func(time.Duration)
}

// NewSession creates an unstarted session.
func NewSession(opts Options) *Session {
	if opts.Width <= 0 {
		opts.Width = screen.ReferenceWidth
	}
	if opts.Height <= 0 {
		opts.Height = screen.ReferenceHeight
	}
	return &Session{
		opts:  opts,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep: time.Sleep,
	}
}

// launchFlags are the Chrome switches layered over chromedp's defaults.
func (s *Session) launchFlags() map[string]interface{} {
	return map[string]interface{}{
		"headless":    s.opts.Headless,
		"disable-gpu": false,
		// The client renders to a canvas; keep it painting when unfocused.
		"disable-background-timer-throttling": true,
		"disable-renderer-backgrounding":      true,
	}
}

// Start launches Chrome, restores cookies and opens the client URL.
func (s *Session) Start(cookies []Cookie) error {
	if s.alive() {
		return errors.New("browser: session already started")
	}

	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	for name, value := range s.launchFlags() {
		opts = append(opts, chromedp.Flag(name, value))
	}
	opts = append(opts, chromedp.WindowSize(s.opts.Width, s.opts.Height))

	s.allocCtx, s.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	s.ctx, s.cancel = chromedp.NewContext(s.allocCtx, chromedp.WithLogf(logging.Debug))
	logging.Info("Chrome tab opened (%dx%d, headless=%v)", s.opts.Width, s.opts.Height, s.opts.Headless)

	if len(cookies) > 0 {
		if err := s.SetCookies(cookies); err != nil {
			logging.Warn("Restoring %d cookies failed: %v", len(cookies), err)
		} else {
			logging.Info("Restored %d cookies", len(cookies))
		}
	}
	return s.open(s.opts.URL)
}

// open sizes the viewport and loads url.
func (s *Session) open(url string) error {
	ctx, cancel := context.WithTimeout(s.ctx, navigateTimeout)
	defer cancel()

	start := time.Now()
	if err := chromedp.Run(ctx,
		chromedp.EmulateViewport(int64(s.opts.Width), int64(s.opts.Height)),
		chromedp.Navigate(url),
	); err != nil {
		logging.Error("Loading %s failed: %v", url, err)
		return fmt.Errorf("browser: navigate %s: %w", url, err)
	}
	logging.Info("Loaded %s in %v", url, time.Since(start).Round(time.Millisecond))
	return nil
}

func (s *Session) alive() bool {
	return s.ctx != nil && s.ctx.Err() == nil
}

// Bounds returns the viewport rectangle.
func (s *Session) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.opts.Width, s.opts.Height)
}

// Capture screenshots the viewport.
func (s *Session) Capture() (*image.RGBA, error) {
	if !s.alive() {
		return nil, ErrNotRunning
	}

	var buf []byte
	captureCtx, cancel := context.WithTimeout(s.ctx, captureTimeout)
	defer cancel()

	if err := chromedp.Run(captureCtx, chromedp.CaptureScreenshot(&buf)); err != nil {
		logging.Debug("Screenshot failed: %v", err)
		return nil, fmt.Errorf("browser: screenshot: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("browser: decode screenshot: %w", err)
	}
	return screen.Crop(img, img.Bounds()), nil
}

// CaptureFrame screenshots the viewport and crops region.
func (s *Session) CaptureFrame(region image.Rectangle) (*image.RGBA, error) {
	full, err := s.Capture()
	if err != nil {
		return nil, err
	}
	r, err := screen.Clip(region, full.Bounds())
	if err != nil {
		return nil, err
	}
	if r == full.Bounds() {
		return full, nil
	}
	out := screen.Crop(full, r)
	out.Rect = out.Rect.Add(r.Min)
	return out, nil
}

// CaptureFrameGray returns region as luminance.
func (s *Session) CaptureFrameGray(region image.Rectangle) (*image.Gray, error) {
	img, err := s.CaptureFrame(region)
	if err != nil {
		return nil, err
	}
	return screen.ToGray(img), nil
}

// Close cancels the tab and allocator contexts, which terminates Chrome.
func (s *Session) Close() {
	logging.Info("Closing browser...")
	if s.cancel != nil {
		logging.Debug("Cancelling browser context")
		s.cancel()
	}
	if s.allocCancel != nil {
		logging.Debug("Cancelling allocator context")
		s.allocCancel()
	}
	logging.Info("Browser closed successfully")
}
