package screen

import (
	"fmt"
	"image"
	"sync"

	"github.com/kbinani/screenshot"

	"github.com/YusufSemihCan/Charon-LCBot/internal/logging"
)

// Desktop captures one monitor in physical pixels.
//
// Capture and conversion happen inside one critical section so concurrent
// callers never observe a half-converted frame.
type Desktop struct {
	display int
	bounds  image.Rectangle
	mu      sync.Mutex
}

// NewDesktop opens the given display index (0 = primary).
func NewDesktop(display int) (*Desktop, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, fmt.Errorf("screen: no active displays")
	}
	if display < 0 || display >= n {
		return nil, fmt.Errorf("screen: display %d out of range (have %d)", display, n)
	}
	bounds := screenshot.GetDisplayBounds(display)
	logging.Info("Desktop capture on display %d: %dx%d at %v", display, bounds.Dx(), bounds.Dy(), bounds.Min)
	return &Desktop{display: display, bounds: bounds}, nil
}

// Bounds returns the display size with its origin at (0, 0).
func (d *Desktop) Bounds() image.Rectangle {
	return image.Rect(0, 0, d.bounds.Dx(), d.bounds.Dy())
}

// Origin is the display's top-left corner in virtual-desktop coordinates.
func (d *Desktop) Origin() image.Point { return d.bounds.Min }

// CaptureFrame captures region (display-relative) as RGBA.
func (d *Desktop) CaptureFrame(region image.Rectangle) (*image.RGBA, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.capture(region)
}

// CaptureFrameGray captures region (display-relative) as luminance.
func (d *Desktop) CaptureFrameGray(region image.Rectangle) (*image.Gray, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	img, err := d.capture(region)
	if err != nil {
		return nil, err
	}
	return ToGray(img), nil
}

func (d *Desktop) capture(region image.Rectangle) (*image.RGBA, error) {
	r, err := Clip(region, d.Bounds())
	if err != nil {
		return nil, err
	}
	abs := r.Add(d.bounds.Min)
	img, err := screenshot.CaptureRect(abs)
	if err != nil {
		logging.Error("Screen capture of %v failed: %v", abs, err)
		return nil, fmt.Errorf("screen: capture %v: %w", abs, err)
	}
	// CaptureRect returns an image at the origin; shift it so callers can keep
	// using display-relative coordinates.
	img.Rect = img.Rect.Add(r.Min)
	return img, nil
}
