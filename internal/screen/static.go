package screen

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync"
)

// Static serves crops of a fixed image. It backs offline screenshot
// inspection, and tests swap frames with Set to script a sequence of screens.
type Static struct {
	mu  sync.RWMutex
	img *image.RGBA
}

// NewStatic wraps img.
func NewStatic(img image.Image) *Static {
	s := &Static{}
	s.Set(img)
	return s
}

// LoadStatic decodes a PNG or JPEG file.
func LoadStatic(path string) (*Static, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("screen: open %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("screen: decode %s: %w", path, err)
	}
	return NewStatic(img), nil
}

// Set replaces the served image.
func (s *Static) Set(img image.Image) {
	rgba := Crop(img, img.Bounds())
	s.mu.Lock()
	s.img = rgba
	s.mu.Unlock()
}

// Bounds returns the image size.
func (s *Static) Bounds() image.Rectangle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.img.Bounds()
}

// CaptureFrame returns a copy of region.
func (s *Static) CaptureFrame(region image.Rectangle) (*image.RGBA, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, err := Clip(region, s.img.Bounds())
	if err != nil {
		return nil, err
	}
	out := Crop(s.img, r)
	out.Rect = out.Rect.Add(r.Min)
	return out, nil
}

// CaptureFrameGray returns region as luminance.
func (s *Static) CaptureFrameGray(region image.Rectangle) (*image.Gray, error) {
	img, err := s.CaptureFrame(region)
	if err != nil {
		return nil, err
	}
	return ToGray(img), nil
}
