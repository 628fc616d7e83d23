// Package screen - provider.go
//
// Frame acquisition for the navigator. A Provider hands out snapshots of the
// game client's visible surface in two representations: color (RGBA) and
// single-channel luminance. Callers that need both take one color frame and
// derive the gray one with ToGray, so both come from the same instant.
//
// Implementations:
//   - Desktop: physical-pixel capture of a monitor via kbinani/screenshot
//   - Static: a fixed image (offline inspection and tests)
//   - browser.Session: screenshots of a browser-hosted client (internal/browser)
package screen

import (
	"errors"
	"image"
	"image/draw"
)

// ErrEmptyRegion is returned when a requested region does not intersect the screen.
var ErrEmptyRegion = errors.New("screen: region outside screen bounds")

// Provider captures frames of the game surface.
//
// A zero region means the full bounds. Returned images are owned by the caller
// and are never reused by the provider.
type Provider interface {
	CaptureFrame(region image.Rectangle) (*image.RGBA, error)
	CaptureFrameGray(region image.Rectangle) (*image.Gray, error)
	Bounds() image.Rectangle
}

// Clip resolves region against bounds. A zero region selects all of bounds.
func Clip(region, bounds image.Rectangle) (image.Rectangle, error) {
	if region == (image.Rectangle{}) {
		return bounds, nil
	}
	r := region.Intersect(bounds)
	if r.Empty() {
		return image.Rectangle{}, ErrEmptyRegion
	}
	return r, nil
}

// Crop copies r out of src into a new RGBA whose bounds start at the origin.
func Crop(src image.Image, r image.Rectangle) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), src, r.Min, draw.Src)
	return dst
}

// ToGray converts any image to luminance, keeping its bounds.
func ToGray(src image.Image) *image.Gray {
	if g, ok := src.(*image.Gray); ok {
		return g
	}
	b := src.Bounds()
	dst := image.NewGray(b)
	draw.Draw(dst, b, src, b.Min, draw.Src)
	return dst
}

// Center returns the midpoint of r.
func Center(r image.Rectangle) image.Point {
	return image.Point{X: (r.Min.X + r.Max.X) / 2, Y: (r.Min.Y + r.Max.Y) / 2}
}
