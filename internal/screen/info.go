package screen

import "image"

// Reference resolution the template assets were cut at.
const (
	ReferenceWidth  = 1920
	ReferenceHeight = 1080
)

// Info holds screen resolution information.
type Info struct {
	Width  int
	Height int
	Bounds image.Rectangle
}

// NewInfo creates screen info from a rectangle.
func NewInfo(bounds image.Rectangle) Info {
	return Info{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Bounds: bounds,
	}
}

// ScaleFactor is the template scale for this screen. The game letterboxes on
// wide aspect ratios, so only the height is compared.
func (si Info) ScaleFactor() float64 {
	if si.Height <= 0 {
		return 1
	}
	return float64(si.Height) / ReferenceHeight
}

// Scale converts a point given in reference coordinates to this screen.
func (si Info) Scale(p image.Point) image.Point {
	f := si.ScaleFactor()
	return image.Point{X: int(float64(p.X) * f), Y: int(float64(p.Y) * f)}
}

// Center returns the center point of the screen.
func (si Info) Center() image.Point {
	return Center(si.Bounds)
}
