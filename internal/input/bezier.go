package input

import (
	"image"
	"math"
	"math/rand"
	"time"
)

// Path shape constants for human-like movement.
const (
	controlSpread  = 100
	minSteps       = 10
	maxSteps       = 25
	minStepDelay   = 5 * time.Millisecond
	maxStepDelay   = 15 * time.Millisecond
	failSafeStride = 5
)

// CurvedPath returns the points of a cubic Bezier from start to end with two
// random control points placed around the straight line. The last point is
// always end.
//
// Algorithm:
//  1. Pick a step count in [minSteps, maxSteps].
//  2. Place control points at 1/3 and 2/3 of the segment, jittered by up to
//     controlSpread pixels on each axis.
//  3. Sample B(t) for t = 1/steps .. 1.
func CurvedPath(rng *rand.Rand, start, end image.Point) []image.Point {
	steps := minSteps + rng.Intn(maxSteps-minSteps+1)

	jitter := func() float64 { return float64(rng.Intn(2*controlSpread+1) - controlSpread) }
	p0x, p0y := float64(start.X), float64(start.Y)
	p3x, p3y := float64(end.X), float64(end.Y)
	p1x := p0x + (p3x-p0x)/3 + jitter()
	p1y := p0y + (p3y-p0y)/3 + jitter()
	p2x := p0x + 2*(p3x-p0x)/3 + jitter()
	p2y := p0y + 2*(p3y-p0y)/3 + jitter()

	points := make([]image.Point, 0, steps)
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		u := 1 - t
		x := u*u*u*p0x + 3*u*u*t*p1x + 3*u*t*t*p2x + t*t*t*p3x
		y := u*u*u*p0y + 3*u*u*t*p1y + 3*u*t*t*p2y + t*t*t*p3y
		points = append(points, image.Point{X: int(math.Round(x)), Y: int(math.Round(y))})
	}
	points[len(points)-1] = end
	return points
}

// stepDelay returns a random per-step pause.
func stepDelay(rng *rand.Rand) time.Duration {
	return minStepDelay + time.Duration(rng.Int63n(int64(maxStepDelay-minStepDelay)+1))
}

// Glide walks a curved path from start to end, calling move for every point
// and check every failSafeStride points so an abort lands mid-movement.
func Glide(rng *rand.Rand, start, end image.Point, move func(image.Point) error, check func() error, sleep func(time.Duration)) error {
	for i, p := range CurvedPath(rng, start, end) {
		if i%failSafeStride == 0 {
			if err := check(); err != nil {
				return err
			}
		}
		if err := move(p); err != nil {
			return err
		}
		sleep(stepDelay(rng))
	}
	return nil
}
