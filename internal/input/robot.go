package input

import (
	"image"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-vgo/robotgo"

	"github.com/YusufSemihCan/Charon-LCBot/internal/logging"
)

// Robot drives the real desktop pointer and keyboard through robotgo.
//
// Fail-safe: parking the pointer at (0, 0) trips it. Once tripped it stays
// tripped until Reset, so a slow operator cannot race the next action.
type Robot struct {
	origin  image.Point
	mu      sync.Mutex
	rng     *rand.Rand
	tripped atomic.Bool
	sleep   func(time.Duration)
}

// NewRobot creates a desktop actuator. origin is the top-left of the captured
// display in virtual-desktop coordinates; MoveTo targets are relative to it.
func NewRobot(origin image.Point) *Robot {
	return &Robot{
		origin: origin,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:  time.Sleep,
	}
}

// CheckFailSafe reports ErrFailSafe if the pointer sits in the top-left
// corner or the fail-safe was tripped earlier.
func (r *Robot) CheckFailSafe() error {
	if r.tripped.Load() {
		return ErrFailSafe
	}
	if x, y := robotgo.Location(); x == 0 && y == 0 {
		r.Trip()
		return ErrFailSafe
	}
	return nil
}

// Trip latches the fail-safe.
func (r *Robot) Trip() {
	if !r.tripped.Swap(true) {
		logging.Warn("Fail-safe tripped, automation halted")
	}
}

// Reset clears a tripped fail-safe.
func (r *Robot) Reset() {
	r.tripped.Store(false)
	logging.Info("Fail-safe reset")
}

// MoveTo moves the pointer to p.
func (r *Robot) MoveTo(p image.Point, humanLike bool) error {
	if err := r.CheckFailSafe(); err != nil {
		return err
	}
	target := p.Add(r.origin)

	r.mu.Lock()
	defer r.mu.Unlock()

	if !humanLike {
		robotgo.Move(target.X, target.Y)
		return nil
	}

	x, y := robotgo.Location()
	return Glide(r.rng, image.Point{X: x, Y: y}, target,
		func(pt image.Point) error {
			robotgo.Move(pt.X, pt.Y)
			return nil
		},
		r.CheckFailSafe,
		r.sleep,
	)
}

// Click presses b, holds it, and releases it.
func (r *Robot) Click(b Button, hold time.Duration) error {
	if err := r.CheckFailSafe(); err != nil {
		return err
	}
	if hold <= 0 {
		hold = DefaultClickHold
	}
	if err := robotgo.Toggle(b.String()); err != nil {
		return err
	}
	r.sleep(hold)
	return robotgo.Toggle(b.String(), "up")
}

// Drag holds the left button from from to to.
func (r *Robot) Drag(from, to image.Point, humanLike bool) error {
	if err := r.MoveTo(from, humanLike); err != nil {
		return err
	}
	left := ButtonLeft.String()
	if err := robotgo.Toggle(left); err != nil {
		return err
	}
	r.sleep(DragSettle)
	moveErr := r.MoveTo(to, humanLike)
	r.sleep(DragSettle)
	if err := robotgo.Toggle(left, "up"); err != nil && moveErr == nil {
		return err
	}
	if moveErr == nil {
		logging.Debug("Dragged (%d, %d) -> (%d, %d)", from.X, from.Y, to.X, to.Y)
	}
	return moveErr
}

// PressKey presses k, holds it, and releases it.
func (r *Robot) PressKey(k Key, hold time.Duration) error {
	if err := r.CheckFailSafe(); err != nil {
		return err
	}
	if hold <= 0 {
		hold = DefaultKeyHold
	}
	if err := robotgo.KeyToggle(string(k)); err != nil {
		return err
	}
	r.sleep(hold)
	return robotgo.KeyToggle(string(k), "up")
}
