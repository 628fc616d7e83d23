// Package input - actuator.go
//
// Synthetic input for the navigator. An Actuator moves the pointer, clicks,
// and presses keys on the game client, and owns the operator fail-safe: a
// physical gesture (pointer parked in the top-left corner for the desktop
// backend, a tray action for the browser backend) that aborts automation.
//
// Every blocking operation checks the fail-safe before acting and returns
// ErrFailSafe once it has tripped. Callers must treat ErrFailSafe as a hard
// stop and propagate it.
package input

import (
	"errors"
	"image"
	"time"
)

// ErrFailSafe signals that the operator requested an abort.
var ErrFailSafe = errors.New("input: fail-safe triggered")

// Button identifies a mouse button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonMiddle
)

// String returns the robotgo button name.
func (b Button) String() string {
	switch b {
	case ButtonRight:
		return "right"
	case ButtonMiddle:
		return "center"
	default:
		return "left"
	}
}

// Key is a named keyboard key.
type Key string

// Keys the navigator uses.
const (
	KeyEscape Key = "esc"
)

// Default hold durations. DragSettle is the pause after grabbing and before
// releasing during a drag.
const (
	DefaultClickHold = 20 * time.Millisecond
	DefaultKeyHold   = 20 * time.Millisecond
	DragSettle       = 30 * time.Millisecond
)

// Actuator injects input into the game client.
type Actuator interface {
	// MoveTo moves the pointer to p in screen coordinates, along a curved
	// path when humanLike is set.
	MoveTo(p image.Point, humanLike bool) error
	// Click presses and releases b at the current position.
	Click(b Button, hold time.Duration) error
	// PressKey presses and releases k.
	PressKey(k Key, hold time.Duration) error
	// Drag moves to from, holds the left button, moves to to and releases.
	// The button is released even when the move fails.
	Drag(from, to image.Point, humanLike bool) error
	// CheckFailSafe returns ErrFailSafe once the operator has tripped it.
	CheckFailSafe() error
}

// ClickAt moves to p and clicks b.
func ClickAt(a Actuator, p image.Point, b Button, hold time.Duration, humanLike bool) error {
	if err := a.MoveTo(p, humanLike); err != nil {
		return err
	}
	return a.Click(b, hold)
}
