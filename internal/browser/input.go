package browser

import (
	"context"
	"fmt"
	"image"
	"time"

	cdpinput "github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"

	"github.com/YusufSemihCan/Charon-LCBot/internal/input"
	"github.com/YusufSemihCan/Charon-LCBot/internal/logging"
)

// keyDef describes one key for Input.dispatchKeyEvent.
type keyDef struct {
	key  string
	code string
	vk   int64
}

var keyDefs = map[input.Key]keyDef{
	input.KeyEscape: {key: "Escape", code: "Escape", vk: 27},
}

var mouseButtons = map[input.Button]cdpinput.MouseButton{
	input.ButtonLeft:   cdpinput.Left,
	input.ButtonRight:  cdpinput.Right,
	input.ButtonMiddle: cdpinput.Middle,
}

// CheckFailSafe returns input.ErrFailSafe after Trip.
func (s *Session) CheckFailSafe() error {
	if s.tripped.Load() {
		return input.ErrFailSafe
	}
	return nil
}

// Trip latches the fail-safe. The browser has no physical pointer corner to
// watch, so the shell trips it from its Stop action.
func (s *Session) Trip() {
	if !s.tripped.Swap(true) {
		logging.Warn("Fail-safe tripped, automation halted")
	}
}

// Reset clears a tripped fail-safe.
func (s *Session) Reset() {
	s.tripped.Store(false)
	logging.Info("Fail-safe reset")
}

func (s *Session) dispatch(actions ...chromedp.Action) error {
	if !s.alive() {
		return ErrNotRunning
	}
	ctx, cancel := context.WithTimeout(s.ctx, inputTimeout)
	defer cancel()
	return chromedp.Run(ctx, actions...)
}

func (s *Session) moveEvent(p image.Point) error {
	return s.dispatch(cdpinput.DispatchMouseEvent(cdpinput.MouseMoved, float64(p.X), float64(p.Y)))
}

// dragEvent is a move with the left button held, so the page sees buttons=1.
func (s *Session) dragEvent(p image.Point) error {
	return s.dispatch(cdpinput.DispatchMouseEvent(cdpinput.MouseMoved, float64(p.X), float64(p.Y)).
		WithButton(cdpinput.Left).
		WithButtons(1))
}

func (s *Session) buttonEvent(typ cdpinput.MouseType, p image.Point, b cdpinput.MouseButton) error {
	return s.dispatch(cdpinput.DispatchMouseEvent(typ, float64(p.X), float64(p.Y)).
		WithButton(b).
		WithClickCount(1))
}

// glideLocked walks the pointer to p through step. Callers hold s.mu.
func (s *Session) glideLocked(p image.Point, humanLike bool, step func(image.Point) error) error {
	var err error
	if humanLike {
		err = input.Glide(s.rng, s.pointer, p, step, s.CheckFailSafe, s.sleep)
	} else {
		err = step(p)
	}
	if err != nil {
		logging.Error("Failed to move to (%d, %d): %v", p.X, p.Y, err)
		return err
	}
	s.pointer = p
	return nil
}

// MoveTo moves the virtual pointer inside the viewport.
func (s *Session) MoveTo(p image.Point, humanLike bool) error {
	if err := s.CheckFailSafe(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.glideLocked(p, humanLike, s.moveEvent)
}

// Drag presses the left button at from, moves with it held, and releases at
// the last position reached.
func (s *Session) Drag(from, to image.Point, humanLike bool) error {
	if err := s.CheckFailSafe(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.glideLocked(from, humanLike, s.moveEvent); err != nil {
		return err
	}
	if err := s.buttonEvent(cdpinput.MousePressed, from, cdpinput.Left); err != nil {
		logging.Error("Failed to grab at (%d, %d): %v", from.X, from.Y, err)
		return err
	}
	s.sleep(input.DragSettle)
	moveErr := s.glideLocked(to, humanLike, s.dragEvent)
	s.sleep(input.DragSettle)
	if err := s.buttonEvent(cdpinput.MouseReleased, s.pointer, cdpinput.Left); err != nil && moveErr == nil {
		logging.Error("Failed to release at (%d, %d): %v", s.pointer.X, s.pointer.Y, err)
		return err
	}
	if moveErr == nil {
		logging.Debug("Dragged (%d, %d) -> (%d, %d)", from.X, from.Y, to.X, to.Y)
	}
	return moveErr
}

// Click presses and releases b at the current pointer position.
func (s *Session) Click(b input.Button, hold time.Duration) error {
	if err := s.CheckFailSafe(); err != nil {
		return err
	}
	if hold <= 0 {
		hold = input.DefaultClickHold
	}

	s.mu.Lock()
	p := s.pointer
	s.mu.Unlock()

	button := mouseButtons[b]
	err := s.buttonEvent(cdpinput.MousePressed, p, button)
	if err == nil {
		s.sleep(hold)
		err = s.buttonEvent(cdpinput.MouseReleased, p, button)
	}
	if err != nil {
		logging.Error("Failed to click at (%d, %d): %v", p.X, p.Y, err)
		return err
	}
	logging.Debug("Mouse %s click at (%d, %d)", b, p.X, p.Y)
	return nil
}

// PressKey sends keyDown, waits hold, then keyUp.
func (s *Session) PressKey(k input.Key, hold time.Duration) error {
	if err := s.CheckFailSafe(); err != nil {
		return err
	}
	def, ok := keyDefs[k]
	if !ok {
		return fmt.Errorf("browser: unsupported key %q", k)
	}
	if hold <= 0 {
		hold = input.DefaultKeyHold
	}

	down := cdpinput.DispatchKeyEvent(cdpinput.KeyDown).
		WithKey(def.key).
		WithCode(def.code).
		WithWindowsVirtualKeyCode(def.vk)
	up := cdpinput.DispatchKeyEvent(cdpinput.KeyUp).
		WithKey(def.key).
		WithCode(def.code).
		WithWindowsVirtualKeyCode(def.vk)

	err := s.dispatch(down)
	if err == nil {
		s.sleep(hold)
		err = s.dispatch(up)
	}
	if err != nil {
		logging.Error("Failed to send key %s: %v", k, err)
		return err
	}
	logging.Debug("Key sent: %s", k)
	return nil
}
