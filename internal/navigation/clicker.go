package navigation

import (
	"image"
	"sort"
	"time"

	"github.com/YusufSemihCan/Charon-LCBot/internal/input"
	"github.com/YusufSemihCan/Charon-LCBot/internal/logging"
	"github.com/YusufSemihCan/Charon-LCBot/internal/screen"
)

// DefaultRowTolerance bounds the vertical distance between a label and its
// enter button; they share a row only when strictly closer than this.
const DefaultRowTolerance = 50

// Clicker finds controls on a fresh capture and clicks them.
type Clicker struct {
	screen    screen.Provider
	locator   Locator
	actuator  input.Actuator
	threshold float64
	humanLike bool
	clickHold time.Duration
	keyHold   time.Duration
	sleep     func(time.Duration)
}

// Locate captures a gray frame and finds name in it.
func (c *Clicker) Locate(name Template) (image.Rectangle, error) {
	frame, err := c.screen.CaptureFrameGray(image.Rectangle{})
	if err != nil {
		return image.Rectangle{}, err
	}
	return c.locator.Find(frame, string(name), c.threshold, false)
}

// ClickAt moves to p and left-clicks.
func (c *Clicker) ClickAt(p image.Point) error {
	return input.ClickAt(c.actuator, p, input.ButtonLeft, c.clickHold, c.humanLike)
}

// ClickTemplate clicks the center of name. It reports false, with no input
// sent, when name is not on screen.
func (c *Clicker) ClickTemplate(name Template) (bool, error) {
	r, err := c.Locate(name)
	if err != nil {
		return false, err
	}
	if r.Empty() {
		logging.Info("[MISS] %s not found on screen", name)
		return false, nil
	}
	p := screen.Center(r)
	logging.Debug("Clicking %s at (%d, %d)", name, p.X, p.Y)
	if err := c.ClickAt(p); err != nil {
		return false, err
	}
	return true, nil
}

// Press sends one key.
func (c *Clicker) Press(k input.Key) error {
	logging.Debug("Pressing %s", k)
	return c.actuator.PressKey(k, c.keyHold)
}

// Dismiss presses Escape to close the topmost popup or overlay.
func (c *Clicker) Dismiss() error {
	return c.Press(input.KeyEscape)
}

// WaitAndClick polls for name every interval until it appears or timeout
// elapses, then clicks it.
func (c *Clicker) WaitAndClick(name Template, timeout, interval time.Duration) (bool, error) {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	for waited := time.Duration(0); ; waited += interval {
		if err := c.actuator.CheckFailSafe(); err != nil {
			return false, err
		}
		r, err := c.Locate(name)
		if err != nil {
			return false, err
		}
		if !r.Empty() {
			if err := c.ClickAt(screen.Center(r)); err != nil {
				return false, err
			}
			return true, nil
		}
		if waited >= timeout {
			logging.Info("[MISS] %s did not appear within %v", name, timeout)
			return false, nil
		}
		c.sleep(interval)
	}
}

// Drag locates from and to on one capture and drags between their centers.
// It reports false, with no input sent, when either is missing.
func (c *Clicker) Drag(from, to Template) (bool, error) {
	return c.DragChain([]Template{from, to})
}

// DragChain locates every name on a single capture before moving, then drags
// through their centers in order, one segment at a time. A missing link
// aborts the whole chain before any input is sent.
func (c *Clicker) DragChain(names []Template) (bool, error) {
	if err := c.actuator.CheckFailSafe(); err != nil {
		return false, err
	}
	if len(names) < 2 {
		logging.Warn("Drag needs at least two templates, got %d", len(names))
		return false, nil
	}

	frame, err := c.screen.CaptureFrameGray(image.Rectangle{})
	if err != nil {
		return false, err
	}
	path := make([]image.Point, len(names))
	for i, name := range names {
		r, err := c.locator.Find(frame, string(name), c.threshold, false)
		if err != nil {
			return false, err
		}
		if r.Empty() {
			logging.Info("[MISS] %s not found, drag aborted", name)
			return false, nil
		}
		path[i] = screen.Center(r)
	}

	for i := 0; i+1 < len(path); i++ {
		if i > 0 {
			c.sleep(input.DragSettle)
		}
		if err := c.actuator.Drag(path[i], path[i+1], c.humanLike); err != nil {
			return false, err
		}
	}
	logging.Debug("Dragged through %v", names)
	return true, nil
}

// findAll captures one gray frame and collects every match of every name.
func (c *Clicker) findAll(names []Template) ([]image.Rectangle, error) {
	frame, err := c.screen.CaptureFrameGray(image.Rectangle{})
	if err != nil {
		return nil, err
	}
	var all []image.Rectangle
	for _, name := range names {
		hits, err := c.locator.FindAll(frame, string(name), c.threshold, false)
		if err != nil {
			return nil, err
		}
		all = append(all, hits...)
	}
	return all, nil
}

// ClickExtreme clicks the leftmost (or rightmost) match among all variants
// of a control.
func (c *Clicker) ClickExtreme(names []Template, rightmost bool) (bool, error) {
	hits, err := c.findAll(names)
	if err != nil {
		return false, err
	}
	if len(hits) == 0 {
		logging.Info("[MISS] none of %v on screen", names)
		return false, nil
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Min.X < hits[j].Min.X })
	pick := hits[0]
	if rightmost {
		pick = hits[len(hits)-1]
	}
	if err := c.ClickAt(screen.Center(pick)); err != nil {
		return false, err
	}
	return true, nil
}

// SelectHighest scans labels in priority order, takes the first one visible,
// and clicks the enter control on the same row: vertical centers less than
// rowTolerance apart, horizontally closest to the label.
func (c *Clicker) SelectHighest(labels []Template, enters []Template, rowTolerance int) (bool, error) {
	frame, err := c.screen.CaptureFrameGray(image.Rectangle{})
	if err != nil {
		return false, err
	}

	var label image.Rectangle
	var labelName Template
	for _, name := range labels {
		r, err := c.locator.Find(frame, string(name), c.threshold, false)
		if err != nil {
			return false, err
		}
		if !r.Empty() {
			label, labelName = r, name
			break
		}
	}
	if label.Empty() {
		logging.Info("[MISS] no level label visible")
		return false, nil
	}

	var candidates []image.Rectangle
	for _, name := range enters {
		hits, err := c.locator.FindAll(frame, string(name), c.threshold, false)
		if err != nil {
			return false, err
		}
		candidates = append(candidates, hits...)
	}

	button, ok := rowPartner(label, candidates, rowTolerance)
	if !ok {
		logging.Info("[MISS] no enter button on the row of %s", labelName)
		return false, nil
	}
	logging.Info("Selected %s", labelName)
	if err := c.ClickAt(screen.Center(button)); err != nil {
		return false, err
	}
	return true, nil
}

// rowPartner picks the candidate on label's row closest to it horizontally.
func rowPartner(label image.Rectangle, candidates []image.Rectangle, tolerance int) (image.Rectangle, bool) {
	lc := screen.Center(label)
	best, bestDist := image.Rectangle{}, -1
	for _, r := range candidates {
		rc := screen.Center(r)
		if abs(rc.Y-lc.Y) >= tolerance {
			continue
		}
		if d := abs(rc.X - lc.X); bestDist < 0 || d < bestDist {
			best, bestDist = r, d
		}
	}
	return best, bestDist >= 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
