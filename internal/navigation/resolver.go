package navigation

import (
	"errors"
	"fmt"
	"image"

	"github.com/YusufSemihCan/Charon-LCBot/internal/input"
	"github.com/YusufSemihCan/Charon-LCBot/internal/logging"
	"github.com/YusufSemihCan/Charon-LCBot/internal/screen"
)

// ErrNoFrame is returned when the screen provider yields no frame.
var ErrNoFrame = errors.New("navigation: no frame captured")

// Locator finds templates in frames. *vision.Locator implements it.
type Locator interface {
	Find(frame image.Image, name string, threshold float64, useEdges bool) (image.Rectangle, error)
	FindAll(frame image.Image, name string, threshold float64, useEdges bool) ([]image.Rectangle, error)
}

// Anchor is one checklist entry: if Template is visible, the screen is State.
type Anchor struct {
	Template Template
	State    State
	// Color matches against the color frame. Tabs that differ from their
	// inactive form only by hue need it.
	Color bool
	// Threshold overrides the resolver default when non-zero.
	Threshold float64
	Edges     bool
}

// DefaultChecklist is the resolution order. Popups and overlays come first
// because the screen beneath them keeps its own anchors visible.
func DefaultChecklist() []Anchor {
	return []Anchor{
		{Template: AnchorRetryConnection, State: Disconnected},
		{Template: AnchorConnecting, State: Connecting},
		{Template: AnchorBattle, State: Battle},
		{Template: AnchorPreBattle, State: PreBattle},
		{Template: AnchorMDConfirmation, State: MirrorDungeonConfirmation},
		{Template: AnchorMDProgress, State: MirrorDungeonDelving},
		{Template: AnchorChargeBoxes, State: ChargeBoxes, Color: true},
		{Template: AnchorChargeModules, State: ChargeModules, Color: true},
		{Template: AnchorChargeLunacy, State: ChargeLunacy, Color: true},
		{Template: AnchorThreadLevels, State: LuxcavationThread},
		{Template: AnchorLuxEXPPanel, State: LuxcavationEXP},
		{Template: AnchorLuxEXP, State: LuxcavationEXP, Color: true},
		{Template: AnchorLuxThread, State: LuxcavationThread, Color: true},
		{Template: AnchorMirrorDungeon, State: MirrorDungeon},
		{Template: AnchorHub, State: Hub, Color: true},
		{Template: AnchorDrive, State: Drive, Color: true},
		{Template: AnchorSinners, State: Sinners, Color: true},
	}
}

// Hit is one anchor found in a frame.
type Hit struct {
	Anchor Anchor
	Rect   image.Rectangle
}

// Resolver classifies the current screen from a single capture.
type Resolver struct {
	screen    screen.Provider
	locator   Locator
	anchors   []Anchor
	threshold float64

	// clearCursor parks the pointer at the screen edge before capture so
	// hover highlights do not alter anchors.
	actuator    input.Actuator
	clearCursor bool
}

// NewResolver creates a resolver over the given checklist.
func NewResolver(scr screen.Provider, loc Locator, anchors []Anchor, threshold float64) *Resolver {
	return &Resolver{
		screen:    scr,
		locator:   loc,
		anchors:   anchors,
		threshold: threshold,
	}
}

// ClearCursorWith enables the pointer-parking pre-step.
func (r *Resolver) ClearCursorWith(act input.Actuator, enabled bool) {
	r.actuator = act
	r.clearCursor = enabled && act != nil
}

// Resolve captures one frame and returns the state of the first anchor found,
// or Unknown.
func (r *Resolver) Resolve() (State, error) {
	if r.clearCursor {
		b := r.screen.Bounds()
		park := image.Point{X: b.Max.X - 5, Y: b.Min.Y + b.Dy()/2}
		if err := r.actuator.MoveTo(park, false); err != nil {
			return Unknown, err
		}
	}

	frame, err := r.screen.CaptureFrame(image.Rectangle{})
	if err != nil {
		return Unknown, fmt.Errorf("navigation: capture: %w", err)
	}
	if frame == nil {
		return Unknown, ErrNoFrame
	}

	hit, ok, err := r.Classify(frame)
	if err != nil {
		return Unknown, err
	}
	if !ok {
		logging.Debug("Resolved Unknown (%d anchors checked)", len(r.anchors))
		return Unknown, nil
	}
	logging.Debug("Resolved %s via %s at %v", hit.Anchor.State, hit.Anchor.Template, hit.Rect)
	return hit.Anchor.State, nil
}

// Classify walks the checklist against frame and returns the first hit.
func (r *Resolver) Classify(frame *image.RGBA) (Hit, bool, error) {
	var gray *image.Gray
	for _, a := range r.anchors {
		var img image.Image = frame
		if !a.Color {
			if gray == nil {
				gray = screen.ToGray(frame)
			}
			img = gray
		}
		rect, err := r.locator.Find(img, string(a.Template), r.thresholdFor(a), a.Edges)
		if err != nil {
			return Hit{}, false, err
		}
		if !rect.Empty() {
			return Hit{Anchor: a, Rect: rect}, true, nil
		}
	}
	return Hit{}, false, nil
}

// Survey runs every anchor against frame and returns all hits in checklist
// order. Used for offline diagnosis of screenshots.
func (r *Resolver) Survey(frame *image.RGBA) ([]Hit, error) {
	gray := screen.ToGray(frame)
	var hits []Hit
	for _, a := range r.anchors {
		var img image.Image = gray
		if a.Color {
			img = frame
		}
		rect, err := r.locator.Find(img, string(a.Template), r.thresholdFor(a), a.Edges)
		if err != nil {
			return hits, err
		}
		if !rect.Empty() {
			hits = append(hits, Hit{Anchor: a, Rect: rect})
		}
	}
	return hits, nil
}

func (r *Resolver) thresholdFor(a Anchor) float64 {
	if a.Threshold > 0 {
		return a.Threshold
	}
	return r.threshold
}
