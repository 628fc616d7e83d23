package navigation

import (
	"image"
	"time"

	"github.com/YusufSemihCan/Charon-LCBot/internal/input"
)

// spot is a clickable or visible region with its own click outcome.
type spot struct {
	rect image.Rectangle
	next string
}

// screenDef describes one fake game screen.
type screenDef struct {
	anchors  []Template
	controls map[Template]string
	spots    map[Template][]spot
	keys     map[input.Key]string
	// autoNext replaces the screen after autoAfter captures (animations,
	// battles finishing on their own).
	autoNext  string
	autoAfter int
}

// fakeGame is a scripted client: it serves frames, answers template lookups
// for whatever screen is current, and applies clicks and keys.
type fakeGame struct {
	screens map[string]*screenDef
	current string

	slots    map[Template]image.Rectangle
	pos      image.Point
	clicks   []Template
	keys     []input.Key
	moves    int
	drags    [][2]image.Point
	captures int
	sinceSet int
	tripped  bool
}

func newFakeGame(start string, screens map[string]*screenDef) *fakeGame {
	return &fakeGame{
		screens: screens,
		current: start,
		slots:   make(map[Template]image.Rectangle),
	}
}

func (g *fakeGame) screen() *screenDef {
	if s, ok := g.screens[g.current]; ok {
		return s
	}
	return &screenDef{}
}

func (g *fakeGame) set(name string) {
	g.current = name
	g.sinceSet = 0
}

// slot gives every template a stable, non-overlapping rectangle.
func (g *fakeGame) slot(t Template) image.Rectangle {
	if r, ok := g.slots[t]; ok {
		return r
	}
	i := len(g.slots)
	r := image.Rect((i%10)*40, 400+(i/10)*30, (i%10)*40+30, 400+(i/10)*30+20)
	g.slots[t] = r
	return r
}

func (g *fakeGame) rects(name string) []image.Rectangle {
	t := Template(name)
	s := g.screen()
	if spots, ok := s.spots[t]; ok {
		out := make([]image.Rectangle, len(spots))
		for i, sp := range spots {
			out[i] = sp.rect
		}
		return out
	}
	if _, ok := s.controls[t]; ok {
		return []image.Rectangle{g.slot(t)}
	}
	for _, a := range s.anchors {
		if a == t {
			return []image.Rectangle{g.slot(t)}
		}
	}
	return nil
}

// screen.Provider

func (g *fakeGame) Bounds() image.Rectangle { return image.Rect(0, 0, 400, 600) }

func (g *fakeGame) tick() {
	g.captures++
	g.sinceSet++
	if s := g.screen(); s.autoNext != "" && g.sinceSet > s.autoAfter {
		g.set(s.autoNext)
	}
}

func (g *fakeGame) CaptureFrame(image.Rectangle) (*image.RGBA, error) {
	g.tick()
	return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
}

func (g *fakeGame) CaptureFrameGray(image.Rectangle) (*image.Gray, error) {
	g.tick()
	return image.NewGray(image.Rect(0, 0, 4, 4)), nil
}

// Locator

func (g *fakeGame) Find(_ image.Image, name string, _ float64, _ bool) (image.Rectangle, error) {
	if rs := g.rects(name); len(rs) > 0 {
		return rs[0], nil
	}
	return image.Rectangle{}, nil
}

func (g *fakeGame) FindAll(_ image.Image, name string, _ float64, _ bool) ([]image.Rectangle, error) {
	return g.rects(name), nil
}

// input.Actuator

func (g *fakeGame) CheckFailSafe() error {
	if g.tripped {
		return input.ErrFailSafe
	}
	return nil
}

func (g *fakeGame) MoveTo(p image.Point, _ bool) error {
	if g.tripped {
		return input.ErrFailSafe
	}
	g.moves++
	g.pos = p
	return nil
}

func (g *fakeGame) Click(input.Button, time.Duration) error {
	if g.tripped {
		return input.ErrFailSafe
	}
	s := g.screen()
	for t, spots := range s.spots {
		for _, sp := range spots {
			if g.pos.In(sp.rect) {
				g.clicks = append(g.clicks, t)
				if sp.next != "" {
					g.set(sp.next)
				}
				return nil
			}
		}
	}
	for t, next := range s.controls {
		if g.pos.In(g.slot(t)) {
			g.clicks = append(g.clicks, t)
			if next != "" {
				g.set(next)
			}
			return nil
		}
	}
	g.clicks = append(g.clicks, "")
	return nil
}

func (g *fakeGame) Drag(from, to image.Point, _ bool) error {
	if g.tripped {
		return input.ErrFailSafe
	}
	g.drags = append(g.drags, [2]image.Point{from, to})
	g.pos = to
	return nil
}

func (g *fakeGame) PressKey(k input.Key, _ time.Duration) error {
	if g.tripped {
		return input.ErrFailSafe
	}
	g.keys = append(g.keys, k)
	if next, ok := g.screen().keys[k]; ok {
		g.set(next)
	}
	return nil
}

// menus is the fake client used by most engine tests.
func menus() map[string]*screenDef {
	return map[string]*screenDef{
		"hub": {
			anchors:  []Template{AnchorHub},
			controls: map[Template]string{ButtonDrive: "drive", ButtonSinners: "sinners", IconEnkephalin: "modules"},
		},
		"drive": {
			anchors: []Template{AnchorDrive},
			controls: map[Template]string{
				ButtonHub: "hub", ButtonSinners: "sinners", IconEnkephalin: "modules",
				ButtonLuxcavation: "exp", ButtonMirrorDungeon: "md",
			},
		},
		"sinners": {
			anchors:  []Template{AnchorSinners},
			controls: map[Template]string{ButtonHub: "hub", ButtonDrive: "drive", IconEnkephalin: "modules"},
		},
		"modules": {
			anchors:  []Template{AnchorChargeModules, AnchorDrive},
			controls: map[Template]string{ButtonChargeBoxes: "boxes", ButtonChargeLunacy: "lunacy"},
			keys:     map[input.Key]string{input.KeyEscape: "drive"},
		},
		"boxes": {
			anchors:  []Template{AnchorChargeBoxes, AnchorDrive},
			controls: map[Template]string{ButtonChargeModules: "modules", ButtonChargeLunacy: "lunacy"},
			keys:     map[input.Key]string{input.KeyEscape: "drive"},
		},
		"lunacy": {
			anchors:  []Template{AnchorChargeLunacy, AnchorDrive},
			controls: map[Template]string{ButtonChargeModules: "modules", ButtonChargeBoxes: "boxes"},
			keys:     map[input.Key]string{input.KeyEscape: "drive"},
		},
		"exp": {
			anchors:  []Template{AnchorLuxEXPPanel, AnchorLuxEXP},
			controls: map[Template]string{ButtonLuxThread: "thread", ButtonBack: "drive", IconEnkephalin: "modules"},
			spots: map[Template][]spot{
				ButtonLuxEXPEnter:  {{rect: image.Rect(20, 200, 60, 220), next: "wrong"}},
				ButtonLuxEXPEnter2: {{rect: image.Rect(150, 200, 190, 220), next: "wrong"}},
				ButtonLuxEXPEnter3: {{rect: image.Rect(300, 200, 340, 220), next: "prebattle"}},
			},
		},
		"thread": {
			anchors:  []Template{AnchorLuxThread},
			controls: map[Template]string{ButtonLuxEXP: "exp", ButtonBack: "drive"},
			spots: map[Template][]spot{
				ButtonThreadEnter: {
					{rect: image.Rect(200, 150, 240, 170), next: "wrong"},
					{rect: image.Rect(20, 150, 60, 170), next: "levels"},
				},
			},
		},
		"levels": {
			anchors: []Template{AnchorThreadLevels, AnchorLuxThread},
			spots: map[Template][]spot{
				"Text_LuxcavationThread_Level50": {{rect: image.Rect(40, 90, 100, 110)}},
				"Text_LuxcavationThread_Level40": {{rect: image.Rect(40, 150, 100, 170)}},
				ButtonThreadLevelEnter: {
					{rect: image.Rect(300, 150, 340, 170), next: "wrong"},
					{rect: image.Rect(300, 95, 340, 115), next: "prebattle"},
					{rect: image.Rect(600, 95, 640, 115), next: "wrong"},
				},
			},
		},
		"prebattle": {
			anchors:  []Template{AnchorPreBattle},
			controls: map[Template]string{ButtonToBattle: "battle", ButtonBack: "exp"},
		},
		"battle": {
			anchors:   []Template{AnchorBattle},
			autoNext:  "prebattle",
			autoAfter: 3,
		},
		"md": {
			anchors:  []Template{AnchorMirrorDungeon},
			controls: map[Template]string{ButtonMDEnter: "mdconfirm", ButtonBack: "drive"},
		},
		"mdconfirm": {
			anchors:  []Template{AnchorMDConfirmation, AnchorMirrorDungeon},
			controls: map[Template]string{ButtonMDEnter: "delving", ButtonCancel: "md"},
		},
		"delving": {
			anchors:  []Template{AnchorMDProgress},
			controls: map[Template]string{ButtonBack: "md"},
		},
		"wrong": {},
	}
}

func newTestNavigator(g *fakeGame, mutate func(*Options)) *Navigator {
	opts := DefaultOptions()
	opts.Sleep = func(time.Duration) {}
	opts.HumanLike = false
	if mutate != nil {
		mutate(&opts)
	}
	return New(g, g, g, opts)
}
