// Package navigation - engine.go
//
// The navigation engine drives the client from whatever screen it is on to a
// requested menu state, one perceived step at a time.
//
// Loop:
//  1. Check the fail-safe; a trip aborts with input.ErrFailSafe
//  2. Resolve the current state from a fresh capture
//  3. Done when the current state satisfies the target
//  4. From Unknown/Connecting/Disconnected run the recovery loop
//  5. Dispatch to the handler for the current state; a handler performs one
//     guarded step and recurses into NavigateTo for the rest of the route
//
// Each step is checked against the rule graph before any input is sent, then
// verified by re-resolving after a settle delay. Navigation is
// single-threaded; the engine keeps the believed current state between calls.
package navigation

import (
	"time"

	"github.com/YusufSemihCan/Charon-LCBot/internal/input"
	"github.com/YusufSemihCan/Charon-LCBot/internal/logging"
	"github.com/YusufSemihCan/Charon-LCBot/internal/screen"
)

// Options tunes engine timing and budgets.
type Options struct {
	Rules     *Rules
	Checklist []Anchor

	ClickThreshold  float64
	AnchorThreshold float64

	SettleDelay     time.Duration
	VerifyAttempts  int
	RecoveryRetries int
	RecoveryDelay   time.Duration
	ReconnectDelay  time.Duration
	BattleTimeout   time.Duration
	MaxHops         int

	ClickHold time.Duration
	KeyHold   time.Duration

	HumanLike   bool
	ClearCursor bool
	// StrictOverlay accepts an unconfirmed overlay only when the resolved
	// state is in the overlay's family.
	StrictOverlay bool

	Sleep func(time.Duration)
}

// DefaultOptions returns production settings.
func DefaultOptions() Options {
	return Options{
		ClickThreshold:  0.9,
		AnchorThreshold: 0.85,
		SettleDelay:     1500 * time.Millisecond,
		VerifyAttempts:  3,
		RecoveryRetries: 5,
		RecoveryDelay:   time.Second,
		ReconnectDelay:  3 * time.Second,
		BattleTimeout:   10 * time.Minute,
		MaxHops:         12,
		ClickHold:       input.DefaultClickHold,
		KeyHold:         input.DefaultKeyHold,
		HumanLike:       true,
	}
}

// normalized fills zero fields from DefaultOptions.
func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.Rules == nil {
		o.Rules = DefaultRules()
	}
	if o.Checklist == nil {
		o.Checklist = DefaultChecklist()
	}
	if o.ClickThreshold <= 0 {
		o.ClickThreshold = d.ClickThreshold
	}
	if o.AnchorThreshold <= 0 {
		o.AnchorThreshold = d.AnchorThreshold
	}
	if o.VerifyAttempts <= 0 {
		o.VerifyAttempts = d.VerifyAttempts
	}
	if o.RecoveryRetries <= 0 {
		o.RecoveryRetries = d.RecoveryRetries
	}
	if o.BattleTimeout <= 0 {
		o.BattleTimeout = d.BattleTimeout
	}
	if o.MaxHops <= 0 {
		o.MaxHops = d.MaxHops
	}
	if o.Sleep == nil {
		o.Sleep = time.Sleep
	}
	return o
}

type handler func(n *Navigator, target State) (bool, error)

// Navigator moves the client between menu states.
type Navigator struct {
	opts     Options
	rules    *Rules
	resolver *Resolver
	clicker  *Clicker
	actuator input.Actuator
	handlers map[State]handler

	current State
	hops    int
	depth   int
}

// New wires a Navigator.
func New(scr screen.Provider, loc Locator, act input.Actuator, opts Options) *Navigator {
	n := &Navigator{actuator: act}
	n.resolver = NewResolver(scr, loc, nil, 0)
	n.clicker = &Clicker{screen: scr, locator: loc, actuator: act}
	n.handlers = defaultHandlers()
	n.SetOptions(opts)
	return n
}

// SetOptions replaces timing, thresholds and rules. Call it only between
// navigations.
func (n *Navigator) SetOptions(opts Options) {
	opts = opts.normalized()
	n.opts = opts
	n.rules = opts.Rules

	n.resolver.anchors = opts.Checklist
	n.resolver.threshold = opts.AnchorThreshold
	n.resolver.ClearCursorWith(n.actuator, opts.ClearCursor)

	n.clicker.threshold = opts.ClickThreshold
	n.clicker.humanLike = opts.HumanLike
	n.clicker.clickHold = opts.ClickHold
	n.clicker.keyHold = opts.KeyHold
	n.clicker.sleep = opts.Sleep
}

// Options returns the active options.
func (n *Navigator) Options() Options { return n.opts }

// Resolver exposes the state resolver.
func (n *Navigator) Resolver() *Resolver { return n.resolver }

// Clicker exposes the control clicker.
func (n *Navigator) Clicker() *Clicker { return n.clicker }

// CurrentState returns the last resolved or assumed state.
func (n *Navigator) CurrentState() State { return n.current }

// SynchronizeState resolves the screen and replaces the believed state.
func (n *Navigator) SynchronizeState() (State, error) {
	s, err := n.resolver.Resolve()
	if err != nil {
		return n.current, err
	}
	if s != n.current {
		logging.Debug("State %s -> %s", n.current, s)
	}
	n.current = s
	return s, nil
}

// NavigateTo drives the client to target. It reports false when the target
// could not be reached within the retry and hop budgets. The error is non-nil
// only for a fail-safe trip, a capture failure, or an asset fault.
func (n *Navigator) NavigateTo(target State) (bool, error) {
	if n.depth == 0 {
		n.hops = 0
		logging.Info("[NAV] navigating to %s", target)
	}
	n.depth++
	defer func() { n.depth-- }()

	if err := n.actuator.CheckFailSafe(); err != nil {
		logging.Error("[NAV] aborted: %v", err)
		return false, err
	}

	state, err := n.SynchronizeState()
	if err != nil {
		return false, err
	}
	if state.Satisfies(target) {
		logging.Info("[NAV] at %s", state)
		return true, nil
	}

	if n.hops >= n.opts.MaxHops {
		logging.Warn("[NAV] hop budget (%d) exhausted at %s, target %s", n.opts.MaxHops, state, target)
		return false, nil
	}
	n.hops++

	switch state {
	case Unknown, Connecting, Disconnected:
		ok, err := n.recover(target, known)
		if err != nil || !ok {
			return false, err
		}
		if n.current.Satisfies(target) {
			return true, nil
		}
		return n.NavigateTo(target)
	}

	reached := false
	if h, ok := n.handlers[state]; ok {
		reached, err = h(n, target)
		if err != nil {
			return false, err
		}
	} else {
		logging.Warn("[NAV] no route from %s", state)
	}

	// The hub is the home screen: when no route gets there, back out with
	// Escape until its anchor shows. Escape in a battle pauses it instead.
	if !reached && target == Hub && n.depth == 1 && n.current != Hub && n.current.Family() != FamilyCombat {
		logging.Info("[NAV] route to %s failed at %s, dismissing toward it", target, n.current)
		return n.recover(target, atHub)
	}
	return reached, nil
}

// action performs one input; it reports false when its control was not found.
type action func() (bool, error)

func (n *Navigator) click(name Template) action {
	return func() (bool, error) { return n.clicker.ClickTemplate(name) }
}

func (n *Navigator) press(k input.Key) action {
	return func() (bool, error) {
		if err := n.clicker.Press(k); err != nil {
			return false, err
		}
		return true, nil
	}
}

// allowed consults the rule graph and logs refusals.
func (n *Navigator) allowed(to State, label string) bool {
	if n.rules.CanTransition(n.current, to) {
		return true
	}
	logging.Warn("[BLOCKED] %s -> %s via %s is not an allowed transition", n.current, to, label)
	return false
}

// step performs act if current -> expect is allowed, then verifies that the
// screen reached expect.
func (n *Navigator) step(label string, act action, expect State) (bool, error) {
	if !n.allowed(expect, label) {
		return false, nil
	}
	from := n.current
	ok, err := act()
	if err != nil || !ok {
		return false, err
	}
	return n.verify(from, expect)
}

// settle waits for the screen to finish animating and resolves it, retrying
// while the result is Unknown or still `from`.
func (n *Navigator) settle(from State) (State, error) {
	var got State
	for attempt := 0; attempt < n.opts.VerifyAttempts; attempt++ {
		n.opts.Sleep(n.opts.SettleDelay)
		s, err := n.SynchronizeState()
		if err != nil {
			return Unknown, err
		}
		got = s
		if got != Unknown && got != from {
			break
		}
	}
	return got, nil
}

func (n *Navigator) verify(from, expect State) (bool, error) {
	got, err := n.settle(from)
	if err != nil {
		return false, err
	}
	if got == expect {
		logging.Info("[NAV] %s -> %s", from, got)
		return true, nil
	}
	if expect.IsOverlay() && n.overlayAccepts(expect, got) {
		logging.Warn("[ASSUME] expected overlay %s, resolved %s; treating as reached", expect, got)
		n.current = expect
		return true, nil
	}
	logging.Warn("[NAV] expected %s after %s, resolved %s", expect, from, got)
	return false, nil
}

func (n *Navigator) overlayAccepts(expect, got State) bool {
	if got == Unknown {
		return false
	}
	if n.opts.StrictOverlay {
		return got.Family() == expect.Family()
	}
	return true
}

// leave performs act to exit the current family and verifies that the
// screen ended up outside it, on a state the graph allows from here. Used where the destination depends on
// the screen underneath (closing an overlay, backing out of a battle prep).
func (n *Navigator) leave(label string, act action) (bool, error) {
	from := n.current
	exits := false
	for _, to := range n.rules.Targets(from) {
		if to.Family() != from.Family() {
			exits = true
			break
		}
	}
	if from != Unknown && !exits {
		logging.Warn("[BLOCKED] %s has no exit from its family via %s", from, label)
		return false, nil
	}

	ok, err := act()
	if err != nil || !ok {
		return false, err
	}
	got, err := n.settle(from)
	if err != nil {
		return false, err
	}
	if got == Unknown || got.Family() == from.Family() {
		logging.Warn("[NAV] %s did not leave %s (resolved %s)", label, from, got)
		return false, nil
	}
	if !n.rules.CanTransition(from, got) {
		logging.Warn("[BLOCKED] %s landed on %s, which the graph does not allow from %s", label, got, from)
		return false, nil
	}
	logging.Info("[NAV] %s -> %s", from, got)
	return true, nil
}

// then chains a successful step into the rest of the route.
func (n *Navigator) then(ok bool, err error, target State) (bool, error) {
	if err != nil || !ok {
		return false, err
	}
	if n.current.Satisfies(target) {
		return true, nil
	}
	return n.NavigateTo(target)
}
