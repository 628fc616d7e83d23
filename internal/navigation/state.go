// Package navigation - state.go
//
// The closed set of menu states the navigator can recognize, and the family
// classification the engine uses to group sub-states (Charge tabs,
// Luxcavation modes, Mirror Dungeon stages) without inspecting names.
package navigation

import (
	"fmt"
	"strings"
)

// State is one recognizable game screen.
type State int

const (
	Unknown State = iota
	Connecting
	Disconnected
	Hub
	Drive
	Sinners
	// Charge is the composite Charge overlay. It is never resolved directly;
	// the resolver reports one of its tabs.
	Charge
	ChargeBoxes
	ChargeModules
	ChargeLunacy
	LuxcavationEXP
	LuxcavationThread
	MirrorDungeon
	MirrorDungeonConfirmation
	MirrorDungeonDelving
	PreBattle
	Battle

	stateCount
)

var stateNames = [stateCount]string{
	Unknown:                   "Unknown",
	Connecting:                "Connecting",
	Disconnected:              "Disconnected",
	Hub:                       "Hub",
	Drive:                     "Drive",
	Sinners:                   "Sinners",
	Charge:                    "Charge",
	ChargeBoxes:               "ChargeBoxes",
	ChargeModules:             "ChargeModules",
	ChargeLunacy:              "ChargeLunacy",
	LuxcavationEXP:            "LuxcavationEXP",
	LuxcavationThread:         "LuxcavationThread",
	MirrorDungeon:             "MirrorDungeon",
	MirrorDungeonConfirmation: "MirrorDungeonConfirmation",
	MirrorDungeonDelving:      "MirrorDungeonDelving",
	PreBattle:                 "PreBattle",
	Battle:                    "Battle",
}

// String returns the state name.
func (s State) String() string {
	if s < 0 || s >= stateCount {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// ParseState looks a state up by name, case-insensitively. "Window" is
// accepted as an alias for Hub.
func ParseState(name string) (State, error) {
	name = strings.TrimSpace(name)
	if strings.EqualFold(name, "window") {
		return Hub, nil
	}
	for s := State(0); s < stateCount; s++ {
		if strings.EqualFold(stateNames[s], name) {
			return s, nil
		}
	}
	return Unknown, fmt.Errorf("navigation: unknown state %q", name)
}

// States returns every state in declaration order.
func States() []State {
	out := make([]State, 0, stateCount)
	for s := State(0); s < stateCount; s++ {
		out = append(out, s)
	}
	return out
}

// Targets returns the states a caller may ask NavigateTo for.
func Targets() []State {
	return []State{
		Hub, Drive, Sinners,
		Charge, ChargeBoxes, ChargeModules, ChargeLunacy,
		LuxcavationEXP, LuxcavationThread,
		MirrorDungeon, MirrorDungeonDelving,
		PreBattle,
	}
}

// Family groups related states.
type Family int

const (
	FamilySystem Family = iota
	FamilyMain
	FamilyCharge
	FamilyLuxcavation
	FamilyMirrorDungeon
	FamilyCombat
)

func (f Family) String() string {
	switch f {
	case FamilyMain:
		return "Main"
	case FamilyCharge:
		return "Charge"
	case FamilyLuxcavation:
		return "Luxcavation"
	case FamilyMirrorDungeon:
		return "MirrorDungeon"
	case FamilyCombat:
		return "Combat"
	default:
		return "System"
	}
}

// Family classifies s.
func (s State) Family() Family {
	switch s {
	case Hub, Drive, Sinners:
		return FamilyMain
	case Charge, ChargeBoxes, ChargeModules, ChargeLunacy:
		return FamilyCharge
	case LuxcavationEXP, LuxcavationThread:
		return FamilyLuxcavation
	case MirrorDungeon, MirrorDungeonConfirmation, MirrorDungeonDelving:
		return FamilyMirrorDungeon
	case PreBattle, Battle:
		return FamilyCombat
	default:
		return FamilySystem
	}
}

// IsOverlay reports whether s is drawn over another screen whose anchors may
// still be visible.
func (s State) IsOverlay() bool {
	return s.Family() == FamilyCharge || s == MirrorDungeonConfirmation
}

// Satisfies reports whether being in s fulfils a request for target. Any
// Charge tab satisfies the composite Charge.
func (s State) Satisfies(target State) bool {
	if s == target {
		return true
	}
	return target == Charge && s.Family() == FamilyCharge
}
