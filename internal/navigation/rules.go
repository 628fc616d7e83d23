package navigation

// Rules is the static table of legal single-step transitions. It never
// performs I/O and is immutable after construction.
type Rules struct {
	edges map[State]map[State]struct{}
}

// NewRules builds a rule table from an adjacency list. The input is copied.
func NewRules(adjacency map[State][]State) *Rules {
	r := &Rules{edges: make(map[State]map[State]struct{}, len(adjacency))}
	for from, tos := range adjacency {
		set := make(map[State]struct{}, len(tos))
		for _, to := range tos {
			set[to] = struct{}{}
		}
		r.edges[from] = set
	}
	return r
}

// CanTransition reports whether moving from one state to another in a single
// action is allowed. Any move out of Unknown is allowed so the engine can
// recover from an unrecognized screen.
func (r *Rules) CanTransition(from, to State) bool {
	if from == Unknown {
		return true
	}
	_, ok := r.edges[from][to]
	return ok
}

// Targets lists the states reachable from `from` in one step, in declaration order.
func (r *Rules) Targets(from State) []State {
	var out []State
	for _, s := range States() {
		if _, ok := r.edges[from][s]; ok {
			out = append(out, s)
		}
	}
	return out
}

// DefaultRules returns the authored transition table for the game menus.
func DefaultRules() *Rules {
	chargeExits := []State{Hub, Drive, Sinners, LuxcavationEXP, LuxcavationThread}
	chargeTab := func(others ...State) []State {
		return append(append([]State{}, others...), chargeExits...)
	}

	return NewRules(map[State][]State{
		Disconnected: {Connecting, Hub},
		Connecting:   {Hub},

		Hub:     {Drive, Sinners, ChargeModules},
		Drive:   {Hub, Sinners, ChargeModules, LuxcavationEXP, MirrorDungeon},
		Sinners: {Hub, Drive, ChargeModules},

		Charge:        {Hub, Drive, Sinners, ChargeBoxes, ChargeModules, ChargeLunacy},
		ChargeBoxes:   chargeTab(ChargeModules, ChargeLunacy),
		ChargeModules: chargeTab(ChargeBoxes, ChargeLunacy),
		ChargeLunacy:  chargeTab(ChargeBoxes, ChargeModules),

		// Thread is only reachable through the EXP screen.
		LuxcavationEXP:    {Drive, LuxcavationThread, ChargeModules, PreBattle},
		LuxcavationThread: {Drive, LuxcavationEXP, ChargeModules, PreBattle},

		MirrorDungeon:             {Drive, MirrorDungeonConfirmation, MirrorDungeonDelving},
		MirrorDungeonConfirmation: {MirrorDungeon, MirrorDungeonDelving},
		MirrorDungeonDelving:      {MirrorDungeon, Drive, PreBattle},

		PreBattle: {Battle, LuxcavationEXP, LuxcavationThread, MirrorDungeonDelving},
		Battle:    {PreBattle, LuxcavationEXP, LuxcavationThread, MirrorDungeonDelving},
	})
}
