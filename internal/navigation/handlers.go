package navigation

import (
	"time"

	"github.com/YusufSemihCan/Charon-LCBot/internal/input"
	"github.com/YusufSemihCan/Charon-LCBot/internal/logging"
)

func defaultHandlers() map[State]handler {
	return map[State]handler{
		Hub:                       (*Navigator).fromHub,
		Drive:                     (*Navigator).fromDrive,
		Sinners:                   (*Navigator).fromSinners,
		ChargeBoxes:               (*Navigator).fromCharge,
		ChargeModules:             (*Navigator).fromCharge,
		ChargeLunacy:              (*Navigator).fromCharge,
		LuxcavationEXP:            (*Navigator).fromLuxcavation,
		LuxcavationThread:         (*Navigator).fromLuxcavation,
		MirrorDungeon:             (*Navigator).fromMirrorDungeon,
		MirrorDungeonConfirmation: (*Navigator).fromConfirmation,
		MirrorDungeonDelving:      (*Navigator).fromDelving,
		PreBattle:                 (*Navigator).fromPreBattle,
		Battle:                    (*Navigator).fromBattle,
	}
}

// openCharge opens the Charge overlay, which lands on the Modules tab.
func (n *Navigator) openCharge(target State) (bool, error) {
	ok, err := n.step("enkephalin box", n.click(IconEnkephalin), ChargeModules)
	return n.then(ok, err, target)
}

func (n *Navigator) fromHub(target State) (bool, error) {
	switch {
	case target == Drive:
		return n.step("drive tab", n.click(ButtonDrive), Drive)
	case target == Sinners:
		return n.step("sinners tab", n.click(ButtonSinners), Sinners)
	case target.Family() == FamilyCharge:
		return n.openCharge(target)
	default:
		ok, err := n.step("drive tab", n.click(ButtonDrive), Drive)
		return n.then(ok, err, target)
	}
}

func (n *Navigator) fromDrive(target State) (bool, error) {
	switch {
	case target == Hub:
		return n.step("window tab", n.click(ButtonHub), Hub)
	case target == Sinners:
		return n.step("sinners tab", n.click(ButtonSinners), Sinners)
	case target.Family() == FamilyCharge:
		return n.openCharge(target)
	case target.Family() == FamilyLuxcavation || target.Family() == FamilyCombat:
		ok, err := n.step("luxcavation", n.click(ButtonLuxcavation), LuxcavationEXP)
		return n.then(ok, err, target)
	case target.Family() == FamilyMirrorDungeon:
		ok, err := n.step("mirror dungeon", n.click(ButtonMirrorDungeon), MirrorDungeon)
		return n.then(ok, err, target)
	}
	logging.Warn("[NAV] no route from Drive to %s", target)
	return false, nil
}

func (n *Navigator) fromSinners(target State) (bool, error) {
	switch {
	case target == Hub:
		return n.step("window tab", n.click(ButtonHub), Hub)
	case target == Drive:
		return n.step("drive tab", n.click(ButtonDrive), Drive)
	case target.Family() == FamilyCharge:
		return n.openCharge(target)
	default:
		ok, err := n.step("drive tab", n.click(ButtonDrive), Drive)
		return n.then(ok, err, target)
	}
}

func (n *Navigator) fromCharge(target State) (bool, error) {
	if tab, ok := chargeTabs[target]; ok {
		return n.step(target.String()+" tab", n.click(tab), target)
	}
	ok, err := n.leave("close charge", n.press(input.KeyEscape))
	return n.then(ok, err, target)
}

func (n *Navigator) fromLuxcavation(target State) (bool, error) {
	switch {
	case target == LuxcavationEXP:
		return n.step("exp tab", n.click(ButtonLuxEXP), LuxcavationEXP)
	case target == LuxcavationThread:
		return n.step("thread tab", n.click(ButtonLuxThread), LuxcavationThread)
	case target.Family() == FamilyCombat:
		ok, err := n.enterStage()
		return n.then(ok, err, target)
	case target.Family() == FamilyCharge:
		return n.openCharge(target)
	default:
		ok, err := n.step("back", n.click(ButtonBack), Drive)
		return n.then(ok, err, target)
	}
}

// enterStage opens battle preparation for the best available stage: the
// rightmost EXP stage, or the highest Thread level.
func (n *Navigator) enterStage() (bool, error) {
	if n.current == LuxcavationEXP {
		return n.step("exp stage", func() (bool, error) {
			return n.clicker.ClickExtreme(EXPStageEnters, true)
		}, PreBattle)
	}
	return n.step("thread stage", func() (bool, error) {
		ok, err := n.clicker.ClickExtreme([]Template{ButtonThreadEnter}, false)
		if err != nil || !ok {
			return false, err
		}
		n.opts.Sleep(n.opts.SettleDelay)
		return n.clicker.SelectHighest(ThreadLevelLabels, []Template{ButtonThreadLevelEnter}, DefaultRowTolerance)
	}, PreBattle)
}

func (n *Navigator) fromMirrorDungeon(target State) (bool, error) {
	switch {
	case target == MirrorDungeonConfirmation:
		return n.step("dungeon enter", n.click(ButtonMDEnter), MirrorDungeonConfirmation)
	case target == MirrorDungeonDelving || target.Family() == FamilyCombat:
		ok, err := n.enterDungeon()
		return n.then(ok, err, target)
	default:
		ok, err := n.step("back", n.click(ButtonBack), Drive)
		return n.then(ok, err, target)
	}
}

// enterDungeon presses the dungeon Enter button until the dungeon starts. The
// first press normally raises a confirmation popup whose confirm button sits
// where Enter was, so the same control is pressed again.
func (n *Navigator) enterDungeon() (bool, error) {
	if !n.allowed(MirrorDungeonDelving, "dungeon enter") {
		return false, nil
	}
	for press := 1; press <= 2; press++ {
		from := n.current
		found, err := n.clicker.ClickTemplate(ButtonMDEnter)
		if err != nil || !found {
			return false, err
		}
		got, err := n.settle(from)
		if err != nil {
			return false, err
		}
		switch got {
		case MirrorDungeonDelving:
			logging.Info("[NAV] %s -> %s", from, got)
			return true, nil
		case MirrorDungeonConfirmation:
			logging.Info("[NAV] confirmation raised, pressing enter again")
		default:
			logging.Warn("[NAV] expected dungeon entry, resolved %s", got)
			return false, nil
		}
	}
	logging.Warn("[NAV] confirmation still open after second press")
	return false, nil
}

func (n *Navigator) fromConfirmation(target State) (bool, error) {
	if target == MirrorDungeonDelving || target.Family() == FamilyCombat {
		ok, err := n.step("confirm entry", n.click(ButtonMDEnter), MirrorDungeonDelving)
		return n.then(ok, err, target)
	}
	ok, err := n.step("cancel entry", n.click(ButtonCancel), MirrorDungeon)
	return n.then(ok, err, target)
}

func (n *Navigator) fromDelving(target State) (bool, error) {
	if target.Family() == FamilyCombat {
		logging.Warn("[NAV] picking a dungeon encounter is not automated")
		return false, nil
	}
	ok, err := n.step("back", n.click(ButtonBack), MirrorDungeon)
	return n.then(ok, err, target)
}

func (n *Navigator) fromPreBattle(target State) (bool, error) {
	if target == Battle {
		return n.step("to battle", n.click(ButtonToBattle), Battle)
	}
	ok, err := n.leave("leave battle prep", n.click(ButtonBack))
	return n.then(ok, err, target)
}

// fromBattle waits for the fight to end; the navigator never plays it.
func (n *Navigator) fromBattle(target State) (bool, error) {
	poll := n.opts.RecoveryDelay
	if poll <= 0 {
		poll = time.Second
	}
	logging.Info("[NAV] battle in progress, waiting up to %v", n.opts.BattleTimeout)
	for waited := time.Duration(0); waited < n.opts.BattleTimeout; waited += poll {
		if err := n.actuator.CheckFailSafe(); err != nil {
			return false, err
		}
		n.opts.Sleep(poll)
		s, err := n.SynchronizeState()
		if err != nil {
			return false, err
		}
		if s != Battle && s != Unknown {
			logging.Info("[NAV] battle ended at %s", s)
			return n.then(true, nil, target)
		}
	}
	logging.Warn("[NAV] battle still running after %v", n.opts.BattleTimeout)
	return false, nil
}
