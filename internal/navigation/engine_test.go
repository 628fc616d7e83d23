package navigation

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YusufSemihCan/Charon-LCBot/internal/input"
)

func TestNavigateAlreadyThereSendsNoInput(t *testing.T) {
	g := newFakeGame("drive", menus())
	n := newTestNavigator(g, nil)

	ok, err := n.NavigateTo(Drive)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, Drive, n.CurrentState())
	assert.Empty(t, g.clicks)
	assert.Empty(t, g.keys)
	assert.Zero(t, g.moves)
}

func TestNavigateDriveToEXP(t *testing.T) {
	g := newFakeGame("drive", menus())
	n := newTestNavigator(g, nil)

	ok, err := n.NavigateTo(LuxcavationEXP)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []Template{ButtonLuxcavation}, g.clicks)
	assert.Equal(t, LuxcavationEXP, n.CurrentState())
}

func TestNavigateHubToThreadGoesThroughEXP(t *testing.T) {
	g := newFakeGame("hub", menus())
	n := newTestNavigator(g, nil)

	ok, err := n.NavigateTo(LuxcavationThread)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []Template{ButtonDrive, ButtonLuxcavation, ButtonLuxThread}, g.clicks)
}

func TestNavigateMirrorDungeonPressesEnterTwice(t *testing.T) {
	g := newFakeGame("md", menus())
	n := newTestNavigator(g, nil)

	ok, err := n.NavigateTo(MirrorDungeonDelving)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []Template{ButtonMDEnter, ButtonMDEnter}, g.clicks)
	assert.Equal(t, MirrorDungeonDelving, n.CurrentState())
}

func TestNavigateMirrorDungeonWithoutPopup(t *testing.T) {
	screens := menus()
	screens["md"].controls[ButtonMDEnter] = "delving"
	g := newFakeGame("md", screens)
	n := newTestNavigator(g, nil)

	ok, err := n.NavigateTo(MirrorDungeonDelving)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []Template{ButtonMDEnter}, g.clicks)
}

func TestDisallowedTransitionSendsNoInput(t *testing.T) {
	g := newFakeGame("drive", menus())
	n := newTestNavigator(g, func(o *Options) {
		o.Rules = NewRules(map[State][]State{Drive: {Hub}})
	})

	ok, err := n.NavigateTo(LuxcavationEXP)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, g.clicks)
	assert.Empty(t, g.keys)
	assert.Zero(t, g.moves)
}

func TestStepRefusedFromSinnersToEXP(t *testing.T) {
	g := newFakeGame("sinners", menus())
	n := newTestNavigator(g, nil)
	n.current = Sinners

	ok, err := n.step("luxcavation", n.click(ButtonLuxcavation), LuxcavationEXP)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, g.clicks)
	assert.Zero(t, g.moves)
	assert.Zero(t, g.captures)
}

func TestStepFromUnknownIsAlwaysAllowed(t *testing.T) {
	g := newFakeGame("drive", menus())
	n := newTestNavigator(g, nil)
	n.current = Unknown

	ok, err := n.step("luxcavation", n.click(ButtonLuxcavation), LuxcavationEXP)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []Template{ButtonLuxcavation}, g.clicks)
}

func TestMissingControlSendsNoInput(t *testing.T) {
	screens := menus()
	delete(screens["drive"].controls, ButtonLuxcavation)
	g := newFakeGame("drive", screens)
	n := newTestNavigator(g, nil)

	ok, err := n.NavigateTo(LuxcavationEXP)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, g.clicks)
	assert.Zero(t, g.moves)
}

func TestOverlayAssumedWhenAnchorMissing(t *testing.T) {
	screens := menus()
	screens["hub"].controls[IconEnkephalin] = "hubdim"
	screens["hubdim"] = &screenDef{anchors: []Template{AnchorHub}}
	g := newFakeGame("hub", screens)
	n := newTestNavigator(g, nil)

	ok, err := n.NavigateTo(ChargeModules)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, ChargeModules, n.CurrentState())
	assert.Equal(t, []Template{IconEnkephalin}, g.clicks)
}

func TestStrictOverlayRejectsOtherFamily(t *testing.T) {
	screens := menus()
	screens["hub"].controls[IconEnkephalin] = "hubdim"
	screens["hubdim"] = &screenDef{anchors: []Template{AnchorHub}}
	g := newFakeGame("hub", screens)
	n := newTestNavigator(g, func(o *Options) { o.StrictOverlay = true })

	ok, err := n.NavigateTo(ChargeModules)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, Hub, n.CurrentState())
}

func TestOverlayNotAssumedOnUnknown(t *testing.T) {
	screens := menus()
	screens["hub"].controls[IconEnkephalin] = "blank"
	screens["blank"] = &screenDef{}
	g := newFakeGame("hub", screens)
	n := newTestNavigator(g, func(o *Options) { o.MaxHops = 1 })

	ok, err := n.NavigateTo(ChargeModules)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, Unknown, n.CurrentState())
}

func TestChargeTabSwitch(t *testing.T) {
	g := newFakeGame("modules", menus())
	n := newTestNavigator(g, nil)

	ok, err := n.NavigateTo(ChargeLunacy)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []Template{ButtonChargeLunacy}, g.clicks)
}

func TestAnyChargeTabSatisfiesCharge(t *testing.T) {
	g := newFakeGame("boxes", menus())
	n := newTestNavigator(g, nil)

	ok, err := n.NavigateTo(Charge)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, g.clicks)
}

func TestLeaveChargeWithEscape(t *testing.T) {
	g := newFakeGame("modules", menus())
	n := newTestNavigator(g, nil)

	ok, err := n.NavigateTo(Drive)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []input.Key{input.KeyEscape}, g.keys)
	assert.Empty(t, g.clicks)
}

func TestLeaveRejectsLandingOutsideGraph(t *testing.T) {
	screens := menus()
	screens["modules"].keys[input.KeyEscape] = "md"
	g := newFakeGame("modules", screens)
	n := newTestNavigator(g, nil)

	ok, err := n.NavigateTo(Drive)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, MirrorDungeon, n.CurrentState())
	assert.Equal(t, []input.Key{input.KeyEscape}, g.keys)
	assert.Empty(t, g.clicks)
}

func TestEXPStageEntersRightmost(t *testing.T) {
	g := newFakeGame("exp", menus())
	n := newTestNavigator(g, nil)

	ok, err := n.NavigateTo(PreBattle)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []Template{ButtonLuxEXPEnter3}, g.clicks)
}

func TestThreadStagePicksHighestLevelRow(t *testing.T) {
	g := newFakeGame("thread", menus())
	n := newTestNavigator(g, nil)

	ok, err := n.NavigateTo(PreBattle)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []Template{ButtonThreadEnter, ButtonThreadLevelEnter}, g.clicks)
	assert.Equal(t, image.Pt(320, 105), g.pos)
}

func TestBattleWaitsForEnd(t *testing.T) {
	g := newFakeGame("battle", menus())
	n := newTestNavigator(g, nil)

	ok, err := n.NavigateTo(PreBattle)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, g.clicks)
	assert.Equal(t, PreBattle, n.CurrentState())
}

func TestRecoveryDismissesPopup(t *testing.T) {
	screens := menus()
	screens["popup"] = &screenDef{keys: map[input.Key]string{input.KeyEscape: "hub"}}
	g := newFakeGame("popup", screens)
	n := newTestNavigator(g, nil)

	ok, err := n.NavigateTo(Drive)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []input.Key{input.KeyEscape}, g.keys)
	assert.Equal(t, []Template{ButtonDrive}, g.clicks)
}

func TestRecoveryReconnects(t *testing.T) {
	screens := menus()
	screens["disconnected"] = &screenDef{
		anchors:  []Template{AnchorRetryConnection},
		controls: map[Template]string{ButtonRetryConnection: "title"},
	}
	screens["title"] = &screenDef{controls: map[Template]string{ButtonEnterGame: "hub"}}
	g := newFakeGame("disconnected", screens)
	n := newTestNavigator(g, nil)

	ok, err := n.NavigateTo(Hub)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []Template{ButtonRetryConnection, ButtonEnterGame}, g.clicks)
	assert.Empty(t, g.keys)
}

func TestRecoveryWaitsOutConnecting(t *testing.T) {
	screens := menus()
	screens["loading"] = &screenDef{anchors: []Template{AnchorConnecting}, autoNext: "hub", autoAfter: 2}
	g := newFakeGame("loading", screens)
	n := newTestNavigator(g, nil)

	ok, err := n.NavigateTo(Hub)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, g.keys)
	assert.Empty(t, g.clicks)
}

func TestRecoveryGivesUp(t *testing.T) {
	screens := menus()
	screens["void"] = &screenDef{}
	g := newFakeGame("void", screens)
	n := newTestNavigator(g, func(o *Options) { o.RecoveryRetries = 3 })

	ok, err := n.NavigateTo(Hub)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Len(t, g.keys, 3)
	assert.Empty(t, g.clicks)
}

func TestHubFallsBackToDismissing(t *testing.T) {
	screens := menus()
	screens["sinners"].controls = map[Template]string{ButtonDrive: "drive"}
	screens["sinners"].keys = map[input.Key]string{input.KeyEscape: "hub"}
	g := newFakeGame("sinners", screens)
	n := newTestNavigator(g, nil)

	ok, err := n.NavigateTo(Hub)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, Hub, n.CurrentState())
	assert.Equal(t, []input.Key{input.KeyEscape}, g.keys)
}

func TestHubFallbackGivesUpWithoutHubAnchor(t *testing.T) {
	screens := menus()
	screens["sinners"].controls = map[Template]string{ButtonDrive: "drive"}
	g := newFakeGame("sinners", screens)
	n := newTestNavigator(g, func(o *Options) { o.RecoveryRetries = 2 })

	ok, err := n.NavigateTo(Hub)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, Sinners, n.CurrentState())
	assert.Len(t, g.keys, 2)
}

func TestFailSafeAborts(t *testing.T) {
	g := newFakeGame("drive", menus())
	g.tripped = true
	n := newTestNavigator(g, nil)

	ok, err := n.NavigateTo(LuxcavationEXP)
	assert.ErrorIs(t, err, input.ErrFailSafe)
	assert.False(t, ok)
	assert.Empty(t, g.clicks)
	assert.Zero(t, g.captures)
}

func TestHopBudget(t *testing.T) {
	g := newFakeGame("hub", menus())
	n := newTestNavigator(g, func(o *Options) { o.MaxHops = 1 })

	ok, err := n.NavigateTo(LuxcavationEXP)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []Template{ButtonDrive}, g.clicks)

	// The budget is per request.
	ok, err = n.NavigateTo(LuxcavationEXP)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestClearCursorParksPointer(t *testing.T) {
	g := newFakeGame("drive", menus())
	n := newTestNavigator(g, func(o *Options) { o.ClearCursor = true })

	s, err := n.SynchronizeState()
	require.NoError(t, err)
	assert.Equal(t, Drive, s)
	assert.Equal(t, 1, g.moves)
	assert.Equal(t, image.Pt(395, 300), g.pos)
	assert.Empty(t, g.clicks)
}

func TestSetOptionsAppliesThresholds(t *testing.T) {
	g := newFakeGame("drive", menus())
	n := newTestNavigator(g, nil)

	opts := n.Options()
	opts.ClickThreshold = 0.7
	opts.VerifyAttempts = 0
	n.SetOptions(opts)

	assert.Equal(t, 0.7, n.Clicker().threshold)
	assert.Equal(t, DefaultOptions().VerifyAttempts, n.Options().VerifyAttempts)
}
