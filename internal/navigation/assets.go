package navigation

// Template names a template image by its file basename under the asset
// directory.
type Template string

// Anchors: elements whose presence identifies a screen.
const (
	AnchorRetryConnection Template = "Btn_Retry_Connection"
	AnchorConnecting      Template = "Anchor_Connecting"
	AnchorBattle          Template = "Anchor_Battle"
	AnchorPreBattle       Template = "Anchor_PreBattle"
	AnchorMDConfirmation  Template = "Popup_MirrorDungeon_Enter"
	AnchorMDProgress      Template = "MD_DungeonProgress"
	AnchorChargeBoxes     Template = "Button_A_Charge_Boxes"
	AnchorChargeModules   Template = "Button_A_Charge_Modules"
	AnchorChargeLunacy    Template = "Button_A_Charge_Lunacy"
	AnchorThreadLevels    Template = "Text_LuxcavationThread_LevelSelect"
	AnchorLuxEXPPanel     Template = "Panel_Luxcavation_EXP"
	AnchorLuxEXP          Template = "Button_A_Luxcavation_EXP"
	AnchorLuxThread       Template = "Button_A_Luxcavation_Thread"
	AnchorMirrorDungeon   Template = "Button_A_MirrorDungeon_InfinityMirror"
	AnchorHub             Template = "Button_A_Window"
	AnchorDrive           Template = "Button_A_Drive"
	AnchorSinners         Template = "Button_A_Sinners"
)

// Controls: elements the navigator clicks.
const (
	ButtonHub           Template = "Button_I_Window"
	ButtonDrive         Template = "Button_I_Drive"
	ButtonSinners       Template = "Button_I_Sinners"
	IconEnkephalin      Template = "Icon_EnkephalinBox"
	ButtonChargeBoxes   Template = "Button_I_Charge_Boxes"
	ButtonChargeModules Template = "Button_I_Charge_Modules"
	ButtonChargeLunacy  Template = "Button_I_Charge_Lunacy"

	ButtonLuxcavation      Template = "Button_Luxcavation"
	ButtonLuxEXP           Template = "Button_I_Luxcavation_EXP"
	ButtonLuxThread        Template = "Button_I_Luxcavation_Thread"
	ButtonLuxEXPEnter      Template = "Button_Luxcavation_Enter"
	ButtonLuxEXPEnter2     Template = "Button_Luxcavation_Enter2"
	ButtonLuxEXPEnter3     Template = "Button_Luxcavation_Enter3"
	ButtonThreadEnter      Template = "Button_LuxcavationThread_Enter"
	ButtonThreadLevelEnter Template = "Button_LuxcavationThread_Level_Enter"

	ButtonMirrorDungeon Template = "Button_MirrorDungeon"
	ButtonMDEnter       Template = "Button_MirrorDungeon_Enter"

	ButtonToBattle Template = "Button_ToBattle"
	ButtonBack     Template = "Button_Back"
	ButtonCancel   Template = "Button_Cancel"

	ButtonRetryConnection Template = "Btn_Retry_Connection"
	ButtonEnterGame       Template = "Btn_Enter_Game"
)

// ThreadLevelLabels lists the Thread level labels from highest to lowest.
var ThreadLevelLabels = []Template{
	"Text_LuxcavationThread_Level60",
	"Text_LuxcavationThread_Level50",
	"Text_LuxcavationThread_Level40",
	"Text_LuxcavationThread_Level30",
	"Text_LuxcavationThread_Level20",
}

// EXPStageEnters lists every variant of the EXP stage enter button.
var EXPStageEnters = []Template{ButtonLuxEXPEnter, ButtonLuxEXPEnter2, ButtonLuxEXPEnter3}

// chargeTabs maps Charge tabs to their inactive tab buttons.
var chargeTabs = map[State]Template{
	ChargeBoxes:   ButtonChargeBoxes,
	ChargeModules: ButtonChargeModules,
	ChargeLunacy:  ButtonChargeLunacy,
}
