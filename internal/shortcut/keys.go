package shortcut

import "strconv"

// Modifier is an accelerator modifier bitmask.
// Values mirror the wx ACCEL_* constants used by the desktop frontend.
type Modifier uint32

// Key is an accelerator key code. Printable keys use their uppercase
// character code; special keys use the wx WXK_* numbering.
type Key uint32

const (
	AccelNormal  Modifier = 0x0000
	AccelAlt     Modifier = 0x0001
	AccelCtrl    Modifier = 0x0002
	AccelShift   Modifier = 0x0004
	AccelRawCtrl Modifier = 0x0008
	// AccelCmd is the platform command key: Cmd on macOS, Ctrl elsewhere.
	AccelCmd = AccelCtrl
)

const (
	KeyBack   Key = 8
	KeyTab    Key = 9
	KeyReturn Key = 13
	KeyEscape Key = 27
	KeySpace  Key = 32
	KeyDelete Key = 127

	KeyStart     Key = 300
	KeyLButton   Key = 301
	KeyRButton   Key = 302
	KeyCancel    Key = 303
	KeyMButton   Key = 304
	KeyClear     Key = 305
	KeyShift     Key = 306
	KeyAlt       Key = 307
	KeyControl   Key = 308
	KeyMenu      Key = 309
	KeyPause     Key = 310
	KeyCapital   Key = 311
	KeyEnd       Key = 312
	KeyHome      Key = 313
	KeyLeft      Key = 314
	KeyUp        Key = 315
	KeyRight     Key = 316
	KeyDown      Key = 317
	KeySelect    Key = 318
	KeyPrint     Key = 319
	KeyExecute   Key = 320
	KeySnapshot  Key = 321
	KeyInsert    Key = 322
	KeyHelp      Key = 323
	KeyNumpad0   Key = 324
	KeyMultiply  Key = 334
	KeyAdd       Key = 335
	KeySeparator Key = 336
	KeySubtract  Key = 337
	KeyDecimal   Key = 338
	KeyDivide    Key = 339
	KeyF1        Key = 340
	KeyF24       Key = 363
	KeyNumLock   Key = 364
	KeyScroll    Key = 365
	KeyPageUp    Key = 366
	KeyPageDown  Key = 367

	KeyNumpadSpace    Key = 368
	KeyNumpadTab      Key = 369
	KeyNumpadEnter    Key = 370
	KeyNumpadF1       Key = 371
	KeyNumpadHome     Key = 375
	KeyNumpadLeft     Key = 376
	KeyNumpadUp       Key = 377
	KeyNumpadRight    Key = 378
	KeyNumpadDown     Key = 379
	KeyNumpadPageUp   Key = 380
	KeyNumpadPageDown Key = 381
	KeyNumpadEnd      Key = 382
	KeyNumpadBegin    Key = 383
	KeyNumpadInsert   Key = 384
	KeyNumpadDelete   Key = 385
	KeyNumpadEqual    Key = 386
	KeyNumpadMultiply Key = 387
	KeyNumpadAdd      Key = 388
	KeyNumpadSep      Key = 389
	KeyNumpadSubtract Key = 390
	KeyNumpadDecimal  Key = 391
	KeyNumpadDivide   Key = 392

	KeyWindowsLeft  Key = 393
	KeyWindowsRight Key = 394
	KeyWindowsMenu  Key = 395
	// KeyRawControl is the physical control key on macOS, where CONTROL
	// reports the command key. Elsewhere RAW_CONTROL is CONTROL.
	KeyRawControl Key = 396

	KeySpecial1  Key = 193
	KeySpecial20 Key = 212
)

// Modifier names in canonical (title-cased) form, in sort precedence.
const (
	ModShift = "Shift"
	ModCtrl  = "Ctrl"
	ModCmd   = "Cmd"
	ModAlt   = "Alt"

	// modCtrlCmd is the title-cased form of the platform-dependent "CtrlCmd" token.
	modCtrlCmd = "Ctrlcmd"
)

var modifierOrder = map[string]int{
	ModShift: 0,
	ModCtrl:  1,
	ModCmd:   2,
	ModAlt:   3,
}

// modifierFlags maps canonical modifier names to accelerator flags per platform.
// On macOS Ctrl is the physical control key; Cmd is the command key.
var modifierFlags = map[Platform]map[string]Modifier{
	PlatformOther: {
		ModShift: AccelShift,
		ModCtrl:  AccelCtrl,
		ModCmd:   AccelCmd,
		ModAlt:   AccelAlt,
	},
	PlatformMac: {
		ModShift: AccelShift,
		ModCtrl:  AccelRawCtrl,
		ModCmd:   AccelCmd,
		ModAlt:   AccelAlt,
	},
}

var keyAliases = map[string]string{
	"Del":   "Delete",
	"Ins":   "Insert",
	"Enter": "Return",
	"Esc":   "Escape",
}

// keyByName maps upper-cased key names (spaces removed) to key codes.
// Function keys F1..F24, numpad digits, numpad F1..F4 and SPECIAL1..20 are
// added in init.
var keyByName = map[string]Key{
	"BACK":      KeyBack,
	"TAB":       KeyTab,
	"RETURN":    KeyReturn,
	"ESCAPE":    KeyEscape,
	"SPACE":     KeySpace,
	"DELETE":    KeyDelete,
	"START":     KeyStart,
	"LBUTTON":   KeyLButton,
	"RBUTTON":   KeyRButton,
	"CANCEL":    KeyCancel,
	"MBUTTON":   KeyMButton,
	"CLEAR":     KeyClear,
	"SHIFT":     KeyShift,
	"ALT":       KeyAlt,
	"CONTROL":   KeyControl,
	"MENU":      KeyMenu,
	"PAUSE":     KeyPause,
	"CAPITAL":   KeyCapital,
	"END":       KeyEnd,
	"HOME":      KeyHome,
	"LEFT":      KeyLeft,
	"UP":        KeyUp,
	"RIGHT":     KeyRight,
	"DOWN":      KeyDown,
	"SELECT":    KeySelect,
	"PRINT":     KeyPrint,
	"EXECUTE":   KeyExecute,
	"SNAPSHOT":  KeySnapshot,
	"INSERT":    KeyInsert,
	"HELP":      KeyHelp,
	"MULTIPLY":  KeyMultiply,
	"ADD":       KeyAdd,
	"SEPARATOR": KeySeparator,
	"SUBTRACT":  KeySubtract,
	"DECIMAL":   KeyDecimal,
	"DIVIDE":    KeyDivide,
	"NUMLOCK":   KeyNumLock,
	"SCROLL":    KeyScroll,
	"PAGEUP":    KeyPageUp,
	"PAGEDOWN":  KeyPageDown,

	"NUMPAD_SPACE":     KeyNumpadSpace,
	"NUMPAD_TAB":       KeyNumpadTab,
	"NUMPAD_ENTER":     KeyNumpadEnter,
	"NUMPAD_HOME":      KeyNumpadHome,
	"NUMPAD_LEFT":      KeyNumpadLeft,
	"NUMPAD_UP":        KeyNumpadUp,
	"NUMPAD_RIGHT":     KeyNumpadRight,
	"NUMPAD_DOWN":      KeyNumpadDown,
	"NUMPAD_PAGEUP":    KeyNumpadPageUp,
	"NUMPAD_PAGEDOWN":  KeyNumpadPageDown,
	"NUMPAD_END":       KeyNumpadEnd,
	"NUMPAD_BEGIN":     KeyNumpadBegin,
	"NUMPAD_INSERT":    KeyNumpadInsert,
	"NUMPAD_DELETE":    KeyNumpadDelete,
	"NUMPAD_EQUAL":     KeyNumpadEqual,
	"NUMPAD_MULTIPLY":  KeyNumpadMultiply,
	"NUMPAD_ADD":       KeyNumpadAdd,
	"NUMPAD_SEPARATOR": KeyNumpadSep,
	"NUMPAD_SUBTRACT":  KeyNumpadSubtract,
	"NUMPAD_DECIMAL":   KeyNumpadDecimal,
	"NUMPAD_DIVIDE":    KeyNumpadDivide,

	"WINDOWS_LEFT":  KeyWindowsLeft,
	"WINDOWS_RIGHT": KeyWindowsRight,
	"WINDOWS_MENU":  KeyWindowsMenu,
}

// keyNameAliases are names that share another name's code. They stay out of
// keyByName so every code there has exactly one name.
var keyNameAliases = map[string]string{
	"COMMAND": "CONTROL",
}

// rawControlKey resolves RAW_CONTROL per platform.
var rawControlKey = map[Platform]Key{
	PlatformOther: KeyControl,
	PlatformMac:   KeyRawControl,
}

const rawControlName = "RAW_CONTROL"

func init() {
	for i := Key(0); i <= KeyF24-KeyF1; i++ {
		keyByName["F"+strconv.Itoa(int(i)+1)] = KeyF1 + i
	}
	for i := Key(0); i <= 9; i++ {
		keyByName["NUMPAD"+strconv.Itoa(int(i))] = KeyNumpad0 + i
	}
	for i := Key(0); i < 4; i++ {
		keyByName["NUMPAD_F"+strconv.Itoa(int(i)+1)] = KeyNumpadF1 + i
	}
	for i := Key(0); i <= KeySpecial20-KeySpecial1; i++ {
		keyByName["SPECIAL"+strconv.Itoa(int(i)+1)] = KeySpecial1 + i
	}
}

// KeyNames returns the upper-cased names of all named (non-character) keys,
// aliases included.
func KeyNames() []string {
	names := make([]string, 0, len(keyByName)+len(keyNameAliases)+1)
	for name := range keyByName {
		names = append(names, name)
	}
	for name := range keyNameAliases {
		names = append(names, name)
	}
	return append(names, rawControlName)
}

// lookupKey finds the code for an upper-cased key name on platform p.
func lookupKey(name string, p Platform) (Key, bool) {
	if name == rawControlName {
		return rawControlKey[p], true
	}
	if target, ok := keyNameAliases[name]; ok {
		name = target
	}
	key, ok := keyByName[name]
	return key, ok
}
