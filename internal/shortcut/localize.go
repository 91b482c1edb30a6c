package shortcut

import "strings"

// macGlyphs maps canonical token names to the symbols macOS menus display.
var macGlyphs = map[string]string{
	ModCmd:   "\u2318",
	ModShift: "\u21E7",
	ModAlt:   "\u2325",
	ModCtrl:  "\u2303",
	"Space":  "\u2423",
	"Left":   "\u2190",
	"Right":  "\u2192",
	"Up":     "\u2191",
	"Down":   "\u2193",
	"Delete": "\u2326",
	"Enter":  "\u2324",
	"Return": "\u21A9",
	"Escape": "\u238B",
}

// macTextReplacer substitutes glyphs inside free text. Longer names come
// first so "Return" is never split by a shorter match. A doubled "-" is a
// separator followed by the minus key, so one "-" survives.
var macTextReplacer = strings.NewReplacer(
	"--", "-",
	"Escape", macGlyphs["Escape"],
	"Return", macGlyphs["Return"],
	"Delete", macGlyphs["Delete"],
	"Shift", macGlyphs[ModShift],
	"Space", macGlyphs["Space"],
	"Right", macGlyphs["Right"],
	"Enter", macGlyphs["Enter"],
	"Ctrl", macGlyphs[ModCtrl],
	"Left", macGlyphs["Left"],
	"Down", macGlyphs["Down"],
	"Cmd", macGlyphs[ModCmd],
	"Alt", macGlyphs[ModAlt],
	"Up", macGlyphs["Up"],
	"-", "",
)

// Localize rewrites shortcut names embedded in free text, such as a menu
// label "Save (CtrlCmd-S)". CtrlCmd becomes the platform command modifier;
// on macOS key names are further replaced by glyphs and "-" separators are
// removed.
func (n *Normalizer) Localize(text string) string {
	if n.platform.IsMac() {
		text = strings.ReplaceAll(text, "CtrlCmd", ModCmd)
		return macTextReplacer.Replace(text)
	}
	return strings.ReplaceAll(text, "CtrlCmd", ModCtrl)
}
