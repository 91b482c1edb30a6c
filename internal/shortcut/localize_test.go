package shortcut

import "testing"

func TestLocalize(t *testing.T) {
	tests := []struct {
		name     string
		platform Platform
		text     string
		want     string
	}{
		{name: "other resolves CtrlCmd", platform: PlatformOther, text: "Save (CtrlCmd-S)", want: "Save (Ctrl-S)"},
		{name: "mac glyphs", platform: PlatformMac, text: "Save (CtrlCmd-Shift-S)", want: "Save (⌘⇧S)"},
		{name: "mac keeps minus key", platform: PlatformMac, text: "Zoom out (CtrlCmd--)", want: "Zoom out (⌘-)"},
		{name: "mac long names first", platform: PlatformMac, text: "Alt-Return", want: "⌥↩"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewNormalizer(tt.platform).Localize(tt.text); got != tt.want {
				t.Fatalf("Localize(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestLocalizeMatchesPrintableForMinusKey(t *testing.T) {
	n := NewNormalizer(PlatformMac)
	sc := n.New("Cmd--")
	if got := n.Localize(sc.Value()); got != sc.Printable() {
		t.Fatalf("Localize(%q) = %q, Printable() = %q", sc.Value(), got, sc.Printable())
	}
}
