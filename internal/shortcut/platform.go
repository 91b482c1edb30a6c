package shortcut

import "runtime"

// Platform selects the modifier semantics and display glyphs used by a Normalizer.
type Platform int

const (
	// PlatformOther covers Windows, Linux and every non-Apple desktop.
	PlatformOther Platform = iota
	// PlatformMac is the Apple family, where CtrlCmd means Cmd and
	// printable shortcuts use glyphs.
	PlatformMac
)

// CurrentPlatform returns the platform family of the running process.
func CurrentPlatform() Platform {
	return platformFor(runtime.GOOS)
}

func platformFor(goos string) Platform {
	switch goos {
	case "darwin", "ios":
		return PlatformMac
	default:
		return PlatformOther
	}
}

// IsMac reports whether p is the Apple platform family.
func (p Platform) IsMac() bool { return p == PlatformMac }

func (p Platform) String() string {
	if p == PlatformMac {
		return "mac"
	}
	return "other"
}
