// Package shortcut normalizes human-readable keyboard accelerators such as
// "CtrlCmd-Shift-A" into a canonical form, a platform-localized display
// string, and accelerator flags plus a key code.
package shortcut

import (
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Separator joins the tokens of a canonical shortcut value.
const Separator = "-"

// Normalizer builds Shortcuts for one platform family. The platform is fixed
// at construction so CtrlCmd resolves the same way for the whole process run.
type Normalizer struct {
	platform Platform
}

// NewNormalizer creates a Normalizer for the given platform family.
func NewNormalizer(p Platform) *Normalizer {
	return &Normalizer{platform: p}
}

// Platform returns the normalizer's platform family.
func (n *Normalizer) Platform() Platform { return n.platform }

// Shortcut is a normalized key combination. The zero value represents
// "no shortcut" and reports IsZero.
// Construct only via Normalizer.New.
type Shortcut struct {
	value     string
	printable string
	platform  Platform
	// raw is the input as typed, kept so errors name the user's spelling.
	raw string
}

// Accelerator is the toolkit form of a shortcut.
type Accelerator struct {
	Flags Modifier
	Key   Key
}

// Value returns the canonical form, e.g. "Shift-Ctrl-S". Empty for the zero Shortcut.
func (s Shortcut) Value() string { return s.value }

// Printable returns the display form: glyphs on macOS, the canonical value elsewhere.
func (s Shortcut) Printable() string { return s.printable }

// IsZero reports whether the shortcut was built from empty input.
func (s Shortcut) IsZero() bool { return s.value == "" }

func (s Shortcut) String() string { return s.value }

// New normalizes raw. Tokens are separated by "+" or "-"; modifiers are
// sorted Shift, Ctrl, Cmd, Alt and every other token keeps its relative
// order after them. Empty or blank input yields the zero Shortcut.
func (n *Normalizer) New(raw string) Shortcut {
	if strings.TrimSpace(raw) == "" {
		return Shortcut{}
	}
	tokens := split(raw)
	for i, token := range tokens {
		tokens[i] = n.canonicalToken(token)
	}
	slices.SortStableFunc(tokens, func(a, b string) int {
		return sortRank(a) - sortRank(b)
	})
	value := strings.Join(tokens, Separator)
	return Shortcut{
		value:     value,
		printable: n.printable(tokens, value),
		platform:  n.platform,
		raw:       strings.TrimSpace(raw),
	}
}

func (n *Normalizer) canonicalToken(token string) string {
	return n.normalizeKey(cases.Title(language.Und).String(token))
}

// Parse resolves the shortcut to accelerator flags and a key code.
// A single-token shortcut has AccelNormal flags. Unknown modifier or key
// names produce an *InvalidShortcutError.
func (s Shortcut) Parse() (Accelerator, error) {
	if s.IsZero() {
		return Accelerator{}, ErrEmptyShortcut
	}
	keys := split(s.value)
	last := len(keys) - 1

	flags := AccelNormal
	if last > 0 {
		table := modifierFlags[s.platform]
		for _, name := range keys[:last] {
			flag, ok := table[name]
			if !ok {
				return Accelerator{}, s.invalid(name, modifierNames())
			}
			flags |= flag
		}
	}

	key, ok := lookupKeyToken(keys[last], s.platform)
	if !ok {
		return Accelerator{}, s.invalid(keys[last], KeyNames())
	}
	return Accelerator{Flags: flags, Key: key}, nil
}

// invalid reports token as the user typed it.
func (s Shortcut) invalid(token string, candidates []string) *InvalidShortcutError {
	err := newInvalidShortcutError(token, candidates)
	n := NewNormalizer(s.platform)
	for _, typed := range split(s.raw) {
		if n.canonicalToken(typed) == token {
			err.Token = typed
			break
		}
	}
	return err
}

func (n *Normalizer) normalizeKey(token string) string {
	if token == modCtrlCmd {
		if n.platform.IsMac() {
			return ModCmd
		}
		return ModCtrl
	}
	if alias, ok := keyAliases[token]; ok {
		return alias
	}
	return token
}

func (n *Normalizer) printable(tokens []string, value string) string {
	if !n.platform.IsMac() {
		return value
	}
	var b strings.Builder
	for _, token := range tokens {
		if glyph, ok := macGlyphs[token]; ok {
			b.WriteString(glyph)
			continue
		}
		b.WriteString(token)
	}
	return b.String()
}

// lookupKeyToken resolves the key token of a canonical value. A single
// character is its own upper-cased code.
func lookupKeyToken(token string, p Platform) (Key, bool) {
	if utf8.RuneCountInString(token) == 1 {
		r, _ := utf8.DecodeRuneInString(strings.ToUpper(token))
		return Key(r), true
	}
	if alias, ok := keyAliases[token]; ok {
		token = alias
	}
	return lookupKey(strings.ToUpper(strings.ReplaceAll(token, " ", "")), p)
}

// split breaks s on "+" and "-". A separator typed twice at the end
// ("Ctrl--", "Ctrl-+") names the separator key itself; other empty tokens
// are dropped.
func split(s string) []string {
	s = strings.TrimSpace(s)
	if len(s) == 1 && isSeparator(rune(s[0])) {
		return []string{s}
	}
	var tail string
	if n := len(s); n >= 2 && isSeparator(rune(s[n-1])) && isSeparator(rune(s[n-2])) {
		tail, s = s[n-1:], s[:n-2]
	}
	var tokens []string
	for _, token := range strings.FieldsFunc(s, isSeparator) {
		if token = strings.TrimSpace(token); token != "" {
			tokens = append(tokens, token)
		}
	}
	if tail != "" {
		tokens = append(tokens, tail)
	}
	return tokens
}

func isSeparator(r rune) bool { return r == '+' || r == '-' }

func sortRank(token string) int {
	if rank, ok := modifierOrder[token]; ok {
		return rank
	}
	return len(modifierOrder)
}

func modifierNames() []string {
	return []string{ModShift, ModCtrl, ModCmd, ModAlt}
}
