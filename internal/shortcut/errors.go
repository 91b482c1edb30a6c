package shortcut

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

var (
	// ErrInvalidShortcut is matched by every *InvalidShortcutError.
	ErrInvalidShortcut = errors.New("invalid shortcut")
	// ErrEmptyShortcut is returned when parsing a zero Shortcut.
	ErrEmptyShortcut = errors.New("shortcut is empty")
)

const maxSuggestions = 3

// InvalidShortcutError reports a token that does not name a known modifier or key.
type InvalidShortcutError struct {
	Token       string
	Suggestions []string
}

func (e *InvalidShortcutError) Error() string {
	msg := fmt.Sprintf("invalid shortcut key: %s", e.Token)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

func (e *InvalidShortcutError) Unwrap() error { return ErrInvalidShortcut }

func newInvalidShortcutError(token string, candidates []string) *InvalidShortcutError {
	return &InvalidShortcutError{
		Token:       token,
		Suggestions: suggest(token, candidates),
	}
}

// suggest ranks candidates that fuzzily contain token, closest first.
func suggest(token string, candidates []string) []string {
	if strings.TrimSpace(token) == "" || len(candidates) == 0 {
		return nil
	}
	ranks := fuzzy.RankFindNormalizedFold(token, candidates)
	if len(ranks) == 0 {
		return nil
	}
	sort.Sort(ranks)
	out := make([]string, 0, min(len(ranks), maxSuggestions))
	for _, r := range ranks {
		if len(out) == maxSuggestions {
			break
		}
		out = append(out, r.Target)
	}
	return out
}
