package logplugin

import (
	"sync"
	"unicode/utf8"
)

// Selection is a character range [Start, End) within the rendered log text.
type Selection struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// logWindow is the read-only "RIDE Log" tab.
type logWindow struct {
	plugin *Plugin

	mu  sync.Mutex
	sel Selection
}

func (w *logWindow) ID() string      { return TabID }
func (w *logWindow) Title() string   { return TabTitle }
func (w *logWindow) Content() string { return w.plugin.Text() }

// TabClosed is called by the notebook when the user closes the tab.
func (w *logWindow) TabClosed() {
	w.plugin.windowClosed(w)
}

func (w *logWindow) setSelection(sel Selection) Selection {
	if sel.Start > sel.End {
		sel.Start, sel.End = sel.End, sel.Start
	}
	n := utf8.RuneCountInString(w.plugin.Text())
	sel.Start = min(max(sel.Start, 0), n)
	sel.End = min(max(sel.End, sel.Start), n)

	w.mu.Lock()
	w.sel = sel
	w.mu.Unlock()
	return sel
}

func (w *logWindow) selection() Selection {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sel
}

func (w *logWindow) selectAll() Selection {
	return w.setSelection(Selection{Start: 0, End: utf8.RuneCountInString(w.plugin.Text())})
}

// selectedText returns the selected slice of the current text, clamped to
// what is rendered now.
func (w *logWindow) selectedText() string {
	sel := w.selection()
	runes := []rune(w.plugin.Text())
	start := min(sel.Start, len(runes))
	end := min(max(sel.End, start), len(runes))
	return string(runes[start:end])
}

func (w *logWindow) copySelection() error {
	text := w.selectedText()
	if text == "" {
		return nil
	}
	return w.plugin.SetClipboard(text)
}
