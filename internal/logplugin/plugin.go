// Package logplugin records application log events and shows them in a
// "RIDE Log" tab. Events are optionally echoed to the console and written to
// a per-session file in the temp directory.
package logplugin

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"ride/internal/actions"
	"ride/internal/messages"
	"ride/internal/plugin"
)

const (
	// Name is the plugin's owner name for bus subscriptions and actions.
	Name = "Log"

	TabID    = "ride-log"
	TabTitle = "RIDE Log"

	MenuName       = "Tools"
	ActionName     = "View RIDE Log"
	ActionPosition = 84

	CopyShortcut      = "CtrlCmd-C"
	SelectAllShortcut = "CtrlCmd-A"

	alertPadding     = 10
	macAlertFontSize = 13
)

// ErrNoLogWindow is returned by window operations while the tab is closed.
var ErrNoLogWindow = errors.New("log window is not open")

// Settings are the user-tunable sinks.
type Settings struct {
	LogToConsole bool
	LogToFile    bool
}

// DefaultSettings writes to the temp file only.
func DefaultSettings() Settings {
	return Settings{LogToConsole: false, LogToFile: true}
}

// Options configures a Plugin. Zero values select the defaults.
type Options struct {
	TempDir  string
	Console  io.Writer
	Stderr   io.Writer
	Settings *Settings
	// ViewLogShortcut optionally binds the menu action globally.
	ViewLogShortcut string
}

// Plugin is the log viewer. All methods are safe for concurrent use.
type Plugin struct {
	plugin.Base

	stderr io.Writer

	mu       sync.Mutex
	settings Settings
	entries  []messages.Log
	text     strings.Builder
	file     *fileSink
	console  *consoleSink
	window   *logWindow
	shortcut string
}

// New creates the plugin and removes log files left behind by earlier
// sessions. The new session's file is not created until the first write.
func New(host *plugin.Host, opts Options) *Plugin {
	if opts.TempDir == "" {
		opts.TempDir = os.TempDir()
	}
	if opts.Console == nil {
		opts.Console = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	settings := DefaultSettings()
	if opts.Settings != nil {
		settings = *opts.Settings
	}

	RemoveStaleLogFiles(opts.TempDir, opts.Stderr)

	return &Plugin{
		Base:     plugin.NewBase(Name, host),
		stderr:   opts.Stderr,
		settings: settings,
		file: &fileSink{
			path:   filepath.Join(opts.TempDir, uuid.NewString()+tempFileSuffix),
			errOut: opts.Stderr,
		},
		console:  newConsoleSink(opts.Console),
		shortcut: opts.ViewLogShortcut,
	}
}

// FormatMessage renders ev as "{timestamp} [{level}]: {message}" followed by
// a blank line.
func FormatMessage(ev messages.Log) string {
	return ev.Timestamp + " [" + ev.Level + "]: " + ev.Message + "\n\n"
}

// Enable registers the menu action and subscribes to log events. Calling it
// again replaces the earlier registrations.
func (p *Plugin) Enable() error {
	p.UnsubscribeAll()
	p.UnregisterActions()

	err := p.RegisterAction(actions.ActionInfo{
		Menu:     MenuName,
		Name:     ActionName,
		Position: ActionPosition,
		Shortcut: p.shortcut,
		Handler: func() {
			if err := p.OnViewLog(); err != nil {
				slog.Warn("[log-plugin] open log view failed", "error", err)
			}
		},
	})
	if err != nil {
		return fmt.Errorf("enable log plugin: %w", err)
	}

	p.mu.Lock()
	w := p.window
	p.mu.Unlock()
	if w != nil {
		// UnregisterActions dropped the tab bindings along with the action.
		if err := p.bindWindowShortcuts(w); err != nil {
			return fmt.Errorf("enable log plugin: %w", err)
		}
	}

	p.Subscribe(messages.TopicLog, p.handleMessage)
	return nil
}

// Disable drops every registration and closes the log tab.
func (p *Plugin) Disable() {
	p.UnsubscribeAll()
	p.UnregisterActions()

	p.mu.Lock()
	w := p.window
	p.window = nil
	p.mu.Unlock()
	if w != nil {
		if err := p.Host().Notebook.DeleteTab(TabID); err != nil {
			slog.Debug("[log-plugin] log tab already gone", "error", err)
		}
	}
}

// ApplySettings switches sinks on or off for later events.
func (p *Plugin) ApplySettings(s Settings) {
	p.mu.Lock()
	p.settings = s
	p.mu.Unlock()
}

// Settings returns the active sink settings.
func (p *Plugin) Settings() Settings {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.settings
}

func (p *Plugin) handleMessage(msg any) {
	var ev messages.Log
	switch m := msg.(type) {
	case messages.Log:
		ev = m
	case *messages.Log:
		if m == nil {
			return
		}
		ev = *m
	default:
		return
	}
	p.LogMessage(ev)
}

// LogMessage records ev and feeds it to the enabled sinks and, when the tab
// is open, refreshes it. NotifyUser events also raise an alert.
func (p *Plugin) LogMessage(ev messages.Log) {
	formatted := FormatMessage(ev)

	p.mu.Lock()
	p.entries = append(p.entries, ev)
	p.text.WriteString(formatted)
	windowOpen := p.window != nil
	settings := p.settings
	if settings.LogToConsole {
		p.console.write(ev)
	}
	if settings.LogToFile {
		p.file.write(formatted)
	}
	p.mu.Unlock()

	if windowOpen {
		p.Host().Notebook.Refresh(TabID)
	}
	if ev.NotifyUser {
		p.notify(ev)
	}
}

func (p *Plugin) notify(ev messages.Log) {
	fontSize := plugin.DefaultAlertSize
	if p.IsMac() {
		fontSize = macAlertFontSize
	}
	p.ShowAlert(plugin.AlertRequest{
		Title:    ev.Level,
		Message:  ev.Message,
		Padding:  alertPadding,
		FontSize: fontSize,
	})
}

// OnViewLog opens the log tab, or brings it to the front when it is open.
func (p *Plugin) OnViewLog() error {
	nb := p.Host().Notebook

	p.mu.Lock()
	if p.window != nil {
		p.mu.Unlock()
		return nb.ShowTab(TabID)
	}
	w := &logWindow{plugin: p}
	p.window = w
	p.mu.Unlock()

	if err := nb.AddTab(w, true); err != nil {
		p.dropWindow(w)
		return fmt.Errorf("open log view: %w", err)
	}
	if err := p.bindWindowShortcuts(w); err != nil {
		p.dropWindow(w)
		_ = nb.DeleteTab(TabID)
		return fmt.Errorf("open log view: %w", err)
	}
	nb.Refresh(TabID)
	return nil
}

func (p *Plugin) bindWindowShortcuts(w *logWindow) error {
	copyFn := func() {
		if err := w.copySelection(); err != nil {
			slog.Warn("[log-plugin] copy failed", "error", err)
		}
	}
	selectAllFn := func() {
		w.selectAll()
		p.Host().Notebook.Refresh(TabID)
	}
	if err := p.BindShortcut(TabID, CopyShortcut, copyFn); err != nil {
		return err
	}
	if err := p.BindShortcut(TabID, SelectAllShortcut, selectAllFn); err != nil {
		p.UnbindScope(TabID)
		return err
	}
	return nil
}

// windowClosed handles a user close of the tab: the panel and its bindings
// are dropped so the next OnViewLog starts fresh.
func (p *Plugin) windowClosed(w *logWindow) {
	p.dropWindow(w)
}

func (p *Plugin) dropWindow(w *logWindow) {
	p.mu.Lock()
	if p.window != w {
		p.mu.Unlock()
		return
	}
	p.window = nil
	p.mu.Unlock()
	p.UnbindScope(TabID)
}

// WindowOpen reports whether the log tab exists.
func (p *Plugin) WindowOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.window != nil
}

func (p *Plugin) currentWindow() (*logWindow, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.window == nil {
		return nil, ErrNoLogWindow
	}
	return p.window, nil
}

// SetSelection records the frontend's selection in the log tab and returns
// it clamped to the text.
func (p *Plugin) SetSelection(sel Selection) (Selection, error) {
	w, err := p.currentWindow()
	if err != nil {
		return Selection{}, err
	}
	return w.setSelection(sel), nil
}

// Selection returns the current selection in the log tab.
func (p *Plugin) Selection() (Selection, error) {
	w, err := p.currentWindow()
	if err != nil {
		return Selection{}, err
	}
	return w.selection(), nil
}

// SelectAll selects the whole log text.
func (p *Plugin) SelectAll() (Selection, error) {
	w, err := p.currentWindow()
	if err != nil {
		return Selection{}, err
	}
	return w.selectAll(), nil
}

// Copy puts the selected text on the host clipboard. An empty selection
// copies nothing.
func (p *Plugin) Copy() error {
	w, err := p.currentWindow()
	if err != nil {
		return err
	}
	return w.copySelection()
}

// Entries returns the recorded events in arrival order.
func (p *Plugin) Entries() []messages.Log {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.entries)
}

// Text returns all recorded events rendered with FormatMessage.
func (p *Plugin) Text() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.text.String()
}

// LogPath returns the session's temp file path. The file exists only after
// the first write.
func (p *Plugin) LogPath() string {
	return p.file.path
}

// Close syncs and closes the temp file if it was opened. Later events are
// not written to disk. Close may be called more than once.
func (p *Plugin) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.file.close()
}
