package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"ride/internal/actions"
	"ride/internal/config"
	"ride/internal/ipc"
	"ride/internal/logplugin"
	"ride/internal/notebook"
	"ride/internal/plugin"
	"ride/internal/shortcut"
	"ride/internal/viewstream"
)

// errNotStarted is returned by bound methods called before startup finished.
var errNotStarted = errors.New("ride is not started")

// App is the Wails-bound application service.
type App struct {
	// Runtime context lifecycle.
	ctx   context.Context
	ctxMu sync.RWMutex

	configPath string
	pipeName   string
	cfgMu      sync.RWMutex
	cfg        config.Config

	// logOut receives the text handler output behind the session log tee.
	logOut io.Writer

	host *plugin.Host

	// Set once during startup before any bound method can run and never
	// reassigned; read without locks.
	logPlugin  *logplugin.Plugin
	hub        *viewstream.Hub
	watcher    *config.Watcher
	pipeServer *ipc.PipeServer

	openLogOnStartup bool

	bgCancel     context.CancelFunc
	shuttingDown atomic.Bool
}

// NewApp creates the app service for the current platform.
func NewApp() *App {
	a := &App{
		configPath: config.DefaultPath(),
		cfg:        config.DefaultConfig(),
		logOut:     os.Stderr,
		host:       plugin.NewHost(shortcut.CurrentPlatform()),
	}
	a.host.Alerts = runtimeAlerter{app: a}
	a.host.Clipboard = runtimeClipboard{app: a}
	return a
}

func (a *App) setRuntimeContext(ctx context.Context) {
	a.ctxMu.Lock()
	a.ctx = ctx
	a.ctxMu.Unlock()
}

func (a *App) runtimeContext() context.Context {
	a.ctxMu.RLock()
	ctx := a.ctx
	a.ctxMu.RUnlock()
	return ctx
}

func (a *App) currentConfig() config.Config {
	a.cfgMu.RLock()
	defer a.cfgMu.RUnlock()
	return config.Clone(a.cfg)
}

func (a *App) setConfig(cfg config.Config) {
	a.cfgMu.Lock()
	a.cfg = config.Clone(cfg)
	a.cfgMu.Unlock()
}

func (a *App) requireLogPlugin() (*logplugin.Plugin, error) {
	if a.logPlugin == nil {
		return nil, errNotStarted
	}
	return a.logPlugin, nil
}

// ViewLog opens the RIDE Log tab or brings it to the front.
func (a *App) ViewLog() error {
	p, err := a.requireLogPlugin()
	if err != nil {
		return err
	}
	return p.OnViewLog()
}

// GetLogText returns everything logged this session in display format.
func (a *App) GetLogText() string {
	if a.logPlugin == nil {
		return ""
	}
	return a.logPlugin.Text()
}

// GetLogPath returns the session log file path.
func (a *App) GetLogPath() string {
	if a.logPlugin == nil {
		return ""
	}
	return a.logPlugin.LogPath()
}

// SetLogSelection records the frontend selection in rune offsets and
// returns it clamped to the current text.
func (a *App) SetLogSelection(start, end int) (logplugin.Selection, error) {
	p, err := a.requireLogPlugin()
	if err != nil {
		return logplugin.Selection{}, err
	}
	return p.SetSelection(logplugin.Selection{Start: start, End: end})
}

// CopyLogSelection puts the selected log text on the clipboard.
func (a *App) CopyLogSelection() error {
	p, err := a.requireLogPlugin()
	if err != nil {
		return err
	}
	return p.Copy()
}

// SelectAllLog selects the whole log text.
func (a *App) SelectAllLog() (logplugin.Selection, error) {
	p, err := a.requireLogPlugin()
	if err != nil {
		return logplugin.Selection{}, err
	}
	return p.SelectAll()
}

// GetMenus returns the registered menus in display order.
func (a *App) GetMenus() []actions.Menu {
	return a.host.Actions.Menus()
}

// TriggerMenuAction runs the action registered under menu and name.
func (a *App) TriggerMenuAction(menu, name string) error {
	return a.host.Actions.Trigger(menu, name)
}

// HandleKey dispatches a key press from the frontend. scope is the active
// tab ID, flags and key are accelerator values as produced by
// shortcut.Accelerator. It reports whether a binding handled the key.
func (a *App) HandleKey(scope string, flags, key uint32) bool {
	return a.host.Actions.HandleKey(scope, shortcut.Accelerator{
		Flags: shortcut.Modifier(flags),
		Key:   shortcut.Key(key),
	})
}

// GetTabs lists the open notebook tabs.
func (a *App) GetTabs() []notebook.TabInfo {
	return a.host.Notebook.Tabs()
}

// ShowTab brings tab id to the front.
func (a *App) ShowTab(id string) error {
	return a.host.Notebook.ShowTab(id)
}

// CloseTab closes tab id as if the user clicked its close button.
func (a *App) CloseTab(id string) error {
	return a.host.Notebook.CloseTab(id)
}

// GetTabText returns the content of tab id, or "" when it is not open.
func (a *App) GetTabText(id string) string {
	text, _ := a.tabText(id)
	return text
}

// GetViewStreamURL returns the WebSocket endpoint streaming tab text, or ""
// when the stream is unavailable.
func (a *App) GetViewStreamURL() string {
	if a.hub == nil {
		slog.Debug("[DEBUG-WS] hub is nil, view stream URL unavailable")
		return ""
	}
	return a.hub.URL()
}

// LocalizeShortcut rewrites shortcut names in text for display, e.g. Mac
// modifier glyphs.
func (a *App) LocalizeShortcut(text string) string {
	return a.host.Normalizer.Localize(text)
}

func (a *App) tabText(id string) (string, bool) {
	tab, ok := a.host.Notebook.Tab(id)
	if !ok {
		return "", false
	}
	return tab.Content(), true
}
