package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net"
	"os"
	"strconv"

	"ride/internal/config"
	"ride/internal/ipc"
	"ride/internal/logplugin"
	"ride/internal/sessionlog"
	"ride/internal/viewstream"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// Test seams.
var (
	runtimeEventsEmitFn       = runtime.EventsEmit
	runtimeClipboardSetTextFn = runtime.ClipboardSetText
	runtimeWindowShowFn       = runtime.WindowShow
	runtimeWindowUnminimiseFn = runtime.WindowUnminimise
	setDefaultLoggerFn        = slog.SetDefault
	ensureConfigFn            = config.EnsureFile
	newConfigWatcherFn        = config.NewWatcher
	newPipeServerFn           = ipc.NewPipeServer
)

const viewStreamHost = "127.0.0.1"

func (a *App) startup(ctx context.Context) {
	a.setRuntimeContext(ctx)
	if err := a.initServices(ctx); err != nil {
		slog.Error("[app] startup failed", "error", err)
		return
	}
	if a.openLogOnStartup {
		if err := a.ViewLog(); err != nil {
			slog.Warn("[app] open log on startup failed", "error", err)
		}
	}
}

// initServices loads the config, routes slog into the log plugin and starts
// the background services. Only a log plugin failure is fatal; the view
// stream, config watcher and ipc server degrade to warnings.
func (a *App) initServices(ctx context.Context) error {
	cfg, err := ensureConfigFn(a.configPath)
	if err != nil {
		slog.Warn("[WARN-CONFIG] config unavailable, using defaults", "path", a.configPath, "error", err)
	}
	a.setConfig(cfg)
	a.installLogger(cfg)

	settings := settingsFromConfig(cfg)
	a.logPlugin = logplugin.New(a.host, logplugin.Options{
		TempDir:         cfg.TempDir,
		Settings:        &settings,
		ViewLogShortcut: cfg.Shortcuts[logplugin.ActionName],
	})
	if err := a.logPlugin.Enable(); err != nil {
		return err
	}

	bgCtx, cancel := context.WithCancel(ctx)
	a.bgCancel = cancel

	hub := viewstream.NewHub(viewstream.Options{
		Addr:   net.JoinHostPort(viewStreamHost, strconv.Itoa(cfg.WebSocketPort)),
		Source: viewstream.ContentSourceFunc(a.tabText),
	})
	if err := hub.Start(bgCtx); err != nil {
		slog.Warn("[DEBUG-WS] view stream unavailable", "error", err)
	} else {
		a.hub = hub
	}
	a.host.Notebook.AddListener(a.onNotebookEvent)

	if watcher, err := newConfigWatcherFn(a.configPath, a.applyConfig); err != nil {
		slog.Warn("[WARN-CONFIG] live reload disabled", "path", a.configPath, "error", err)
	} else {
		a.watcher = watcher
		watcher.Start(bgCtx)
	}

	server := newPipeServerFn(a.pipeName, ipc.HandlerFunc(a.handleIPC))
	if err := server.Start(); err != nil {
		slog.Warn("[ipc] request server unavailable", "error", err)
	} else {
		a.pipeServer = server
	}

	slog.Info("[app] started", "config", a.configPath, "logFile", a.logPlugin.LogPath(), "viewStream", a.GetViewStreamURL())
	return nil
}

// installLogger makes every slog record also a messages.Log on the bus.
func (a *App) installLogger(cfg config.Config) {
	level := cfg.SlogLevel()
	base := slog.NewTextHandler(a.logOut, &slog.HandlerOptions{Level: level})
	setDefaultLoggerFn(slog.New(sessionlog.NewTeeHandler(base, level, a.host.Bus)))
}

func settingsFromConfig(cfg config.Config) logplugin.Settings {
	return logplugin.Settings{
		LogToConsole: cfg.Plugins.Log.LogToConsole,
		LogToFile:    cfg.Plugins.Log.LogToFile,
	}
}

// applyConfig takes a reloaded config. Sinks and the log level switch
// immediately; the port, temp dir and shortcuts need a restart.
func (a *App) applyConfig(cfg config.Config) {
	if a.shuttingDown.Load() {
		return
	}
	prev := a.currentConfig()
	a.setConfig(cfg)

	if prev.LogLevel != cfg.LogLevel {
		a.installLogger(cfg)
	}
	if a.logPlugin != nil {
		a.logPlugin.ApplySettings(settingsFromConfig(cfg))
	}
	if prev.WebSocketPort != cfg.WebSocketPort || prev.TempDir != cfg.TempDir || !maps.Equal(prev.Shortcuts, cfg.Shortcuts) {
		slog.Info("[config] some changes take effect after restart",
			"websocketPort", cfg.WebSocketPort, "tempDir", cfg.TempDir)
	}
	a.emitRuntimeEvent(eventConfigUpdated, cfg)
}

func (a *App) handleIPC(req ipc.Request) ipc.Response {
	switch req.Command {
	case ipc.CommandActivate:
		a.bringWindowToFront()
		return ipc.Response{OK: true}
	case ipc.CommandViewLog:
		a.bringWindowToFront()
		if err := a.ViewLog(); err != nil {
			return ipc.ErrorResponse(err)
		}
		return ipc.Response{OK: true}
	default:
		return ipc.ErrorResponse(fmt.Errorf("unknown command %q", req.Command))
	}
}

func (a *App) bringWindowToFront() {
	ctx := a.runtimeContext()
	if ctx == nil {
		return
	}
	runtimeWindowUnminimiseFn(ctx)
	runtimeWindowShowFn(ctx)
}

func (a *App) shutdown(_ context.Context) {
	if !a.shuttingDown.CompareAndSwap(false, true) {
		return
	}
	if err := a.closeServices(); err != nil {
		fmt.Fprintf(os.Stderr, "[app] shutdown: %v\n", err)
	}
}

// closeServices stops everything initServices started. The tee is detached
// first so late records do not reach the closed log plugin.
func (a *App) closeServices() error {
	level := a.currentConfig().SlogLevel()
	setDefaultLoggerFn(slog.New(slog.NewTextHandler(a.logOut, &slog.HandlerOptions{Level: level})))

	var errs []error
	if a.pipeServer != nil {
		errs = append(errs, a.pipeServer.Stop())
	}
	if a.watcher != nil {
		errs = append(errs, a.watcher.Close())
	}
	if a.hub != nil {
		errs = append(errs, a.hub.Stop())
	}
	if a.bgCancel != nil {
		a.bgCancel()
	}
	if a.logPlugin != nil {
		a.logPlugin.Disable()
		errs = append(errs, a.logPlugin.Close())
	}
	return errors.Join(errs...)
}
