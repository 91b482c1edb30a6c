package main

import (
	"context"
	"log/slog"

	"ride/internal/notebook"
	"ride/internal/plugin"
)

// Runtime events consumed by the frontend.
const (
	eventAlert         = "ride:alert"
	eventNotebook      = "ride:notebook"
	eventConfigUpdated = "config:updated"
)

// emitRuntimeEvent emits via the app context and delegates to emitRuntimeEventWithContext.
func (a *App) emitRuntimeEvent(name string, payload any) {
	a.emitRuntimeEventWithContext(a.runtimeContext(), name, payload)
}

// emitRuntimeEventWithContext emits a runtime event only when ctx is non-nil.
func (a *App) emitRuntimeEventWithContext(ctx context.Context, name string, payload any) {
	if ctx == nil {
		slog.Debug("[EVENT] runtime event dropped because app context is nil", "event", name)
		return
	}
	runtimeEventsEmitFn(ctx, name, payload)
}

// onNotebookEvent forwards tab changes to the frontend and pushes fresh text
// to a view stream client subscribed to the tab.
//
// This runs for every logged line while the log tab is open, so it must not
// log on the success path: the record would come straight back here.
func (a *App) onNotebookEvent(ev notebook.Event) {
	if ctx := a.runtimeContext(); ctx != nil {
		runtimeEventsEmitFn(ctx, eventNotebook, ev)
	}
	if ev.Kind != notebook.EventAdded && ev.Kind != notebook.EventRefresh {
		return
	}
	hub := a.hub
	if hub == nil || !hub.IsSubscribed(ev.TabID) {
		return
	}
	if text, ok := a.tabText(ev.TabID); ok {
		hub.BroadcastTab(ev.TabID, text)
	}
}

// runtimeAlerter shows plugin alerts as a frontend modal.
type runtimeAlerter struct {
	app *App
}

func (r runtimeAlerter) ShowAlert(req plugin.AlertRequest) {
	r.app.emitRuntimeEvent(eventAlert, req)
}

// runtimeClipboard writes to the system clipboard through the webview.
type runtimeClipboard struct {
	app *App
}

func (c runtimeClipboard) SetText(text string) error {
	ctx := c.app.runtimeContext()
	if ctx == nil {
		return plugin.ErrNoClipboard
	}
	return runtimeClipboardSetTextFn(ctx, text)
}
