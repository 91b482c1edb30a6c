package main

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"ride/internal/notebook"
	"ride/internal/plugin"
	"ride/internal/testutil"
)

// NOTE: tests in this package override package-level function variables
// (runtimeEventsEmitFn and friends) and the default slog logger. Do not use
// t.Parallel().

type emittedEvent struct {
	name    string
	payload any
}

type eventRecorder struct {
	mu     sync.Mutex
	events []emittedEvent
}

func (r *eventRecorder) emit(_ context.Context, name string, data ...any) {
	var payload any
	if len(data) > 0 {
		payload = data[0]
	}
	r.mu.Lock()
	r.events = append(r.events, emittedEvent{name: name, payload: payload})
	r.mu.Unlock()
}

func (r *eventRecorder) named(name string) []emittedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []emittedEvent
	for _, ev := range r.events {
		if ev.name == name {
			out = append(out, ev)
		}
	}
	return out
}

func recordRuntimeEvents(t *testing.T) *eventRecorder {
	t.Helper()
	origEmit := runtimeEventsEmitFn
	t.Cleanup(func() { runtimeEventsEmitFn = origEmit })
	rec := &eventRecorder{}
	runtimeEventsEmitFn = rec.emit
	return rec
}

func TestEmitRuntimeEventWithContextSkipsNilContext(t *testing.T) {
	rec := recordRuntimeEvents(t)
	logBuf := testutil.CaptureLogBuffer(t, slog.LevelDebug)

	app := NewApp()
	app.emitRuntimeEventWithContext(nil, eventConfigUpdated, map[string]any{"ok": true})

	if got := len(rec.named(eventConfigUpdated)); got != 0 {
		t.Fatalf("event count = %d, want 0", got)
	}
	if !strings.Contains(logBuf.String(), "runtime event dropped because app context is nil") {
		t.Fatalf("log output = %q, want nil-context message", logBuf.String())
	}
}

func TestEmitRuntimeEventUsesAppContext(t *testing.T) {
	rec := recordRuntimeEvents(t)

	app := NewApp()
	app.setRuntimeContext(context.Background())
	app.emitRuntimeEvent(eventConfigUpdated, "payload")

	events := rec.named(eventConfigUpdated)
	if len(events) != 1 || events[0].payload != "payload" {
		t.Fatalf("events = %+v, want one config:updated", events)
	}
}

func TestRuntimeAlerterEmitsAlertEvent(t *testing.T) {
	rec := recordRuntimeEvents(t)

	app := NewApp()
	app.setRuntimeContext(context.Background())
	want := plugin.AlertRequest{Title: "ERROR", Message: "boom", Padding: 10, FontSize: plugin.DefaultAlertSize}
	app.host.Alerts.ShowAlert(want)

	events := rec.named(eventAlert)
	if len(events) != 1 {
		t.Fatalf("alert events = %d, want 1", len(events))
	}
	if got, ok := events[0].payload.(plugin.AlertRequest); !ok || got != want {
		t.Fatalf("alert payload = %#v, want %#v", events[0].payload, want)
	}
}

func TestRuntimeClipboard(t *testing.T) {
	origSet := runtimeClipboardSetTextFn
	t.Cleanup(func() { runtimeClipboardSetTextFn = origSet })

	var copied []string
	runtimeClipboardSetTextFn = func(_ context.Context, text string) error {
		copied = append(copied, text)
		return nil
	}

	app := NewApp()
	if err := app.host.Clipboard.SetText("early"); !errors.Is(err, plugin.ErrNoClipboard) {
		t.Fatalf("SetText() before startup error = %v, want ErrNoClipboard", err)
	}

	app.setRuntimeContext(context.Background())
	if err := app.host.Clipboard.SetText("copied"); err != nil {
		t.Fatalf("SetText() error = %v", err)
	}
	if len(copied) != 1 || copied[0] != "copied" {
		t.Fatalf("clipboard writes = %v, want [copied]", copied)
	}

	runtimeClipboardSetTextFn = func(context.Context, string) error { return errors.New("denied") }
	if err := app.host.Clipboard.SetText("x"); err == nil {
		t.Fatal("SetText() error = nil, want runtime error")
	}
}

type stubTab struct {
	id, text string
}

func (s stubTab) ID() string      { return s.id }
func (s stubTab) Title() string   { return s.id }
func (s stubTab) Content() string { return s.text }

func TestOnNotebookEventEmitsWithoutStream(t *testing.T) {
	rec := recordRuntimeEvents(t)

	app := NewApp()
	app.setRuntimeContext(context.Background())
	app.host.Notebook.AddListener(app.onNotebookEvent)

	if err := app.host.Notebook.AddTab(stubTab{id: "t1", text: "hello"}, true); err != nil {
		t.Fatal(err)
	}
	app.host.Notebook.Refresh("t1")

	events := rec.named(eventNotebook)
	if len(events) != 2 {
		t.Fatalf("notebook events = %d, want 2", len(events))
	}
	first, _ := events[0].payload.(notebook.Event)
	second, _ := events[1].payload.(notebook.Event)
	if first.Kind != notebook.EventAdded || second.Kind != notebook.EventRefresh || second.TabID != "t1" {
		t.Fatalf("notebook events = %+v, %+v", first, second)
	}
	if got := app.GetTabText("t1"); got != "hello" {
		t.Fatalf("GetTabText() = %q, want hello", got)
	}
	if got := app.GetTabText("missing"); got != "" {
		t.Fatalf("GetTabText(missing) = %q, want empty", got)
	}
}
