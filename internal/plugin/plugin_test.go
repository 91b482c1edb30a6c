package plugin

import (
	"errors"
	"testing"

	"ride/internal/actions"
	"ride/internal/shortcut"
)

type recordingAlerter struct{ got []AlertRequest }

func (r *recordingAlerter) ShowAlert(req AlertRequest) { r.got = append(r.got, req) }

type recordingClipboard struct{ text string }

func (c *recordingClipboard) SetText(text string) error {
	c.text = text
	return nil
}

func TestBaseScopesRegistrationsToOwner(t *testing.T) {
	host := NewHost(shortcut.PlatformOther)
	base := NewBase("demo", host)

	received := 0
	base.Subscribe("topic", func(any) { received++ })
	if err := base.RegisterAction(actions.ActionInfo{Owner: "spoofed", Menu: "Tools", Name: "Demo", Handler: func() {}}); err != nil {
		t.Fatalf("RegisterAction() error = %v", err)
	}
	if err := base.BindShortcut("demo-tab", "CtrlCmd-A", func() {}); err != nil {
		t.Fatalf("BindShortcut() error = %v", err)
	}

	host.Bus.Publish("topic", nil)
	if received != 1 {
		t.Fatalf("received = %d, want 1", received)
	}

	base.UnsubscribeAll()
	base.UnregisterActions()

	host.Bus.Publish("topic", nil)
	if received != 1 {
		t.Fatalf("received after UnsubscribeAll = %d, want 1", received)
	}
	if menus := host.Actions.Menus(); len(menus) != 0 {
		t.Fatalf("Menus() = %+v, want none", menus)
	}
	if got := host.Actions.Bindings("demo-tab"); len(got) != 0 {
		t.Fatalf("Bindings() = %v, want none", got)
	}
}

func TestBaseAlertsAndClipboard(t *testing.T) {
	host := NewHost(shortcut.PlatformMac)
	base := NewBase("demo", host)

	base.ShowAlert(AlertRequest{Message: "dropped"})
	if err := base.SetClipboard("x"); !errors.Is(err, ErrNoClipboard) {
		t.Fatalf("SetClipboard() without clipboard error = %v", err)
	}

	alerts := &recordingAlerter{}
	clip := &recordingClipboard{}
	host.Alerts = alerts
	host.Clipboard = clip

	base.ShowAlert(AlertRequest{Message: "hello", Padding: DefaultAlertSize, FontSize: DefaultAlertSize})
	if err := base.SetClipboard("copied"); err != nil {
		t.Fatalf("SetClipboard() error = %v", err)
	}
	if len(alerts.got) != 1 || alerts.got[0].Message != "hello" {
		t.Fatalf("alerts = %+v", alerts.got)
	}
	if clip.text != "copied" {
		t.Fatalf("clipboard = %q, want copied", clip.text)
	}
	if !base.IsMac() {
		t.Fatal("IsMac() = false for PlatformMac host")
	}
}
