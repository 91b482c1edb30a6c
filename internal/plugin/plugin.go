// Package plugin defines what the host application exposes to plugins.
package plugin

import (
	"errors"

	"ride/internal/actions"
	"ride/internal/bus"
	"ride/internal/notebook"
	"ride/internal/shortcut"
)

// DefaultAlertSize asks the alert dialog to use its platform default for
// padding or font size.
const DefaultAlertSize = -1

// AlertRequest describes a modal message shown to the user.
type AlertRequest struct {
	Title    string `json:"title"`
	Message  string `json:"message"`
	Padding  int    `json:"padding"`
	FontSize int    `json:"fontSize"`
}

// Alerter shows alerts to the user.
type Alerter interface {
	ShowAlert(req AlertRequest)
}

// Clipboard receives copied text.
type Clipboard interface {
	SetText(text string) error
}

// Host bundles the application services available to plugins.
type Host struct {
	Bus        *bus.Bus
	Actions    *actions.Registry
	Notebook   *notebook.Notebook
	Alerts     Alerter
	Clipboard  Clipboard
	Normalizer *shortcut.Normalizer
}

// NewHost creates a host with fresh bus, registry and notebook. Alerts and
// Clipboard are attached by the caller.
func NewHost(p shortcut.Platform) *Host {
	n := shortcut.NewNormalizer(p)
	return &Host{
		Bus:        bus.New(),
		Actions:    actions.NewRegistry(n),
		Notebook:   notebook.New(),
		Normalizer: n,
	}
}

// ErrNoClipboard is returned when the host has no clipboard attached.
var ErrNoClipboard = errors.New("clipboard unavailable")

// Base carries a plugin's name and scopes host calls to it, so Disable can
// drop everything the plugin registered in one step.
type Base struct {
	name string
	host *Host
}

// NewBase creates the owner-scoped helper for plugin name.
func NewBase(name string, host *Host) Base {
	return Base{name: name, host: host}
}

// Name returns the plugin's owner name.
func (b Base) Name() string { return b.name }

// Host returns the host the plugin is attached to.
func (b Base) Host() *Host { return b.host }

// IsMac reports whether shortcuts are rendered for macOS.
func (b Base) IsMac() bool { return b.host.Normalizer.Platform().IsMac() }

// Subscribe registers handler for topic under the plugin's name.
func (b Base) Subscribe(topic string, handler bus.Handler) bus.Subscription {
	return b.host.Bus.Subscribe(b.name, topic, handler)
}

// UnsubscribeAll removes every subscription of the plugin.
func (b Base) UnsubscribeAll() {
	b.host.Bus.UnsubscribeAll(b.name)
}

// RegisterAction adds a menu action owned by the plugin.
func (b Base) RegisterAction(info actions.ActionInfo) error {
	info.Owner = b.name
	return b.host.Actions.RegisterAction(info)
}

// UnregisterActions removes the plugin's actions and key bindings.
func (b Base) UnregisterActions() {
	b.host.Actions.UnregisterActions(b.name)
}

// BindShortcut binds raw within scope for the plugin.
func (b Base) BindShortcut(scope, raw string, handler func()) error {
	return b.host.Actions.BindShortcut(b.name, scope, raw, handler)
}

// UnbindScope removes the plugin's bindings in scope.
func (b Base) UnbindScope(scope string) {
	b.host.Actions.UnbindScope(b.name, scope)
}

// ShowAlert forwards req to the host; it is a no-op without an Alerter.
func (b Base) ShowAlert(req AlertRequest) {
	if b.host.Alerts == nil {
		return
	}
	b.host.Alerts.ShowAlert(req)
}

// SetClipboard copies text to the host clipboard.
func (b Base) SetClipboard(text string) error {
	if b.host.Clipboard == nil {
		return ErrNoClipboard
	}
	return b.host.Clipboard.SetText(text)
}
