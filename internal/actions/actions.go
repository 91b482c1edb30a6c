// Package actions keeps the menu commands and keyboard bindings contributed
// by plugins.
package actions

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"ride/internal/shortcut"
)

// GlobalScope is the binding scope that applies regardless of focus.
const GlobalScope = ""

// ActionInfo describes one menu command.
type ActionInfo struct {
	Owner    string
	Menu     string
	Name     string
	Position int
	Handler  func()
	// Shortcut is optional and displayed next to the menu entry.
	Shortcut string
}

// MenuItem is the frontend view of a registered action.
type MenuItem struct {
	Name     string `json:"name"`
	Position int    `json:"position"`
	Shortcut string `json:"shortcut,omitempty"`
}

// Menu groups the items of one top-level menu in position order.
type Menu struct {
	Name  string     `json:"name"`
	Items []MenuItem `json:"items"`
}

type binding struct {
	owner       string
	scope       string
	shortcut    shortcut.Shortcut
	accelerator shortcut.Accelerator
	handler     func()
}

// Registry holds menu actions and keyboard bindings.
type Registry struct {
	normalizer *shortcut.Normalizer

	mu       sync.RWMutex
	actions  []ActionInfo
	bindings []binding
}

// ErrActionNotFound is returned by Trigger for unknown menu entries.
var ErrActionNotFound = errors.New("action not found")

// NewRegistry creates a registry that normalizes shortcuts with n.
func NewRegistry(n *shortcut.Normalizer) *Registry {
	return &Registry{normalizer: n}
}

// RegisterAction adds a menu command. A non-empty Shortcut is validated and
// bound globally; an invalid one fails the whole registration.
func (r *Registry) RegisterAction(info ActionInfo) error {
	if strings.TrimSpace(info.Menu) == "" || strings.TrimSpace(info.Name) == "" {
		return fmt.Errorf("register action: menu and name are required")
	}
	if info.Handler == nil {
		return fmt.Errorf("register action %s/%s: handler is required", info.Menu, info.Name)
	}
	if info.Shortcut != "" {
		sc := r.normalizer.New(info.Shortcut)
		if err := r.BindShortcut(info.Owner, GlobalScope, info.Shortcut, info.Handler); err != nil {
			return fmt.Errorf("register action %s/%s: %w", info.Menu, info.Name, err)
		}
		info.Shortcut = sc.Printable()
	}

	r.mu.Lock()
	r.actions = append(r.actions, info)
	r.mu.Unlock()
	slog.Debug("[actions] registered", "owner", info.Owner, "menu", info.Menu, "name", info.Name)
	return nil
}

// UnregisterActions removes every action and binding registered by owner.
func (r *Registry) UnregisterActions(owner string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	keptActions := r.actions[:0]
	for _, a := range r.actions {
		if a.Owner != owner {
			keptActions = append(keptActions, a)
		}
	}
	r.actions = keptActions
	r.bindings = filterBindings(r.bindings, func(b binding) bool { return b.owner == owner })
}

// BindShortcut binds raw to handler in scope. The shortcut is normalized and
// parsed now, so unknown key names fail at registration time with a
// *shortcut.InvalidShortcutError.
func (r *Registry) BindShortcut(owner, scope, raw string, handler func()) error {
	if handler == nil {
		return fmt.Errorf("bind shortcut %q: handler is required", raw)
	}
	sc := r.normalizer.New(raw)
	acc, err := sc.Parse()
	if err != nil {
		return fmt.Errorf("bind shortcut %q: %w", raw, err)
	}
	r.mu.Lock()
	r.bindings = append(r.bindings, binding{
		owner:       owner,
		scope:       scope,
		shortcut:    sc,
		accelerator: acc,
		handler:     handler,
	})
	r.mu.Unlock()
	return nil
}

// UnbindScope removes owner's bindings in scope.
func (r *Registry) UnbindScope(owner, scope string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings = filterBindings(r.bindings, func(b binding) bool {
		return b.owner == owner && b.scope == scope
	})
}

// HandleKey runs the newest binding matching acc in scope, falling back to
// global bindings. It reports whether a handler ran.
func (r *Registry) HandleKey(scope string, acc shortcut.Accelerator) bool {
	handler := r.lookup(scope, acc)
	if handler == nil && scope != GlobalScope {
		handler = r.lookup(GlobalScope, acc)
	}
	if handler == nil {
		return false
	}
	handler()
	return true
}

func (r *Registry) lookup(scope string, acc shortcut.Accelerator) func() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := len(r.bindings) - 1; i >= 0; i-- {
		b := r.bindings[i]
		if b.scope == scope && b.accelerator == acc {
			return b.handler
		}
	}
	return nil
}

// Trigger runs the handler of the menu entry menu/name.
func (r *Registry) Trigger(menu, name string) error {
	r.mu.RLock()
	var handler func()
	for _, a := range r.actions {
		if a.Menu == menu && a.Name == name {
			handler = a.Handler
			break
		}
	}
	r.mu.RUnlock()
	if handler == nil {
		return fmt.Errorf("trigger %s/%s: %w", menu, name, ErrActionNotFound)
	}
	handler()
	return nil
}

// Menus returns all menus sorted by name with items sorted by position.
func (r *Registry) Menus() []Menu {
	r.mu.RLock()
	byMenu := map[string][]MenuItem{}
	for _, a := range r.actions {
		byMenu[a.Menu] = append(byMenu[a.Menu], MenuItem{
			Name:     a.Name,
			Position: a.Position,
			Shortcut: a.Shortcut,
		})
	}
	r.mu.RUnlock()

	menus := make([]Menu, 0, len(byMenu))
	for name, items := range byMenu {
		sort.SliceStable(items, func(i, j int) bool { return items[i].Position < items[j].Position })
		menus = append(menus, Menu{Name: name, Items: items})
	}
	sort.Slice(menus, func(i, j int) bool { return menus[i].Name < menus[j].Name })
	return menus
}

// Bindings returns the canonical shortcut values bound in scope.
func (r *Registry) Bindings(scope string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for _, b := range r.bindings {
		if b.scope == scope {
			out = append(out, b.shortcut.Value())
		}
	}
	return out
}

func filterBindings(bindings []binding, drop func(binding) bool) []binding {
	kept := bindings[:0]
	for _, b := range bindings {
		if !drop(b) {
			kept = append(kept, b)
		}
	}
	return kept
}
