package actions

import (
	"errors"
	"slices"
	"testing"

	"ride/internal/shortcut"
)

func newTestRegistry() *Registry {
	return NewRegistry(shortcut.NewNormalizer(shortcut.PlatformOther))
}

func TestRegisterActionAndTrigger(t *testing.T) {
	r := newTestRegistry()
	calls := 0
	err := r.RegisterAction(ActionInfo{
		Owner:    "log",
		Menu:     "Tools",
		Name:     "View RIDE Log",
		Position: 84,
		Handler:  func() { calls++ },
	})
	if err != nil {
		t.Fatalf("RegisterAction() error = %v", err)
	}

	if err := r.Trigger("Tools", "View RIDE Log"); err != nil {
		t.Fatalf("Trigger() error = %v", err)
	}
	if calls != 1 {
		t.Fatalf("handler calls = %d, want 1", calls)
	}

	err = r.Trigger("Tools", "missing")
	if !errors.Is(err, ErrActionNotFound) {
		t.Fatalf("Trigger(missing) error = %v, want ErrActionNotFound", err)
	}
}

func TestRegisterActionValidation(t *testing.T) {
	r := newTestRegistry()
	tests := []struct {
		name string
		info ActionInfo
	}{
		{name: "missing menu", info: ActionInfo{Name: "x", Handler: func() {}}},
		{name: "missing name", info: ActionInfo{Menu: "Tools", Handler: func() {}}},
		{name: "missing handler", info: ActionInfo{Menu: "Tools", Name: "x"}},
		{name: "invalid shortcut", info: ActionInfo{Menu: "Tools", Name: "x", Handler: func() {}, Shortcut: "Ctrl-Nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := r.RegisterAction(tt.info); err == nil {
				t.Fatal("RegisterAction() error = nil, want error")
			}
		})
	}
	if menus := r.Menus(); len(menus) != 0 {
		t.Fatalf("Menus() = %v, want none after failed registrations", menus)
	}
}

func TestMenusSortedByPosition(t *testing.T) {
	r := newTestRegistry()
	for _, info := range []ActionInfo{
		{Owner: "a", Menu: "Tools", Name: "Late", Position: 90, Handler: func() {}},
		{Owner: "a", Menu: "Tools", Name: "Early", Position: 10, Handler: func() {}},
		{Owner: "a", Menu: "File", Name: "Save", Position: 1, Handler: func() {}, Shortcut: "ctrlcmd+s"},
	} {
		if err := r.RegisterAction(info); err != nil {
			t.Fatalf("RegisterAction(%s) error = %v", info.Name, err)
		}
	}

	menus := r.Menus()
	if len(menus) != 2 || menus[0].Name != "File" || menus[1].Name != "Tools" {
		t.Fatalf("Menus() = %+v", menus)
	}
	if menus[0].Items[0].Shortcut != "Ctrl-S" {
		t.Fatalf("File/Save shortcut = %q, want Ctrl-S", menus[0].Items[0].Shortcut)
	}
	if menus[1].Items[0].Name != "Early" || menus[1].Items[1].Name != "Late" {
		t.Fatalf("Tools items = %+v, want position order", menus[1].Items)
	}
}

func TestBindShortcutRejectsInvalidKeys(t *testing.T) {
	r := newTestRegistry()
	err := r.BindShortcut("log", "tab", "Ctrl-Bogus", func() {})
	var invalid *shortcut.InvalidShortcutError
	if !errors.As(err, &invalid) {
		t.Fatalf("BindShortcut() error = %v, want *shortcut.InvalidShortcutError", err)
	}
	if invalid.Token != "Bogus" {
		t.Fatalf("Token = %q, want Bogus", invalid.Token)
	}
	if got := r.Bindings("tab"); len(got) != 0 {
		t.Fatalf("Bindings() = %v, want none", got)
	}
}

func TestHandleKeyPrefersScopeOverGlobal(t *testing.T) {
	r := newTestRegistry()
	var hits []string
	if err := r.BindShortcut("app", GlobalScope, "Ctrl-C", func() { hits = append(hits, "global") }); err != nil {
		t.Fatal(err)
	}
	if err := r.BindShortcut("log", "log-tab", "CtrlCmd-C", func() { hits = append(hits, "tab") }); err != nil {
		t.Fatal(err)
	}

	acc := shortcut.Accelerator{Flags: shortcut.AccelCtrl, Key: shortcut.Key('C')}
	if !r.HandleKey("log-tab", acc) {
		t.Fatal("HandleKey(log-tab) = false")
	}
	if !r.HandleKey("elsewhere", acc) {
		t.Fatal("HandleKey(elsewhere) = false, want global fallback")
	}
	if r.HandleKey("log-tab", shortcut.Accelerator{Flags: shortcut.AccelAlt, Key: shortcut.Key('C')}) {
		t.Fatal("HandleKey(Alt-C) = true, want no match")
	}

	want := []string{"tab", "global"}
	if !slices.Equal(hits, want) {
		t.Fatalf("hits = %v, want %v", hits, want)
	}
}

func TestUnregisterActionsRemovesOwnerOnly(t *testing.T) {
	r := newTestRegistry()
	_ = r.RegisterAction(ActionInfo{Owner: "log", Menu: "Tools", Name: "View", Handler: func() {}})
	_ = r.RegisterAction(ActionInfo{Owner: "other", Menu: "Tools", Name: "Keep", Handler: func() {}})
	_ = r.BindShortcut("log", "tab", "Ctrl-A", func() {})
	_ = r.BindShortcut("other", "tab", "Ctrl-B", func() {})

	r.UnregisterActions("log")

	menus := r.Menus()
	if len(menus) != 1 || len(menus[0].Items) != 1 || menus[0].Items[0].Name != "Keep" {
		t.Fatalf("Menus() = %+v, want only Keep", menus)
	}
	if got := r.Bindings("tab"); !slices.Equal(got, []string{"Ctrl-B"}) {
		t.Fatalf("Bindings(tab) = %v, want [Ctrl-B]", got)
	}
}

func TestUnbindScope(t *testing.T) {
	r := newTestRegistry()
	_ = r.BindShortcut("log", "tab", "CtrlCmd-C", func() {})
	_ = r.BindShortcut("log", "tab", "CtrlCmd-A", func() {})
	_ = r.BindShortcut("log", GlobalScope, "F5", func() {})

	r.UnbindScope("log", "tab")

	if got := r.Bindings("tab"); len(got) != 0 {
		t.Fatalf("Bindings(tab) = %v, want none", got)
	}
	if got := r.Bindings(GlobalScope); !slices.Equal(got, []string{"F5"}) {
		t.Fatalf("Bindings(global) = %v, want [F5]", got)
	}
}
