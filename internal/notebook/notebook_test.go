package notebook

import (
	"errors"
	"slices"
	"testing"
)

type stubTab struct {
	id      string
	content string
	closed  int
}

func (s *stubTab) ID() string      { return s.id }
func (s *stubTab) Title() string   { return "Tab " + s.id }
func (s *stubTab) Content() string { return s.content }
func (s *stubTab) TabClosed()      { s.closed++ }

func TestAddShowDelete(t *testing.T) {
	nb := New()
	var events []EventKind
	nb.AddListener(func(ev Event) { events = append(events, ev.Kind) })

	a, b := &stubTab{id: "a"}, &stubTab{id: "b"}
	if err := nb.AddTab(a, true); err != nil {
		t.Fatalf("AddTab(a) error = %v", err)
	}
	if err := nb.AddTab(b, false); err != nil {
		t.Fatalf("AddTab(b) error = %v", err)
	}
	if got := nb.Active(); got != "b" {
		t.Fatalf("Active() = %q, want b", got)
	}
	if err := nb.AddTab(&stubTab{id: "a"}, true); !errors.Is(err, ErrTabExists) {
		t.Fatalf("duplicate AddTab error = %v, want ErrTabExists", err)
	}

	if err := nb.ShowTab("a"); err != nil {
		t.Fatalf("ShowTab(a) error = %v", err)
	}
	if got := nb.Active(); got != "a" {
		t.Fatalf("Active() = %q, want a", got)
	}
	if err := nb.ShowTab("zzz"); !errors.Is(err, ErrTabNotFound) {
		t.Fatalf("ShowTab(missing) error = %v, want ErrTabNotFound", err)
	}

	if err := nb.DeleteTab("a"); err != nil {
		t.Fatalf("DeleteTab(a) error = %v", err)
	}
	if a.closed != 0 {
		t.Fatal("DeleteTab must not invoke TabClosed")
	}
	if got := nb.Active(); got != "b" {
		t.Fatalf("Active() after delete = %q, want b", got)
	}
	if nb.HasTab("a") {
		t.Fatal("HasTab(a) = true after delete")
	}

	want := []EventKind{EventAdded, EventAdded, EventShown, EventRemoved}
	if !slices.Equal(events, want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
}

func TestCloseTabInvokesCloser(t *testing.T) {
	nb := New()
	tab := &stubTab{id: "log"}
	_ = nb.AddTab(tab, true)

	if err := nb.CloseTab("log"); err != nil {
		t.Fatalf("CloseTab() error = %v", err)
	}
	if tab.closed != 1 {
		t.Fatalf("TabClosed calls = %d, want 1", tab.closed)
	}
	if nb.HasTab("log") || nb.Active() != "" {
		t.Fatalf("tab still present after close: tabs=%v active=%q", nb.Tabs(), nb.Active())
	}
	if err := nb.CloseTab("log"); !errors.Is(err, ErrTabNotFound) {
		t.Fatalf("second CloseTab error = %v, want ErrTabNotFound", err)
	}
}

func TestCloseTabRejectsPinnedTab(t *testing.T) {
	nb := New()
	_ = nb.AddTab(&stubTab{id: "pinned"}, false)
	if err := nb.CloseTab("pinned"); !errors.Is(err, ErrTabNotClosable) {
		t.Fatalf("CloseTab() error = %v, want ErrTabNotClosable", err)
	}
	if !nb.HasTab("pinned") {
		t.Fatal("pinned tab removed")
	}
}

func TestRefreshNotifiesOnlyForOpenTabs(t *testing.T) {
	nb := New()
	var refreshed []string
	nb.AddListener(func(ev Event) {
		if ev.Kind == EventRefresh {
			refreshed = append(refreshed, ev.TabID)
		}
	})
	_ = nb.AddTab(&stubTab{id: "a"}, true)
	nb.Refresh("a")
	nb.Refresh("missing")
	if !slices.Equal(refreshed, []string{"a"}) {
		t.Fatalf("refreshed = %v, want [a]", refreshed)
	}
}

func TestListenerMayCallBack(t *testing.T) {
	nb := New()
	nb.AddListener(func(ev Event) {
		if ev.Kind == EventAdded {
			_ = nb.Tabs()
			_ = nb.Active()
		}
	})
	if err := nb.AddTab(&stubTab{id: "a"}, true); err != nil {
		t.Fatalf("AddTab() error = %v", err)
	}
}

func TestTabsSnapshot(t *testing.T) {
	nb := New()
	_ = nb.AddTab(&stubTab{id: "a"}, true)
	_ = nb.AddTab(&stubTab{id: "b"}, false)
	got := nb.Tabs()
	want := []TabInfo{
		{ID: "a", Title: "Tab a", Active: false, Closable: true},
		{ID: "b", Title: "Tab b", Active: true, Closable: false},
	}
	if !slices.Equal(got, want) {
		t.Fatalf("Tabs() = %+v, want %+v", got, want)
	}
}
