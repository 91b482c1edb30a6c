// Package notebook tracks the tabs shown in the main window.
package notebook

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

var (
	// ErrTabExists is returned when a tab ID is added twice.
	ErrTabExists = errors.New("tab already exists")
	// ErrTabNotFound is returned for unknown tab IDs.
	ErrTabNotFound = errors.New("tab not found")
	// ErrTabNotClosable is returned when the user closes a pinned tab.
	ErrTabNotClosable = errors.New("tab cannot be closed")
)

// Tab is a page hosted by the notebook.
type Tab interface {
	ID() string
	Title() string
	Content() string
}

// Closer is implemented by tabs that want to know when the user closed them.
type Closer interface {
	TabClosed()
}

// EventKind identifies a notebook change.
type EventKind string

const (
	EventAdded   EventKind = "added"
	EventShown   EventKind = "shown"
	EventRemoved EventKind = "removed"
	EventRefresh EventKind = "refresh"
)

// Event is delivered to listeners after the notebook changed.
type Event struct {
	Kind  EventKind `json:"kind"`
	TabID string    `json:"tabId"`
	Title string    `json:"title"`
}

// Listener observes notebook changes. Listeners run outside the notebook
// lock and may call back into it.
type Listener func(Event)

// TabInfo is a snapshot of one tab for the frontend.
type TabInfo struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Active   bool   `json:"active"`
	Closable bool   `json:"closable"`
}

type page struct {
	tab      Tab
	closable bool
}

// Notebook is safe for concurrent use.
type Notebook struct {
	mu        sync.RWMutex
	pages     []page
	active    string
	listeners []Listener
}

// New creates an empty notebook.
func New() *Notebook {
	return &Notebook{}
}

// AddListener registers l for all later changes.
func (n *Notebook) AddListener(l Listener) {
	if l == nil {
		return
	}
	n.mu.Lock()
	n.listeners = append(n.listeners, l)
	n.mu.Unlock()
}

// AddTab appends tab and makes it active.
func (n *Notebook) AddTab(tab Tab, allowClosing bool) error {
	if tab == nil || tab.ID() == "" {
		return fmt.Errorf("add tab: tab ID is required")
	}
	n.mu.Lock()
	if n.indexLocked(tab.ID()) >= 0 {
		n.mu.Unlock()
		return fmt.Errorf("add tab %q: %w", tab.ID(), ErrTabExists)
	}
	n.pages = append(n.pages, page{tab: tab, closable: allowClosing})
	n.active = tab.ID()
	n.mu.Unlock()

	n.notify(Event{Kind: EventAdded, TabID: tab.ID(), Title: tab.Title()})
	return nil
}

// ShowTab brings an existing tab to the front.
func (n *Notebook) ShowTab(id string) error {
	n.mu.Lock()
	i := n.indexLocked(id)
	if i < 0 {
		n.mu.Unlock()
		return fmt.Errorf("show tab %q: %w", id, ErrTabNotFound)
	}
	title := n.pages[i].tab.Title()
	n.active = id
	n.mu.Unlock()

	n.notify(Event{Kind: EventShown, TabID: id, Title: title})
	return nil
}

// DeleteTab removes a tab without invoking its Closer. Removing the active
// tab activates its left neighbour, or the new first tab.
func (n *Notebook) DeleteTab(id string) error {
	n.mu.Lock()
	removed, ok := n.removeLocked(id)
	n.mu.Unlock()
	if !ok {
		return fmt.Errorf("delete tab %q: %w", id, ErrTabNotFound)
	}
	n.notify(Event{Kind: EventRemoved, TabID: id, Title: removed.tab.Title()})
	return nil
}

// CloseTab handles a close request from the user. The tab's Closer, if any,
// runs after the tab has been removed.
func (n *Notebook) CloseTab(id string) error {
	n.mu.Lock()
	i := n.indexLocked(id)
	if i < 0 {
		n.mu.Unlock()
		return fmt.Errorf("close tab %q: %w", id, ErrTabNotFound)
	}
	if !n.pages[i].closable {
		n.mu.Unlock()
		return fmt.Errorf("close tab %q: %w", id, ErrTabNotClosable)
	}
	removed, _ := n.removeLocked(id)
	n.mu.Unlock()

	if closer, ok := removed.tab.(Closer); ok {
		closer.TabClosed()
	}
	n.notify(Event{Kind: EventRemoved, TabID: id, Title: removed.tab.Title()})
	return nil
}

// Refresh tells listeners that the content of tab id changed.
func (n *Notebook) Refresh(id string) {
	tab, ok := n.Tab(id)
	if !ok {
		return
	}
	n.notify(Event{Kind: EventRefresh, TabID: id, Title: tab.Title()})
}

// Active returns the ID of the front tab, or "" when empty.
func (n *Notebook) Active() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.active
}

// Tab returns the tab with the given ID.
func (n *Notebook) Tab(id string) (Tab, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if i := n.indexLocked(id); i >= 0 {
		return n.pages[i].tab, true
	}
	return nil, false
}

// HasTab reports whether id is open.
func (n *Notebook) HasTab(id string) bool {
	_, ok := n.Tab(id)
	return ok
}

// Tabs returns the open tabs in display order.
func (n *Notebook) Tabs() []TabInfo {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]TabInfo, 0, len(n.pages))
	for _, p := range n.pages {
		out = append(out, TabInfo{
			ID:       p.tab.ID(),
			Title:    p.tab.Title(),
			Active:   p.tab.ID() == n.active,
			Closable: p.closable,
		})
	}
	return out
}

func (n *Notebook) indexLocked(id string) int {
	return slices.IndexFunc(n.pages, func(p page) bool { return p.tab.ID() == id })
}

func (n *Notebook) removeLocked(id string) (page, bool) {
	i := n.indexLocked(id)
	if i < 0 {
		return page{}, false
	}
	removed := n.pages[i]
	n.pages = slices.Delete(n.pages, i, i+1)
	if n.active == id {
		n.active = ""
		if len(n.pages) > 0 {
			n.active = n.pages[max(i-1, 0)].tab.ID()
		}
	}
	return removed, true
}

func (n *Notebook) notify(ev Event) {
	n.mu.RLock()
	listeners := slices.Clone(n.listeners)
	n.mu.RUnlock()
	for _, l := range listeners {
		l(ev)
	}
}
