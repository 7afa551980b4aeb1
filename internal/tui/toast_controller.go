package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hay-kot/toastq/internal/core/notify"
)

// snapshotMsg carries a notification snapshot from the center into the
// Update loop.
type snapshotMsg struct {
	list []notify.Notification[string]
}

var demoTitles = map[notify.Severity]string{
	notify.SeveritySuccess: "Saved",
	notify.SeverityError:   "Upload failed",
	notify.SeverityWarning: "Disk almost full",
	notify.SeverityInfo:    "New version available",
}

// ToastController bridges a notification center into the bubbletea update
// loop. Snapshots published by the center are queued on a single-slot
// channel so a slow renderer only ever sees the latest one.
type ToastController struct {
	center  *notify.Center[string]
	watcher *notify.Watcher[string]
	updates chan []notify.Notification[string]

	toasts  []notify.Notification[string]
	handles map[string]*notify.Handle[string]
	pushed  int
}

// NewToastController watches center until ctx is cancelled or Close is
// called.
func NewToastController(ctx context.Context, center *notify.Center[string]) *ToastController {
	c := &ToastController{
		center:  center,
		updates: make(chan []notify.Notification[string], 1),
		handles: make(map[string]*notify.Handle[string]),
	}
	c.watcher = center.Watch(ctx, c.publish)
	c.toasts = c.watcher.Snapshot()
	return c
}

// publish runs on the center's delivery path and must not block.
func (c *ToastController) publish(list []notify.Notification[string]) {
	for {
		select {
		case c.updates <- list:
			return
		default:
			select {
			case <-c.updates:
			default:
			}
		}
	}
}

// Listen returns a command that waits for the next snapshot.
func (c *ToastController) Listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case list := <-c.updates:
			return snapshotMsg{list: list}
		case <-c.watcher.Done():
			return nil
		}
	}
}

// Apply replaces the rendered toasts with list.
func (c *ToastController) Apply(list []notify.Notification[string]) {
	c.toasts = list

	live := make(map[string]struct{}, len(list))
	for _, n := range list {
		live[n.ID] = struct{}{}
	}
	for id := range c.handles {
		if _, ok := live[id]; !ok {
			delete(c.handles, id)
		}
	}
}

// Toasts returns the current toasts, newest first.
func (c *ToastController) Toasts() []notify.Notification[string] {
	return c.toasts
}

// HasToasts returns true if there are any toasts, visible or leaving.
func (c *ToastController) HasToasts() bool {
	return len(c.toasts) > 0
}

// Push creates a sample toast of the given severity.
func (c *ToastController) Push(sev notify.Severity) *notify.Handle[string] {
	c.pushed++
	h := c.center.Notify(notify.Spec[string]{
		Title:       demoTitles[sev],
		Description: fmt.Sprintf("toast #%d (%s)", c.pushed, sev),
		Severity:    sev,
	})
	c.handles[h.ID()] = h
	return h
}

// newest returns the newest visible toast.
func (c *ToastController) newest() (notify.Notification[string], bool) {
	for _, n := range c.toasts {
		if n.Visible {
			return n, true
		}
	}
	return notify.Notification[string]{}, false
}

// UpdateNewest promotes the newest visible toast to a success toast. It
// reports whether a toast was updated.
func (c *ToastController) UpdateNewest() bool {
	n, ok := c.newest()
	if !ok {
		return false
	}

	p := notify.Patch[string]{
		Title:    notify.Ptr(demoTitles[notify.SeveritySuccess]),
		Severity: notify.Ptr(notify.SeveritySuccess),
	}
	if h, ok := c.handles[n.ID]; ok {
		h.Update(p)
	} else {
		c.center.Dispatch(notify.Update(n.ID, p))
	}
	return true
}

// DismissNewest closes the newest visible toast the way a close button
// would. It reports whether a toast was dismissed.
func (c *ToastController) DismissNewest() bool {
	n, ok := c.newest()
	if !ok {
		return false
	}
	if n.OnVisibilityChange != nil {
		n.OnVisibilityChange(false)
	} else {
		c.center.Dismiss(n.ID)
	}
	return true
}

// DismissAll hides every toast.
func (c *ToastController) DismissAll() {
	c.center.DismissAll()
}

// Clear removes every toast immediately.
func (c *ToastController) Clear() {
	c.center.Clear()
}

// Close stops watching the center.
func (c *ToastController) Close() {
	c.watcher.Close()
}
