package notify

import (
	"slices"
	"sync/atomic"
)

// Handle controls a notification created by Center.Notify.
type Handle[T any] struct {
	center   *Center[T]
	id       string
	explicit atomic.Bool
}

// Notify creates a visible notification from s, schedules its auto-dismiss
// timer, and returns a handle to it. If s.ID matches an existing
// notification, that notification is replaced and moved to the front.
func (c *Center[T]) Notify(s Spec[T]) *Handle[T] {
	id := s.ID
	if id == "" {
		id = c.newID()
	}

	duration := s.Duration
	explicit := duration > 0
	if !explicit {
		duration = c.durations.For(s.Severity)
	}

	n := Notification[T]{
		ID:          id,
		Title:       s.Title,
		Description: s.Description,
		Severity:    s.Severity,
		Duration:    duration,
		Visible:     true,
		CreatedAt:   c.clock.Now(),
		OnVisibilityChange: func(visible bool) {
			if !visible {
				c.Dismiss(id)
			}
		},
	}

	c.mu.Lock()
	// A visible entry being replaced stops being visible here; its hook runs
	// after the snapshot, like an eviction.
	var replaced func()
	if i := slices.IndexFunc(c.items, func(e Notification[T]) bool { return e.ID == id }); i >= 0 {
		if fn := c.takeHookLocked(id); fn != nil && c.items[i].Visible {
			replaced = fn
		}
	}
	if s.OnHidden != nil {
		c.hooks[id] = s.OnHidden
	}
	c.applyLocked(Add(n))
	if replaced != nil {
		c.jobs = append(c.jobs, func() { c.safeCall("hidden hook", replaced) })
	}
	c.timers.Schedule(id, duration, Dismiss[T](id))
	c.mu.Unlock()
	c.drain()

	h := &Handle[T]{center: c, id: id}
	h.explicit.Store(explicit)
	return h
}

// ID returns the notification id.
func (h *Handle[T]) ID() string {
	return h.id
}

// Dismiss hides the notification. It is removed after the center's remove
// delay.
func (h *Handle[T]) Dismiss() {
	h.center.Dismiss(h.id)
}

// Remove deletes the notification immediately.
func (h *Handle[T]) Remove() {
	h.center.Remove(h.id)
}

// Update merges p into the notification. Changing the severity without an
// explicit duration re-derives the default duration for the new severity.
//
// Update does not reschedule the pending timer: a notification refreshed
// shortly before it expires is still dismissed at its original deadline.
func (h *Handle[T]) Update(p Patch[T]) {
	switch {
	case p.Duration != nil:
		h.explicit.Store(true)
	case p.Severity != nil && !h.explicit.Load():
		d := h.center.durations.For(*p.Severity)
		p.Duration = &d
	}
	h.center.Dispatch(Update(h.id, p))
}

// Get returns the current state of the notification.
func (h *Handle[T]) Get() (Notification[T], bool) {
	return h.center.Get(h.id)
}
