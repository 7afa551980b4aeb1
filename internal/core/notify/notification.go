// Package notify implements an in-memory toast notification center.
//
// A Center holds the ordered list of active notifications (newest first),
// applies actions to it through a pure reducer, runs one auto-dismiss or
// removal timer per notification, and fans every new snapshot out to its
// subscribers in the order the actions were applied.
//
// Title and description are an opaque payload of type T. The center stores
// and forwards them without inspecting them.
package notify

import (
	"time"

	"github.com/google/uuid"
)

// Severity represents the severity of a notification.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Severities lists the known severities in display order.
var Severities = []Severity{SeveritySuccess, SeverityError, SeverityWarning, SeverityInfo}

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	switch s {
	case SeveritySuccess, SeverityError, SeverityWarning, SeverityInfo:
		return true
	}
	return false
}

const (
	// MaxNotifications is the default number of notifications a center keeps.
	MaxNotifications = 8

	// DefaultRemoveDelay is how long a dismissed notification stays in the
	// store before it is removed.
	DefaultRemoveDelay = time.Second
)

// Durations maps a severity to its default display duration.
type Durations map[Severity]time.Duration

// DefaultDurations returns the built-in duration table.
func DefaultDurations() Durations {
	return Durations{
		SeveritySuccess: 8 * time.Second,
		SeverityError:   12 * time.Second,
		SeverityWarning: 10 * time.Second,
		SeverityInfo:    8 * time.Second,
	}
}

// For returns the duration for s. Unknown severities, and severities missing
// from the table, fall back to the info duration.
func (d Durations) For(s Severity) time.Duration {
	if v, ok := d[s]; ok && v > 0 {
		return v
	}
	if v, ok := d[SeverityInfo]; ok && v > 0 {
		return v
	}
	return DefaultDurations()[SeverityInfo]
}

// Notification is a single toast held by a Center.
type Notification[T any] struct {
	ID          string
	Title       T
	Description T
	Severity    Severity
	Duration    time.Duration
	Visible     bool
	CreatedAt   time.Time

	// OnVisibilityChange is wired by Center.Notify. Presentation code calls it
	// with false when the user closes the toast, which dismisses it.
	OnVisibilityChange func(visible bool)
}

// Spec describes a notification to create. Every field is optional; an empty
// Spec produces an empty info-duration notification.
type Spec[T any] struct {
	ID          string
	Title       T
	Description T
	Severity    Severity
	Duration    time.Duration

	// OnHidden runs once when the notification stops being visible, whether
	// it was dismissed, expired, evicted, or removed.
	OnHidden func()
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch[T any] struct {
	Title       *T
	Description *T
	Severity    *Severity
	Duration    *time.Duration
}

// apply returns n with the non-nil patch fields merged in.
func (p Patch[T]) apply(n Notification[T]) Notification[T] {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Description != nil {
		n.Description = *p.Description
	}
	if p.Severity != nil {
		n.Severity = *p.Severity
	}
	if p.Duration != nil {
		n.Duration = *p.Duration
	}
	return n
}

// NewID returns a random notification id.
func NewID() string {
	return uuid.NewString()
}

// Ptr returns a pointer to v. Handy for building a Patch.
func Ptr[V any](v V) *V {
	return &v
}
