package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/hay-kot/toastq/internal/core/notify"
)

// Toast is the wire form of a notification.
type Toast struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Severity    notify.Severity `json:"severity"`
	DurationMS  int64           `json:"duration_ms"`
	Visible     bool            `json:"visible"`
	CreatedAt   time.Time       `json:"created_at"`
}

func toToast(n notify.Notification[string]) Toast {
	return Toast{
		ID:          n.ID,
		Title:       n.Title,
		Description: n.Description,
		Severity:    n.Severity,
		DurationMS:  n.Duration.Milliseconds(),
		Visible:     n.Visible,
		CreatedAt:   n.CreatedAt,
	}
}

func toToasts(list []notify.Notification[string]) []Toast {
	out := make([]Toast, len(list))
	for i, n := range list {
		out[i] = toToast(n)
	}
	return out
}

// CreateRequest is the body of POST /api/toasts.
type CreateRequest struct {
	ID          string          `json:"id,omitempty"`
	Title       string          `json:"title,omitempty"`
	Description string          `json:"description,omitempty"`
	Severity    notify.Severity `json:"severity,omitempty"`
	DurationMS  int64           `json:"duration_ms,omitempty"`
}

func (r CreateRequest) validate() error {
	if r.Severity != "" && !r.Severity.Valid() {
		return fmt.Errorf("unknown severity %q", r.Severity)
	}
	if r.DurationMS < 0 {
		return errors.New("duration_ms must not be negative")
	}
	return nil
}

func (r CreateRequest) spec() notify.Spec[string] {
	return notify.Spec[string]{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Severity:    r.Severity,
		Duration:    time.Duration(r.DurationMS) * time.Millisecond,
	}
}

// UpdateRequest is the body of PATCH /api/toasts/{id}. Omitted fields are
// left unchanged.
type UpdateRequest struct {
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	Severity    *notify.Severity `json:"severity,omitempty"`
	DurationMS  *int64           `json:"duration_ms,omitempty"`
}

func (r UpdateRequest) validate() error {
	if r.Severity != nil && !r.Severity.Valid() {
		return fmt.Errorf("unknown severity %q", *r.Severity)
	}
	if r.DurationMS != nil && *r.DurationMS <= 0 {
		return errors.New("duration_ms must be positive")
	}
	return nil
}

func (r UpdateRequest) patch() notify.Patch[string] {
	p := notify.Patch[string]{
		Title:       r.Title,
		Description: r.Description,
		Severity:    r.Severity,
	}
	if r.DurationMS != nil {
		p.Duration = notify.Ptr(time.Duration(*r.DurationMS) * time.Millisecond)
	}
	return p
}
