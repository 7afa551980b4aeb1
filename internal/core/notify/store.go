package notify

import (
	"context"
	"time"
)

// Record is a notification as written to history.
type Record struct {
	ID             int64     `json:"id"`
	NotificationID string    `json:"notification_id"`
	Severity       Severity  `json:"severity"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	CreatedAt      time.Time `json:"created_at"`
}

// Store persists notification history to durable storage. History is an
// audit trail only; a Center never restores its state from it.
type Store interface {
	Save(ctx context.Context, r Record) (int64, error)
	List(ctx context.Context) ([]Record, error)
	Clear(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
}
