package stores

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hay-kot/toastq/internal/core/notify"
	"github.com/hay-kot/toastq/internal/data/db"
)

const (
	busyRetries = 3
	busyBackoff = 50 * time.Millisecond
)

// NotifyStore implements notify.Store using SQLite.
type NotifyStore struct {
	db        *db.DB
	retention int
}

var _ notify.Store = (*NotifyStore)(nil)

// NewNotifyStore creates a new SQLite-backed notification store. When
// retention is positive, only the newest retention rows are kept.
func NewNotifyStore(db *db.DB, retention int) *NotifyStore {
	return &NotifyStore{db: db, retention: retention}
}

// Save persists a record and returns its auto-generated ID. SQLITE_BUSY
// failures are retried a few times with a growing backoff.
func (s *NotifyStore) Save(ctx context.Context, r notify.Record) (int64, error) {
	wait := busyBackoff
	for attempt := 0; ; attempt++ {
		id, err := s.save(ctx, r)
		if err == nil || !IsBusyError(err) || attempt == busyRetries {
			return id, err
		}

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
}

func (s *NotifyStore) save(ctx context.Context, r notify.Record) (int64, error) {
	var id int64
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO notifications (notification_id, severity, title, description, created_at)
			 VALUES (?, ?, ?, ?, ?)`,
			r.NotificationID, string(r.Severity), r.Title, r.Description, r.CreatedAt.UnixNano(),
		)
		if err != nil {
			return err
		}

		id, err = res.LastInsertId()
		if err != nil {
			return err
		}

		if s.retention > 0 {
			_, err = tx.ExecContext(ctx,
				`DELETE FROM notifications WHERE id NOT IN (
					SELECT id FROM notifications ORDER BY created_at DESC, id DESC LIMIT ?
				)`, s.retention)
		}
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("insert notification: %w", err)
	}

	return id, nil
}

// List returns all records ordered by newest first.
func (s *NotifyStore) List(ctx context.Context) ([]notify.Record, error) {
	rows, err := s.db.Conn().QueryContext(ctx,
		`SELECT id, notification_id, severity, title, description, created_at
		 FROM notifications ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make([]notify.Record, 0)
	for rows.Next() {
		var (
			r         notify.Record
			severity  string
			createdAt int64
		)
		if err := rows.Scan(&r.ID, &r.NotificationID, &severity, &r.Title, &r.Description, &createdAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		r.Severity = notify.Severity(severity)
		r.CreatedAt = time.Unix(0, createdAt)
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	return result, nil
}

// Clear deletes all records.
func (s *NotifyStore) Clear(ctx context.Context) error {
	if _, err := s.db.Conn().ExecContext(ctx, "DELETE FROM notifications"); err != nil {
		return fmt.Errorf("clear notifications: %w", err)
	}
	return nil
}

// Count returns the total number of records.
func (s *NotifyStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.Conn().QueryRowContext(ctx, "SELECT COUNT(*) FROM notifications").Scan(&count); err != nil {
		return 0, fmt.Errorf("count notifications: %w", err)
	}
	return count, nil
}
