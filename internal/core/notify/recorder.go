package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/toastq/internal/core/logging"
)

// Recorder writes every newly added notification to a Store. Persistence
// errors are logged and never reach the producer.
type Recorder[T any] struct {
	store  Store
	format func(T) string
	logger zerolog.Logger

	mu   sync.Mutex
	seen map[string]time.Time
}

// NewRecorder creates a recorder. format renders the opaque payload for
// storage; when nil, fmt.Sprint is used.
func NewRecorder[T any](store Store, format func(T) string) *Recorder[T] {
	if format == nil {
		format = func(v T) string { return fmt.Sprint(v) }
	}
	return &Recorder[T]{
		store:  store,
		format: format,
		logger: logging.Component("recorder"),
		seen:   make(map[string]time.Time),
	}
}

// Attach subscribes the recorder to c and returns the unsubscribe function.
// Notifications already in c when Attach is called are not recorded.
func (r *Recorder[T]) Attach(c *Center[T]) func() {
	r.mu.Lock()
	for _, n := range c.Snapshot() {
		r.seen[n.ID] = n.CreatedAt
	}
	r.mu.Unlock()

	return c.Subscribe(r.Observe)
}

// Observe records the notifications in snap that were not present in the
// previous snapshot. An entry whose id was present but whose CreatedAt moved
// replaced the earlier notification and is recorded too.
func (r *Recorder[T]) Observe(snap []Notification[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := make(map[string]time.Time, len(snap))
	// Walk oldest first so history keeps insertion order.
	for i := len(snap) - 1; i >= 0; i-- {
		n := snap[i]
		current[n.ID] = n.CreatedAt
		if created, ok := r.seen[n.ID]; ok && created.Equal(n.CreatedAt) {
			continue
		}

		_, err := r.store.Save(context.Background(), Record{
			NotificationID: n.ID,
			Severity:       n.Severity,
			Title:          r.format(n.Title),
			Description:    r.format(n.Description),
			CreatedAt:      n.CreatedAt,
		})
		if err != nil {
			r.logger.Error().Err(err).Str("id", n.ID).Msg("failed to persist notification")
		}
	}

	r.seen = current
}
