package notify

import (
	"context"
	"slices"
	"sync"
)

// Watcher is a scoped subscription that keeps the latest snapshot for a
// consumer such as a UI surface. It is released by Close or when the context
// passed to Watch is cancelled.
type Watcher[T any] struct {
	center   *Center[T]
	onChange func([]Notification[T])
	unsub    func()

	mu   sync.RWMutex
	snap []Notification[T]

	closeOnce sync.Once
	done      chan struct{}
}

// Watch subscribes a new Watcher seeded with the current snapshot. onChange
// may be nil; when set it runs after the watcher's snapshot is replaced.
func (c *Center[T]) Watch(ctx context.Context, onChange func([]Notification[T])) *Watcher[T] {
	w := &Watcher[T]{
		center:   c,
		onChange: onChange,
		done:     make(chan struct{}),
	}

	// Seed and subscribe atomically so no snapshot is missed or delivered
	// out of order relative to the seed.
	c.mu.Lock()
	w.snap = slices.Clone(c.items)
	s := c.subscribeLocked(w.receive)
	c.mu.Unlock()
	w.unsub = c.unsubscriber(s)

	if ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				w.Close()
			case <-w.done:
			}
		}()
	}

	return w
}

func (w *Watcher[T]) receive(snap []Notification[T]) {
	w.mu.Lock()
	w.snap = snap
	w.mu.Unlock()

	if w.onChange != nil {
		w.onChange(snap)
	}
}

// Snapshot returns the latest snapshot seen by the watcher. It stays readable
// after Close.
func (w *Watcher[T]) Snapshot() []Notification[T] {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Clone(w.snap)
}

// Dismiss hides the notification with id, or all when id is empty.
func (w *Watcher[T]) Dismiss(id string) {
	w.center.Dismiss(id)
}

// Dispatch forwards a to the center.
func (w *Watcher[T]) Dispatch(a Action[T]) {
	w.center.Dispatch(a)
}

// Done is closed once the watcher is released.
func (w *Watcher[T]) Done() <-chan struct{} {
	return w.done
}

// Close releases the subscription. It is safe to call more than once.
func (w *Watcher[T]) Close() {
	w.closeOnce.Do(func() {
		w.unsub()
		close(w.done)
	})
}
