package notify

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/toastq/internal/core/logging"
)

// Subscriber receives every snapshot produced after it subscribed. The slice
// is shared between subscribers and must be treated as read-only.
type Subscriber[T any] func(snapshot []Notification[T])

type subscription[T any] struct {
	fn     Subscriber[T]
	from   uint64
	active atomic.Bool
}

type options struct {
	capacity    int
	removeDelay time.Duration
	durations   Durations
	clock       Clock
	newID       func() string
	logger      *zerolog.Logger
}

// Option configures a Center.
type Option func(*options)

// WithCapacity sets the maximum number of notifications kept at once.
func WithCapacity(n int) Option {
	return func(o *options) { o.capacity = n }
}

// WithRemoveDelay sets how long a dismissed notification lingers before
// it is removed.
func WithRemoveDelay(d time.Duration) Option {
	return func(o *options) { o.removeDelay = d }
}

// WithDurations overrides entries of the default duration table.
func WithDurations(d Durations) Option {
	return func(o *options) {
		for k, v := range d {
			if v > 0 {
				o.durations[k] = v
			}
		}
	}
}

// WithClock sets the clock used for timers and timestamps.
func WithClock(c Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithIDFunc sets the generator used when a Spec has no id.
func WithIDFunc(fn func() string) Option {
	return func(o *options) { o.newID = fn }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = &l }
}

// Center is the single authority over a set of notifications. It is safe for
// concurrent use.
//
// Every mutation goes through Dispatch. The reducer runs under the center's
// lock, and the resulting snapshot is queued for delivery under that same
// lock, so subscribers observe snapshots in exactly the order actions were
// applied. Deliveries run outside the lock: a subscriber may call back into
// the center, and the re-entrant snapshot is delivered after the current one.
type Center[T any] struct {
	capacity    int
	removeDelay time.Duration
	durations   Durations
	clock       Clock
	newID       func() string
	logger      zerolog.Logger

	mu       sync.Mutex
	items    []Notification[T]
	hooks    map[string]func()
	timers   *timers[T]
	subs     []*subscription[T]
	seq      uint64
	jobs     []func()
	draining bool
}

// New constructs an empty Center.
func New[T any](opts ...Option) *Center[T] {
	o := options{
		capacity:    MaxNotifications,
		removeDelay: DefaultRemoveDelay,
		durations:   DefaultDurations(),
		clock:       realClock{},
		newID:       NewID,
	}
	for _, opt := range opts {
		opt(&o)
	}

	logger := logging.Component("notify")
	if o.logger != nil {
		logger = *o.logger
	}

	c := &Center[T]{
		capacity:    max(o.capacity, 1),
		removeDelay: max(o.removeDelay, 0),
		durations:   o.durations,
		clock:       o.clock,
		newID:       o.newID,
		logger:      logger,
		items:       []Notification[T]{},
		hooks:       make(map[string]func()),
	}
	c.timers = newTimers(o.clock, c.fire)
	return c
}

// Capacity returns the maximum number of notifications kept at once.
func (c *Center[T]) Capacity() int {
	return c.capacity
}

// Durations returns a copy of the effective duration table.
func (c *Center[T]) Durations() Durations {
	out := make(Durations, len(c.durations))
	for k, v := range c.durations {
		out[k] = v
	}
	return out
}

// Snapshot returns a copy of the current notifications, newest first.
func (c *Center[T]) Snapshot() []Notification[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

// Get returns the notification with id.
func (c *Center[T]) Get(id string) (Notification[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, n := range c.items {
		if n.ID == id {
			return n, true
		}
	}
	return Notification[T]{}, false
}

// Len returns the number of notifications currently held.
func (c *Center[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// PendingTimers returns the number of scheduled timers.
func (c *Center[T]) PendingTimers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timers.Len()
}

// Dispatch applies a and notifies subscribers.
func (c *Center[T]) Dispatch(a Action[T]) {
	c.mu.Lock()
	c.applyLocked(a)
	c.mu.Unlock()
	c.drain()
}

// Dismiss hides the notification with id, or all notifications when id is
// empty. Unknown ids are ignored.
func (c *Center[T]) Dismiss(id string) {
	c.Dispatch(Dismiss[T](id))
}

// DismissAll hides every notification.
func (c *Center[T]) DismissAll() {
	c.Dispatch(Dismiss[T](""))
}

// Remove deletes the notification with id, or all notifications when id is
// empty. Unknown ids are ignored.
func (c *Center[T]) Remove(id string) {
	c.Dispatch(Remove[T](id))
}

// Clear deletes every notification and cancels every timer.
func (c *Center[T]) Clear() {
	c.Dispatch(Remove[T](""))
}

// Subscribe registers fn for every snapshot produced from now on. The
// returned function unregisters exactly this registration and is safe to
// call more than once.
func (c *Center[T]) Subscribe(fn Subscriber[T]) (unsubscribe func()) {
	c.mu.Lock()
	s := c.subscribeLocked(fn)
	c.mu.Unlock()
	return c.unsubscriber(s)
}

func (c *Center[T]) subscribeLocked(fn Subscriber[T]) *subscription[T] {
	s := &subscription[T]{fn: fn, from: c.seq}
	s.active.Store(true)
	c.subs = append(c.subs, s)
	return s
}

func (c *Center[T]) unsubscriber(s *subscription[T]) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			s.active.Store(false)
			c.mu.Lock()
			c.subs = slices.DeleteFunc(c.subs, func(x *subscription[T]) bool { return x == s })
			c.mu.Unlock()
		})
	}
}

// applyLocked runs the reducer and its side effects. c.mu must be held.
func (c *Center[T]) applyLocked(a Action[T]) {
	prev := c.items
	next := Reduce(prev, a, c.capacity)
	c.items = next

	wasVisible := make(map[string]bool, len(prev))
	for _, n := range prev {
		wasVisible[n.ID] = n.Visible
	}

	var hidden []func()

	switch a.Type {
	case ActionAdd:
		hidden = c.releaseMissingLocked(prev, next, a.Notification.ID)

	case ActionRemove:
		if a.ID == "" {
			c.timers.CancelAll()
		}
		hidden = c.releaseMissingLocked(prev, next, "")

	case ActionDismiss:
		if a.ID == "" {
			c.timers.CancelAll()
		}
		for _, n := range next {
			if a.ID != "" && n.ID != a.ID {
				continue
			}
			visible := wasVisible[n.ID]
			// Already hidden entries keep their removal timer, except after a
			// global dismiss which cancelled it above.
			if visible || a.ID == "" {
				c.timers.Schedule(n.ID, c.removeDelay, Remove[T](n.ID))
			}
			if visible {
				if fn := c.takeHookLocked(n.ID); fn != nil {
					hidden = append(hidden, fn)
				}
			}
		}
	}

	c.seq++
	seq := c.seq
	snap := slices.Clone(next)

	c.logger.Debug().
		Str("action", a.Type.String()).
		Str("id", a.ID).
		Int("count", len(snap)).
		Uint64("seq", seq).
		Msg("applied")

	c.jobs = append(c.jobs, func() { c.deliver(seq, snap) })
	for _, fn := range hidden {
		c.jobs = append(c.jobs, func() { c.safeCall("hidden hook", fn) })
	}
}

// releaseMissingLocked cancels timers and hooks for every entry in prev that
// is absent from next, except keep. Hooks of entries that were still visible
// are returned so they run after the snapshot is delivered.
func (c *Center[T]) releaseMissingLocked(prev, next []Notification[T], keep string) []func() {
	var hidden []func()
	for _, p := range prev {
		if p.ID == keep || slices.ContainsFunc(next, func(n Notification[T]) bool { return n.ID == p.ID }) {
			continue
		}
		c.timers.Cancel(p.ID)
		fn := c.takeHookLocked(p.ID)
		if fn != nil && p.Visible {
			hidden = append(hidden, fn)
		}
	}
	return hidden
}

func (c *Center[T]) takeHookLocked(id string) func() {
	fn, ok := c.hooks[id]
	if !ok {
		return nil
	}
	delete(c.hooks, id)
	return fn
}

// fire runs when a timer elapses.
func (c *Center[T]) fire(id string, e *timerEntry[T]) {
	c.mu.Lock()
	if !c.timers.release(id, e) {
		c.mu.Unlock()
		return
	}
	c.logger.Debug().Str("id", id).Str("action", e.action.Type.String()).Msg("timer fired")
	c.applyLocked(e.action)
	c.mu.Unlock()
	c.drain()
}

// drain runs queued jobs in FIFO order. Only one goroutine drains at a time;
// callers that find a drain in progress leave their jobs to it.
func (c *Center[T]) drain() {
	c.mu.Lock()
	if c.draining {
		c.mu.Unlock()
		return
	}
	c.draining = true

	for len(c.jobs) > 0 {
		job := c.jobs[0]
		c.jobs[0] = nil
		c.jobs = c.jobs[1:]

		c.mu.Unlock()
		job()
		c.mu.Lock()
	}

	c.draining = false
	c.mu.Unlock()
}

func (c *Center[T]) deliver(seq uint64, snap []Notification[T]) {
	c.mu.Lock()
	subs := slices.Clone(c.subs)
	c.mu.Unlock()

	for _, s := range subs {
		if s.from >= seq || !s.active.Load() {
			continue
		}
		c.safeCall("subscriber", func() { s.fn(snap) })
	}
}

func (c *Center[T]) safeCall(what string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().Interface("panic", r).Msgf("recovered %s panic", what)
		}
	}()
	fn()
}
