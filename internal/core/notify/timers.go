package notify

import "time"

// Timer is a pending callback that can be stopped.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks. The default clock uses time.AfterFunc.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type timerEntry[T any] struct {
	timer  Timer
	action Action[T]
}

// timers tracks at most one pending timer per notification id. It has no
// lock of its own; the owning Center serializes every call.
type timers[T any] struct {
	clock   Clock
	entries map[string]*timerEntry[T]
	fire    func(id string, e *timerEntry[T])
}

func newTimers[T any](clock Clock, fire func(string, *timerEntry[T])) *timers[T] {
	return &timers[T]{
		clock:   clock,
		entries: make(map[string]*timerEntry[T]),
		fire:    fire,
	}
}

// Schedule replaces any pending timer for id with one that dispatches a
// after delay.
func (r *timers[T]) Schedule(id string, delay time.Duration, a Action[T]) {
	r.Cancel(id)

	e := &timerEntry[T]{action: a}
	r.entries[id] = e
	e.timer = r.clock.AfterFunc(delay, func() { r.fire(id, e) })
}

// Cancel stops the pending timer for id, if any.
func (r *timers[T]) Cancel(id string) {
	e, ok := r.entries[id]
	if !ok {
		return
	}
	delete(r.entries, id)
	if e.timer != nil {
		e.timer.Stop()
	}
}

// CancelAll stops every pending timer.
func (r *timers[T]) CancelAll() {
	for id := range r.entries {
		r.Cancel(id)
	}
}

// Pending reports whether a timer is scheduled for id.
func (r *timers[T]) Pending(id string) bool {
	_, ok := r.entries[id]
	return ok
}

// Len returns the number of pending timers.
func (r *timers[T]) Len() int {
	return len(r.entries)
}

// release removes e from the registry if it still owns id. A timer that was
// cancelled or replaced after its callback started no longer owns the id and
// must not dispatch.
func (r *timers[T]) release(id string, e *timerEntry[T]) bool {
	if r.entries[id] != e {
		return false
	}
	delete(r.entries, id)
	return true
}
