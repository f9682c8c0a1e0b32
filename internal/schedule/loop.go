// Package schedule provides a cooperative scheduler whose callbacks all run on
// one goroutine, standing in for a game server's main simulation thread.
package schedule

import (
	"context"
	"sort"
	"time"

	"github.com/tessro/jukebox/internal/core"
)

// DefaultResolution matches one server tick.
const DefaultResolution = 50 * time.Millisecond

type task struct {
	id       uint64
	due      time.Time
	interval time.Duration
	fn       func()
	canceled bool
}

// Cancel stops the task from running again. Safe to call from inside its own callback.
func (t *task) Cancel() {
	t.canceled = true
}

// Loop is a single-threaded scheduler. RunRepeating, RunLater, Advance and Step
// must only be called from the loop goroutine; Post may be called from anywhere.
type Loop struct {
	now        time.Time
	clock      func() time.Time
	resolution time.Duration
	tasks      map[uint64]*task
	nextID     uint64
	posted     chan func()
}

// Option configures a Loop.
type Option func(*Loop)

// WithClock sets the time source used by Run.
func WithClock(clock func() time.Time) Option {
	return func(l *Loop) {
		l.clock = clock
	}
}

// WithResolution sets how often Run advances the loop.
func WithResolution(d time.Duration) Option {
	return func(l *Loop) {
		if d > 0 {
			l.resolution = d
		}
	}
}

// New creates a loop positioned at the current clock time.
func New(opts ...Option) *Loop {
	l := &Loop{
		clock:      time.Now,
		resolution: DefaultResolution,
		tasks:      make(map[uint64]*task),
		posted:     make(chan func(), 256),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.now = l.clock()
	return l
}

// NewManual creates a loop that only moves when Step or Advance is called.
func NewManual(start time.Time) *Loop {
	l := New(WithClock(func() time.Time { return start }))
	l.now = start
	return l
}

// Now returns the loop's current time.
func (l *Loop) Now() time.Time {
	return l.now
}

// RunRepeating schedules fn every interval, first running one interval from now.
func (l *Loop) RunRepeating(interval time.Duration, fn func()) core.Handle {
	if interval <= 0 {
		interval = l.resolution
	}
	return l.add(interval, interval, fn)
}

// RunLater schedules fn once after delay.
func (l *Loop) RunLater(delay time.Duration, fn func()) core.Handle {
	return l.add(delay, 0, fn)
}

func (l *Loop) add(delay, interval time.Duration, fn func()) *task {
	l.nextID++
	t := &task{
		id:       l.nextID,
		due:      l.now.Add(delay),
		interval: interval,
		fn:       fn,
	}
	l.tasks[t.id] = t
	return t
}

// Pending returns the number of scheduled, non-canceled tasks.
func (l *Loop) Pending() int {
	n := 0
	for _, t := range l.tasks {
		if !t.canceled {
			n++
		}
	}
	return n
}

// Post queues fn to run on the loop goroutine. It is safe for concurrent use.
func (l *Loop) Post(fn func()) {
	l.posted <- fn
}

// Advance moves the loop to now, drains posted work and runs every due task once,
// in due order. Tasks scheduled by callbacks wait for the next Advance.
func (l *Loop) Advance(now time.Time) {
	if now.After(l.now) {
		l.now = now
	}
	l.drain()

	var due []*task
	for id, t := range l.tasks {
		if t.canceled {
			delete(l.tasks, id)
			continue
		}
		if !t.due.After(l.now) {
			due = append(due, t)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].due.Equal(due[j].due) {
			return due[i].id < due[j].id
		}
		return due[i].due.Before(due[j].due)
	})

	for _, t := range due {
		if t.canceled {
			continue
		}
		if t.interval > 0 {
			t.due = t.due.Add(t.interval)
			if !t.due.After(l.now) {
				t.due = l.now.Add(t.interval)
			}
		} else {
			t.canceled = true
		}
		t.fn()
	}

	for id, t := range l.tasks {
		if t.canceled {
			delete(l.tasks, id)
		}
	}
}

// Step advances a manual loop by d in resolution-sized increments.
func (l *Loop) Step(d time.Duration) {
	target := l.now.Add(d)
	for l.now.Before(target) {
		next := l.now.Add(l.resolution)
		if next.After(target) {
			next = target
		}
		l.Advance(next)
	}
}

func (l *Loop) drain() {
	for {
		select {
		case fn := <-l.posted:
			fn()
		default:
			return
		}
	}
}

// Run drives the loop from its clock until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.resolution)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.drain()
			return ctx.Err()
		case fn := <-l.posted:
			fn()
		case <-ticker.C:
			l.Advance(l.clock())
		}
	}
}

// Call runs fn on the loop goroutine and waits for it to return.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	select {
	case l.posted <- func() { fn(); close(done) }:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
