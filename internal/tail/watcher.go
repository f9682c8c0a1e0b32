package tail

import (
	"context"
	"time"

	"github.com/mitchellh/hashstructure/v2"

	"github.com/tessro/jukebox/internal/engine"
)

// Source returns the current engine snapshot.
type Source func(ctx context.Context) (engine.Snapshot, error)

// Update is emitted when the set of sessions changes.
type Update struct {
	Timestamp time.Time
	Snapshot  engine.Snapshot
	Hash      uint64
}

// Watcher polls a snapshot source and emits an update whenever the sessions
// change. Elapsed times are ignored when comparing.
type Watcher struct {
	source   Source
	interval time.Duration
	updates  chan Update
	done     chan struct{}
}

// NewWatcher creates a new snapshot watcher.
func NewWatcher(source Source, interval time.Duration) *Watcher {
	if interval == 0 {
		interval = time.Second
	}
	return &Watcher{
		source:   source,
		interval: interval,
		updates:  make(chan Update, 16),
		done:     make(chan struct{}),
	}
}

// Updates returns the channel of snapshot updates.
func (w *Watcher) Updates() <-chan Update {
	return w.updates
}

// Start polls until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer close(w.updates)

	var last uint64
	first := true
	poll := func() {
		snap, err := w.source(ctx)
		if err != nil {
			return
		}
		h, err := Hash(snap)
		if err != nil {
			return
		}
		if !first && h == last {
			return
		}
		first = false
		last = h
		select {
		case w.updates <- Update{Timestamp: time.Now(), Snapshot: snap, Hash: h}:
		default:
			// Drop the update if nobody is reading
		}
	}

	poll()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.done:
			return nil
		case <-ticker.C:
			poll()
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	close(w.done)
}

// Hash fingerprints the session state of a snapshot.
func Hash(s engine.Snapshot) (uint64, error) {
	return hashstructure.Hash(s, hashstructure.FormatV2, nil)
}
