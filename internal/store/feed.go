package store

import "sync"

// Feed is the delivery side of one subscription. It holds at most one
// pending snapshot: pushing while the reader is behind replaces the stale
// one, so a writer never blocks on a slow subscriber.
type Feed struct {
	mu     sync.Mutex
	ch     chan Snapshot
	closed bool
}

func NewFeed() *Feed {
	return &Feed{ch: make(chan Snapshot, 1)}
}

// C is the channel handed to the subscriber.
func (f *Feed) C() <-chan Snapshot { return f.ch }

// Push publishes s, dropping any snapshot the reader has not taken yet.
func (f *Feed) Push(s Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	select {
	case f.ch <- s:
		return
	default:
	}
	select {
	case <-f.ch:
	default:
	}
	f.ch <- s
}

// Close closes the channel. Further pushes are ignored.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.ch)
	}
}
