package tasks

import (
	"sync"
	"time"
)

// EventKind tags the variants of scheduler events.
type EventKind int

const (
	// EventStatus is a human-readable progress note.
	EventStatus EventKind = iota
	// EventSyncStarted marks the beginning of a sync cycle.
	EventSyncStarted
	// EventItemSynced reports a committed page of items.
	EventItemSynced
	// EventSyncFinished marks a successful cycle with its completion time.
	EventSyncFinished
	// EventRestartAttempt reports retry n after a failed cycle.
	EventRestartAttempt
	// EventAborted marks the scheduler giving up after exhausting its
	// failure budget, or immediately on a storage fault.
	EventAborted
)

func (k EventKind) String() string {
	switch k {
	case EventStatus:
		return "status"
	case EventSyncStarted:
		return "sync_started"
	case EventItemSynced:
		return "item_synced"
	case EventSyncFinished:
		return "sync_finished"
	case EventRestartAttempt:
		return "restart_attempt"
	case EventAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Event is one scheduler notification. Only the fields relevant to the
// Kind are set: Attempt for restart attempts, Reason for aborts,
// LastSynced for finished cycles, Count for committed pages.
type Event struct {
	Kind       EventKind
	Message    string
	Attempt    int
	Reason     string
	LastSynced time.Time
	Count      int
}

// Broadcaster fans events out to any number of subscribers. Sends never
// block the producer: a subscriber that falls behind loses events rather
// than stalling the sync loop. Delivery order per producer is FIFO.
type Broadcaster struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Event
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]chan Event)}
}

// Subscribe registers a listener with the given channel buffer and
// returns the channel plus a cancel function that closes it.
func (b *Broadcaster) Subscribe(buffer int) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Event, buffer)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if ch, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

// Publish delivers ev to every subscriber without blocking.
func (b *Broadcaster) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
