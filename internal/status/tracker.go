package status

import (
	"sync"
	"time"
)

type SendState string

const (
	StateUploading SendState = "uploading"
	StateSent      SendState = "sent"
	StateFailed    SendState = "failed"
)

const (
	// How long a terminal state stays visible to the client.
	sentTTL   = 30 * time.Second
	failedTTL = 60 * time.Second
)

// Entry is one recipient's current send state as seen by the sender.
type Entry struct {
	RecipientID uint      `json:"recipient_id"`
	State       SendState `json:"state"`
	UpdatedAt   time.Time `json:"updated_at"`

	expiresAt time.Time
}

// Tracker is an in-memory observable map of per-recipient send state,
// used only for optimistic UI. It is injected into services rather than
// held as a package singleton so tests can construct and discard one per
// case. Nothing here is durable; the server's stored rows remain the
// source of truth on the next fetch.
type Tracker struct {
	mu      sync.Mutex
	entries map[uint]map[uint]Entry // senderID -> recipientID -> entry
	subs    map[uint][]chan Entry
	now     func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{
		entries: make(map[uint]map[uint]Entry),
		subs:    make(map[uint][]chan Entry),
		now:     time.Now,
	}
}

// SetClock overrides the time source; tests use it to drive expiry.
func (t *Tracker) SetClock(now func() time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.now = now
}

// Record sets the state for (senderID, recipientID) and notifies watchers.
// Terminal states carry an expiry so stale entries age out of the map.
func (t *Tracker) Record(senderID, recipientID uint, state SendState) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	entry := Entry{
		RecipientID: recipientID,
		State:       state,
		UpdatedAt:   now,
	}
	switch state {
	case StateSent:
		entry.expiresAt = now.Add(sentTTL)
	case StateFailed:
		entry.expiresAt = now.Add(failedTTL)
	}

	if t.entries[senderID] == nil {
		t.entries[senderID] = make(map[uint]Entry)
	}
	t.entries[senderID][recipientID] = entry

	for _, ch := range t.subs[senderID] {
		select {
		case ch <- entry:
		default: // slow watcher, drop the event
		}
	}
}

// List returns the sender's live entries, pruning anything expired.
func (t *Tracker) List(senderID uint) []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	var out []Entry
	for recipientID, entry := range t.entries[senderID] {
		if !entry.expiresAt.IsZero() && !entry.expiresAt.After(now) {
			delete(t.entries[senderID], recipientID)
			continue
		}
		out = append(out, entry)
	}
	if len(t.entries[senderID]) == 0 {
		delete(t.entries, senderID)
	}
	return out
}

// Watch subscribes to a sender's state changes. The returned cancel func
// must be called to release the channel.
func (t *Tracker) Watch(senderID uint) (<-chan Entry, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ch := make(chan Entry, 16)
	t.subs[senderID] = append(t.subs[senderID], ch)

	cancel := func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		subs := t.subs[senderID]
		for i, c := range subs {
			if c == ch {
				t.subs[senderID] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		if len(t.subs[senderID]) == 0 {
			delete(t.subs, senderID)
		}
	}
	return ch, cancel
}

// Reset clears all state. Tests call it between cases.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = make(map[uint]map[uint]Entry)
}
