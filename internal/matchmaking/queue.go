package matchmaking

import (
	"strings"
	"sync"
)

// PeerRecord identifies a client waiting for a partner. A record is
// owned by the session directory entry for its SessionID and is only
// mutated by that session's own events.
type PeerRecord struct {
	PeerID    string
	SessionID string
	// Filters is nil when the peer searches under the unfiltered
	// policy. Keys are trimmed and lower-cased.
	Filters map[string]struct{}
}

// NormalizeFilters builds the filter set for a record. Tags are
// trimmed and lower-cased; blanks are dropped. A list that normalizes
// to nothing selects the unfiltered policy.
func NormalizeFilters(filters []string) map[string]struct{} {
	if len(filters) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(filters))
	for _, f := range filters {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" {
			continue
		}
		set[f] = struct{}{}
	}
	if len(set) == 0 {
		return nil
	}
	return set
}

// WaitingQueue is an insertion-ordered set of peers waiting for a
// partner, keyed by session ID. Every operation holds the queue's
// lock, so a match decision never observes a record that has already
// been removed.
type WaitingQueue struct {
	mu      sync.Mutex
	order   []string
	members map[string]*PeerRecord
}

func NewWaitingQueue() *WaitingQueue {
	return &WaitingQueue{
		members: make(map[string]*PeerRecord),
	}
}

// Enqueue adds rec to the back of the queue. Adding a session that is
// already waiting is a no-op.
func (q *WaitingQueue) Enqueue(rec *PeerRecord) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.enqueue(rec)
}

func (q *WaitingQueue) enqueue(rec *PeerRecord) {
	if _, ok := q.members[rec.SessionID]; ok {
		return
	}
	q.members[rec.SessionID] = rec
	q.order = append(q.order, rec.SessionID)
}

// Remove takes the session's record out of the queue, reporting
// whether it was present.
func (q *WaitingQueue) Remove(sessionID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.remove(sessionID)
}

func (q *WaitingQueue) remove(sessionID string) bool {
	if _, ok := q.members[sessionID]; !ok {
		return false
	}
	delete(q.members, sessionID)
	for i, id := range q.order {
		if id == sessionID {
			q.order = append(q.order[:i], q.order[i+1:]...)
			break
		}
	}
	return true
}

// Contains reports whether the session is currently waiting.
func (q *WaitingQueue) Contains(sessionID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.members[sessionID]
	return ok
}

// Len returns the number of waiting peers.
func (q *WaitingQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.order)
}

// PeekAll returns the waiting records in insertion order. The slice is
// a snapshot; the records themselves are shared.
func (q *WaitingQueue) PeekAll() []*PeerRecord {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.snapshot()
}

func (q *WaitingQueue) snapshot() []*PeerRecord {
	out := make([]*PeerRecord, 0, len(q.order))
	for _, id := range q.order {
		out = append(out, q.members[id])
	}
	return out
}

// MatchOrEnqueue runs pick over a snapshot of the queue and either
// removes the chosen candidate or, when pick returns nil, enqueues
// rec. The scan, the removal and the fallback enqueue all happen under
// the queue's lock, so two concurrent requesters can never claim the
// same candidate, and a concurrent cancel is either fully before or
// fully after the match decision.
func (q *WaitingQueue) MatchOrEnqueue(rec *PeerRecord, pick func([]*PeerRecord) *PeerRecord) *PeerRecord {
	q.mu.Lock()
	defer q.mu.Unlock()

	candidate := pick(q.snapshot())
	if candidate == nil {
		q.enqueue(rec)
		return nil
	}
	q.remove(candidate.SessionID)
	return candidate
}

// Clear empties the queue.
func (q *WaitingQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.order = nil
	q.members = make(map[string]*PeerRecord)
}
