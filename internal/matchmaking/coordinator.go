package matchmaking

import (
	"log"
	"sync/atomic"

	"github.com/mossy-p/peer-matchmaking/internal/models"
)

// Conn is the outbound half of a client's signaling channel. Send must
// not block; implementations drop the event when the client cannot
// keep up.
type Conn interface {
	Send(event models.ServerEvent)
}

// Metrics receives matchmaking lifecycle callbacks. Implementations
// must not block.
type Metrics interface {
	SessionConnected(sessionID string)
	SessionDisconnected(sessionID string)
	PairMatched(filtered bool)
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithMetrics attaches a metrics recorder.
func WithMetrics(m Metrics) Option {
	return func(c *Coordinator) { c.metrics = m }
}

// Stats is a point-in-time snapshot of coordinator state.
type Stats struct {
	Sessions          int    `json:"sessions"`
	FilteredWaiting   int    `json:"filteredWaiting"`
	UnfilteredWaiting int    `json:"unfilteredWaiting"`
	TotalMatches      uint64 `json:"totalMatches"`
}

// Coordinator pairs searching peers. It owns the two waiting queues
// and the session directory; the signaling layer calls one method per
// inbound event. Queue mutations are linearized per queue by the
// queue's own lock; session state lives under the directory lock.
// Lock order is directory before queue, never the reverse.
type Coordinator struct {
	dir        *directory
	filtered   *WaitingQueue
	unfiltered *WaitingQueue
	metrics    Metrics
	matches    atomic.Uint64
}

func New(opts ...Option) *Coordinator {
	c := &Coordinator{
		dir:        newDirectory(),
		filtered:   NewWaitingQueue(),
		unfiltered: NewWaitingQueue(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect registers a new signaling connection. One session exists per
// connection for its whole lifetime.
func (c *Coordinator) Connect(sessionID string, conn Conn) {
	c.dir.add(&session{id: sessionID, conn: conn})
	if c.metrics != nil {
		c.metrics.SessionConnected(sessionID)
	}
}

// Disconnect cleans up after a closed or errored connection: the
// record leaves whichever queue holds it and the session entry is
// dropped. Safe to call for unknown sessions.
func (c *Coordinator) Disconnect(sessionID string) {
	c.cancelSearch(sessionID, true)
	c.dir.delete(sessionID)
	if c.metrics != nil {
		c.metrics.SessionDisconnected(sessionID)
	}
}

// Find starts (or restarts) a partner search for the session. A
// non-empty filter list selects the filtered best-overlap policy,
// otherwise unfiltered FIFO. Repeating the request while already
// searching under the same policy is a no-op; switching policy moves
// the record between queues.
func (c *Coordinator) Find(sessionID, peerID string, filters []string) {
	if peerID == "" {
		log.Printf("Rejecting find request with empty peerId from session %s", sessionID)
		return
	}

	set := NormalizeFilters(filters)
	target := c.unfiltered
	if set != nil {
		target = c.filtered
	}

	c.dir.mu.Lock()
	sess, ok := c.dir.sessions[sessionID]
	if !ok {
		c.dir.mu.Unlock()
		log.Printf("Find request from unknown session %s", sessionID)
		return
	}
	switch sess.state {
	case stateSearching:
		if sess.queue == target {
			c.dir.mu.Unlock()
			return
		}
		// Policy changed mid-search: leave the old queue first so the
		// record never sits in both.
		sess.queue.Remove(sessionID)
	case stateMatched:
		// A repeat of the request that produced the current pair is a
		// no-op; a new peer identity starts a fresh search.
		if sess.record != nil && sess.record.PeerID == peerID {
			c.dir.mu.Unlock()
			return
		}
	}
	rec := &PeerRecord{PeerID: peerID, SessionID: sessionID, Filters: set}
	sess.record = rec
	// Marked searching before the record can appear in the queue: a
	// racing requester that matches it transitions this session to
	// matched, and that write must not be overwritten afterwards.
	sess.state = stateSearching
	sess.queue = target
	c.dir.mu.Unlock()

	var matchedFilters []string
	candidate := target.MatchOrEnqueue(rec, func(candidates []*PeerRecord) *PeerRecord {
		if set == nil {
			return FIFO(candidates)
		}
		best, shared := BestOverlap(set, candidates)
		matchedFilters = shared
		return best
	})
	if candidate == nil {
		return
	}

	conn, remoteConn := c.finalizeMatch(sess, candidate)

	c.matches.Add(1)
	if c.metrics != nil {
		c.metrics.PairMatched(set != nil)
	}

	// The waiting side answers the handshake, the arriving requester
	// initiates it. A remote that vanished between match and emit is
	// simply not notified.
	if remoteConn != nil {
		remoteConn.Send(findResponse(rec, false, matchedFilters))
	}
	conn.Send(findResponse(candidate, true, matchedFilters))
}

// finalizeMatch transitions both ends of a claimed pair to matched and
// returns their connections for notification. The waiter may have
// restarted its search (possibly in the other queue) or disconnected
// between the matcher claiming its record and this update, so it is
// only transitioned while it is still searching on that exact record;
// otherwise its current state is left alone and only the requester is
// notified.
func (c *Coordinator) finalizeMatch(sess *session, candidate *PeerRecord) (Conn, Conn) {
	c.dir.mu.Lock()
	defer c.dir.mu.Unlock()

	sess.state = stateMatched
	sess.queue = nil
	sess.peerSessionID = candidate.SessionID

	remote := c.dir.sessions[candidate.SessionID]
	if remote == nil || remote.state != stateSearching || remote.record != candidate {
		return sess.conn, nil
	}
	remote.state = stateMatched
	remote.queue = nil
	remote.peerSessionID = sess.id
	return sess.conn, remote.conn
}

// StopFind cancels an in-progress search. A no-op unless the session
// is currently searching.
func (c *Coordinator) StopFind(sessionID string) {
	c.cancelSearch(sessionID, false)
}

// cancelSearch removes the session's record from its queue. Removal
// happens under the same queue lock the matcher holds, so a cancelled
// record can never be chosen by a racing match. When force is set a
// matched session is also returned to idle.
func (c *Coordinator) cancelSearch(sessionID string, force bool) {
	c.dir.mu.Lock()
	defer c.dir.mu.Unlock()

	sess, ok := c.dir.sessions[sessionID]
	if !ok {
		return
	}
	switch sess.state {
	case stateSearching:
		if sess.queue != nil {
			sess.queue.Remove(sessionID)
		}
	case stateMatched:
		if !force {
			return
		}
	default:
		return
	}
	sess.state = stateIdle
	sess.queue = nil
	sess.peerSessionID = ""
	if sess.record != nil {
		sess.record.Filters = nil
	}
}

// NotifyRemoteDisconnect relays a disconnect notice to the named
// session, returning both ends of the pair to idle. Notices for
// sessions that are no longer connected are dropped.
func (c *Coordinator) NotifyRemoteDisconnect(sessionID, remoteSessionID string) {
	c.dir.mu.Lock()
	if sess, ok := c.dir.sessions[sessionID]; ok && sess.state == stateMatched {
		sess.state = stateIdle
		sess.peerSessionID = ""
	}
	var remoteConn Conn
	if remote, ok := c.dir.sessions[remoteSessionID]; ok {
		if remote.state == stateMatched {
			remote.state = stateIdle
			remote.peerSessionID = ""
		}
		remoteConn = remote.conn
	}
	c.dir.mu.Unlock()

	if remoteConn == nil {
		log.Printf("Dropping disconnect notice for unknown session %s", remoteSessionID)
		return
	}
	remoteConn.Send(models.ServerEvent{Type: models.EventRemoteDisconnected})
}

// Stats returns a snapshot of live counters.
func (c *Coordinator) Stats() Stats {
	return Stats{
		Sessions:          c.dir.len(),
		FilteredWaiting:   c.filtered.Len(),
		UnfilteredWaiting: c.unfiltered.Len(),
		TotalMatches:      c.matches.Load(),
	}
}

// Reset empties both queues and returns every session to idle. Test
// hook; connected sessions stay registered.
func (c *Coordinator) Reset() {
	c.filtered.Clear()
	c.unfiltered.Clear()

	c.dir.mu.Lock()
	defer c.dir.mu.Unlock()
	for _, sess := range c.dir.sessions {
		sess.state = stateIdle
		sess.queue = nil
		sess.peerSessionID = ""
		sess.record = nil
	}
}

func findResponse(peer *PeerRecord, isInitiator bool, matchedFilters []string) models.ServerEvent {
	return models.ServerEvent{
		Type: models.EventFindResponse,
		Payload: models.FindConnectionResponse{
			Peer:           models.PeerInfo{PeerID: peer.PeerID, SessionID: peer.SessionID},
			IsInitiator:    isInitiator,
			MatchedFilters: matchedFilters,
		},
	}
}
