package matchmaking

import "sync"

type sessionState int

const (
	stateIdle sessionState = iota
	stateSearching
	stateMatched
)

// session is the directory entry for one live signaling connection.
// Fields are guarded by the owning directory's mutex.
type session struct {
	id     string
	conn   Conn
	record *PeerRecord
	state  sessionState
	// queue is the waiting queue holding record while state is
	// stateSearching, nil otherwise.
	queue *WaitingQueue
	// peerSessionID names the other side of the pair while state is
	// stateMatched.
	peerSessionID string
}

// directory maps session IDs to their entries. It exists purely for
// O(1) lookup and cleanup; it holds no matching logic.
type directory struct {
	mu       sync.Mutex
	sessions map[string]*session
}

func newDirectory() *directory {
	return &directory{sessions: make(map[string]*session)}
}

func (d *directory) add(sess *session) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sessions[sess.id] = sess
}

func (d *directory) delete(sessionID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.sessions, sessionID)
}

func (d *directory) len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sessions)
}
