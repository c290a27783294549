package matchmaking

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(sessionID string, filters ...string) *PeerRecord {
	return &PeerRecord{
		PeerID:    "peer-" + sessionID,
		SessionID: sessionID,
		Filters:   NormalizeFilters(filters),
	}
}

func Test_WaitingQueue(t *testing.T) {
	t.Run("keeps insertion order", func(t *testing.T) {
		q := NewWaitingQueue()
		q.Enqueue(rec("a"))
		q.Enqueue(rec("b"))
		q.Enqueue(rec("c"))

		snapshot := q.PeekAll()
		require.Len(t, snapshot, 3)
		assert.Equal(t, "a", snapshot[0].SessionID)
		assert.Equal(t, "b", snapshot[1].SessionID)
		assert.Equal(t, "c", snapshot[2].SessionID)
	})

	t.Run("enqueue is idempotent per session", func(t *testing.T) {
		q := NewWaitingQueue()
		q.Enqueue(rec("a"))
		q.Enqueue(rec("a"))
		assert.Equal(t, 1, q.Len())
	})

	t.Run("remove absent session is a no-op", func(t *testing.T) {
		q := NewWaitingQueue()
		q.Enqueue(rec("a"))
		assert.False(t, q.Remove("b"))
		assert.True(t, q.Remove("a"))
		assert.False(t, q.Remove("a"))
		assert.Equal(t, 0, q.Len())
	})

	t.Run("remove keeps order of the rest", func(t *testing.T) {
		q := NewWaitingQueue()
		q.Enqueue(rec("a"))
		q.Enqueue(rec("b"))
		q.Enqueue(rec("c"))
		q.Remove("b")

		snapshot := q.PeekAll()
		require.Len(t, snapshot, 2)
		assert.Equal(t, "a", snapshot[0].SessionID)
		assert.Equal(t, "c", snapshot[1].SessionID)
	})

	t.Run("match removes candidate without enqueuing requester", func(t *testing.T) {
		q := NewWaitingQueue()
		q.Enqueue(rec("a"))

		got := q.MatchOrEnqueue(rec("b"), FIFO)
		require.NotNil(t, got)
		assert.Equal(t, "a", got.SessionID)
		assert.Equal(t, 0, q.Len())
		assert.False(t, q.Contains("b"))
	})

	t.Run("no candidate enqueues requester", func(t *testing.T) {
		q := NewWaitingQueue()
		got := q.MatchOrEnqueue(rec("a"), FIFO)
		assert.Nil(t, got)
		assert.True(t, q.Contains("a"))
	})
}

// Two requesters racing for the same single waiting peer: exactly one
// may claim it, the other must end up enqueued.
func Test_WaitingQueue_ConcurrentClaim(t *testing.T) {
	for n := 0; n < 50; n++ {
		q := NewWaitingQueue()
		q.Enqueue(rec("waiting"))

		var wg sync.WaitGroup
		results := make([]*PeerRecord, 2)
		for i := 0; i < 2; i++ {
			i := i
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i] = q.MatchOrEnqueue(rec(fmt.Sprintf("req-%d", i)), FIFO)
			}()
		}
		wg.Wait()

		claimed := 0
		for _, r := range results {
			if r != nil {
				require.Equal(t, "waiting", r.SessionID)
				claimed++
			}
		}
		assert.Equal(t, 1, claimed)
		assert.Equal(t, 1, q.Len())
	}
}
