package matchmaking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NormalizeFilters(t *testing.T) {
	t.Run("trims and lower-cases", func(t *testing.T) {
		set := NormalizeFilters([]string{" Math ", "BIO"})
		assert.Equal(t, map[string]struct{}{"math": {}, "bio": {}}, set)
	})

	t.Run("empty list is unfiltered", func(t *testing.T) {
		assert.Nil(t, NormalizeFilters(nil))
		assert.Nil(t, NormalizeFilters([]string{}))
	})

	t.Run("all-blank list degrades to unfiltered", func(t *testing.T) {
		assert.Nil(t, NormalizeFilters([]string{"", "   "}))
	})
}

func Test_FIFO(t *testing.T) {
	t.Run("empty queue", func(t *testing.T) {
		assert.Nil(t, FIFO(nil))
	})

	t.Run("earliest entry wins", func(t *testing.T) {
		got := FIFO([]*PeerRecord{rec("a"), rec("b")})
		require.NotNil(t, got)
		assert.Equal(t, "a", got.SessionID)
	})
}

func Test_BestOverlap(t *testing.T) {
	t.Run("empty queue", func(t *testing.T) {
		got, shared := BestOverlap(NormalizeFilters([]string{"math"}), nil)
		assert.Nil(t, got)
		assert.Empty(t, shared)
	})

	t.Run("largest overlap wins", func(t *testing.T) {
		candidates := []*PeerRecord{
			rec("x", "math", "bio"),
			rec("y", "math"),
		}
		got, shared := BestOverlap(NormalizeFilters([]string{"math", "bio", "chem"}), candidates)
		require.NotNil(t, got)
		assert.Equal(t, "x", got.SessionID)
		assert.ElementsMatch(t, []string{"math", "bio"}, shared)
	})

	t.Run("earlier entry wins ties", func(t *testing.T) {
		candidates := []*PeerRecord{
			rec("x", "a"),
			rec("y", "a"),
		}
		got, shared := BestOverlap(NormalizeFilters([]string{"a"}), candidates)
		require.NotNil(t, got)
		assert.Equal(t, "x", got.SessionID)
		assert.ElementsMatch(t, []string{"a"}, shared)
	})

	t.Run("later entry needs a strictly larger overlap", func(t *testing.T) {
		candidates := []*PeerRecord{
			rec("x", "a"),
			rec("y", "a", "b"),
		}
		got, shared := BestOverlap(NormalizeFilters([]string{"a", "b"}), candidates)
		require.NotNil(t, got)
		assert.Equal(t, "y", got.SessionID)
		assert.ElementsMatch(t, []string{"a", "b"}, shared)
	})

	t.Run("disjoint sets still pair", func(t *testing.T) {
		candidates := []*PeerRecord{rec("x", "chess")}
		got, shared := BestOverlap(NormalizeFilters([]string{"poker"}), candidates)
		require.NotNil(t, got)
		assert.Equal(t, "x", got.SessionID)
		assert.Empty(t, shared)
	})
}
