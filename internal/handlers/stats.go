package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mossy-p/peer-matchmaking/internal/matchmaking"
	"github.com/mossy-p/peer-matchmaking/internal/redis"
)

const (
	onlineSessionsKey  = "sessions:online"
	totalMatchesKey    = "stats:matches:total"
	filteredMatchesKey = "stats:matches:filtered"
	presenceTTL        = 24 * time.Hour
)

// StatsRecorder mirrors matchmaking activity into Redis: the set of
// online sessions and cumulative match counters. Matching never reads
// any of this back, so a missing Redis connection only costs the
// cross-restart counters.
type StatsRecorder struct{}

func (StatsRecorder) SessionConnected(sessionID string) {
	redisClient := redis.GetClient()
	if redisClient == nil {
		return
	}
	ctx := redis.GetContext()
	redisClient.SAdd(ctx, onlineSessionsKey, sessionID)
	redisClient.Expire(ctx, onlineSessionsKey, presenceTTL)
}

func (StatsRecorder) SessionDisconnected(sessionID string) {
	redisClient := redis.GetClient()
	if redisClient == nil {
		return
	}
	redisClient.SRem(redis.GetContext(), onlineSessionsKey, sessionID)
}

func (StatsRecorder) PairMatched(filtered bool) {
	redisClient := redis.GetClient()
	if redisClient == nil {
		return
	}
	ctx := redis.GetContext()
	if err := redisClient.Incr(ctx, totalMatchesKey).Err(); err != nil {
		log.Printf("Failed to record match in Redis: %v", err)
		return
	}
	if filtered {
		redisClient.Incr(ctx, filteredMatchesKey)
	}
}

// StatsResponse is the body of GET /api/stats
type StatsResponse struct {
	matchmaking.Stats
	// LifetimeMatches counts matches across restarts; -1 when Redis
	// is unavailable.
	LifetimeMatches int64 `json:"lifetimeMatches"`
}

// GetStats reports live queue and session counters (requires JWT)
func GetStats(coord *matchmaking.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := StatsResponse{
			Stats:           coord.Stats(),
			LifetimeMatches: -1,
		}

		if redisClient := redis.GetClient(); redisClient != nil {
			total, err := redisClient.Get(redis.GetContext(), totalMatchesKey).Int64()
			if err == nil {
				resp.LifetimeMatches = total
			}
		}

		c.JSON(http.StatusOK, resp)
	}
}
