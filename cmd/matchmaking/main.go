package main

import (
	"log"

	"github.com/mossy-p/peer-matchmaking/config"
	"github.com/mossy-p/peer-matchmaking/internal/handlers"
	"github.com/mossy-p/peer-matchmaking/internal/matchmaking"
	"github.com/mossy-p/peer-matchmaking/internal/middleware"
	"github.com/mossy-p/peer-matchmaking/internal/redis"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Connect to Redis. Matching is fully in-memory, so a missing
	// Redis only disables the presence set and lifetime counters.
	if err := redis.Connect(cfg.Redis); err != nil {
		log.Printf("Redis unavailable, continuing without stats persistence: %v", err)
	} else {
		log.Println("Redis connection established")
		defer redis.Close()
	}

	// The coordinator owns the waiting queues and session directory
	coord := matchmaking.New(matchmaking.WithMetrics(handlers.StatsRecorder{}))

	// Setup Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// Global CORS middleware (runs before routing)
	router.Use(handlers.OriginFilter(cfg.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api")
	{
		// Login endpoint (public)
		apiGroup.POST("/auth/login", handlers.Login(cfg.JWTSecret))

		// Queue and match counters (requires JWT)
		apiGroup.GET("/stats", middleware.JWTAuth(cfg.JWTSecret), handlers.GetStats(coord))
	}

	// WebSocket matchmaking endpoint
	wsGroup := router.Group("/ws")
	{
		wsGroup.GET("/match", handlers.HandleSignaling(coord))
	}

	// Start server
	log.Printf("Starting matchmaking server on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
