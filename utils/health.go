package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Mongo     bool      `json:"mongo"`
	Redis     []bool    `json:"redis"`
	Storage   string    `json:"storage"`
	CheckedAt time.Time `json:"checkedAt"`
}

var (
	currentHealth HealthStatus
	mu            sync.RWMutex
)

// GetHealthStatus returns latest stored health snapshot.
func GetHealthStatus() HealthStatus {
	mu.RLock()
	defer mu.RUnlock()
	return currentHealth
}

func setHealth(h HealthStatus) {
	mu.Lock()
	currentHealth = h
	mu.Unlock()
}

// MarkInMemory records that the process runs without external stores.
func MarkInMemory() {
	setHealth(HealthStatus{Mongo: true, Storage: "memory", CheckedAt: time.Now()})
}

// StartHealthMonitor performs periodic health checks and updates in-memory state.
func StartHealthMonitor(ctx context.Context, redisClients []*redis.Client, mongoClient *mongo.Client) {
	check := func() {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		var redisHealth []bool
		for _, client := range redisClients {
			err := client.Ping(pingCtx).Err()
			redisHealth = append(redisHealth, err == nil)
		}

		mongoHealthy := mongoClient != nil && mongoClient.Ping(pingCtx, nil) == nil

		setHealth(HealthStatus{
			Mongo:     mongoHealthy,
			Redis:     redisHealth,
			Storage:   "mongo",
			CheckedAt: time.Now(),
		})
	}

	check()
	go func() {
		ticker := time.NewTicker(60 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				check()
			}
		}
	}()
}
