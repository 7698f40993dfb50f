package cache

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

var Client *redis.Client

// Init connects to redis when addr is set. The platform runs fine without
// it: every helper degrades to a no-op on a nil client.
func Init(addr string) {
	if addr == "" {
		return
	}
	Client = redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := Client.Ping(ctx).Err(); err != nil {
		log.Printf("Redis connection warning: %v (continuing without shared cache)", err)
		Client = nil
	} else {
		log.Println("Redis connected successfully")
	}
}

// SetNX sets key with ttl only when absent. Returns true when the key was
// set, (false, nil) when it already existed or redis is not configured.
func SetNX(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if Client == nil {
		return false, redis.Nil
	}
	return Client.SetNX(ctx, key, 1, ttl).Result()
}

// Available reports whether the shared cache is usable.
func Available() bool {
	return Client != nil
}
