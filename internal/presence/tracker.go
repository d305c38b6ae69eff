package presence

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const onlineTTL = 90 * time.Second

// Tracker records which users currently hold a live push connection.
// Backed by Redis so multiple service instances agree on who is online.
type Tracker interface {
	MarkOnline(ctx context.Context, userID int) error
	MarkOffline(ctx context.Context, userID int) error
	IsOnline(ctx context.Context, userID int) (bool, error)
}

// NewTracker builds a Redis tracker or a noop tracker when Redis is
// not configured.
func NewTracker(addr string) Tracker {
	if addr == "" {
		log.Printf("presence tracking disabled, using noop: empty redis addr")
		return noopTracker{}
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	return &redisTracker{client: client}
}

type redisTracker struct {
	client *redis.Client
}

func onlineKey(userID int) string {
	return fmt.Sprintf("presence:online:%d", userID)
}

func (t *redisTracker) MarkOnline(ctx context.Context, userID int) error {
	return t.client.Set(ctx, onlineKey(userID), time.Now().UTC().Format(time.RFC3339), onlineTTL).Err()
}

func (t *redisTracker) MarkOffline(ctx context.Context, userID int) error {
	return t.client.Del(ctx, onlineKey(userID)).Err()
}

func (t *redisTracker) IsOnline(ctx context.Context, userID int) (bool, error) {
	count, err := t.client.Exists(ctx, onlineKey(userID)).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

type noopTracker struct{}

func (noopTracker) MarkOnline(context.Context, int) error  { return nil }
func (noopTracker) MarkOffline(context.Context, int) error { return nil }

func (noopTracker) IsOnline(context.Context, int) (bool, error) { return false, nil }
