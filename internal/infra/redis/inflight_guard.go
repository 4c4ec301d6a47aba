package redis

import (
	"context"
	"time"

	"coding-relay-console/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// InFlightGuard marks a team busy with SET NX so the guard holds across
// console instances. The marker carries a TTL so a crashed holder cannot
// block a team forever.
type InFlightGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewInFlightGuard(client *redis.Client, ttl time.Duration) *InFlightGuard {
	return &InFlightGuard{client: client, ttl: ttl}
}

// releaseScript deletes the marker only if this holder still owns it.
var releaseScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	end
	return 0
`)

func (g *InFlightGuard) Acquire(ctx context.Context, teamID string) (func(), error) {
	key := g.key(teamID)
	owner := uuid.NewString()
	ok, err := g.client.SetNX(ctx, key, owner, g.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrOperationInProgress
	}
	return func() {
		_ = releaseScript.Run(context.Background(), g.client, []string{key}, owner).Err()
	}, nil
}

func (g *InFlightGuard) key(teamID string) string {
	return keyPrefix + "inflight:" + teamID
}
