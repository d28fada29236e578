// Package adapters implements adapter interfaces from the application layer.
package adapters

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/household-ledger/backend/internal/application/adapter"
)

const (
	guardKeyPrefix      = "ledger:lock:"
	guardReleaseTimeout = 2 * time.Second
)

// releaseScript deletes the lock only while it still holds our token, so an
// expired lock taken over by someone else is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// redisGuard implements the adapter.ProvisioningGuard interface with
// SET NX locks that expire after their TTL.
type redisGuard struct {
	client redis.UniversalClient
}

// NewRedisProvisioningGuard creates a guard backed by Redis.
func NewRedisProvisioningGuard(client redis.UniversalClient) adapter.ProvisioningGuard {
	return &redisGuard{
		client: client,
	}
}

// Acquire tries to take the lock for key.
func (g *redisGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	redisKey := guardKeyPrefix + key
	token := uuid.NewString()

	ok, err := g.client.SetNX(ctx, redisKey, token, ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), guardReleaseTimeout)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, g.client, []string{redisKey}, token).Err(); err != nil {
			slog.Warn("Failed to release lock", "key", key, "error", err)
		}
	}
	return release, true, nil
}

// noopGuard implements the adapter.ProvisioningGuard interface when Redis is
// not configured. Every acquisition succeeds.
type noopGuard struct{}

// NewNoopProvisioningGuard creates a guard that never blocks.
func NewNoopProvisioningGuard() adapter.ProvisioningGuard {
	return noopGuard{}
}

// Acquire always succeeds.
func (noopGuard) Acquire(context.Context, string, time.Duration) (func(), bool, error) {
	return func() {}, true, nil
}
