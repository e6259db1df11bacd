package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultLockTTL       = 30 * time.Second
	defaultRetryInterval = 50 * time.Millisecond
)

// releaseScript deletes the lock only if this holder still owns it
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLeadLocker is a LeadLocker for multi-instance deployments, using a
// Redis SET NX lease per lead. The lease TTL bounds how long a crashed holder
// can block other instances.
type RedisLeadLocker struct {
	client        redis.UniversalClient
	logger        *zap.Logger
	ttl           time.Duration
	retryInterval time.Duration
}

// NewRedisLeadLocker creates a Redis-backed lead locker
func NewRedisLeadLocker(client redis.UniversalClient, logger *zap.Logger) *RedisLeadLocker {
	return &RedisLeadLocker{
		client:        client,
		logger:        logger,
		ttl:           defaultLockTTL,
		retryInterval: defaultRetryInterval,
	}
}

func lockKey(leadID uuid.UUID) string {
	return fmt.Sprintf("lead-lock:%s", leadID)
}

// WithLock runs fn while holding the lead's distributed lock, retrying
// acquisition until the context is cancelled
func (l *RedisLeadLocker) WithLock(ctx context.Context, leadID uuid.UUID, fn func(ctx context.Context) error) error {
	key := lockKey(leadID)
	token := uuid.NewString()

	for {
		acquired, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return fmt.Errorf("failed to acquire lead lock: %w", err)
		}
		if acquired {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.retryInterval):
		}
	}

	defer func() {
		// Release outlives the request context so a cancelled caller does not
		// leave the lease to expire on its own.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil {
			l.logger.Warn("failed to release lead lock, lease will expire",
				zap.String("lead_id", leadID.String()),
				zap.Error(err),
			)
		}
	}()

	return fn(ctx)
}

// Ensure RedisLeadLocker implements LeadLocker
var _ LeadLocker = (*RedisLeadLocker)(nil)
