package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hanok-stay/service-booking/pkg/domain"
)

const (
	redisKeyPrefix    = "booking:room-lock:"
	redisRetryBackoff = 25 * time.Millisecond
)

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisRoomLocker is a per-room lock shared by every service replica.
// The key expires after ttl so a crashed holder cannot wedge a room.
type RedisRoomLocker struct {
	client  redis.UniversalClient
	timeout time.Duration
	ttl     time.Duration
	logger  *zap.Logger
}

// NewRedisRoomLocker creates a Redis-backed locker.
func NewRedisRoomLocker(client redis.UniversalClient, timeout, ttl time.Duration, logger *zap.Logger) *RedisRoomLocker {
	return &RedisRoomLocker{client: client, timeout: timeout, ttl: ttl, logger: logger}
}

// Lock polls SET NX until it wins or the timeout elapses.
func (l *RedisRoomLocker) Lock(ctx context.Context, roomID uuid.UUID) (Unlock, error) {
	key := redisKeyPrefix + roomID.String()
	token := uuid.NewString()

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("failed to acquire room lock: %w", err)
		}
		if ok {
			break
		}

		select {
		case <-time.After(redisRetryBackoff):
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, domain.NewBusyError("room is busy, please retry")
			}
			return nil, ctx.Err()
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// The caller's context may already be cancelled.
			relCtx, relCancel := context.WithTimeout(context.Background(), time.Second)
			defer relCancel()
			if err := releaseScript.Run(relCtx, l.client, []string{key}, token).Err(); err != nil {
				l.logger.Warn("failed to release room lock", zap.String("room_id", roomID.String()), zap.Error(err))
			}
		})
	}, nil
}
