package lock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const keyPrefix = "research:lock:"

// release only deletes the key when it still holds our token, an expired lock
// re-acquired by another process must survive.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLocker is a Locker shared by every process connected to the same redis.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	retry  time.Duration
}

var _ Locker = (*RedisLocker)(nil)

func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{
		client: client,
		ttl:    ttl,
		retry:  50 * time.Millisecond,
	}
}

func (r *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	redisKey := keyPrefix + key

	for {
		ok, err := r.client.SetNX(ctx, redisKey, token, r.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func() {
				err := releaseScript.Run(context.Background(), r.client, []string{redisKey}, token).Err()
				if err != nil && !errors.Is(err, redis.Nil) {
					logrus.Errorf("error releasing lock %s: %v", redisKey, err)
				}
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrLockHeld, ctx.Err())
		case <-time.After(r.retry):
		}
	}
}
