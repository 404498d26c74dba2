package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/mmdatafocus/bakery_backend/config"
	"github.com/mmdatafocus/bakery_backend/utils"
	"github.com/sirupsen/logrus"
)

// PostingLocker serializes re-posting of one transaction across instances.
type PostingLocker interface {
	Lock(ctx context.Context, key string) (release func(), err error)
}

type RedisPostingLocker struct {
	client *redislock.Client
	ttl    time.Duration
	retry  redislock.RetryStrategy
	logger *logrus.Logger
}

func NewRedisPostingLocker(client *redislock.Client, ttl time.Duration, logger *logrus.Logger) *RedisPostingLocker {
	return &RedisPostingLocker{
		client: client,
		ttl:    ttl,
		retry:  redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 50),
		logger: logger,
	}
}

// Lock waits up to ~5s for the posting lock of key. ErrTransactionBusy is returned
// when another request keeps holding it.
func (l *RedisPostingLocker) Lock(ctx context.Context, key string) (func(), error) {
	lockKey := "posting:" + key
	lock, err := l.client.Obtain(ctx, lockKey, l.ttl, &redislock.Options{RetryStrategy: l.retry})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("%w: %s", utils.ErrTransactionBusy, key)
	}
	if err != nil {
		return nil, err
	}
	return func() {
		if err := lock.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			config.LogError(l.logger, "workflow", "RedisPostingLocker.Lock", "release posting lock", lockKey, err)
		}
	}, nil
}
