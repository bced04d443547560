package redis

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"bookingcore/internal/app/locks"
)

const (
	defaultTTL  = 30 * time.Second
	defaultPoll = 25 * time.Millisecond
	keyPrefix   = "bookingcore:lock:"
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker is a single-instance Redis lease lock shared by every API replica.
// TTL bounds how long a crashed holder keeps the key.
type Locker struct {
	Client goredis.UniversalClient
	Wait   time.Duration
	TTL    time.Duration
	Poll   time.Duration
	Logger *slog.Logger
}

func NewLocker(client goredis.UniversalClient, wait, ttl time.Duration, logger *slog.Logger) *Locker {
	return &Locker{Client: client, Wait: wait, TTL: ttl, Logger: logger}
}

func (l *Locker) Acquire(ctx context.Context, key string) (func(), error) {
	ttl := l.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	poll := l.Poll
	if poll <= 0 {
		poll = defaultPoll
	}
	token := uuid.NewString()
	redisKey := keyPrefix + key

	var deadline <-chan time.Time
	if l.Wait > 0 {
		timer := time.NewTimer(l.Wait)
		defer timer.Stop()
		deadline = timer.C
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		ok, err := l.Client.SetNX(ctx, redisKey, token, ttl).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, err
		}
		if ok {
			return l.releaser(redisKey, token), nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline:
			return nil, locks.ErrLockTimeout
		case <-ticker.C:
		}
	}
}

func (l *Locker) releaser(redisKey, token string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			// the caller's context may already be canceled
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := releaseScript.Run(ctx, l.Client, []string{redisKey}, token).Err(); err != nil && !errors.Is(err, goredis.Nil) {
				if l.Logger != nil {
					l.Logger.Warn("lock.release_failed", "key", redisKey, "error", err)
				}
			}
		})
	}
}

var _ locks.Locker = (*Locker)(nil)
