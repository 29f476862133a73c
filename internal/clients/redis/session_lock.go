package redis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/mindcheck-backend/internal/platform/logger"
	"github.com/yungbote/mindcheck-backend/internal/services"
)

const (
	lockKeyPrefix     = "mindcheck:consultation-lock:"
	defaultLockTTL    = 10 * time.Second
	defaultRetryDelay = 25 * time.Millisecond
)

// unlockScript deletes the key only while it still holds our token, so an
// expired lock re-acquired by another replica is never released by us.
var unlockScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// refreshScript extends the key only while it still holds our token.
var refreshScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

type sessionLocker struct {
	log        *logger.Logger
	rdb        goredis.UniversalClient
	ttl        time.Duration
	retryDelay time.Duration
}

// NewSessionLocker locks consultations across replicas with SET NX PX. ttl
// bounds how long a crashed holder can block a session; a live holder keeps
// the key alive with a refresh every ttl/3 until it unlocks.
func NewSessionLocker(log *logger.Logger, rdb goredis.UniversalClient, ttl time.Duration) services.SessionLocker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &sessionLocker{
		log:        log.With("service", "RedisSessionLocker"),
		rdb:        rdb,
		ttl:        ttl,
		retryDelay: defaultRetryDelay,
	}
}

func (l *sessionLocker) Lock(ctx context.Context, sessionID uuid.UUID) (func(), error) {
	key := lockKeyPrefix + sessionID.String()
	token := uuid.NewString()

	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, services.ErrLockTimeout
			}
			return nil, err
		}
		if ok {
			break
		}
		t := time.NewTimer(l.retryDelay)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, services.ErrLockTimeout
		case <-t.C:
		}
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go l.keepAlive(key, token, sessionID, stop, done)

	released := false
	return func() {
		if released {
			return
		}
		released = true
		close(stop)
		<-done
		// The request context may already be done; release on a fresh one.
		relCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := unlockScript.Run(relCtx, l.rdb, []string{key}, token).Err(); err != nil && !errors.Is(err, goredis.Nil) {
			l.log.Warn("session unlock failed", "session_id", sessionID, "error", err)
		}
	}, nil
}

func (l *sessionLocker) keepAlive(key, token string, sessionID uuid.UUID, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(l.ttl / 3)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
		ctx, cancel := context.WithTimeout(context.Background(), l.ttl/3)
		n, err := refreshScript.Run(ctx, l.rdb, []string{key}, token, l.ttl.Milliseconds()).Int64()
		cancel()
		if err != nil {
			l.log.Warn("session lock refresh failed", "session_id", sessionID, "error", err)
			continue
		}
		if n == 0 {
			// Expired and possibly taken by another holder; the version
			// check in SaveState still rejects a conflicting write.
			l.log.Warn("session lock lost", "session_id", sessionID)
			return
		}
	}
}
