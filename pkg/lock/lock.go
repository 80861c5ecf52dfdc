package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrNotAcquired = errors.New("lock not acquired")

// Locker hands out expiring keys. Lock returns a token identifying the holder;
// Unlock only releases the key while that token still holds it.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	Unlock(ctx context.Context, key, token string) error
}

// Acquire retries Lock until it succeeds or ctx is done.
func Acquire(ctx context.Context, l Locker, key string, ttl time.Duration) (string, error) {
	backoff := 5 * time.Millisecond
	for {
		token, ok, err := l.Lock(ctx, key, ttl)
		if err != nil {
			return "", err
		}
		if ok {
			return token, nil
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", errors.Join(ErrNotAcquired, ctx.Err())
		case <-timer.C:
		}
		if backoff < 100*time.Millisecond {
			backoff *= 2
		}
	}
}

// LocalLock is an in-process Locker with expiring keys.
type LocalLock struct {
	mu    sync.Mutex
	held  map[string]localHold
	nowFn func() time.Time
}

type localHold struct {
	token   string
	expires time.Time
}

func NewLocalLock() *LocalLock {
	return &LocalLock{held: make(map[string]localHold), nowFn: time.Now}
}

func (l *LocalLock) Lock(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFn()
	if h, ok := l.held[key]; ok && now.Before(h.expires) {
		return "", false, nil
	}
	token := uuid.NewString()
	l.held[key] = localHold{token: token, expires: now.Add(ttl)}
	return token, true, nil
}

func (l *LocalLock) Unlock(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if h, ok := l.held[key]; ok && h.token == token {
		delete(l.held, key)
	}
	return nil
}
