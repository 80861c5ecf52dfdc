package lock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLock(t *testing.T) {
	ctx := context.Background()
	l := NewLocalLock()

	token, ok, err := l.Lock(ctx, "calendar", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotEmpty(t, token)

	_, ok, err = l.Lock(ctx, "calendar", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, _ = l.Lock(ctx, "other", time.Minute)
	assert.True(t, ok)

	require.NoError(t, l.Unlock(ctx, "calendar", token))
	_, ok, _ = l.Lock(ctx, "calendar", time.Minute)
	assert.True(t, ok)
}

func TestLocalLock_Expires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	l := NewLocalLock()
	l.nowFn = func() time.Time { return now }

	_, ok, _ := l.Lock(ctx, "k", time.Second)
	assert.True(t, ok)

	now = now.Add(2 * time.Second)
	_, ok, _ = l.Lock(ctx, "k", time.Second)
	assert.True(t, ok)
}

func TestLocalLock_StaleHolderCannotUnlock(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	l := NewLocalLock()
	l.nowFn = func() time.Time { return now }

	first, ok, _ := l.Lock(ctx, "k", time.Second)
	require.True(t, ok)

	now = now.Add(2 * time.Second)
	second, ok, _ := l.Lock(ctx, "k", time.Minute)
	require.True(t, ok)

	// the first holder overran its ttl; its release must not free the key
	require.NoError(t, l.Unlock(ctx, "k", first))
	_, ok, _ = l.Lock(ctx, "k", time.Minute)
	assert.False(t, ok)

	require.NoError(t, l.Unlock(ctx, "k", second))
	_, ok, _ = l.Lock(ctx, "k", time.Minute)
	assert.True(t, ok)
}

func TestAcquire(t *testing.T) {
	l := NewLocalLock()
	token, err := Acquire(context.Background(), l, "k", time.Minute)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = Acquire(ctx, l, "k", time.Minute)
	assert.ErrorIs(t, err, ErrNotAcquired)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = l.Unlock(context.Background(), "k", token)
	}()
	_, err = Acquire(context.Background(), l, "k", time.Minute)
	assert.NoError(t, err)
}
