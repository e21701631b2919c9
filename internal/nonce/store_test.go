package nonce

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexZinkM/wallet-auth/internal/model"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client), mr
}

// exerciseSingleUse checks the contract shared by every Store.
func exerciseSingleUse(t *testing.T, s Store) {
	ctx := context.Background()

	_, err := s.Get(ctx, "0xa")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, model.ErrNotFound)

	n, err := Issue(ctx, s, "0xa", time.Minute)
	require.NoError(t, err)
	assert.Len(t, n, 2*Size)

	got, err := s.Get(ctx, "0xa")
	require.NoError(t, err)
	assert.Equal(t, n, got)

	// a second issue replaces the first
	n2, err := Issue(ctx, s, "0xa", time.Minute)
	require.NoError(t, err)
	assert.NotEqual(t, n, n2)

	consumed, err := s.Consume(ctx, "0xa")
	require.NoError(t, err)
	assert.Equal(t, n2, consumed)

	_, err = s.Consume(ctx, "0xa")
	assert.ErrorIs(t, err, ErrNotFound, "nonce must be single use")

	require.NoError(t, s.Set(ctx, "0xb", "n", time.Minute))
	require.NoError(t, s.Delete(ctx, "0xb"))
	_, err = s.Get(ctx, "0xb")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreSingleUse(t *testing.T) {
	exerciseSingleUse(t, NewMemoryStore())
}

func TestRedisStoreSingleUse(t *testing.T) {
	s, _ := newRedisStore(t)
	exerciseSingleUse(t, s)
}

func TestMemoryStoreExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	s := NewMemoryStore().WithClock(clock.Now)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "0xa", "n1", time.Minute))
	require.NoError(t, s.Set(ctx, "0xb", "n2", time.Hour))

	clock.Advance(59 * time.Second)
	_, err := s.Get(ctx, "0xa")
	require.NoError(t, err)

	clock.Advance(time.Second)
	_, err = s.Consume(ctx, "0xa")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "0xc", "n3", time.Second))
	clock.Advance(2 * time.Second)
	assert.Equal(t, 1, s.PurgeExpired())
	assert.Equal(t, 1, s.Len())
}

func TestRedisStoreExpiry(t *testing.T) {
	s, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "0xa", "n1", time.Minute))
	mr.FastForward(61 * time.Second)

	_, err := s.Consume(ctx, "0xa")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStorePing(t *testing.T) {
	s, mr := newRedisStore(t)
	require.NoError(t, s.Ping(context.Background()))

	mr.Close()
	assert.Error(t, s.Ping(context.Background()))
}

func TestMemoryStoreConcurrentConsume(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "0xa", "n", time.Minute))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Consume(ctx, "0xa"); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}

func TestRunJanitorStopsOnCancel(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Set(context.Background(), "0xa", "n", time.Nanosecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.RunJanitor(ctx, time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
