package lock_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justirack/HospitalManagement/internal/lock"
)

func newRedisLocker(t *testing.T) (lock.Locker, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return lock.NewRedisLocker(client, time.Second), mr
}

func TestRedisLockerRunsFn(t *testing.T) {
	locker, mr := newRedisLocker(t)
	keys := []string{lock.DoctorKey("d1"), lock.RoomKey(5)}

	ran := false
	err := locker.WithLocks(context.Background(), keys, func(ctx context.Context) error {
		ran = true
		for _, key := range keys {
			assert.True(t, mr.Exists(key), "key %s must be held while fn runs", key)
		}
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)

	for _, key := range keys {
		assert.False(t, mr.Exists(key), "key %s must be released after fn returns", key)
	}
}

func TestRedisLockerContention(t *testing.T) {
	locker, mr := newRedisLocker(t)
	require.NoError(t, mr.Set(lock.RoomKey(7), "held-elsewhere"))

	err := locker.WithLocks(context.Background(), []string{lock.DoctorKey("d1"), lock.RoomKey(7)}, func(ctx context.Context) error {
		t.Fatal("fn must not run when a key is taken")
		return nil
	})
	assert.ErrorIs(t, err, lock.ErrNotAcquired)

	// The other holder's key is untouched.
	got, err := mr.Get(lock.RoomKey(7))
	require.NoError(t, err)
	assert.Equal(t, "held-elsewhere", got)
}

// When a later key is taken, the earlier keys already acquired must be
// released so the failed caller leaves nothing behind. Keys acquire in
// sorted order, so the doctor key is taken before the contended room
// key.
func TestRedisLockerRollbackOnPartialAcquisition(t *testing.T) {
	locker, mr := newRedisLocker(t)
	require.NoError(t, mr.Set(lock.RoomKey(7), "held-elsewhere"))

	err := locker.WithLocks(context.Background(), []string{lock.DoctorKey("d1"), lock.RoomKey(7)}, func(ctx context.Context) error {
		return nil
	})
	require.ErrorIs(t, err, lock.ErrNotAcquired)

	assert.False(t, mr.Exists(lock.DoctorKey("d1")), "partially acquired key must be rolled back")
}

// A key that expired and was reacquired under a different token belongs
// to the new holder; our release must leave it alone.
func TestRedisLockerReleaseSparesForeignToken(t *testing.T) {
	locker, mr := newRedisLocker(t)
	key := lock.DoctorKey("d1")

	err := locker.WithLocks(context.Background(), []string{key}, func(ctx context.Context) error {
		// Simulate the TTL firing mid-section and another process
		// taking the key.
		mr.Del(key)
		require.NoError(t, mr.Set(key, "new-holder"))
		return nil
	})
	require.NoError(t, err)

	got, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "new-holder", got)
}

func TestRedisLockerDisjointKeys(t *testing.T) {
	locker, _ := newRedisLocker(t)
	ctx := context.Background()

	err := locker.WithLocks(ctx, []string{lock.DoctorKey("d1")}, func(ctx context.Context) error {
		return locker.WithLocks(ctx, []string{lock.DoctorKey("d2")}, func(ctx context.Context) error {
			return nil
		})
	})
	assert.NoError(t, err)
}
