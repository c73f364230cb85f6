package schedule_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UmarRehanShaikh/pronttera-time-off/internal/schedule"
)

func TestNewRedisLock(t *testing.T) {
	client, _ := redismock.NewClientMock()

	t.Run("negative nil client", func(t *testing.T) {
		_, err := schedule.NewRedisLock(nil, "key", time.Minute)
		assert.Error(t, err)
	})

	t.Run("negative empty key", func(t *testing.T) {
		_, err := schedule.NewRedisLock(client, "", time.Minute)
		assert.Error(t, err)
	})

	t.Run("success", func(t *testing.T) {
		lock, err := schedule.NewRedisLock(client, "scheduler:lock", time.Minute)
		assert.NoError(t, err)
		assert.NotNil(t, lock)
	})
}

func TestRedisLockAcquire(t *testing.T) {
	const key = "scheduler:lock"

	t.Run("success takes a free lock", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		lock, err := schedule.NewRedisLock(client, key, time.Minute)
		require.NoError(t, err)

		// The owner token is random, so match it loosely.
		mock.Regexp().ExpectSetNX(key, `.+`, time.Minute).SetVal(true)

		ok, err := lock.Acquire(context.Background())

		assert.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative held lock backs off", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		lock, err := schedule.NewRedisLock(client, key, time.Minute)
		require.NoError(t, err)

		mock.Regexp().ExpectSetNX(key, `.+`, time.Minute).SetVal(false)

		ok, err := lock.Acquire(context.Background())

		assert.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRedisLockRelease(t *testing.T) {
	const key = "scheduler:lock"

	t.Run("release without ownership does nothing", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		lock, err := schedule.NewRedisLock(client, key, time.Minute)
		require.NoError(t, err)

		assert.NoError(t, lock.Release(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("release leaves a lock owned by someone else", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		lock, err := schedule.NewRedisLock(client, key, time.Minute)
		require.NoError(t, err)

		mock.Regexp().ExpectSetNX(key, `.+`, time.Minute).SetVal(true)
		ok, err := lock.Acquire(context.Background())
		require.NoError(t, err)
		require.True(t, ok)

		// Another instance re-acquired after our TTL lapsed.
		mock.ExpectGet(key).SetVal("someone-else")

		assert.NoError(t, lock.Release(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("release treats a missing key as already released", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		lock, err := schedule.NewRedisLock(client, key, time.Minute)
		require.NoError(t, err)

		mock.Regexp().ExpectSetNX(key, `.+`, time.Minute).SetVal(true)
		ok, err := lock.Acquire(context.Background())
		require.NoError(t, err)
		require.True(t, ok)

		mock.ExpectGet(key).RedisNil()

		assert.NoError(t, lock.Release(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
