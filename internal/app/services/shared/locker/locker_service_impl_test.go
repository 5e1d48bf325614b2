package locker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockRedisRepository struct {
	mock.Mock
}

func (m *mockRedisRepository) Set(ctx context.Context, key string, value interface{}, exp time.Duration) error {
	return m.Called(ctx, key, value, exp).Error(0)
}

func (m *mockRedisRepository) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *mockRedisRepository) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockRedisRepository) TrySetNX(ctx context.Context, key string, value interface{}, exp time.Duration) (bool, error) {
	args := m.Called(ctx, key, value, exp)
	return args.Bool(0), args.Error(1)
}

func (m *mockRedisRepository) DeleteIfEquals(ctx context.Context, key string, value interface{}) (bool, error) {
	args := m.Called(ctx, key, value)
	return args.Bool(0), args.Error(1)
}

func (m *mockRedisRepository) ExpireIfEquals(ctx context.Context, key string, value interface{}, exp time.Duration) (bool, error) {
	args := m.Called(ctx, key, value, exp)
	return args.Bool(0), args.Error(1)
}

func TestLockService_TryLock(t *testing.T) {
	ctx := context.Background()

	t.Run("Acquired returns a fresh token", func(t *testing.T) {
		repo := new(mockRedisRepository)
		repo.On("TrySetNX", ctx, "payment:order:1", mock.AnythingOfType("string"), 20*time.Second).Return(true, nil).Once()

		svc := NewLockService(repo, zap.NewNop())
		acquired, token, err := svc.TryLock(ctx, "payment:order:1", 20*time.Second)

		require.NoError(t, err)
		assert.True(t, acquired)
		assert.NotEmpty(t, token)
		repo.AssertExpectations(t)
	})

	t.Run("Held elsewhere", func(t *testing.T) {
		repo := new(mockRedisRepository)
		repo.On("TrySetNX", ctx, "payment:order:1", mock.Anything, 20*time.Second).Return(false, nil).Once()

		svc := NewLockService(repo, zap.NewNop())
		acquired, token, err := svc.TryLock(ctx, "payment:order:1", 20*time.Second)

		require.NoError(t, err)
		assert.False(t, acquired)
		assert.Empty(t, token)
	})

	t.Run("Redis failure", func(t *testing.T) {
		repo := new(mockRedisRepository)
		repo.On("TrySetNX", ctx, "payment:order:1", mock.Anything, 20*time.Second).Return(false, errors.New("connection refused")).Once()

		svc := NewLockService(repo, zap.NewNop())
		acquired, _, err := svc.TryLock(ctx, "payment:order:1", 20*time.Second)

		assert.Error(t, err)
		assert.False(t, acquired)
	})
}

func TestLockService_Unlock(t *testing.T) {
	ctx := context.Background()

	t.Run("Releases own lock", func(t *testing.T) {
		repo := new(mockRedisRepository)
		repo.On("DeleteIfEquals", ctx, "k", "token").Return(true, nil).Once()

		err := NewLockService(repo, zap.NewNop()).Unlock(ctx, "k", "token")

		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("Lock already gone is not an error", func(t *testing.T) {
		repo := new(mockRedisRepository)
		repo.On("DeleteIfEquals", ctx, "k", "token").Return(false, nil).Once()

		err := NewLockService(repo, zap.NewNop()).Unlock(ctx, "k", "token")

		assert.NoError(t, err)
	})
}

func TestLockService_Refresh(t *testing.T) {
	ctx := context.Background()

	t.Run("Extends own lock", func(t *testing.T) {
		repo := new(mockRedisRepository)
		repo.On("ExpireIfEquals", ctx, "k", "token", 2*time.Minute).Return(true, nil).Once()

		err := NewLockService(repo, zap.NewNop()).Refresh(ctx, "k", "token", 2*time.Minute)

		assert.NoError(t, err)
	})

	t.Run("Ownership lost", func(t *testing.T) {
		repo := new(mockRedisRepository)
		repo.On("ExpireIfEquals", ctx, "k", "token", 2*time.Minute).Return(false, nil).Once()

		err := NewLockService(repo, zap.NewNop()).Refresh(ctx, "k", "token", 2*time.Minute)

		assert.ErrorIs(t, err, ErrLockNotOwned)
	})
}
