package notifications

import (
	"context"
	"telemed-service/internal/app/models"
	"telemed-service/internal/pkg/dto/requests"
	"time"

	"github.com/stretchr/testify/mock"
)

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) FindByID(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepository) CountAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockUserRepository) CountByRole(ctx context.Context, role string) (int64, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(int64), args.Error(1)
}

type mockMailQueue struct {
	mock.Mock
}

func (m *mockMailQueue) Enqueue(ctx context.Context, payload *requests.EmailPayload) error {
	return m.Called(ctx, payload).Error(0)
}

func (m *mockMailQueue) Reenqueue(ctx context.Context, payload *requests.EmailPayload) error {
	return m.Called(ctx, payload).Error(0)
}

func (m *mockMailQueue) EnqueueToDeadQueue(ctx context.Context, payload *requests.EmailPayload) error {
	return m.Called(ctx, payload).Error(0)
}

func (m *mockMailQueue) FetchN(ctx context.Context, n int) ([]requests.QueuedEmail, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]requests.QueuedEmail), args.Error(1)
}

func (m *mockMailQueue) Ack(ctx context.Context, deliveryTag uint64) error {
	return m.Called(ctx, deliveryTag).Error(0)
}

func (m *mockMailQueue) Nack(ctx context.Context, deliveryTag uint64) error {
	return m.Called(ctx, deliveryTag).Error(0)
}

type mockMailSender struct {
	mock.Mock
}

func (m *mockMailSender) Send(ctx context.Context, payload *requests.EmailPayload) error {
	return m.Called(ctx, payload).Error(0)
}

type mockLocker struct {
	mock.Mock
}

func (m *mockLocker) TryLock(ctx context.Context, key string, expiration time.Duration) (bool, string, error) {
	args := m.Called(ctx, key, expiration)
	return args.Bool(0), args.String(1), args.Error(2)
}

func (m *mockLocker) Unlock(ctx context.Context, key, lockValue string) error {
	return m.Called(ctx, key, lockValue).Error(0)
}

func (m *mockLocker) Refresh(ctx context.Context, key, lockValue string, expiration time.Duration) error {
	return m.Called(ctx, key, lockValue, expiration).Error(0)
}
