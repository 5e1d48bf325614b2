package capacity

import (
	"context"
	"errors"
	"telemed-service/internal/app/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type mockCapacityStore struct {
	mock.Mock
}

func (m *mockCapacityStore) LockDoctorDay(ctx context.Context, doctorID, date string) error {
	return m.Called(ctx, doctorID, date).Error(0)
}

func (m *mockCapacityStore) CountActiveByDoctorAndDate(ctx context.Context, doctorID, date string) (int, error) {
	args := m.Called(ctx, doctorID, date)
	return args.Int(0), args.Error(1)
}

func TestCapacityLedger_CheckAndAdmit(t *testing.T) {
	ctx := context.Background()
	doctorID := primitive.NewObjectID()
	doctorHex := doctorID.Hex()

	tests := []struct {
		name     string
		doctor   *models.Doctor
		count    int
		admitted bool
	}{
		{name: "below limit", doctor: &models.Doctor{ID: doctorID, MaxPatientsPerDay: 2}, count: 1, admitted: true},
		{name: "at limit", doctor: &models.Doctor{ID: doctorID, MaxPatientsPerDay: 2}, count: 2, admitted: false},
		{name: "default limit when unset", doctor: &models.Doctor{ID: doctorID}, count: 9, admitted: true},
		{name: "default limit reached", doctor: &models.Doctor{ID: doctorID}, count: 10, admitted: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(mockCapacityStore)
			store.On("LockDoctorDay", ctx, doctorHex, "2025-03-14").Return(nil).Once()
			store.On("CountActiveByDoctorAndDate", ctx, doctorHex, "2025-03-14").Return(tt.count, nil).Once()

			admitted, err := NewCapacityLedger(zap.NewNop()).CheckAndAdmit(ctx, store, tt.doctor, "2025-03-14")

			require.NoError(t, err)
			assert.Equal(t, tt.admitted, admitted)
			store.AssertExpectations(t)
		})
	}

	t.Run("lock failure skips count", func(t *testing.T) {
		store := new(mockCapacityStore)
		store.On("LockDoctorDay", ctx, doctorHex, "2025-03-14").Return(errors.New("lock timeout")).Once()

		admitted, err := NewCapacityLedger(zap.NewNop()).CheckAndAdmit(ctx, store, &models.Doctor{ID: doctorID}, "2025-03-14")

		assert.Error(t, err)
		assert.False(t, admitted)
		store.AssertNotCalled(t, "CountActiveByDoctorAndDate", mock.Anything, mock.Anything, mock.Anything)
	})
}
