package notifications

import (
	"context"
	"errors"
	"telemed-service/internal/app/models"
	"telemed-service/internal/pkg/dto/requests"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func confirmedAppointment() *models.Appointment {
	return &models.Appointment{
		ID:        "appt-1",
		PatientID: "user-1",
		Date:      "2025-03-01",
		Time:      "10:30",
		Status:    models.AppointmentScheduled,
	}
}

func TestNotifyAppointmentConfirmed_QueuesEmail(t *testing.T) {
	users := new(mockUserRepository)
	queue := new(mockMailQueue)
	service := NewNotificationService(users, queue, zap.NewNop())

	users.On("FindByID", mock.Anything, "user-1").Return(&models.User{Name: "Asha", Email: "asha@example.com"}, nil)
	queue.On("Enqueue", mock.Anything, mock.MatchedBy(func(payload *requests.EmailPayload) bool {
		return payload.ID != "" &&
			payload.To == "asha@example.com" &&
			payload.Subject == "Appointment Confirmed - RxExplain AI" &&
			payload.Body == "Hello Asha,\n\nYour appointment for 2025-03-01 at 10:30 has been confirmed. Thank you for your payment.\n\nBest regards,\nThe RxExplain Team" &&
			payload.FailedCount == 0
	})).Return(nil).Once()

	err := service.NotifyAppointmentConfirmed(context.Background(), confirmedAppointment())
	assert.NoError(t, err)
	queue.AssertExpectations(t)
}

func TestNotifyAppointmentConfirmed_MissingUserSkips(t *testing.T) {
	users := new(mockUserRepository)
	queue := new(mockMailQueue)
	service := NewNotificationService(users, queue, zap.NewNop())

	users.On("FindByID", mock.Anything, "user-1").Return(nil, nil)

	err := service.NotifyAppointmentConfirmed(context.Background(), confirmedAppointment())
	assert.NoError(t, err)
	queue.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
}

func TestNotifyAppointmentConfirmed_PropagatesQueueError(t *testing.T) {
	users := new(mockUserRepository)
	queue := new(mockMailQueue)
	service := NewNotificationService(users, queue, zap.NewNop())
	brokerDown := errors.New("broker down")

	users.On("FindByID", mock.Anything, "user-1").Return(&models.User{Name: "Asha", Email: "asha@example.com"}, nil)
	queue.On("Enqueue", mock.Anything, mock.Anything).Return(brokerDown)

	err := service.NotifyAppointmentConfirmed(context.Background(), confirmedAppointment())
	assert.ErrorIs(t, err, brokerDown)
}
