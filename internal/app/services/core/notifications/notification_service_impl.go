package notifications

import (
	"context"
	"fmt"
	"telemed-service/internal/app/contracts"
	"telemed-service/internal/app/models"
	"telemed-service/internal/pkg/constvars"
	"telemed-service/internal/pkg/dto/requests"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type notificationService struct {
	UserRepository contracts.UserRepository
	MailQueue      contracts.MailQueue
	Log            *zap.Logger
}

func NewNotificationService(userRepository contracts.UserRepository, mailQueue contracts.MailQueue, logger *zap.Logger) contracts.NotificationService {
	return &notificationService{
		UserRepository: userRepository,
		MailQueue:      mailQueue,
		Log:            logger,
	}
}

// NotifyAppointmentConfirmed queues the confirmation email for the patient.
// Delivery happens later through the notification worker.
func (s *notificationService) NotifyAppointmentConfirmed(ctx context.Context, appointment *models.Appointment) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.Log.Info("notificationService.NotifyAppointmentConfirmed called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingAppointmentIDKey, appointment.ID),
	)

	user, err := s.UserRepository.FindByID(ctx, appointment.PatientID)
	if err != nil {
		return err
	}
	if user == nil || user.Email == "" {
		s.Log.Warn("notificationService.NotifyAppointmentConfirmed patient has no reachable email",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingUserIDKey, appointment.PatientID),
		)
		return nil
	}

	payload := &requests.EmailPayload{
		ID:      uuid.NewString(),
		To:      user.Email,
		Subject: constvars.EmailAppointmentConfirmedSubject,
		Body:    fmt.Sprintf(constvars.EmailAppointmentConfirmedBodyFormat, user.Name, appointment.Date, appointment.Time),
	}
	if err := s.MailQueue.Enqueue(ctx, payload); err != nil {
		s.Log.Error("notificationService.NotifyAppointmentConfirmed error enqueueing email",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingMessageIDKey, payload.ID),
			zap.Error(err),
		)
		return err
	}

	s.Log.Info("notificationService.NotifyAppointmentConfirmed email queued",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingMessageIDKey, payload.ID),
	)
	return nil
}
