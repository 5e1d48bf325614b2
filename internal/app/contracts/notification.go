package contracts

import (
	"context"
	"telemed-service/internal/app/models"
	"telemed-service/internal/pkg/dto/requests"
)

type NotificationService interface {
	NotifyAppointmentConfirmed(ctx context.Context, appointment *models.Appointment) error
}

type MailQueue interface {
	Enqueue(ctx context.Context, payload *requests.EmailPayload) error
	Reenqueue(ctx context.Context, payload *requests.EmailPayload) error
	EnqueueToDeadQueue(ctx context.Context, payload *requests.EmailPayload) error
	FetchN(ctx context.Context, n int) ([]requests.QueuedEmail, error)
	Ack(ctx context.Context, deliveryTag uint64) error
	// Nack returns an unprocessed delivery to the queue head.
	Nack(ctx context.Context, deliveryTag uint64) error
}

type MailSender interface {
	Send(ctx context.Context, payload *requests.EmailPayload) error
}
