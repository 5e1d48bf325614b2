package contracts

import (
	"context"
	"errors"
	"telemed-service/internal/app/models"
	"telemed-service/internal/pkg/dto/requests"
	"telemed-service/internal/pkg/dto/responses"
)

type AppointmentUsecase interface {
	CreateAppointment(ctx context.Context, session *models.Session, request *requests.CreateAppointment) (*responses.Appointment, error)
	CancelAppointment(ctx context.Context, session *models.Session, appointmentID string) (*responses.Appointment, error)
	CompleteAppointment(ctx context.Context, session *models.Session, appointmentID string) (*responses.Appointment, error)
	FindAll(ctx context.Context, session *models.Session) ([]responses.Appointment, error)
	GetReceipt(ctx context.Context, session *models.Session, appointmentID string) (*responses.AppointmentReceipt, error)
}

// AppointmentRepository owns the appointments table. Writes happen only
// through WithinTransaction so row and advisory locks are held until commit.
type AppointmentRepository interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx AppointmentTransaction) error) error
	FindByID(ctx context.Context, appointmentID string) (*models.Appointment, error)
	FindAllByPatientID(ctx context.Context, patientID string) ([]models.Appointment, error)
	FindAllByDoctorID(ctx context.Context, doctorID string) ([]models.Appointment, error)
	GetStats(ctx context.Context) (*models.AppointmentStats, error)
}

// ErrPaymentIDTaken is wrapped by AppointmentTransaction.Update when the
// payment id is already recorded on another appointment.
var ErrPaymentIDTaken = errors.New("payment id already recorded on another appointment")

type AppointmentTransaction interface {
	CapacityStore
	Create(ctx context.Context, appointment *models.Appointment) error
	FindByIDForUpdate(ctx context.Context, appointmentID string) (*models.Appointment, error)
	Update(ctx context.Context, appointment *models.Appointment) error
}

// CapacityStore is the slice of a booking transaction the capacity ledger needs.
type CapacityStore interface {
	LockDoctorDay(ctx context.Context, doctorID, date string) error
	CountActiveByDoctorAndDate(ctx context.Context, doctorID, date string) (int, error)
}

type CapacityLedger interface {
	CheckAndAdmit(ctx context.Context, store CapacityStore, doctor *models.Doctor, date string) (bool, error)
}
