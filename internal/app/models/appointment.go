package models

import "database/sql"

type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCanceled  AppointmentStatus = "canceled"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// Appointment is a row of the appointments table. Status and PaymentStatus
// move independently; Amount is fixed at booking time.
type Appointment struct {
	ID            string            `db:"id"`
	PatientID     string            `db:"patient_id"`
	DoctorID      string            `db:"doctor_id"`
	Date          string            `db:"appointment_date"`
	Time          string            `db:"appointment_time"`
	Status        AppointmentStatus `db:"status"`
	PaymentStatus PaymentStatus     `db:"payment_status"`
	PaymentID     sql.NullString    `db:"payment_id"`
	Amount        int64             `db:"amount"`
	TimeModel
}

func (a *Appointment) IsOwnedBy(userID string) bool {
	return a.PatientID == userID
}

func (a *Appointment) IsPaid() bool {
	return a.PaymentStatus == PaymentPaid
}

func (a *Appointment) MarkPaid(paymentID string) {
	a.PaymentStatus = PaymentPaid
	a.PaymentID = sql.NullString{String: paymentID, Valid: paymentID != ""}
	a.SetUpdatedAt()
}

// MarkPaymentFailed never downgrades a settled payment.
func (a *Appointment) MarkPaymentFailed() {
	if a.IsPaid() {
		return
	}
	a.PaymentStatus = PaymentFailed
	a.SetUpdatedAt()
}

type AppointmentStats struct {
	TotalAppointments int64 `db:"total_appointments"`
	Revenue           int64 `db:"revenue"`
}
