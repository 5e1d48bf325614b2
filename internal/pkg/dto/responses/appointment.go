package responses

import "time"

type Appointment struct {
	ID            string         `json:"id"`
	PatientID     string         `json:"patientId"`
	DoctorID      string         `json:"doctorId"`
	Date          string         `json:"date"`
	Time          string         `json:"time"`
	Status        string         `json:"status"`
	PaymentStatus string         `json:"paymentStatus"`
	PaymentID     string         `json:"paymentId,omitempty"`
	Amount        int64          `json:"amount"`
	Doctor        *DoctorSummary `json:"doctor,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

type DoctorSummary struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
}

type AppointmentReceipt struct {
	AppointmentID string    `json:"appointmentId"`
	ObjectKey     string    `json:"objectKey"`
	URL           string    `json:"url"`
	ExpiresAt     time.Time `json:"expiresAt"`
}
