package utils

import (
	"telemed-service/internal/app/models"
	"telemed-service/internal/pkg/dto/responses"
)

func ConvertAppointmentToResponse(appointment *models.Appointment, doctor *models.Doctor) responses.Appointment {
	response := responses.Appointment{
		ID:            appointment.ID,
		PatientID:     appointment.PatientID,
		DoctorID:      appointment.DoctorID,
		Date:          appointment.Date,
		Time:          appointment.Time,
		Status:        string(appointment.Status),
		PaymentStatus: string(appointment.PaymentStatus),
		PaymentID:     appointment.PaymentID.String,
		Amount:        appointment.Amount,
		CreatedAt:     appointment.CreatedAt,
		UpdatedAt:     appointment.UpdatedAt,
	}

	if doctor != nil {
		response.Doctor = ConvertDoctorToSummary(doctor)
	}
	return response
}

func ConvertDoctorToSummary(doctor *models.Doctor) *responses.DoctorSummary {
	return &responses.DoctorSummary{
		ID:             doctor.ID.Hex(),
		Name:           doctor.Name,
		Specialization: doctor.Specialization,
	}
}
