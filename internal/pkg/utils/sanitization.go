package utils

import (
	"strings"
	"telemed-service/internal/pkg/dto/requests"
)

func SanitizeCreateAppointmentRequest(request *requests.CreateAppointment) {
	request.DoctorID = strings.TrimSpace(request.DoctorID)
	request.Date = strings.TrimSpace(request.Date)
	request.Time = strings.TrimSpace(request.Time)
}

func SanitizeVerifyPaymentRequest(request *requests.VerifyPayment) {
	request.AppointmentID = strings.TrimSpace(request.AppointmentID)
	request.GatewayOrderID = strings.TrimSpace(request.GatewayOrderID)
	request.GatewayPaymentID = strings.TrimSpace(request.GatewayPaymentID)
	request.GatewaySignature = strings.TrimSpace(request.GatewaySignature)
}

func SanitizeCreatePaymentOrderRequest(request *requests.CreatePaymentOrder) {
	request.AppointmentID = strings.TrimSpace(request.AppointmentID)
}
