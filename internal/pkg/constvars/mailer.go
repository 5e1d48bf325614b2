package constvars

const (
	EmailAppointmentConfirmedSubject    = "Appointment Confirmed - RxExplain AI"
	EmailAppointmentConfirmedBodyFormat = "Hello %s,\n\nYour appointment for %s at %s has been confirmed. Thank you for your payment.\n\nBest regards,\nThe RxExplain Team"
)
