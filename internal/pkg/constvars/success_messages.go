package constvars

const (
	ResponseUnknown = "unknown"
	ResponseSuccess = "success"
)

const (
	CreateAppointmentSuccessMessage   = "appointment created, please complete payment to confirm"
	GetAppointmentSuccessMessage      = "get appointments successfully"
	CancelAppointmentSuccessMessage   = "appointment canceled successfully"
	CompleteAppointmentSuccessMessage = "appointment marked as completed"
	GetReceiptSuccessMessage          = "receipt generated successfully"
	CreatePaymentOrderSuccessMessage  = "payment order created successfully"
	VerifyPaymentSuccessMessage       = "payment verified and appointment confirmed"
	GetPaymentConfigSuccessMessage    = "get payment config successfully"
	GetAdminStatsSuccessMessage       = "get stats successfully"
)
