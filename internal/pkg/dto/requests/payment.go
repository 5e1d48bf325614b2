package requests

type CreatePaymentOrder struct {
	AppointmentID string `json:"appointmentId" validate:"required"`
}

// VerifyPayment carries the checkout proof using the gateway's own field names.
type VerifyPayment struct {
	AppointmentID    string `json:"appointmentId" validate:"required"`
	GatewayOrderID   string `json:"razorpay_order_id" validate:"required"`
	GatewayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	GatewaySignature string `json:"razorpay_signature" validate:"required"`
}

type GatewayOrder struct {
	AmountMinorUnits int64
	Currency         string
	Receipt          string
	Notes            map[string]string
}
