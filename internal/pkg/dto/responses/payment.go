package responses

type PaymentOrder struct {
	OrderID       string `json:"id"`
	AppointmentID string `json:"appointmentId"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	Receipt       string `json:"receipt"`
	Status        string `json:"status,omitempty"`
	KeyID         string `json:"keyId"`
}

type GatewayOrder struct {
	ID       string
	Amount   int64
	Currency string
	Receipt  string
	Status   string
}

type PaymentVerification struct {
	Verified    bool         `json:"verified"`
	Appointment *Appointment `json:"appointment,omitempty"`
}

type PaymentConfig struct {
	KeyID    string `json:"keyId"`
	Currency string `json:"currency"`
}
