package requests

// EmailPayload is the message body published to the mail queue.
type EmailPayload struct {
	ID          string `json:"id"`
	To          string `json:"to"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	FailedCount int    `json:"failed_count"`
}

// QueuedEmail is a fetched, not yet acknowledged mail queue delivery.
type QueuedEmail struct {
	DeliveryTag uint64
	Payload     EmailPayload
}
