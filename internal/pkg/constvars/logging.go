package constvars

const (
	LoggingRequestIDKey      = "request_id"
	LoggingUserIDKey         = "user_id"
	LoggingRoleKey           = "role"
	LoggingAppointmentIDKey  = "appointment_id"
	LoggingDoctorIDKey       = "doctor_id"
	LoggingDateKey           = "date"
	LoggingOrderIDKey        = "order_id"
	LoggingPaymentIDKey      = "payment_id"
	LoggingAmountKey         = "amount"
	LoggingReceiptKey        = "receipt"
	LoggingResponseKey       = "response"
	LoggingRequestKey        = "request"
	LoggingResponseLengthKey = "response_length"
	LoggingErrorCodeKey      = "error_code"
	LoggingErrorMessageKey   = "error_message"
	LoggingOperationKey      = "operation"
	LoggingDurationKey       = "duration"
	LoggingSuccessKey        = "success"
	LoggingStatusCodeKey     = "status_code"
	LoggingMethodKey         = "method"
	LoggingEndpointKey       = "endpoint"
	LoggingRemoteAddrKey     = "remote_addr"
	LoggingUserAgentKey      = "user_agent"
	LoggingQueryKey          = "query"
	LoggingQueueNameKey      = "queue_name"
	LoggingMessageIDKey      = "message_id"
	LoggingDeliveryTagKey    = "delivery_tag"
	LoggingCountKey          = "count"
	LoggingFailedCountKey    = "failed_count"
	LoggingRedisKey          = "redis_key"
	LoggingObjectKey         = "object_key"
	LoggingCronSpecKey       = "cron_spec"

	LoggingLockValueKey          = "lock_value"
	LoggingLockExpirationTimeKey = "lock_expiration_time"
	LoggingLockStoredValueKey    = "lock_stored_value"
	LoggingLockExpectedValueKey  = "lock_expected_value"
)

const (
	SecuritySeverityHigh   = "high"
	SecuritySeverityMedium = "medium"
)

const (
	BusinessEventAppointmentBooked    = "appointment_booked"
	BusinessEventAppointmentCanceled  = "appointment_canceled"
	BusinessEventAppointmentCompleted = "appointment_completed"
	BusinessEventPaymentOrderCreated  = "payment_order_created"
	BusinessEventPaymentSettled       = "payment_settled"
	SecurityEventSignatureMismatch    = "payment_signature_mismatch"
	SecurityEventPaymentOrderMismatch = "payment_order_mismatch"
	SecurityEventPaymentIDReplayed    = "payment_id_replayed"
	SecurityEventPaymentVerifyCalled  = "payment_verification_received"
	SecurityEventInvalidBearerToken   = "invalid_bearer_token"
	SecurityEventRoleNotAllowed       = "role_not_allowed"
)
