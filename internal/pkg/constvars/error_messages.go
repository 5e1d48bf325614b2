package constvars

// Validation messages mapper
var CustomValidationErrorMessages = map[string]string{
	"required":    "is required",
	"min":         "must be at least %s characters long",
	"max":         "maximum at %s characters long",
	"len":         "must be %s characters long",
	"oneof":       "must be one of [%s]",
	"date_only":   "must be a date in YYYY-MM-DD format",
	"time_of_day": "must be a time in HH:MM format",
}

// Tags that require parameter substitution
var TagsWithParams = map[string]bool{
	"min":   true,
	"max":   true,
	"len":   true,
	"oneof": true,
}

// Error messages for clients
const (
	ErrClientCannotProcessRequest          = "failed to process your request"
	ErrClientSomethingWrongWithApplication = "there is something wrong with the application"
	ErrClientServerLongRespond             = "the app taking too long to respond"
	ErrClientNotAuthorized                 = "you can't access this feature"
	ErrClientNotLoggedIn                   = "your session ended, please login again"
	ErrClientDoctorNotFound                = "doctor not found"
	ErrClientAppointmentNotFound           = "appointment not found"
	ErrClientCapacityExceeded              = "doctor's limit for this day is reached, please try another date"
	ErrClientNotAllowedToModifyAppointment = "you are not authorized to modify this appointment"
	ErrClientInvalidAppointmentTransition  = "this appointment can no longer be changed"
	ErrClientPaymentCouldNotBeConfirmed    = "payment could not be confirmed, please retry"
	ErrClientPaymentGatewayUnavailable     = "payment provider is unavailable, please retry in a moment"
	ErrClientAppointmentAlreadyPaid        = "this appointment is already paid"
	ErrClientAppointmentNotPayable         = "this appointment can no longer be paid"
	ErrClientOrderCreationInProgress       = "a payment order for this appointment is already being created"
	ErrClientReceiptNotAvailable           = "receipt is only available for paid appointments"
	ErrClientInvalidAPIKey                 = "invalid api key"
	ErrClientTooManyRequests               = "too many requests, please slow down"
)

// Error messages for developers
const (
	ErrDevInvalidInput                 = "invalid input"
	ErrDevValidationFailed             = "validation failed"
	ErrDevCannotParseJSON              = "cannot parse JSON"
	ErrDevCannotMarshalJSON            = "cannot marshal JSON"
	ErrDevURLParamIDValidationFailed   = "url param %s validation failed"
	ErrDevServerDeadlineExceeded       = "server deadline exceeded"
	ErrDevMissingRequestID             = "request id missing from context"
	ErrDevMissingSessionData           = "session data missing from context"
	ErrDevDoctorNotFound               = "doctor %s not found"
	ErrDevAppointmentNotFound          = "appointment %s not found"
	ErrDevCapacityExceeded             = "doctor %s reached max patients for %s"
	ErrDevForbiddenAppointmentAccess   = "user %s with role %s cannot modify appointment %s"
	ErrDevInvalidAppointmentTransition = "appointment %s cannot move from %s to %s"
	ErrDevSignatureMismatch            = "payment signature mismatch"
	ErrDevPaymentGatewayCreateOrder    = "payment gateway failed to create order"
	ErrDevPaymentGatewayMalformed      = "payment gateway returned malformed order"
	ErrDevPaymentGatewayFetchOrder     = "payment gateway failed to fetch order %s"
	ErrDevPaymentOrderMismatch         = "order %s was not created for appointment %s"
	ErrDevPaymentIDAlreadyRecorded     = "payment %s already recorded on another appointment"
	ErrDevAppointmentAlreadyPaid       = "appointment %s already paid"
	ErrDevAppointmentNotPayable        = "appointment %s is %s and cannot be paid"
	ErrDevOrderCreationInProgress      = "order creation lock for appointment %s held by another request"
	ErrDevReceiptNotAvailable          = "appointment %s payment status is %s"
	ErrDevRenderReceipt                = "failed to render receipt pdf"

	// Authentication messages
	ErrDevAuthSigningMethod = "unexpected signing method"
	ErrDevAuthTokenInvalid  = "invalid token"
	ErrDevAuthTokenMissing  = "token missing"
	ErrDevAuthClaimsMissing = "token claims missing id or role"
	ErrDevAuthUserNotExists = "user in token no longer exists"
	ErrDevInvalidAPIKey     = "api key does not match"
	ErrDevTooManyRequests   = "client %s is rate limited"

	// Storage messages
	ErrDevPostgresDBBeginTx      = "failed to begin postgres transaction"
	ErrDevPostgresDBCommitTx     = "failed to commit postgres transaction"
	ErrDevPostgresDBFindData     = "failed to find data in postgres"
	ErrDevPostgresDBInsertData   = "failed to insert data into postgres"
	ErrDevPostgresDBUpdateData   = "failed to update data in postgres"
	ErrDevPostgresDBLock         = "failed to acquire postgres lock"
	ErrDevPostgresDBBuildQuery   = "failed to build postgres query"
	ErrDevMongoDBFindDocument    = "failed to find document in mongodb"
	ErrDevMongoDBCountDocuments  = "failed to count documents in mongodb"
	ErrDevRedisSet               = "failed to set data in redis"
	ErrDevRedisGet               = "failed to get data from redis with key %s"
	ErrDevRedisDelete            = "failed to delete data in redis"
	ErrDevRedisUnlock            = "failed to release redis lock"
	ErrDevRedisRefresh           = "failed to refresh redis lock"
	ErrDevRabbitMQPublishMessage = "failed to publish message to rabbitmq queue %s"
	ErrDevRabbitMQConsumeMessage = "failed to consume message from rabbitmq queue %s"
	ErrDevMinioCreateObject      = "failed to create object in minio bucket %s"
	ErrDevMinioPresignObject     = "failed to presign object in minio bucket %s"
	ErrDevSMTPSendEmail          = "failed to send email through smtp host %s"
)
