package constvars

type ContextKey string

const (
	CONTEXT_REQUEST_ID_KEY           ContextKey = "request_id"
	CONTEXT_SESSION_DATA_KEY         ContextKey = "session_data"
	CONTEXT_IS_CLIENT_REQUEST_ID_KEY ContextKey = "is_client_request_id"
	CONTEXT_API_KEY_AUTH_KEY         ContextKey = "api_key_auth"
)

const (
	REQUEST_ID_PREFIX = "TLMD_SVC_"
	API_KEY_SUBJECT   = "api-key-superadmin"
)

const (
	AppEnvProduction  = "production"
	AppEnvDevelopment = "development"
)

const (
	RolePatient    = "patient"
	RoleDoctor     = "doctor"
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
)

const (
	MongoCollectionUsers   = "users"
	MongoCollectionDoctors = "doctors"
)

const (
	DateOnlyLayout  = "2006-01-02"
	TimeOfDayLayout = "15:04"
)

const (
	DefaultConsultationFee   int64 = 500
	DefaultMaxPatientsPerDay       = 10
)
