package config

type InternalConfig struct {
	App                AppConfig             `mapstructure:"app"`
	JWT                AppJWT                `mapstructure:"jwt"`
	Mailer             AppMailer             `mapstructure:"mailer"`
	Minio              AppMinio              `mapstructure:"minio"`
	RabbitMQ           AppRabbitMQ           `mapstructure:"rabbitmq"`
	PaymentGateway     AppPaymentGateway     `mapstructure:"payment_gateway"`
	NotificationWorker AppNotificationWorker `mapstructure:"notification_worker"`
}

type AppConfig struct {
	Env                                   string `mapstructure:"env"`
	Port                                  string `mapstructure:"port"`
	Version                               string `mapstructure:"version"`
	Address                               string `mapstructure:"address"`
	Timezone                              string `mapstructure:"timezone"`
	EndpointPrefix                        string `mapstructure:"endpoint_prefix"`
	MaxRequests                           int    `mapstructure:"max_requests"`
	ShutdownTimeoutInSeconds              int    `mapstructure:"shutdown_timeout_in_seconds"`
	MaxTimeRequestsPerSeconds             int    `mapstructure:"max_time_requests_per_seconds"`
	RequestBodyLimitInMegabyte            int    `mapstructure:"request_body_limit_in_megabyte"`
	PaymentGatewayRequestTimeoutInSeconds int    `mapstructure:"payment_gateway_request_timeout_in_seconds"`
	MinioPreSignedUrlObjectExpiryInHours  int    `mapstructure:"minio_pre_signed_url_object_expiry_in_hours"`
	SuperadminAPIKey                      string `mapstructure:"superadmin_api_key"`
	SuperadminAPIKeyRateLimit             int    `mapstructure:"superadmin_api_key_rate_limit"`
}

type AppJWT struct {
	Secret string `mapstructure:"secret"`
}

type AppMailer struct {
	EmailSender string `mapstructure:"email_sender"`
}

type AppMinio struct {
	BucketName string `mapstructure:"bucket_name"`
}

type AppRabbitMQ struct {
	MailerQueue string `mapstructure:"mailer_queue"`
}

// AppPaymentGateway holds the Razorpay credentials and the platform pricing applied on top of the consultation fee.
type AppPaymentGateway struct {
	KeyID       string `mapstructure:"key_id"`
	KeySecret   string `mapstructure:"key_secret"`
	PlatformFee int64  `mapstructure:"platform_fee"`
	Currency    string `mapstructure:"currency"`
}

type AppNotificationWorker struct {
	// CronSpec is a robfig/cron expression, e.g. "@every 30s"
	CronSpec string `mapstructure:"cron_spec"`
	// MaxBatch is how many queued emails one run delivers
	MaxBatch int `mapstructure:"max_batch"`
	// MaxRetry is the failed_count at which a message moves to the dead letter queue
	MaxRetry int `mapstructure:"max_retry"`
}
