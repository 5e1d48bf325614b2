package constvars

const (
	DefaultPlatformFee     int64 = 49
	DefaultPaymentCurrency       = "INR"
	MinorUnitsPerMajorUnit int64 = 100

	PaymentReceiptFormat  = "receipt_%s"
	PaymentSignatureJoint = "|"
)

const (
	RedisKeyPaymentOrderLockFormat = "payment:order:%s"
	RedisKeyNotificationLeaderLock = "notification:worker:leader"
)

const (
	ReceiptObjectKeyFormat = "receipts/%s.pdf"
)
