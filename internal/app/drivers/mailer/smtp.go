package mailer

import (
	"telemed-service/internal/app/config"

	"github.com/go-gomail/gomail"
)

// NewSMTPDialer prepares the relay connection settings. It does not dial;
// each send opens its own session through DialAndSend.
func NewSMTPDialer(driverConfig *config.DriverConfig) *gomail.Dialer {
	return gomail.NewDialer(
		driverConfig.SMTP.Host,
		driverConfig.SMTP.Port,
		driverConfig.SMTP.Username,
		driverConfig.SMTP.Password,
	)
}
