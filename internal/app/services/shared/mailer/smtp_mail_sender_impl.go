package mailer

import (
	"context"
	"telemed-service/internal/app/contracts"
	"telemed-service/internal/pkg/constvars"
	"telemed-service/internal/pkg/dto/requests"
	"telemed-service/internal/pkg/exceptions"

	"github.com/go-gomail/gomail"
	"go.uber.org/zap"
)

// Dialer is the part of *gomail.Dialer the sender uses.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type smtpMailSender struct {
	dialer      Dialer
	host        string
	emailSender string
	Log         *zap.Logger
}

func NewSMTPMailSender(dialer *gomail.Dialer, emailSender string, logger *zap.Logger) contracts.MailSender {
	return newSMTPMailSender(dialer, dialer.Host, emailSender, logger)
}

func newSMTPMailSender(dialer Dialer, host, emailSender string, logger *zap.Logger) *smtpMailSender {
	return &smtpMailSender{
		dialer:      dialer,
		host:        host,
		emailSender: emailSender,
		Log:         logger,
	}
}

func (s *smtpMailSender) Send(ctx context.Context, payload *requests.EmailPayload) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.Log.Info("smtpMailSender.Send called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingMessageIDKey, payload.ID),
	)

	m := gomail.NewMessage()
	m.SetHeader("From", s.emailSender)
	m.SetHeader("To", payload.To)
	m.SetHeader("Subject", payload.Subject)
	m.SetBody(constvars.MIMETextPlain, payload.Body)

	if err := s.dialer.DialAndSend(m); err != nil {
		s.Log.Error("smtpMailSender.Send error dialing smtp relay",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingMessageIDKey, payload.ID),
			zap.Error(err),
		)
		return exceptions.ErrSMTPSendEmail(err, s.host)
	}
	return nil
}
