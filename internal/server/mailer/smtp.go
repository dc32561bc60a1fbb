package mailer

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophcrm/internal/logging"
	"github.com/dmitrijs2005/gophcrm/internal/server/config"
	"gopkg.in/gomail.v2"
)

// dialAndSend is a seam for gomail.Dialer.DialAndSend.
var dialAndSend = func(d *gomail.Dialer, m ...*gomail.Message) error {
	return d.DialAndSend(m...)
}

const maxBackoff = 30 * time.Second

type SMTPSender struct {
	dialer  *gomail.Dialer
	from    string
	retries int
	backoff time.Duration
	logger  logging.Logger
}

func NewSMTPSender(cfg *config.Config, logger logging.Logger) *SMTPSender {
	retries := cfg.MailRetries
	if retries < 0 {
		retries = 0
	}
	return &SMTPSender{
		dialer:  gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:    cfg.MailFrom,
		retries: retries,
		backoff: 100 * time.Millisecond,
		logger:  logger.With("module", "mailer", "transport", "smtp"),
	}
}

// Send delivers msg, retrying with doubling backoff. It gives up early when
// ctx is done.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	backoff := s.backoff
	var lastErr error

	for attempt := 0; attempt <= s.retries; attempt++ {
		if lastErr = dialAndSend(s.dialer, m); lastErr == nil {
			s.logger.Info(ctx, "email sent", "to", msg.To, "attempt", attempt+1)
			return nil
		}
		if attempt == s.retries {
			break
		}

		s.logger.Warn(ctx, "send attempt failed", "to", msg.To, "attempt", attempt+1, "error", lastErr, "retry_in", backoff)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}

	s.logger.Error(ctx, "giving up on email", "to", msg.To, "attempts", s.retries+1, "error", lastErr)
	return lastErr
}
