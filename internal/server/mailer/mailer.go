// Package mailer hands outreach emails to a delivery transport: a logging
// simulation, an SMTP relay or a RabbitMQ queue.
package mailer

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophcrm/internal/logging"
	"github.com/dmitrijs2005/gophcrm/internal/server/config"
)

// Message is one email ready for delivery. EmailLogID ties it back to the
// log entry so a consumer can confirm delivery later.
type Message struct {
	EmailLogID int64  `json:"email_log_id"`
	CustomerID int64  `json:"customer_id"`
	To         string `json:"to"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// New returns the transport selected by cfg.MailTransport.
func New(cfg *config.Config, logger logging.Logger) (Sender, error) {
	switch cfg.MailTransport {
	case config.MailTransportLog, "":
		return NewLogSender(logger), nil
	case config.MailTransportSMTP:
		return NewSMTPSender(cfg, logger), nil
	case config.MailTransportAMQP:
		return NewQueueSender(cfg.AMQPURL, cfg.AMQPQueue, logger), nil
	default:
		return nil, fmt.Errorf("unknown mail transport %q", cfg.MailTransport)
	}
}

// LogSender only logs the email. It stands in for a real transport in
// development.
type LogSender struct {
	logger logging.Logger
}

func NewLogSender(logger logging.Logger) *LogSender {
	return &LogSender{logger: logger.With("module", "mailer", "transport", "log")}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.Info(ctx, "[SMTP SIM] sending email",
		"to", msg.To, "subject", msg.Subject, "customer_id", msg.CustomerID, "email_log_id", msg.EmailLogID)
	return nil
}
