package models

import (
	"fmt"
	"time"
)

type EmailStatus string

const (
	EmailStatusPending   EmailStatus = "pending"
	EmailStatusSent      EmailStatus = "sent"
	EmailStatusFailed    EmailStatus = "failed"
	EmailStatusCancelled EmailStatus = "cancelled"
)

func ParseEmailStatus(s string) (EmailStatus, error) {
	switch st := EmailStatus(s); st {
	case EmailStatusPending, EmailStatusSent, EmailStatusFailed, EmailStatusCancelled:
		return st, nil
	default:
		return "", fmt.Errorf("unknown email status %q", s)
	}
}

// EmailLog is a persisted record of an email handed to a transport.
// CustomerID is nil once the customer has been removed.
type EmailLog struct {
	ID             int64
	CustomerID     *int64
	UserID         int64
	EmailType      string
	Subject        string
	Content        string
	RecipientEmail string
	SentAt         time.Time
	Status         EmailStatus
	ErrorMessage   *string
}

// EmailStat is the number of log entries in one status.
type EmailStat struct {
	Status EmailStatus
	Count  int
}
