package models

import "time"

// EmailTemplate is a reusable outreach template.
type EmailTemplate struct {
	ID        string
	Name      string
	Subject   string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
