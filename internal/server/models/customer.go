package models

import "time"

type Customer struct {
	ID               int64
	CompanyName      string
	ContactFirstName string
	ContactLastName  string
	ContactEmail     string
	ContactPhone     string
	Address          string
	City             string
	State            string
	Country          string
	PostalCode       string
	Industry         string
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ContactName is the display name used in outreach emails.
func (c *Customer) ContactName() string {
	return JoinName(c.ContactFirstName, c.ContactLastName)
}
