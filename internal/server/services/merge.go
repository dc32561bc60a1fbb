package services

import (
	"strings"

	"github.com/dmitrijs2005/gophcrm/internal/server/models"
)

// Merge placeholders recognised in outreach templates. Matching is literal
// and case-sensitive; anything else in braces is left untouched.
const (
	PlaceholderContactName  = "{ContactName}"
	PlaceholderCustomerName = "{CustomerName}"
	PlaceholderCompanyName  = "{CompanyName}"
	PlaceholderFirstName    = "{FirstName}"
	PlaceholderLastName     = "{LastName}"
)

// MergeTemplate substitutes the customer's fields into template.
func MergeTemplate(template string, c *models.Customer) string {
	contact := c.ContactName()
	r := strings.NewReplacer(
		PlaceholderContactName, contact,
		PlaceholderCustomerName, contact,
		PlaceholderCompanyName, strings.TrimSpace(c.CompanyName),
		PlaceholderFirstName, strings.TrimSpace(c.ContactFirstName),
		PlaceholderLastName, strings.TrimSpace(c.ContactLastName),
	)
	return r.Replace(template)
}
