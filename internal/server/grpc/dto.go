package grpc

import (
	"time"

	"github.com/dmitrijs2005/gophcrm/internal/server/models"
)

type empty struct{}

type idRequest struct {
	ID int64 `json:"id"`
}

type templateIDRequest struct {
	ID string `json:"id"`
}

type listRequest struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Search   string `json:"search"`
}

func (r *listRequest) filter() models.ListFilter {
	return models.ListFilter{Page: r.Page, PageSize: r.PageSize, Search: r.Search}.Normalize()
}

type pageDTO[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"total_count"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

func toPage[M any, T any](p *models.Page[M], conv func(*M) T) pageDTO[T] {
	items := make([]T, 0, len(p.Items))
	for i := range p.Items {
		items = append(items, conv(&p.Items[i]))
	}
	return pageDTO[T]{Items: items, TotalCount: p.TotalCount, Page: p.Page, PageSize: p.PageSize, TotalPages: p.TotalPages()}
}

// --- auth ---

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      userDTO   `json:"user"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type changePasswordResponse struct {
	Changed bool `json:"changed"`
}

// --- users and roles ---

type userDTO struct {
	ID        int64      `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	FullName  string     `json:"full_name"`
	RoleID    int64      `json:"role_id"`
	Role      string     `json:"role"`
	IsActive  bool       `json:"is_active"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

func toUserDTO(u *models.User) userDTO {
	return userDTO{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FullName:  u.FullName(),
		RoleID:    u.RoleID,
		Role:      u.RoleName,
		IsActive:  u.IsActive,
		LastLogin: u.LastLogin,
	}
}

type createUserRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	RoleID    int64  `json:"role_id"`
	Password  string `json:"password"`
}

type roleDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type rolesResponse struct {
	Roles []roleDTO `json:"roles"`
}

type createRoleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// --- customers ---

type customerDTO struct {
	ID               int64     `json:"id"`
	CompanyName      string    `json:"company_name"`
	ContactFirstName string    `json:"contact_first_name"`
	ContactLastName  string    `json:"contact_last_name"`
	ContactName      string    `json:"contact_name,omitempty"`
	ContactEmail     string    `json:"contact_email"`
	ContactPhone     string    `json:"contact_phone"`
	Address          string    `json:"address"`
	City             string    `json:"city"`
	State            string    `json:"state"`
	Country          string    `json:"country"`
	PostalCode       string    `json:"postal_code"`
	Industry         string    `json:"industry"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func toCustomerDTO(c *models.Customer) customerDTO {
	return customerDTO{
		ID:               c.ID,
		CompanyName:      c.CompanyName,
		ContactFirstName: c.ContactFirstName,
		ContactLastName:  c.ContactLastName,
		ContactName:      c.ContactName(),
		ContactEmail:     c.ContactEmail,
		ContactPhone:     c.ContactPhone,
		Address:          c.Address,
		City:             c.City,
		State:            c.State,
		Country:          c.Country,
		PostalCode:       c.PostalCode,
		Industry:         c.Industry,
		IsActive:         c.IsActive,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

func (d *customerDTO) model() *models.Customer {
	return &models.Customer{
		ID:               d.ID,
		CompanyName:      d.CompanyName,
		ContactFirstName: d.ContactFirstName,
		ContactLastName:  d.ContactLastName,
		ContactEmail:     d.ContactEmail,
		ContactPhone:     d.ContactPhone,
		Address:          d.Address,
		City:             d.City,
		State:            d.State,
		Country:          d.Country,
		PostalCode:       d.PostalCode,
		Industry:         d.Industry,
		IsActive:         d.IsActive,
	}
}

// --- email logs ---

type emailLogDTO struct {
	ID             int64     `json:"id"`
	CustomerID     *int64    `json:"customer_id,omitempty"`
	UserID         int64     `json:"user_id"`
	EmailType      string    `json:"email_type"`
	Subject        string    `json:"subject"`
	Content        string    `json:"content"`
	RecipientEmail string    `json:"recipient_email"`
	SentAt         time.Time `json:"sent_at"`
	Status         string    `json:"status"`
	ErrorMessage   *string   `json:"error_message,omitempty"`
}

func toEmailLogDTO(e *models.EmailLog) emailLogDTO {
	return emailLogDTO{
		ID:             e.ID,
		CustomerID:     e.CustomerID,
		UserID:         e.UserID,
		EmailType:      e.EmailType,
		Subject:        e.Subject,
		Content:        e.Content,
		RecipientEmail: e.RecipientEmail,
		SentAt:         e.SentAt,
		Status:         string(e.Status),
		ErrorMessage:   e.ErrorMessage,
	}
}

func toEmailLogDTOs(logs []models.EmailLog) []emailLogDTO {
	out := make([]emailLogDTO, 0, len(logs))
	for i := range logs {
		out = append(out, toEmailLogDTO(&logs[i]))
	}
	return out
}

type emailsResponse struct {
	Emails []emailLogDTO `json:"emails"`
}

type statsRequest struct {
	RecentLimit int `json:"recent_limit"`
}

type statDTO struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type statsResponse struct {
	Stats  []statDTO     `json:"stats"`
	Recent []emailLogDTO `json:"recent"`
}

type updateStatusRequest struct {
	ID           int64  `json:"id"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

type exportRequest struct {
	Format  string `json:"format"`
	Archive bool   `json:"archive"`
}

type exportResponse struct {
	Format      string     `json:"format"`
	ContentType string     `json:"content_type,omitempty"`
	Data        string     `json:"data,omitempty"`
	Key         string     `json:"key,omitempty"`
	URL         string     `json:"url,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// --- outreach ---

type previewDTO struct {
	CustomerID        int64  `json:"customer_id"`
	ToEmail           string `json:"to_email"`
	Subject           string `json:"subject"`
	Body              string `json:"body"`
	IsCompliant       bool   `json:"is_compliant"`
	ComplianceSummary string `json:"compliance_summary"`
}

type generatePreviewRequest struct {
	CustomerIDs []int64 `json:"customer_ids"`
	Template    string  `json:"template"`
	TemplateID  string  `json:"template_id"`
}

type previewsResponse struct {
	Previews []previewDTO `json:"previews"`
}

type sendBatchRequest struct {
	Previews []previewDTO `json:"previews"`
	// OnlyCompliant drops non-compliant previews before sending.
	OnlyCompliant bool `json:"only_compliant"`
}

type sendResultDTO struct {
	CustomerID int64  `json:"customer_id"`
	EmailLogID int64  `json:"email_log_id,omitempty"`
	OK         bool   `json:"ok"`
	Error      string `json:"error,omitempty"`
}

type sendBatchResponse struct {
	Attempted int             `json:"attempted"`
	Sent      int             `json:"sent"`
	Failed    int             `json:"failed"`
	Skipped   int             `json:"skipped"`
	Results   []sendResultDTO `json:"results"`
}

// --- templates ---

type templateDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Subject   string    `json:"subject"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toTemplateDTO(t *models.EmailTemplate) templateDTO {
	return templateDTO{ID: t.ID, Name: t.Name, Subject: t.Subject, Content: t.Content, CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt}
}

type templatesResponse struct {
	Templates []templateDTO `json:"templates"`
}

type pingResponse struct {
	Status string `json:"status"`
}
