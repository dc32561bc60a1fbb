package grpc

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophcrm/internal/common"
	"github.com/dmitrijs2005/gophcrm/internal/server/auth"
	"github.com/dmitrijs2005/gophcrm/internal/server/models"
	"github.com/dmitrijs2005/gophcrm/internal/server/services"
)

var methods = map[string]method{
	"Ping":           unary((*GRPCServer).Ping),
	"Login":          unary((*GRPCServer).Login),
	"Logout":         unary((*GRPCServer).Logout),
	"ChangePassword": unary((*GRPCServer).ChangePassword),
	"Me":             unary((*GRPCServer).Me),

	"ListCustomers":   unary((*GRPCServer).ListCustomers),
	"GetCustomer":     unary((*GRPCServer).GetCustomer),
	"CreateCustomer":  unary((*GRPCServer).CreateCustomer),
	"UpdateCustomer":  unary((*GRPCServer).UpdateCustomer),
	"DeleteCustomer":  unary((*GRPCServer).DeleteCustomer),
	"CustomerHistory": unary((*GRPCServer).CustomerHistory),

	"GeneratePreview":   unary((*GRPCServer).GeneratePreview),
	"SendBatch":         unary((*GRPCServer).SendBatch),
	"ListEmailLogs":     unary((*GRPCServer).ListEmailLogs),
	"EmailStats":        unary((*GRPCServer).EmailStats),
	"UpdateEmailStatus": unary((*GRPCServer).UpdateEmailStatus),
	"ExportEmailLogs":   unary((*GRPCServer).ExportEmailLogs),

	"ListTemplates":  unary((*GRPCServer).ListTemplates),
	"SaveTemplate":   unary((*GRPCServer).SaveTemplate),
	"DeleteTemplate": unary((*GRPCServer).DeleteTemplate),

	"ListRoles":  unary((*GRPCServer).ListRoles),
	"CreateRole": unary((*GRPCServer).CreateRole),
	"DeleteRole": unary((*GRPCServer).DeleteRole),
	"ListUsers":  unary((*GRPCServer).ListUsers),
	"CreateUser": unary((*GRPCServer).CreateUser),
	"DeleteUser": unary((*GRPCServer).DeleteUser),
}

func caller(ctx context.Context) (auth.Identity, error) {
	id, ok := IdentityFrom(ctx)
	if !ok {
		return auth.Identity{}, common.ErrorUnauthorized
	}
	return id, nil
}

func (s *GRPCServer) Ping(ctx context.Context, req *empty) (*pingResponse, error) {
	return &pingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *loginRequest) (*loginResponse, error) {
	res, err := s.deps.Auth.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}
	return &loginResponse{Token: res.Token, ExpiresAt: res.ExpiresAt, User: toUserDTO(res.User)}, nil
}

func (s *GRPCServer) Logout(ctx context.Context, req *empty) (*empty, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	s.deps.Auth.Logout(ctx, id.UserID)
	return &empty{}, nil
}

// ChangePassword reports a wrong current password as changed=false rather
// than as an error.
func (s *GRPCServer) ChangePassword(ctx context.Context, req *changePasswordRequest) (*changePasswordResponse, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	err = s.deps.Auth.ChangePassword(ctx, id.UserID, req.CurrentPassword, req.NewPassword)
	if errors.Is(err, common.ErrPasswordMismatch) {
		return &changePasswordResponse{Changed: false}, nil
	}
	if err != nil {
		return nil, err
	}
	return &changePasswordResponse{Changed: true}, nil
}

func (s *GRPCServer) Me(ctx context.Context, req *empty) (*userDTO, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.deps.Auth.CurrentUser(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	dto := toUserDTO(u)
	return &dto, nil
}

// --- customers ---

func (s *GRPCServer) ListCustomers(ctx context.Context, req *listRequest) (*pageDTO[customerDTO], error) {
	page, err := s.deps.Customers.List(ctx, req.filter())
	if err != nil {
		return nil, err
	}
	out := toPage(page, toCustomerDTO)
	return &out, nil
}

func (s *GRPCServer) GetCustomer(ctx context.Context, req *idRequest) (*customerDTO, error) {
	c, err := s.deps.Customers.Get(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	dto := toCustomerDTO(c)
	return &dto, nil
}

func (s *GRPCServer) CreateCustomer(ctx context.Context, req *customerDTO) (*customerDTO, error) {
	c, err := s.deps.Customers.Create(ctx, req.model())
	if err != nil {
		return nil, err
	}
	dto := toCustomerDTO(c)
	return &dto, nil
}

func (s *GRPCServer) UpdateCustomer(ctx context.Context, req *customerDTO) (*customerDTO, error) {
	if req.ID == 0 {
		return nil, fmt.Errorf("%w: id is required", common.ErrorValidation)
	}
	c := req.model()
	if err := s.deps.Customers.Update(ctx, c); err != nil {
		return nil, err
	}
	dto := toCustomerDTO(c)
	return &dto, nil
}

func (s *GRPCServer) DeleteCustomer(ctx context.Context, req *idRequest) (*empty, error) {
	if err := s.deps.Customers.Delete(ctx, req.ID); err != nil {
		return nil, err
	}
	return &empty{}, nil
}

func (s *GRPCServer) CustomerHistory(ctx context.Context, req *idRequest) (*emailsResponse, error) {
	logs, err := s.deps.Customers.History(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return &emailsResponse{Emails: toEmailLogDTOs(logs)}, nil
}

// --- outreach ---

// GeneratePreview uses the stored template when template_id is given,
// otherwise the inline template text.
func (s *GRPCServer) GeneratePreview(ctx context.Context, req *generatePreviewRequest) (*previewsResponse, error) {
	template := req.Template
	if req.TemplateID != "" {
		t, err := s.deps.Templates.Get(ctx, req.TemplateID)
		if err != nil {
			return nil, err
		}
		template = t.Content
	}
	if template == "" {
		return nil, fmt.Errorf("%w: template is required", common.ErrorValidation)
	}

	previews, err := s.deps.Outreach.GeneratePreviewForCustomers(ctx, req.CustomerIDs, template)
	if err != nil {
		return nil, err
	}

	out := make([]previewDTO, 0, len(previews))
	for _, p := range previews {
		out = append(out, previewDTO(p))
	}
	return &previewsResponse{Previews: out}, nil
}

// SendBatch sends the approved previews as the calling user. With
// only_compliant set, non-compliant previews are skipped and counted.
func (s *GRPCServer) SendBatch(ctx context.Context, req *sendBatchRequest) (*sendBatchResponse, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	previews := make([]models.GeneratedEmail, 0, len(req.Previews))
	skipped := 0
	for _, p := range req.Previews {
		if req.OnlyCompliant && !p.IsCompliant {
			skipped++
			continue
		}
		previews = append(previews, models.GeneratedEmail(p))
	}

	res := s.deps.Outreach.SendBatch(ctx, id.UserID, previews)

	out := &sendBatchResponse{
		Attempted: res.Attempted,
		Sent:      res.Sent,
		Failed:    res.Failed,
		Skipped:   skipped,
		Results:   make([]sendResultDTO, 0, len(res.Results)),
	}
	for _, r := range res.Results {
		out.Results = append(out.Results, sendResultDTO(r))
	}
	return out, nil
}

func (s *GRPCServer) ListEmailLogs(ctx context.Context, req *listRequest) (*pageDTO[emailLogDTO], error) {
	page, err := s.deps.EmailLogs.List(ctx, req.filter())
	if err != nil {
		return nil, err
	}
	out := toPage(page, toEmailLogDTO)
	return &out, nil
}

func (s *GRPCServer) EmailStats(ctx context.Context, req *statsRequest) (*statsResponse, error) {
	stats, err := s.deps.EmailLogs.Stats(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.deps.EmailLogs.Recent(ctx, req.RecentLimit)
	if err != nil {
		return nil, err
	}

	out := &statsResponse{Stats: make([]statDTO, 0, len(stats)), Recent: toEmailLogDTOs(recent)}
	for _, st := range stats {
		out.Stats = append(out.Stats, statDTO{Status: string(st.Status), Count: st.Count})
	}
	return out, nil
}

func (s *GRPCServer) UpdateEmailStatus(ctx context.Context, req *updateStatusRequest) (*empty, error) {
	st, err := models.ParseEmailStatus(req.Status)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	if err := s.deps.Outreach.UpdateStatus(ctx, req.ID, st, req.ErrorMessage); err != nil {
		return nil, err
	}
	return &empty{}, nil
}

// ExportEmailLogs returns the export inline, or a download link when
// archive is set.
func (s *GRPCServer) ExportEmailLogs(ctx context.Context, req *exportRequest) (*exportResponse, error) {
	format, err := services.ParseExportFormat(req.Format)
	if err != nil {
		return nil, err
	}

	if req.Archive {
		a, err := s.deps.Export.Archive(ctx, format)
		if err != nil {
			return nil, err
		}
		return &exportResponse{Format: string(format), Key: a.Key, URL: a.URL, ExpiresAt: &a.ExpiresAt}, nil
	}

	e, err := s.deps.Export.EmailLogs(ctx, format)
	if err != nil {
		return nil, err
	}
	return &exportResponse{Format: string(e.Format), ContentType: e.ContentType, Data: string(e.Data)}, nil
}

// --- templates ---

func (s *GRPCServer) ListTemplates(ctx context.Context, req *empty) (*templatesResponse, error) {
	ts, err := s.deps.Templates.List(ctx)
	if err != nil {
		return nil, err
	}
	out := &templatesResponse{Templates: make([]templateDTO, 0, len(ts))}
	for i := range ts {
		out.Templates = append(out.Templates, toTemplateDTO(&ts[i]))
	}
	return out, nil
}

func (s *GRPCServer) SaveTemplate(ctx context.Context, req *templateDTO) (*templateDTO, error) {
	t, err := s.deps.Templates.Save(ctx, &models.EmailTemplate{ID: req.ID, Name: req.Name, Subject: req.Subject, Content: req.Content})
	if err != nil {
		return nil, err
	}
	dto := toTemplateDTO(t)
	return &dto, nil
}

func (s *GRPCServer) DeleteTemplate(ctx context.Context, req *templateIDRequest) (*empty, error) {
	if err := s.deps.Templates.Delete(ctx, req.ID); err != nil {
		return nil, err
	}
	return &empty{}, nil
}

// --- roles and users ---

func (s *GRPCServer) ListRoles(ctx context.Context, req *empty) (*rolesResponse, error) {
	roles, err := s.deps.Roles.List(ctx)
	if err != nil {
		return nil, err
	}
	out := &rolesResponse{Roles: make([]roleDTO, 0, len(roles))}
	for _, r := range roles {
		out.Roles = append(out.Roles, roleDTO{ID: r.ID, Name: r.Name, Description: r.Description})
	}
	return out, nil
}

func (s *GRPCServer) CreateRole(ctx context.Context, req *createRoleRequest) (*roleDTO, error) {
	r, err := s.deps.Roles.Create(ctx, req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	return &roleDTO{ID: r.ID, Name: r.Name, Description: r.Description}, nil
}

func (s *GRPCServer) DeleteRole(ctx context.Context, req *idRequest) (*empty, error) {
	if err := s.deps.Roles.Delete(ctx, req.ID); err != nil {
		return nil, err
	}
	return &empty{}, nil
}

func (s *GRPCServer) ListUsers(ctx context.Context, req *listRequest) (*pageDTO[userDTO], error) {
	page, err := s.deps.Users.List(ctx, req.filter())
	if err != nil {
		return nil, err
	}
	out := toPage(page, toUserDTO)
	return &out, nil
}

func (s *GRPCServer) CreateUser(ctx context.Context, req *createUserRequest) (*userDTO, error) {
	u, err := s.deps.Users.Create(ctx, &models.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		RoleID:    req.RoleID,
	}, req.Password)
	if err != nil {
		return nil, err
	}
	dto := toUserDTO(u)
	return &dto, nil
}

// DeleteUser deactivates a user. Callers cannot deactivate themselves.
func (s *GRPCServer) DeleteUser(ctx context.Context, req *idRequest) (*empty, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if id.UserID == req.ID {
		return nil, fmt.Errorf("%w: cannot delete the signed-in user", common.ErrorValidation)
	}
	if err := s.deps.Users.Delete(ctx, req.ID); err != nil {
		return nil, err
	}
	return &empty{}, nil
}
