// Package admin provisions the first administrator account of a fresh
// installation from an interactive terminal session.
package admin

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/gophcrm/internal/common"
	"github.com/dmitrijs2005/gophcrm/internal/logging"
	"github.com/dmitrijs2005/gophcrm/internal/server/models"
)

var (
	ErrUsernameRequired = errors.New("username is required")
	ErrPasswordsDiffer  = errors.New("passwords do not match")
)

type RoleService interface {
	GetByName(ctx context.Context, name string) (*models.Role, error)
	Create(ctx context.Context, name, description string) (*models.Role, error)
}

type UserService interface {
	Create(ctx context.Context, u *models.User, password string) (*models.User, error)
}

type Bootstrap struct {
	roles  RoleService
	users  UserService
	in     *bufio.Reader
	out    io.Writer
	logger logging.Logger
}

func NewBootstrap(roles RoleService, users UserService, in io.Reader, out io.Writer, logger logging.Logger) *Bootstrap {
	return &Bootstrap{
		roles:  roles,
		users:  users,
		in:     bufio.NewReader(in),
		out:    out,
		logger: logger.With("module", "admin_bootstrap"),
	}
}

// ensureRole returns the named role, creating it when the seed data is
// missing.
func (b *Bootstrap) ensureRole(ctx context.Context, name string) (*models.Role, error) {
	r, err := b.roles.GetByName(ctx, name)
	if err == nil {
		return r, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}
	b.logger.Info(ctx, "creating missing role", "role", name)
	return b.roles.Create(ctx, name, "Full system access")
}

// Run prompts for the account details and creates an active administrator.
func (b *Bootstrap) Run(ctx context.Context) (*models.User, error) {
	username, err := GetSimpleText(b.in, "Admin username", b.out)
	if err != nil {
		return nil, err
	}
	if username == "" {
		return nil, ErrUsernameRequired
	}

	email, err := GetSimpleText(b.in, "Admin email", b.out)
	if err != nil {
		return nil, err
	}
	first, err := GetSimpleText(b.in, "First name (optional)", b.out)
	if err != nil {
		return nil, err
	}
	last, err := GetSimpleText(b.in, "Last name (optional)", b.out)
	if err != nil {
		return nil, err
	}

	pw, err := GetPassword("Enter password: ", b.out)
	if err != nil {
		return nil, err
	}
	defer wipe(pw)
	confirm, err := GetPassword("Repeat password: ", b.out)
	if err != nil {
		return nil, err
	}
	defer wipe(confirm)
	if !bytes.Equal(pw, confirm) {
		return nil, ErrPasswordsDiffer
	}

	role, err := b.ensureRole(ctx, common.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("admin role: %w", err)
	}

	u, err := b.users.Create(ctx, &models.User{
		Username:  username,
		Email:     email,
		FirstName: first,
		LastName:  last,
		RoleID:    role.ID,
	}, string(pw))
	if err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}

	b.logger.Info(ctx, "administrator created", "user_id", u.ID, "username", u.Username)
	fmt.Fprintf(b.out, "Administrator %q created (id %d)\n", u.Username, u.ID)
	return u, nil
}
