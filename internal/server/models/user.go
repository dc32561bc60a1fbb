package models

import (
	"strings"
	"time"
)

// User is a CRM operator account together with its credential state.
type User struct {
	ID                  int64
	Username            string
	Email               string
	FirstName           string
	LastName            string
	PasswordHash        string
	RoleID              int64
	RoleName            string
	IsActive            bool
	FailedLoginAttempts int
	LockoutEnd          *time.Time
	LastLogin           *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IsLockedOut reports whether a lockout is set and has not yet elapsed at now.
func (u *User) IsLockedOut(now time.Time) bool {
	return u.LockoutEnd != nil && !u.LockoutEnd.Before(now)
}

func (u *User) FullName() string {
	return JoinName(u.FirstName, u.LastName)
}

// JoinName joins the trimmed non-empty parts with a single space.
func JoinName(first, last string) string {
	parts := make([]string, 0, 2)
	for _, p := range []string{first, last} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}
