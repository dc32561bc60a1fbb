// Package common defines sentinel errors and shared constants used across
// the gophcrm server and its tools. Callers should match them with errors.Is.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")
	ErrorInUse         = errors.New("still referenced")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")
	ErrorValidation   = errors.New("validation error")

	// Token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Credential errors. The messages are shown to end users, so they never
	// reveal whether the username or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountLocked      = errors.New("account is temporarily locked, please try again later")
	ErrPasswordMismatch   = errors.New("current password is incorrect")

	// Text generation errors. These never leave the outreach service.
	ErrGenerationFailed = errors.New("text generation failed")
)
