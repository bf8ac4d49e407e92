// Package common defines shared constants and sentinel errors used across
// the identity server and its clients. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound          = errors.New("not found")
	ErrorDuplicateUserName = errors.New("duplicate user name")
	ErrorDuplicateEmail    = errors.New("duplicate email")
	ErrRoleNotFound        = errors.New("role not found")
	ErrorInvalidProfile    = errors.New("invalid tasker profile")

	// Service-level errors.
	ErrorInternal = errors.New("internal error")

	// Identity errors surfaced to callers of the identity service.
	ErrDuplicateUser        = errors.New("duplicate user")
	ErrRegistrationFailed   = errors.New("registration failed")
	ErrAuthenticationFailed = errors.New("authentication failed")

	// Token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Throttling.
	ErrTooManyAttempts = errors.New("too many attempts")
)
