// Package common defines shared constants and sentinel errors used across
// the EduPlatform server and client. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Registration and login.
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrRateLimited        = errors.New("too many failed login attempts")
	ErrorValidation       = errors.New("validation error")

	// ErrorConfiguration is fatal and only ever returned at startup.
	ErrorConfiguration = errors.New("configuration error")

	// Token and access policy errors.
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidAuthHeader = errors.New("invalid authorization header")

	ErrMediaNotConfigured = errors.New("media storage is not configured")
)
