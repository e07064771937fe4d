// Package common defines shared constants and sentinel errors used across
// the client and server layers of georemind. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Local persistence errors. ErrStorage covers read/write failures of the
	// underlying store; ErrParse covers stored values that no longer decode.
	ErrStorage = errors.New("storage failure")
	ErrParse   = errors.New("malformed stored data")

	// Service-level errors (generic/internal flow control).
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")

	// Auth errors (invalid, malformed or expired token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
