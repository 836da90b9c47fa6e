package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")

	// Verification-flow sentinels. Both map to 400 at the transport layer,
	// but callers need to tell them apart from a plain bad request.
	ErrExpired      = errors.New("expired")
	ErrCodeMismatch = errors.New("code mismatch")
)
