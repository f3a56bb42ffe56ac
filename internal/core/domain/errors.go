package domain

import "errors"

// Validation failures returned to callers. None of these are retryable;
// storage failures are wrapped separately and surface as internal errors.
var (
	ErrInvalidCredential       = errors.New("invalid credentials")
	ErrExpiredToken            = errors.New("token expired")
	ErrInactiveUser            = errors.New("user is inactive")
	ErrInsufficientRole        = errors.New("insufficient role")
	ErrOwnershipViolation      = errors.New("target is managed by another admin")
	ErrImpersonationNotAllowed = errors.New("impersonation not allowed for this role")
	ErrTargetNotFound          = errors.New("user not found")
	ErrDuplicateUsername       = errors.New("username already exists")
	ErrMissingField            = errors.New("required field missing")
)
