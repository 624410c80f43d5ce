package domain

import "errors"

// Domain conditions a caller can act on. Anything else coming out of a store
// is a storage failure and is propagated wrapped, never swallowed.
var (
	ErrNotFound       = errors.New("not found")
	ErrEmailTaken     = errors.New("email already registered")
	ErrBadCredentials = errors.New("invalid email or password")
	ErrNotVerified    = errors.New("account not verified")
	ErrInvalidOTP     = errors.New("otp invalid or expired")
	ErrInvalidToken   = errors.New("token invalid or expired")
)
