package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrAccountLocked   = errors.New("account locked")
	ErrTooManyRequests = errors.New("too many requests")
	ErrCooldownActive  = errors.New("cooldown active")
	ErrOtpNotFound     = errors.New("otp not found")
	ErrInvalidOtp      = errors.New("invalid otp")
)

type messageError struct {
	kind error
	msg  string
}

func (e *messageError) Error() string { return e.msg }
func (e *messageError) Unwrap() error { return e.kind }

// NewError returns an error whose text is exactly msg and which matches kind
// via errors.Is. Handlers surface the text to clients verbatim, so msg must
// never contain stored secrets.
func NewError(kind error, msg string) error {
	return &messageError{kind: kind, msg: msg}
}
