package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ecom-auth-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// StatusEnvelope wraps the OTP-flow responses.
type StatusEnvelope struct {
	Status     string `json:"status,omitempty"`
	Message    string `json:"message,omitempty"`
	ResetToken string `json:"reset_token,omitempty"`
	Error      string `json:"error,omitempty"`
}

// AuthEnvelope wraps login responses.
type AuthEnvelope struct {
	Status string       `json:"status,omitempty"`
	Token  string       `json:"token,omitempty"`
	User   *SafeAccount `json:"user,omitempty"`
	Error  string       `json:"error,omitempty"`
}

// SafeAccount is the public projection of an account. The password hash never
// leaves the domain layer.
type SafeAccount struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func toSafeAccount(a *domain.Account) *SafeAccount {
	if a == nil {
		return nil
	}
	return &SafeAccount{ID: a.AccountID, Name: a.Name, Email: a.Email}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// httpError maps domain sentinels to HTTP status codes and surfaces the
// error text to the client.
func httpError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrOtpNotFound),
		errors.Is(err, domain.ErrInvalidOtp):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrAccountLocked):
		status = http.StatusLocked
	case errors.Is(err, domain.ErrTooManyRequests),
		errors.Is(err, domain.ErrCooldownActive):
		status = http.StatusTooManyRequests
	}
	writeError(w, status, err.Error())
}
