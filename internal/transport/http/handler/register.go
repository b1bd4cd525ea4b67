package handler

import (
	"encoding/json"
	"net/http"

	"github.com/ecom-auth-api/internal/application/registration"
	"github.com/ecom-auth-api/internal/domain"
)

// RegistrationHandler handles the register/verify endpoints for both roles.
type RegistrationHandler struct {
	svc registration.Service
}

func NewRegistrationHandler(svc registration.Service) *RegistrationHandler {
	return &RegistrationHandler{svc: svc}
}

func (h *RegistrationHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, domain.RoleUser)
}

func (h *RegistrationHandler) RegisterSeller(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, domain.RoleSeller)
}

func (h *RegistrationHandler) register(w http.ResponseWriter, r *http.Request, role string) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.RequestRegistration(r.Context(), role, req); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{
		Message: "OTP sent to your email, please check your inbox.",
	})
}

func (h *RegistrationHandler) VerifyUser(w http.ResponseWriter, r *http.Request) {
	h.verify(w, r, domain.RoleUser)
}

func (h *RegistrationHandler) VerifySeller(w http.ResponseWriter, r *http.Request) {
	h.verify(w, r, domain.RoleSeller)
}

func (h *RegistrationHandler) verify(w http.ResponseWriter, r *http.Request, role string) {
	var req domain.VerifyRegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	a, err := h.svc.ConfirmRegistration(r.Context(), role, req)
	if err != nil {
		httpError(w, err)
		return
	}
	// The response key matches the role: {"user": {...}} or {"seller": {...}}.
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"status": "success",
		role:     toSafeAccount(a),
	})
}
