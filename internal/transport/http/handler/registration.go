package handler

import (
	"encoding/json"
	"net/http"

	"github.com/barangaysm/portal-api/internal/application/registration"
	"github.com/barangaysm/portal-api/internal/domain"
	"github.com/barangaysm/portal-api/internal/transport/http/middleware"
)

// RegistrationHandler handles the OTP request/verify/finalize endpoints.
type RegistrationHandler struct {
	svc registration.Service
}

func NewRegistrationHandler(svc registration.Service) *RegistrationHandler {
	return &RegistrationHandler{svc: svc}
}

// GenerateOTP handles POST /generate-otp.
func (h *RegistrationHandler) GenerateOTP(w http.ResponseWriter, r *http.Request) {
	var in domain.RequestOTPInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.RequestOTP(r.Context(), in, middleware.RealIP(r)); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, MessageEnvelope{
		Message: "OTP sent to your email. It will expire in 5 minutes.",
		Success: true,
	})
}

// VerifyOTP handles POST /verify-otp.
func (h *RegistrationHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var in domain.VerifyOTPInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	token, err := h.svc.VerifyOTP(r.Context(), in, middleware.RealIP(r))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TokenEnvelope{
		Message: "OTP verified successfully",
		Token:   token,
		Success: true,
	})
}

// CreateUserAuth handles POST /user-auth. The Credential middleware must have
// verified the bearer token and bound the email first.
func (h *RegistrationHandler) CreateUserAuth(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var in domain.CreateAccountInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	acct, err := h.svc.CreateAccount(r.Context(), identity.Email, identity.CredentialID, in, middleware.RealIP(r))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, RegistrationEnvelope{
		Message: "User registered successfully",
		User:    toSafeAccount(acct),
		Success: true,
	})
}
