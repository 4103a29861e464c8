package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/barangaysm/portal-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Success bool   `json:"success,omitempty"`
}

// TokenEnvelope wraps the OTP verification response carrying the
// registration credential.
type TokenEnvelope struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	Success bool   `json:"success"`
}

// SafeAccount is the client-facing projection of an account.
type SafeAccount struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	AccountType string `json:"account_type"`
}

// RegistrationEnvelope wraps the finalize-registration response.
type RegistrationEnvelope struct {
	Message string       `json:"message"`
	User    *SafeAccount `json:"user"`
	Success bool         `json:"success"`
}

func toSafeAccount(a *domain.Account) *SafeAccount {
	return &SafeAccount{
		UserID:      a.UserID,
		Username:    a.Username,
		Email:       a.Email,
		AccountType: a.AccountType,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// httpError maps a service error onto an HTTP status via the domain
// sentinels. Unknown errors are hidden behind a generic 500.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrDelivery):
		writeError(w, http.StatusBadGateway, "could not send the email, please try again")
	case errors.Is(err, domain.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "service temporarily unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
