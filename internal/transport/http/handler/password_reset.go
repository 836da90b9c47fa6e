package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-bazaar-nosql/internal/application/auth"
	"github.com/go-bazaar-nosql/internal/pkg/validate"
	"github.com/go-chi/chi/v5"
)

// The request action always reports success so the endpoint cannot be used
// to probe which emails have accounts.
const resetRequestedMessage = "if the email exists, a password reset link has been sent"

// PasswordResetHandler handles the password reset flow endpoints.
type PasswordResetHandler struct {
	svc auth.Service
}

func NewPasswordResetHandler(svc auth.Service) *PasswordResetHandler {
	return &PasswordResetHandler{svc: svc}
}

func (h *PasswordResetHandler) Action(w http.ResponseWriter, r *http.Request) {
	switch chi.URLParam(r, "action") {
	case "request":
		var req auth.RequestOTPRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := validate.Struct(&req); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		if err := h.svc.RequestPasswordReset(r.Context(), req.Email); err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: resetRequestedMessage})
	case "reset":
		var req auth.ResetPasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := validate.Struct(&req); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		if err := h.svc.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: "password updated"})
	default:
		writeError(w, http.StatusBadRequest, "unknown action")
	}
}
