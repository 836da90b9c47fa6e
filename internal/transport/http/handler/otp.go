package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-bazaar-nosql/internal/application/auth"
	"github.com/go-bazaar-nosql/internal/pkg/validate"
	"github.com/go-chi/chi/v5"
)

// OTPHandler handles the signup OTP flow endpoints.
type OTPHandler struct {
	svc auth.Service
}

func NewOTPHandler(svc auth.Service) *OTPHandler {
	return &OTPHandler{svc: svc}
}

func (h *OTPHandler) Action(w http.ResponseWriter, r *http.Request) {
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
		if err := h.svc.RequestSignupOTP(r.Context(), req.Email); err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: "OTP sent"})
	case "verify":
		var req auth.VerifyOTPRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := validate.Struct(&req); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		if err := h.svc.VerifySignupOTP(r.Context(), req.Email, req.OTP); err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: "OTP verified"})
	default:
		writeError(w, http.StatusBadRequest, "unknown action")
	}
}
