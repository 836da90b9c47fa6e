package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-bazaar-nosql/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AuthEnvelope wraps login/refresh/register responses.
type AuthEnvelope struct {
	AccessToken  string          `json:"access_token,omitempty"`
	RefreshToken string          `json:"refresh_token,omitempty"`
	Session      *domain.Session `json:"session,omitempty"`
	User         *SafeUser       `json:"user,omitempty"`
}

// SessionEnvelope wraps current-session responses.
type SessionEnvelope struct {
	Session *domain.Session `json:"session,omitempty"`
	User    *SafeUser       `json:"user,omitempty"`
}

// SafeUser is the user representation exposed over the API. The password
// hash and Google subject never leave the server.
type SafeUser struct {
	UserID         string             `json:"id"`
	Name           string             `json:"name"`
	Email          string             `json:"email"`
	Phone          *string            `json:"phone,omitempty"`
	Role           string             `json:"role"`
	ShopRequest    domain.ShopRequest `json:"shop_request"`
	EmailConfirmed bool               `json:"email_confirmed"`
	PhoneConfirmed bool               `json:"phone_confirmed"`
	Enable         bool               `json:"enable"`
	CreatedAt      time.Time          `json:"created"`
	UpdatedAt      time.Time          `json:"updated"`
}

func toSafeUser(u *domain.User) *SafeUser {
	if u == nil {
		return nil
	}
	return &SafeUser{
		UserID:         u.UserID,
		Name:           u.Name,
		Email:          u.Email,
		Phone:          u.Phone,
		Role:           u.Role,
		ShopRequest:    u.ShopRequest,
		EmailConfirmed: u.EmailConfirmed,
		PhoneConfirmed: u.PhoneConfirmed,
		Enable:         u.Enable,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

// toSafeSession strips the embedded user so it can be rendered separately
// as a SafeUser alongside the session.
func toSafeSession(s *domain.Session) *domain.Session {
	if s == nil {
		return nil
	}
	cp := *s
	cp.User = nil
	return &cp
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// httpError maps a service error onto an HTTP status by its domain sentinel.
// Unclassified errors are logged and reported as a generic 500.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrBadRequest),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrExpired),
		errors.Is(err, domain.ErrCodeMismatch):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	default:
		slog.Error("unhandled service error", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
