package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-bazaar-nosql/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mock ---

type mockAuthSvc struct{ mock.Mock }

func (m *mockAuthSvc) RequestSignupOTP(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockAuthSvc) VerifySignupOTP(ctx context.Context, email, otp string) error {
	return m.Called(ctx, email, otp).Error(0)
}

func (m *mockAuthSvc) RequestPasswordReset(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockAuthSvc) ResetPassword(ctx context.Context, token, newPassword string) error {
	return m.Called(ctx, token, newPassword).Error(0)
}

func (m *mockAuthSvc) RequestPhoneOTP(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockAuthSvc) VerifyPhoneOTP(ctx context.Context, userID, otp string) error {
	return m.Called(ctx, userID, otp).Error(0)
}

func newResetRouter(svc *mockAuthSvc) chi.Router {
	h := NewPasswordResetHandler(svc)
	r := chi.NewRouter()
	r.Post("/password-reset/{action}", h.Action)
	return r
}

func newOTPRouter(svc *mockAuthSvc) chi.Router {
	h := NewOTPHandler(svc)
	r := chi.NewRouter()
	r.Post("/otp/{action}", h.Action)
	return r
}

func postJSON(t *testing.T, router http.Handler, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

// --- password reset ---

func TestPasswordReset_Request_GenericMessage(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("RequestPasswordReset", mock.Anything, "a@example.com").Return(nil)

	rr := postJSON(t, newResetRouter(svc), "/password-reset/request", map[string]string{"email": "a@example.com"})

	assert.Equal(t, http.StatusOK, rr.Code)
	var env MessageEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.Equal(t, resetRequestedMessage, env.Message)
}

func TestPasswordReset_Request_InvalidEmail(t *testing.T) {
	svc := &mockAuthSvc{}

	rr := postJSON(t, newResetRouter(svc), "/password-reset/request", map[string]string{"email": "not-an-email"})

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	svc.AssertNotCalled(t, "RequestPasswordReset", mock.Anything, mock.Anything)
}

func TestPasswordReset_Reset_ExpiredToken(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("ResetPassword", mock.Anything, "stale", "newpass1").
		Return(fmt.Errorf("reset token expired: %w", domain.ErrExpired))

	rr := postJSON(t, newResetRouter(svc), "/password-reset/reset", map[string]string{
		"token":        "stale",
		"new_password": "newpass1",
	})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPasswordReset_UnknownAction(t *testing.T) {
	rr := postJSON(t, newResetRouter(&mockAuthSvc{}), "/password-reset/destroy", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// --- signup OTP ---

func TestOTP_Request_OK(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("RequestSignupOTP", mock.Anything, "a@example.com").Return(nil)

	rr := postJSON(t, newOTPRouter(svc), "/otp/request", map[string]string{"email": "a@example.com"})

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestOTP_Verify_Mismatch(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("VerifySignupOTP", mock.Anything, "a@example.com", "123456").
		Return(fmt.Errorf("otp does not match: %w", domain.ErrCodeMismatch))

	rr := postJSON(t, newOTPRouter(svc), "/otp/verify", map[string]string{
		"email": "a@example.com",
		"otp":   "123456",
	})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestOTP_Verify_UnknownIdentifier(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("VerifySignupOTP", mock.Anything, "a@example.com", "123456").
		Return(fmt.Errorf("no pending otp: %w", domain.ErrNotFound))

	rr := postJSON(t, newOTPRouter(svc), "/otp/verify", map[string]string{
		"email": "a@example.com",
		"otp":   "123456",
	})

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
