package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-bazaar-nosql/internal/domain"
	"github.com/go-bazaar-nosql/internal/otpcache"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

type RequestOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

// Service drives the signup OTP, phone confirmation and password-reset flows.
type Service interface {
	RequestSignupOTP(ctx context.Context, email string) error
	VerifySignupOTP(ctx context.Context, email, otp string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	RequestPhoneOTP(ctx context.Context, userID string) error
	VerifyPhoneOTP(ctx context.Context, userID, otp string) error
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type mailer interface {
	SendOTPEmail(to, code string) error
	SendPasswordResetEmail(to, token string) error
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type service struct {
	cache     *otpcache.Store
	userRepo  userStore
	mailer    mailer
	smsSender smsSender
}

type ServiceDeps struct {
	Cache     *otpcache.Store
	UserRepo  userStore
	Mailer    mailer
	SMSSender smsSender
}

func NewService(deps ServiceDeps) Service {
	return &service{
		cache:     deps.Cache,
		userRepo:  deps.UserRepo,
		mailer:    deps.Mailer,
		smsSender: deps.SMSSender,
	}
}

// RequestSignupOTP issues a fresh code for the email, replacing any earlier
// one, and dispatches it. A delivery failure propagates to the caller; the
// stored code is left in place either way.
func (s *service) RequestSignupOTP(ctx context.Context, email string) error {
	code, err := s.cache.IssueCode(email)
	if err != nil {
		return err
	}
	return s.mailer.SendOTPEmail(email, code)
}

func (s *service) VerifySignupOTP(ctx context.Context, email, otp string) error {
	return s.cache.VerifyCode(email, otp)
}

// RequestPasswordReset issues a reset token only for accounts that exist.
// An unknown email reports success without creating anything, so the
// endpoint cannot be used to enumerate accounts.
func (s *service) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			slog.Info("password reset requested for unknown email")
			return nil
		}
		return err
	}
	token, err := s.cache.IssueToken(u.Email)
	if err != nil {
		return err
	}
	return s.mailer.SendPasswordResetEmail(u.Email, token)
}

func (s *service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters: %w", minPasswordLength, domain.ErrBadRequest)
	}
	email, err := s.cache.LookupToken(token)
	if err != nil {
		return err
	}
	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		// Account vanished after the token was issued; the token is useless now.
		s.cache.ConsumeToken(token)
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(newPassword)) == nil {
		return fmt.Errorf("new password must differ from the current one: %w", domain.ErrBadRequest)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.userRepo.Update(ctx, u.UserID, map[string]interface{}{"password_hash": string(hash)}); err != nil {
		return err
	}
	s.cache.ConsumeToken(token)
	return nil
}

// RequestPhoneOTP sends a code over SMS to the user's registered phone.
// The code is keyed by the phone number itself.
func (s *service) RequestPhoneOTP(ctx context.Context, userID string) error {
	u, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	if u.Phone == nil || *u.Phone == "" {
		return fmt.Errorf("no phone number on account: %w", domain.ErrBadRequest)
	}
	code, err := s.cache.IssueCode(*u.Phone)
	if err != nil {
		return err
	}
	return s.smsSender.SendSMS(ctx, *u.Phone, "Your verification code: "+code)
}

func (s *service) VerifyPhoneOTP(ctx context.Context, userID, otp string) error {
	u, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	if u.Phone == nil || *u.Phone == "" {
		return fmt.Errorf("no phone number on account: %w", domain.ErrBadRequest)
	}
	if err := s.cache.VerifyCode(*u.Phone, otp); err != nil {
		return err
	}
	return s.userRepo.Update(ctx, userID, map[string]interface{}{"phone_confirmed": true})
}
