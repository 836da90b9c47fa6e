package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-bazaar-nosql/internal/domain"
	"github.com/go-bazaar-nosql/internal/infrastructure/google"
	"github.com/go-bazaar-nosql/internal/pkg/id"
	pkgtoken "github.com/go-bazaar-nosql/internal/pkg/token"
	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	Bearer       string
	RefreshToken string
	Session      *domain.Session
}

type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	LoginWithGoogle(ctx context.Context, idToken string) (*LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
	GetCurrent(ctx context.Context, sessionID string) (*domain.Session, error)
	Refresh(ctx context.Context, refreshToken string) (bearer, newRefreshToken string, err error)
}

type sessionStore interface {
	Put(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error)
	RotateRefreshToken(ctx context.Context, sessionID, newToken string, newExpiry int64) error
	Update(ctx context.Context, sessionID string, updates map[string]interface{}) error
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
}

type jwtSigner interface {
	Sign(userID, role, sessionID string) (string, error)
}

type googleVerifier interface {
	Verify(ctx context.Context, token string) (*google.Payload, error)
}

type service struct {
	sessionRepo     sessionStore
	userRepo        userStore
	jwtProvider     jwtSigner
	google          googleVerifier
	refreshTokenDur time.Duration
}

type ServiceDeps struct {
	SessionRepo     sessionStore
	UserRepo        userStore
	JWTProvider     jwtSigner
	GoogleVerifier  googleVerifier
	RefreshTokenDur time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		sessionRepo:     deps.SessionRepo,
		userRepo:        deps.UserRepo,
		jwtProvider:     deps.JWTProvider,
		google:          deps.GoogleVerifier,
		refreshTokenDur: deps.RefreshTokenDur,
	}
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	u, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	if !u.Enable {
		return nil, fmt.Errorf("account disabled: %w", domain.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	return s.openSession(ctx, u)
}

// LoginWithGoogle verifies the Google ID token and signs the user in,
// provisioning a customer account on first sight of a verified email.
func (s *service) LoginWithGoogle(ctx context.Context, idToken string) (*LoginResult, error) {
	if s.google == nil {
		return nil, fmt.Errorf("google sign-in not configured: %w", domain.ErrBadRequest)
	}
	payload, err := s.google.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}
	if !payload.EmailVerified {
		return nil, fmt.Errorf("google email not verified: %w", domain.ErrUnauthorized)
	}
	u, err := s.userRepo.GetByEmail(ctx, payload.Email)
	if err != nil {
		now := time.Now().UTC()
		u = &domain.User{
			UserID:         id.New(),
			Name:           strings.TrimSpace(payload.FirstName + " " + payload.LastName),
			Email:          payload.Email,
			Role:           domain.RoleCustomer,
			AuthProvider:   "google",
			GoogleSub:      payload.Sub,
			EmailConfirmed: true,
			Enable:         true,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.userRepo.Put(ctx, u); err != nil {
			return nil, err
		}
	}
	if !u.Enable {
		return nil, fmt.Errorf("account disabled: %w", domain.ErrUnauthorized)
	}
	return s.openSession(ctx, u)
}

func (s *service) Logout(ctx context.Context, sessionID string) error {
	return s.sessionRepo.Update(ctx, sessionID, map[string]interface{}{"enable": false})
}

func (s *service) GetCurrent(ctx context.Context, sessionID string) (*domain.Session, error) {
	sess, err := s.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.Enable {
		return nil, fmt.Errorf("session expired: %w", domain.ErrUnauthorized)
	}
	u, err := s.userRepo.Get(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	sess.User = u
	return sess, nil
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	sess, err := s.sessionRepo.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		return "", "", fmt.Errorf("invalid or expired refresh token: %w", domain.ErrUnauthorized)
	}
	if sess.RefreshExpiresAt < time.Now().Unix() {
		return "", "", fmt.Errorf("refresh token expired: %w", domain.ErrUnauthorized)
	}
	newToken, err := pkgtoken.NewRefreshToken()
	if err != nil {
		return "", "", err
	}
	newExpiry := time.Now().Add(s.refreshTokenDur).Unix()
	if err := s.sessionRepo.RotateRefreshToken(ctx, sess.SessionID, newToken, newExpiry); err != nil {
		return "", "", err
	}
	u, err := s.userRepo.Get(ctx, sess.UserID)
	if err != nil {
		return "", "", err
	}
	bearer, err := s.jwtProvider.Sign(u.UserID, u.Role, sess.SessionID)
	if err != nil {
		return "", "", err
	}
	return bearer, newToken, nil
}

func (s *service) openSession(ctx context.Context, u *domain.User) (*LoginResult, error) {
	refreshToken, err := pkgtoken.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	sess := &domain.Session{
		SessionID:        id.New(),
		UserID:           u.UserID,
		Enable:           true,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: now.Add(s.refreshTokenDur).Unix(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.sessionRepo.Put(ctx, sess); err != nil {
		return nil, err
	}
	bearer, err := s.jwtProvider.Sign(u.UserID, u.Role, sess.SessionID)
	if err != nil {
		return nil, err
	}
	sess.User = u
	return &LoginResult{Bearer: bearer, RefreshToken: refreshToken, Session: sess}, nil
}
