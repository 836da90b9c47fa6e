package user

import (
	"context"
	"fmt"
	"time"

	"github.com/go-bazaar-nosql/internal/domain"
	"github.com/go-bazaar-nosql/internal/pkg/id"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
}

// Service covers self-service account operations: signup, profile reads
// and updates, and password changes for a signed-in user.
type Service interface {
	Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, req domain.UpdateUserRequest) (*domain.User, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type mailer interface {
	SendWelcomeEmail(to, name string) error
}

type service struct {
	userRepo userStore
	mailer   mailer
}

type ServiceDeps struct {
	UserRepo userStore
	Mailer   mailer
}

func NewService(deps ServiceDeps) Service {
	return &service{userRepo: deps.UserRepo, mailer: deps.Mailer}
}

// Register creates a customer account with the caller's chosen password.
func (s *service) Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("user with this email already exists: %w", domain.ErrConflict)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Role:         domain.RoleCustomer,
		AuthProvider: "local",
		Enable:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Put(ctx, u); err != nil {
		return nil, err
	}
	if err := s.mailer.SendWelcomeEmail(u.Email, u.Name); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.Get(ctx, userID)
}

func (s *service) UpdateProfile(ctx context.Context, userID string, req domain.UpdateUserRequest) (*domain.User, error) {
	if _, err := s.userRepo.Get(ctx, userID); err != nil {
		return nil, err
	}
	if other, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil && other.UserID != userID {
		return nil, fmt.Errorf("email is already in use by another account: %w", domain.ErrConflict)
	}
	updates := map[string]interface{}{
		"name":  req.Name,
		"email": req.Email,
		"phone": req.Phone,
	}
	if err := s.userRepo.Update(ctx, userID, updates); err != nil {
		return nil, err
	}
	return s.userRepo.Get(ctx, userID)
}

// ChangePassword verifies the current password before storing the new hash.
func (s *service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters: %w", minPasswordLength, domain.ErrBadRequest)
	}
	u, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(currentPassword)); err != nil {
		return fmt.Errorf("current password is incorrect: %w", domain.ErrUnauthorized)
	}
	if currentPassword == newPassword {
		return fmt.Errorf("new password must differ from the current one: %w", domain.ErrBadRequest)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.userRepo.Update(ctx, userID, map[string]interface{}{"password_hash": string(hash)})
}
