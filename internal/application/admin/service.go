package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-bazaar-nosql/internal/domain"
	"github.com/go-bazaar-nosql/internal/pkg/id"
	"golang.org/x/crypto/bcrypt"
)

// Entity type names accepted by DeleteEntity.
const (
	EntityShop = "shop"
	EntityUser = "user"
)

// Service covers the admin panel: entity lifecycle, listings and the
// two-step shop onboarding. Multi-record mutations run as sequential
// unguarded writes — there is no transaction spanning them, so a crash
// mid-sequence can leave orphaned records.
type Service interface {
	DeleteEntity(ctx context.Context, entityType, entityID string) error
	CreateShop(ctx context.Context, req domain.CreateShopRequest) (*domain.User, *domain.Shop, error)
	RegisterUser(ctx context.Context, name, email string, phone *string) (*domain.User, error)
	UpdateUser(ctx context.Context, userID string, req domain.UpdateUserRequest) (*domain.User, error)
	UpdateShop(ctx context.Context, shopID string, req domain.UpdateShopRequest) (*domain.Shop, error)
	ListShops(ctx context.Context) ([]domain.Shop, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	Delete(ctx context.Context, userID string) error
	Scan(ctx context.Context) ([]domain.User, error)
}

type shopStore interface {
	Get(ctx context.Context, shopID string) (*domain.Shop, error)
	GetByOwner(ctx context.Context, ownerID string) (*domain.Shop, error)
	Put(ctx context.Context, s *domain.Shop) error
	Update(ctx context.Context, shopID string, updates map[string]interface{}) error
	Delete(ctx context.Context, shopID string) error
	Scan(ctx context.Context) ([]domain.Shop, error)
}

type productStore interface {
	DeleteByShop(ctx context.Context, shopID string) error
}

type cartStore interface {
	Delete(ctx context.Context, userID string) error
}

type sessionStore interface {
	DisableByUser(ctx context.Context, userID string) error
}

type mailer interface {
	SendWelcomeEmail(to, name string) error
}

type service struct {
	userRepo        userStore
	shopRepo        shopStore
	productRepo     productStore
	cartRepo        cartStore
	sessionRepo     sessionStore
	mailer          mailer
	defaultPassword string
}

type ServiceDeps struct {
	UserRepo        userStore
	ShopRepo        shopStore
	ProductRepo     productStore
	CartRepo        cartStore
	SessionRepo     sessionStore
	Mailer          mailer
	DefaultPassword string
}

func NewService(deps ServiceDeps) Service {
	return &service{
		userRepo:        deps.UserRepo,
		shopRepo:        deps.ShopRepo,
		productRepo:     deps.ProductRepo,
		cartRepo:        deps.CartRepo,
		sessionRepo:     deps.SessionRepo,
		mailer:          deps.Mailer,
		defaultPassword: deps.DefaultPassword,
	}
}

// DeleteEntity removes a shop or user together with everything referencing
// it. Deletion order: products, then shop, then owner account.
func (s *service) DeleteEntity(ctx context.Context, entityType, entityID string) error {
	switch entityType {
	case EntityShop:
		return s.deleteShop(ctx, entityID)
	case EntityUser:
		return s.deleteUser(ctx, entityID)
	default:
		return fmt.Errorf("invalid type %q, use %q or %q: %w", entityType, EntityShop, EntityUser, domain.ErrBadRequest)
	}
}

func (s *service) deleteShop(ctx context.Context, shopID string) error {
	shop, err := s.shopRepo.Get(ctx, shopID)
	if err != nil {
		return err
	}
	if err := s.productRepo.DeleteByShop(ctx, shopID); err != nil {
		return err
	}
	if err := s.shopRepo.Delete(ctx, shopID); err != nil {
		return err
	}
	if shop.OwnerID != "" {
		if err := s.userRepo.Delete(ctx, shop.OwnerID); err != nil {
			return err
		}
		s.cleanupUserState(ctx, shop.OwnerID)
	}
	return nil
}

// cleanupUserState drops the leftovers of a deleted account: live sessions
// and the cart document. Both are best effort.
func (s *service) cleanupUserState(ctx context.Context, userID string) {
	if err := s.sessionRepo.DisableByUser(ctx, userID); err != nil {
		slog.Warn("failed to disable sessions for deleted user", "user_id", userID, "err", err)
	}
	if err := s.cartRepo.Delete(ctx, userID); err != nil {
		slog.Warn("failed to delete cart for deleted user", "user_id", userID, "err", err)
	}
}

func (s *service) deleteUser(ctx context.Context, userID string) error {
	u, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return err
	}
	if u.Role == domain.RoleShopOwner {
		shop, err := s.shopRepo.GetByOwner(ctx, userID)
		switch {
		case err == nil:
			if err := s.productRepo.DeleteByShop(ctx, shop.ShopID); err != nil {
				return err
			}
			if err := s.shopRepo.Delete(ctx, shop.ShopID); err != nil {
				return err
			}
		case !errors.Is(err, domain.ErrNotFound):
			// Cannot tell whether a shop exists; deleting the user now would
			// orphan it. Leave the account in place and surface the failure.
			return err
		}
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}
	s.cleanupUserState(ctx, userID)
	return nil
}

// CreateShop provisions an owner account with the default password, then the
// shop itself (pre-approved), then back-fills the onboarding state on the
// owner. The welcome email goes out last.
func (s *service) CreateShop(ctx context.Context, req domain.CreateShopRequest) (*domain.User, *domain.Shop, error) {
	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
		return nil, nil, fmt.Errorf("user with this email already exists: %w", domain.ErrConflict)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(s.defaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}
	now := time.Now().UTC()
	owner := &domain.User{
		UserID:       id.New(),
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Role:         domain.RoleShopOwner,
		ShopRequest:  domain.ShopRequest{Requested: true},
		AuthProvider: "local",
		Enable:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Put(ctx, owner); err != nil {
		return nil, nil, err
	}

	shop := &domain.Shop{
		ShopID:      id.New(),
		Name:        req.Shop.Name,
		Category:    req.Shop.Category,
		Address:     req.Shop.Address,
		Description: req.Shop.Description,
		Location:    req.Shop.Location,
		OwnerID:     owner.UserID,
		Approved:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.shopRepo.Put(ctx, shop); err != nil {
		return nil, nil, err
	}

	owner.ShopRequest = domain.ShopRequest{Requested: true, Accepted: true, ShopID: shop.ShopID}
	if err := s.userRepo.Update(ctx, owner.UserID, map[string]interface{}{
		"shop_request": owner.ShopRequest,
	}); err != nil {
		return nil, nil, err
	}

	if err := s.mailer.SendWelcomeEmail(owner.Email, owner.Name); err != nil {
		return nil, nil, err
	}
	return owner, shop, nil
}

// RegisterUser creates a plain account with the default password and sends
// the welcome email.
func (s *service) RegisterUser(ctx context.Context, name, email string, phone *string) (*domain.User, error) {
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("user already exists: %w", domain.ErrConflict)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(s.defaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Name:         name,
		Email:        email,
		Phone:        phone,
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
	if err := s.mailer.SendWelcomeEmail(email, name); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateUser overwrites name/email/phone after an email-collision check
// against other accounts.
func (s *service) UpdateUser(ctx context.Context, userID string, req domain.UpdateUserRequest) (*domain.User, error) {
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

func (s *service) UpdateShop(ctx context.Context, shopID string, req domain.UpdateShopRequest) (*domain.Shop, error) {
	if _, err := s.shopRepo.Get(ctx, shopID); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if len(updates) == 0 {
		return s.shopRepo.Get(ctx, shopID)
	}
	if err := s.shopRepo.Update(ctx, shopID, updates); err != nil {
		return nil, err
	}
	return s.shopRepo.Get(ctx, shopID)
}

// ListShops returns all shops with their owner records attached. A shop
// whose owner no longer resolves is returned without one.
func (s *service) ListShops(ctx context.Context) ([]domain.Shop, error) {
	shops, err := s.shopRepo.Scan(ctx)
	if err != nil {
		return nil, err
	}
	for i := range shops {
		owner, err := s.userRepo.Get(ctx, shops[i].OwnerID)
		if err != nil {
			slog.Warn("shop owner did not resolve", "shop_id", shops[i].ShopID, "owner_id", shops[i].OwnerID)
			continue
		}
		shops[i].Owner = owner
	}
	return shops, nil
}

func (s *service) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.userRepo.Scan(ctx)
}
