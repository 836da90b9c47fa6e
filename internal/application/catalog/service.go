package catalog

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/go-bazaar-nosql/internal/domain"
	"github.com/go-bazaar-nosql/internal/pkg/id"
)

const imageURLTTL = 15 * time.Minute

// Service manages a shop's products, including their images in object
// storage. Mutations are restricted to the shop owner or an admin.
type Service interface {
	Create(ctx context.Context, shopID string, req domain.CreateProductRequest, requesterID string, isAdmin bool) (*domain.Product, error)
	Get(ctx context.Context, productID string) (*domain.Product, error)
	ListByShop(ctx context.Context, shopID string) ([]domain.Product, error)
	Update(ctx context.Context, productID string, req domain.UpdateProductRequest, requesterID string, isAdmin bool) (*domain.Product, error)
	Delete(ctx context.Context, productID string, requesterID string, isAdmin bool) error
	UploadImage(ctx context.Context, productID, filename, base64Data, requesterID string, isAdmin bool) (*domain.Product, error)
	ImageURL(ctx context.Context, productID string) (string, error)
}

type productStore interface {
	Put(ctx context.Context, p *domain.Product) error
	Get(ctx context.Context, productID string) (*domain.Product, error)
	ListByShop(ctx context.Context, shopID string) ([]domain.Product, error)
	Update(ctx context.Context, productID string, updates map[string]interface{}) error
	Delete(ctx context.Context, productID string) error
}

type shopStore interface {
	Get(ctx context.Context, shopID string) (*domain.Shop, error)
}

type objectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type service struct {
	productRepo productStore
	shopRepo    shopStore
	images      objectStore
}

type ServiceDeps struct {
	ProductRepo productStore
	ShopRepo    shopStore
	Images      objectStore
}

func NewService(deps ServiceDeps) Service {
	return &service{
		productRepo: deps.ProductRepo,
		shopRepo:    deps.ShopRepo,
		images:      deps.Images,
	}
}

func (s *service) Create(ctx context.Context, shopID string, req domain.CreateProductRequest, requesterID string, isAdmin bool) (*domain.Product, error) {
	shop, err := s.shopRepo.Get(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && shop.OwnerID != requesterID {
		return nil, fmt.Errorf("not the shop owner: %w", domain.ErrForbidden)
	}
	now := time.Now().UTC()
	p := &domain.Product{
		ProductID:   id.New(),
		ShopID:      shop.ShopID,
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.productRepo.Put(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) Get(ctx context.Context, productID string) (*domain.Product, error) {
	return s.productRepo.Get(ctx, productID)
}

func (s *service) ListByShop(ctx context.Context, shopID string) ([]domain.Product, error) {
	if _, err := s.shopRepo.Get(ctx, shopID); err != nil {
		return nil, err
	}
	return s.productRepo.ListByShop(ctx, shopID)
}

func (s *service) Update(ctx context.Context, productID string, req domain.UpdateProductRequest, requesterID string, isAdmin bool) (*domain.Product, error) {
	if _, err := s.authorize(ctx, productID, requesterID, isAdmin); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.PriceCents != nil {
		if *req.PriceCents <= 0 {
			return nil, fmt.Errorf("price must be positive: %w", domain.ErrBadRequest)
		}
		updates["price_cents"] = *req.PriceCents
	}
	if len(updates) == 0 {
		return s.productRepo.Get(ctx, productID)
	}
	if err := s.productRepo.Update(ctx, productID, updates); err != nil {
		return nil, err
	}
	return s.productRepo.Get(ctx, productID)
}

func (s *service) Delete(ctx context.Context, productID string, requesterID string, isAdmin bool) error {
	p, err := s.authorize(ctx, productID, requesterID, isAdmin)
	if err != nil {
		return err
	}
	if p.ImageKey != "" {
		// Image cleanup is best effort; the record delete still proceeds.
		if err := s.images.Delete(ctx, p.ImageKey); err != nil {
			slog.Warn("failed to delete product image", "product_id", productID, "key", p.ImageKey, "err", err)
		}
	}
	return s.productRepo.Delete(ctx, productID)
}

// UploadImage stores a base64-encoded image under a product-scoped key and
// records the key on the product.
func (s *service) UploadImage(ctx context.Context, productID, filename, base64Data, requesterID string, isAdmin bool) (*domain.Product, error) {
	if _, err := s.authorize(ctx, productID, requesterID, isAdmin); err != nil {
		return nil, err
	}
	decoded, err := base64.StdEncoding.DecodeString(base64Data)
	if err != nil {
		return nil, fmt.Errorf("decode base64 image: %w", domain.ErrBadRequest)
	}
	safeName := sanitizeFilename(filename)
	key := fmt.Sprintf("products/%s/%s", productID, safeName)
	if _, err := s.images.Upload(ctx, key, bytes.NewReader(decoded), contentTypeFromName(safeName)); err != nil {
		return nil, err
	}
	if err := s.productRepo.Update(ctx, productID, map[string]interface{}{"image_key": key}); err != nil {
		return nil, err
	}
	return s.productRepo.Get(ctx, productID)
}

// ImageURL returns a time-limited presigned URL for the product's image.
func (s *service) ImageURL(ctx context.Context, productID string) (string, error) {
	p, err := s.productRepo.Get(ctx, productID)
	if err != nil {
		return "", err
	}
	if p.ImageKey == "" {
		return "", fmt.Errorf("product has no image: %w", domain.ErrNotFound)
	}
	return s.images.PresignedURL(ctx, p.ImageKey, imageURLTTL)
}

// authorize loads the product and checks the requester owns its shop.
func (s *service) authorize(ctx context.Context, productID, requesterID string, isAdmin bool) (*domain.Product, error) {
	p, err := s.productRepo.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if isAdmin {
		return p, nil
	}
	shop, err := s.shopRepo.Get(ctx, p.ShopID)
	if err != nil {
		return nil, err
	}
	if shop.OwnerID != requesterID {
		return nil, fmt.Errorf("not the shop owner: %w", domain.ErrForbidden)
	}
	return p, nil
}

func sanitizeFilename(name string) string {
	base := path.Base(name)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
}

func contentTypeFromName(filename string) string {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".jpg") || strings.HasSuffix(lower, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(lower, ".png"):
		return "image/png"
	case strings.HasSuffix(lower, ".webp"):
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
