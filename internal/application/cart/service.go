package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-bazaar-nosql/internal/domain"
)

// Service manages the per-user cart document.
//
// Two removal semantics coexist on purpose: RemoveLine drops a product line
// outright, Decrement lowers the quantity by one and drops the line only
// when it would reach zero. Both are exposed as distinct endpoints.
type Service interface {
	Add(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error)
	RemoveLine(ctx context.Context, userID, productID string) (*domain.Cart, error)
	Decrement(ctx context.Context, userID, productID string) (*domain.Cart, error)
	View(ctx context.Context, userID string) (*domain.CartView, error)
	Clear(ctx context.Context, userID string) error
}

type cartStore interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	Put(ctx context.Context, c *domain.Cart) error
	SetItems(ctx context.Context, userID string, items []domain.CartItem) error
}

type productStore interface {
	Get(ctx context.Context, productID string) (*domain.Product, error)
}

type shopStore interface {
	Get(ctx context.Context, shopID string) (*domain.Shop, error)
}

type service struct {
	cartRepo    cartStore
	productRepo productStore
	shopRepo    shopStore
}

type ServiceDeps struct {
	CartRepo    cartStore
	ProductRepo productStore
	ShopRepo    shopStore
}

func NewService(deps ServiceDeps) Service {
	return &service{
		cartRepo:    deps.CartRepo,
		productRepo: deps.ProductRepo,
		shopRepo:    deps.ShopRepo,
	}
}

// Add upserts the cart and either bumps the existing line's quantity or
// appends a new line. The product must exist.
func (s *service) Add(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be positive: %w", domain.ErrBadRequest)
	}
	if _, err := s.productRepo.Get(ctx, productID); err != nil {
		return nil, err
	}
	c, err := s.cartRepo.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		c = &domain.Cart{UserID: userID, Items: []domain.CartItem{}}
	}
	found := false
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		c.Items = append(c.Items, domain.CartItem{ProductID: productID, Quantity: quantity})
	}
	if err := s.cartRepo.Put(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// RemoveLine drops the product line regardless of quantity. Removing a line
// that is not in the cart is a no-op.
func (s *service) RemoveLine(ctx context.Context, userID, productID string) (*domain.Cart, error) {
	c, err := s.cartRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	kept := c.Items[:0]
	for _, it := range c.Items {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}
	c.Items = kept
	if err := s.cartRepo.Put(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Decrement lowers the line's quantity by one and removes the line when the
// quantity would drop to zero.
func (s *service) Decrement(ctx context.Context, userID, productID string) (*domain.Cart, error) {
	c, err := s.cartRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	idx := -1
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("item not found in cart: %w", domain.ErrNotFound)
	}
	if c.Items[idx].Quantity > 1 {
		c.Items[idx].Quantity--
	} else {
		c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	}
	if err := s.cartRepo.Put(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// View resolves each line against the catalog and groups lines by owning
// shop with per-shop subtotals and a grand total. Lines whose product or
// shop no longer resolves are skipped. A missing cart views as empty.
func (s *service) View(ctx context.Context, userID string) (*domain.CartView, error) {
	view := &domain.CartView{GroupedByShop: []domain.CartShopGroup{}}

	c, err := s.cartRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return view, nil
		}
		return nil, err
	}

	groupIdx := map[string]int{}
	for _, it := range c.Items {
		p, err := s.productRepo.Get(ctx, it.ProductID)
		if err != nil {
			slog.Warn("cart line skipped, product did not resolve", "user_id", userID, "product_id", it.ProductID)
			continue
		}
		shop, err := s.shopRepo.Get(ctx, p.ShopID)
		if err != nil {
			slog.Warn("cart line skipped, shop did not resolve", "user_id", userID, "shop_id", p.ShopID)
			continue
		}
		i, ok := groupIdx[shop.ShopID]
		if !ok {
			view.GroupedByShop = append(view.GroupedByShop, domain.CartShopGroup{
				ShopID:   shop.ShopID,
				ShopName: shop.Name,
			})
			i = len(view.GroupedByShop) - 1
			groupIdx[shop.ShopID] = i
		}
		lineTotal := p.PriceCents * int64(it.Quantity)
		view.GroupedByShop[i].Items = append(view.GroupedByShop[i].Items, domain.CartLine{
			Product:  p,
			Quantity: it.Quantity,
			Total:    lineTotal,
		})
		view.GroupedByShop[i].Subtotal += lineTotal
		view.GrandTotal += lineTotal
	}
	return view, nil
}

// Clear replaces the item collection with an empty set. A missing cart is a
// not-found error, matching the other cart mutations.
func (s *service) Clear(ctx context.Context, userID string) error {
	if _, err := s.cartRepo.Get(ctx, userID); err != nil {
		return err
	}
	return s.cartRepo.SetItems(ctx, userID, []domain.CartItem{})
}
