package cart

import (
	"context"
	"strings"
	"time"

	"spiceMarket/domain"
	"spiceMarket/pkg/logger"
	"spiceMarket/pkg/metrics"

	"github.com/google/uuid"
)

// CartRepository persists whole carts; last write wins.
type CartRepository interface {
	Load(ctx context.Context, cartID string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context, cartID string) error
}

type ProductRepository interface {
	FindByID(ctx context.Context, id uint64) (domain.Product, error)
}

type cartService struct {
	cartRepo    CartRepository
	productRepo ProductRepository
	now         func() time.Time
}

func NewCartService(cartRepo CartRepository, productRepo ProductRepository) *cartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		now:         time.Now,
	}
}

// NewCart issues an id for a guest cart. Nothing is stored until the first mutation.
func (s *cartService) NewCart(ctx context.Context) *domain.Cart {
	return domain.NewCart(uuid.NewString())
}

func (s *cartService) GetCart(ctx context.Context, cartID string) (*domain.Cart, error) {
	if err := validateCartID(cartID); err != nil {
		return nil, err
	}

	return s.cartRepo.Load(ctx, cartID)
}

// AddToCart checks the product and pack size against the catalog, then merges
// the quantity into the cart.
func (s *cartService) AddToCart(ctx context.Context, cartID string, productID uint64, packSize string, quantity int) (*domain.Cart, error) {
	packSize = strings.TrimSpace(packSize)
	if quantity < 1 || quantity > domain.MaxLineQuantity {
		return nil, domain.NewValidationError("quantity must be between 1 and %d", domain.MaxLineQuantity)
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if _, ok := product.PriceFor(packSize); !ok {
		return nil, domain.NewValidationError("product %d has no pack size %q", productID, packSize)
	}

	return s.mutate(ctx, cartID, "add", func(c *domain.Cart) {
		c.Add(productID, packSize, quantity)
	})
}

func (s *cartService) UpdateQuantity(ctx context.Context, cartID string, productID uint64, packSize string, delta int) (*domain.Cart, error) {
	return s.mutate(ctx, cartID, "update", func(c *domain.Cart) {
		c.UpdateQuantity(productID, strings.TrimSpace(packSize), delta)
	})
}

func (s *cartService) RemoveFromCart(ctx context.Context, cartID string, productID uint64) (*domain.Cart, error) {
	return s.mutate(ctx, cartID, "remove", func(c *domain.Cart) {
		c.Remove(productID)
	})
}

func (s *cartService) ClearCart(ctx context.Context, cartID string) (*domain.Cart, error) {
	if err := validateCartID(cartID); err != nil {
		return nil, err
	}

	if err := s.cartRepo.Delete(ctx, cartID); err != nil {
		logger.Error("Failed to clear cart", err)
		return nil, err
	}

	metrics.CartMutations.WithLabelValues("clear").Inc()
	return domain.NewCart(cartID), nil
}

func (s *cartService) mutate(ctx context.Context, cartID, op string, apply func(c *domain.Cart)) (*domain.Cart, error) {
	if err := validateCartID(cartID); err != nil {
		return nil, err
	}

	cart, err := s.cartRepo.Load(ctx, cartID)
	if err != nil {
		logger.Error("Failed to load cart", err)
		return nil, err
	}

	apply(cart)
	cart.UpdatedAt = s.now()

	if err := s.cartRepo.Save(ctx, cart); err != nil {
		logger.Error("Failed to save cart", err)
		return nil, err
	}

	metrics.CartMutations.WithLabelValues(op).Inc()
	return cart, nil
}

func validateCartID(cartID string) error {
	if _, err := uuid.Parse(cartID); err != nil {
		return domain.NewValidationError("invalid cart id")
	}
	return nil
}
