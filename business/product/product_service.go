package product

import (
	"context"
	"fmt"
	"strings"

	"spiceMarket/domain"
	"spiceMarket/pkg/logger"
)

// ProductRepository contract interface
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id uint64) (domain.Product, error)
	FindByIDs(ctx context.Context, ids []uint64) ([]domain.Product, error)
	FindAll(ctx context.Context, query string) ([]domain.Product, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uint64) error
}

type productService struct {
	productRepo ProductRepository
}

func NewProductService(productRepo ProductRepository) *productService {
	return &productService{
		productRepo: productRepo,
	}
}

// GetAllProducts lists the catalog. A non-empty query matches name or
// description case-insensitively.
func (s *productService) GetAllProducts(ctx context.Context, query string) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when get all product")
		return nil, fmt.Errorf("context error: %w", err)
	}

	products, err := s.productRepo.FindAll(ctx, strings.TrimSpace(query))
	if err != nil {
		logger.Error("Failed to find all product", err)
		return nil, err
	}

	return products, nil
}

func (s *productService) GetProductByID(ctx context.Context, id uint64) (*domain.Product, error) {
	if id == 0 {
		logger.Error("invalid product id")
		return nil, domain.NewValidationError("invalid product id")
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("failed to find product by id", err)
		return nil, err
	}

	return &product, nil
}

func (s *productService) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when create product")
		return nil, fmt.Errorf("context error: %w", err)
	}

	if err := validateProduct(product); err != nil {
		logger.Error("Invalid product data", err)
		return nil, err
	}

	product.ID = 0
	if err := s.productRepo.Create(ctx, product); err != nil {
		logger.Error("failed to create new product", err)
		return nil, err
	}

	logger.Info("product created successfully", "product_id", product.ID)

	return product, nil
}

// UpdateProduct replaces the product's fields and pack list. Orders placed
// earlier keep their own copy of name and price.
func (s *productService) UpdateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when updating product")
		return nil, fmt.Errorf("context error: %w", err)
	}

	if product.ID == 0 {
		logger.Error("Invalid product data: ID is required")
		return nil, domain.NewValidationError("product ID is required")
	}

	if err := validateProduct(product); err != nil {
		logger.Error("Invalid product data", err)
		return nil, err
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		logger.Error("failed to update product", err)
		return nil, err
	}

	updatedProduct, err := s.productRepo.FindByID(ctx, product.ID)
	if err != nil {
		logger.Error("failed to fetch updated product", err)
		return nil, fmt.Errorf("failed to fetch updated product: %w", err)
	}

	logger.Info("product updated success", "product_id", product.ID)

	return &updatedProduct, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id uint64) error {
	if id == 0 {
		logger.Error("Invalid product id when deleting product")
		return domain.NewValidationError("invalid product id")
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		logger.Error("failed to delete product", err)
		return err
	}

	logger.Info("product deleted success", "product_id", id)

	return nil
}

func validateProduct(product *domain.Product) error {
	product.Name = strings.TrimSpace(product.Name)
	if product.Name == "" {
		return domain.NewValidationError("product name is required")
	}

	if len(product.Packs) == 0 {
		return domain.NewValidationError("at least one pack size is required")
	}

	seen := make(map[string]bool, len(product.Packs))
	for i := range product.Packs {
		pack := &product.Packs[i]
		pack.PackSize = strings.TrimSpace(pack.PackSize)
		if pack.PackSize == "" {
			return domain.NewValidationError("pack size is required")
		}
		if seen[pack.PackSize] {
			return domain.NewValidationError("duplicate pack size %q", pack.PackSize)
		}
		seen[pack.PackSize] = true

		if !pack.Price.IsPositive() {
			return domain.NewValidationError("price for pack %q must be greater than 0", pack.PackSize)
		}
		if pack.Price.GreaterThan(domain.MaxAmount) {
			return domain.NewValidationError("price for pack %q exceeds %s", pack.PackSize, domain.MaxAmount.StringFixed(2))
		}
	}

	if product.Stock < 0 {
		return domain.NewValidationError("stock cannot be negative")
	}

	if product.Rating < 0 || product.Rating > 5 {
		return domain.NewValidationError("rating must be between 0 and 5")
	}

	return nil
}
