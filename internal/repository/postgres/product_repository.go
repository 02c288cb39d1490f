package postgres

import (
	"context"
	"errors"
	"fmt"

	"spiceMarket/domain"

	"gorm.io/gorm"
)

type ProductRepository struct {
	DB *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{
		DB: db,
	}
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id uint64) (domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return domain.Product{}, fmt.Errorf("context error: %w", err)
	}

	var product domain.Product

	err := r.DB.WithContext(ctx).Preload("Packs").First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("failed to find product: %w", err)
	}

	return product, nil
}

// FindByIDs returns the products that exist among ids; missing ids are
// simply absent from the result.
func (r *ProductRepository) FindByIDs(ctx context.Context, ids []uint64) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	var products []domain.Product
	err := r.DB.WithContext(ctx).Preload("Packs").Where("id IN ?", ids).Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}

	return products, nil
}

func (r *ProductRepository) FindAll(ctx context.Context, query string) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	tx := r.DB.WithContext(ctx).Preload("Packs").Order("id ASC")
	if query != "" {
		like := "%" + query + "%"
		tx = tx.Where("name ILIKE ? OR description ILIKE ?", like, like)
	}

	var products []domain.Product
	if err := tx.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}

	return products, nil
}

// Update overwrites the product's fields and replaces its packs in one transaction.
func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updateData := map[string]interface{}{
			"name":        product.Name,
			"description": product.Description,
			"image":       product.Image,
			"stock":       product.Stock,
			"rating":      product.Rating,
		}

		result := tx.Model(&domain.Product{}).Where("id = ?", product.ID).Updates(updateData)
		if result.Error != nil {
			return fmt.Errorf("failed to update product: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.ErrProductNotFound
		}

		if err := tx.Where("product_id = ?", product.ID).Delete(&domain.ProductPack{}).Error; err != nil {
			return fmt.Errorf("failed to clear product packs: %w", err)
		}

		for i := range product.Packs {
			product.Packs[i].ID = 0
			product.Packs[i].ProductID = product.ID
		}
		if len(product.Packs) > 0 {
			if err := tx.Create(&product.Packs).Error; err != nil {
				return fmt.Errorf("failed to save product packs: %w", err)
			}
		}

		return nil
	})
}

func (r *ProductRepository) Delete(ctx context.Context, id uint64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).Delete(&domain.Product{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrProductNotFound
	}

	return nil
}
