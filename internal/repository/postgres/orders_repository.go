package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"spiceMarket/domain"

	"gorm.io/gorm"
)

type OrdersRepository struct {
	DB *gorm.DB
}

func NewOrdersRepository(db *gorm.DB) *OrdersRepository {
	return &OrdersRepository{
		DB: db,
	}
}

// Create inserts the order together with its items.
func (r *OrdersRepository) Create(ctx context.Context, order *domain.Order) error {
	if err := r.DB.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

func (r *OrdersRepository) FindByID(ctx context.Context, id uint64) (domain.Order, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *OrdersRepository) FindByRazorpayOrderID(ctx context.Context, razorpayOrderID string) (domain.Order, error) {
	return r.findOne(ctx, "razorpay_order_id = ?", razorpayOrderID)
}

func (r *OrdersRepository) FindAll(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	return r.find(ctx, r.DB.WithContext(ctx), filter)
}

func (r *OrdersRepository) FindByUserID(ctx context.Context, userID uint, filter domain.OrderFilter) ([]domain.Order, error) {
	return r.find(ctx, r.DB.WithContext(ctx).Where("user_id = ?", userID), filter)
}

// UpdatePayment writes the payment columns of one order. A single-row
// update, so concurrent verifications resolve last-write-wins.
func (r *OrdersRepository) UpdatePayment(ctx context.Context, order *domain.Order) error {
	result := r.DB.WithContext(ctx).Model(&domain.Order{}).Where("id = ?", order.ID).
		Updates(map[string]interface{}{
			"payment_status":      order.PaymentStatus,
			"razorpay_payment_id": order.RazorpayPaymentID,
			"razorpay_signature":  order.RazorpaySignature,
			"failure_reason":      order.FailureReason,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update order payment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrOrderNotFound
	}

	return nil
}

func (r *OrdersRepository) UpdateStatus(ctx context.Context, id uint64, status domain.OrderStatus) error {
	result := r.DB.WithContext(ctx).Model(&domain.Order{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update order status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrOrderNotFound
	}

	return nil
}

func (r *OrdersRepository) findOne(ctx context.Context, query string, arg interface{}) (domain.Order, error) {
	var order domain.Order

	err := r.DB.WithContext(ctx).Preload("Items").Where(query, arg).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("failed to find order: %w", err)
	}

	return order, nil
}

func (r *OrdersRepository) find(ctx context.Context, tx *gorm.DB, filter domain.OrderFilter) ([]domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if filter.Status != "" {
		tx = tx.Where("status = ?", filter.Status)
	}
	if filter.PaymentStatus != "" {
		tx = tx.Where("payment_status = ?", filter.PaymentStatus)
	}
	if filter.From != nil {
		tx = tx.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		tx = tx.Where("created_at <= ?", *filter.To)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		tx = tx.Where("username ILIKE ? OR phone_number ILIKE ? OR razorpay_order_id ILIKE ?", like, like, like)
	}

	var orders []domain.Order
	if err := tx.Preload("Items").Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to find orders: %w", err)
	}

	return orders, nil
}
