package orders

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"spiceMarket/domain"
	"spiceMarket/pkg/logger"
	"spiceMarket/pkg/metrics"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrdersRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id uint64) (domain.Order, error)
	FindByRazorpayOrderID(ctx context.Context, razorpayOrderID string) (domain.Order, error)
	FindAll(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
	FindByUserID(ctx context.Context, userID uint, filter domain.OrderFilter) ([]domain.Order, error)
	UpdatePayment(ctx context.Context, order *domain.Order) error
	UpdateStatus(ctx context.Context, id uint64, status domain.OrderStatus) error
}

type ProductRepository interface {
	FindByIDs(ctx context.Context, ids []uint64) ([]domain.Product, error)
}

type PaymentGateway interface {
	KeyID() string
	CreateOrder(ctx context.Context, req domain.RazorpayOrderRequest) (domain.RazorpayOrder, error)
	VerifyPaymentSignature(razorpayOrderID, paymentID, signature string) bool
}

// CartClearer empties the buyer's cart once a payment is confirmed.
type CartClearer interface {
	ClearCart(ctx context.Context, cartID string) (*domain.Cart, error)
}

type (
	CreateOrderInput struct {
		UserID      uint             `validate:"required"`
		Username    string           `validate:"required"`
		PhoneNumber string           `validate:"required"`
		Address     string           `validate:"required"`
		Items       []OrderItemInput `validate:"required,min=1,dive"`
	}

	OrderItemInput struct {
		ProductID uint64 `validate:"required"`
		PackSize  string `validate:"required"`
		Quantity  int    `validate:"required,gte=1,lte=1000"`
	}

	VerifyPaymentInput struct {
		RazorpayOrderID string `validate:"required"`
		PaymentID       string `validate:"required"`
		Signature       string `validate:"required"`
		CartID          string
	}
)

type OrdersService struct {
	orderRepo   OrdersRepository
	productRepo ProductRepository
	gateway     PaymentGateway
	carts       CartClearer
	validate    *validator.Validate
	currency    string
}

func NewOrdersService(
	orderRepo OrdersRepository,
	productRepo ProductRepository,
	gateway PaymentGateway,
	carts CartClearer,
	validate *validator.Validate,
	currency string,
) *OrdersService {
	if currency == "" {
		currency = "INR"
	}

	return &OrdersService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		gateway:     gateway,
		carts:       carts,
		validate:    validate,
		currency:    currency,
	}
}

// CreateOrder prices every line from the catalog, opens a gateway order for
// the total and stores a pending, unpaid order. Lines naming an unknown
// product or pack size reject the whole request before the gateway is called.
func (s *OrdersService) CreateOrder(ctx context.Context, input CreateOrderInput) (domain.CheckoutSession, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.PhoneNumber = strings.TrimSpace(input.PhoneNumber)
	input.Address = strings.TrimSpace(input.Address)

	if err := s.validate.Struct(input); err != nil {
		logger.Error("Invalid create order input", err)
		return domain.CheckoutSession{}, domain.NewValidationError("invalid order: %v", err)
	}

	items, total, err := s.priceItems(ctx, input.Items)
	if err != nil {
		return domain.CheckoutSession{}, err
	}

	if total.GreaterThan(domain.MaxAmount) {
		logger.Warn("Order total over limit", "user_id", input.UserID, "total", total.String())
		return domain.CheckoutSession{}, domain.NewValidationError("order total exceeds %s", domain.MaxAmount.StringFixed(2))
	}

	amount := total.Shift(2).Round(0).IntPart()
	if amount <= 0 {
		return domain.CheckoutSession{}, domain.NewValidationError("order total must be greater than 0")
	}

	gatewayOrder, err := s.gateway.CreateOrder(ctx, domain.RazorpayOrderRequest{
		Amount:   amount,
		Currency: s.currency,
		Receipt:  "rcpt_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		Notes: map[string]string{
			"user_id":  strconv.FormatUint(uint64(input.UserID), 10),
			"username": input.Username,
		},
	})
	if err != nil {
		logger.Error("Failed to create gateway order", err)
		return domain.CheckoutSession{}, fmt.Errorf("%w: %v", domain.ErrGatewayFailure, err)
	}

	order := domain.Order{
		UserID:          input.UserID,
		Username:        input.Username,
		PhoneNumber:     input.PhoneNumber,
		Address:         input.Address,
		Items:           items,
		TotalAmount:     total,
		Currency:        s.currency,
		Status:          domain.OrderStatusPending,
		PaymentStatus:   domain.PaymentStatusUnpaid,
		RazorpayOrderID: gatewayOrder.ID,
	}

	if err := s.orderRepo.Create(ctx, &order); err != nil {
		logger.Error("Failed to persist order", err, "razorpay_order_id", gatewayOrder.ID)
		return domain.CheckoutSession{}, err
	}

	metrics.OrdersCreated.Inc()
	logger.Info("Order created", "order_id", order.ID, "razorpay_order_id", order.RazorpayOrderID, "total", total.String())

	return domain.CheckoutSession{
		OrderID:         order.ID,
		RazorpayOrderID: order.RazorpayOrderID,
		TotalAmount:     total,
		AmountSubunits:  amount,
		Currency:        s.currency,
		KeyID:           s.gateway.KeyID(),
	}, nil
}

// priceItems snapshots name and price of every line from the catalog.
func (s *OrdersService) priceItems(ctx context.Context, lines []OrderItemInput) ([]domain.OrderItem, decimal.Decimal, error) {
	ids := make([]uint64, 0, len(lines))
	seen := make(map[uint64]bool, len(lines))
	for _, line := range lines {
		if !seen[line.ProductID] {
			seen[line.ProductID] = true
			ids = append(ids, line.ProductID)
		}
	}

	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		logger.Error("Failed to load products for order", err)
		return nil, decimal.Zero, err
	}

	byID := make(map[uint64]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	total := decimal.Zero
	items := make([]domain.OrderItem, 0, len(lines))
	for _, line := range lines {
		product, ok := byID[line.ProductID]
		if !ok {
			return nil, decimal.Zero, domain.NewValidationError("product %d does not exist", line.ProductID)
		}

		packSize := strings.TrimSpace(line.PackSize)
		price, ok := product.PriceFor(packSize)
		if !ok {
			return nil, decimal.Zero, domain.NewValidationError("product %q has no pack size %q", product.Name, packSize)
		}

		lineTotal := price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		total = total.Add(lineTotal)

		items = append(items, domain.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			PackSize:  packSize,
			Price:     price,
			Quantity:  line.Quantity,
			LineTotal: lineTotal,
		})
	}

	return items, total, nil
}

// VerifyPayment confirms a payment reported by the checkout widget. The
// signature is checked before the order is read, so a tampered payload never
// touches the order. Repeating a successful verification returns the same order.
func (s *OrdersService) VerifyPayment(ctx context.Context, input VerifyPaymentInput) (domain.Order, error) {
	if err := s.validate.Struct(input); err != nil {
		return domain.Order{}, domain.NewValidationError("invalid payment verification: %v", err)
	}

	if !s.gateway.VerifyPaymentSignature(input.RazorpayOrderID, input.PaymentID, input.Signature) {
		metrics.PaymentVerifications.WithLabelValues("invalid_signature").Inc()
		logger.Warn("Payment signature mismatch", "razorpay_order_id", input.RazorpayOrderID, "payment_id", input.PaymentID)
		return domain.Order{}, domain.ErrInvalidSignature
	}

	order, err := s.orderRepo.FindByRazorpayOrderID(ctx, input.RazorpayOrderID)
	if err != nil {
		metrics.PaymentVerifications.WithLabelValues("not_found").Inc()
		return domain.Order{}, err
	}

	if order.PaymentStatus == domain.PaymentStatusPaid {
		if order.RazorpayPaymentID != input.PaymentID {
			metrics.PaymentVerifications.WithLabelValues("conflict").Inc()
			logger.Warn("Second payment for a paid order", "order_id", order.ID, "payment_id", input.PaymentID)
			return domain.Order{}, domain.ErrAlreadyPaid
		}

		metrics.PaymentVerifications.WithLabelValues("paid").Inc()
		s.clearCart(ctx, input.CartID)
		return order, nil
	}

	order.PaymentStatus = domain.PaymentStatusPaid
	order.RazorpayPaymentID = input.PaymentID
	order.RazorpaySignature = input.Signature
	order.FailureReason = ""

	if err := s.orderRepo.UpdatePayment(ctx, &order); err != nil {
		metrics.PaymentVerifications.WithLabelValues("error").Inc()
		logger.Error("Failed to mark order paid", err, "order_id", order.ID)
		return domain.Order{}, err
	}

	metrics.PaymentVerifications.WithLabelValues("paid").Inc()
	logger.Info("Payment verified", "order_id", order.ID, "payment_id", input.PaymentID)

	s.clearCart(ctx, input.CartID)
	return order, nil
}

// MarkPaymentFailed records a failure reported by the checkout widget. A paid
// order is never downgraded.
func (s *OrdersService) MarkPaymentFailed(ctx context.Context, actor domain.Actor, razorpayOrderID, reason string) (domain.Order, error) {
	if strings.TrimSpace(razorpayOrderID) == "" {
		return domain.Order{}, domain.NewValidationError("razorpayOrderId is required")
	}

	order, err := s.orderRepo.FindByRazorpayOrderID(ctx, razorpayOrderID)
	if err != nil {
		return domain.Order{}, err
	}

	if !actor.CanAccess(order.UserID) {
		return domain.Order{}, domain.ErrOrderForbidden
	}

	if order.PaymentStatus == domain.PaymentStatusPaid {
		return domain.Order{}, domain.ErrOrderPaid
	}

	order.PaymentStatus = domain.PaymentStatusFailed
	order.FailureReason = strings.TrimSpace(reason)

	if err := s.orderRepo.UpdatePayment(ctx, &order); err != nil {
		logger.Error("Failed to mark payment failed", err, "order_id", order.ID)
		return domain.Order{}, err
	}

	logger.Info("Payment failed", "order_id", order.ID, "reason", order.FailureReason)
	return order, nil
}

// UpdateStatus overwrites the fulfilment status with any known value; no
// transition order is enforced.
func (s *OrdersService) UpdateStatus(ctx context.Context, orderID uint64, status domain.OrderStatus) (domain.Order, error) {
	if !status.Valid() {
		return domain.Order{}, domain.NewValidationError("invalid order status %q", status)
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}

	if err := s.orderRepo.UpdateStatus(ctx, orderID, status); err != nil {
		logger.Error("Failed to update order status", err, "order_id", orderID)
		return domain.Order{}, err
	}

	logger.Info("Order status changed", "order_id", orderID, "from", order.Status, "to", status)

	order.Status = status
	return order, nil
}

func (s *OrdersService) GetAllOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}

	return s.orderRepo.FindAll(ctx, filter)
}

func (s *OrdersService) GetOrdersByUser(ctx context.Context, userID uint, filter domain.OrderFilter) ([]domain.Order, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}

	return s.orderRepo.FindByUserID(ctx, userID, filter)
}

func (s *OrdersService) GetOrder(ctx context.Context, actor domain.Actor, orderID uint64) (domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}

	if !actor.CanAccess(order.UserID) {
		return domain.Order{}, domain.ErrOrderForbidden
	}

	return order, nil
}

func (s *OrdersService) clearCart(ctx context.Context, cartID string) {
	if cartID == "" || s.carts == nil {
		return
	}

	if _, err := s.carts.ClearCart(ctx, cartID); err != nil {
		logger.Warn("Failed to clear cart after payment", err, "cart_id", cartID)
	}
}

func validateFilter(filter domain.OrderFilter) error {
	if filter.Status != "" && !filter.Status.Valid() {
		return domain.NewValidationError("invalid order status %q", filter.Status)
	}
	if filter.PaymentStatus != "" && !filter.PaymentStatus.Valid() {
		return domain.NewValidationError("invalid payment status %q", filter.PaymentStatus)
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return domain.NewValidationError("from must not be after to")
	}
	return nil
}
