package rest

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"spiceMarket/business/orders"
	"spiceMarket/domain"
	"spiceMarket/internal/middleware"
	"spiceMarket/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	OrdersHandler struct {
		validate      *validator.Validate
		ordersService OrdersService
		carts         CartReader
		timeout       time.Duration
	}

	OrdersService interface {
		CreateOrder(ctx context.Context, input orders.CreateOrderInput) (domain.CheckoutSession, error)
		VerifyPayment(ctx context.Context, input orders.VerifyPaymentInput) (domain.Order, error)
		MarkPaymentFailed(ctx context.Context, actor domain.Actor, razorpayOrderID, reason string) (domain.Order, error)
		UpdateStatus(ctx context.Context, orderID uint64, status domain.OrderStatus) (domain.Order, error)
		GetAllOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
		GetOrdersByUser(ctx context.Context, userID uint, filter domain.OrderFilter) ([]domain.Order, error)
		GetOrder(ctx context.Context, actor domain.Actor, orderID uint64) (domain.Order, error)
	}

	// CartReader lets checkout fall back to the items of the caller's cart.
	CartReader interface {
		GetCart(ctx context.Context, cartID string) (*domain.Cart, error)
	}

	OrderItemRequest struct {
		ProductID uint64 `json:"productId" validate:"required"`
		PackSize  string `json:"packSize" validate:"required"`
		Quantity  int    `json:"quantity" validate:"required,gte=1,lte=1000"`
	}

	CreateOrderRequest struct {
		Items       []OrderItemRequest `json:"items" validate:"dive"`
		Username    string             `json:"username" validate:"required"`
		PhoneNumber string             `json:"phoneNumber" validate:"required"`
		Address     string             `json:"address" validate:"required"`
	}

	VerifyPaymentRequest struct {
		RazorpayOrderID string `json:"razorpayOrderId" validate:"required"`
		PaymentID       string `json:"paymentId" validate:"required"`
		Signature       string `json:"signature" validate:"required"`
	}

	PaymentFailedRequest struct {
		RazorpayOrderID string `json:"razorpayOrderId" validate:"required"`
		Reason          string `json:"reason"`
	}

	UpdateStatusRequest struct {
		Status string `json:"status" validate:"required"`
	}
)

func NewOrdersHandler(ordersService OrdersService, carts CartReader) *OrdersHandler {
	return &OrdersHandler{
		validate:      validator.New(),
		ordersService: ordersService,
		carts:         carts,
		timeout:       15 * time.Second,
	}
}

// CreateOrder opens a checkout for the posted items. When the body carries no
// items and an X-Cart-ID header is present, the cart's lines are used.
func (h *OrdersHandler) CreateOrder(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var request CreateOrderRequest

	if err := c.Bind(&request); err != nil {
		return badRequest(c, err, "Invalid request body")
	}

	if err := h.validate.Struct(&request); err != nil {
		return badRequest(c, err, "Failed to validation order request")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	items := make([]orders.OrderItemInput, 0, len(request.Items))
	for _, item := range request.Items {
		items = append(items, orders.OrderItemInput{
			ProductID: item.ProductID,
			PackSize:  item.PackSize,
			Quantity:  item.Quantity,
		})
	}

	if len(items) == 0 && cartID(c) != "" && h.carts != nil {
		cart, err := h.carts.GetCart(ctx, cartID(c))
		if err != nil {
			return writeError(c, err, "Failed to read cart for checkout")
		}
		items = cartItems(cart)
	}

	session, err := h.ordersService.CreateOrder(ctx, orders.CreateOrderInput{
		UserID:      actor.UserID,
		Username:    request.Username,
		PhoneNumber: request.PhoneNumber,
		Address:     request.Address,
		Items:       items,
	})
	if err != nil {
		return writeError(c, err, "Failed to create order")
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(session))
}

func cartItems(cart *domain.Cart) []orders.OrderItemInput {
	var items []orders.OrderItemInput
	for _, line := range cart.Items {
		for _, size := range line.PackSizes() {
			items = append(items, orders.OrderItemInput{
				ProductID: line.ProductID,
				PackSize:  size,
				Quantity:  line.Packs[size],
			})
		}
	}
	return items
}

func (h *OrdersHandler) VerifyPayment(c echo.Context) error {
	var request VerifyPaymentRequest

	if err := c.Bind(&request); err != nil {
		return badRequest(c, err, "Invalid request body")
	}

	if err := h.validate.Struct(&request); err != nil {
		return badRequest(c, err, "Failed to validation payment verification")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	order, err := h.ordersService.VerifyPayment(ctx, orders.VerifyPaymentInput{
		RazorpayOrderID: request.RazorpayOrderID,
		PaymentID:       request.PaymentID,
		Signature:       request.Signature,
		CartID:          cartID(c),
	})
	if err != nil {
		return writeError(c, err, "Failed to verify payment")
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(order))
}

func (h *OrdersHandler) PaymentFailed(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var request PaymentFailedRequest

	if err := c.Bind(&request); err != nil {
		return badRequest(c, err, "Invalid request body")
	}

	if err := h.validate.Struct(&request); err != nil {
		return badRequest(c, err, "Failed to validation payment failure")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	order, err := h.ordersService.MarkPaymentFailed(ctx, actor, request.RazorpayOrderID, request.Reason)
	if err != nil {
		return writeError(c, err, "Failed to record payment failure")
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(order))
}

func (h *OrdersHandler) GetAllOrders(c echo.Context) error {
	filter, err := parseOrderFilter(c)
	if err != nil {
		return badRequest(c, err, "Invalid order filter")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	list, err := h.ordersService.GetAllOrders(ctx, filter)
	if err != nil {
		return writeError(c, err, "Failed to get all orders")
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(list))
}

func (h *OrdersHandler) GetOrdersByUser(c echo.Context) error {
	userID, err := strconv.ParseUint(c.Param("userId"), 10, 64)
	if err != nil {
		return badRequest(c, err, "Invalid user id")
	}

	filter, err := parseOrderFilter(c)
	if err != nil {
		return badRequest(c, err, "Invalid order filter")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	list, err := h.ordersService.GetOrdersByUser(ctx, uint(userID), filter)
	if err != nil {
		return writeError(c, err, "Failed to get user orders")
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(list))
}

func (h *OrdersHandler) GetOrderByID(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	orderID, err := strconv.ParseUint(c.Param("orderId"), 10, 64)
	if err != nil {
		return badRequest(c, err, "Invalid order id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	order, err := h.ordersService.GetOrder(ctx, actor, orderID)
	if err != nil {
		return writeError(c, err, "Failed to get order by id")
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(order))
}

func (h *OrdersHandler) UpdateStatus(c echo.Context) error {
	orderID, err := strconv.ParseUint(c.Param("orderId"), 10, 64)
	if err != nil {
		return badRequest(c, err, "Invalid order id")
	}

	var request UpdateStatusRequest

	if err := c.Bind(&request); err != nil {
		return badRequest(c, err, "Invalid request body")
	}

	if err := h.validate.Struct(&request); err != nil {
		return badRequest(c, err, "Failed to validation order status")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	order, err := h.ordersService.UpdateStatus(ctx, orderID, domain.OrderStatus(request.Status))
	if err != nil {
		return writeError(c, err, "Failed to update order status")
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(order))
}

// parseOrderFilter reads status, paymentStatus, search, from and to. Dates
// are RFC 3339 or YYYY-MM-DD; a bare "to" date covers that whole day.
func parseOrderFilter(c echo.Context) (domain.OrderFilter, error) {
	filter := domain.OrderFilter{
		Status:        domain.OrderStatus(c.QueryParam("status")),
		PaymentStatus: domain.PaymentStatus(c.QueryParam("paymentStatus")),
		Search:        c.QueryParam("search"),
	}

	if raw := c.QueryParam("from"); raw != "" {
		from, _, err := parseFilterTime(raw)
		if err != nil {
			return filter, err
		}
		filter.From = &from
	}

	if raw := c.QueryParam("to"); raw != "" {
		to, dateOnly, err := parseFilterTime(raw)
		if err != nil {
			return filter, err
		}
		if dateOnly {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
		filter.To = &to
	}

	return filter, nil
}

func parseFilterTime(raw string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, false, nil
	}

	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		logger.Debug("Unparseable order filter date", "value", raw)
		return time.Time{}, false, fmt.Errorf("invalid date %q, use RFC 3339 or YYYY-MM-DD", raw)
	}

	return t, true, nil
}
