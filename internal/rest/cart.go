package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"spiceMarket/domain"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// HeaderCartID carries the guest cart id issued by POST /cart.
const HeaderCartID = "X-Cart-ID"

type (
	CartHandler struct {
		validate    *validator.Validate
		cartService CartService
		timeout     time.Duration
	}

	CartService interface {
		NewCart(ctx context.Context) *domain.Cart
		GetCart(ctx context.Context, cartID string) (*domain.Cart, error)
		AddToCart(ctx context.Context, cartID string, productID uint64, packSize string, quantity int) (*domain.Cart, error)
		UpdateQuantity(ctx context.Context, cartID string, productID uint64, packSize string, delta int) (*domain.Cart, error)
		RemoveFromCart(ctx context.Context, cartID string, productID uint64) (*domain.Cart, error)
		ClearCart(ctx context.Context, cartID string) (*domain.Cart, error)
	}

	AddCartItemInput struct {
		ProductID uint64 `json:"productId" validate:"required"`
		PackSize  string `json:"packSize" validate:"required"`
		Quantity  int    `json:"quantity" validate:"required,gte=1,lte=1000"`
	}

	UpdateCartItemInput struct {
		ProductID uint64 `json:"productId" validate:"required"`
		PackSize  string `json:"packSize" validate:"required"`
		Delta     int    `json:"delta" validate:"required,gte=-1000,lte=1000"`
	}
)

func NewCartHandler(cartService CartService) *CartHandler {
	return &CartHandler{
		validate:    validator.New(),
		cartService: cartService,
		timeout:     5 * time.Second,
	}
}

func cartID(c echo.Context) string {
	return c.Request().Header.Get(HeaderCartID)
}

func (h *CartHandler) CreateCart(c echo.Context) error {
	cart := h.cartService.NewCart(c.Request().Context())

	c.Response().Header().Set(HeaderCartID, cart.ID)
	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(cart))
}

func (h *CartHandler) GetCart(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	cart, err := h.cartService.GetCart(ctx, cartID(c))
	if err != nil {
		return writeError(c, err, "Failed to get cart")
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(cart))
}

func (h *CartHandler) AddItem(c echo.Context) error {
	var request AddCartItemInput

	if err := c.Bind(&request); err != nil {
		return badRequest(c, err, "Invalid request body")
	}

	if err := h.validate.Struct(&request); err != nil {
		return badRequest(c, err, "Failed to validation cart item")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	cart, err := h.cartService.AddToCart(ctx, cartID(c), request.ProductID, request.PackSize, request.Quantity)
	if err != nil {
		return writeError(c, err, "Failed to add cart item")
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(cart))
}

func (h *CartHandler) UpdateItem(c echo.Context) error {
	var request UpdateCartItemInput

	if err := c.Bind(&request); err != nil {
		return badRequest(c, err, "Invalid request body")
	}

	if err := h.validate.Struct(&request); err != nil {
		return badRequest(c, err, "Failed to validation cart item update")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	cart, err := h.cartService.UpdateQuantity(ctx, cartID(c), request.ProductID, request.PackSize, request.Delta)
	if err != nil {
		return writeError(c, err, "Failed to update cart item")
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(cart))
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	productID, err := strconv.ParseUint(c.Param("productId"), 10, 64)
	if err != nil {
		return badRequest(c, err, "Invalid product id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	cart, err := h.cartService.RemoveFromCart(ctx, cartID(c), productID)
	if err != nil {
		return writeError(c, err, "Failed to remove cart item")
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(cart))
}

func (h *CartHandler) ClearCart(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	cart, err := h.cartService.ClearCart(ctx, cartID(c))
	if err != nil {
		return writeError(c, err, "Failed to clear cart")
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(cart))
}
