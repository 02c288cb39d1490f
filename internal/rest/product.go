package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"spiceMarket/domain"
	"spiceMarket/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type ProductService interface {
	GetAllProducts(ctx context.Context, query string) ([]domain.Product, error)
	GetProductByID(ctx context.Context, id uint64) (*domain.Product, error)
	CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id uint64) error
}

type ProductHandler struct {
	productService ProductService
	validator      *validator.Validate
	timeout        time.Duration
}

func NewProductHandler(productService ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		validator:      validator.New(),
		timeout:        10 * time.Second,
	}
}

type PackRequest struct {
	PackSize string          `json:"packSize" validate:"required"`
	Price    decimal.Decimal `json:"price"`
}

type ProductRequest struct {
	Name        string        `json:"name" validate:"required"`
	Description string        `json:"description"`
	Image       string        `json:"image" validate:"omitempty,url"`
	Stock       int           `json:"stock" validate:"gte=0"`
	Rating      float64       `json:"rating" validate:"gte=0,lte=5"`
	Packs       []PackRequest `json:"packs" validate:"required,min=1,dive"`
}

func (r ProductRequest) toDomain(id uint64) *domain.Product {
	packs := make([]domain.ProductPack, 0, len(r.Packs))
	for _, p := range r.Packs {
		packs = append(packs, domain.ProductPack{PackSize: p.PackSize, Price: p.Price})
	}

	return &domain.Product{
		ID:          id,
		Name:        r.Name,
		Description: r.Description,
		Image:       r.Image,
		Stock:       r.Stock,
		Rating:      r.Rating,
		Packs:       packs,
	}
}

func parseProductID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

func (h *ProductHandler) GetAllProducts(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	products, err := h.productService.GetAllProducts(ctx, c.QueryParam("q"))
	if err != nil {
		return writeError(c, err, "Failed to find all Product")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":  "successfully get all products",
		"products": products,
	})
}

func (h *ProductHandler) GetProductByID(c echo.Context) error {
	productId, err := parseProductID(c)
	if err != nil {
		return badRequest(c, err, "Invalid product id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	product, err := h.productService.GetProductByID(ctx, productId)
	if err != nil {
		return writeError(c, err, "Failed to find product by id")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "successfully find product by id",
		"product": product,
	})
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req ProductRequest

	if err := c.Bind(&req); err != nil {
		return badRequest(c, err, "Failed to bind request")
	}

	if err := h.validator.Struct(&req); err != nil {
		return badRequest(c, err, "Failed to validate product request")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	product, err := h.productService.CreateProduct(ctx, req.toDomain(0))
	if err != nil {
		return writeError(c, err, "Failed to create product")
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "successfully created product",
		"product": product,
	})
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	productId, err := parseProductID(c)
	if err != nil {
		return badRequest(c, err, "Invalid product id")
	}

	var req ProductRequest

	if err := c.Bind(&req); err != nil {
		return badRequest(c, err, "Failed to bind request")
	}

	if err := h.validator.Struct(&req); err != nil {
		return badRequest(c, err, "Failed to validate product request")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	product, err := h.productService.UpdateProduct(ctx, req.toDomain(productId))
	if err != nil {
		return writeError(c, err, "Failed to update product")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "successfully updated product",
		"product": product,
	})
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	productId, err := parseProductID(c)
	if err != nil {
		return badRequest(c, err, "Invalid product id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.productService.DeleteProduct(ctx, productId); err != nil {
		return writeError(c, err, "Failed to delete product")
	}

	logger.Info("Product removed from catalog", "product_id", productId)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "successfully deleted product",
	})
}
