package router

import (
	"spiceMarket/internal/middleware"
	"spiceMarket/internal/rest"
	"spiceMarket/pkg/utils"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupAuthRoutes(api *echo.Group, handler *rest.UserHandler, tokens middleware.TokenParser, authRequired echo.MiddlewareFunc) {
	auth := api.Group("/auth")

	auth.POST("/register", handler.Register)
	auth.POST("/login", handler.Login)
	auth.POST("/forgot-password", handler.ForgotPassword)
	auth.POST("/verify-otp", handler.VerifyOTP, middleware.ResetTokenMiddleware(tokens, utils.PurposePasswordReset))
	auth.POST("/reset-password", handler.ResetPassword, middleware.ResetTokenMiddleware(tokens, utils.PurposeResetVerified))
	auth.GET("/me", handler.Me, authRequired)
}

func SetupUserRoutes(api *echo.Group, handler *rest.UserHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	users := api.Group("/users")

	users.GET("", handler.GetAllUsers, authRequired, adminOnly)
}

func SetupProductRoutes(api *echo.Group, handler *rest.ProductHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	products := api.Group("/prod")

	products.GET("/all", handler.GetAllProducts)
	products.GET("/:id", handler.GetProductByID)
	products.POST("", handler.CreateProduct, authRequired, adminOnly)
	products.PUT("/:id", handler.UpdateProduct, authRequired, adminOnly)
	products.DELETE("/:id", handler.DeleteProduct, authRequired, adminOnly)
}

func SetupCartRoutes(api *echo.Group, handler *rest.CartHandler) {
	cart := api.Group("/cart")

	cart.POST("", handler.CreateCart)
	cart.GET("", handler.GetCart)
	cart.DELETE("", handler.ClearCart)
	cart.POST("/items", handler.AddItem)
	cart.PATCH("/items", handler.UpdateItem)
	cart.DELETE("/items/:productId", handler.RemoveItem)
}

func SetOrdersRoutes(api *echo.Group, ordersHandler *rest.OrdersHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	orders := api.Group("/orders", authRequired)

	orders.POST("/create", ordersHandler.CreateOrder)
	orders.POST("/verify-payment", ordersHandler.VerifyPayment)
	orders.POST("/payment-failed", ordersHandler.PaymentFailed)
	orders.GET("", ordersHandler.GetAllOrders, adminOnly)
	orders.GET("/user/:userId", ordersHandler.GetOrdersByUser, middleware.SelfOrAdmin("userId"))
	orders.GET("/detail/:orderId", ordersHandler.GetOrderByID)
	orders.PATCH("/:orderId", ordersHandler.UpdateStatus, adminOnly)
}

func SetupOpsRoutes(e *echo.Echo, health *rest.HealthHandler) {
	e.GET("/healthz", health.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}
