package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spiceMarket/app/echo-server/router"
	"spiceMarket/business/cart"
	"spiceMarket/business/orders"
	"spiceMarket/business/product"
	userService "spiceMarket/business/user"
	"spiceMarket/internal/middleware"
	"spiceMarket/internal/repository/notification"
	psqlRepo "spiceMarket/internal/repository/postgres"
	"spiceMarket/internal/repository/razorpay"
	redisRepo "spiceMarket/internal/repository/redis"
	"spiceMarket/internal/rest"
	"spiceMarket/pkg/config"
	"spiceMarket/pkg/database"
	redisClient "spiceMarket/pkg/database/redis"
	"spiceMarket/pkg/logger"
	"spiceMarket/pkg/metrics"
	"spiceMarket/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting "+cfg.App.Name, "version", cfg.App.Version)

	metrics.Init()

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	logger.Info("Database connected successfully")

	rdb, err := redisClient.NewRedisClient(context.Background(), cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to redis", "error", err)
	}
	defer func() {
		if err := redisClient.CloseRedisClient(rdb); err != nil {
			logger.Error("Failed to close redis client", err)
		}
	}()

	// Init notification from mailjet
	mailjetEmail := notification.NewMailjetRepository(
		notification.MailjetConfig{
			MailjetBaseURL:           cfg.Mailjet.MailjetBaseUrl,
			MailjetBasicAuthUsername: cfg.Mailjet.MailjetBasicAuthUsername,
			MailjetBasicAuthPassword: cfg.Mailjet.MailjetBasicAuthPassword,
			MailjetSenderEmail:       cfg.Mailjet.MailjetSenderEmail,
			MailjetSenderName:        cfg.Mailjet.MailjetSenderName,
		},
	)

	razorpayRepo := razorpay.NewRazorpayRepository(
		razorpay.RazorpayConfig{
			KeyID:     cfg.Razorpay.KeyID,
			KeySecret: cfg.Razorpay.KeySecret,
			BaseUrl:   cfg.Razorpay.BaseUrl,
			Timeout:   cfg.Razorpay.Timeout,
		},
	)

	// Init validate
	validate := validator.New()
	tokens := utils.NewJWTManager(cfg.JWT.SecretKey)

	// Init repo
	userRepo := psqlRepo.NewUserRepository(db)
	ordersRepo := psqlRepo.NewOrdersRepository(db)
	productsRepo := psqlRepo.NewProductRepository(db)
	cartRepo := redisRepo.NewCartRepository(rdb, cfg.Cart.TTL)
	otpAttemptRepo := redisRepo.NewOTPAttemptRepository(rdb)

	// Init service
	userService := userService.NewUserService(userRepo, validate, mailjetEmail, tokens, otpAttemptRepo)
	productService := product.NewProductService(productsRepo)
	cartService := cart.NewCartService(cartRepo, productsRepo)
	ordersService := orders.NewOrdersService(ordersRepo, productsRepo, razorpayRepo, cartService, validate, cfg.Razorpay.Currency)

	// Init handler
	userHandler := rest.NewUserHandler(userService)
	productHandler := rest.NewProductHandler(productService)
	cartHandler := rest.NewCartHandler(cartService)
	ordersHandler := rest.NewOrdersHandler(ordersService, cartService)
	healthHandler := rest.NewHealthHandler(map[string]rest.Pinger{
		"postgres": rest.PingFunc(func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}),
		"redis": rest.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}),
	})

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:  cfg.Server.CORSAllowedOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, rest.HeaderCartID},
		ExposeHeaders: []string{rest.HeaderCartID},
	}))
	e.Use(middleware.RequestMetrics())

	// Auth middleware
	authRequired := middleware.AuthMiddleware(tokens)
	adminOnly := middleware.AdminOnly()

	// Setup routes
	api := e.Group("/api/v1")
	router.SetupAuthRoutes(api, userHandler, tokens, authRequired)
	router.SetupUserRoutes(api, userHandler, authRequired, adminOnly)
	router.SetupProductRoutes(api, productHandler, authRequired, adminOnly)
	router.SetupCartRoutes(api, cartHandler)
	router.SetOrdersRoutes(api, ordersHandler, authRequired, adminOnly)
	router.SetupOpsRoutes(e, healthHandler)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Info("Server stopped")
}
