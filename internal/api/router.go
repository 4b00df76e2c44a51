package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/zabotech/ops-system/internal/api/handler"
	"github.com/zabotech/ops-system/internal/api/middleware"
	"github.com/zabotech/ops-system/internal/core/ports"
	"github.com/zabotech/ops-system/internal/core/service"
	"github.com/zabotech/ops-system/internal/infrastructure/config"
	mongodb "github.com/zabotech/ops-system/internal/infrastructure/db/mongo"
	redisdb "github.com/zabotech/ops-system/internal/infrastructure/db/redis"
	"github.com/zabotech/ops-system/pkg/logger"
)

// NewRouter builds the Echo instance with all middleware, dependencies and
// routes registered.
func NewRouter(db *mongo.Database, rdb *goredis.Client, mailer ports.Mailer, cfg *config.Config) *echo.Echo {
	log := logger.Get()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Secure())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.PATCH, echo.DELETE},
	}))
	e.Use(echoprometheus.NewMiddleware("ops"))

	// --- Repositories ---
	clientRepo := mongodb.NewClientRepository(db)
	userRepo := mongodb.NewUserRepository(db)
	orderRepo := mongodb.NewOrderRepository(db)

	// --- Services ---
	authService := service.NewAuthService(userRepo, mailer, cfg.JWTSecret, cfg.BaseURL, cfg.TokenTTL, cfg.ResetTokenTTL, log)
	clientService := service.NewClientService(clientRepo, mailer, log)
	orderService := service.NewOrderService(orderRepo, clientRepo, userRepo, log)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(authService)
	clientHandler := handler.NewClientHandler(clientService)
	orderHandler := handler.NewOrderHandler(orderService)
	healthHandler := handler.NewHealthHandler(db, rdb)

	// --- Route middleware ---
	authRequired := middleware.Auth(cfg.JWTSecret)
	apiLimiter := echomiddleware.RateLimiter(
		redisdb.NewRateLimitStore(rdb, "api", cfg.RateLimit.PerMinute, time.Minute, log))
	authLimiter := echomiddleware.RateLimiter(
		redisdb.NewRateLimitStore(rdb, "auth", cfg.RateLimit.AuthPerMinute, time.Minute, log))
	resetLimiter := echomiddleware.RateLimiter(
		redisdb.NewRateLimitStore(rdb, "reset", cfg.RateLimit.ResetPerMinute, time.Minute, log))

	// --- Health probes and metrics (no auth) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- User routes ---
	users := e.Group("/users")
	users.POST("/registerUser", authHandler.Register, authLimiter)
	users.POST("/loginUser", authHandler.Login, authLimiter)
	users.POST("/logoutUser", authHandler.Logout, authLimiter)
	users.GET("/getProfile", authHandler.Profile, authRequired)
	users.POST("/forgot-password", authHandler.ForgotPassword, resetLimiter)
	users.POST("/reset-password/:token", authHandler.ResetPassword, resetLimiter)

	// --- Client routes ---
	clients := e.Group("/clients", authRequired, apiLimiter)
	clients.POST("", clientHandler.Create)
	clients.GET("", clientHandler.List)
	clients.GET("/email/:email", clientHandler.GetByEmail)
	clients.GET("/:id", clientHandler.GetByID)
	clients.PUT("/:id", clientHandler.Update)
	clients.PATCH("/:id", clientHandler.Patch)
	clients.DELETE("/:id", clientHandler.Delete)

	// --- Order routes ---
	orders := e.Group("/orders", authRequired, apiLimiter)
	orders.POST("", orderHandler.Create)
	orders.GET("", orderHandler.List)
	orders.GET("/stats", orderHandler.Stats)
	orders.GET("/client/:clientId", orderHandler.ListByClient)
	orders.GET("/:id", orderHandler.GetByID)
	orders.PUT("/:id", orderHandler.Update)
	orders.PATCH("/:id/status", orderHandler.ChangeStatus)
	orders.DELETE("/:id", orderHandler.Delete)

	return e
}
