package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/linguameet/linguameet-api/internal/api/handler"
	"github.com/linguameet/linguameet-api/internal/api/middleware"
	"github.com/linguameet/linguameet-api/internal/core/service"
	"github.com/linguameet/linguameet-api/internal/infrastructure/chat"
	"github.com/linguameet/linguameet-api/internal/infrastructure/config"
	mongostore "github.com/linguameet/linguameet-api/internal/infrastructure/db/mongo"
	redisstore "github.com/linguameet/linguameet-api/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(
	client *mongo.Client,
	db *mongo.Database,
	rdb *redis.Client,
	chatClient *chat.Client,
	sync service.ProfileEnqueuer,
	cfg *config.Config,
	log zerolog.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("linguameet"))

	// --- Dependencies ---
	userRepo := mongostore.NewUserRepository(db)
	requestRepo := mongostore.NewFriendRequestRepository(db)
	tx := mongostore.NewTransactor(client)
	cache := redisstore.NewRecommendationCache(rdb)

	authService := service.NewAuthService(userRepo, sync, cfg.JWTSecret, 7*24*time.Hour, log)
	relationshipService := service.NewRelationshipService(userRepo, requestRepo, tx, cache, log)

	authHandler := handler.NewAuthHandler(authService, cfg.Env == "production")
	userHandler := handler.NewUserHandler(relationshipService)
	chatHandler := handler.NewChatHandler(chatClient)
	authRequired := middleware.Auth(cfg.JWTSecret, userRepo)

	// --- Auth routes ---
	auth := e.Group("/api/auth")
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/me", authHandler.Me, authRequired)
	auth.POST("/onboarding", authHandler.Onboard, authRequired)

	// --- Relationship routes ---
	user := e.Group("/api/user", authRequired)
	user.GET("", userHandler.Recommended)
	user.GET("/friends", userHandler.Friends)
	user.POST("/friend-request/:id", userHandler.SendRequest)
	user.PUT("/friend-request/:id/accept", userHandler.AcceptRequest)
	user.GET("/friend-requests", userHandler.Requests)
	user.GET("/outgoing-friend-requests", userHandler.OutgoingRequests)

	// --- Chat routes ---
	chatGroup := e.Group("/api/chat", authRequired)
	chatGroup.GET("/token", chatHandler.Token)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
