package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Malcolmik/ambo-backend/internal/api/handler"
	"github.com/Malcolmik/ambo-backend/internal/api/middleware"
	"github.com/Malcolmik/ambo-backend/internal/core/catalog"
	"github.com/Malcolmik/ambo-backend/internal/core/domain"
	"github.com/Malcolmik/ambo-backend/internal/core/ports"
	"github.com/Malcolmik/ambo-backend/internal/infrastructure/gateway/paystack"
)

// Deps carries everything the router needs; construction happens in main.
type Deps struct {
	Mongo    *mongo.Database
	Redis    *redis.Client
	Catalog  *catalog.Catalog
	Clients  ports.ClientRepository
	Auth     ports.AuthService
	Payments ports.PaymentService
	Webhooks ports.WebhookService
	Contract ports.ContractService

	JWTSecret string
	Log       zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("ambo"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth)
	paymentHandler := handler.NewPaymentHandler(d.Payments)
	webhookHandler := handler.NewWebhookHandler(d.Webhooks, paystack.SignatureHeader)
	contractHandler := handler.NewContractHandler(d.Contract, d.Clients)
	catalogHandler := handler.NewCatalogHandler(d.Catalog)

	authed := middleware.Auth(d.JWTSecret)
	staffOnly := middleware.RBAC(domain.RoleAdmin, domain.RoleSuperAdmin)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Catalog (public read) ---
	e.GET("/v1/catalog", catalogHandler.Get)

	// --- Payments ---
	// The webhook endpoint authenticates by signature, not by session.
	e.POST("/v1/payments/webhook", webhookHandler.Receive)
	e.POST("/v1/payments/initialize", paymentHandler.Initialize, authed)
	e.GET("/v1/payments/verify/:reference", paymentHandler.Verify, authed)

	// --- Contracts ---
	e.GET("/v1/contracts", contractHandler.List, authed)
	e.GET("/v1/contracts/:id", contractHandler.Get, authed)
	e.PATCH("/v1/contracts/:id/status", contractHandler.UpdateStatus, authed, staffOnly)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Mongo, d.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
