package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Malcolmik/ambo-backend/docs"
	"github.com/Malcolmik/ambo-backend/internal/api"
	"github.com/Malcolmik/ambo-backend/internal/core/catalog"
	"github.com/Malcolmik/ambo-backend/internal/core/service"
	"github.com/Malcolmik/ambo-backend/internal/infrastructure/config"
	mongodb "github.com/Malcolmik/ambo-backend/internal/infrastructure/db/mongo"
	redisdb "github.com/Malcolmik/ambo-backend/internal/infrastructure/db/redis"
	"github.com/Malcolmik/ambo-backend/internal/infrastructure/gateway/paystack"
	"github.com/Malcolmik/ambo-backend/internal/infrastructure/notify"
	"github.com/Malcolmik/ambo-backend/internal/infrastructure/queue"
	"github.com/Malcolmik/ambo-backend/pkg/logger"
)

const (
	startupTimeout    = 15 * time.Second
	shutdownTimeout   = 10 * time.Second
	dispatcherWorkers = 4
)

// @title        Ambo Operations API
// @version      1.0
// @description  Payments, contracts and client onboarding for the Ambo agency backend.
// @BasePath     /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	mongoClient, db, err := mongodb.Connect(startCtx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongo disconnect failed")
		}
	}()

	rdb, err := redisdb.Connect(startCtx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	// Repositories.
	paymentRepo := mongodb.NewPaymentRepository(db)
	contractRepo := mongodb.NewContractRepository(db)
	clientRepo := mongodb.NewClientRepository(db)
	userRepo := mongodb.NewUserRepository(db)
	notifRepo := mongodb.NewNotificationRepository(db)
	auditRepo := mongodb.NewAuditRepository(db)

	for name, idx := range map[string]interface {
		EnsureIndexes(context.Context) error
	}{
		"payments":      paymentRepo,
		"contracts":     contractRepo,
		"clients":       clientRepo,
		"users":         userRepo,
		"notifications": notifRepo,
		"audit_log":     auditRepo,
	} {
		if err := idx.EnsureIndexes(startCtx); err != nil {
			log.Fatal().Err(err).Str("collection", name).Msg("index creation failed")
		}
	}

	// Price catalog: compiled-in defaults, optionally replaced from disk.
	cat := catalog.Default()
	if cfg.Payment.CatalogPath != "" {
		cat, err = catalog.LoadFile(cfg.Payment.CatalogPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.Payment.CatalogPath).Msg("catalog load failed")
		}
		log.Info().Str("path", cfg.Payment.CatalogPath).Msg("loaded catalog override")
	}

	gateway := paystack.NewClient(paystack.Config{
		BaseURL: cfg.Paystack.BaseURL,
		Secret:  cfg.Paystack.Secret,
		Timeout: cfg.Paystack.Timeout,
	}, log)

	tx := mongodb.NewTxRunner(mongoClient)
	replay := redisdb.NewReplayChecker(rdb)

	dispatcher := queue.NewDispatcher(dispatcherWorkers, notify.NewLogSender(log), log)
	dispatcher.Start(ctx)

	confirmSvc := service.NewConfirmationService(
		paymentRepo, contractRepo, clientRepo, userRepo,
		notifRepo, auditRepo, tx, dispatcher, log,
	)
	paymentSvc := service.NewPaymentService(
		cat, gateway, paymentRepo, contractRepo, clientRepo, userRepo,
		auditRepo, confirmSvc, tx, cfg.Payment.CallbackURL, log,
	)
	webhookSvc := service.NewWebhookService(gateway, confirmSvc, replay, log)
	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.Payment.TokenTTL)
	contractSvc := service.NewContractService(contractRepo, clientRepo, auditRepo, log)

	docs.SwaggerInfo.Host = "localhost:" + cfg.Port

	e := api.NewRouter(api.Deps{
		Mongo:     db,
		Redis:     rdb,
		Catalog:   cat,
		Clients:   clientRepo,
		Auth:      authSvc,
		Payments:  paymentSvc,
		Webhooks:  webhookSvc,
		Contract:  contractSvc,
		JWTSecret: cfg.JWTSecret,
		Log:       log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}
