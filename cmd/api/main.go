package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"credloom-coordinator/config"
	httpHandler "credloom-coordinator/internal/adapter/http/handler"
	ethLedger "credloom-coordinator/internal/adapter/ledger/ethereum"
	pgStorage "credloom-coordinator/internal/adapter/storage/postgres"
	redisStorage "credloom-coordinator/internal/adapter/storage/redis"
	"credloom-coordinator/internal/core/ports"
	"credloom-coordinator/internal/service"
	"credloom-coordinator/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting CredLoom Coordinator")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize ledger client and gateway
	ethClient, err := ethLedger.NewClient(ctx, cfg.Ledger, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to ledger RPC")
	}
	defer ethClient.Close()

	gateway, err := ethLedger.NewGateway(ethClient, cfg.Ledger, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize ledger gateway")
	}

	// Initialize repositories
	offerRepo := pgStorage.NewOfferRepo(pool)
	loanRepo := pgStorage.NewLoanRepo(pool)
	profileRepo := pgStorage.NewProfileRepo(pool)
	userRepo := pgStorage.NewUserRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	idempotencyCache := redisStorage.NewIdempotencyCache(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize core services
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	// Initialize business services
	authSvc := service.NewAuthService(userRepo, hashSvc, tokenSvc)
	offerSvc := service.NewOfferService(offerRepo, gateway, log)
	loanSvc := service.NewLoanService(offerRepo, loanRepo, profileRepo, gateway, idempotencyCache, transactor, log)
	reconcileSvc := service.NewReconcileService(offerRepo, loanRepo, profileRepo, gateway, transactor, log)
	rateSvc := service.NewTieredRateService()

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)
	ledgerHealth := ethLedger.NewHealthCheck(ethClient)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		OfferSvc:       offerSvc,
		LoanSvc:        loanSvc,
		RateSvc:        rateSvc,
		ReconcileSvc:   reconcileSvc,
		TokenSvc:       tokenSvc,
		Gateway:        gateway,
		ProfileRepo:    profileRepo,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth, ledgerHealth},
		Logger:         log,
	})

	// Background reconciliation ticker
	reconcileCtx, stopReconcile := context.WithCancel(ctx)
	defer stopReconcile()
	if cfg.Reconcile.Interval > 0 {
		go func() {
			ticker := time.NewTicker(cfg.Reconcile.Interval)
			defer ticker.Stop()
			for {
				select {
				case <-reconcileCtx.Done():
					return
				case <-ticker.C:
					if _, err := reconcileSvc.Run(reconcileCtx); err != nil {
						log.Error().Err(err).Msg("reconciliation pass failed")
					}
				}
			}
		}()
		log.Info().Dur("interval", cfg.Reconcile.Interval).Msg("Reconciliation ticker started")
	}

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	stopReconcile()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
