package handler

import (
	"credloom-coordinator/internal/adapter/http/middleware"
	redisStore "credloom-coordinator/internal/adapter/storage/redis"
	"credloom-coordinator/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	OfferSvc       ports.OfferService
	LoanSvc        ports.LoanService
	RateSvc        ports.RateService
	ReconcileSvc   ports.ReconcileService
	TokenSvc       ports.TokenService
	Gateway        ports.LedgerGateway
	ProfileRepo    ports.ProfileRepository
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.CORS())
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL, Redis and the ledger RPC)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	offerHandler := NewOfferHandler(deps.OfferSvc)
	offers := v1.Group("/offers")
	{
		offers.POST("", rl("offers_create"), offerHandler.CreateOffer)
		offers.GET("", rl("reads"), offerHandler.ListOffers)
	}

	loanHandler := NewLoanHandler(deps.LoanSvc)
	loans := v1.Group("/loans")
	{
		loans.POST("/accept", rl("loans_accept"), loanHandler.AcceptOffer)
	}

	ledgerHandler := NewLedgerHandler(deps.Gateway, deps.ProfileRepo)
	borrowers := v1.Group("/borrowers")
	{
		borrowers.GET("/:address/flagged", rl("reads"), ledgerHandler.GetFlagged)
		borrowers.GET("/:address/profile", rl("reads"), ledgerHandler.GetProfile)
	}

	wallets := v1.Group("/wallets")
	{
		wallets.GET("/:address/balance", rl("reads"), ledgerHandler.GetBalance)
	}

	rateHandler := NewRateHandler(deps.RateSvc)
	rates := v1.Group("/rates")
	{
		rates.POST("/quote", rl("reads"), rateHandler.Quote)
	}

	// --- JWT-authenticated routes (operator actions) ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)

	loansAuthed := v1.Group("/loans", jwtAuth)
	{
		loansAuthed.POST("/:loanId/default", rl("loans_default"), loanHandler.TriggerDefault)
	}

	adminHandler := NewAdminHandler(deps.ReconcileSvc)
	admin := v1.Group("/admin", jwtAuth)
	{
		admin.POST("/reconcile", adminHandler.Reconcile)
	}

	return r
}
