// Package httpserver manages server creation and api routing.
package httpserver

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/accountdelivery"
	"github.com/go-petr/pet-ledger/internal/accountrepo"
	"github.com/go-petr/pet-ledger/internal/accountservice"
	"github.com/go-petr/pet-ledger/internal/authdelivery"
	"github.com/go-petr/pet-ledger/internal/healthdelivery"
	"github.com/go-petr/pet-ledger/internal/middleware"
	"github.com/go-petr/pet-ledger/internal/transactiondelivery"
	"github.com/go-petr/pet-ledger/internal/transactionrepo"
	"github.com/go-petr/pet-ledger/internal/transactionservice"
	"github.com/go-petr/pet-ledger/pkg/configpkg"
	"github.com/go-petr/pet-ledger/pkg/ratelimitpkg"
	"github.com/go-petr/pet-ledger/pkg/tokenpkg"
)

// Server holds db connection, handlers router and configuration.
type Server struct {
	DB         *sql.DB
	Engine     *gin.Engine
	Config     configpkg.Config
	TokenMaker tokenpkg.Maker

	redis *redis.Client
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// Close releases the connections opened by New, the database connection is left to its owner.
func (s *Server) Close() error {
	if s.redis != nil {
		return s.redis.Close()
	}

	return nil
}

// New creates Server type with instantiated domains and routes.
func New(conn *sql.DB, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	policy, err := config.LedgerPolicy()
	if err != nil {
		return nil, err
	}

	tokenMaker, err := tokenpkg.NewMaker(config.JWTAlgorithm, config.JWTSecret, tokenpkg.Options{
		Issuer:   config.JWTIssuer,
		Audience: config.JWTAudience,
		Leeway:   config.TokenLeeway,
	})
	if err != nil {
		return nil, errors.New("cannot create token maker")
	}

	engine := gin.New()

	// Client IPs key the rate limiters, X-Forwarded-For is honored only from listed proxies.
	if err := engine.SetTrustedProxies(config.TrustedProxyList()); err != nil {
		return nil, fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}

	server := &Server{
		DB:         conn,
		Config:     config,
		TokenMaker: tokenMaker,
	}

	var (
		limiter      ratelimitpkg.Limiter = ratelimitpkg.NewLocal(config.RateLimitRequests, config.RateLimitPeriod)
		loginLimiter ratelimitpkg.Limiter = ratelimitpkg.NewLocal(config.MaxLoginAttempts, config.LoginAttemptWindow)
	)

	if config.RedisAddress != "" {
		server.redis = redis.NewClient(&redis.Options{Addr: config.RedisAddress})
		limiter = ratelimitpkg.NewRedis(server.redis, "", config.RateLimitRequests, config.RateLimitPeriod)
		loginLimiter = ratelimitpkg.NewRedis(server.redis, "pet-ledger:ratelimit:login", config.MaxLoginAttempts, config.LoginAttemptWindow)
	}

	accountRepo := accountrepo.NewRepoPGS(conn)
	transactionRepo := transactionrepo.NewRepoPGS(conn)

	accountService := accountservice.New(accountRepo, policy)
	transactionService := transactionservice.New(transactionRepo, policy)

	authHandler := authdelivery.NewHandler(tokenMaker, config.AccessTokenDuration, config.RefreshTokenDuration)
	accountHandler := accountdelivery.NewHandler(accountService)
	transactionHandler := transactiondelivery.NewHandler(transactionService)
	healthHandler := healthdelivery.NewHandler(conn)

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(corsMiddleware(config))
	engine.Use(middleware.RateLimit(limiter))

	engine.GET("/health", healthHandler.Check)

	engine.POST("/auth/login", middleware.RateLimit(loginLimiter), authHandler.Login)
	engine.POST("/auth/refresh", authHandler.Refresh)

	authRoutes := engine.Group("/").Use(middleware.AuthMiddleware(tokenMaker))

	authRoutes.POST("/accounts", accountHandler.Create)
	authRoutes.GET("/accounts", accountHandler.List)
	authRoutes.GET("/accounts/:id/transactions", transactionHandler.ListByAccount)

	authRoutes.POST("/transactions", transactionHandler.Create)
	authRoutes.GET("/transactions", transactionHandler.List)
	authRoutes.GET("/transactions/:id", transactionHandler.Get)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		err := v.RegisterValidation("txtype", transactiondelivery.ValidTransactionType)
		if err != nil {
			return nil, errors.New("cannot register transaction type validator")
		}
	}

	server.Engine = engine

	return server, nil
}

func corsMiddleware(config configpkg.Config) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader, "Retry-After"},
		AllowCredentials: true,
	}

	for _, origin := range config.AllowedOrigins() {
		if origin == "*" {
			corsConfig.AllowAllOrigins = true
			corsConfig.AllowOrigins = nil

			break
		}

		corsConfig.AllowOrigins = append(corsConfig.AllowOrigins, origin)
	}

	if !corsConfig.AllowAllOrigins && len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	}

	return cors.New(corsConfig)
}
