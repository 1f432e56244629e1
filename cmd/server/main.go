package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/ksred/portfolio-api/internal/auth"
	"github.com/ksred/portfolio-api/internal/config"
	"github.com/ksred/portfolio-api/internal/database"
	"github.com/ksred/portfolio-api/internal/portfolio"
	"github.com/ksred/portfolio-api/internal/pricing"
	"github.com/ksred/portfolio-api/internal/types"
	"github.com/ksred/portfolio-api/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// init configures application logging. Development gets pretty console
// output; DEBUG=true raises the level.
func init() {
	if os.Getenv("ENV") != "production" {
		output := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
		zlog.Logger = zerolog.New(output).With().Timestamp().Logger()
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if os.Getenv("DEBUG") == "true" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

// main wires configuration, storage, pricing, and the HTTP API, then
// runs the server with graceful shutdown.
func main() {
	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	db, err := database.NewDatabase(cfg.DatabasePath)
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to initialize database")
	}

	router := gin.Default()

	authService := auth.NewService(cfg.JWTSecret)
	authHandlers := auth.NewGinHandlers(authService)
	// Register demo credentials
	authService.RegisterAPICredentials(auth.TestAPIKey, auth.TestAPISecret)

	// The price cache is built here and handed to the resolution
	// service so its lifetime matches the process
	priceCache := pricing.NewCache[types.PriceQuote](pricing.CacheTTL)
	quotes := pricing.NewQuoteClient(cfg.TwelveDataKey, cfg.ProviderTimeout)
	crypto := pricing.NewCryptoClient(cfg.ProviderTimeout)
	priceService := pricing.NewService(quotes, crypto, priceCache, cfg.FxFallback)
	priceHandlers := pricing.NewGinHandlers(priceService)

	portfolioService := portfolio.NewService(db, priceService)
	portfolioHandlers := portfolio.NewGinHandlers(portfolioService)

	// Background snapshot refresher
	snapshotProcessor := portfolio.NewProcessor(portfolioService, cfg.RefreshInterval)
	processorCtx, processorCancel := context.WithCancel(context.Background())
	defer processorCancel()

	go snapshotProcessor.Start(processorCtx)

	router.Use(middleware.RateLimit())

	setupRoutes(router, authService, authHandlers, priceHandlers, portfolioHandlers)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal().Err(err).Msg("listen")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	zlog.Info().Msg("Server exiting")
}

// setupRoutes configures all API endpoints:
// - Auth routes: public, exchange credentials for a token
// - Quote routes: public price probes
// - Account routes: protected by JWT authentication
// - Internal routes: protected by internal network authentication
func setupRoutes(
	router *gin.Engine,
	authService *auth.Service,
	authHandlers *auth.GinHandlers,
	priceHandlers *pricing.GinHandlers,
	portfolioHandlers *portfolio.GinHandlers,
) {
	v1 := router.Group("/api/v1")
	{
		authRoutes := v1.Group("/auth")
		{
			authRoutes.POST("/token", authHandlers.GenerateTokenHandler())
		}

		v1.GET("/quote", priceHandlers.QuoteHandler())

		accounts := v1.Group("/accounts")
		accounts.Use(middleware.JWTAuth(authService))
		{
			accounts.GET("", portfolioHandlers.ListAccountsHandler())
			accounts.GET("/:account_id/summary", portfolioHandlers.AccountSummaryHandler())
		}

		internal := v1.Group("/internal")
		internal.Use(middleware.InternalAuth(authService))
		{
			internal.POST("/refresh-prices/:account_id", portfolioHandlers.RefreshPricesHandler())
		}
	}
}
