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

	"github.com/matchbook/matchbook-api/internal/config"
	"github.com/matchbook/matchbook-api/internal/database"
	"github.com/matchbook/matchbook-api/internal/engine"
	"github.com/matchbook/matchbook-api/internal/feed"
	"github.com/matchbook/matchbook-api/internal/intake"
	"github.com/matchbook/matchbook-api/internal/journal"
	"github.com/matchbook/matchbook-api/internal/settlement"
	"github.com/matchbook/matchbook-api/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// init configures the application logging based on environment settings
// In development mode, it enables pretty printing with timestamps
// Debug logging can be enabled via DEBUG environment variable
func init() {
	// Configure pretty logging for development
	if os.Getenv("ENV") != "production" {
		output := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
		zlog.Logger = zerolog.New(output).With().Timestamp().Logger()
	}

	// Set global log level
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if os.Getenv("DEBUG") == "true" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

// main initializes and runs the order lifecycle server with graceful
// shutdown support. The store is constructed once and handed to every
// actor; the feed, sweeper and journal run as cancellable background
// tasks beside the HTTP server.
func main() {
	cfg := config.Load()

	// Initialize journal database
	db, err := database.NewDatabase(cfg.JournalPath)
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to initialize journal database")
	}

	// Initialize the order store and its background actors
	store := engine.NewStore()
	sweeper := engine.NewSweeper(store, cfg.Engine.SweepInterval)
	priceFeed := feed.NewAdapter(cfg.Feed.URL, cfg.Feed.Symbol, cfg.Feed.Backoff)
	eventJournal := journal.New(db, store.Events())

	backgroundCtx, backgroundCancel := context.WithCancel(context.Background())
	defer backgroundCancel()

	go sweeper.Start(backgroundCtx)
	go priceFeed.Start(backgroundCtx)
	go eventJournal.Start(backgroundCtx)

	// Initialize router
	router := gin.Default()

	// Initialize services and handlers
	intakeService := intake.NewService(store)
	intakeHandlers := intake.NewGinHandlers(intakeService)

	settlementService := settlement.NewService(store)
	settlementHandlers := settlement.NewGinHandlers(settlementService)

	feedHandlers := feed.NewGinHandlers(priceFeed)

	// Setup middleware
	router.Use(middleware.RateLimit())

	// Setup API routes
	setupRoutes(router, intakeHandlers, settlementHandlers, feedHandlers)

	// Create server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown setup
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

	// Stop the background actors first so no transition is left half
	// applied, then drain the HTTP server.
	backgroundCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	zlog.Info().Msg("Server exiting")
}

// setupRoutes configures all API endpoints and their handlers
// It groups routes by functionality:
// - Order routes: submission and the query surface for the display layer
// - Settlement routes: accept/reject decisions on existing orders
// - Market routes: last observed price from the external feed
// Parameters:
//   - router: The main Gin router instance
//   - intakeHandlers: Handlers for order submission and queries
//   - settlementHandlers: Handlers for settlement decisions
//   - feedHandlers: Handlers for market data
func setupRoutes(
	router *gin.Engine,
	intakeHandlers *intake.GinHandlers,
	settlementHandlers *settlement.GinHandlers,
	feedHandlers *feed.GinHandlers,
) {
	v1 := router.Group("/api/v1")
	{
		// Order routes
		orders := v1.Group("/orders")
		{
			orders.POST("", intakeHandlers.SubmitOrderHandler())
			orders.GET("", intakeHandlers.ListOrdersHandler())
			orders.GET("/matches", intakeHandlers.MatchesHandler())
			orders.GET("/:order_id", intakeHandlers.GetOrderHandler())
		}

		// Settlement routes
		settle := v1.Group("/settlement")
		{
			settle.POST("/:order_id/accept", settlementHandlers.AcceptOrderHandler())
			settle.POST("/:order_id/reject", settlementHandlers.RejectOrderHandler())
		}

		// Market data routes
		market := v1.Group("/market")
		{
			market.GET("/price", feedHandlers.LastPriceHandler())
		}
	}
}
