package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clarityledger/clarity-backend/internal/ai"
	"github.com/clarityledger/clarity-backend/internal/config"
	"github.com/clarityledger/clarity-backend/internal/handler"
	"github.com/clarityledger/clarity-backend/internal/middleware"
	"github.com/clarityledger/clarity-backend/internal/ocr"
	"github.com/clarityledger/clarity-backend/internal/repository/jsonfile"
	"github.com/clarityledger/clarity-backend/internal/repository/storage"
	"github.com/clarityledger/clarity-backend/internal/service"
	"github.com/clarityledger/clarity-backend/internal/websocket"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Open the JSON data store
	store, err := jsonfile.NewStore(cfg.DataDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.DataDir).Msg("Failed to open data store")
	}
	log.Info().Str("dir", cfg.DataDir).Msg("Data store ready")

	// Initialize repositories
	transactionRepo := jsonfile.NewTransactionRepository(store)
	budgetRepo := jsonfile.NewBudgetRepository(store)
	recurringRepo := jsonfile.NewRecurringRepository(store)
	settingsRepo := jsonfile.NewSettingsRepository(store)

	imageStore, err := storage.NewFilesystemImageRepository(cfg.ImageDir, "/images")
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.ImageDir).Msg("Failed to open image store")
	}

	// WebSocket hub
	hub := websocket.NewHub()

	// OCR engine and AI extractor
	engine := ocr.NewEngine(ocr.NewTesseractRecognizer(cfg.OCR.Command, cfg.OCR.Languages))
	defer engine.Terminate()
	extractor := ai.NewExtractor(cfg.AI.Endpoint)

	// Initialize services
	transactionService := service.NewTransactionService(transactionRepo)
	budgetService := service.NewBudgetService(budgetRepo, transactionRepo)
	recurringService := service.NewRecurringService(recurringRepo, transactionRepo, settingsRepo)
	dashboardService := service.NewDashboardService(transactionRepo)
	settingsService := service.NewSettingsService(settingsRepo)
	backupService := service.NewBackupService(transactionRepo, budgetRepo, recurringRepo, settingsRepo)
	imageService := service.NewImageService(imageStore)
	scanService := service.NewScanService(imageService, engine, extractor, settingsRepo, hub)

	// Generate any recurring instances that came due since the last run
	if result, err := recurringService.ProcessDueIfStale(time.Now()); err != nil {
		log.Error().Err(err).Msg("Recurring processing at startup failed")
	} else if result != nil && result.CreatedCount > 0 {
		log.Info().Int("created", result.CreatedCount).Msg("Recurring transactions generated at startup")
		hub.Publish(websocket.TopicData, websocket.RecurringProcessed(result))
	}

	// Initialize handlers
	transactionHandler := handler.NewTransactionHandler(transactionService, hub)
	budgetHandler := handler.NewBudgetHandler(budgetService, hub)
	recurringHandler := handler.NewRecurringHandler(recurringService, hub)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	settingsHandler := handler.NewSettingsHandler(settingsService, hub)
	backupHandler := handler.NewBackupHandler(backupService, hub)
	scanHandler := handler.NewScanHandler(scanService)
	imageHandler := handler.NewImageHandler(imageService)
	wsHandler := handler.NewWebSocketHandler(hub, cfg.CORSOrigins)

	// Rate limiter for the scan endpoints
	rateLimiter := middleware.NewRateLimiter()
	defer rateLimiter.Stop()

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Stored receipt images
	e.Static("/images", cfg.ImageDir)

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Register API routes
	handler.RegisterRoutes(e, rateLimiter, transactionHandler, budgetHandler, recurringHandler, dashboardHandler, settingsHandler, backupHandler, scanHandler, imageHandler, wsHandler)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
