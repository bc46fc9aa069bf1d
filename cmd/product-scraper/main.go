package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	"github.com/moolyamitra/product-scraper/internal/api"
	"github.com/moolyamitra/product-scraper/internal/browser"
	"github.com/moolyamitra/product-scraper/internal/config"
	"github.com/moolyamitra/product-scraper/internal/database"
	"github.com/moolyamitra/product-scraper/internal/events"
	"github.com/moolyamitra/product-scraper/internal/jobs"
	"github.com/moolyamitra/product-scraper/internal/profile"
	"github.com/moolyamitra/product-scraper/internal/scraper"
	"github.com/moolyamitra/product-scraper/internal/sitemap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Site profiles
	profiles, err := profile.NewRegistry(cfg.Scraper.ProfilesFile)
	if err != nil {
		logger.Error("failed to load site profiles", "error", err)
		os.Exit(1)
	}
	logger.Info("site profiles loaded", "sites", profiles.Sites())

	// Database connection
	db, err := database.New(ctx, database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Database: cfg.Database.Name,
		SSLMode:  cfg.Database.SSLMode,
		MaxConns: cfg.Database.MaxConns,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	products := database.NewProductRepository(db)
	if err := products.EnsureSchema(ctx); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	// Redis for event publishing and batch-job dedup
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error("failed to connect to Redis", "error", err)
		os.Exit(1)
	}

	publisher := events.NewPublisher(redisClient, cfg.Redis.EventStream, logger)

	// Browser setup
	b, err := browser.New(&browser.Options{
		Headless:       cfg.Browser.Headless,
		Timeout:        cfg.Browser.Timeout,
		UserAgent:      cfg.Browser.UserAgent,
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
		AcceptLanguage: cfg.Browser.AcceptLanguage,
		TimezoneID:     cfg.Browser.TimezoneID,
		Locale:         cfg.Browser.Locale,
	})
	if err != nil {
		logger.Error("failed to initialize browser", "error", err)
		os.Exit(1)
	}
	defer b.Close()

	if cfg.Scraper.ScreenshotDir != "" {
		if err := os.MkdirAll(cfg.Scraper.ScreenshotDir, 0o755); err != nil {
			logger.Warn("failed to create screenshot dir", "dir", cfg.Scraper.ScreenshotDir, "error", err)
		}
	}

	// Services
	scraperService := scraper.NewService(b, profiles, scraper.Options{
		SelectorTimeout: cfg.Scraper.SelectorTimeout,
		ScreenshotDir:   cfg.Scraper.ScreenshotDir,
	}, logger)

	sitemapClient := sitemap.NewClient(30*time.Second, cfg.Browser.UserAgent, logger)
	deduper := jobs.NewRedisDeduper(redisClient, cfg.Redis.DedupPrefix)
	jobManager := jobs.NewManager(profiles, scraperService, products, publisher, sitemapClient, deduper, jobs.ManagerConfig{
		ItemDelay: cfg.Scraper.ItemDelay,
		MaxItems:  cfg.Scraper.MaxJobItems,
	}, logger)

	handlers := api.NewHandlers(scraperService, products, jobManager, publisher, logger)

	// Setup Chi router
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(2 * time.Minute))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://localhost:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", handlers.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/scrape", handlers.ScrapeAndSave)
		r.Post("/jobs/sitemap", handlers.LaunchSitemapJob)
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down server...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("server starting", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
