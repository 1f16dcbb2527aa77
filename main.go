package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dispodeals/config"
	"dispodeals/database"
	"dispodeals/handlers"
	"dispodeals/ingest"
	"dispodeals/repository"
	"dispodeals/scheduler"
	"dispodeals/scraper"
	"dispodeals/services"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := config.Load()

	// Deal storage
	var repo repository.DealRepository
	if cfg.UsePostgres() {
		if err := database.InitDatabase(cfg.DatabaseURL); err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer database.CloseDatabase()

		if err := database.CreateTables(); err != nil {
			log.Fatalf("Failed to create tables: %v", err)
		}
		repo = repository.NewPostgresDealRepository(database.DB)
	} else {
		log.Println("⚠️  DATABASE_URL not set, deals are kept in memory")
		repo = repository.NewMemoryDealRepository()
	}

	parser := scraper.NewParser(scraper.Config{
		DebugLogging: cfg.DebugLogging,
		PollAttempts: cfg.PollAttempts,
		PollInterval: cfg.PollInterval,
	})

	// Live scanning needs a browser; without one the scan routes answer 503
	var taskManager *scheduler.TaskManager
	if cfg.BrowserEnabled {
		browser, err := scraper.NewBrowser(scraper.BrowserConfig{
			BinPath:     cfg.BrowserBin,
			Headless:    cfg.Headless,
			PageTimeout: cfg.PageTimeout,
		}, parser)
		if err != nil {
			log.Printf("❌ Failed to start browser, live scanning disabled: %v", err)
		} else {
			defer browser.Close()

			taskManager = scheduler.NewTaskManager(browser, cfg.ScanWorkers, 2*cfg.PageTimeout)
			defer taskManager.Stop()

			if len(cfg.WatchURLs) > 0 {
				client := ingest.NewClient(ingest.Config{
					BaseURL: cfg.IngestBaseURL,
					APIKey:  cfg.IngestAPIKey,
					Debug:   cfg.DebugLogging,
				})
				watcher := scheduler.NewMenuWatcher(browser, client, cfg.WatchURLs, cfg.WatchSchedule)
				if err := watcher.Start(); err != nil {
					log.Printf("❌ Failed to schedule menu watcher: %v", err)
				} else {
					defer watcher.Stop()
				}
			}
		}
	}

	h := handlers.NewHandlers(services.NewDealService(repo), parser, taskManager, cfg.MaxRequestSize)

	rateLimit := cfg.RateLimit
	if !cfg.RateLimitEnabled {
		rateLimit = 0
	}
	router := handlers.NewRouter(h, handlers.RouterConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		APIKey:         cfg.IngestAPIKey,
		RateLimit:      rateLimit,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.RequestTimeout,
		WriteTimeout:      cfg.RequestTimeout,
	}

	log.Printf("🌐 DDD API listening on %s", cfg.Addr())
	log.Printf("📋 API:")
	log.Printf("   GET  /health - Health check")
	log.Printf("   POST /api/deals/ingest - Submit a deal")
	log.Printf("   GET  /api/deals/enhanced - Enriched deals (placeholder)")
	log.Printf("   POST /api/ingest/extension - Submit a scanned menu")
	log.Printf("   POST /api/analyze - Parse posted menu HTML")
	log.Printf("   POST /api/scans - Scan a live menu (browser required)")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("🛑 Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}
}
