package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"intern-pulse-bot/bot"
	"intern-pulse-bot/config"
	"intern-pulse-bot/internal/handlers"
	"intern-pulse-bot/internal/repository"
	"intern-pulse-bot/internal/routes"
	"intern-pulse-bot/internal/services"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Println("Config loaded successfully")

	// Application context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Shutdown signal received, initiating graceful shutdown...")
		cancel()
	}()

	router := initApplication(cfg)

	if err := initBot(cfg); err != nil {
		log.Printf("Warning: Failed to init Telegram Bot: %v", err)
	}

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "X-User-Id"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      corsMiddleware.Handler(router),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped gracefully")
}

// initBot initializes the Telegram bot
func initBot(cfg *config.Config) error {
	if err := bot.Init(cfg.TelegramBotToken, cfg.AdminChatID); err != nil {
		return err
	}

	bot.SetPocketBaseURL(cfg.PocketBaseURL)
	bot.SetPocketBaseToken(cfg.PocketBaseToken)
	bot.StartPolling()

	log.Println("Telegram Bot Initialized")
	return nil
}

// initApplication wires repositories, services, handlers and routes
func initApplication(cfg *config.Config) http.Handler {
	pendingRepo := repository.NewPocketBaseRESTPendingEntryRepository(cfg.PocketBaseURL)
	recordRepo := repository.NewPocketBaseRESTAttendanceRecordRepository(cfg.PocketBaseURL)
	profileRepo := repository.NewPocketBaseRESTProfileRepository(cfg.PocketBaseURL)

	lifecycle := services.NewLifecycleService(pendingRepo, recordRepo)
	stats := services.NewStatsService(recordRepo, pendingRepo, profileRepo)
	location := services.LocationPolicy{
		Latitude:          cfg.OfficeLatitude,
		Longitude:         cfg.OfficeLongitude,
		MaxDistanceMeters: cfg.MaxDistanceMeters,
	}

	attendanceHandler := handlers.NewAttendanceHandler(
		lifecycle,
		pendingRepo,
		recordRepo,
		profileRepo,
		location,
		bot.NewNotifier(),
	)
	analyticsHandler := handlers.NewAnalyticsHandler(stats)

	return routes.SetupRouter(attendanceHandler, analyticsHandler, profileRepo)
}
