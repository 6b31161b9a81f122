package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"life-coach-chat/internal/api"
	"life-coach-chat/internal/chat"
	"life-coach-chat/internal/coach"
	"life-coach-chat/internal/config"
	"life-coach-chat/internal/db"
	"life-coach-chat/internal/progress"
	"life-coach-chat/internal/safety"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.OpenAI.APIKey == "" {
		log.Fatalf("OpenAI API key not configured (set OPENAI_API_KEY or %s)",
			filepath.Join(cfg.SettingsDir, "secrets", "openai.yaml"))
	}

	// Ensure data directory exists
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	// Initialize database
	database, err := db.NewDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migrated successfully")

	// Initialize coach client
	var coachOpts []coach.Option
	if cfg.OpenAI.Model != "" {
		coachOpts = append(coachOpts, coach.WithModel(cfg.OpenAI.Model))
	}
	coachClient := coach.NewClient(cfg.OpenAI.APIKey, coachOpts...)
	log.Println("Coach client initialized")

	// Crisis detector with any configured extra phrases
	detector := safety.NewDetector(cfg.Safety.ExtraPhrases...)
	if len(cfg.Safety.ExtraPhrases) > 0 {
		log.Printf("Crisis detector loaded extra_phrases=%d", len(cfg.Safety.ExtraPhrases))
	}

	tracker := progress.NewTracker(database)

	// Background worker for fire-and-forget challenge extraction
	extractor := chat.NewExtractorWorker(database, coachClient)
	extractor.Start()

	pipeline := chat.NewPipeline(database, coachClient, detector, tracker, extractor)

	// Create router
	router := api.NewRouter(database, pipeline, tracker, cfg.StaticDir)

	// Setup server
	port := getEnvOrDefault("PORT", "8080")
	server := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	// Handle graceful shutdown
	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Server is shutting down...")

		// Stop the extraction worker first
		extractor.Shutdown()

		// Shutdown HTTP server with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Fatalf("Server forced to shutdown: %v", err)
		}

		close(done)
	}()

	log.Printf("Server starting on port %s", port)
	log.Printf("Static files served from: %s", cfg.StaticDir)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server failed to start: %v", err)
	}

	<-done
	log.Println("Server stopped gracefully")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
