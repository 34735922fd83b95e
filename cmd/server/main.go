package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"growthlog/internal/config"
	"growthlog/internal/database"
	"growthlog/internal/handlers"
	"growthlog/internal/repository"
	"growthlog/internal/security"
	"growthlog/internal/service"
	"growthlog/internal/store"
	"growthlog/internal/validation"
)

func main() {
	cfg := config.Load()

	if cfg.TokenSecret == "" {
		log.Fatal("TOKEN_SECRET must be set")
	}
	issuer, err := security.NewTokenIssuer(cfg.TokenSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatalf("Failed to create token issuer: %v", err)
	}

	var (
		guardians    store.GuardianStore
		children     store.ChildStore
		measurements store.MeasurementStore
	)

	if strings.EqualFold(cfg.DatabaseType, "memory") {
		mem := store.NewMemory()
		guardians, children, measurements = mem, mem, mem
		log.Println("Using in-memory storage; data will not survive restarts")
	} else {
		db, err := database.Open(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()

		log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

		if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		log.Println("Migrations completed successfully")

		guardians = repository.NewGuardianRepository(db)
		children = repository.NewChildRepository(db)
		measurements = repository.NewMeasurementRepository(db)
	}

	guardianService := service.NewGuardianService(guardians, children, measurements, issuer)
	growthService := service.NewGrowthService(guardianService, children, measurements,
		validation.ChildPolicy{RequireBirthDate: cfg.BirthDateRequired})

	mw := handlers.NewMiddleware(guardianService, cfg.CookieName, cfg.TokenTTL)
	childHandler := handlers.NewChildHandler(growthService)
	measurementHandler := handlers.NewMeasurementHandler(growthService)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      handlers.NewRouter(mw, childHandler, measurementHandler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
