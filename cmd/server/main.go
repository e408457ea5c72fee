package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	grpcapi "rentaltracker-backend/internal/api/grpc"
	httpapi "rentaltracker-backend/internal/api/http"
	"rentaltracker-backend/internal/config"
	"rentaltracker-backend/internal/domain"
	"rentaltracker-backend/internal/logger"
	"rentaltracker-backend/internal/repository/postgres"
	"rentaltracker-backend/internal/security"
	"rentaltracker-backend/internal/service"
	"rentaltracker-backend/internal/telemetry"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	migrate := flag.Bool("migrate", false, "Apply the database schema before serving")
	seedAdmin := flag.Bool("seed-admin", false, "Create the configured administrator if none exists")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Equipment Rental Tracker...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress(), "health_address", cfg.GetHealthAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize tracing
	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("Failed to flush traces", "error", err)
		}
	}()

	// Initialize Database
	logger.Debug("Connecting to database...", "connection_string", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database))
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)

	// Test database connection
	if err := db.PingContext(ctx); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	if *migrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
		logger.Info("Database schema applied")
	}

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.SessionExpiryMinutes)*time.Minute)

	// Initialize Services
	authSvc := service.NewAuthService(store.UserRepository, tokenManager)
	equipmentSvc := service.NewEquipmentService(store, store.EquipmentRepository)
	userSvc := service.NewUserService(store, store.UserRepository, store.RentalRepository)
	rentalSvc := service.NewRentalService(store, store.RentalRepository, time.Now)
	reportSvc := service.NewReportService(
		store.ReportRepository,
		store.EquipmentRepository,
		store.UserRepository,
		rentalSvc,
		time.Now,
	)

	if *seedAdmin {
		created, err := userSvc.EnsureAdmin(ctx, domain.UserInput{
			Name:     cfg.Seed.AdminName,
			Email:    cfg.Seed.AdminEmail,
			Username: cfg.Seed.AdminUsername,
			Password: cfg.Seed.AdminPassword,
		})
		if err != nil {
			log.Fatalf("Failed to seed administrator: %v", err)
		}
		logger.Info("Administrator seed checked", "created", created)
	}

	// Set up HTTP server
	router := httpapi.NewRouter(httpapi.Dependencies{
		Auth:      authSvc,
		Equipment: equipmentSvc,
		Users:     userSvc,
		Rentals:   rentalSvc,
		Reports:   reportSvc,
		Tokens:    tokenManager,
		Pinger:    store,
	})
	httpServer := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Set up gRPC health server
	healthServer, err := grpcapi.NewHealthServer(cfg.GetHealthAddress(), store, 15*time.Second)
	if err != nil {
		logger.Error("Failed to listen", "error", err, "address", cfg.GetHealthAddress())
		log.Fatalf("Failed to listen: %v", err)
	}

	errCh := make(chan error, 2)
	go func() {
		errCh <- healthServer.Serve(ctx)
	}()
	go func() {
		logger.Info("HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error("Server error", "error", err)
		}
		stop()
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	logger.Info("Server stopped. Goodbye!")
}
