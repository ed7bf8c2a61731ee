package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/avieira/tourbase-be/internal/api"
	"github.com/avieira/tourbase-be/internal/auth"
	"github.com/avieira/tourbase-be/internal/config"
	"github.com/avieira/tourbase-be/internal/database"
	"github.com/avieira/tourbase-be/internal/logger"
	"github.com/avieira/tourbase-be/internal/mailer"
	"github.com/avieira/tourbase-be/internal/monitoring"
	"github.com/avieira/tourbase-be/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel)

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up the auth core
	hasher := auth.NewPasswordHasher(cfg.BcryptCost, cfg.MaxConcurrentHashes)
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTExpiresIn, cfg.ResetTokenTTL)

	// Set up services and collaborators
	userService := services.NewUserService(db, hasher)
	auditService := services.NewAuditService(db)
	mail := mailer.NewSMTPMailer(cfg)

	// Set up and run the background reset-token janitor
	janitor, err := monitoring.NewResetJanitor(userService, cfg.JanitorSchedule)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize reset-token janitor")
	}
	go janitor.Run()

	// Set up router
	router := api.NewRouter(cfg, tokens, hasher, userService, auditService, mail)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	janitor.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
