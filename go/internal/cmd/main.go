package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/splitcast/splitcast/go/internal/broadcast"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	// Setup logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	config, err := loadConfig(getEnv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	secret := os.Getenv("RACERESULT_WEBHOOK_SECRET")
	if secret == "" {
		log.Fatal().Msg("RACERESULT_WEBHOOK_SECRET environment variable is required")
	}

	database, err := setupDatabase()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to setup database")
	}
	defer database.Close()

	natsConfig := broadcast.DefaultNATSConfig()
	natsConfig.URL = config.NATS.URL
	natsConfig.SubjectPrefix = config.NATS.SubjectPrefix

	broadcaster, err := broadcast.NewNATSBroadcaster(natsConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect broadcaster")
	}
	defer broadcaster.Close()

	service := setupIngestService(database, broadcaster, secret)
	server := setupServer(config, service)

	go func() {
		log.Info().Str("addr", server.Addr).Msg("ingestion server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	log.Info().Msg("ingestion server shutdown complete")
}
