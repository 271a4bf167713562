package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/plinphon/FaultyAPI/internal/config"
	"github.com/plinphon/FaultyAPI/pkg/logging"
	"github.com/plinphon/FaultyAPI/pkg/server"
	"github.com/rs/zerolog/log"
)

func main() {
	// A missing .env file is fine; the environment still applies.
	_ = godotenv.Load()

	cfg, err := config.Load("")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Setup(logging.Config{Level: logging.LogLevel(cfg.LogLevel), Pretty: cfg.LogPretty})

	srv, err := server.New(server.Config{
		Addr:        cfg.Server.Addr,
		RateLimit:   cfg.Server.RateLimit,
		Burst:       cfg.Server.Burst,
		FailureRate: cfg.Server.FailureRate,
		MinLatency:  cfg.Server.MinLatency,
		MaxLatency:  cfg.Server.MaxLatency,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create server")
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal().Err(err).Msg("Server failed")
		}
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("Signal received, shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Shutdown failed")
		}
	}
}
