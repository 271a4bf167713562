package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/plinphon/FaultyAPI/internal/config"
	"github.com/plinphon/FaultyAPI/pkg/client"
	"github.com/plinphon/FaultyAPI/pkg/logging"
	"github.com/plinphon/FaultyAPI/pkg/orders"
	"github.com/plinphon/FaultyAPI/pkg/pipeline"
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

	c, err := client.New(client.Config{
		BaseURL:        cfg.Fetch.BaseURL,
		UserAgent:      "orders-fetch/1.0",
		MaxRPS:         cfg.Fetch.MaxRPS,
		MaxConcurrent:  cfg.Fetch.MaxConcurrent,
		MaxAttempts:    cfg.Fetch.MaxAttempts,
		RequestTimeout: cfg.Fetch.RequestTimeout,
		Policy:         client.DefaultPolicy(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create client")
	}

	// Ctrl-C stops feeding new items; whatever already finished is still written.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	runner := pipeline.NewRunner(c, pipeline.Config{Workers: cfg.Fetch.MaxConcurrent})
	report, err := runner.FetchAll(ctx, cfg.Fetch.Items)
	if err != nil {
		log.Fatal().Err(err).Msg("Fetch run failed")
	}

	for _, f := range report.Failures {
		log.Warn().
			Int("item_id", f.ItemID).
			Int("attempts", f.Attempts).
			Str("reason", f.Reason).
			Msg("Item failed")
	}

	if err := orders.WriteCSVFile(cfg.Fetch.OutputPath, report.Records); err != nil {
		log.Fatal().Err(err).Msg("Failed to write output file")
	}

	log.Info().
		Str("output", cfg.Fetch.OutputPath).
		Int("rows", report.Succeeded()).
		Int("failed", report.Failed()).
		Dur("duration", report.Duration).
		Msg("Wrote orders CSV")

	if ctx.Err() != nil {
		log.Warn().Msg("Run was interrupted; output holds partial results")
	}
}
