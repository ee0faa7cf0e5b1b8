package main

import (
	"context"
	"os/signal"
	"syscall"

	"hotelops/config"
	"hotelops/di"
	"hotelops/shared/logger"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	if !cfg.Kafka.Enable {
		log.Fatal().Msg("KAFKA_ENABLE is false, nothing to consume")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worker := di.InitializeWorker()
	defer func() {
		if err := worker.Client.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close Kafka client")
		}
	}()

	if err := worker.Run(ctx); err != nil {
		log.Error().Err(err).Msg("External booking consumer stopped")

		return
	}

	log.Info().Msg("External booking consumer stopped")
}
