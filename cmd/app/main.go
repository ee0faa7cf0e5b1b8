package main

import (
	"hotelops/config"
	"hotelops/di"
	_ "hotelops/docs"
	"hotelops/helper"
	"hotelops/shared/logger"

	"github.com/rs/zerolog/log"
)

// @title						Hotel Operations API
// @version					1.0
// @description				Guest resource workflow engine: bookings, inventory requests and staff tasks.
// @BasePath					/
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
// @securityDefinitions.apikey	APIKey
// @in							header
// @name						X-API-Key
func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	if cfg.DB.Postgres.AutoMigrate {
		if err := helper.Up(cfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to run database migrations")
		}
	}

	http := di.InitializeService()
	http.Serve()
}
