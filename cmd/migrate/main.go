package main

import (
	"os"
	"slices"

	"hotelops/config"
	"hotelops/helper"
	"hotelops/shared/logger"

	"github.com/rs/zerolog/log"
)

var actions = []string{helper.ActionUp, helper.ActionDown, helper.ActionStepUp, helper.ActionDrop, helper.ActionVersion}

func main() {
	logger.InitLogger()

	if len(os.Args) < 2 || !slices.Contains(actions, os.Args[1]) {
		log.Fatal().Strs("actions", actions).Msg("Usage: migrate <action>")
	}

	cfg := config.Get()
	logger.SetLogLevel(cfg)

	if err := helper.Runner(cfg, os.Args[1]); err != nil {
		log.Fatal().Err(err).Str("action", os.Args[1]).Msg("Database migration failed")
	}
}
