package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"

	"hotelops/config"
	"hotelops/di"
	"hotelops/internal/domains/booking/model"
	"hotelops/internal/domains/booking/model/dto"
	"hotelops/shared"
	"hotelops/shared/logger"

	"github.com/rs/zerolog/log"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "report what would change without writing")
	policy := flag.String("policy", "", "unresolved guest policy: delete or archive (defaults to REPAIR_UNRESOLVED_POLICY)")
	flag.Parse()

	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	booking := di.InitializeRepair()

	summary, err := booking.RepairInvalidGuestLinks(context.Background(), dto.RepairOptions{
		DryRun: *dryRun,
		Policy: model.RepairPolicy(*policy),
	}, shared.SystemActor())
	if err != nil {
		log.Fatal().Err(err).Msg("Booking link repair failed")
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(summary); err != nil {
		log.Fatal().Err(err).Msg("Failed to print repair summary")
	}

	log.Info().
		Int("updated", summary.Updated).
		Int("deleted", summary.Deleted).
		Int("archived", summary.Archived).
		Bool("dry_run", summary.DryRun).
		Msg("Booking link repair finished")
}
