package maintenance

import (
	"net/http"

	"hotelops/infras/otel"
	"hotelops/internal/domains/booking/model"
	"hotelops/internal/domains/booking/model/dto"
	"hotelops/internal/domains/booking/service"
	"hotelops/shared"
	"hotelops/shared/constant"
	"hotelops/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const (
	queryDryRun = "dry_run"
	queryPolicy = "policy"
)

type Handler struct {
	booking service.Booking
	otel    otel.Otel
}

func New(booking service.Booking, otel otel.Otel) Handler {
	return Handler{
		booking: booking,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/maintenance", func(routerGroup chi.Router) {
		routerGroup.Post("/repair-booking-links", handler.RepairBookingLinks)
	})
}

// RepairBookingLinks links bookings to their canonical guests and disposes of
// the ones that stay unresolved.
// @Summary Repair booking guest links
// @Description Must not run while bookings are being created. Accepts a bearer token or X-API-Key.
// @Tags Maintenance
// @Produce json
// @Param dry_run query boolean false "Report without writing"
// @Param policy query string false "Unresolved policy override (delete, archive)"
// @Success 200 {object} response.Data[dto.RepairSummary]
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/maintenance/repair-booking-links [post]
// @Security BearerAuth
// @Security ApiKeyAuth
func (handler *Handler) RepairBookingLinks(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".RepairBookingLinks")
	defer scope.End()

	opts := dto.RepairOptions{Policy: model.RepairPolicy(r.URL.Query().Get(queryPolicy))}
	if dryRun := shared.ConvertStringToBool(r.URL.Query().Get(queryDryRun)); dryRun != nil {
		opts.DryRun = *dryRun
	}

	actor := shared.ActorFromContext(ctx)

	summary, err := handler.booking.RepairInvalidGuestLinks(ctx, opts, actor)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to repair booking guest links")

		response.WithError(w, err)

		return
	}

	scope.SetAttributes(map[string]any{
		"repair.updated":  summary.Updated,
		"repair.deleted":  summary.Deleted,
		"repair.archived": summary.Archived,
		"repair.dry_run":  summary.DryRun,
	})
	scope.AddEvent("Booking guest links repaired by " + actor.ID)

	response.WithJSON(w, http.StatusOK, summary)
}
