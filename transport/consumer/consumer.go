package consumer

import (
	"context"
	"fmt"
	"net/http"

	"hotelops/config"
	"hotelops/infras/kafka"
	"hotelops/infras/otel"
	"hotelops/internal/domains/booking/model/dto"
	booking "hotelops/internal/domains/booking/service"
	"hotelops/shared/constant"
	"hotelops/shared/failure"
	"hotelops/shared/validator"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
)

// Consumer feeds the channel manager's reservations into the booking lifecycle.
type Consumer struct {
	Config  *config.Config
	Client  kafka.Client
	Booking booking.Booking
	Otel    otel.Otel
}

func New(cfg *config.Config, client kafka.Client, booking booking.Booking, otel otel.Otel) *Consumer {
	return &Consumer{
		Config:  cfg,
		Client:  client,
		Booking: booking,
		Otel:    otel,
	}
}

// Run blocks until ctx is done.
func (c *Consumer) Run(ctx context.Context) error {
	topic := c.Config.Kafka.Topics.ExternalBookings

	log.Info().Str("topic", topic).Str("group", c.Config.Kafka.ConsumerGroup).Msg("external booking consumer started")

	return c.Client.Consume(ctx, c.Config.Kafka.ConsumerGroup, topic, c.Handle) //nolint:wrapcheck
}

// Handle imports one external booking. Malformed messages and bookings the
// hotel cannot honour are dropped; only store outages are returned.
func (c *Consumer) Handle(ctx context.Context, message kafkaGo.Message) (err error) {
	ctx, scope := c.Otel.NewScope(ctx, constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".consumer.ExternalBooking")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttributes(map[string]any{
		"messaging.topic":  message.Topic,
		"messaging.key":    string(message.Key),
		"messaging.offset": message.Offset,
	})

	msg, err := kafka.DecodeKafkaMessage[dto.ExternalBookingMessage](message)
	if err != nil {
		log.Warn().Err(err).Str("key", string(message.Key)).Msg("dropping undecodable external booking")

		return nil
	}

	if err := validator.ValidateStruct(&msg); err != nil {
		log.Warn().Err(err).Str("external_ref", msg.ExternalRef).Msg("dropping invalid external booking")

		return nil
	}

	res, err := c.Booking.ImportExternal(ctx, msg)
	if err != nil {
		if failure.GetCode(err) < http.StatusInternalServerError {
			log.Warn().Err(err).Str("external_ref", msg.ExternalRef).Msg("external booking rejected")

			return nil
		}

		return fmt.Errorf("failed to import external booking %s: %w", msg.ExternalRef, err)
	}

	log.Info().Str("external_ref", msg.ExternalRef).Str("booking", res.ID).Msg("external booking imported")

	return nil
}
