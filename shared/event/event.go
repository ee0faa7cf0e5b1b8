package event

//go:generate go run go.uber.org/mock/mockgen -source=./event.go -destination=./mocks/event_mock.go -package=mocks

import (
	"context"
	"time"

	"hotelops/config"
	"hotelops/infras/kafka"
	"hotelops/infras/otel"
	"hotelops/shared/constant"
	"hotelops/shared/timezone"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	TopicBookingCreated          = "hotel.booking.created"
	TopicBookingCancelled        = "hotel.booking.cancelled"
	TopicInventoryRequestDecided = "hotel.inventory.request.decided"
	TopicTaskCompleted           = "hotel.task.completed"
)

const (
	publishTimeout = 5 * time.Second
	headerEventID  = "event-id"
)

// Envelope wraps every domain event put on the bus.
type Envelope struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Actor      string    `json:"actor"`
	Data       any       `json:"data"`
}

// Publisher emits domain events after the owning transaction committed.
// Publishing never fails the caller: broker errors are logged and dropped.
type Publisher interface {
	Publish(ctx context.Context, topic, key, actor string, data any)
}

type kafkaPublisher struct {
	client kafka.Client
	otel   otel.Otel
}

type logPublisher struct{}

// New returns a Kafka backed publisher, or a log-only one when Kafka is disabled.
func New(cfg *config.Config, client kafka.Client, otl otel.Otel) Publisher {
	if !cfg.Kafka.Enable || client == nil {
		log.Info().Msg("Kafka disabled, domain events are logged only")

		return &logPublisher{}
	}

	return &kafkaPublisher{
		client: client,
		otel:   otl,
	}
}

func NewEnvelope(topic, actor string, data any) Envelope {
	return Envelope{
		ID:         uuid.NewString(),
		Type:       topic,
		OccurredAt: timezone.Now(),
		Actor:      actor,
		Data:       data,
	}
}

func (p *kafkaPublisher) Publish(ctx context.Context, topic, key, actor string, data any) {
	ctx, scope := p.otel.NewScope(context.WithoutCancel(ctx), constant.OtelEventScopeName, constant.OtelEventScopeName+".Publish")
	defer scope.End()

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	envelope := NewEnvelope(topic, actor, data)

	scope.SetAttributes(map[string]any{
		"event.topic": topic,
		"event.key":   key,
		"event.id":    envelope.ID,
	})

	err := p.client.SendMessages(ctx, topic, kafka.Message{
		Key:     key,
		Value:   envelope,
		Headers: map[string]string{headerEventID: envelope.ID},
	})
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("topic", topic).Str("key", key).Msg("failed to publish domain event")

		return
	}

	log.Debug().Str("topic", topic).Str("key", key).Str("id", envelope.ID).Msg("domain event published")
}

func (p *logPublisher) Publish(_ context.Context, topic, key, actor string, _ any) {
	log.Info().Str("topic", topic).Str("key", key).Str("actor", actor).Msg("domain event")
}
