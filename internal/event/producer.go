package event

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/JJ-Sinklaire/desesperanza/internal/domain"
	"github.com/JJ-Sinklaire/desesperanza/pkg/logger"

	pkgkafka "github.com/JJ-Sinklaire/desesperanza/pkg/kafka"
)

// Kafka topics for address domain events.
const (
	TopicAddressCreated = "ordering.direccion.creada"
	TopicAddressUpdated = "ordering.direccion.actualizada"
	TopicAddressDeleted = "ordering.direccion.eliminada"
)

const (
	aggregateTypeAddress = "direccion"
	source               = "desesperanza"
)

// AddressData is the payload shared by address events.
type AddressData struct {
	AddressID  int64  `json:"id_direccion"`
	CustomerID int64  `json:"id_cliente"`
	Alias      string `json:"alias"`
	PostalCode string `json:"codigo_postal"`
	City       string `json:"ciudad"`
}

// Publisher is the subset of producer behavior services depend on, so tests
// can substitute a recorder.
type Publisher interface {
	AddressCreated(ctx context.Context, a *domain.Address)
	AddressUpdated(ctx context.Context, a *domain.Address)
	AddressDeleted(ctx context.Context, customerID, addressID int64)
}

// Producer publishes address domain events to Kafka. Publishing is best
// effort: failures are logged and never propagate to the caller, so a broker
// outage cannot fail a customer mutation.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates an event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// AddressCreated publishes a direccion.creada event.
func (p *Producer) AddressCreated(ctx context.Context, a *domain.Address) {
	p.publish(ctx, TopicAddressCreated, a.ID, AddressData{
		AddressID:  a.ID,
		CustomerID: a.CustomerID,
		Alias:      a.Alias,
		PostalCode: a.PostalCode,
		City:       a.City,
	})
}

// AddressUpdated publishes a direccion.actualizada event.
func (p *Producer) AddressUpdated(ctx context.Context, a *domain.Address) {
	p.publish(ctx, TopicAddressUpdated, a.ID, AddressData{
		AddressID:  a.ID,
		CustomerID: a.CustomerID,
		Alias:      a.Alias,
		PostalCode: a.PostalCode,
		City:       a.City,
	})
}

// AddressDeleted publishes a direccion.eliminada event.
func (p *Producer) AddressDeleted(ctx context.Context, customerID, addressID int64) {
	p.publish(ctx, TopicAddressDeleted, addressID, AddressData{
		AddressID:  addressID,
		CustomerID: customerID,
	})
}

func (p *Producer) publish(ctx context.Context, topic string, aggregateID int64, data AddressData) {
	if p == nil || p.kafka == nil {
		return
	}

	ev, err := pkgkafka.NewEvent(topic, strconv.FormatInt(aggregateID, 10), aggregateTypeAddress, source, data)
	if err != nil {
		p.logger.ErrorContext(ctx, "build address event",
			slog.String("topic", topic),
			slog.String("error", err.Error()),
		)
		return
	}

	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		ev.WithCorrelationID(id)
	}

	if err := p.kafka.Publish(ctx, topic, ev); err != nil {
		p.logger.WarnContext(ctx, "address event not published",
			slog.String("topic", topic),
			slog.Int64("address_id", aggregateID),
			slog.String("error", err.Error()),
		)
	}
}

// NopPublisher discards all events. Used when Kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) AddressCreated(context.Context, *domain.Address) {}
func (NopPublisher) AddressUpdated(context.Context, *domain.Address) {}
func (NopPublisher) AddressDeleted(context.Context, int64, int64)    {}

var (
	_ Publisher = (*Producer)(nil)
	_ Publisher = NopPublisher{}
)
