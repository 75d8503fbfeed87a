// Package event carries booking changes to live dashboards, either directly through
// the in-process broadcaster or through Kafka when several instances share a topic.
package event

//go:generate go run go.uber.org/mock/mockgen -source=./event.go -destination=./mocks/event_mock.go -package=mocks

import (
	"context"
	"fmt"
	"roombook/config"
	"roombook/infras/kafka"
	"time"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
)

type Type string

const (
	TypeCreated       Type = "booking.created"
	TypeStatusChanged Type = "booking.status_changed"
)

type Event struct {
	Type        Type      `json:"type"`
	BookingID   string    `json:"booking_id"`
	RoomID      string    `json:"room_id"`
	BookingDate string    `json:"booking_date"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	Status      string    `json:"status"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Room lets room scoped subscribers filter the feed.
func (e Event) Room() string {
	return e.RoomID
}

type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// Broadcaster fans a value out to every connected live client.
type Broadcaster interface {
	Broadcast(v any)
}

type localPublisher struct {
	broadcaster Broadcaster
}

func NewLocalPublisher(b Broadcaster) Publisher {
	return &localPublisher{broadcaster: b}
}

func (p *localPublisher) Publish(_ context.Context, evt Event) error {
	p.broadcaster.Broadcast(evt)

	return nil
}

type kafkaPublisher struct {
	client kafka.Client
}

func NewKafkaPublisher(client kafka.Client) Publisher {
	return &kafkaPublisher{client: client}
}

// Publish keys by room so events of one room stay ordered within a partition.
func (p *kafkaPublisher) Publish(ctx context.Context, evt Event) error {
	if err := p.client.SendMessages(ctx, kafka.Message{Key: evt.RoomID, Value: evt}); err != nil {
		return fmt.Errorf("failed to publish booking event: %w", err)
	}

	return nil
}

// New picks Kafka when it is enabled, otherwise broadcasts in process.
func New(cfg *config.Config, client kafka.Client, b Broadcaster) Publisher {
	if cfg.Kafka.Enable && client != nil {
		return NewKafkaPublisher(client)
	}

	return NewLocalPublisher(b)
}

// Relay returns a Kafka handler that forwards consumed events to b.
func Relay(b Broadcaster) kafka.Handler {
	return func(_ context.Context, msg kafkaGo.Message) error {
		evt, err := kafka.Decode[Event](msg)
		if err != nil {
			return err
		}

		log.Debug().Str("type", string(evt.Type)).Str("booking_id", evt.BookingID).Msg("relaying booking event")
		b.Broadcast(evt)

		return nil
	}
}
