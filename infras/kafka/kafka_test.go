package kafka_test

import (
	"context"
	"roombook/config"
	"roombook/infras/kafka"
	"testing"

	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

type payload struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func TestMessageRoundTrip(t *testing.T) {
	msg := kafka.Message{Key: "room-1", Value: payload{ID: "b-1", Status: "pending"}}

	raw, err := msg.ToKafkaMessage()
	require.NoError(t, err)
	assert.Equal(t, []byte("room-1"), raw.Key)

	got, err := kafka.Decode[payload](raw)
	require.NoError(t, err)
	assert.Equal(t, payload{ID: "b-1", Status: "pending"}, got)
}

func TestMessageErrors(t *testing.T) {
	msg := kafka.Message{Key: "k", Value: make(chan int)}

	_, err := msg.ToKafkaMessage()
	assert.Error(t, err)

	_, err = kafka.Decode[payload](kafkaGo.Message{Value: []byte("{")})
	assert.Error(t, err)
}

func TestTracePropagation(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	provider := sdktrace.NewTracerProvider()
	ctx, span := provider.Tracer("test").Start(context.Background(), "publish booking event")
	defer span.End()

	msg := kafkaGo.Message{Headers: []kafkaGo.Header{{Key: "source", Value: []byte("roombook")}}}
	kafka.InjectTrace(ctx, &msg)
	kafka.InjectTrace(ctx, &msg)

	assert.Len(t, msg.Headers, 2)

	received := trace.SpanContextFromContext(kafka.ExtractTrace(context.Background(), msg))
	assert.True(t, received.IsValid())
	assert.Equal(t, span.SpanContext().TraceID(), received.TraceID())
}

func TestReaderConfigGroupPerInstance(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.Name = "roombook"
	cfg.Kafka.Brokers = []string{"localhost:9092"}
	cfg.Kafka.Topic = "booking-events"

	tests := []struct {
		name      string
		group     string
		wantGroup string
	}{
		{name: "configured prefix", group: "dashboards", wantGroup: "dashboards-a"},
		{name: "falls back to app name", wantGroup: "roombook-a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg.Kafka.ConsumerGroup = tt.group

			got := kafka.ReaderConfig(cfg, nil, "a")
			assert.Equal(t, tt.wantGroup, got.GroupID)
			assert.Equal(t, "booking-events", got.Topic)
			assert.Equal(t, kafkaGo.LastOffset, got.StartOffset)
		})
	}

	cfg.Kafka.ConsumerGroup = "roombook"
	assert.NotEqual(t, kafka.ReaderConfig(cfg, nil, "a").GroupID, kafka.ReaderConfig(cfg, nil, "b").GroupID)
}
