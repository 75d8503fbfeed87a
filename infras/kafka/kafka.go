package kafka

//go:generate go run go.uber.org/mock/mockgen -source=./kafka.go -destination=./mocks/kafka_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"roombook/config"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
	"go.opentelemetry.io/otel"
)

const (
	writeTimeout = 10 * time.Second
	retryBackoff = time.Second
)

type Message struct {
	Key   string
	Value any
}

func (m *Message) ToKafkaMessage() (kafkaGo.Message, error) {
	jsonValue, err := json.Marshal(m.Value)
	if err != nil {
		return kafkaGo.Message{}, fmt.Errorf("failed to marshal message value to JSON: %w", err)
	}

	return kafkaGo.Message{
		Key:   []byte(m.Key),
		Value: jsonValue,
	}, nil
}

// Decode unmarshals the JSON value of a received message.
func Decode[T any](msg kafkaGo.Message) (T, error) {
	var value T

	if err := json.Unmarshal(msg.Value, &value); err != nil {
		return value, fmt.Errorf("failed to unmarshal Kafka message value from JSON: %w", err)
	}

	return value, nil
}

// headerCarrier lets the global propagator read and write W3C trace headers on a message.
type headerCarrier struct {
	msg *kafkaGo.Message
}

func (c headerCarrier) Get(key string) string {
	for _, header := range c.msg.Headers {
		if header.Key == key {
			return string(header.Value)
		}
	}

	return ""
}

func (c headerCarrier) Set(key, value string) {
	for i, header := range c.msg.Headers {
		if header.Key == key {
			c.msg.Headers[i].Value = []byte(value)

			return
		}
	}

	c.msg.Headers = append(c.msg.Headers, kafkaGo.Header{Key: key, Value: []byte(value)})
}

func (c headerCarrier) Keys() []string {
	keys := make([]string, len(c.msg.Headers))
	for i, header := range c.msg.Headers {
		keys[i] = header.Key
	}

	return keys
}

// InjectTrace copies the span context of ctx into the message headers.
func InjectTrace(ctx context.Context, msg *kafkaGo.Message) {
	otel.GetTextMapPropagator().Inject(ctx, headerCarrier{msg: msg})
}

// ExtractTrace returns ctx carrying the span context found in the message headers.
func ExtractTrace(ctx context.Context, msg kafkaGo.Message) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, headerCarrier{msg: &msg})
}

// Handler processes one message. Errors are logged and the message is still committed.
type Handler func(ctx context.Context, message kafkaGo.Message) error

type Client interface {
	SendMessages(ctx context.Context, messages ...Message) (err error)
	Consume(ctx context.Context, handler Handler)
	Close() error
}

type kafkaClientImpl struct {
	config   *config.Config
	dialer   *kafkaGo.Dialer
	writer   *kafkaGo.Writer
	instance string
}

// ReaderConfig builds the consumer of one instance. Every instance joins a group of its own,
// named after KAFKA_CONSUMER_GROUP (or the app name), so each one receives every partition.
func ReaderConfig(cfg *config.Config, dialer *kafkaGo.Dialer, instance string) kafkaGo.ReaderConfig {
	prefix := cfg.Kafka.ConsumerGroup
	if prefix == "" {
		prefix = cfg.App.Name
	}

	return kafkaGo.ReaderConfig{
		Brokers:     cfg.Kafka.Brokers,
		Topic:       cfg.Kafka.Topic,
		GroupID:     prefix + "-" + instance,
		Dialer:      dialer,
		StartOffset: kafkaGo.LastOffset,
	}
}

func New(config *config.Config) Client {
	dialer := &kafkaGo.Dialer{
		Timeout:   writeTimeout,
		DualStack: true,
	}

	transport := &kafkaGo.Transport{}

	if config.Kafka.SASL.Username != "" {
		mechanism := plain.Mechanism{
			Username: config.Kafka.SASL.Username,
			Password: config.Kafka.SASL.Password,
		}

		dialer.SASLMechanism = mechanism
		transport.SASL = mechanism
	}

	writer := &kafkaGo.Writer{
		Addr:                   kafkaGo.TCP(config.Kafka.Brokers...),
		Topic:                  config.Kafka.Topic,
		Balancer:               &kafkaGo.Hash{},
		Transport:              transport,
		AllowAutoTopicCreation: true,
		WriteTimeout:           writeTimeout,
	}

	log.Info().Strs("brokers", config.Kafka.Brokers).Str("topic", config.Kafka.Topic).Msg("Kafka client initialized")

	return &kafkaClientImpl{
		config:   config,
		dialer:   dialer,
		writer:   writer,
		instance: uuid.NewString(),
	}
}

func (k *kafkaClientImpl) SendMessages(ctx context.Context, messages ...Message) error {
	msgs := make([]kafkaGo.Message, 0, len(messages))

	for _, message := range messages {
		msg, err := message.ToKafkaMessage()
		if err != nil {
			log.Error().Err(err).Str("topic", k.writer.Topic).Msg("Failed to convert message to Kafka message.")

			return err
		}

		InjectTrace(ctx, &msg)
		msgs = append(msgs, msg)
	}

	if err := k.writer.WriteMessages(ctx, msgs...); err != nil {
		log.Error().Err(err).Str("topic", k.writer.Topic).Msg("Failed to send message to Kafka.")

		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	log.Debug().Str("topic", k.writer.Topic).Int("count", len(msgs)).Msg("Sent message successfully.")

	return nil
}

// Consume reads the configured topic until ctx is cancelled.
func (k *kafkaClientImpl) Consume(ctx context.Context, handler Handler) {
	readerConfig := ReaderConfig(k.config, k.dialer, k.instance)
	log.Info().Str("group", readerConfig.GroupID).Str("topic", readerConfig.Topic).Msg("Kafka consumer joining")

	reader := kafkaGo.NewReader(readerConfig)

	defer func() {
		if err := reader.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close Kafka reader.")
		}
	}()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
				log.Info().Msg("Consumer context done.")

				return
			}

			log.Error().Err(err).Str("topic", k.config.Kafka.Topic).Msg("Failed to read message from Kafka.")

			select {
			case <-ctx.Done():
				return
			case <-time.After(retryBackoff):
			}

			continue
		}

		if err := handler(ExtractTrace(ctx, msg), msg); err != nil {
			log.Error().Err(err).Str("topic", msg.Topic).Str("key", string(msg.Key)).Msg("Failed to handle Kafka message.")
		}
	}
}

func (k *kafkaClientImpl) Close() error {
	if err := k.writer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka writer: %w", err)
	}

	return nil
}
