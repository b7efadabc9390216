package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"brokerage/src/config"
	"brokerage/src/models"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

const TradeExecutedType = "trade.executed"

// TradeExecuted is the payload published after a trade commits.
type TradeExecuted struct {
	EventID     string             `json:"event_id"`
	Type        string             `json:"type"`
	OccurredAt  time.Time          `json:"occurred_at"`
	Transaction models.Transaction `json:"transaction"`
}

// Publisher announces committed trades. Implementations must not block the
// caller on delivery.
type Publisher interface {
	TradeExecuted(ctx context.Context, t *models.Transaction) error
	Close() error
}

// MessageWriter is the subset of *kafka.Writer used by KafkaPublisher.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer MessageWriter
	now    func() time.Time
}

func NewKafkaPublisher(writer MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, now: time.Now}
}

// NewPublisher returns a Kafka publisher for cfg, or a NoopPublisher when no
// brokers are configured.
func NewPublisher(cfg config.KafkaConfig, logger logrus.FieldLogger) Publisher {
	if len(cfg.Brokers) == 0 {
		logger.Info("kafka brokers not configured, trade events disabled")
		return NoopPublisher{}
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.WithError(err).WithField("messages", len(messages)).Error("failed to deliver trade events")
			}
		},
	}
	return NewKafkaPublisher(writer)
}

func (p *KafkaPublisher) TradeExecuted(ctx context.Context, t *models.Transaction) error {
	event := TradeExecuted{
		EventID:     uuid.NewString(),
		Type:        TradeExecutedType,
		OccurredAt:  p.now().UTC(),
		Transaction: *t,
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to serialize event: %w", err)
	}

	// Keyed by user so one user's trades stay ordered within a partition.
	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(t.UserID, 10)),
		Value: data,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(TradeExecutedType)},
		},
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(writeCtx, msg); err != nil {
		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) TradeExecuted(context.Context, *models.Transaction) error { return nil }

func (NoopPublisher) Close() error { return nil }
