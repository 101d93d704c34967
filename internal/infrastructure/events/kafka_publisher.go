// Package events implements the domain EventPublisher.
package events

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/stockwatch/internal/config"
	"github.com/turtacn/stockwatch/internal/domain/models"
	"github.com/turtacn/stockwatch/internal/domain/service"
	"github.com/turtacn/stockwatch/internal/infrastructure/monitoring"
	"github.com/turtacn/stockwatch/pkg/logger"
)

// messageWriter is the part of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes domain events to a Kafka topic, keyed by google_id.
type KafkaPublisher struct {
	writer  messageWriter
	logger  logger.Logger
	metrics *monitoring.Metrics
}

// NewKafkaPublisher creates a new KafkaPublisher. metrics may be nil.
func NewKafkaPublisher(cfg config.KafkaConfig, log logger.Logger, metrics *monitoring.Metrics) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: cfg.WriteTimeout,
		BatchTimeout: cfg.BatchTimeout,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}
	return newKafkaPublisher(writer, log, metrics)
}

func newKafkaPublisher(w messageWriter, log logger.Logger, metrics *monitoring.Metrics) *KafkaPublisher {
	return &KafkaPublisher{
		writer:  w,
		logger:  log.WithComponent("KafkaPublisher"),
		metrics: metrics,
	}
}

// Publish sends an event to the topic.
func (p *KafkaPublisher) Publish(ctx context.Context, event models.Event) error {
	bytes, err := json.Marshal(event)
	if err != nil {
		p.logger.Error(ctx, "failed to marshal event", err)
		return err
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.GoogleID),
		Value: bytes,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	})
	p.record(event, err)
	if err != nil {
		p.logger.Error(ctx, "failed to write message to Kafka", err, logger.String("event_type", string(event.Type)))
	}
	return err
}

// Close closes the underlying Kafka writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func (p *KafkaPublisher) record(event models.Event, err error) {
	if p.metrics == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	p.metrics.EventsPublished.WithLabelValues(string(event.Type), result).Inc()
}

var _ service.EventPublisher = (*KafkaPublisher)(nil)

//Personal.AI order the ending
