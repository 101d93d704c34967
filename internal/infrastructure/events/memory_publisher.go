package events

import (
	"context"
	"sync"

	"github.com/turtacn/stockwatch/internal/domain/models"
	"github.com/turtacn/stockwatch/internal/domain/service"
	"github.com/turtacn/stockwatch/pkg/logger"
)

// NoopPublisher logs events at debug level and drops them. Used when Kafka is disabled.
type NoopPublisher struct {
	logger logger.Logger
}

// NewNoopPublisher creates a NoopPublisher.
func NewNoopPublisher(log logger.Logger) *NoopPublisher {
	return &NoopPublisher{logger: log.WithComponent("events")}
}

func (p *NoopPublisher) Publish(ctx context.Context, event models.Event) error {
	p.logger.Debug(ctx, "Event dropped, no event bus configured",
		logger.String("event_type", string(event.Type)),
		logger.String("google_id", event.GoogleID),
	)
	return nil
}

func (p *NoopPublisher) Close() error { return nil }

// MemoryPublisher records events in memory.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []models.Event
	err    error
}

// NewMemoryPublisher creates an empty MemoryPublisher.
func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

// FailWith makes every later Publish return err.
func (p *MemoryPublisher) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

func (p *MemoryPublisher) Publish(_ context.Context, event models.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

// Events returns a copy of the recorded events.
func (p *MemoryPublisher) Events() []models.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.Event(nil), p.events...)
}

func (p *MemoryPublisher) Close() error { return nil }

var (
	_ service.EventPublisher = (*NoopPublisher)(nil)
	_ service.EventPublisher = (*MemoryPublisher)(nil)
)
