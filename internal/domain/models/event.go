package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/stockwatch/pkg/constants"
)

// Event is a domain event published to the event bus.
type Event struct {
	ID         string              `json:"id"`
	Type       constants.EventType `json:"type"`
	GoogleID   string              `json:"google_id"`
	Symbol     string              `json:"symbol,omitempty"`
	OccurredAt time.Time           `json:"occurred_at"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType constants.EventType, googleID, symbol string) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		GoogleID:   googleID,
		Symbol:     symbol,
		OccurredAt: time.Now().UTC(),
	}
}
