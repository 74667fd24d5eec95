package rabbitmq

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Catalog event types.
const (
	EventProductCreated = "product.created"
	EventProductUpdated = "product.updated"
	EventProductDeleted = "product.deleted"
)

// Event is the wire format of a catalog change notification.
type Event struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	ProductID  int64          `json:"product_id"`
	Product    map[string]any `json:"product,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// NewEvent stamps a new event with a random id and the current time.
func NewEvent(eventType string, productID int64, product map[string]any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		ProductID:  productID,
		Product:    product,
		OccurredAt: time.Now().UTC(),
	}
}

// DecodeEvent parses and sanity-checks an event body.
func DecodeEvent(body []byte) (Event, error) {
	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return Event{}, fmt.Errorf("failed to decode event: %w", err)
	}
	if event.Type == "" || event.ProductID == 0 {
		return Event{}, errors.New("event is missing type or product id")
	}
	return event, nil
}
