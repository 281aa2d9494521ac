package rabbitmq

import (
	"encoding/json"
	"fmt"
	"time"

	"catalog/internal/models"
)

// Product event types published after each committed change.
const (
	EventProductCreated = "product.created"
	EventProductUpdated = "product.updated"
	EventProductDeleted = "product.deleted"
)

// ProductEvent describes a committed change to a product.
type ProductEvent struct {
	Type       string    `json:"type"`
	ProductID  uint      `json:"product_id"`
	Name       string    `json:"name,omitempty"`
	Price      float64   `json:"price,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewProductEvent builds an event of the given type from a product snapshot.
func NewProductEvent(eventType string, product models.Product) ProductEvent {
	return ProductEvent{
		Type:       eventType,
		ProductID:  product.ID,
		Name:       product.Name,
		Price:      product.Price,
		OccurredAt: time.Now().UTC(),
	}
}

// DecodeProductEvent parses a message body produced by PublishProductEvent.
func DecodeProductEvent(body []byte) (ProductEvent, error) {
	var event ProductEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return ProductEvent{}, fmt.Errorf("failed to decode product event: %w", err)
	}
	if event.Type == "" {
		return ProductEvent{}, fmt.Errorf("product event has no type")
	}
	return event, nil
}
