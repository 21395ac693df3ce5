package models

import "time"

// Catalog event types published to the message queue on every successful
// product mutation.
const (
	EventProductCreated = "product.created"
	EventProductUpdated = "product.updated"
	EventProductDeleted = "product.deleted"
)

// ProductEvent is the JSON body of a catalog event message.
type ProductEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	ProductID  int       `json:"productId"`
	OccurredAt time.Time `json:"occurredAt"`
}
