package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeCatalogChanged = "CATALOG_CHANGED"
	EventTypeOrderPlaced    = "ORDER_PLACED"
)

// Catalog operations carried by CatalogChangedEvent
const (
	CatalogOpCreated = "created"
	CatalogOpUpdated = "updated"
	CatalogOpDeleted = "deleted"
	CatalogOpSeeded  = "seeded"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// CatalogChangedEvent published after a successful remote catalog write
type CatalogChangedEvent struct {
	BaseEvent
	ProductID ProductID `json:"product_id,omitempty"`
	Operation string    `json:"operation"`
}

// OrderPlacedEvent published when checkout completes
type OrderPlacedEvent struct {
	BaseEvent
	OrderID       int64           `json:"order_id"`
	SessionID     string          `json:"session_id"`
	CustomerEmail string          `json:"customer_email"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Items         []OrderItemData `json:"items"`
}

// OrderItemData represents item data in events
type OrderItemData struct {
	ProductID ProductID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}
