package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Publisher is anything that can publish a keyed event
type Publisher interface {
	PublishEvent(ctx context.Context, key string, event interface{}) error
}

// EventPublisher handles publishing domain events
type EventPublisher struct {
	catalog Publisher
	orders  Publisher
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(catalog, orders Publisher) *EventPublisher {
	return &EventPublisher{catalog: catalog, orders: orders}
}

// PublishCatalogChanged announces a committed catalog write
func (ep *EventPublisher) PublishCatalogChanged(ctx context.Context, productID models.ProductID, operation string) error {
	event := &models.CatalogChangedEvent{
		BaseEvent: newBaseEvent(models.EventTypeCatalogChanged),
		ProductID: productID,
		Operation: operation,
	}
	key := "catalog"
	if productID != "" {
		key = "product-" + productID.String()
	}
	return ep.catalog.PublishEvent(ctx, key, event)
}

// PublishOrderPlaced announces a completed checkout
func (ep *EventPublisher) PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	if event.EventID == "" {
		event.BaseEvent = newBaseEvent(models.EventTypeOrderPlaced)
	}
	return ep.orders.PublishEvent(ctx, fmt.Sprintf("order-%d", event.OrderID), event)
}

func newBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now().UTC(),
	}
}

// EventHandler handles incoming events
type EventHandler struct {
	onCatalogChanged func(context.Context, *models.CatalogChangedEvent) error
	logger           *zap.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{logger: util.GetLogger()}
}

// OnCatalogChanged registers a handler for CatalogChanged events
func (eh *EventHandler) OnCatalogChanged(handler func(context.Context, *models.CatalogChangedEvent) error) {
	eh.onCatalogChanged = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	eh.logger.Debug("Handling event",
		zap.String("type", baseEvent.EventType),
		zap.String("id", baseEvent.EventID))

	switch baseEvent.EventType {
	case models.EventTypeCatalogChanged:
		if eh.onCatalogChanged != nil {
			var event models.CatalogChangedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal CatalogChanged event: %w", err)
			}
			return eh.onCatalogChanged(ctx, &event)
		}

	default:
		eh.logger.Debug("Unhandled event type", zap.String("type", baseEvent.EventType))
	}

	return nil
}
