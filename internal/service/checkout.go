package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"storefront-service/internal/auth"
	"storefront-service/internal/cart"
	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderStore persists placed orders
type OrderStore interface {
	PlaceOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error
	GetOrderByIdempotencyKey(ctx context.Context, key string) (*models.Order, error)
	GetOrderItemsByOrderID(ctx context.Context, orderID int64) ([]models.OrderItem, error)
}

// OrderEvents announces placed orders
type OrderEvents interface {
	PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error
}

// CheckoutRequest carries the shipping details collected at checkout
type CheckoutRequest struct {
	Name           string `json:"name"`
	Address        string `json:"address"`
	Email          string `json:"email"`
	IdempotencyKey string `json:"-"`
}

// Receipt is the outcome of a checkout
type Receipt struct {
	Order    models.Order       `json:"order"`
	Items    []models.OrderItem `json:"items"`
	Replayed bool               `json:"replayed"`
}

// Checkout turns a session's ledger into a placed order
type Checkout struct {
	orders OrderStore
	events OrderEvents
	logger *zap.Logger
}

// NewCheckout creates a new checkout service
func NewCheckout(orders OrderStore, events OrderEvents) *Checkout {
	return &Checkout{
		orders: orders,
		events: events,
		logger: util.GetLogger(),
	}
}

// Place records the ledger as an order and then clears it. A request that
// repeats an idempotency key returns the stored order without touching the
// ledger.
func (c *Checkout) Place(ctx context.Context, sessionID string, principal auth.Principal, ledger *cart.Ledger, req CheckoutRequest) (*Receipt, error) {
	ctx, span := util.StartSpan(ctx, "Checkout.Place")
	defer span.End()

	if req.IdempotencyKey != "" {
		existing, err := c.orders.GetOrderByIdempotencyKey(ctx, req.IdempotencyKey)
		if err != nil {
			util.FailSpan(span, err)
			return nil, fmt.Errorf("failed to check idempotency: %w", err)
		}
		if existing != nil {
			c.logger.Info("Order already exists for idempotency key",
				zap.String("idempotency_key", req.IdempotencyKey),
				zap.Int64("order_id", existing.ID))
			items, err := c.orders.GetOrderItemsByOrderID(ctx, existing.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to load order items: %w", err)
			}
			return &Receipt{Order: *existing, Items: items, Replayed: true}, nil
		}
	} else {
		req.IdempotencyKey = uuid.NewString()
	}

	lines := ledger.Items()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	if err := validateCheckout(&req, principal); err != nil {
		return nil, err
	}

	order := models.Order{
		SessionID:      sessionID,
		CustomerEmail:  req.Email,
		CustomerName:   req.Name,
		Address:        req.Address,
		TotalAmount:    decimal.Zero,
		Status:         models.OrderStatusPlaced,
		IdempotencyKey: req.IdempotencyKey,
	}
	items := make([]models.OrderItem, len(lines))
	for i, line := range lines {
		items[i] = models.OrderItem{
			ProductID:   line.Product.ID,
			ProductName: line.Product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   line.Product.Price,
		}
		order.TotalAmount = order.TotalAmount.Add(line.LineTotal())
	}

	if err := c.orders.PlaceOrder(ctx, &order, items); err != nil {
		util.FailSpan(span, err)
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	event := &models.OrderPlacedEvent{
		OrderID:       order.ID,
		SessionID:     sessionID,
		CustomerEmail: order.CustomerEmail,
		TotalAmount:   order.TotalAmount,
		Items:         make([]models.OrderItemData, len(items)),
	}
	for i, item := range items {
		event.Items[i] = models.OrderItemData{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
	}
	if err := c.events.PublishOrderPlaced(ctx, event); err != nil {
		c.logger.Warn("Failed to publish order placed event",
			zap.Int64("order_id", order.ID),
			zap.Error(err))
	}

	util.OrdersPlacedTotal.Inc()
	ledger.Clear(ctx)

	c.logger.Info("Order placed",
		zap.Int64("order_id", order.ID),
		zap.String("session_id", sessionID),
		zap.String("total", order.TotalAmount.StringFixed(2)))

	return &Receipt{Order: order, Items: items}, nil
}

// validateCheckout fills the email from the principal when omitted
func validateCheckout(req *CheckoutRequest, principal auth.Principal) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Address = strings.TrimSpace(req.Address)
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		req.Email = principal.Email
	}

	if req.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidCheckout)
	}
	if req.Address == "" {
		return fmt.Errorf("%w: address is required", ErrInvalidCheckout)
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return fmt.Errorf("%w: a valid email is required", ErrInvalidCheckout)
	}
	return nil
}
