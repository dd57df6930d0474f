package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Ledger is the ordered record of what a session intends to buy. It holds at
// most one item per product id and rewrites itself to storage after every
// change.
type Ledger struct {
	mu      sync.Mutex
	key     string
	storage Storage
	items   []models.CartItem
	open    bool
	logger  *zap.Logger
}

// Load rehydrates the ledger stored under key. A missing or corrupt record
// yields an empty ledger. A failed read returns an error instead, so that the
// caller never writes an empty ledger over a record it could not see.
func Load(ctx context.Context, storage Storage, key string) (*Ledger, error) {
	l := &Ledger{
		key:     key,
		storage: storage,
		items:   []models.CartItem{},
		logger:  util.GetLogger(),
	}

	data, err := storage.Get(ctx, key)
	switch {
	case errors.Is(err, ErrNotFound):
		return l, nil
	case err != nil:
		util.CartRehydrateFailures.WithLabelValues("read_error").Inc()
		return nil, fmt.Errorf("failed to read cart %s: %w", key, err)
	}

	var items []models.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		l.logger.Warn("Corrupt cart record, starting empty", zap.String("key", key), zap.Error(err))
		util.CartRehydrateFailures.WithLabelValues("corrupt").Inc()
		return l, nil
	}

	l.items = normalize(items)
	return l, nil
}

// normalize drops unusable rows and folds duplicate product ids together
func normalize(items []models.CartItem) []models.CartItem {
	out := make([]models.CartItem, 0, len(items))
	index := make(map[models.ProductID]int, len(items))
	for _, item := range items {
		if item.Product.ID == "" || item.Quantity < 1 {
			continue
		}
		if i, ok := index[item.Product.ID]; ok {
			out[i].Quantity += item.Quantity
			continue
		}
		index[item.Product.ID] = len(out)
		out = append(out, item)
	}
	return out
}

// Items returns a copy of the ledger in insertion order
func (l *Ledger) Items() []models.CartItem {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.CartItem, len(l.items))
	for i, item := range l.items {
		out[i] = models.CartItem{Product: item.Product.Clone(), Quantity: item.Quantity}
	}
	return out
}

// Count returns the total number of units in the ledger
func (l *Ledger) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, item := range l.items {
		n += item.Quantity
	}
	return n
}

// Add increments the product's quantity, appending it with quantity 1 when
// absent, and opens the cart view.
func (l *Ledger) Add(ctx context.Context, product models.Product) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if i := l.indexOf(product.ID); i >= 0 {
		l.items[i].Quantity++
	} else {
		l.items = append(l.items, models.CartItem{Product: product.Clone(), Quantity: 1})
	}
	l.open = true

	util.CartMutationsTotal.WithLabelValues("add").Inc()
	l.persist(ctx)
}

// Remove deletes the product's row. Unknown ids are ignored.
func (l *Ledger) Remove(ctx context.Context, id models.ProductID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.remove(ctx, id)
}

// UpdateQuantity sets the product's quantity; quantity <= 0 removes the row.
// Unknown ids are ignored.
func (l *Ledger) UpdateQuantity(ctx context.Context, id models.ProductID, quantity int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if quantity <= 0 {
		l.remove(ctx, id)
		return
	}

	i := l.indexOf(id)
	if i < 0 || l.items[i].Quantity == quantity {
		return
	}
	l.items[i].Quantity = quantity

	util.CartMutationsTotal.WithLabelValues("update_quantity").Inc()
	l.persist(ctx)
}

// Clear empties the ledger
func (l *Ledger) Clear(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.items = []models.CartItem{}
	util.CartMutationsTotal.WithLabelValues("clear").Inc()
	l.persist(ctx)
}

// Subtotal is the sum of price times quantity, computed on every call
func (l *Ledger) Subtotal() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()

	sum := decimal.Zero
	for _, item := range l.items {
		sum = sum.Add(item.LineTotal())
	}
	return sum
}

// Total equals Subtotal; no fees are charged
func (l *Ledger) Total() decimal.Decimal {
	return l.Subtotal()
}

// IsOpen reports whether the cart view is revealed
func (l *Ledger) IsOpen() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.open
}

// Open reveals the cart view
func (l *Ledger) Open() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.open = true
}

// Toggle flips the cart view and returns the new state
func (l *Ledger) Toggle() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.open = !l.open
	return l.open
}

func (l *Ledger) remove(ctx context.Context, id models.ProductID) {
	i := l.indexOf(id)
	if i < 0 {
		return
	}
	l.items = append(l.items[:i:i], l.items[i+1:]...)

	util.CartMutationsTotal.WithLabelValues("remove").Inc()
	l.persist(ctx)
}

func (l *Ledger) indexOf(id models.ProductID) int {
	for i := range l.items {
		if l.items[i].Product.ID == id {
			return i
		}
	}
	return -1
}

// persist rewrites the whole ledger. Must be called with mu held.
func (l *Ledger) persist(ctx context.Context) {
	data, err := json.Marshal(l.items)
	if err != nil {
		l.logger.Error("Failed to encode cart", zap.String("key", l.key), zap.Error(err))
		util.CartPersistFailures.Inc()
		return
	}

	if err := l.storage.Set(ctx, l.key, data); err != nil {
		l.logger.Warn("Failed to persist cart", zap.String("key", l.key), zap.Error(err))
		util.CartPersistFailures.Inc()
	}
}
