package service

import (
	"context"
	"sync"

	"storefront-service/internal/auth"
	"storefront-service/internal/cart"
	"storefront-service/internal/catalog"
	"storefront-service/internal/models"

	"github.com/shopspring/decimal"
)

// Storefront is one session's view of the shop. It owns the session's cart
// ledger and filter state and shares the catalog with every other session.
type Storefront struct {
	sessionID string
	catalog   *catalog.Store
	gateway   *Gateway
	checkout  *Checkout
	ledger    *cart.Ledger

	mu       sync.RWMutex
	query    string
	category string
}

func newStorefront(sessionID string, store *catalog.Store, gateway *Gateway, checkout *Checkout, ledger *cart.Ledger) *Storefront {
	return &Storefront{
		sessionID: sessionID,
		catalog:   store,
		gateway:   gateway,
		checkout:  checkout,
		ledger:    ledger,
		category:  catalog.AllCategories,
	}
}

// SessionID returns the session this storefront belongs to
func (s *Storefront) SessionID() string {
	return s.sessionID
}

// Products returns the current catalog snapshot
func (s *Storefront) Products() []models.Product {
	return s.catalog.Products()
}

// Product returns a single catalog entry with its reviews narrowed to what
// the principal may see.
func (s *Storefront) Product(id models.ProductID, principal auth.Principal) (models.Product, bool) {
	p, ok := s.catalog.Find(id)
	if !ok {
		return models.Product{}, false
	}
	p.Reviews = VisibleReviews(p, principal)
	return p, true
}

// Categories lists the categories present in the catalog
func (s *Storefront) Categories() []string {
	return catalog.Categories(s.catalog.Products())
}

// SetSearchQuery stores the session's search text
func (s *Storefront) SetSearchQuery(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = q
}

// SearchQuery returns the session's search text
func (s *Storefront) SearchQuery() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

// SetSelectedCategory stores the session's category; empty resets to All
func (s *Storefront) SetSelectedCategory(c string) {
	if c == "" {
		c = catalog.AllCategories
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.category = c
}

// SelectedCategory returns the session's category
func (s *Storefront) SelectedCategory() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.category
}

// FilteredProducts projects the catalog through the session's filter
func (s *Storefront) FilteredProducts() []models.Product {
	s.mu.RLock()
	query, category := s.query, s.category
	s.mu.RUnlock()
	return catalog.Filter(s.catalog.Products(), query, category)
}

// Cart returns the ledger's items
func (s *Storefront) Cart() []models.CartItem {
	return s.ledger.Items()
}

// CartCount returns the number of units in the cart
func (s *Storefront) CartCount() int {
	return s.ledger.Count()
}

// AddToCart adds one unit of product and opens the cart
func (s *Storefront) AddToCart(ctx context.Context, product models.Product) {
	s.ledger.Add(ctx, product)
}

// AddToCartByID adds one unit of the catalog entry with the given id. It
// reports false when the current catalog has no such entry.
func (s *Storefront) AddToCartByID(ctx context.Context, id models.ProductID) bool {
	p, ok := s.catalog.Find(id)
	if !ok {
		return false
	}
	p.Reviews = nil
	s.ledger.Add(ctx, p)
	return true
}

// RemoveFromCart drops the product's row
func (s *Storefront) RemoveFromCart(ctx context.Context, id models.ProductID) {
	s.ledger.Remove(ctx, id)
}

// UpdateQuantity sets the product's quantity; zero or less removes it
func (s *Storefront) UpdateQuantity(ctx context.Context, id models.ProductID, quantity int) {
	s.ledger.UpdateQuantity(ctx, id, quantity)
}

// CartSubtotal returns the cart subtotal
func (s *Storefront) CartSubtotal() decimal.Decimal {
	return s.ledger.Subtotal()
}

// CartTotal returns the cart total
func (s *Storefront) CartTotal() decimal.Decimal {
	return s.ledger.Total()
}

// IsCartOpen reports whether the cart view is revealed
func (s *Storefront) IsCartOpen() bool {
	return s.ledger.IsOpen()
}

// ToggleCart flips the cart view
func (s *Storefront) ToggleCart() bool {
	return s.ledger.Toggle()
}

// OpenCart reveals the cart view
func (s *Storefront) OpenCart() {
	s.ledger.Open()
}

// AddProduct creates a catalog entry
func (s *Storefront) AddProduct(ctx context.Context, principal auth.Principal, draft models.ProductDraft) (models.Product, error) {
	return s.gateway.AddProduct(ctx, principal, draft)
}

// UpdateProduct partially updates a catalog entry
func (s *Storefront) UpdateProduct(ctx context.Context, principal auth.Principal, id models.ProductID, upd models.ProductUpdate) error {
	return s.gateway.UpdateProduct(ctx, principal, id, upd)
}

// DeleteProduct removes a catalog entry
func (s *Storefront) DeleteProduct(ctx context.Context, principal auth.Principal, id models.ProductID) error {
	return s.gateway.DeleteProduct(ctx, principal, id)
}

// SeedDatabase writes the bundled catalog to the remote catalog
func (s *Storefront) SeedDatabase(ctx context.Context, principal auth.Principal) error {
	return s.gateway.SeedDatabase(ctx, principal)
}

// Checkout places the cart as an order and empties it
func (s *Storefront) Checkout(ctx context.Context, principal auth.Principal, req CheckoutRequest) (*Receipt, error) {
	return s.checkout.Place(ctx, s.sessionID, principal, s.ledger, req)
}
