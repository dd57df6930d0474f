package service

import (
	"context"
	"errors"
	"sync"

	"storefront-service/internal/auth"
	"storefront-service/internal/cart"
	"storefront-service/internal/catalog"
	"storefront-service/internal/models"
)

var errRemoteDown = errors.New("remote unavailable")

var (
	admin  = auth.Principal{ID: "u-admin", Email: "curator@umarshands.test", Privileged: true}
	patron = auth.Principal{ID: "u-patron", Email: "patron@example.com", DisplayName: "Layla"}
	guest  = auth.Guest()
)

type fakeRemote struct {
	mu      sync.Mutex
	err     error
	created []models.Product
	updated map[models.ProductID]models.ProductUpdate
	reviews map[models.ProductID]models.ReviewList
	deleted []models.ProductID
	seeded  []models.Product
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		updated: make(map[models.ProductID]models.ProductUpdate),
		reviews: make(map[models.ProductID]models.ReviewList),
	}
}

func (f *fakeRemote) Snapshot(context.Context) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]models.Product(nil), f.created...), nil
}

func (f *fakeRemote) CreateProduct(_ context.Context, p *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	p.ID = models.ProductID("remote-1")
	f.created = append(f.created, *p)
	return nil
}

func (f *fakeRemote) UpdateProduct(_ context.Context, id models.ProductID, upd models.ProductUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.updated[id] = upd
	return nil
}

func (f *fakeRemote) AppendReview(_ context.Context, id models.ProductID, review models.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.reviews[id] = append(f.reviews[id], review)
	return nil
}

func (f *fakeRemote) EditReviews(_ context.Context, id models.ProductID, edit models.ReviewEdit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.reviews[id] = edit(append(models.ReviewList(nil), f.reviews[id]...))
	return nil
}

func (f *fakeRemote) DeleteProduct(_ context.Context, id models.ProductID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeRemote) SeedProducts(_ context.Context, products []models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.seeded = append(f.seeded, products...)
	return nil
}

type fakeOrders struct {
	mu     sync.Mutex
	err    error
	nextID int64
	orders []models.Order
	items  map[int64][]models.OrderItem
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{items: make(map[int64][]models.OrderItem)}
}

func (f *fakeOrders) PlaceOrder(_ context.Context, order *models.Order, items []models.OrderItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.nextID++
	order.ID = f.nextID
	for i := range items {
		items[i].OrderID = order.ID
	}
	f.orders = append(f.orders, *order)
	f.items[order.ID] = append([]models.OrderItem(nil), items...)
	return nil
}

func (f *fakeOrders) GetOrderByIdempotencyKey(_ context.Context, key string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.orders {
		if f.orders[i].IdempotencyKey == key {
			o := f.orders[i]
			return &o, nil
		}
	}
	return nil, nil
}

func (f *fakeOrders) GetOrderItemsByOrderID(_ context.Context, orderID int64) ([]models.OrderItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items[orderID], nil
}

type fakeOrderEvents struct {
	err    error
	events []*models.OrderPlacedEvent
}

func (f *fakeOrderEvents) PublishOrderPlaced(_ context.Context, event *models.OrderPlacedEvent) error {
	f.events = append(f.events, event)
	return f.err
}

type harness struct {
	remote   *fakeRemote
	orders   *fakeOrders
	events   *fakeOrderEvents
	catalog  *catalog.Store
	storage  *cart.MemoryStorage
	gateway  *Gateway
	sessions *Sessions
}

func newHarness(opts ...catalog.Option) *harness {
	h := &harness{
		remote:  newFakeRemote(),
		orders:  newFakeOrders(),
		events:  &fakeOrderEvents{},
		catalog: catalog.NewStore(catalog.Fallback(), opts...),
		storage: cart.NewMemoryStorage(),
	}
	h.gateway = NewGateway(h.remote, h.catalog)
	h.sessions = NewSessions(h.catalog, h.gateway, NewCheckout(h.orders, h.events), h.storage, 0)
	return h
}

func (h *harness) storefront(sessionID string) *Storefront {
	sf, err := h.sessions.Get(context.Background(), sessionID)
	if err != nil {
		panic(err)
	}
	return sf
}
