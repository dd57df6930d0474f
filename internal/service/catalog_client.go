package service

import (
	"context"
	"fmt"

	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// RemoteCatalog is the remote source of truth for products. Any of its writes
// may fail; the gateway degrades instead of propagating those failures.
type RemoteCatalog interface {
	Snapshot(ctx context.Context) ([]models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, id models.ProductID, upd models.ProductUpdate) error
	AppendReview(ctx context.Context, id models.ProductID, review models.Review) error
	EditReviews(ctx context.Context, id models.ProductID, edit models.ReviewEdit) error
	DeleteProduct(ctx context.Context, id models.ProductID) error
	SeedProducts(ctx context.Context, products []models.Product) error
}

// ProductStore is the persistence the catalog client writes through
type ProductStore interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, id models.ProductID, upd models.ProductUpdate) error
	AppendReview(ctx context.Context, id models.ProductID, review models.Review) error
	EditReviews(ctx context.Context, id models.ProductID, edit models.ReviewEdit) error
	DeleteProduct(ctx context.Context, id models.ProductID) error
	SeedProducts(ctx context.Context, products []models.Product) error
}

// CatalogEvents announces committed catalog writes to every subscriber
type CatalogEvents interface {
	PublishCatalogChanged(ctx context.Context, productID models.ProductID, operation string) error
}

// CatalogClient is the RemoteCatalog backed by the product database. Each
// committed write is followed by a change event so that every instance's
// subscription reloads the snapshot.
type CatalogClient struct {
	store  ProductStore
	events CatalogEvents
	logger *zap.Logger
}

// NewCatalogClient creates a new catalog client
func NewCatalogClient(store ProductStore, events CatalogEvents) *CatalogClient {
	return &CatalogClient{
		store:  store,
		events: events,
		logger: util.GetLogger(),
	}
}

// Snapshot returns the whole remote catalog ordered by name
func (c *CatalogClient) Snapshot(ctx context.Context) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogClient.Snapshot")
	defer span.End()

	products, err := c.store.ListProducts(ctx)
	if err != nil {
		util.FailSpan(span, err)
		return nil, fmt.Errorf("failed to load catalog snapshot: %w", err)
	}
	return products, nil
}

// CreateProduct inserts the product and announces it
func (c *CatalogClient) CreateProduct(ctx context.Context, p *models.Product) error {
	if err := c.store.CreateProduct(ctx, p); err != nil {
		return err
	}
	c.announce(ctx, p.ID, models.CatalogOpCreated)
	return nil
}

// UpdateProduct applies a partial update and announces it
func (c *CatalogClient) UpdateProduct(ctx context.Context, id models.ProductID, upd models.ProductUpdate) error {
	if err := c.store.UpdateProduct(ctx, id, upd); err != nil {
		return err
	}
	c.announce(ctx, id, models.CatalogOpUpdated)
	return nil
}

// AppendReview adds a review and announces the product change
func (c *CatalogClient) AppendReview(ctx context.Context, id models.ProductID, review models.Review) error {
	if err := c.store.AppendReview(ctx, id, review); err != nil {
		return err
	}
	c.announce(ctx, id, models.CatalogOpUpdated)
	return nil
}

// EditReviews rewrites the product's reviews and announces the change
func (c *CatalogClient) EditReviews(ctx context.Context, id models.ProductID, edit models.ReviewEdit) error {
	if err := c.store.EditReviews(ctx, id, edit); err != nil {
		return err
	}
	c.announce(ctx, id, models.CatalogOpUpdated)
	return nil
}

// DeleteProduct removes the product and announces it
func (c *CatalogClient) DeleteProduct(ctx context.Context, id models.ProductID) error {
	if err := c.store.DeleteProduct(ctx, id); err != nil {
		return err
	}
	c.announce(ctx, id, models.CatalogOpDeleted)
	return nil
}

// SeedProducts bulk-inserts products and announces the seed
func (c *CatalogClient) SeedProducts(ctx context.Context, products []models.Product) error {
	if err := c.store.SeedProducts(ctx, products); err != nil {
		return err
	}
	c.announce(ctx, "", models.CatalogOpSeeded)
	return nil
}

// announce publishes a change event. The write is already committed, so a
// publish failure only delays other subscribers and is logged.
func (c *CatalogClient) announce(ctx context.Context, id models.ProductID, op string) {
	if err := c.events.PublishCatalogChanged(ctx, id, op); err != nil {
		c.logger.Warn("Failed to publish catalog change",
			zap.String("product_id", id.String()),
			zap.String("operation", op),
			zap.Error(err))
	}
}
