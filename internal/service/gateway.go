package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront-service/internal/auth"
	"storefront-service/internal/catalog"
	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// localIDPrefix marks products that exist only in this instance's memory
const localIDPrefix = "local-"

// Gateway applies catalog mutations to the remote catalog. When a remote
// write fails the same change is applied to the in-memory snapshot instead;
// that local copy is not durable and the next remote snapshot may replace it.
type Gateway struct {
	remote  RemoteCatalog
	catalog *catalog.Store
	logger  *zap.Logger
}

// NewGateway creates a new mutation gateway
func NewGateway(remote RemoteCatalog, catalog *catalog.Store) *Gateway {
	return &Gateway{
		remote:  remote,
		catalog: catalog,
		logger:  util.GetLogger(),
	}
}

// AddProduct creates a product. On success the subscription delivers it
// back; on remote failure it is appended locally under a synthesized id.
func (g *Gateway) AddProduct(ctx context.Context, principal auth.Principal, draft models.ProductDraft) (models.Product, error) {
	if !principal.Privileged {
		return models.Product{}, ErrForbidden
	}
	if err := validateDraft(draft); err != nil {
		return models.Product{}, err
	}

	ctx, span := util.StartSpan(ctx, "Gateway.AddProduct")
	defer span.End()

	product := draft.Product("")
	err := g.timed("create", func() error {
		return g.remote.CreateProduct(ctx, &product)
	})
	if err == nil {
		util.CatalogMutationsTotal.WithLabelValues("create", "remote").Inc()
		return product, nil
	}

	util.FailSpan(span, err)
	product = draft.Product(models.ProductID(localIDPrefix + uuid.NewString()))
	g.logger.Warn("Remote product create failed, adding locally",
		zap.String("local_id", product.ID.String()),
		zap.Error(err))
	g.catalog.AppendLocal(product)
	util.CatalogMutationsTotal.WithLabelValues("create", "local").Inc()
	return product, nil
}

// UpdateProduct applies a partial update to a product
func (g *Gateway) UpdateProduct(ctx context.Context, principal auth.Principal, id models.ProductID, upd models.ProductUpdate) error {
	if !principal.Privileged {
		return ErrForbidden
	}
	if err := validateUpdate(upd); err != nil {
		return err
	}
	g.update(ctx, id, upd)
	return nil
}

// DeleteProduct removes a product
func (g *Gateway) DeleteProduct(ctx context.Context, principal auth.Principal, id models.ProductID) error {
	if !principal.Privileged {
		return ErrForbidden
	}

	ctx, span := util.StartSpan(ctx, "Gateway.DeleteProduct")
	defer span.End()

	err := g.timed("delete", func() error {
		return g.remote.DeleteProduct(ctx, id)
	})
	if err == nil {
		util.CatalogMutationsTotal.WithLabelValues("delete", "remote").Inc()
		return nil
	}

	util.FailSpan(span, err)
	g.logger.Warn("Remote product delete failed, removing locally",
		zap.String("product_id", id.String()),
		zap.Error(err))
	if g.catalog.RemoveLocal(id) {
		util.CatalogMutationsTotal.WithLabelValues("delete", "local").Inc()
	}
	return nil
}

// SeedDatabase writes the bundled catalog into the remote catalog. Failures
// are logged and otherwise ignored.
func (g *Gateway) SeedDatabase(ctx context.Context, principal auth.Principal) error {
	if !principal.Privileged {
		return ErrForbidden
	}

	ctx, span := util.StartSpan(ctx, "Gateway.SeedDatabase")
	defer span.End()

	products := catalog.Fallback()
	err := g.timed("seed", func() error {
		return g.remote.SeedProducts(ctx, products)
	})
	if err != nil {
		util.FailSpan(span, err)
		g.logger.Warn("Remote catalog seed failed", zap.Error(err))
		util.CatalogMutationsTotal.WithLabelValues("seed", "failed").Inc()
		return nil
	}

	g.logger.Info("Remote catalog seeded", zap.Int("count", len(products)))
	util.CatalogMutationsTotal.WithLabelValues("seed", "remote").Inc()
	return nil
}

// update is the ungated partial update behind admin edits
func (g *Gateway) update(ctx context.Context, id models.ProductID, upd models.ProductUpdate) {
	ctx, span := util.StartSpan(ctx, "Gateway.UpdateProduct")
	defer span.End()

	err := g.timed("update", func() error {
		return g.remote.UpdateProduct(ctx, id, upd)
	})
	if err == nil {
		util.CatalogMutationsTotal.WithLabelValues("update", "remote").Inc()
		return
	}

	util.FailSpan(span, err)
	g.logger.Warn("Remote product update failed, updating locally",
		zap.String("product_id", id.String()),
		zap.Error(err))
	if g.catalog.PatchLocal(id, upd) {
		util.CatalogMutationsTotal.WithLabelValues("update", "local").Inc()
	}
}

// appendReview adds one review without rewriting the rest of the list
func (g *Gateway) appendReview(ctx context.Context, id models.ProductID, review models.Review) {
	ctx, span := util.StartSpan(ctx, "Gateway.AppendReview")
	defer span.End()

	err := g.timed("append_review", func() error {
		return g.remote.AppendReview(ctx, id, review)
	})
	if err == nil {
		util.CatalogMutationsTotal.WithLabelValues("append_review", "remote").Inc()
		return
	}

	util.FailSpan(span, err)
	g.editReviewsLocal("append_review", id, err, func(reviews models.ReviewList) models.ReviewList {
		return append(reviews, review)
	})
}

// editReviews applies edit to the product's latest stored reviews
func (g *Gateway) editReviews(ctx context.Context, id models.ProductID, edit models.ReviewEdit) {
	ctx, span := util.StartSpan(ctx, "Gateway.EditReviews")
	defer span.End()

	err := g.timed("edit_reviews", func() error {
		return g.remote.EditReviews(ctx, id, edit)
	})
	if err == nil {
		util.CatalogMutationsTotal.WithLabelValues("edit_reviews", "remote").Inc()
		return
	}

	util.FailSpan(span, err)
	g.editReviewsLocal("edit_reviews", id, err, edit)
}

func (g *Gateway) editReviewsLocal(operation string, id models.ProductID, cause error, edit models.ReviewEdit) {
	g.logger.Warn("Remote review write failed, updating locally",
		zap.String("product_id", id.String()),
		zap.String("operation", operation),
		zap.Error(cause))
	if g.catalog.EditReviewsLocal(id, edit) {
		util.CatalogMutationsTotal.WithLabelValues(operation, "local").Inc()
	}
}

func (g *Gateway) timed(operation string, fn func() error) error {
	start := time.Now()
	err := fn()
	util.RemoteWriteLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	return err
}

func validateDraft(d models.ProductDraft) error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if d.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	}
	return nil
}

func validateUpdate(u models.ProductUpdate) error {
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return fmt.Errorf("%w: name must not be blank", ErrInvalidProduct)
	}
	if u.Price != nil && u.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	}
	return nil
}
