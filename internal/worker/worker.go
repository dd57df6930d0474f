package worker

import (
	"context"
	"sync/atomic"
	"time"

	"storefront-service/internal/broker"
	"storefront-service/internal/catalog"
	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Source delivers change-stream messages
type Source interface {
	StartConsuming(ctx context.Context, handler broker.MessageHandler, onError func(error)) error
	Close() error
}

// Snapshotter loads the whole remote catalog
type Snapshotter interface {
	Snapshot(ctx context.Context) ([]models.Product, error)
}

// CatalogWorker is the catalog store's single remote subscription. It pushes
// a full snapshot on start and again after every change event. After a
// failure the catalog serves the fallback list until the next message
// arrives, which triggers a full resync whatever its type.
type CatalogWorker struct {
	consumer Source
	remote   Snapshotter
	catalog  *catalog.Store
	handler  *broker.EventHandler
	degraded atomic.Bool
	logger   *zap.Logger
}

// NewCatalogWorker creates a new catalog worker
func NewCatalogWorker(consumer Source, remote Snapshotter, store *catalog.Store) *CatalogWorker {
	w := &CatalogWorker{
		consumer: consumer,
		remote:   remote,
		catalog:  store,
		handler:  broker.NewEventHandler(),
		logger:   util.GetLogger(),
	}
	w.handler.OnCatalogChanged(w.handleCatalogChanged)
	return w
}

// ConsumerGroup returns the configured group or a fresh per-instance one.
// Every instance must see every change event, so instances never share a
// group unless one is configured explicitly.
func ConsumerGroup(configured string) string {
	if configured != "" {
		return configured
	}
	return "storefront-catalog-" + uuid.NewString()
}

// Start loads the initial snapshot and then follows the change stream until
// ctx is cancelled
func (w *CatalogWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting catalog worker")
	w.Sync(ctx)
	return w.consumer.StartConsuming(ctx, w.handleMessage, w.fail)
}

// Stop tears down the subscription
func (w *CatalogWorker) Stop() error {
	w.logger.Info("Stopping catalog worker")
	return w.consumer.Close()
}

// Sync pushes the current remote catalog into the store. A load failure is
// delivered to the store as a subscription error.
func (w *CatalogWorker) Sync(ctx context.Context) {
	ctx, span := util.StartSpan(ctx, "CatalogWorker.Sync")
	defer span.End()

	start := time.Now()
	products, err := w.remote.Snapshot(ctx)
	if err != nil {
		util.FailSpan(span, err)
		w.fail(err)
		return
	}

	w.catalog.OnRemoteUpdate(products)
	w.logger.Debug("Catalog synced",
		zap.Int("count", len(products)),
		zap.Duration("took", time.Since(start)))
}

// fail reverts the catalog to the fallback list and marks it for a resync
func (w *CatalogWorker) fail(err error) {
	w.degraded.Store(true)
	w.catalog.OnRemoteError(err)
}

func (w *CatalogWorker) handleMessage(ctx context.Context, msg kafka.Message) error {
	if w.degraded.Swap(false) {
		w.logger.Info("Catalog stream recovered, resyncing")
		w.Sync(ctx)
		return nil
	}
	return w.handler.HandleMessage(ctx, msg)
}

func (w *CatalogWorker) handleCatalogChanged(ctx context.Context, event *models.CatalogChangedEvent) error {
	w.logger.Debug("Catalog changed",
		zap.String("product_id", event.ProductID.String()),
		zap.String("operation", event.Operation))
	w.Sync(ctx)
	return nil
}
