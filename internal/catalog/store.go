package catalog

import (
	"fmt"
	"sync"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// ReconcilePolicy decides what an incoming remote snapshot does to local
// optimistic edits that the remote never acknowledged.
type ReconcilePolicy int

const (
	// LastWriteWins lets every remote snapshot replace the catalog outright.
	LastWriteWins ReconcilePolicy = iota
	// PreserveLocal re-applies local edits on top of each snapshot until the
	// remote entry carries an updated_at at or after the edit.
	PreserveLocal
)

// ParseReconcilePolicy maps a config value to a policy
func ParseReconcilePolicy(s string) (ReconcilePolicy, error) {
	switch s {
	case "", "last-write-wins":
		return LastWriteWins, nil
	case "preserve-local":
		return PreserveLocal, nil
	default:
		return LastWriteWins, fmt.Errorf("unknown catalog reconcile policy %q", s)
	}
}

func (p ReconcilePolicy) String() string {
	if p == PreserveLocal {
		return "preserve-local"
	}
	return "last-write-wins"
}

type overlayKind int

const (
	overlayAdded overlayKind = iota
	overlayPatched
	overlayReviews
	overlayRemoved
)

type overlay struct {
	kind    overlayKind
	id      models.ProductID
	product models.Product
	update  models.ProductUpdate
	edit    models.ReviewEdit
	at      time.Time
}

// Option configures a Store
type Option func(*Store)

// WithReconcilePolicy sets how snapshots treat local edits
func WithReconcilePolicy(p ReconcilePolicy) Option {
	return func(s *Store) { s.policy = p }
}

// WithClock overrides the clock used to stamp local edits
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store holds the current product list. The remote subscription is its only
// producer of snapshots; the mutation gateway may apply local edits when a
// remote write fails. Everything else reads copies.
type Store struct {
	mu         sync.RWMutex
	fallback   []models.Product
	products   []models.Product
	fromRemote bool
	overlays   []overlay

	policy ReconcilePolicy
	now    func() time.Time
	logger *zap.Logger
}

// NewStore creates a store that serves the fallback list immediately
func NewStore(fallback []models.Product, opts ...Option) *Store {
	s := &Store{
		fallback: cloneAll(fallback),
		policy:   LastWriteWins,
		now:      time.Now,
		logger:   util.GetLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.products = cloneAll(s.fallback)
	util.CatalogSize.Set(float64(len(s.products)))
	return s
}

// Policy returns the configured reconcile policy
func (s *Store) Policy() ReconcilePolicy {
	return s.policy
}

// Products returns a copy of the current snapshot
func (s *Store) Products() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.products)
}

// Find returns the product with the given id
func (s *Store) Find(id models.ProductID) (models.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.products, id); i >= 0 {
		return s.products[i].Clone(), true
	}
	return models.Product{}, false
}

// FromRemote reports whether the current snapshot came from the remote catalog
func (s *Store) FromRemote() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fromRemote
}

// OnRemoteUpdate replaces the catalog with a remote snapshot. An empty
// snapshot leaves the catalog on the fallback list.
func (s *Store) OnRemoteUpdate(snapshot []models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(snapshot) == 0 {
		s.logger.Info("Remote catalog is empty, serving fallback list",
			zap.Int("fallback_count", len(s.fallback)))
		util.CatalogFallbacksTotal.WithLabelValues("empty").Inc()
		s.rebase(cloneAll(s.fallback), false)
		return
	}

	util.CatalogSnapshotsApplied.Inc()
	s.rebase(cloneAll(snapshot), true)
	s.logger.Debug("Remote catalog snapshot applied", zap.Int("count", len(s.products)))
}

// OnRemoteError records a subscription failure and reverts to the fallback
// list. The error never reaches readers.
func (s *Store) OnRemoteError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Warn("Remote catalog error, using fallback list", zap.Error(err))
	util.CatalogFallbacksTotal.WithLabelValues("error").Inc()
	s.rebase(cloneAll(s.fallback), false)
}

// AppendLocal adds a product that the remote catalog did not accept
func (s *Store) AppendLocal(p models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p = p.Clone()
	s.products = append(s.products, p)
	s.record(overlay{kind: overlayAdded, id: p.ID, product: p})
	util.CatalogSize.Set(float64(len(s.products)))
}

// PatchLocal applies a partial update to the matching entry. It reports
// whether an entry matched.
func (s *Store) PatchLocal(id models.ProductID, upd models.ProductUpdate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.products, id)
	if i < 0 {
		return false
	}
	s.products[i] = upd.Apply(s.products[i])
	s.record(overlay{kind: overlayPatched, id: id, update: upd})
	return true
}

// EditReviewsLocal applies edit to the matching entry's reviews. It reports
// whether an entry matched.
func (s *Store) EditReviewsLocal(id models.ProductID, edit models.ReviewEdit) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.products, id)
	if i < 0 {
		return false
	}
	s.products[i].Reviews = edit(append(models.ReviewList(nil), s.products[i].Reviews...))
	s.record(overlay{kind: overlayReviews, id: id, edit: edit})
	return true
}

// RemoveLocal drops the matching entry. It reports whether an entry matched.
func (s *Store) RemoveLocal(id models.ProductID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.products, id)
	if i < 0 {
		return false
	}
	s.products = append(s.products[:i:i], s.products[i+1:]...)
	s.record(overlay{kind: overlayRemoved, id: id})
	util.CatalogSize.Set(float64(len(s.products)))
	return true
}

// PendingLocal returns the number of local edits still layered over the
// remote snapshot. Always zero under LastWriteWins.
func (s *Store) PendingLocal() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.overlays)
}

// record must be called with mu held
func (s *Store) record(o overlay) {
	if s.policy != PreserveLocal {
		return
	}
	o.at = s.now()
	s.overlays = append(s.overlays, o)
}

// rebase installs base as the catalog and, under PreserveLocal, replays the
// local edits the remote has not caught up with. Must be called with mu held.
func (s *Store) rebase(base []models.Product, fromRemote bool) {
	s.fromRemote = fromRemote
	if s.policy != PreserveLocal || len(s.overlays) == 0 {
		s.overlays = nil
		s.products = base
		util.CatalogSize.Set(float64(len(base)))
		return
	}

	kept := s.overlays[:0]
	for _, o := range s.overlays {
		i := indexOf(base, o.id)
		if i >= 0 && !base[i].UpdatedAt.Before(o.at) {
			continue
		}

		switch o.kind {
		case overlayAdded:
			if i >= 0 {
				base[i] = o.product.Clone()
			} else {
				base = append(base, o.product.Clone())
			}
		case overlayPatched:
			if i < 0 {
				continue
			}
			base[i] = o.update.Apply(base[i])
		case overlayReviews:
			if i < 0 {
				continue
			}
			base[i].Reviews = o.edit(append(models.ReviewList(nil), base[i].Reviews...))
		case overlayRemoved:
			if i < 0 {
				continue
			}
			base = append(base[:i:i], base[i+1:]...)
		}
		kept = append(kept, o)
	}

	if dropped := len(s.overlays) - len(kept); dropped > 0 {
		s.logger.Debug("Local catalog edits superseded by remote", zap.Int("dropped", dropped))
	}
	s.overlays = kept
	s.products = base
	util.CatalogSize.Set(float64(len(base)))
}

func indexOf(products []models.Product, id models.ProductID) int {
	for i := range products {
		if products[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneAll(products []models.Product) []models.Product {
	out := make([]models.Product, len(products))
	for i := range products {
		out[i] = products[i].Clone()
	}
	return out
}
