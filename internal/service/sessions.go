package service

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	"storefront-service/internal/cart"
	"storefront-service/internal/catalog"
	"storefront-service/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultMaxSessions bounds how many storefronts stay in memory
	DefaultMaxSessions = 10000

	// evictionGrace is how long a storefront stays resident after its last
	// use, even past the bound
	evictionGrace = time.Minute

	rehydrateTimeout = 5 * time.Second
)

type sessionEntry struct {
	storefront *Storefront
	lastSeen   time.Time
}

// Sessions hands out one Storefront per session id. A storefront's ledger is
// rehydrated from storage once, when the session is first seen or after it
// was evicted.
type Sessions struct {
	catalog  *catalog.Store
	gateway  *Gateway
	checkout *Checkout
	storage  cart.Storage
	max      int
	grace    time.Duration
	now      func() time.Time

	mu      sync.Mutex
	entries map[string]*list.Element
	recent  *list.List
	loads   singleflight.Group
	logger  *zap.Logger
}

// NewSessions creates a session registry. max <= 0 uses DefaultMaxSessions.
func NewSessions(store *catalog.Store, gateway *Gateway, checkout *Checkout, storage cart.Storage, max int) *Sessions {
	if max <= 0 {
		max = DefaultMaxSessions
	}
	return &Sessions{
		catalog:  store,
		gateway:  gateway,
		checkout: checkout,
		storage:  storage,
		max:      max,
		grace:    evictionGrace,
		now:      time.Now,
		entries:  make(map[string]*list.Element),
		recent:   list.New(),
		logger:   util.GetLogger(),
	}
}

// Get returns the session's storefront, building it on first use. When the
// stored ledger cannot be read nothing is cached and the error wraps
// ErrCartUnavailable; the next call reads again.
func (s *Sessions) Get(ctx context.Context, sessionID string) (*Storefront, error) {
	if sf := s.lookup(sessionID); sf != nil {
		return sf, nil
	}

	v, err, _ := s.loads.Do(sessionID, func() (interface{}, error) {
		if sf := s.lookup(sessionID); sf != nil {
			return sf, nil
		}

		// Shared by every waiter, so one caller going away must not fail the read.
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rehydrateTimeout)
		defer cancel()

		ledger, err := cart.Load(loadCtx, s.storage, cart.SessionKey(sessionID))
		if err != nil {
			s.logger.Warn("Failed to rehydrate cart",
				zap.String("session_id", sessionID),
				zap.Error(err))
			return nil, fmt.Errorf("%w: %v", ErrCartUnavailable, err)
		}
		sf := newStorefront(sessionID, s.catalog, s.gateway, s.checkout, ledger)
		s.insert(sessionID, sf)
		return sf, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Storefront), nil
}

// Len returns the number of sessions held in memory
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recent.Len()
}

func (s *Sessions) lookup(sessionID string) *Storefront {
	s.mu.Lock()
	defer s.mu.Unlock()
	if el, ok := s.entries[sessionID]; ok {
		entry := el.Value.(*sessionEntry)
		entry.lastSeen = s.now()
		s.recent.MoveToFront(el)
		return entry.storefront
	}
	return nil
}

// insert adds the storefront and evicts the least recently used ones while
// over the bound. Entries used within the grace period are never evicted, so
// the registry may briefly hold more than max.
func (s *Sessions) insert(sessionID string, sf *Storefront) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.entries[sessionID] = s.recent.PushFront(&sessionEntry{storefront: sf, lastSeen: now})
	for s.recent.Len() > s.max {
		oldest := s.recent.Back()
		entry := oldest.Value.(*sessionEntry)
		if now.Sub(entry.lastSeen) < s.grace {
			util.SessionEvictionsDeferred.Inc()
			break
		}
		s.recent.Remove(oldest)
		delete(s.entries, entry.storefront.sessionID)
		s.logger.Debug("Session evicted", zap.String("session_id", entry.storefront.sessionID))
	}
}
