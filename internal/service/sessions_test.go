package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"storefront-service/internal/cart"
	"storefront-service/internal/redisclient"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyStorage struct {
	*cart.MemoryStorage
	mu       sync.Mutex
	failures int
}

func (f *flakyStorage) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	if f.failures > 0 {
		f.failures--
		f.mu.Unlock()
		return nil, errors.New("i/o timeout")
	}
	f.mu.Unlock()
	return f.MemoryStorage.Get(ctx, key)
}

func seedCart(t *testing.T, h *harness, storage cart.Storage, sessionID string, quantity int) {
	t.Helper()
	ctx := context.Background()
	l, err := cart.Load(ctx, storage, cart.SessionKey(sessionID))
	require.NoError(t, err)
	p, ok := h.catalog.Find("1")
	require.True(t, ok)
	l.Add(ctx, p)
	l.UpdateQuantity(ctx, "1", quantity)
}

func TestSessions_CancelledFirstRequestKeepsStoredCart(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := redisclient.NewClient(mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	h := newHarness()
	h.sessions = NewSessions(h.catalog, h.gateway, NewCheckout(h.orders, h.events), client, 0)
	seedCart(t, h, client, "s1", 3)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	sf, err := h.sessions.Get(cancelled, "s1")
	require.NoError(t, err)
	assert.Equal(t, 3, sf.CartCount())

	ctx := context.Background()
	require.True(t, sf.AddToCartByID(ctx, "2"))

	stored, err := cart.Load(ctx, client, cart.SessionKey("s1"))
	require.NoError(t, err)
	assert.Len(t, stored.Items(), 2)
	assert.Equal(t, 4, stored.Count())
}

func TestSessions_ReadFailureIsNotCached(t *testing.T) {
	h := newHarness()
	storage := &flakyStorage{MemoryStorage: cart.NewMemoryStorage()}
	h.sessions = NewSessions(h.catalog, h.gateway, NewCheckout(h.orders, h.events), storage, 0)
	seedCart(t, h, storage, "s1", 2)
	storage.failures = 1
	ctx := context.Background()

	sf, err := h.sessions.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrCartUnavailable)
	assert.Nil(t, sf)
	assert.Zero(t, h.sessions.Len())

	sf, err = h.sessions.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, sf.CartCount())
}

func TestSessions_RecentlyUsedAreNotEvicted(t *testing.T) {
	h := newHarness()
	h.sessions = NewSessions(h.catalog, h.gateway, NewCheckout(h.orders, h.events), h.storage, 1)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	h.sessions.now = func() time.Time { return now }

	first := h.storefront("s1")
	h.storefront("s2")
	assert.Equal(t, 2, h.sessions.Len())
	assert.Same(t, first, h.storefront("s1"))

	now = now.Add(2 * evictionGrace)
	h.storefront("s3")
	assert.Equal(t, 1, h.sessions.Len())
	assert.NotSame(t, first, h.storefront("s1"))
}
