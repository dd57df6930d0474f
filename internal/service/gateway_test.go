package service

import (
	"context"
	"strings"
	"testing"

	"storefront-service/internal/catalog"
	"storefront-service/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draft(name string, price int64) models.ProductDraft {
	return models.ProductDraft{
		Name:     name,
		Category: "Modern Kufic",
		Price:    decimal.NewFromInt(price),
	}
}

func TestGateway_RejectsUnprivileged(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	_, err := h.gateway.AddProduct(ctx, patron, draft("Nur", 300))
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, h.gateway.UpdateProduct(ctx, guest, "1", models.ProductUpdate{}), ErrForbidden)
	assert.ErrorIs(t, h.gateway.DeleteProduct(ctx, patron, "1"), ErrForbidden)
	assert.ErrorIs(t, h.gateway.SeedDatabase(ctx, guest), ErrForbidden)

	assert.Empty(t, h.remote.created)
	assert.Empty(t, h.remote.deleted)
	assert.Empty(t, h.remote.seeded)
	assert.Len(t, h.catalog.Products(), 6)
}

func TestGateway_ValidatesDraft(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	_, err := h.gateway.AddProduct(ctx, admin, draft("  ", 300))
	assert.ErrorIs(t, err, ErrInvalidProduct)

	_, err = h.gateway.AddProduct(ctx, admin, draft("Nur", -1))
	assert.ErrorIs(t, err, ErrInvalidProduct)

	blank := ""
	err = h.gateway.UpdateProduct(ctx, admin, "1", models.ProductUpdate{Name: &blank})
	assert.ErrorIs(t, err, ErrInvalidProduct)
}

func TestGateway_AddRemoteSuccessWaitsForSubscription(t *testing.T) {
	h := newHarness()

	p, err := h.gateway.AddProduct(context.Background(), admin, draft("Nur", 300))
	require.NoError(t, err)

	assert.Equal(t, models.ProductID("remote-1"), p.ID)
	require.Len(t, h.remote.created, 1)
	_, found := h.catalog.Find(p.ID)
	assert.False(t, found)
}

func TestGateway_AddRemoteFailureAppendsLocally(t *testing.T) {
	h := newHarness()
	h.remote.err = errRemoteDown

	p, err := h.gateway.AddProduct(context.Background(), admin, draft("Nur", 300))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(p.ID.String(), "local-"))
	products := h.catalog.Products()
	require.Len(t, products, 7)
	assert.Equal(t, p.ID, products[6].ID)
	assert.Equal(t, "Nur", products[6].Name)
}

func TestGateway_UpdateRemoteFailurePatchesLocally(t *testing.T) {
	h := newHarness()
	h.remote.err = errRemoteDown

	price := decimal.NewFromInt(1000)
	err := h.gateway.UpdateProduct(context.Background(), admin, "1", models.ProductUpdate{Price: &price})
	require.NoError(t, err)

	p, ok := h.catalog.Find("1")
	require.True(t, ok)
	assert.True(t, price.Equal(p.Price))
	assert.Equal(t, "Thuluth Majesty", p.Name)
}

func TestGateway_UpdateRemoteSuccessLeavesSnapshot(t *testing.T) {
	h := newHarness()

	price := decimal.NewFromInt(1000)
	require.NoError(t, h.gateway.UpdateProduct(context.Background(), admin, "1", models.ProductUpdate{Price: &price}))

	assert.Contains(t, h.remote.updated, models.ProductID("1"))
	p, _ := h.catalog.Find("1")
	assert.True(t, decimal.NewFromInt(1200).Equal(p.Price))
}

func TestGateway_DeleteRemoteFailureRemovesLocally(t *testing.T) {
	h := newHarness()
	h.remote.err = errRemoteDown

	require.NoError(t, h.gateway.DeleteProduct(context.Background(), admin, "2"))

	_, found := h.catalog.Find("2")
	assert.False(t, found)
	assert.Len(t, h.catalog.Products(), 5)
}

func TestGateway_DeleteUnknownIsHarmless(t *testing.T) {
	h := newHarness()
	h.remote.err = errRemoteDown

	require.NoError(t, h.gateway.DeleteProduct(context.Background(), admin, "missing"))
	assert.Len(t, h.catalog.Products(), 6)
}

func TestGateway_SeedWritesFallbackList(t *testing.T) {
	h := newHarness()

	require.NoError(t, h.gateway.SeedDatabase(context.Background(), admin))
	assert.Len(t, h.remote.seeded, len(catalog.Fallback()))
}

func TestGateway_SeedFailureIsNotFatal(t *testing.T) {
	h := newHarness()
	h.remote.err = errRemoteDown

	assert.NoError(t, h.gateway.SeedDatabase(context.Background(), admin))
	assert.Len(t, h.catalog.Products(), 6)
}

func TestGateway_LocalAddSupersededBySnapshot(t *testing.T) {
	h := newHarness()
	h.remote.err = errRemoteDown

	p, err := h.gateway.AddProduct(context.Background(), admin, draft("Nur", 300))
	require.NoError(t, err)

	h.catalog.OnRemoteUpdate([]models.Product{{ID: "r1", Name: "Remote", Price: decimal.NewFromInt(5)}})

	_, found := h.catalog.Find(p.ID)
	assert.False(t, found)
}

func TestGateway_LocalAddSurvivesSnapshotWhenPreserving(t *testing.T) {
	h := newHarness(catalog.WithReconcilePolicy(catalog.PreserveLocal))
	h.remote.err = errRemoteDown

	p, err := h.gateway.AddProduct(context.Background(), admin, draft("Nur", 300))
	require.NoError(t, err)

	h.catalog.OnRemoteUpdate([]models.Product{{ID: "r1", Name: "Remote", Price: decimal.NewFromInt(5)}})

	_, found := h.catalog.Find(p.ID)
	assert.True(t, found)
}
