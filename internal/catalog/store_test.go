package catalog

import (
	"errors"
	"testing"
	"time"

	"storefront-service/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func remoteProduct(id, name string, updatedAt time.Time) models.Product {
	return models.Product{
		ID:        models.ProductID(id),
		Name:      name,
		Category:  "Remote",
		Price:     decimal.NewFromInt(100),
		UpdatedAt: updatedAt,
	}
}

func ids(products []models.Product) []models.ProductID {
	out := make([]models.ProductID, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func TestNewStore_ServesFallbackImmediately(t *testing.T) {
	s := NewStore(Fallback())

	products := s.Products()
	assert.Len(t, products, 6)
	assert.False(t, s.FromRemote())
	assert.Equal(t, []models.ProductID{"1", "2", "3", "4", "e1", "e2"}, ids(products))
}

func TestOnRemoteUpdate_ReplacesWholesale(t *testing.T) {
	s := NewStore(Fallback())

	s.OnRemoteUpdate([]models.Product{
		remoteProduct("a", "Alpha", time.Time{}),
		remoteProduct("b", "Beta", time.Time{}),
	})

	assert.Equal(t, []models.ProductID{"a", "b"}, ids(s.Products()))
	assert.True(t, s.FromRemote())

	s.OnRemoteUpdate([]models.Product{remoteProduct("c", "Gamma", time.Time{})})
	assert.Equal(t, []models.ProductID{"c"}, ids(s.Products()))
}

func TestOnRemoteUpdate_EmptyKeepsFallback(t *testing.T) {
	s := NewStore(Fallback())

	s.OnRemoteUpdate(nil)

	assert.Len(t, s.Products(), 6)
	assert.False(t, s.FromRemote())
}

func TestOnRemoteUpdate_EmptyAfterRemoteRevertsToFallback(t *testing.T) {
	s := NewStore(Fallback())
	s.OnRemoteUpdate([]models.Product{remoteProduct("a", "Alpha", time.Time{})})

	s.OnRemoteUpdate([]models.Product{})

	assert.Equal(t, ids(Fallback()), ids(s.Products()))
}

func TestOnRemoteError_RetainsFallback(t *testing.T) {
	s := NewStore(Fallback())
	s.OnRemoteUpdate([]models.Product{remoteProduct("a", "Alpha", time.Time{})})

	s.OnRemoteError(errors.New("permission denied"))

	assert.Equal(t, ids(Fallback()), ids(s.Products()))
	assert.False(t, s.FromRemote())
}

func TestProducts_ReturnsCopies(t *testing.T) {
	s := NewStore(Fallback())

	products := s.Products()
	products[0].Name = "mutated"
	products[0].Tags[0] = "mutated"

	fresh, ok := s.Find("1")
	require.True(t, ok)
	assert.Equal(t, "Thuluth Majesty", fresh.Name)
	assert.Equal(t, "monumental", fresh.Tags[0])
}

func TestLocalEdits(t *testing.T) {
	s := NewStore(Fallback())

	s.AppendLocal(models.Product{ID: "local-1", Name: "X", Price: decimal.NewFromInt(10)})
	_, ok := s.Find("local-1")
	assert.True(t, ok)

	name := "Renamed"
	assert.True(t, s.PatchLocal("2", models.ProductUpdate{Name: &name}))
	p, _ := s.Find("2")
	assert.Equal(t, "Renamed", p.Name)
	assert.Equal(t, "Ottoman Diwani", p.Category)

	assert.True(t, s.RemoveLocal("3"))
	_, ok = s.Find("3")
	assert.False(t, ok)

	assert.False(t, s.PatchLocal("missing", models.ProductUpdate{Name: &name}))
	assert.False(t, s.RemoveLocal("missing"))
}

func TestLastWriteWins_SnapshotOverwritesLocalEdits(t *testing.T) {
	s := NewStore(Fallback())
	s.AppendLocal(models.Product{ID: "local-1", Name: "X"})

	s.OnRemoteUpdate([]models.Product{remoteProduct("a", "Alpha", time.Time{})})

	_, ok := s.Find("local-1")
	assert.False(t, ok)
	assert.Zero(t, s.PendingLocal())
}

func TestPreserveLocal_ReappliesUnsyncedEdits(t *testing.T) {
	edit := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore(nil, WithReconcilePolicy(PreserveLocal), WithClock(func() time.Time { return edit }))
	s.OnRemoteUpdate([]models.Product{
		remoteProduct("a", "Alpha", edit.Add(-time.Hour)),
		remoteProduct("b", "Beta", edit.Add(-time.Hour)),
	})

	name := "Alpha Prime"
	s.AppendLocal(models.Product{ID: "local-1", Name: "X"})
	s.PatchLocal("a", models.ProductUpdate{Name: &name})
	s.RemoveLocal("b")
	require.Equal(t, 3, s.PendingLocal())

	s.OnRemoteUpdate([]models.Product{
		remoteProduct("a", "Alpha", edit.Add(-time.Hour)),
		remoteProduct("b", "Beta", edit.Add(-time.Hour)),
	})

	assert.Equal(t, []models.ProductID{"a", "local-1"}, ids(s.Products()))
	a, _ := s.Find("a")
	assert.Equal(t, "Alpha Prime", a.Name)
	assert.Equal(t, 3, s.PendingLocal())
}

func TestPreserveLocal_NewerRemoteEntryWins(t *testing.T) {
	edit := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore(nil, WithReconcilePolicy(PreserveLocal), WithClock(func() time.Time { return edit }))
	s.OnRemoteUpdate([]models.Product{remoteProduct("a", "Alpha", edit.Add(-time.Hour))})

	name := "Alpha Prime"
	s.PatchLocal("a", models.ProductUpdate{Name: &name})

	s.OnRemoteUpdate([]models.Product{remoteProduct("a", "Alpha Remote", edit.Add(time.Minute))})

	a, _ := s.Find("a")
	assert.Equal(t, "Alpha Remote", a.Name)
	assert.Zero(t, s.PendingLocal())
}

func TestPreserveLocal_ReplaysReviewEditsOnLatestList(t *testing.T) {
	edit := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore(nil, WithReconcilePolicy(PreserveLocal), WithClock(func() time.Time { return edit }))
	s.OnRemoteUpdate([]models.Product{remoteProduct("a", "Alpha", edit.Add(-time.Hour))})

	require.True(t, s.EditReviewsLocal("a", func(l models.ReviewList) models.ReviewList {
		return append(l, models.Review{ID: "local"})
	}))
	assert.False(t, s.EditReviewsLocal("missing", func(l models.ReviewList) models.ReviewList { return l }))

	stale := remoteProduct("a", "Alpha", edit.Add(-time.Hour))
	stale.Reviews = models.ReviewList{{ID: "remote"}}
	s.OnRemoteUpdate([]models.Product{stale})

	a, _ := s.Find("a")
	require.Len(t, a.Reviews, 2)
	assert.Equal(t, "remote", a.Reviews[0].ID)
	assert.Equal(t, "local", a.Reviews[1].ID)
}

func TestParseReconcilePolicy(t *testing.T) {
	p, err := ParseReconcilePolicy("preserve-local")
	require.NoError(t, err)
	assert.Equal(t, PreserveLocal, p)

	p, err = ParseReconcilePolicy("")
	require.NoError(t, err)
	assert.Equal(t, LastWriteWins, p)

	_, err = ParseReconcilePolicy("merge")
	assert.Error(t, err)
}
