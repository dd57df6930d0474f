package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"storefront-service/internal/auth"
	"storefront-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitReview_RequiresSignIn(t *testing.T) {
	sf := newHarness().storefront("s1")

	_, err := sf.SubmitReview(context.Background(), guest, "1", ReviewInput{Rating: 5, Text: "Lovely"})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestSubmitReview_Validates(t *testing.T) {
	sf := newHarness().storefront("s1")
	ctx := context.Background()

	_, err := sf.SubmitReview(ctx, patron, "1", ReviewInput{Rating: 5, Text: "   "})
	assert.ErrorIs(t, err, ErrInvalidReview)

	_, err = sf.SubmitReview(ctx, patron, "1", ReviewInput{Rating: 6, Text: "Lovely"})
	assert.ErrorIs(t, err, ErrInvalidReview)

	_, err = sf.SubmitReview(ctx, patron, "missing", ReviewInput{Rating: 4, Text: "Lovely"})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestSubmitReview_PatronReviewIsPending(t *testing.T) {
	h := newHarness()
	sf := h.storefront("s1")

	review, err := sf.SubmitReview(context.Background(), patron, "1", ReviewInput{Rating: 4, Text: "Lovely"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(review.ID, "review-"))
	assert.Equal(t, "Layla", review.Name)
	assert.Equal(t, models.ReviewStatusPending, review.Status)
	_, err = time.Parse("Jan 2, 2006", review.Date)
	assert.NoError(t, err)

	require.Len(t, h.remote.reviews["1"], 1)
	assert.Equal(t, review.ID, h.remote.reviews["1"][0].ID)
	assert.Empty(t, h.remote.updated)
}

func TestSubmitReview_BackToBackReviewsBothPersist(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	first, err := h.storefront("s1").SubmitReview(ctx, patron, "1", ReviewInput{Rating: 4, Text: "first"})
	require.NoError(t, err)
	second, err := h.storefront("s2").SubmitReview(ctx, admin, "1", ReviewInput{Rating: 5, Text: "second"})
	require.NoError(t, err)

	stored := h.remote.reviews["1"]
	require.Len(t, stored, 2)
	assert.Equal(t, first.ID, stored[0].ID)
	assert.Equal(t, second.ID, stored[1].ID)
}

func TestModeration_EditsLatestStoredReviews(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	moderated := models.Review{ID: "review-a", Text: "a", Status: models.ReviewStatusPending}
	h.catalog.OnRemoteUpdate([]models.Product{{ID: "1", Name: "Thuluth Majesty", Reviews: models.ReviewList{moderated}}})
	h.remote.reviews["1"] = models.ReviewList{moderated}
	sf := h.storefront("s1")

	late, err := sf.SubmitReview(ctx, patron, "1", ReviewInput{Rating: 3, Text: "not yet synced"})
	require.NoError(t, err)
	require.NoError(t, sf.SetReviewStatus(ctx, admin, "1", "review-a", models.ReviewStatusApproved))

	stored := h.remote.reviews["1"]
	require.Len(t, stored, 2)
	assert.Equal(t, models.ReviewStatusApproved, stored[0].Status)
	assert.Equal(t, late.ID, stored[1].ID)

	require.NoError(t, sf.DeleteReview(ctx, admin, "1", "review-a"))
	stored = h.remote.reviews["1"]
	require.Len(t, stored, 1)
	assert.Equal(t, late.ID, stored[0].ID)
}

func TestSubmitReview_AdminReviewIsApproved(t *testing.T) {
	sf := newHarness().storefront("s1")

	review, err := sf.SubmitReview(context.Background(), admin, "1", ReviewInput{Rating: 5, Text: "Superb"})
	require.NoError(t, err)

	assert.Equal(t, models.ReviewStatusApproved, review.Status)
	assert.Equal(t, "curator@umarshands.test", review.Name)
}

func TestSubmitReview_AnonymousName(t *testing.T) {
	sf := newHarness().storefront("s1")

	review, err := sf.SubmitReview(context.Background(), auth.Principal{ID: "u-x"}, "1", ReviewInput{Rating: 3, Text: "Fine"})
	require.NoError(t, err)
	assert.Equal(t, "Anonymous Patron", review.Name)
}

func TestSubmitReview_RemoteFailureKeepsReviewLocally(t *testing.T) {
	h := newHarness()
	h.remote.err = errRemoteDown
	sf := h.storefront("s1")

	_, err := sf.SubmitReview(context.Background(), patron, "1", ReviewInput{Rating: 4, Text: "Lovely"})
	require.NoError(t, err)

	p, _ := sf.Product("1", admin)
	assert.Len(t, p.Reviews, 1)
	p, _ = sf.Product("1", patron)
	assert.Empty(t, p.Reviews)
}

func TestModeration(t *testing.T) {
	h := newHarness()
	h.remote.err = errRemoteDown
	sf := h.storefront("s1")
	ctx := context.Background()

	review, err := sf.SubmitReview(ctx, patron, "1", ReviewInput{Rating: 4, Text: "Lovely"})
	require.NoError(t, err)

	assert.ErrorIs(t, sf.SetReviewStatus(ctx, patron, "1", review.ID, models.ReviewStatusApproved), ErrForbidden)
	assert.ErrorIs(t, sf.SetReviewStatus(ctx, admin, "1", review.ID, "rejected"), ErrInvalidReview)
	assert.ErrorIs(t, sf.SetReviewStatus(ctx, admin, "1", "review-none", models.ReviewStatusApproved), ErrReviewNotFound)

	require.NoError(t, sf.SetReviewStatus(ctx, admin, "1", review.ID, models.ReviewStatusApproved))
	p, _ := sf.Product("1", patron)
	require.Len(t, p.Reviews, 1)
	assert.Equal(t, models.ReviewStatusApproved, p.Reviews[0].Status)

	assert.ErrorIs(t, sf.DeleteReview(ctx, patron, "1", review.ID), ErrForbidden)
	require.NoError(t, sf.DeleteReview(ctx, admin, "1", review.ID))
	p, _ = sf.Product("1", admin)
	assert.Empty(t, p.Reviews)
}

func TestScrubReviews(t *testing.T) {
	products := []models.Product{{
		ID: "1",
		Reviews: models.ReviewList{
			{ID: "a", Status: models.ReviewStatusPending},
			{ID: "b", Status: models.ReviewStatusApproved},
		},
	}}

	out := ScrubReviews(products, patron)
	require.Len(t, out[0].Reviews, 1)
	assert.Equal(t, "b", out[0].Reviews[0].ID)
}
