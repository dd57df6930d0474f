package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront-service/internal/auth"
	"storefront-service/internal/models"

	"github.com/google/uuid"
)

const reviewDateLayout = "Jan 2, 2006"

// ReviewInput is what a patron submits
type ReviewInput struct {
	Rating int    `json:"rating"`
	Text   string `json:"text"`
}

// VisibleReviews returns the reviews the principal may read: approved ones,
// or all of them for a privileged principal.
func VisibleReviews(p models.Product, principal auth.Principal) models.ReviewList {
	out := models.ReviewList{}
	for _, r := range p.Reviews {
		if r.Status == models.ReviewStatusApproved || principal.Privileged {
			out = append(out, r)
		}
	}
	return out
}

// ScrubReviews narrows the reviews of every product to what the principal
// may read.
func ScrubReviews(products []models.Product, principal auth.Principal) []models.Product {
	for i := range products {
		products[i].Reviews = VisibleReviews(products[i], principal)
	}
	return products
}

// SubmitReview appends a review to the product. Privileged authors publish
// immediately; everyone else waits for moderation.
func (s *Storefront) SubmitReview(ctx context.Context, principal auth.Principal, id models.ProductID, input ReviewInput) (models.Review, error) {
	if !principal.Authenticated() {
		return models.Review{}, ErrUnauthenticated
	}
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return models.Review{}, fmt.Errorf("%w: text is required", ErrInvalidReview)
	}
	if input.Rating < 1 || input.Rating > 5 {
		return models.Review{}, fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidReview)
	}

	if _, ok := s.catalog.Find(id); !ok {
		return models.Review{}, ErrProductNotFound
	}

	review := models.Review{
		ID:     "review-" + uuid.NewString(),
		Name:   principal.Name(),
		Rating: input.Rating,
		Text:   input.Text,
		Date:   time.Now().Format(reviewDateLayout),
		Status: models.ReviewStatusPending,
	}
	if principal.Privileged {
		review.Status = models.ReviewStatusApproved
	}

	s.gateway.appendReview(ctx, id, review)
	return review, nil
}

// SetReviewStatus approves a review or sends it back to moderation
func (s *Storefront) SetReviewStatus(ctx context.Context, principal auth.Principal, id models.ProductID, reviewID string, status models.ReviewStatus) error {
	if !principal.Privileged {
		return ErrForbidden
	}
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidReview, status)
	}

	return s.editReview(ctx, id, reviewID, func(reviews models.ReviewList) models.ReviewList {
		for i := range reviews {
			if reviews[i].ID == reviewID {
				reviews[i].Status = status
			}
		}
		return reviews
	})
}

// DeleteReview removes a review from the product
func (s *Storefront) DeleteReview(ctx context.Context, principal auth.Principal, id models.ProductID, reviewID string) error {
	if !principal.Privileged {
		return ErrForbidden
	}

	return s.editReview(ctx, id, reviewID, func(reviews models.ReviewList) models.ReviewList {
		kept := reviews[:0]
		for _, r := range reviews {
			if r.ID != reviewID {
				kept = append(kept, r)
			}
		}
		return kept
	})
}

// editReview checks that the review is in the current catalog, then hands
// edit to the gateway, which runs it against the latest stored list.
func (s *Storefront) editReview(ctx context.Context, id models.ProductID, reviewID string, edit models.ReviewEdit) error {
	p, ok := s.catalog.Find(id)
	if !ok {
		return ErrProductNotFound
	}

	for _, r := range p.Reviews {
		if r.ID == reviewID {
			s.gateway.editReviews(ctx, id, edit)
			return nil
		}
	}
	return ErrReviewNotFound
}
