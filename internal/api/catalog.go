package api

import (
	"net/http"

	"storefront-service/internal/models"
	"storefront-service/internal/service"

	"github.com/gin-gonic/gin"
)

type filterRequest struct {
	Query    *string `json:"query"`
	Category *string `json:"category"`
}

type reviewStatusRequest struct {
	Status models.ReviewStatus `json:"status" binding:"required"`
}

// listProducts returns the whole catalog snapshot
func (h *Handler) listProducts(c *gin.Context) {
	products := service.ScrubReviews(storefront(c).Products(), principal(c))
	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// getProduct returns one product
func (h *Handler) getProduct(c *gin.Context) {
	p, ok := storefront(c).Product(models.ProductID(c.Param("id")), principal(c))
	if !ok {
		h.writeError(c, service.ErrProductNotFound)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) listCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": storefront(c).Categories()})
}

// getFilter returns the session's filter state and its projection
func (h *Handler) getFilter(c *gin.Context) {
	h.writeFilter(c, storefront(c))
}

// setFilter updates the session's search text and/or category
func (h *Handler) setFilter(c *gin.Context) {
	var req filterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	sf := storefront(c)
	if req.Query != nil {
		sf.SetSearchQuery(*req.Query)
	}
	if req.Category != nil {
		sf.SetSelectedCategory(*req.Category)
	}
	h.writeFilter(c, sf)
}

func (h *Handler) writeFilter(c *gin.Context, sf *service.Storefront) {
	products := service.ScrubReviews(sf.FilteredProducts(), principal(c))
	c.JSON(http.StatusOK, gin.H{
		"query":    sf.SearchQuery(),
		"category": sf.SelectedCategory(),
		"products": products,
		"count":    len(products),
	})
}

// submitReview adds a review to a product
func (h *Handler) submitReview(c *gin.Context) {
	var req service.ReviewInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	review, err := storefront(c).SubmitReview(c.Request.Context(), principal(c), models.ProductID(c.Param("id")), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

// setReviewStatus approves a review or returns it to moderation
func (h *Handler) setReviewStatus(c *gin.Context) {
	var req reviewStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	err := storefront(c).SetReviewStatus(c.Request.Context(), principal(c),
		models.ProductID(c.Param("id")), c.Param("reviewId"), req.Status)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": req.Status})
}

func (h *Handler) deleteReview(c *gin.Context) {
	err := storefront(c).DeleteReview(c.Request.Context(), principal(c),
		models.ProductID(c.Param("id")), c.Param("reviewId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
