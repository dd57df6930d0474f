package api

import (
	"net/http"

	"storefront-service/internal/curator"
	"storefront-service/internal/service"

	"github.com/gin-gonic/gin"
)

type curatorRequest struct {
	History []curator.Message `json:"history" binding:"required"`
}

// checkout places the session's cart as an order
func (h *Handler) checkout(c *gin.Context) {
	var req service.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}
	req.IdempotencyKey = c.GetHeader("Idempotency-Key")

	receipt, err := storefront(c).Checkout(c.Request.Context(), principal(c), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	status := http.StatusCreated
	if receipt.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, receipt)
}

// curatorMessage runs one turn of the shopping assistant against the session
func (h *Handler) curatorMessage(c *gin.Context) {
	var req curatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	sf := storefront(c)
	result, err := h.curator.Send(c.Request.Context(), sf, req.History)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reply":    result.Reply,
		"applied":  result.Applied,
		"query":    sf.SearchQuery(),
		"category": sf.SelectedCategory(),
		"cart":     gin.H{"count": sf.CartCount(), "open": sf.IsCartOpen()},
	})
}
