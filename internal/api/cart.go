package api

import (
	"net/http"

	"storefront-service/internal/models"
	"storefront-service/internal/service"

	"github.com/gin-gonic/gin"
)

type addCartItemRequest struct {
	ProductID models.ProductID `json:"product_id" binding:"required"`
}

type updateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// getCart returns the session's cart with freshly computed totals
func (h *Handler) getCart(c *gin.Context) {
	writeCart(c, http.StatusOK, storefront(c))
}

// addCartItem adds one unit of a catalog product
func (h *Handler) addCartItem(c *gin.Context) {
	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	sf := storefront(c)
	if !sf.AddToCartByID(c.Request.Context(), req.ProductID) {
		h.writeError(c, service.ErrProductNotFound)
		return
	}
	writeCart(c, http.StatusOK, sf)
}

// updateCartItem sets a quantity; zero or less removes the item
func (h *Handler) updateCartItem(c *gin.Context) {
	var req updateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	sf := storefront(c)
	sf.UpdateQuantity(c.Request.Context(), models.ProductID(c.Param("id")), *req.Quantity)
	writeCart(c, http.StatusOK, sf)
}

func (h *Handler) removeCartItem(c *gin.Context) {
	sf := storefront(c)
	sf.RemoveFromCart(c.Request.Context(), models.ProductID(c.Param("id")))
	writeCart(c, http.StatusOK, sf)
}

func (h *Handler) toggleCart(c *gin.Context) {
	sf := storefront(c)
	sf.ToggleCart()
	writeCart(c, http.StatusOK, sf)
}

func (h *Handler) openCart(c *gin.Context) {
	sf := storefront(c)
	sf.OpenCart()
	writeCart(c, http.StatusOK, sf)
}

func writeCart(c *gin.Context, status int, sf *service.Storefront) {
	items := sf.Cart()
	for i := range items {
		items[i].Product.Reviews = nil
	}
	c.JSON(status, gin.H{
		"session_id": sf.SessionID(),
		"items":      items,
		"count":      sf.CartCount(),
		"subtotal":   sf.CartSubtotal(),
		"total":      sf.CartTotal(),
		"open":       sf.IsCartOpen(),
	})
}
