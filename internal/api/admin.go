package api

import (
	"net/http"

	"storefront-service/internal/models"

	"github.com/gin-gonic/gin"
)

// addProduct creates a catalog entry. The response carries the id the entry
// was stored under, which is a local- id when the remote write failed.
func (h *Handler) addProduct(c *gin.Context) {
	var draft models.ProductDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	product, err := storefront(c).AddProduct(c.Request.Context(), principal(c), draft)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, product)
}

func (h *Handler) updateProduct(c *gin.Context) {
	var upd models.ProductUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	if err := storefront(c).UpdateProduct(c.Request.Context(), principal(c), models.ProductID(c.Param("id")), upd); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

func (h *Handler) deleteProduct(c *gin.Context) {
	if err := storefront(c).DeleteProduct(c.Request.Context(), principal(c), models.ProductID(c.Param("id"))); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

// seedDatabase writes the bundled catalog to the remote catalog
func (h *Handler) seedDatabase(c *gin.Context) {
	if err := storefront(c).SeedDatabase(c.Request.Context(), principal(c)); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}
