package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"storefront-service/internal/auth"
	"storefront-service/internal/curator"
	"storefront-service/internal/service"
	"storefront-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Pinger is a dependency checked by the readiness probe
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler contains HTTP handlers
type Handler struct {
	sessions *service.Sessions
	identity *auth.Identity
	curator  *curator.Curator
	checks   map[string]Pinger
	logger   *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(sessions *service.Sessions, identity *auth.Identity, assistant *curator.Curator, checks map[string]Pinger) *Handler {
	return &Handler{
		sessions: sessions,
		identity: identity,
		curator:  assistant,
		checks:   checks,
		logger:   util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1", h.sessionMiddleware())
	{
		v1.GET("/products", h.listProducts)
		v1.GET("/products/:id", h.getProduct)
		v1.GET("/categories", h.listCategories)
		v1.GET("/filter", h.getFilter)
		v1.PUT("/filter", h.setFilter)

		v1.POST("/products/:id/reviews", h.submitReview)
		v1.PATCH("/products/:id/reviews/:reviewId", h.setReviewStatus)
		v1.DELETE("/products/:id/reviews/:reviewId", h.deleteReview)

		v1.GET("/cart", h.getCart)
		v1.POST("/cart/items", h.addCartItem)
		v1.PATCH("/cart/items/:id", h.updateCartItem)
		v1.DELETE("/cart/items/:id", h.removeCartItem)
		v1.POST("/cart/toggle", h.toggleCart)
		v1.POST("/cart/open", h.openCart)

		v1.POST("/checkout", h.checkout)

		v1.POST("/curator/messages", h.curatorMessage)

		admin := v1.Group("/admin")
		{
			admin.POST("/products", h.addProduct)
			admin.PATCH("/products/:id", h.updateProduct)
			admin.DELETE("/products/:id", h.deleteProduct)
			admin.POST("/seed", h.seedDatabase)
		}
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck pings every dependency
func (h *Handler) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	failed := gin.H{}
	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			failed[name] = err.Error()
		}
	}

	if len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"failed": failed,
			"time":   time.Now().Unix(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// writeError maps service errors to status codes
func (h *Handler) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "Internal error"

	switch {
	case errors.Is(err, service.ErrUnauthenticated), errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingSubject), errors.Is(err, auth.ErrNoSigningKey):
		status, message = http.StatusUnauthorized, "Sign-in required"
	case errors.Is(err, service.ErrForbidden):
		status, message = http.StatusForbidden, "Forbidden"
	case errors.Is(err, service.ErrProductNotFound):
		status, message = http.StatusNotFound, "Product not found"
	case errors.Is(err, service.ErrReviewNotFound):
		status, message = http.StatusNotFound, "Review not found"
	case errors.Is(err, service.ErrInvalidProduct), errors.Is(err, service.ErrInvalidReview),
		errors.Is(err, service.ErrInvalidCheckout), errors.Is(err, curator.ErrEmptyMessage),
		errors.Is(err, curator.ErrHistoryNotEnded):
		status, message = http.StatusBadRequest, "Invalid request"
	case errors.Is(err, service.ErrEmptyCart):
		status, message = http.StatusConflict, "Cart is empty"
	case errors.Is(err, service.ErrCartUnavailable):
		status, message = http.StatusServiceUnavailable, "Cart temporarily unavailable"
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}

	c.JSON(status, gin.H{
		"error":   message,
		"details": err.Error(),
	})
}

func badRequest(c *gin.Context, message string, err error) {
	body := gin.H{"error": message}
	if err != nil {
		body["details"] = err.Error()
	}
	c.JSON(http.StatusBadRequest, body)
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
