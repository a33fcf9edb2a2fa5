package api

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"time"

	"checkout-service/internal/checkout"
	"checkout-service/internal/util"
	"checkout-service/internal/view"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const maxWait = 30 * time.Second

// Handler contains HTTP handlers
type Handler struct {
	registry *checkout.Registry
}

// NewHandler creates a new HTTP handler
func NewHandler(registry *checkout.Registry) *Handler {
	return &Handler{
		registry: registry,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(requestLogger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/checkouts", h.startCheckout)
		v1.GET("/checkouts/:id", h.getCheckout)
		v1.GET("/checkouts/:id/text", h.getCheckoutText)
		v1.DELETE("/checkouts/:id", h.closeCheckout)
		v1.POST("/checkouts/:id/products/:productId/increase", h.increase)
		v1.POST("/checkouts/:id/products/:productId/decrease", h.decrease)
		v1.PUT("/checkouts/:id/products/:productId", h.setQuantity)
	}
}

// checkoutResponse is a rendered checkout page plus request metadata
type checkoutResponse struct {
	SessionID string `json:"session_id"`
	Changed   *bool  `json:"changed,omitempty"`
	view.Page
}

// SetQuantityRequest is the body of a quantity update
type SetQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ready",
		"sessions": h.registry.Len(),
		"time":     time.Now().Unix(),
	})
}

// startCheckout opens a session and starts loading its catalog
func (h *Handler) startCheckout(c *gin.Context) {
	_, span := util.StartSpan(c.Request.Context(), "API.StartCheckout")
	defer span.End()

	id, store := h.registry.Start()
	span.SetAttributes(util.AttrSessionID.String(id))

	c.JSON(http.StatusCreated, gin.H{
		"session_id": id,
		"status":     store.Snapshot().Status,
	})
}

// getCheckout renders the checkout page, optionally waiting for the catalog
func (h *Handler) getCheckout(c *gin.Context) {
	id, store, ok := h.lookup(c)
	if !ok {
		return
	}

	if raw := c.Query("wait"); raw != "" {
		wait, err := time.ParseDuration(raw)
		if err != nil || wait < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid wait duration"})
			return
		}
		if wait > maxWait {
			wait = maxWait
		}
		select {
		case <-store.Settled():
		case <-time.After(wait):
		case <-c.Request.Context().Done():
		}
	}

	c.JSON(http.StatusOK, render(id, store, nil))
}

// getCheckoutText renders the checkout page as plain text
func (h *Handler) getCheckoutText(c *gin.Context) {
	_, store, ok := h.lookup(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := view.Render(store.Snapshot(), store).RenderText(&buf); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to render checkout",
			"details": err.Error(),
		})
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", buf.Bytes())
}

// closeCheckout discards a session
func (h *Handler) closeCheckout(c *gin.Context) {
	id := c.Param("id")
	_, span := util.StartSessionSpan(c.Request.Context(), "API.CloseCheckout", id)
	err := h.registry.Close(id)
	util.EndSpan(span, err)

	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Checkout not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// increase clicks the "+" control of a product row
func (h *Handler) increase(c *gin.Context) {
	h.click(c, "API.IncreaseQuantity", view.ProductRow.ClickIncrease)
}

// decrease clicks the "-" control of a product row
func (h *Handler) decrease(c *gin.Context) {
	h.click(c, "API.DecreaseQuantity", view.ProductRow.ClickDecrease)
}

func (h *Handler) click(c *gin.Context, spanName string, press func(view.ProductRow) bool) {
	id, store, row, ok := h.lookupRow(c)
	if !ok {
		return
	}

	_, span := util.StartSessionSpan(c.Request.Context(), spanName, id, util.AttrProductID.Int64(row.ID))
	defer span.End()

	changed := press(row)
	span.SetAttributes(util.AttrChanged.Bool(changed))
	c.JSON(http.StatusOK, render(id, store, &changed))
}

// setQuantity sets the ordered quantity of a product
func (h *Handler) setQuantity(c *gin.Context) {
	var req SetQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	id, store, row, ok := h.lookupRow(c)
	if !ok {
		return
	}

	_, span := util.StartSessionSpan(c.Request.Context(), "API.SetQuantity", id,
		util.AttrProductID.Int64(row.ID),
		util.AttrQuantity.Int(*req.Quantity))
	defer span.End()

	changed := store.SetQuantity(row.ID, *req.Quantity)
	span.SetAttributes(util.AttrChanged.Bool(changed))
	c.JSON(http.StatusOK, render(id, store, &changed))
}

func (h *Handler) lookup(c *gin.Context) (string, *checkout.Store, bool) {
	id := c.Param("id")
	store, err := h.registry.Get(id)
	if errors.Is(err, checkout.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Checkout not found"})
		return "", nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return "", nil, false
	}
	return id, store, true
}

// lookupRow resolves the session and product row for a mutation
func (h *Handler) lookupRow(c *gin.Context) (string, *checkout.Store, view.ProductRow, bool) {
	id, store, ok := h.lookup(c)
	if !ok {
		return "", nil, view.ProductRow{}, false
	}

	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return "", nil, view.ProductRow{}, false
	}

	state := store.Snapshot()
	if !state.Ready() {
		c.JSON(http.StatusConflict, gin.H{
			"error":  "Checkout is not ready",
			"status": state.Status,
		})
		return "", nil, view.ProductRow{}, false
	}

	row, found := view.Render(state, store).Row(productID)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return "", nil, view.ProductRow{}, false
	}
	return id, store, row, true
}

func render(id string, store *checkout.Store, changed *bool) checkoutResponse {
	return checkoutResponse{
		SessionID: id,
		Changed:   changed,
		Page:      view.Render(store.Snapshot(), store),
	}
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

// requestLogger logs each request through zap
func requestLogger() gin.HandlerFunc {
	logger := util.GetLogger()
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
