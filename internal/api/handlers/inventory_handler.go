package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/stockcast/backend-go/internal/service"
)

type InventoryHandler struct {
	service *service.InventoryService
}

func NewInventoryHandler(service *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: service}
}

// Alerts handles GET /inventory/alerts
func (h *InventoryHandler) Alerts(c *gin.Context) {
	alerts, err := h.service.Alerts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch inventory alerts", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, alerts)
}

// Summary handles GET /inventory/summary
func (h *InventoryHandler) Summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch inventory summary", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}
