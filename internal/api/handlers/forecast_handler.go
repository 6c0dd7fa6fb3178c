package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/stockcast/backend-go/internal/config"
	"github.com/andresuchdata/stockcast/backend-go/internal/domain"
	"github.com/andresuchdata/stockcast/backend-go/internal/repository"
	"github.com/andresuchdata/stockcast/backend-go/internal/service"
)

type ForecastHandler struct {
	service *service.ForecastService
	cfg     config.EngineConfig
}

func NewForecastHandler(service *service.ForecastService, cfg config.EngineConfig) *ForecastHandler {
	return &ForecastHandler{service: service, cfg: cfg}
}

// ForecastDemand handles POST /forecast/demand/:product_id
func (h *ForecastHandler) ForecastDemand(c *gin.Context) {
	productID := strings.TrimSpace(c.Param("product_id"))
	if productID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
		return
	}

	horizonDays := h.cfg.DefaultHorizonDays
	if days, err := strconv.Atoi(c.DefaultQuery("forecast_days", "")); err == nil && days > 0 {
		horizonDays = days
	}

	result, err := h.service.ForecastDemand(c.Request.Context(), productID, horizonDays)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to forecast demand", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// RecommendPricing handles POST /forecast/pricing/:product_id
func (h *ForecastHandler) RecommendPricing(c *gin.Context) {
	productID := strings.TrimSpace(c.Param("product_id"))
	if productID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
		return
	}

	// Competitor pricing context is an optional request body
	var market *domain.MarketData
	if c.Request.ContentLength > 0 {
		var payload domain.MarketData
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid market data", "details": err.Error()})
			return
		}
		market = &payload
	}

	result, err := h.service.RecommendPricing(c.Request.Context(), productID, market)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to recommend pricing", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// ReorderPoints handles GET /forecast/reorder-points
func (h *ForecastHandler) ReorderPoints(c *gin.Context) {
	leadTimeDays := h.cfg.DefaultLeadTimeDays
	if days, err := strconv.Atoi(c.DefaultQuery("lead_time_days", "")); err == nil && days > 0 {
		leadTimeDays = days
	}

	serviceLevel := h.cfg.ServiceLevel
	if level, err := strconv.ParseFloat(c.DefaultQuery("service_level", ""), 64); err == nil && level > 0 && level <= 1 {
		serviceLevel = level
	}

	scan, err := h.service.ReorderScan(c.Request.Context(), leadTimeDays, serviceLevel)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to scan reorder points", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, scan)
}

// BatchPricing handles POST /forecast/batch-pricing
func (h *ForecastHandler) BatchPricing(c *gin.Context) {
	scan, err := h.service.BatchPricing(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to run batch pricing", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, scan)
}
