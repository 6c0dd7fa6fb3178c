// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/stockcast/backend-go/internal/api/handlers"
	"github.com/andresuchdata/stockcast/backend-go/internal/api/middleware"
	"github.com/andresuchdata/stockcast/backend-go/internal/config"
	"github.com/andresuchdata/stockcast/backend-go/internal/service"
)

type Services struct {
	ForecastService  *service.ForecastService
	InventoryService *service.InventoryService
}

func NewRouter(services *Services, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if origins := cfg.Server.AllowedOrigins; len(origins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(origins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil {
		if services.ForecastService != nil {
			forecastHandler := handlers.NewForecastHandler(services.ForecastService, cfg.Engine)
			forecastGroup := apiGroup.Group("/forecast")
			{
				forecastGroup.POST("/demand/:product_id", forecastHandler.ForecastDemand)
				forecastGroup.POST("/pricing/:product_id", forecastHandler.RecommendPricing)
				forecastGroup.GET("/reorder-points", forecastHandler.ReorderPoints)
				forecastGroup.POST("/batch-pricing", forecastHandler.BatchPricing)
			}
		}

		if services.InventoryService != nil {
			inventoryHandler := handlers.NewInventoryHandler(services.InventoryService)
			inventoryGroup := apiGroup.Group("/inventory")
			{
				inventoryGroup.GET("/alerts", inventoryHandler.Alerts)
				inventoryGroup.GET("/summary", inventoryHandler.Summary)
			}
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
