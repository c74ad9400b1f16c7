package api

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/psyrax/pokePrices/internal/api/handlers"
	"github.com/psyrax/pokePrices/internal/metrics"
	"github.com/psyrax/pokePrices/internal/services"
)

func SetupRouter(client *services.JustTCGClient, setService *services.SetService, refresher *services.Refresher, currencyService *services.CurrencyService) *gin.Engine {
	router := gin.Default()

	// CORS configuration - allow origins from environment or use defaults
	config := cors.DefaultConfig()
	if corsOrigins := os.Getenv("CORS_ALLOWED_ORIGINS"); corsOrigins != "" {
		config.AllowOrigins = strings.Split(corsOrigins, ",")
	} else {
		config.AllowOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	config.AllowCredentials = false
	router.Use(cors.New(config))
	router.Use(httpMetrics())

	// Initialize handlers
	cardHandler := handlers.NewCardHandler(client)
	setHandler := handlers.NewSetHandler(setService)
	refreshHandler := handlers.NewRefreshHandler(refresher)
	currencyHandler := handlers.NewCurrencyHandler(currencyService)

	// API routes
	api := router.Group("/api")
	{
		cards := api.Group("/cards")
		{
			cards.GET("", cardHandler.ListCards)
			cards.POST("", cardHandler.CreateCard)
			cards.GET("/search", cardHandler.SearchCards)
			cards.POST("/refresh", refreshHandler.TriggerRefresh)
			cards.GET("/:id", cardHandler.GetCard)
			cards.PUT("/:id", cardHandler.UpdateCard)
			cards.DELETE("/:id", cardHandler.DeleteCard)
			cards.POST("/:id/sync", cardHandler.SyncCard)
		}

		sets := api.Group("/sets")
		{
			sets.GET("", setHandler.ListSets)
			sets.POST("/refresh", setHandler.RefreshSets)
			sets.GET("/:code", setHandler.GetSet)
		}

		api.GET("/refresh/status", refreshHandler.GetStatus)
		api.GET("/tags/:tagId", cardHandler.GetCardByTag)
		api.GET("/currency/rate", currencyHandler.GetRate)
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Prometheus scrape endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

// httpMetrics records request counts and latency per route.
func httpMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(
			c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
