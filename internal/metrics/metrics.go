// Package metrics provides Prometheus metrics for the pokePrices backend.
// Scrape these at /metrics for dashboards and alerting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"

	"github.com/psyrax/pokePrices/internal/models"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokeprices_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pokeprices_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Bulk Refresh Metrics
	RefreshRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pokeprices_refresh_runs_total",
			Help: "Total number of bulk refresh runs",
		},
	)

	RefreshItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokeprices_refresh_items_total",
			Help: "Per-card refresh outcomes",
		},
		[]string{"result"}, // "updated" or "error"
	)

	RefreshBatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pokeprices_refresh_batch_duration_seconds",
			Help:    "Time taken to run a full bulk refresh",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	// JustTCG API Metrics
	JustTCGRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokeprices_justtcg_requests_total",
			Help: "JustTCG API requests by operation and outcome",
		},
		[]string{"operation", "outcome"}, // operation: "search", "fetch", "sets"
	)

	// Catalog Metrics
	CatalogCardsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pokeprices_catalog_cards_total",
			Help: "Total number of cards in the catalog",
		},
	)

	CatalogCardsByList = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pokeprices_catalog_cards_by_list",
			Help: "Number of cards by list classification",
		},
		[]string{"list_type"},
	)

	CatalogVariantsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pokeprices_catalog_variants_total",
			Help: "Total number of priced variants in the catalog",
		},
	)

	CatalogSetsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pokeprices_catalog_sets_total",
			Help: "Number of game sets stored locally",
		},
	)
)

// UpdateCatalogMetrics refreshes the catalog gauges from the database.
// Called after mutations that change catalog size (sync, refresh, delete).
func UpdateCatalogMetrics(db *gorm.DB) {
	var cards, variants, sets int64
	db.Model(&models.Card{}).Count(&cards)
	db.Model(&models.Variant{}).Count(&variants)
	db.Model(&models.GameSet{}).Count(&sets)

	CatalogCardsTotal.Set(float64(cards))
	CatalogVariantsTotal.Set(float64(variants))
	CatalogSetsTotal.Set(float64(sets))

	for _, lt := range models.AllListTypes() {
		var n int64
		db.Model(&models.Card{}).Where("list_type = ?", lt).Count(&n)
		CatalogCardsByList.WithLabelValues(string(lt)).Set(float64(n))
	}
}
