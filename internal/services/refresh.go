package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/psyrax/pokePrices/internal/metrics"
	"github.com/psyrax/pokePrices/internal/models"
)

const defaultRefreshDelay = 500 * time.Millisecond

// RefreshResult reports the outcome of one bulk refresh pass.
type RefreshResult struct {
	Total      int       `json:"total"`
	Updated    int       `json:"updated"`
	Errors     int       `json:"errors"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// RefreshStatus is the worker state exposed over the API.
type RefreshStatus struct {
	Running    bool           `json:"running"`
	LastRun    time.Time      `json:"last_run,omitempty"`
	LastResult *RefreshResult `json:"last_result,omitempty"`
}

// Refresher walks every persisted card and re-syncs it against JustTCG,
// one card at a time. A single item's failure never aborts the batch;
// transport errors, decode errors and "not found" all count as the same
// class of per-item failure, with the underlying kind preserved in logs.
type Refresher struct {
	client *JustTCGClient
	db     *gorm.DB
	// limiter bounds the request rate between items and doubles as the
	// cooperative cancellation point between cards.
	limiter *rate.Limiter
	log     *zap.SugaredLogger

	mu         sync.RWMutex
	running    bool
	lastRun    time.Time
	lastResult *RefreshResult
}

// NewRefresher creates a bulk refresher that waits delay between items.
func NewRefresher(client *JustTCGClient, db *gorm.DB, delay time.Duration, log *zap.SugaredLogger) *Refresher {
	if delay <= 0 {
		delay = defaultRefreshDelay
	}
	return &Refresher{
		client:  client,
		db:      db,
		limiter: rate.NewLimiter(rate.Every(delay), 1),
		log:     log,
	}
}

// RefreshAll iterates every persisted card exactly once, in store order,
// and applies fresh API data to each. All mutations run in one
// transaction committed after the last item. Only one pass may run at a
// time. Cancelling ctx between items rolls the batch back.
func (r *Refresher) RefreshAll(ctx context.Context) (*RefreshResult, error) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil, ErrRefreshRunning
	}
	r.running = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	result := &RefreshResult{StartedAt: time.Now()}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var cards []models.Card
		if err := tx.Order("created_at").Find(&cards).Error; err != nil {
			return err
		}
		result.Total = len(cards)

		for i := range cards {
			card := &cards[i]

			if err := r.refreshOne(ctx, tx, card); err != nil {
				result.Errors++
				metrics.RefreshItemsTotal.WithLabelValues("error").Inc()
				r.log.Warnw("refresh: card failed",
					"card", card.Name, "id", card.ID, "error", err)
			} else {
				result.Updated++
				metrics.RefreshItemsTotal.WithLabelValues("updated").Inc()
			}

			// Inter-item throttle; aborts the batch when ctx is cancelled.
			if err := r.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		return nil
	})

	result.FinishedAt = time.Now()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.lastRun = result.FinishedAt
	r.lastResult = result
	r.mu.Unlock()

	metrics.RefreshRunsTotal.Inc()
	metrics.RefreshBatchDuration.Observe(result.FinishedAt.Sub(result.StartedAt).Seconds())
	metrics.UpdateCatalogMetrics(r.db)

	r.log.Infow("refresh: batch complete",
		"total", result.Total, "updated", result.Updated, "errors", result.Errors)
	return result, nil
}

// refreshOne picks the lookup strategy for one card: fetch by the known
// fully-qualified id when we have one, otherwise search by name and set
// and take the first result without disambiguation.
func (r *Refresher) refreshOne(ctx context.Context, tx *gorm.DB, card *models.Card) error {
	var rec *CardRecord

	if card.APICardID != nil && *card.APICardID != "" {
		fetched, err := r.client.FetchByID(ctx, *card.APICardID)
		if err != nil {
			return err
		}
		rec = fetched
	} else {
		records, err := r.client.Search(ctx, card.Name, card.SetCode)
		if err != nil {
			return err
		}
		if len(records) > 0 {
			rec = &records[0]
		}
	}

	if rec == nil {
		return ErrNoMatch
	}
	return SyncCard(tx, card, rec)
}

// Status returns the current worker state.
func (r *Refresher) Status() RefreshStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return RefreshStatus{
		Running:    r.running,
		LastRun:    r.lastRun,
		LastResult: r.lastResult,
	}
}

// Start runs RefreshAll on a fixed interval until ctx is cancelled.
// Used when the server is configured with a refresh interval; manual
// refreshes through the API share the single-run lock.
func (r *Refresher) Start(ctx context.Context, interval time.Duration) {
	r.log.Infow("refresh worker started", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("refresh worker stopping")
			return
		case <-ticker.C:
			if _, err := r.RefreshAll(ctx); err != nil && !errors.Is(err, ErrRefreshRunning) {
				r.log.Errorw("refresh worker: batch failed", "error", err)
			}
		}
	}
}
