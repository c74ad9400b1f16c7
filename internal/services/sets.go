package services

import (
	"context"
	"errors"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/psyrax/pokePrices/internal/models"
)

const setCacheSize = 256

// SetService maintains the locally stored game sets. Sets are reference
// data: the sync engine only reads them, so lookups go through a small
// LRU in front of the store.
type SetService struct {
	client *JustTCGClient
	db     *gorm.DB
	cache  *lru.Cache[string, models.GameSet]
	log    *zap.SugaredLogger
}

func NewSetService(client *JustTCGClient, db *gorm.DB, log *zap.SugaredLogger) (*SetService, error) {
	cache, err := lru.New[string, models.GameSet](setCacheSize)
	if err != nil {
		return nil, err
	}
	return &SetService{
		client: client,
		db:     db,
		cache:  cache,
		log:    log,
	}, nil
}

// RefreshSets pulls the full set list for a game from JustTCG and upserts
// it into the store. Returns the number of sets received.
func (s *SetService) RefreshSets(ctx context.Context, game string) (int, error) {
	records, err := s.client.ListSets(ctx, game)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}

	sets := make([]models.GameSet, 0, len(records))
	for _, r := range records {
		sets = append(sets, models.GameSet{
			Code:        r.ID,
			Name:        r.Name,
			GameID:      r.GameID,
			Game:        r.Game,
			ReleaseDate: r.ReleaseDate,
			CardsCount:  r.CardsCount,
		})
	}

	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "game_id", "game", "release_date", "cards_count", "updated_at"}),
	}).Create(&sets).Error
	if err != nil {
		return 0, err
	}

	s.cache.Purge()
	s.log.Infow("sets refreshed", "game", game, "count", len(sets))
	return len(sets), nil
}

// LookupSet resolves a set by code, serving repeat lookups from the cache.
// Returns (nil, nil) when the code is unknown.
func (s *SetService) LookupSet(code string) (*models.GameSet, error) {
	if cached, ok := s.cache.Get(code); ok {
		return &cached, nil
	}

	var set models.GameSet
	if err := s.db.First(&set, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	s.cache.Add(code, set)
	return &set, nil
}

// ListStored returns the locally stored sets for a game, newest release
// first, matching the ordering the API refresh was requested with.
func (s *SetService) ListStored(game string) ([]models.GameSet, error) {
	var sets []models.GameSet
	query := s.db.Order("release_date DESC")
	if game != "" {
		query = query.Where("game = ?", game)
	}
	if err := query.Find(&sets).Error; err != nil {
		return nil, err
	}
	return sets, nil
}
