package models

import "time"

// GameSet is reference data describing one expansion of a card game.
// Sets are populated by the set refresh operation and treated as
// read-only lookup data by the sync engine; cards reference them by code.
type GameSet struct {
	Code        string    `json:"code" gorm:"primaryKey"` // JustTCG set id
	Name        string    `json:"name" gorm:"not null"`
	GameID      string    `json:"game_id"`
	Game        string    `json:"game" gorm:"index"`
	ReleaseDate *string   `json:"release_date"` // ISO date, when the provider knows it
	CardsCount  int       `json:"cards_count"`
	UpdatedAt   time.Time `json:"updated_at"`
}
