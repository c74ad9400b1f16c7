package services

import (
	"gorm.io/gorm"

	"github.com/psyrax/pokePrices/internal/models"
)

// ApplyRecord overwrites card's mutable fields from a fresh API record.
// Identity is preserved: ID, TagID and ListType are never touched, and
// SetCode is kept when the record carries none (it is required locally).
func ApplyRecord(card *models.Card, rec *CardRecord) {
	apiID := rec.ID
	card.APIID = &apiID
	card.APICardID = &apiID

	if rec.Name != nil {
		card.Name = *rec.Name
	}
	card.Game = rec.Game
	if rec.Set != nil && *rec.Set != "" {
		card.SetCode = *rec.Set
	}
	card.SetName = rec.SetName
	if rec.Number != nil {
		card.CardNumber = *rec.Number
	}
	card.Rarity = rec.Rarity
	card.TCGPlayerID = rec.TCGPlayerID
	card.Details = rec.Details
	if rec.Images != nil {
		card.ImageURL = rec.Images.Small
	} else {
		card.ImageURL = nil
	}

	card.Price = ResolvePrice(rec)
	card.Currency = "USD"
}

// SyncVariants replaces the card's entire variant set with the set mapped
// from rec. Full replace, never a merge: every previously owned variant is
// deleted and the fresh ones are inserted with their back-reference set.
// Two syncs against identical upstream data produce variant sets equal in
// value though not in identity.
func SyncVariants(db *gorm.DB, card *models.Card, rec *CardRecord) error {
	if err := db.Where("card_id = ?", card.ID).Delete(&models.Variant{}).Error; err != nil {
		return err
	}

	fresh := MapVariants(rec.Variants)
	for i := range fresh {
		fresh[i].CardID = card.ID
	}
	if len(fresh) > 0 {
		if err := db.Create(&fresh).Error; err != nil {
			return err
		}
	}

	card.Variants = fresh
	return nil
}

// SyncCard applies a fresh record to a persisted card: field overwrite,
// price resolution and the full variant replace, saved through db.
// Run it inside a transaction when batching.
func SyncCard(db *gorm.DB, card *models.Card, rec *CardRecord) error {
	ApplyRecord(card, rec)
	if err := SyncVariants(db, card, rec); err != nil {
		return err
	}
	return db.Omit("Variants").Save(card).Error
}
