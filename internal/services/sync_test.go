package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/psyrax/pokePrices/internal/models"
)

// newTestDB opens an isolated in-memory database per test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.Card{}, &models.Variant{}, &models.GameSet{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func newTestCard(t *testing.T, db *gorm.DB, name, setCode string) *models.Card {
	t.Helper()

	card := &models.Card{
		ID:       uuid.New().String(),
		ListType: models.ListForSale,
		Name:     name,
		SetCode:  setCode,
		Currency: "USD",
	}
	if err := db.Create(card).Error; err != nil {
		t.Fatalf("failed to create test card: %v", err)
	}
	return card
}

func freshRecord() *CardRecord {
	return &CardRecord{
		ID:      "pokemon-base1-charizard",
		Name:    strPtr("Charizard"),
		Game:    strPtr("Pokemon"),
		Number:  strPtr("4"),
		Rarity:  strPtr("Holo Rare"),
		Set:     strPtr("base1"),
		SetName: strPtr("Base Set"),
		Images:  &ImageRecord{Small: strPtr("https://img.example/charizard.png")},
		Variants: []VariantRecord{
			{Condition: strPtr("Near Mint"), Printing: strPtr("Holofoil"), Price: floatPtr(312.50), LastUpdated: int64Ptr(1700000001)},
			{Condition: strPtr("Lightly Played"), Printing: strPtr("Holofoil"), Price: floatPtr(250.00), LastUpdated: int64Ptr(1700000002)},
		},
	}
}

func TestSyncVariantsFullReplace(t *testing.T) {
	db := newTestDB(t)
	card := newTestCard(t, db, "Charizard", "base1")

	stale := models.Variant{
		CardID:      card.ID,
		Condition:   "Damaged",
		Printing:    "Normal",
		Price:       decimal.RequireFromString("1.00"),
		LastUpdated: 1600000000,
	}
	if err := db.Create(&stale).Error; err != nil {
		t.Fatal(err)
	}

	if err := SyncVariants(db, card, freshRecord()); err != nil {
		t.Fatalf("SyncVariants() error: %v", err)
	}

	var stored []models.Variant
	if err := db.Where("card_id = ?", card.ID).Order("id").Find(&stored).Error; err != nil {
		t.Fatal(err)
	}
	if len(stored) != 2 {
		t.Fatalf("expected 2 variants after replace, got %d", len(stored))
	}
	for _, v := range stored {
		if v.CardID != card.ID {
			t.Errorf("variant %d missing back-reference: card_id = %q", v.ID, v.CardID)
		}
		if v.Condition == "Damaged" {
			t.Error("stale variant survived the replace")
		}
	}
	if stored[0].Condition != "Near Mint" || stored[1].Condition != "Lightly Played" {
		t.Errorf("source ordering not preserved: %s, %s", stored[0].Condition, stored[1].Condition)
	}
}

func TestSyncVariantsIdempotentByValue(t *testing.T) {
	db := newTestDB(t)
	card := newTestCard(t, db, "Charizard", "base1")
	rec := freshRecord()

	if err := SyncVariants(db, card, rec); err != nil {
		t.Fatal(err)
	}
	var first []models.Variant
	db.Where("card_id = ?", card.ID).Order("id").Find(&first)

	if err := SyncVariants(db, card, rec); err != nil {
		t.Fatal(err)
	}
	var second []models.Variant
	db.Where("card_id = ?", card.ID).Order("id").Find(&second)

	if len(first) != len(second) {
		t.Fatalf("variant counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		a, b := first[i], second[i]
		if a.Condition != b.Condition || a.Printing != b.Printing ||
			!a.Price.Equal(b.Price) || a.LastUpdated != b.LastUpdated {
			t.Errorf("variant %d differs by value: %+v vs %+v", i, a, b)
		}
		// Full replace recreates identity every time
		if a.ID == b.ID {
			t.Errorf("variant %d kept its identity across syncs", i)
		}
	}
}

func TestApplyRecordPreservesIdentity(t *testing.T) {
	tag := "nfc-42"
	card := &models.Card{
		ID:       "local-id",
		ListType: models.ListWantToBuy,
		Name:     "charizard misspelt",
		SetCode:  "base1",
		TagID:    &tag,
		Currency: "USD",
	}

	ApplyRecord(card, freshRecord())

	if card.ID != "local-id" {
		t.Errorf("ID overwritten: %s", card.ID)
	}
	if card.TagID == nil || *card.TagID != "nfc-42" {
		t.Errorf("TagID overwritten: %v", card.TagID)
	}
	if card.ListType != models.ListWantToBuy {
		t.Errorf("ListType overwritten: %s", card.ListType)
	}
	if card.APICardID == nil || *card.APICardID != "pokemon-base1-charizard" {
		t.Errorf("APICardID not set: %v", card.APICardID)
	}
	if card.Name != "Charizard" {
		t.Errorf("Name not overwritten: %s", card.Name)
	}
	if card.Price == nil || !card.Price.Equal(decimal.RequireFromString("312.5")) {
		t.Errorf("Price = %v, want 312.5", card.Price)
	}
	if card.Currency != "USD" {
		t.Errorf("Currency = %s, want USD", card.Currency)
	}
}

func TestApplyRecordKeepsSetCodeWhenRecordLacksIt(t *testing.T) {
	card := &models.Card{ID: "x", Name: "Mew", SetCode: "promo"}
	rec := &CardRecord{ID: "pokemon-promo-mew"}

	ApplyRecord(card, rec)

	if card.SetCode != "promo" {
		t.Errorf("SetCode = %q, want promo", card.SetCode)
	}
}

func TestSyncCardPersists(t *testing.T) {
	db := newTestDB(t)
	card := newTestCard(t, db, "Charizard", "base1")

	if err := SyncCard(db, card, freshRecord()); err != nil {
		t.Fatalf("SyncCard() error: %v", err)
	}

	var stored models.Card
	if err := db.Preload("Variants").First(&stored, "id = ?", card.ID).Error; err != nil {
		t.Fatal(err)
	}
	if stored.Price == nil || !stored.Price.Equal(decimal.RequireFromString("312.5")) {
		t.Errorf("persisted price = %v, want 312.5", stored.Price)
	}
	if stored.APICardID == nil || *stored.APICardID != "pokemon-base1-charizard" {
		t.Errorf("persisted api_card_id = %v", stored.APICardID)
	}
	if len(stored.Variants) != 2 {
		t.Errorf("persisted %d variants, want 2", len(stored.Variants))
	}
}
