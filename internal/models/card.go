package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ListType classifies which list a card belongs to. A card is on exactly
// one list at a time.
type ListType string

const (
	ListForSale   ListType = "for-sale"
	ListWantToBuy ListType = "want-to-buy"
)

// AllListTypes returns all valid list classifications
func AllListTypes() []ListType {
	return []ListType{ListForSale, ListWantToBuy}
}

// IsValid reports whether t is a known list classification
func (t ListType) IsValid() bool {
	return t == ListForSale || t == ListWantToBuy
}

// Card is a catalog entry. APIID and APICardID are only populated after a
// successful sync against JustTCG; Price, when present, is always the
// output of services.ResolvePrice over the last-synced record, never
// hand-computed from variants.
type Card struct {
	ID          string           `json:"id" gorm:"primaryKey"`
	ListType    ListType         `json:"list_type" gorm:"not null;default:'for-sale';index"`
	APIID       *string          `json:"api_id"`
	APICardID   *string          `json:"api_card_id"`
	Name        string           `json:"name" gorm:"not null;index"`
	Game        *string          `json:"game"`
	SetCode     string           `json:"set_code" gorm:"not null;index"`
	SetName     *string          `json:"set_name"`
	CardNumber  string           `json:"card_number"`
	Rarity      *string          `json:"rarity"`
	TCGPlayerID *string          `json:"tcgplayer_id"`
	Details     *string          `json:"details"`
	ImageURL    *string          `json:"image_url"`
	Price       *decimal.Decimal `json:"price" gorm:"type:decimal(10,2)"`
	Currency    string           `json:"currency" gorm:"not null;default:'USD'"`
	TagID       *string          `json:"tag_id" gorm:"index"` // NFC tag for ogl://card?id=X deep links
	Variants    []Variant        `json:"variants" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// Variant is one condition+printing price entry owned by exactly one Card.
// Variants are created and destroyed only by the variant synchronizer
// (or by cascade when their card is deleted) and are never edited in place.
type Variant struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	CardID      string          `json:"card_id" gorm:"not null;index"`
	Condition   string          `json:"condition" gorm:"not null"` // e.g. "Near Mint"
	Printing    string          `json:"printing" gorm:"not null"`  // e.g. "Holofoil"
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	LastUpdated int64           `json:"last_updated" gorm:"not null"` // epoch seconds
	CreatedAt   time.Time       `json:"created_at"`
}
