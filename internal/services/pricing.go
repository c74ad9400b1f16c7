package services

import (
	"github.com/shopspring/decimal"

	"github.com/psyrax/pokePrices/internal/models"
)

// ResolvePrice produces a single best-effort USD price for a card record.
// Fallback order, first hit wins:
//  1. price of the first entry of the variant list
//  2. cardmarket average sell price
//  3. cardmarket trend price
//  4. cardmarket low price
//  5. tcgplayer nested market price
//  6. tcgplayer average market price
//
// Returns nil when no provider field is usable; never an error.
func ResolvePrice(rec *CardRecord) *decimal.Decimal {
	if len(rec.Variants) > 0 {
		if p := rec.Variants[0].Price; p != nil {
			return fromFloat(*p)
		}
	}

	if cm := rec.Cardmarket; cm != nil && cm.Prices != nil {
		if cm.Prices.AverageSellPrice != nil {
			return fromFloat(*cm.Prices.AverageSellPrice)
		}
		if cm.Prices.TrendPrice != nil {
			return fromFloat(*cm.Prices.TrendPrice)
		}
		if cm.Prices.LowPrice != nil {
			return fromFloat(*cm.Prices.LowPrice)
		}
	}

	if tp := rec.TCGPlayer; tp != nil && tp.Prices != nil {
		if tp.Prices.Market != nil && tp.Prices.Market.MarketPrice != nil {
			return fromFloat(*tp.Prices.Market.MarketPrice)
		}
		if tp.Prices.AverageMarketPrice != nil {
			return fromFloat(*tp.Prices.AverageMarketPrice)
		}
	}

	return nil
}

// MapVariants converts raw variant entries into Variant entities. An entry
// is kept only when condition, printing, price and lastUpdated are all
// present; partial entries are dropped silently. Source ordering is
// preserved and duplicates are kept verbatim.
func MapVariants(recs []VariantRecord) []models.Variant {
	variants := make([]models.Variant, 0, len(recs))
	for _, r := range recs {
		if r.Condition == nil || r.Printing == nil || r.Price == nil || r.LastUpdated == nil {
			continue
		}
		variants = append(variants, models.Variant{
			Condition:   *r.Condition,
			Printing:    *r.Printing,
			Price:       decimal.NewFromFloat(*r.Price),
			LastUpdated: *r.LastUpdated,
		})
	}
	return variants
}

func fromFloat(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}
