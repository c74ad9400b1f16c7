package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/psyrax/pokePrices/internal/database"
	"github.com/psyrax/pokePrices/internal/metrics"
	"github.com/psyrax/pokePrices/internal/models"
	"github.com/psyrax/pokePrices/internal/services"
)

type CardHandler struct {
	client *services.JustTCGClient
}

func NewCardHandler(client *services.JustTCGClient) *CardHandler {
	return &CardHandler{client: client}
}

// statusForError maps the service error taxonomy onto HTTP statuses.
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrRequestFailed),
		errors.Is(err, services.ErrInvalidResponse),
		errors.Is(err, services.ErrDecodingFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *CardHandler) ListCards(c *gin.Context) {
	db := database.GetDB()

	query := db.Preload("Variants").Order("created_at")
	if list := c.Query("list"); list != "" {
		lt := models.ListType(list)
		if !lt.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "list must be 'for-sale' or 'want-to-buy'"})
			return
		}
		query = query.Where("list_type = ?", lt)
	}

	var cards []models.Card
	if err := query.Find(&cards).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"cards": cards, "total_count": len(cards)})
}

type cardRequest struct {
	Name       string  `json:"name" binding:"required"`
	SetCode    string  `json:"set_code" binding:"required"`
	CardNumber string  `json:"card_number"`
	ListType   string  `json:"list_type"`
	Game       *string `json:"game"`
	Details    *string `json:"details"`
	ImageURL   *string `json:"image_url"`
	TagID      *string `json:"tag_id"`
	Price      *string `json:"price"` // decimal string, e.g. "12.50"
	Currency   string  `json:"currency"`
}

func (h *CardHandler) CreateCard(c *gin.Context) {
	var req cardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	card := models.Card{
		ID:         uuid.New().String(),
		ListType:   models.ListForSale,
		Name:       req.Name,
		SetCode:    req.SetCode,
		CardNumber: req.CardNumber,
		Game:       req.Game,
		Details:    req.Details,
		ImageURL:   req.ImageURL,
		TagID:      req.TagID,
		Currency:   "USD",
	}
	if req.ListType != "" {
		lt := models.ListType(req.ListType)
		if !lt.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "list_type must be 'for-sale' or 'want-to-buy'"})
			return
		}
		card.ListType = lt
	}
	if req.Currency != "" {
		card.Currency = req.Currency
	}
	if req.Price != nil {
		price, err := decimal.NewFromString(*req.Price)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "price must be a decimal string"})
			return
		}
		card.Price = &price
	}

	if err := database.GetDB().Create(&card).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	metrics.UpdateCatalogMetrics(database.GetDB())
	c.JSON(http.StatusCreated, card)
}

func (h *CardHandler) GetCard(c *gin.Context) {
	var card models.Card
	err := database.GetDB().Preload("Variants").First(&card, "id = ?", c.Param("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, card)
}

func (h *CardHandler) UpdateCard(c *gin.Context) {
	db := database.GetDB()

	var card models.Card
	if err := db.First(&card, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var req cardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	card.Name = req.Name
	card.SetCode = req.SetCode
	card.CardNumber = req.CardNumber
	card.Game = req.Game
	card.Details = req.Details
	card.ImageURL = req.ImageURL
	card.TagID = req.TagID
	if req.ListType != "" {
		lt := models.ListType(req.ListType)
		if !lt.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "list_type must be 'for-sale' or 'want-to-buy'"})
			return
		}
		card.ListType = lt
	}
	if req.Currency != "" {
		card.Currency = req.Currency
	}
	if req.Price != nil {
		price, err := decimal.NewFromString(*req.Price)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "price must be a decimal string"})
			return
		}
		card.Price = &price
	}

	if err := db.Omit("Variants").Save(&card).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, card)
}

// DeleteCard removes a card and cascade-deletes its variants.
func (h *CardHandler) DeleteCard(c *gin.Context) {
	db := database.GetDB()
	id := c.Param("id")

	var card models.Card
	if err := db.First(&card, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("card_id = ?", id).Delete(&models.Variant{}).Error; err != nil {
			return err
		}
		return tx.Delete(&card).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	metrics.UpdateCatalogMetrics(db)
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// SearchCards proxies a JustTCG search and applies the disambiguation
// rule: one candidate auto-resolves, several are handed back for the
// caller to choose from, zero is a legitimate empty result.
func (h *CardHandler) SearchCards(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' is required"})
		return
	}

	records, err := h.client.Search(c.Request.Context(), query, c.Query("set"))
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	result := services.MatchCards(records)
	c.JSON(http.StatusOK, gin.H{
		"match":      result.Match,
		"candidates": result.Candidates,
		"no_match":   result.NoMatch(),
	})
}

type syncRequest struct {
	// APICardID applies a previously presented candidate by its id.
	APICardID string `json:"api_card_id"`
}

// SyncCard re-syncs one card against JustTCG. Without a body choice it
// fetches by the known api_card_id, or searches by name and set; a
// search with several candidates defers the choice to the caller, who
// repeats the call with the chosen api_card_id. Applying a choice
// persists fields and variants immediately, in one transaction.
func (h *CardHandler) SyncCard(c *gin.Context) {
	db := database.GetDB()

	var card models.Card
	if err := db.First(&card, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var req syncRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	ctx := c.Request.Context()
	var rec *services.CardRecord

	switch {
	case req.APICardID != "":
		fetched, err := h.client.FetchByID(ctx, req.APICardID)
		if err != nil {
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
			return
		}
		rec = fetched
	case card.APICardID != nil && *card.APICardID != "":
		fetched, err := h.client.FetchByID(ctx, *card.APICardID)
		if err != nil {
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
			return
		}
		rec = fetched
	default:
		records, err := h.client.Search(ctx, card.Name, card.SetCode)
		if err != nil {
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
			return
		}
		result := services.MatchCards(records)
		if len(result.Candidates) > 0 {
			// Deferred disambiguation: no write happens until a choice
			// comes back via api_card_id.
			c.JSON(http.StatusOK, gin.H{"candidates": result.Candidates})
			return
		}
		rec = result.Match
	}

	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no match"})
		return
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		return services.SyncCard(tx, &card, rec)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	metrics.UpdateCatalogMetrics(db)
	c.JSON(http.StatusOK, card)
}

// GetCardByTag resolves a card from its NFC tag id (ogl://card?id=X).
func (h *CardHandler) GetCardByTag(c *gin.Context) {
	var card models.Card
	err := database.GetDB().Preload("Variants").First(&card, "tag_id = ?", c.Param("tagId")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no card with that tag"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, card)
}
