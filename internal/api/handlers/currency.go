package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/psyrax/pokePrices/internal/services"
)

type CurrencyHandler struct {
	currency *services.CurrencyService
}

func NewCurrencyHandler(currency *services.CurrencyService) *CurrencyHandler {
	return &CurrencyHandler{currency: currency}
}

// GetRate returns the live USD conversion rate for display purposes.
func (h *CurrencyHandler) GetRate(c *gin.Context) {
	target := c.Query("target")
	if target == "" {
		target = "MXN"
	}

	rate, err := h.currency.FetchUSDRate(c.Request.Context(), target)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"base": "USD", "target": target, "rate": rate})
}
