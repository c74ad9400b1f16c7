package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/psyrax/pokePrices/internal/services"
)

type SetHandler struct {
	sets *services.SetService
}

func NewSetHandler(sets *services.SetService) *SetHandler {
	return &SetHandler{sets: sets}
}

func (h *SetHandler) ListSets(c *gin.Context) {
	sets, err := h.sets.ListStored(c.Query("game"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sets": sets, "total_count": len(sets)})
}

func (h *SetHandler) GetSet(c *gin.Context) {
	set, err := h.sets.LookupSet(c.Param("code"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if set == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "set not found"})
		return
	}
	c.JSON(http.StatusOK, set)
}

func (h *SetHandler) RefreshSets(c *gin.Context) {
	game := c.Query("game")
	if game == "" {
		game = "pokemon"
	}

	count, err := h.sets.RefreshSets(c.Request.Context(), game)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"game": game, "refreshed": count})
}
