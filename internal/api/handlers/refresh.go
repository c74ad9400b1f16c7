package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/psyrax/pokePrices/internal/services"
)

type RefreshHandler struct {
	refresher *services.Refresher
}

func NewRefreshHandler(refresher *services.Refresher) *RefreshHandler {
	return &RefreshHandler{refresher: refresher}
}

// TriggerRefresh runs a bulk refresh over the whole catalog and reports
// final counts. Per-item failures are non-fatal and show up in the error
// count; only a second concurrent run or a store failure errors out.
func (h *RefreshHandler) TriggerRefresh(c *gin.Context) {
	result, err := h.refresher.RefreshAll(c.Request.Context())
	if err != nil {
		if errors.Is(err, services.ErrRefreshRunning) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *RefreshHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.refresher.Status())
}
