package handlers

import (
	"net/http"

	"github.com/babaearn/Pnl-sharing-card-bot/internal/services"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	stats *services.StatsService
}

func NewStatsHandler(stats *services.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// GetStats serves GET /api/v1/stats with the since-reset engagement counters.
func (h *StatsHandler) GetStats(c *gin.Context) {
	stats, err := h.stats.Engagement()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
