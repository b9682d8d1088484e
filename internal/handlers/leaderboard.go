package handlers

import (
	"net/http"
	"strconv"

	"github.com/babaearn/Pnl-sharing-card-bot/internal/services"

	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// LeaderboardHandler exposes read-only JSON views of the campaign standings
// for dashboards and external tooling.
type LeaderboardHandler struct {
	leaderboard *services.LeaderboardService
	winners     *services.WinnerService
	weeks       *services.WeekService
}

func NewLeaderboardHandler(
	leaderboard *services.LeaderboardService,
	winners *services.WinnerService,
	weeks *services.WeekService,
) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboard: leaderboard, winners: winners, weeks: weeks}
}

type LeaderboardResponse struct {
	Week      *int                        `json:"week,omitempty"`
	WeekLabel string                      `json:"week_label,omitempty"`
	Entries   []services.LeaderboardEntry `json:"entries"`
}

// GetLeaderboard serves GET /api/v1/leaderboard?limit=N&week=W. Without a
// week it returns the cumulative board; limit 0 means all participants.
func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a non-negative number"})
			return
		}
		limit = n
	}

	resp := LeaderboardResponse{}
	if raw := c.Query("week"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "week must be a positive number"})
			return
		}
		resp.Week = &n
	}

	entries, err := h.leaderboard.Top(limit, resp.Week)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load leaderboard"})
		return
	}
	if entries == nil {
		entries = []services.LeaderboardEntry{}
	}
	resp.Entries = entries

	if resp.Week == nil {
		_, label := h.weeks.Current()
		resp.WeekLabel = label
	}
	c.JSON(http.StatusOK, resp)
}

type WinnersResponse struct {
	Week    int                    `json:"week"`
	Winners []services.WinnerEntry `json:"winners"`
}

// GetWinners serves GET /api/v1/winners/:week.
func (h *LeaderboardHandler) GetWinners(c *gin.Context) {
	week, err := strconv.Atoi(c.Param("week"))
	if err != nil || week < 1 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "week must be a positive number"})
		return
	}

	winners, err := h.winners.Winners(week)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load winners"})
		return
	}
	if winners == nil {
		winners = []services.WinnerEntry{}
	}
	c.JSON(http.StatusOK, WinnersResponse{Week: week, Winners: winners})
}
