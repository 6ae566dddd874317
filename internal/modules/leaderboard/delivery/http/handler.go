package http

import (
	"net/http"
	"strconv"

	leaderboardService "anoa.com/storybloom/internal/modules/leaderboard/service"
	"anoa.com/storybloom/pkg/response"
	"github.com/gin-gonic/gin"
)

type LeaderboardHandler struct {
	service leaderboardService.LeaderboardService
}

func NewLeaderboardHandler(service leaderboardService.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{service: service}
}

func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	timeframe := c.DefaultQuery("timeframe", leaderboardService.TimeframeAllTime) // "all_time", "monthly", "weekly"
	switch timeframe {
	case leaderboardService.TimeframeAllTime, leaderboardService.TimeframeWeekly, leaderboardService.TimeframeMonthly:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "timeframe must be one of all_time, weekly, monthly"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit < 1 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	leaderboard, err := h.service.GetLeaderboard(c.Request.Context(), limit, timeframe)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": leaderboard})
}
