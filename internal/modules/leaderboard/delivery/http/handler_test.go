package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	leaderboardDto "anoa.com/storybloom/internal/modules/leaderboard/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLeaderboard struct {
	limit     int
	timeframe string
	err       error
}

func (s *stubLeaderboard) GetLeaderboard(ctx context.Context, limit int, timeframe string) ([]leaderboardDto.LeaderboardEntry, error) {
	s.limit, s.timeframe = limit, timeframe
	if s.err != nil {
		return nil, s.err
	}
	return []leaderboardDto.LeaderboardEntry{{ProfileID: "p-1", DisplayName: "Mia", Position: 1, Points: 120}}, nil
}

func (s *stubLeaderboard) Status(ctx context.Context, profileID uuid.UUID, totalPoints int) leaderboardDto.GamificationStatus {
	return leaderboardDto.GamificationStatus{}
}

func serve(h *LeaderboardHandler, target string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/leaderboard", h.GetLeaderboard)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestGetLeaderboard_Defaults(t *testing.T) {
	svc := &stubLeaderboard{}
	w := serve(NewLeaderboardHandler(svc), "/leaderboard")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 10, svc.limit)
	assert.Equal(t, "all_time", svc.timeframe)

	var body struct {
		Data []leaderboardDto.LeaderboardEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "Mia", body.Data[0].DisplayName)
}

func TestGetLeaderboard_ClampsLimit(t *testing.T) {
	svc := &stubLeaderboard{}
	w := serve(NewLeaderboardHandler(svc), "/leaderboard?timeframe=weekly&limit=500")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 50, svc.limit)
	assert.Equal(t, "weekly", svc.timeframe)
}

func TestGetLeaderboard_RejectsUnknownTimeframe(t *testing.T) {
	svc := &stubLeaderboard{}
	w := serve(NewLeaderboardHandler(svc), "/leaderboard?timeframe=yearly")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, svc.timeframe)
}

func TestGetLeaderboard_ServiceError(t *testing.T) {
	w := serve(NewLeaderboardHandler(&stubLeaderboard{err: errors.New("db down")}), "/leaderboard")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
