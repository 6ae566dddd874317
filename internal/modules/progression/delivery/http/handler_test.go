package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"anoa.com/storybloom/internal/entity"
	achievement "anoa.com/storybloom/internal/modules/achievement/service"
	progression "anoa.com/storybloom/internal/modules/progression/service"
	"anoa.com/storybloom/pkg/apperror"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	award   *progression.AwardResult
	err     error
	lastReq progression.AwardRequest
}

func (s *stubService) AwardPoints(ctx context.Context, req progression.AwardRequest) (*progression.AwardResult, error) {
	s.lastReq = req
	return s.award, s.err
}

func (s *stubService) CheckAchievements(ctx context.Context, profileID uuid.UUID) (*progression.AchievementCheckResult, error) {
	return nil, nil
}

func (s *stubService) QuizStats(ctx context.Context, profileID uuid.UUID) (achievement.QuizStats, error) {
	return achievement.QuizStats{}, nil
}

func (s *stubService) History(ctx context.Context, profileID uuid.UUID, page, limit int) ([]entity.ActivityLog, int64, error) {
	return []entity.ActivityLog{{ActivityType: progression.ActivityPageRead, PointsAwarded: 5}}, 1, nil
}

func (s *stubService) Thresholds() []int {
	return []int{0, 100}
}

type stubAccess struct{ err error }

func (a stubAccess) Authorize(ctx context.Context, userID, profileID uuid.UUID) error {
	return a.err
}

func newRouter(h *ProgressionHandler, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != "" {
			c.Set("user_id", userID)
		}
		c.Next()
	})
	r.POST("/api/gamification/award", h.AwardPoints)
	r.GET("/api/gamification/history/:profile_id", h.GetHistory)
	r.GET("/api/gamification/points-table", h.GetPointsTable)
	return r
}

func postAward(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/gamification/award", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAwardPoints_Success(t *testing.T) {
	svc := &stubService{award: &progression.AwardResult{
		PointsAwarded:   100,
		BonusMultiplier: 1,
		NewTotal:        100,
		PreviousLevel:   1,
		NewLevel:        2,
		LeveledUp:       true,
	}}
	r := newRouter(NewProgressionHandler(svc, stubAccess{}), uuid.NewString())
	profileID := uuid.New()

	w := postAward(r, fmt.Sprintf(`{"profile_id":%q,"activity_type":"book_completed","metadata":{"book_id":"b-1"}}`, profileID))
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(100), body["points_awarded"])
	assert.Equal(t, true, body["leveled_up"])
	assert.Equal(t, []interface{}{}, body["bonus_reasons"])
	assert.Equal(t, []interface{}{}, body["new_achievements"])
	assert.NotContains(t, body, "side_effect_errors")

	assert.Equal(t, profileID, svc.lastReq.ProfileID)
	assert.Equal(t, "b-1", svc.lastReq.Metadata["book_id"])
}

func TestAwardPoints_Unauthenticated(t *testing.T) {
	r := newRouter(NewProgressionHandler(&stubService{}, stubAccess{}), "")

	w := postAward(r, `{}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAwardPoints_MissingFields(t *testing.T) {
	r := newRouter(NewProgressionHandler(&stubService{}, stubAccess{}), uuid.NewString())

	w := postAward(r, `{"activity_type":"book_completed"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "profile_id is required")
}

func TestAwardPoints_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		access error
		svc    error
		code   int
	}{
		{"profile missing", apperror.ErrNotFound, nil, http.StatusNotFound},
		{"not the parent", apperror.ErrForbidden, nil, http.StatusForbidden},
		{"concurrent update", nil, apperror.ErrConflict, http.StatusConflict},
		{"store failure", nil, fmt.Errorf("db exploded"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(NewProgressionHandler(&stubService{err: tt.svc}, stubAccess{err: tt.access}), uuid.NewString())

			w := postAward(r, fmt.Sprintf(`{"profile_id":%q,"activity_type":"page_read"}`, uuid.New()))
			assert.Equal(t, tt.code, w.Code)
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestGetHistory(t *testing.T) {
	r := newRouter(NewProgressionHandler(&stubService{}, stubAccess{}), uuid.NewString())

	req := httptest.NewRequest(http.MethodGet, "/api/gamification/history/"+uuid.NewString()+"?limit=500", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"limit":20`)
	assert.Contains(t, w.Body.String(), `"page_read"`)
}

func TestGetHistory_BadID(t *testing.T) {
	r := newRouter(NewProgressionHandler(&stubService{}, stubAccess{}), uuid.NewString())

	req := httptest.NewRequest(http.MethodGet, "/api/gamification/history/nope", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetPointsTable(t *testing.T) {
	r := newRouter(NewProgressionHandler(&stubService{}, stubAccess{}), uuid.NewString())

	req := httptest.NewRequest(http.MethodGet, "/api/gamification/points-table", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"book_completed":100`)
}
