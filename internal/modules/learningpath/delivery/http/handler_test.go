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
	learningpath "anoa.com/storybloom/internal/modules/learningpath/service"
	"anoa.com/storybloom/pkg/apperror"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	advance   *learningpath.AdvanceResult
	err       error
	lastInput learningpath.AdvanceInput
	path      *learningpath.PathWithProgress
}

func (s *stubService) CreatePath(ctx context.Context, input learningpath.CreatePathInput) (*learningpath.PathWithProgress, error) {
	if s.err != nil {
		return nil, s.err
	}
	path := &entity.LearningPath{ID: uuid.New(), ProfileID: input.ProfileID, Topic: input.Topic, Difficulty: input.Difficulty}
	return &learningpath.PathWithProgress{Path: path, Progress: entity.NewPathProgress(path)}, nil
}

func (s *stubService) GetPath(ctx context.Context, pathID uuid.UUID) (*learningpath.PathWithProgress, error) {
	if s.path == nil {
		return nil, apperror.ErrNotFound
	}
	return s.path, nil
}

func (s *stubService) ListPaths(ctx context.Context, profileID uuid.UUID) ([]entity.LearningPath, error) {
	return []entity.LearningPath{{ID: uuid.New(), ProfileID: profileID, Title: "Space"}}, nil
}

func (s *stubService) Advance(ctx context.Context, input learningpath.AdvanceInput) (*learningpath.AdvanceResult, error) {
	s.lastInput = input
	return s.advance, s.err
}

type stubAccess struct{ err error }

func (a stubAccess) Authorize(ctx context.Context, userID, profileID uuid.UUID) error {
	return a.err
}

func newRouter(h *LearningPathHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", uuid.NewString())
		c.Next()
	})
	r.POST("/api/learning-paths", h.CreatePath)
	r.GET("/api/learning-paths", h.ListPaths)
	r.GET("/api/learning-paths/:path_id", h.GetPath)
	r.POST("/api/learning-paths/advance", h.Advance)
	return r
}

func do(r *gin.Engine, method, url, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAdvance_Success(t *testing.T) {
	svc := &stubService{advance: &learningpath.AdvanceResult{
		NextActivity:       &entity.PathActivity{ID: "color-create"},
		ProgressPercentage: 40,
		PerformanceTrend:   entity.TrendStable,
		AdaptiveMessage:    learningpath.MessageCelebrate,
		SideEffectErrors:   []string{},
	}}
	r := newRouter(NewLearningPathHandler(svc, stubAccess{}))

	body := fmt.Sprintf(`{"profile_id":%q,"path_id":%q,"completed_activity_id":"quiz-check","score":92,"time_spent_seconds":60}`,
		uuid.NewString(), uuid.NewString())
	w := do(r, http.MethodPost, "/api/learning-paths/advance", body)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, 40.0, resp["progress_percentage"])
	assert.Equal(t, "color-create", resp["next_activity"].(map[string]interface{})["id"])
	assert.NotContains(t, resp, "side_effect_errors")

	assert.Equal(t, "quiz-check", svc.lastInput.CompletedActivityID)
	require.NotNil(t, svc.lastInput.Score)
	assert.Equal(t, 92.0, *svc.lastInput.Score)
	assert.Equal(t, 60, *svc.lastInput.TimeSpentSeconds)
}

func TestAdvance_ScoreOutOfRange(t *testing.T) {
	r := newRouter(NewLearningPathHandler(&stubService{}, stubAccess{}))

	body := fmt.Sprintf(`{"profile_id":%q,"path_id":%q,"score":150}`, uuid.NewString(), uuid.NewString())
	w := do(r, http.MethodPost, "/api/learning-paths/advance", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdvance_ErrorMapping(t *testing.T) {
	body := fmt.Sprintf(`{"profile_id":%q,"path_id":%q}`, uuid.NewString(), uuid.NewString())

	w := do(newRouter(NewLearningPathHandler(&stubService{}, stubAccess{err: apperror.ErrForbidden})),
		http.MethodPost, "/api/learning-paths/advance", body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(newRouter(NewLearningPathHandler(&stubService{err: apperror.ErrNotFound}, stubAccess{})),
		http.MethodPost, "/api/learning-paths/advance", body)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(newRouter(NewLearningPathHandler(&stubService{err: apperror.ErrConflict}, stubAccess{})),
		http.MethodPost, "/api/learning-paths/advance", body)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreatePath(t *testing.T) {
	r := newRouter(NewLearningPathHandler(&stubService{}, stubAccess{}))
	profileID := uuid.NewString()

	w := do(r, http.MethodPost, "/api/learning-paths", fmt.Sprintf(`{"profile_id":%q,"topic":"Space","difficulty":"medium"}`, profileID))
	require.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, profileID, resp["profile_id"])
	assert.Equal(t, "medium", resp["difficulty"])
	assert.NotNil(t, resp["progress"])

	w = do(r, http.MethodPost, "/api/learning-paths", fmt.Sprintf(`{"profile_id":%q,"topic":"Space","difficulty":"extreme"}`, profileID))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetPath(t *testing.T) {
	path := &entity.LearningPath{ID: uuid.New(), ProfileID: uuid.New(), Title: "Space"}
	r := newRouter(NewLearningPathHandler(&stubService{path: &learningpath.PathWithProgress{Path: path}}, stubAccess{}))

	w := do(r, http.MethodGet, "/api/learning-paths/"+path.ID.String(), "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/api/learning-paths/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	r = newRouter(NewLearningPathHandler(&stubService{}, stubAccess{}))
	w = do(r, http.MethodGet, "/api/learning-paths/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListPaths_RequiresProfile(t *testing.T) {
	r := newRouter(NewLearningPathHandler(&stubService{}, stubAccess{}))

	w := do(r, http.MethodGet, "/api/learning-paths", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/learning-paths?profile_id="+uuid.NewString(), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"Space"`)
}
