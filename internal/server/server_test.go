package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"anoa.com/storybloom/internal/bootstrap"
	"anoa.com/storybloom/internal/config"
	"anoa.com/storybloom/pkg/database"
	"anoa.com/storybloom/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Connect(database.Options{Driver: "sqlite", SQLitePath: "file::memory:"})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, bootstrap.Migrate(db))
	require.NoError(t, bootstrap.SeedRoles(db))

	cfg := &config.Config{
		AppEnv:          "test",
		AllowedOrigins:  "http://localhost:3000",
		JWTSecret:       "test-secret",
		JWTTTL:          time.Hour,
		RateLimitWindow: time.Minute,
		RateLimitMax:    100,
		StreakCron:      "5 0 * * *",
	}
	srv, err := NewServer(cfg, db, nil, nil, logger.Nop())
	require.NoError(t, err)
	return srv.Handler()
}

type client struct {
	t       *testing.T
	handler http.Handler
	token   string
}

func (c *client) do(method, path string, body interface{}) (int, map[string]interface{}) {
	c.t.Helper()
	var reader *strings.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = strings.NewReader(string(raw))
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)

	var out map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w.Code, out
}

func register(t *testing.T, h http.Handler, email string) *client {
	t.Helper()
	c := &client{t: t, handler: h}
	code, body := c.do(http.MethodPost, "/api/auth/register", map[string]string{
		"email":        email,
		"password":     "storytime123",
		"display_name": "Parent",
	})
	require.Equal(t, http.StatusCreated, code, body)

	code, body = c.do(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": "storytime123",
	})
	require.Equal(t, http.StatusOK, code, body)
	c.token = body["access_token"].(string)
	return c
}

func TestHealthz(t *testing.T) {
	c := &client{t: t, handler: newTestServer(t)}

	code, body := c.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	c := &client{t: t, handler: newTestServer(t)}

	code, _ := c.do(http.MethodGet, "/api/profiles", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestChildJourney(t *testing.T) {
	h := newTestServer(t)
	parent := register(t, h, "parent@example.com")

	code, body := parent.do(http.MethodPost, "/api/profiles", map[string]interface{}{"display_name": "Mia", "age": 6})
	require.Equal(t, http.StatusCreated, code, body)
	profileID := body["id"].(string)

	// first finished book levels up and unlocks first_book
	code, body = parent.do(http.MethodPost, "/api/gamification/award", map[string]interface{}{
		"profile_id":    profileID,
		"activity_type": "book_completed",
		"metadata":      map[string]string{"book_id": "b-1"},
	})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, 100.0, body["points_awarded"])
	assert.Equal(t, true, body["leveled_up"])
	raw, _ := json.Marshal(body["new_achievements"])
	assert.Contains(t, string(raw), "first_book")

	// nothing new on an explicit re-check
	code, body = parent.do(http.MethodPost, "/api/achievements/check", map[string]string{"profile_id": profileID})
	require.Equal(t, http.StatusOK, code, body)
	assert.Empty(t, body["new_achievements"])

	code, body = parent.do(http.MethodGet, "/api/achievements/"+profileID, nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, 1.0, body["unlocked"])

	code, body = parent.do(http.MethodGet, "/api/gamification/history/"+profileID, nil)
	require.Equal(t, http.StatusOK, code, body)

	code, body = parent.do(http.MethodPost, "/api/streaks/check-in", map[string]interface{}{"profile_id": profileID, "local_hour": 7})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, 1.0, body["current_streak"])

	code, body = parent.do(http.MethodGet, "/api/profiles/"+profileID, nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, 2.0, body["level"])
	assert.Equal(t, 1.0, body["books_completed"])

	code, body = parent.do(http.MethodGet, "/api/leaderboard?timeframe=all_time", nil)
	require.Equal(t, http.StatusOK, code, body)

	code, body = parent.do(http.MethodGet, "/api/notifications/unread-count", nil)
	require.Equal(t, http.StatusOK, code, body)
}

func TestLearningPathJourney(t *testing.T) {
	h := newTestServer(t)
	parent := register(t, h, "reader@example.com")

	code, body := parent.do(http.MethodPost, "/api/profiles", map[string]interface{}{"display_name": "Leo"})
	require.Equal(t, http.StatusCreated, code, body)
	profileID := body["id"].(string)

	code, body = parent.do(http.MethodPost, "/api/learning-paths", map[string]string{"profile_id": profileID, "topic": "Dinosaurs"})
	require.Equal(t, http.StatusCreated, code, body)
	pathID := body["id"].(string)
	assert.Equal(t, "template", body["source"])

	advance := func(activity string, score float64) map[string]interface{} {
		code, body := parent.do(http.MethodPost, "/api/learning-paths/advance", map[string]interface{}{
			"profile_id":            profileID,
			"path_id":               pathID,
			"completed_activity_id": activity,
			"score":                 score,
		})
		require.Equal(t, http.StatusOK, code, body)
		return body
	}

	body = advance("read-intro", 90)
	assert.Equal(t, "quiz-check", body["next_activity"].(map[string]interface{})["id"])

	// a high quiz score skips the review step
	body = advance("quiz-check", 95)
	assert.Equal(t, "color-create", body["next_activity"].(map[string]interface{})["id"])
	assert.Equal(t, "improving", body["performance_trend"])

	body = advance("color-create", 85)
	assert.Equal(t, "quiz-challenge", body["next_activity"].(map[string]interface{})["id"])

	body = advance("quiz-challenge", 80)
	assert.Equal(t, true, body["path_completed"])
	assert.Equal(t, 100.0, body["progress_percentage"])
	assert.NotContains(t, body, "side_effect_errors")

	code, body = parent.do(http.MethodGet, "/api/profiles/"+profileID, nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.GreaterOrEqual(t, body["total_points"].(float64), 150.0)

	code, _ = parent.do(http.MethodGet, fmt.Sprintf("/api/learning-paths?profile_id=%s", profileID), nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestProfilesAreIsolatedBetweenParents(t *testing.T) {
	h := newTestServer(t)
	owner := register(t, h, "owner@example.com")
	other := register(t, h, "other@example.com")

	code, body := owner.do(http.MethodPost, "/api/profiles", map[string]interface{}{"display_name": "Ana"})
	require.Equal(t, http.StatusCreated, code, body)
	profileID := body["id"].(string)

	code, _ = other.do(http.MethodGet, "/api/profiles/"+profileID, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = other.do(http.MethodPost, "/api/gamification/award", map[string]string{
		"profile_id":    profileID,
		"activity_type": "page_read",
	})
	assert.Equal(t, http.StatusForbidden, code)
}
