package service

import (
	"context"
	"testing"
	"time"

	progressionRepo "anoa.com/storybloom/internal/modules/progression/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	progressionRepo.Repository

	top       []progressionRepo.ProfilePoints
	since     time.Time
	weekly    int64
	usedSince bool
}

func (r *fakeRepo) TopByTotal(ctx context.Context, limit int) ([]progressionRepo.ProfilePoints, error) {
	return r.top, nil
}

func (r *fakeRepo) TopSince(ctx context.Context, since time.Time, limit int) ([]progressionRepo.ProfilePoints, error) {
	r.since = since
	r.usedSince = true
	return r.top, nil
}

func (r *fakeRepo) PointsSince(ctx context.Context, profileID uuid.UUID, since time.Time) (int64, error) {
	return r.weekly, nil
}

func TestGetLeaderboard_AllTime(t *testing.T) {
	repo := &fakeRepo{top: []progressionRepo.ProfilePoints{
		{ProfileID: uuid.New(), DisplayName: "Ada", Level: 3, TotalPoints: 300, Points: 300},
		{ProfileID: uuid.New(), DisplayName: "Bo", Level: 2, TotalPoints: 120, Points: 120},
	}}
	svc := NewLeaderboardService(repo, nil, []int{0, 100, 250, 500}, nil)

	entries, err := svc.GetLeaderboard(context.Background(), 10, "")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.False(t, repo.usedSince)
	assert.Equal(t, 1, entries[0].Position)
	assert.Equal(t, "Ada", entries[0].DisplayName)
	assert.Equal(t, 3, entries[0].GamificationStatus.Level)
	assert.Equal(t, 2, entries[1].Position)
}

func TestGetLeaderboard_Weekly(t *testing.T) {
	repo := &fakeRepo{top: []progressionRepo.ProfilePoints{
		{ProfileID: uuid.New(), DisplayName: "Ada", TotalPoints: 600, Points: 160},
	}}
	svc := NewLeaderboardService(repo, nil, []int{0, 100, 250, 500}, nil).(*leaderboardService)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	entries, err := svc.GetLeaderboard(context.Background(), 5, TimeframeWeekly)
	require.NoError(t, err)

	assert.Equal(t, now.AddDate(0, 0, -7), repo.since)
	assert.Equal(t, int64(160), entries[0].Points)
	assert.Equal(t, "⚡ Trending", entries[0].GamificationStatus.WeeklyLabel)
	assert.Equal(t, 4, entries[0].GamificationStatus.Level)
}

func TestStatus_UsesWeeklyPoints(t *testing.T) {
	repo := &fakeRepo{weekly: 60}
	svc := NewLeaderboardService(repo, nil, []int{0, 100}, nil)

	status := svc.Status(context.Background(), uuid.New(), 50)
	assert.Equal(t, 60, status.WeeklyPoints)
	assert.Equal(t, "📈 Active", status.WeeklyLabel)
	assert.Equal(t, 50.0, status.Progress)
}
