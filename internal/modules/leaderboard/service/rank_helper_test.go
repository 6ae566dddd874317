package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetGamificationStatus(t *testing.T) {
	table := []int{0, 100, 250, 500}

	status := GetGamificationStatusWithWeekly(0, 0, table)
	assert.Equal(t, 1, status.Level)
	assert.Equal(t, 2, status.NextLevel)
	assert.Equal(t, 100, status.TargetPoints)
	assert.Equal(t, 0.0, status.Progress)

	status = GetGamificationStatusWithWeekly(175, 0, table)
	assert.Equal(t, 2, status.Level)
	assert.Equal(t, 250, status.TargetPoints)
	assert.Equal(t, 50.0, status.Progress)

	status = GetGamificationStatusWithWeekly(333, 0, table)
	assert.Equal(t, 3, status.Level)
	assert.Equal(t, 33.2, status.Progress)

	status = GetGamificationStatusWithWeekly(900, 0, table)
	assert.Equal(t, 4, status.Level)
	assert.Zero(t, status.NextLevel)
	assert.Equal(t, 100.0, status.Progress)
}

func TestGetGamificationStatus_WeeklyLabel(t *testing.T) {
	table := []int{0, 100}

	assert.Equal(t, "", GetGamificationStatusWithWeekly(0, 10, table).WeeklyLabel)
	assert.Equal(t, "📈 Active", GetGamificationStatusWithWeekly(0, WeeklyActive, table).WeeklyLabel)
	assert.Equal(t, "⚡ Trending", GetGamificationStatusWithWeekly(0, WeeklyTrending, table).WeeklyLabel)
	assert.Equal(t, "🔥 On Fire!", GetGamificationStatusWithWeekly(0, WeeklyOnFire+1, table).WeeklyLabel)
}
