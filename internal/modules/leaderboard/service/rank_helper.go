package service

import (
	"math"

	leaderboardDto "anoa.com/storybloom/internal/modules/leaderboard/dto"
	progression "anoa.com/storybloom/internal/modules/progression/service"
)

// Weekly activity thresholds
const (
	WeeklyOnFire   = 300
	WeeklyTrending = 150
	WeeklyActive   = 50
)

// GetGamificationStatusWithWeekly derives level progress from allTimePoints
// and the activity label from weeklyPoints.
func GetGamificationStatusWithWeekly(allTimePoints, weeklyPoints int, thresholds []int) leaderboardDto.GamificationStatus {
	var status leaderboardDto.GamificationStatus
	status.CurrentPoints = allTimePoints
	status.WeeklyPoints = weeklyPoints

	level := progression.LevelFromTotal(allTimePoints, thresholds)
	status.Level = level

	if target, ok := progression.NextLevelTarget(level, thresholds); ok {
		floor := thresholds[level-1]
		status.NextLevel = level + 1
		status.TargetPoints = target
		status.Progress = float64(allTimePoints-floor) / float64(target-floor) * 100
	} else {
		status.TargetPoints = allTimePoints
		status.Progress = 100
	}

	switch {
	case weeklyPoints >= WeeklyOnFire:
		status.WeeklyLabel = "🔥 On Fire!"
	case weeklyPoints >= WeeklyTrending:
		status.WeeklyLabel = "⚡ Trending"
	case weeklyPoints >= WeeklyActive:
		status.WeeklyLabel = "📈 Active"
	default:
		status.WeeklyLabel = ""
	}

	// Round progress to 2 decimal places
	status.Progress = math.Round(status.Progress*100) / 100

	return status
}
