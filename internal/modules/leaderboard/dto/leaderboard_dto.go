package dto

// GamificationStatus is a child's level standing plus a label for recent activity.
type GamificationStatus struct {
	Level         int     `json:"level"`
	NextLevel     int     `json:"next_level"`     // 0 once the table is exhausted
	CurrentPoints int     `json:"current_points"` // All-time total points
	TargetPoints  int     `json:"target_points"`  // Threshold of the next level
	Progress      float64 `json:"progress"`       // Percent of the way from this level to the next

	WeeklyPoints int    `json:"weekly_points"`
	WeeklyLabel  string `json:"weekly_label"`
}

// LeaderboardEntry is one profile on the board. Points are for the requested timeframe.
type LeaderboardEntry struct {
	ProfileID          string             `json:"profile_id"`
	DisplayName        string             `json:"display_name"`
	Position           int                `json:"position"` // 1-based position in leaderboard
	Points             int64              `json:"points"`
	GamificationStatus GamificationStatus `json:"gamification_status"`
}
