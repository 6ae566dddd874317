package dto

import streak "anoa.com/storybloom/internal/modules/streak/service"

type CheckInRequest struct {
	ProfileID string `json:"profile_id" binding:"required,uuid"`
	LocalHour *int   `json:"local_hour" binding:"omitempty,min=0,max=23"`
}

type CheckInResponse struct {
	Success          bool     `json:"success"`
	CurrentStreak    int      `json:"current_streak"`
	LongestStreak    int      `json:"longest_streak"`
	AlreadyToday     bool     `json:"already_checked_in_today"`
	Milestone        string   `json:"milestone,omitempty"`
	PointsAwarded    int      `json:"points_awarded"`
	SideEffectErrors []string `json:"side_effect_errors,omitempty"`
}

func NewCheckInResponse(res *streak.CheckInResult) CheckInResponse {
	return CheckInResponse{
		Success:          true,
		CurrentStreak:    res.CurrentStreak,
		LongestStreak:    res.LongestStreak,
		AlreadyToday:     res.AlreadyToday,
		Milestone:        res.Milestone,
		PointsAwarded:    res.PointsAwarded,
		SideEffectErrors: res.SideEffectErrors,
	}
}
