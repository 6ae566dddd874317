package dto

import (
	"time"

	"anoa.com/storybloom/internal/entity"
	learningpath "anoa.com/storybloom/internal/modules/learningpath/service"
)

type CreatePathRequest struct {
	ProfileID  string `json:"profile_id" binding:"required,uuid"`
	Topic      string `json:"topic" binding:"required,max=100"`
	Difficulty string `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
}

type AdvanceRequest struct {
	ProfileID           string   `json:"profile_id" binding:"required,uuid"`
	PathID              string   `json:"path_id" binding:"required,uuid"`
	CompletedActivityID string   `json:"completed_activity_id" binding:"max=100"`
	Score               *float64 `json:"score" binding:"omitempty,min=0,max=100"`
	TimeSpentSeconds    *int     `json:"time_spent_seconds" binding:"omitempty,min=0"`
}

type AdvanceResponse struct {
	Success            bool                 `json:"success"`
	NextActivity       *entity.PathActivity `json:"next_activity"`
	PathCompleted      bool                 `json:"path_completed"`
	ProgressPercentage float64              `json:"progress_percentage"`
	PerformanceTrend   string               `json:"performance_trend"`
	AdaptiveMessage    string               `json:"adaptive_message"`
	SideEffectErrors   []string             `json:"side_effect_errors,omitempty"`
}

func NewAdvanceResponse(res *learningpath.AdvanceResult) AdvanceResponse {
	return AdvanceResponse{
		Success:            true,
		NextActivity:       res.NextActivity,
		PathCompleted:      res.PathCompleted,
		ProgressPercentage: res.ProgressPercentage,
		PerformanceTrend:   res.PerformanceTrend,
		AdaptiveMessage:    res.AdaptiveMessage,
		SideEffectErrors:   res.SideEffectErrors,
	}
}

type ProgressResponse struct {
	CompletedActivities  []string           `json:"completed_activities"`
	ActivityScores       map[string]float64 `json:"activity_scores"`
	TimeSpentPerActivity map[string]int     `json:"time_spent_per_activity"`
	CurrentActivityID    string             `json:"current_activity_id"`
	ProgressPercentage   float64            `json:"progress_percentage"`
	PerformanceTrend     string             `json:"performance_trend"`
}

type PathResponse struct {
	ID          string                `json:"id"`
	ProfileID   string                `json:"profile_id"`
	Title       string                `json:"title"`
	Topic       string                `json:"topic"`
	Difficulty  string                `json:"difficulty"`
	Source      string                `json:"source"`
	Status      string                `json:"status"`
	Activities  []entity.PathActivity `json:"activities"`
	CompletedAt *time.Time            `json:"completed_at,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	Progress    *ProgressResponse     `json:"progress,omitempty"`
}

func NewPathResponse(path *entity.LearningPath, progress *entity.PathProgress) PathResponse {
	res := PathResponse{
		ID:          path.ID.String(),
		ProfileID:   path.ProfileID.String(),
		Title:       path.Title,
		Topic:       path.Topic,
		Difficulty:  path.Difficulty,
		Source:      path.Source,
		Status:      path.Status,
		Activities:  path.Activities,
		CompletedAt: path.CompletedAt,
		CreatedAt:   path.CreatedAt,
	}
	if progress != nil {
		completed := []string(progress.CompletedActivities)
		if completed == nil {
			completed = []string{}
		}
		res.Progress = &ProgressResponse{
			CompletedActivities:  completed,
			ActivityScores:       progress.Scores(),
			TimeSpentPerActivity: progress.TimeSpent(),
			CurrentActivityID:    progress.CurrentActivityID,
			ProgressPercentage:   progress.ProgressPercentage,
			PerformanceTrend:     progress.PerformanceTrend,
		}
	}
	return res
}
