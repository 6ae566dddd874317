package dto

import (
	"time"

	"anoa.com/storybloom/internal/entity"
	leaderboardDto "anoa.com/storybloom/internal/modules/leaderboard/dto"
)

type CreateProfileInput struct {
	DisplayName string `json:"display_name" binding:"required,max=50"`
	Age         *int   `json:"age" binding:"omitempty,min=2,max=14"`
}

// ProfileResponse is a child profile with its level standing.
type ProfileResponse struct {
	ID                 string                            `json:"id"`
	DisplayName        string                            `json:"display_name"`
	Age                *int                              `json:"age,omitempty"`
	TotalPoints        int                               `json:"total_points"`
	Level              int                               `json:"level"`
	CurrentStreak      int                               `json:"current_streak"`
	LongestStreak      int                               `json:"longest_streak"`
	Achievements       []string                          `json:"achievements"`
	BooksCompleted     int                               `json:"books_completed"`
	PagesColored       int                               `json:"pages_colored"`
	LastActivityDate   *time.Time                        `json:"last_activity_date,omitempty"`
	CreatedAt          time.Time                         `json:"created_at"`
	GamificationStatus leaderboardDto.GamificationStatus `json:"gamification_status"`
}

func NewProfileResponse(p *entity.Profile, status leaderboardDto.GamificationStatus) ProfileResponse {
	achievements := []string(p.Achievements)
	if achievements == nil {
		achievements = []string{}
	}
	return ProfileResponse{
		ID:                 p.ID.String(),
		DisplayName:        p.DisplayName,
		Age:                p.Age,
		TotalPoints:        p.TotalPoints,
		Level:              p.Level,
		CurrentStreak:      p.CurrentStreak,
		LongestStreak:      p.LongestStreak,
		Achievements:       achievements,
		BooksCompleted:     len(p.BooksCompleted),
		PagesColored:       len(p.PagesColored),
		LastActivityDate:   p.LastActivityDate,
		CreatedAt:          p.CreatedAt,
		GamificationStatus: status,
	}
}
