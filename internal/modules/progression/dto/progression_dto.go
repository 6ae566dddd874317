package dto

import (
	"time"

	"anoa.com/storybloom/internal/entity"
	achievementDto "anoa.com/storybloom/internal/modules/achievement/dto"
	progression "anoa.com/storybloom/internal/modules/progression/service"
)

type AwardPointsRequest struct {
	ProfileID    string                 `json:"profile_id" binding:"required,uuid"`
	ActivityType string                 `json:"activity_type" binding:"required,max=50"`
	Metadata     map[string]interface{} `json:"metadata"`
}

type AwardPointsResponse struct {
	Success          bool                         `json:"success"`
	PointsAwarded    int                          `json:"points_awarded"`
	BonusMultiplier  float64                      `json:"bonus_multiplier"`
	BonusReasons     []string                     `json:"bonus_reasons"`
	NewTotal         int                          `json:"new_total"`
	PreviousLevel    int                          `json:"previous_level"`
	NewLevel         int                          `json:"new_level"`
	LeveledUp        bool                         `json:"leveled_up"`
	NewAchievements  []achievementDto.Achievement `json:"new_achievements"`
	SideEffectErrors []string                     `json:"side_effect_errors,omitempty"`
}

func NewAwardPointsResponse(res *progression.AwardResult) AwardPointsResponse {
	reasons := res.BonusReasons
	if reasons == nil {
		reasons = []string{}
	}
	return AwardPointsResponse{
		Success:          true,
		PointsAwarded:    res.PointsAwarded,
		BonusMultiplier:  res.BonusMultiplier,
		BonusReasons:     reasons,
		NewTotal:         res.NewTotal,
		PreviousLevel:    res.PreviousLevel,
		NewLevel:         res.NewLevel,
		LeveledUp:        res.LeveledUp,
		NewAchievements:  achievementDto.FromDefinitions(res.NewAchievements),
		SideEffectErrors: res.SideEffectErrors,
	}
}

type ActivityLogItem struct {
	ActivityType    string                 `json:"activity_type"`
	PointsAwarded   int                    `json:"points_awarded"`
	BonusMultiplier float64                `json:"bonus_multiplier"`
	BonusReasons    []string               `json:"bonus_reasons"`
	PreviousLevel   int                    `json:"previous_level"`
	NewLevel        int                    `json:"new_level"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
}

type ActivityHistoryResponse struct {
	Data  []ActivityLogItem `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

func FromActivityLogs(logs []entity.ActivityLog) []ActivityLogItem {
	items := make([]ActivityLogItem, 0, len(logs))
	for _, l := range logs {
		items = append(items, ActivityLogItem{
			ActivityType:    l.ActivityType,
			PointsAwarded:   l.PointsAwarded,
			BonusMultiplier: l.BonusMultiplier,
			BonusReasons:    l.BonusReasons,
			PreviousLevel:   l.PreviousLevel,
			NewLevel:        l.NewLevel,
			Metadata:        l.Metadata,
			CreatedAt:       l.CreatedAt,
		})
	}
	return items
}

type PointsTableResponse struct {
	Points          map[string]int `json:"points"`
	LevelThresholds []int          `json:"level_thresholds"`
}
