package dto

import achievement "anoa.com/storybloom/internal/modules/achievement/service"

type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type CatalogEntry struct {
	Achievement
	Unlocked bool `json:"unlocked"`
}

type CheckAchievementsRequest struct {
	ProfileID string `json:"profile_id" binding:"required,uuid"`
}

type CheckAchievementsResponse struct {
	Success           bool          `json:"success"`
	NewAchievements   []Achievement `json:"new_achievements"`
	TotalAchievements int           `json:"total_achievements"`
}

type CatalogResponse struct {
	ProfileID string         `json:"profile_id"`
	Unlocked  int            `json:"unlocked"`
	Total     int            `json:"total"`
	Items     []CatalogEntry `json:"items"`
}

func FromDefinition(d achievement.Definition) Achievement {
	return Achievement{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Icon:        d.Icon,
	}
}

func FromDefinitions(defs []achievement.Definition) []Achievement {
	out := make([]Achievement, 0, len(defs))
	for _, d := range defs {
		out = append(out, FromDefinition(d))
	}
	return out
}
