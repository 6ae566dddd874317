package service

import (
	"math"

	"anoa.com/storybloom/internal/entity"
)

// QuizStats is derived from the activity log, never stored.
type QuizStats struct {
	QuizzesTotal int
	QuizAccuracy int // 0-100
}

// NewQuizStats computes accuracy as a rounded percentage; zero answers give zero accuracy.
func NewQuizStats(correct, total int) QuizStats {
	if total <= 0 {
		return QuizStats{}
	}
	if correct > total {
		correct = total
	}
	return QuizStats{
		QuizzesTotal: total,
		QuizAccuracy: int(math.Round(float64(correct) / float64(total) * 100)),
	}
}

// Evaluate returns, in table order, every rule that holds for the profile and is
// not already unlocked. It never mutates the profile.
func Evaluate(p *entity.Profile, stats QuizStats) []Definition {
	if p == nil {
		return nil
	}

	var unlocked []Definition
	for _, rule := range rules {
		if p.HasAchievement(rule.ID) {
			continue
		}
		if rule.Predicate(p, stats) {
			unlocked = append(unlocked, rule)
		}
	}
	return unlocked
}

// CatalogEntry is a definition annotated with the profile's unlock state.
type CatalogEntry struct {
	Definition
	Unlocked bool
}

// Catalog lists the whole rule table for a profile.
func Catalog(p *entity.Profile) []CatalogEntry {
	entries := make([]CatalogEntry, 0, len(rules))
	for _, rule := range rules {
		entries = append(entries, CatalogEntry{
			Definition: rule,
			Unlocked:   p != nil && p.HasAchievement(rule.ID),
		})
	}
	return entries
}
