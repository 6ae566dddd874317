package service

import (
	"fmt"
	"math"
	"unicode/utf8"

	"anoa.com/storybloom/internal/entity"
)

// Score bands used by branch conditions.
const (
	HighScoreMin   = 80.0
	MediumScoreMin = 60.0
)

// Trend thresholds over the mean of recent scores.
const (
	ImprovingAbove  = 75.0
	StrugglingBelow = 60.0

	trendWindow     = 3
	minTrendSamples = 2
)

// Column widths of the stored path. Longer drafts are rejected.
const (
	MaxActivityIDLength = 100
	MaxTitleLength      = 150
)

const (
	MessageCelebrate = "Amazing work! You're really getting the hang of this. Keep going! 🌟"
	MessageSteady    = "Nice job! Every step makes you a stronger reader. On to the next one! 🚀"
	MessageSupport   = "Great effort! Practice makes progress, and you're doing it. Let's try the next one together! 💪"
)

// ConditionMatches reports whether a branch condition holds for score.
// Unknown conditions never match.
func ConditionMatches(condition string, score float64) bool {
	switch condition {
	case entity.ConditionScoreHigh:
		return score >= HighScoreMin
	case entity.ConditionScoreMedium:
		return score >= MediumScoreMin && score < HighScoreMin
	case entity.ConditionScoreLow:
		return score < MediumScoreMin
	default:
		return false
	}
}

// ResolveNext picks the activity after currentID. When score is non-nil the
// current node's branches are tried in order and the first match wins;
// otherwise, or when none match, the positional successor is used. It returns
// nil when the path has nowhere left to go.
func ResolveNext(path *entity.LearningPath, currentID string, score *float64) *entity.PathActivity {
	idx := path.IndexOf(currentID)

	if score != nil && idx >= 0 {
		for _, branch := range path.Activities[idx].BranchingOptions {
			if !ConditionMatches(branch.Condition, *score) {
				continue
			}
			if next, ok := path.Activity(branch.NextActivityID); ok {
				return next
			}
		}
	}

	if idx+1 < len(path.Activities) {
		return &path.Activities[idx+1]
	}
	return nil
}

// ProgressPercentage is completed/total*100, capped at 100 and rounded to two
// decimals for display.
func ProgressPercentage(completed, total int) float64 {
	if total <= 0 {
		return 0
	}
	pct := float64(completed) / float64(total) * 100
	if pct > 100 {
		pct = 100
	}
	return math.Round(pct*100) / 100
}

// Trend looks at the last three completions in completion order and averages
// the scores recorded for them. Unscored completions still take a window slot.
func Trend(completed []string, scores map[string]float64) string {
	window := completed[max(0, len(completed)-trendWindow):]
	recent := make([]float64, 0, len(window))
	for _, id := range window {
		if s, ok := scores[id]; ok {
			recent = append(recent, s)
		}
	}
	if len(recent) < minTrendSamples {
		return entity.TrendStable
	}

	var sum float64
	for _, s := range recent {
		sum += s
	}
	mean := sum / float64(len(recent))

	switch {
	case mean > ImprovingAbove:
		return entity.TrendImproving
	case mean < StrugglingBelow:
		return entity.TrendStruggling
	default:
		return entity.TrendStable
	}
}

// AdaptiveMessage picks one of three encouragement lines. The trend decides
// first; a stable trend falls back to the latest score.
func AdaptiveMessage(trend string, score *float64) string {
	switch trend {
	case entity.TrendImproving:
		return MessageCelebrate
	case entity.TrendStruggling:
		return MessageSupport
	}
	if score != nil {
		switch {
		case *score >= HighScoreMin:
			return MessageCelebrate
		case *score < MediumScoreMin:
			return MessageSupport
		}
	}
	return MessageSteady
}

// ValidateActivities checks that a generated sequence can be walked: at least
// one node, unique non-empty ids that fit the id column, known branch
// conditions and existing targets.
func ValidateActivities(activities []entity.PathActivity) error {
	if len(activities) == 0 {
		return fmt.Errorf("path has no activities")
	}

	seen := make(map[string]struct{}, len(activities))
	for _, a := range activities {
		if a.ID == "" {
			return fmt.Errorf("activity %q has no id", a.Title)
		}
		if utf8.RuneCountInString(a.ID) > MaxActivityIDLength {
			return fmt.Errorf("activity id %.20q... is longer than %d characters", a.ID, MaxActivityIDLength)
		}
		if _, dup := seen[a.ID]; dup {
			return fmt.Errorf("duplicate activity id %q", a.ID)
		}
		seen[a.ID] = struct{}{}
	}

	for _, a := range activities {
		for _, b := range a.BranchingOptions {
			switch b.Condition {
			case entity.ConditionScoreHigh, entity.ConditionScoreMedium, entity.ConditionScoreLow:
			default:
				return fmt.Errorf("activity %q has unknown branch condition %q", a.ID, b.Condition)
			}
			if _, ok := seen[b.NextActivityID]; !ok {
				return fmt.Errorf("activity %q branches to missing activity %q", a.ID, b.NextActivityID)
			}
		}
	}
	return nil
}
