package service

import "sort"

// Activity types that earn points.
const (
	ActivityBookStarted                   = "book_started"
	ActivityBookCompleted                 = "book_completed"
	ActivityPageRead                      = "page_read"
	ActivityPageColored                   = "page_colored"
	ActivityQuizCorrect                   = "quiz_correct"
	ActivityQuizPerfect                   = "quiz_perfect"
	ActivityDailyChallenge                = "daily_challenge"
	ActivityDailyQuest                    = "daily_quest"
	ActivityStreakMilestone7              = "streak_milestone_7"
	ActivityStreakMilestone30             = "streak_milestone_30"
	ActivityFirstShowcase                 = "first_showcase"
	ActivityRecommendationCompletedHigh   = "recommendation_completed_high"
	ActivityRecommendationCompletedMedium = "recommendation_completed_medium"
	ActivityAchievementUnlocked           = "achievement_unlocked"
	ActivityPathCompleted                 = "path_completed"
)

// Activity types that are logged and tracked but earn nothing.
const (
	ActivityQuizIncorrect = "quiz_incorrect"
	ActivityLikeGiven     = "like_given"
)

// pointsTable is read-only configuration shared by all requests.
var pointsTable = map[string]int{
	ActivityBookStarted:                   10,
	ActivityBookCompleted:                 100,
	ActivityPageRead:                      5,
	ActivityPageColored:                   25,
	ActivityQuizCorrect:                   15,
	ActivityQuizPerfect:                   50,
	ActivityDailyChallenge:                30,
	ActivityDailyQuest:                    40,
	ActivityStreakMilestone7:              100,
	ActivityStreakMilestone30:             500,
	ActivityFirstShowcase:                 50,
	ActivityRecommendationCompletedHigh:   75,
	ActivityRecommendationCompletedMedium: 50,
	ActivityAchievementUnlocked:           20,
	ActivityPathCompleted:                 150,
}

// BasePoints returns the table value for activityType. Unknown types earn 0.
func BasePoints(activityType string) (int, bool) {
	points, ok := pointsTable[activityType]
	return points, ok
}

// PointsTable returns a copy of the points configuration.
func PointsTable() map[string]int {
	out := make(map[string]int, len(pointsTable))
	for k, v := range pointsTable {
		out[k] = v
	}
	return out
}

// Bonus thresholds. Multipliers are kept in basis points so rounding is exact.
const (
	StreakBonusWeek  = 7
	StreakBonusMonth = 30
	LevelBonusMin    = 10

	basisPoints        = 10000
	weekStreakBonusBP  = 1000
	monthStreakBonusBP = 2000
	levelBonusBP       = 500
)

const (
	ReasonWeekStreak  = "7-day streak bonus (+10%)"
	ReasonMonthStreak = "30-day streak bonus (+20%)"
	ReasonHighLevel   = "level 10+ bonus (+5%)"
)

// Bonus is the additive multiplier applied to a base award.
type Bonus struct {
	basisPoints int
	Reasons     []string
}

// Multiplier returns the bonus as a float, e.g. 1.35.
func (b Bonus) Multiplier() float64 {
	return float64(b.basisPoints) / basisPoints
}

// Apply returns round-half-up(base * multiplier).
func (b Bonus) Apply(base int) int {
	if base <= 0 {
		return 0
	}
	return (base*b.basisPoints + basisPoints/2) / basisPoints
}

// ComputeBonus derives the multiplier from the profile state before the award.
// Reasons are listed in evaluation order: week streak, month streak, level.
func ComputeBonus(currentStreak, level int) Bonus {
	b := Bonus{basisPoints: basisPoints, Reasons: []string{}}
	if currentStreak >= StreakBonusWeek {
		b.basisPoints += weekStreakBonusBP
		b.Reasons = append(b.Reasons, ReasonWeekStreak)
	}
	if currentStreak >= StreakBonusMonth {
		b.basisPoints += monthStreakBonusBP
		b.Reasons = append(b.Reasons, ReasonMonthStreak)
	}
	if level >= LevelBonusMin {
		b.basisPoints += levelBonusBP
		b.Reasons = append(b.Reasons, ReasonHighLevel)
	}
	return b
}

// DefaultLevelThresholds is the cumulative points needed for each level; index 0 is level 1.
var DefaultLevelThresholds = []int{0, 100, 250, 500, 1000, 1750, 2750, 4000, 5500, 7500, 10000, 13000, 16500, 20500, 25000}

// LevelFromTotal returns 1 + the highest index whose threshold is met, capped at len(thresholds).
// thresholds must be ascending and start at 0.
func LevelFromTotal(total int, thresholds []int) int {
	if len(thresholds) == 0 {
		return 1
	}
	// first index whose threshold exceeds total
	i := sort.Search(len(thresholds), func(i int) bool { return thresholds[i] > total })
	if i == 0 {
		return 1
	}
	return i
}

// NextLevelTarget returns the threshold of the level after level, or false at the cap.
func NextLevelTarget(level int, thresholds []int) (int, bool) {
	if level < 1 || level >= len(thresholds) {
		return 0, false
	}
	return thresholds[level], true
}
