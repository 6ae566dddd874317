package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"anoa.com/storybloom/internal/entity"
	achievement "anoa.com/storybloom/internal/modules/achievement/service"
	progressionRepo "anoa.com/storybloom/internal/modules/progression/repository"
	"anoa.com/storybloom/pkg/apperror"
	"anoa.com/storybloom/pkg/logger"
	"anoa.com/storybloom/pkg/sanitize"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const defaultMaxAttempts = 5

// AwardRequest is one activity event to be converted into points.
type AwardRequest struct {
	ProfileID    uuid.UUID
	ActivityType string
	Metadata     map[string]interface{}
}

// AwardResult describes the persisted outcome of an award.
type AwardResult struct {
	PointsAwarded   int
	BonusMultiplier float64
	BonusReasons    []string
	NewTotal        int
	PreviousLevel   int
	NewLevel        int
	LeveledUp       bool
	NewAchievements []achievement.Definition
	// SideEffectErrors lists post-award steps that failed without undoing the award.
	SideEffectErrors []string
	Profile          *entity.Profile
}

// AchievementCheckResult is the outcome of an explicit achievement check.
type AchievementCheckResult struct {
	NewAchievements   []achievement.Definition
	TotalAchievements int
	Profile           *entity.Profile
}

// Notifier tells a parent about progression events. Failures never fail the caller.
type Notifier interface {
	Notify(ctx context.Context, profile *entity.Profile, kind, message string) error
}

type Service interface {
	AwardPoints(ctx context.Context, req AwardRequest) (*AwardResult, error)
	CheckAchievements(ctx context.Context, profileID uuid.UUID) (*AchievementCheckResult, error)
	QuizStats(ctx context.Context, profileID uuid.UUID) (achievement.QuizStats, error)
	History(ctx context.Context, profileID uuid.UUID, page, limit int) ([]entity.ActivityLog, int64, error)
	Thresholds() []int
}

// Options tunes the engine. Zero values select the defaults.
type Options struct {
	LevelThresholds []int
	MaxAttempts     int
	Now             func() time.Time
}

type service struct {
	repo        progressionRepo.Repository
	notifier    Notifier
	log         *logger.Logger
	thresholds  []int
	maxAttempts int
	now         func() time.Time
}

func NewService(repo progressionRepo.Repository, notifier Notifier, log *logger.Logger, opts Options) Service {
	if log == nil {
		log = logger.Nop()
	}
	s := &service{
		repo:        repo,
		notifier:    notifier,
		log:         log,
		thresholds:  opts.LevelThresholds,
		maxAttempts: opts.MaxAttempts,
		now:         opts.Now,
	}
	if len(s.thresholds) == 0 {
		s.thresholds = DefaultLevelThresholds
	}
	if s.maxAttempts <= 0 {
		s.maxAttempts = defaultMaxAttempts
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *service) Thresholds() []int {
	return s.thresholds
}

func (s *service) History(ctx context.Context, profileID uuid.UUID, page, limit int) ([]entity.ActivityLog, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.repo.ListActivities(ctx, profileID, limit, (page-1)*limit)
}

func (s *service) AwardPoints(ctx context.Context, req AwardRequest) (*AwardResult, error) {
	activityType := strings.TrimSpace(req.ActivityType)
	if req.ProfileID == uuid.Nil || activityType == "" {
		return nil, fmt.Errorf("profile_id and activity_type are required: %w", apperror.ErrInvalidInput)
	}
	// metadata is opaque and logged as sent
	metadata := req.Metadata

	var (
		profile *entity.Profile
		result  *AwardResult
	)
	for attempt := 1; ; attempt++ {
		current, err := s.repo.FindProfile(ctx, req.ProfileID)
		if err != nil {
			return nil, err
		}

		next, res, entry := s.computeAward(current, activityType, metadata)
		err = s.repo.ApplyAward(ctx, next, []*entity.ActivityLog{entry})
		if err == nil {
			profile, result = next, res
			break
		}
		if !errors.Is(err, progressionRepo.ErrStaleProfile) {
			return nil, fmt.Errorf("failed to persist award: %w", err)
		}
		if attempt >= s.maxAttempts {
			return nil, fmt.Errorf("profile %s is being updated concurrently: %w", req.ProfileID, apperror.ErrConflict)
		}
		s.log.Debug("stale profile on award, retrying", "profile_id", req.ProfileID, "attempt", attempt)
	}

	unlocked, updated, err := s.unlockAchievements(ctx, profile)
	if err != nil {
		s.log.Warn("achievement check after award failed",
			"profile_id", profile.ID,
			"activity_type", activityType,
			"error", err,
		)
		result.SideEffectErrors = append(result.SideEffectErrors, "achievement check failed: "+err.Error())
	} else {
		profile = updated
	}

	result.NewAchievements = unlocked
	result.NewTotal = profile.TotalPoints
	result.NewLevel = profile.Level
	result.LeveledUp = result.NewLevel > result.PreviousLevel
	result.Profile = profile

	s.log.Info("points awarded",
		"profile_id", profile.ID,
		"activity_type", activityType,
		"points", result.PointsAwarded,
		"multiplier", result.BonusMultiplier,
		"total", result.NewTotal,
		"level", result.NewLevel,
	)

	if result.LeveledUp {
		s.notify(ctx, profile, entity.NotificationLevelUp,
			fmt.Sprintf("🎉 %s reached level %d!", profile.DisplayName, result.NewLevel))
	}
	s.notifyAchievements(ctx, profile, unlocked)

	return result, nil
}

// computeAward applies one activity to a copy of current and returns the copy,
// the result so far and the log row to insert.
func (s *service) computeAward(current *entity.Profile, activityType string, metadata map[string]interface{}) (*entity.Profile, *AwardResult, *entity.ActivityLog) {
	next := cloneProfile(current)

	base, known := BasePoints(activityType)
	if !known {
		s.log.Debug("unknown activity type, awarding nothing", "activity_type", activityType)
	}
	bonus := ComputeBonus(current.CurrentStreak, current.Level)
	awarded := bonus.Apply(base)

	previousLevel := current.Level
	next.TotalPoints += awarded
	next.Level = LevelFromTotal(next.TotalPoints, s.thresholds)
	applyActivityStats(next, activityType, metadata)

	entry := &entity.ActivityLog{
		ProfileID:       next.ID,
		ActivityType:    activityType,
		PointsAwarded:   awarded,
		BonusMultiplier: bonus.Multiplier(),
		BonusReasons:    bonus.Reasons,
		PreviousLevel:   previousLevel,
		NewLevel:        next.Level,
		Metadata:        datatypes.JSONMap(metadata),
		CreatedAt:       s.now(),
	}

	res := &AwardResult{
		PointsAwarded:    awarded,
		BonusMultiplier:  bonus.Multiplier(),
		BonusReasons:     bonus.Reasons,
		PreviousLevel:    previousLevel,
		NewAchievements:  []achievement.Definition{},
		SideEffectErrors: []string{},
	}
	return next, res, entry
}

func applyActivityStats(p *entity.Profile, activityType string, metadata map[string]interface{}) {
	switch activityType {
	case ActivityBookCompleted:
		p.AddBook(metadataString(metadata, "book_id"))
	case ActivityPageColored:
		p.AddColoredPage(metadataString(metadata, "page_id"))
	case ActivityLikeGiven:
		p.TotalLikesGiven++
	}
}

func metadataString(m map[string]interface{}, key string) string {
	switch v := m[key].(type) {
	case string:
		return sanitize.Text(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}

func (s *service) CheckAchievements(ctx context.Context, profileID uuid.UUID) (*AchievementCheckResult, error) {
	profile, err := s.repo.FindProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	previousLevel := profile.Level

	unlocked, updated, err := s.unlockAchievements(ctx, profile)
	if err != nil {
		return nil, err
	}

	if updated.Level > previousLevel {
		s.notify(ctx, updated, entity.NotificationLevelUp,
			fmt.Sprintf("🎉 %s reached level %d!", updated.DisplayName, updated.Level))
	}
	s.notifyAchievements(ctx, updated, unlocked)

	return &AchievementCheckResult{
		NewAchievements:   unlocked,
		TotalAchievements: len(updated.Achievements),
		Profile:           updated,
	}, nil
}

func (s *service) QuizStats(ctx context.Context, profileID uuid.UUID) (achievement.QuizStats, error) {
	counts, err := s.repo.CountActivities(ctx, profileID, []string{ActivityQuizCorrect, ActivityQuizIncorrect})
	if err != nil {
		return achievement.QuizStats{}, fmt.Errorf("failed to count quiz activity: %w", err)
	}
	correct := int(counts[ActivityQuizCorrect])
	return achievement.NewQuizStats(correct, correct+int(counts[ActivityQuizIncorrect])), nil
}

// unlockAchievements evaluates the rule table until nothing new unlocks, then
// persists the additions and their flat bonus in one guarded write. It returns
// the input profile unchanged when nothing unlocks.
func (s *service) unlockAchievements(ctx context.Context, profile *entity.Profile) ([]achievement.Definition, *entity.Profile, error) {
	current := profile
	for attempt := 1; ; attempt++ {
		stats, err := s.QuizStats(ctx, current.ID)
		if err != nil {
			return nil, profile, err
		}

		next, unlocked, logs := s.grantAchievements(current, stats)
		if len(unlocked) == 0 {
			return []achievement.Definition{}, current, nil
		}

		err = s.repo.ApplyAward(ctx, next, logs)
		if err == nil {
			return unlocked, next, nil
		}
		if !errors.Is(err, progressionRepo.ErrStaleProfile) {
			return nil, profile, err
		}
		if attempt >= s.maxAttempts {
			return nil, profile, fmt.Errorf("profile %s is being updated concurrently: %w", current.ID, apperror.ErrConflict)
		}

		current, err = s.repo.FindProfile(ctx, current.ID)
		if err != nil {
			return nil, profile, err
		}
	}
}

// grantAchievements works on a copy so a failed write leaves the caller's profile intact.
func (s *service) grantAchievements(current *entity.Profile, stats achievement.QuizStats) (*entity.Profile, []achievement.Definition, []*entity.ActivityLog) {
	next := cloneProfile(current)
	bonus, _ := BasePoints(ActivityAchievementUnlocked)

	var (
		unlocked []achievement.Definition
		logs     []*entity.ActivityLog
	)
	// Bonus points can raise the level, which can satisfy further rules.
	for {
		batch := achievement.Evaluate(next, stats)
		if len(batch) == 0 {
			break
		}
		for _, def := range batch {
			next.AddAchievement(def.ID)
			previousLevel := next.Level
			next.TotalPoints += bonus
			next.Level = LevelFromTotal(next.TotalPoints, s.thresholds)

			logs = append(logs, &entity.ActivityLog{
				ProfileID:       next.ID,
				ActivityType:    ActivityAchievementUnlocked,
				PointsAwarded:   bonus,
				BonusMultiplier: 1,
				BonusReasons:    []string{},
				PreviousLevel:   previousLevel,
				NewLevel:        next.Level,
				Metadata: datatypes.JSONMap{
					"achievement_id":   def.ID,
					"achievement_name": def.Name,
				},
				CreatedAt: s.now(),
			})
		}
		unlocked = append(unlocked, batch...)
	}
	return next, unlocked, logs
}

func (s *service) notifyAchievements(ctx context.Context, profile *entity.Profile, unlocked []achievement.Definition) {
	for _, def := range unlocked {
		s.notify(ctx, profile, entity.NotificationAchievement,
			fmt.Sprintf("%s %s unlocked \"%s\"!", def.Icon, profile.DisplayName, def.Name))
	}
}

func (s *service) notify(ctx context.Context, profile *entity.Profile, kind, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, profile, kind, message); err != nil {
		s.log.Warn("failed to notify parent",
			"profile_id", profile.ID,
			"type", kind,
			"error", err,
		)
	}
}

func cloneProfile(p *entity.Profile) *entity.Profile {
	c := *p
	c.Achievements = append(datatypes.JSONSlice[string]{}, p.Achievements...)
	c.BooksCompleted = append(datatypes.JSONSlice[string]{}, p.BooksCompleted...)
	c.PagesColored = append(datatypes.JSONSlice[string]{}, p.PagesColored...)
	return &c
}
