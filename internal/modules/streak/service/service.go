package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"anoa.com/storybloom/internal/entity"
	profileRepo "anoa.com/storybloom/internal/modules/profile/repository"
	progression "anoa.com/storybloom/internal/modules/progression/service"
	"anoa.com/storybloom/pkg/apperror"
	"anoa.com/storybloom/pkg/logger"
	"github.com/google/uuid"
)

const (
	maxCheckInAttempts = 5

	// Local hours bounding the early-morning and night session counters.
	EarlyMorningBefore = 8
	NightFrom          = 20
)

var milestones = map[int]string{
	progression.StreakBonusWeek:  progression.ActivityStreakMilestone7,
	progression.StreakBonusMonth: progression.ActivityStreakMilestone30,
}

type Awarder interface {
	AwardPoints(ctx context.Context, req progression.AwardRequest) (*progression.AwardResult, error)
}

type Notifier interface {
	Notify(ctx context.Context, profile *entity.Profile, kind, message string) error
}

type CheckInInput struct {
	ProfileID uuid.UUID
	// LocalHour is the child's wall-clock hour, 0-23, when known.
	LocalHour *int
}

type CheckInResult struct {
	CurrentStreak    int
	LongestStreak    int
	AlreadyToday     bool
	Milestone        string
	PointsAwarded    int
	SideEffectErrors []string
}

type Service interface {
	CheckIn(ctx context.Context, input CheckInInput) (*CheckInResult, error)
	// ResetBrokenStreaks zeroes the streak of every profile that missed yesterday.
	ResetBrokenStreaks(ctx context.Context) (int64, error)
}

type service struct {
	repo     profileRepo.Repository
	awarder  Awarder
	notifier Notifier
	log      *logger.Logger
	now      func() time.Time
}

func NewService(repo profileRepo.Repository, awarder Awarder, notifier Notifier, log *logger.Logger) Service {
	if log == nil {
		log = logger.Nop()
	}
	return &service{
		repo:     repo,
		awarder:  awarder,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// utcDay truncates t to midnight UTC.
func utcDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NextStreak returns the streak after activity on today given the last active day.
func NextStreak(current int, last *time.Time, today time.Time) (streak int, sameDay bool) {
	today = utcDay(today)
	if last == nil {
		return 1, false
	}
	lastDay := utcDay(*last)
	switch {
	case lastDay.Equal(today):
		if current < 1 {
			return 1, true
		}
		return current, true
	case lastDay.Equal(today.AddDate(0, 0, -1)):
		return current + 1, false
	default:
		return 1, false
	}
}

func (s *service) CheckIn(ctx context.Context, input CheckInInput) (*CheckInResult, error) {
	if input.ProfileID == uuid.Nil {
		return nil, fmt.Errorf("profile_id is required: %w", apperror.ErrInvalidInput)
	}
	if h := input.LocalHour; h != nil && (*h < 0 || *h > 23) {
		return nil, fmt.Errorf("local_hour must be between 0 and 23: %w", apperror.ErrInvalidInput)
	}

	var (
		profile *entity.Profile
		sameDay bool
	)
	for attempt := 1; ; attempt++ {
		var err error
		profile, err = s.repo.FindByID(ctx, input.ProfileID)
		if err != nil {
			return nil, err
		}

		today := utcDay(s.now())
		profile.CurrentStreak, sameDay = NextStreak(profile.CurrentStreak, profile.LastActivityDate, today)
		if profile.CurrentStreak > profile.LongestStreak {
			profile.LongestStreak = profile.CurrentStreak
		}
		profile.LastActivityDate = &today

		if h := input.LocalHour; h != nil {
			switch {
			case *h < EarlyMorningBefore:
				profile.EarlyMorningSessions++
			case *h >= NightFrom:
				profile.NightSessions++
			}
		}

		err = s.repo.UpdateStreak(ctx, profile)
		if err == nil {
			break
		}
		if !errors.Is(err, profileRepo.ErrStaleProfile) {
			return nil, fmt.Errorf("failed to save streak: %w", err)
		}
		if attempt >= maxCheckInAttempts {
			return nil, fmt.Errorf("profile %s is being updated concurrently: %w", input.ProfileID, apperror.ErrConflict)
		}
	}

	res := &CheckInResult{
		CurrentStreak:    profile.CurrentStreak,
		LongestStreak:    profile.LongestStreak,
		AlreadyToday:     sameDay,
		SideEffectErrors: []string{},
	}
	if sameDay {
		return res, nil
	}

	milestone, ok := milestones[profile.CurrentStreak]
	if !ok || s.awarder == nil {
		return res, nil
	}
	res.Milestone = milestone

	award, err := s.awarder.AwardPoints(ctx, progression.AwardRequest{
		ProfileID:    profile.ID,
		ActivityType: milestone,
		Metadata:     map[string]interface{}{"streak": profile.CurrentStreak},
	})
	if err != nil {
		s.log.Warn("streak milestone award failed", "profile_id", profile.ID, "milestone", milestone, "error", err)
		res.SideEffectErrors = append(res.SideEffectErrors, "milestone award failed: "+err.Error())
		return res, nil
	}
	res.PointsAwarded = award.PointsAwarded

	if s.notifier != nil && award.Profile != nil {
		msg := fmt.Sprintf("🔥 %s is on a %d-day reading streak!", award.Profile.DisplayName, profile.CurrentStreak)
		if err := s.notifier.Notify(ctx, award.Profile, entity.NotificationStreak, msg); err != nil {
			s.log.Warn("failed to notify parent about streak", "profile_id", profile.ID, "error", err)
		}
	}
	return res, nil
}

func (s *service) ResetBrokenStreaks(ctx context.Context) (int64, error) {
	cutoff := utcDay(s.now()).AddDate(0, 0, -1)
	n, err := s.repo.ResetStaleStreaks(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to reset streaks: %w", err)
	}
	s.log.Info("broken streaks reset", "profiles", n, "cutoff", cutoff.Format(time.DateOnly))
	return n, nil
}
