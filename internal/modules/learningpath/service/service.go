package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"anoa.com/storybloom/internal/entity"
	pathRepo "anoa.com/storybloom/internal/modules/learningpath/repository"
	progression "anoa.com/storybloom/internal/modules/progression/service"
	"anoa.com/storybloom/pkg/apperror"
	"anoa.com/storybloom/pkg/logger"
	"anoa.com/storybloom/pkg/sanitize"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const maxAdvanceAttempts = 3

// Awarder credits points for a finished path.
type Awarder interface {
	AwardPoints(ctx context.Context, req progression.AwardRequest) (*progression.AwardResult, error)
}

// Notifier tells a parent about progression events.
type Notifier interface {
	Notify(ctx context.Context, profile *entity.Profile, kind, message string) error
}

// ProfileReader loads the child a path is generated for.
type ProfileReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Profile, error)
}

// CreatePathInput asks for a new path for one profile.
type CreatePathInput struct {
	ProfileID  uuid.UUID
	Topic      string
	Difficulty string
	ChildAge   *int
}

// AdvanceInput reports progress on a path. All pointer fields are optional.
type AdvanceInput struct {
	ProfileID           uuid.UUID
	PathID              uuid.UUID
	CompletedActivityID string
	Score               *float64
	TimeSpentSeconds    *int
}

type AdvanceResult struct {
	NextActivity       *entity.PathActivity
	PathCompleted      bool
	ProgressPercentage float64
	PerformanceTrend   string
	AdaptiveMessage    string
	// SideEffectErrors lists best-effort steps that failed after progress was saved.
	SideEffectErrors []string
	Progress         *entity.PathProgress
}

// PathWithProgress is a path and the owning profile's progress on it.
type PathWithProgress struct {
	Path     *entity.LearningPath
	Progress *entity.PathProgress
}

type Service interface {
	CreatePath(ctx context.Context, input CreatePathInput) (*PathWithProgress, error)
	GetPath(ctx context.Context, pathID uuid.UUID) (*PathWithProgress, error)
	ListPaths(ctx context.Context, profileID uuid.UUID) ([]entity.LearningPath, error)
	Advance(ctx context.Context, input AdvanceInput) (*AdvanceResult, error)
}

type service struct {
	repo      pathRepo.Repository
	profiles  ProfileReader
	generator Generator
	awarder   Awarder
	notifier  Notifier
	log       *logger.Logger
	now       func() time.Time
}

func NewService(repo pathRepo.Repository, profiles ProfileReader, generator Generator, awarder Awarder, notifier Notifier, log *logger.Logger) Service {
	if generator == nil {
		generator = TemplateGenerator{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &service{
		repo:      repo,
		profiles:  profiles,
		generator: generator,
		awarder:   awarder,
		notifier:  notifier,
		log:       log,
		now:       time.Now,
	}
}

func (s *service) CreatePath(ctx context.Context, input CreatePathInput) (*PathWithProgress, error) {
	topic := sanitize.Text(input.Topic)
	if input.ProfileID == uuid.Nil || topic == "" {
		return nil, fmt.Errorf("profile_id and topic are required: %w", apperror.ErrInvalidInput)
	}
	difficulty := strings.ToLower(strings.TrimSpace(input.Difficulty))
	switch difficulty {
	case "":
		difficulty = DifficultyEasy
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
	default:
		return nil, fmt.Errorf("difficulty must be easy, medium or hard: %w", apperror.ErrInvalidInput)
	}

	childAge := input.ChildAge
	if childAge == nil && s.profiles != nil {
		profile, err := s.profiles.FindByID(ctx, input.ProfileID)
		if err != nil {
			return nil, err
		}
		childAge = profile.Age
	}

	generated, err := s.generator.Generate(ctx, GenerateInput{
		Topic:      topic,
		Difficulty: difficulty,
		ChildAge:   childAge,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate learning path: %w", err)
	}
	if err := ValidateActivities(generated.Activities); err != nil {
		return nil, fmt.Errorf("generated learning path is invalid: %w", err)
	}

	path := &entity.LearningPath{
		ProfileID:  input.ProfileID,
		Title:      generated.Title,
		Topic:      topic,
		Source:     generated.Source,
		Difficulty: difficulty,
		Activities: datatypes.JSONSlice[entity.PathActivity](generated.Activities),
		Status:     entity.PathStatusActive,
	}
	progress := entity.NewPathProgress(path)

	if err := s.repo.CreatePath(ctx, path, progress); err != nil {
		return nil, err
	}

	s.log.Info("learning path created",
		"path_id", path.ID,
		"profile_id", path.ProfileID,
		"source", path.Source,
		"activities", len(path.Activities),
	)
	return &PathWithProgress{Path: path, Progress: progress}, nil
}

func (s *service) GetPath(ctx context.Context, pathID uuid.UUID) (*PathWithProgress, error) {
	path, err := s.repo.FindPath(ctx, pathID)
	if err != nil {
		return nil, err
	}
	progress, err := s.repo.FindProgress(ctx, path.ProfileID, path.ID)
	if err != nil {
		return nil, err
	}
	return &PathWithProgress{Path: path, Progress: progress}, nil
}

func (s *service) ListPaths(ctx context.Context, profileID uuid.UUID) ([]entity.LearningPath, error) {
	return s.repo.ListByProfile(ctx, profileID)
}

func (s *service) Advance(ctx context.Context, input AdvanceInput) (*AdvanceResult, error) {
	if input.ProfileID == uuid.Nil || input.PathID == uuid.Nil {
		return nil, fmt.Errorf("profile_id and path_id are required: %w", apperror.ErrInvalidInput)
	}
	input.CompletedActivityID = strings.TrimSpace(input.CompletedActivityID)

	var (
		path     *entity.LearningPath
		progress *entity.PathProgress
		next     *entity.PathActivity
		finished bool
	)
	for attempt := 1; ; attempt++ {
		var err error
		path, err = s.repo.FindPath(ctx, input.PathID)
		if err != nil {
			return nil, err
		}
		if path.ProfileID != input.ProfileID {
			return nil, fmt.Errorf("learning path %s: %w", input.PathID, apperror.ErrNotFound)
		}
		progress, err = s.repo.FindProgress(ctx, input.ProfileID, input.PathID)
		if err != nil {
			return nil, err
		}

		// Terminal state: report it again without touching anything.
		if path.IsCompleted() {
			return s.result(progress, nil, true, input.Score, nil), nil
		}

		if input.CompletedActivityID != "" && path.IndexOf(input.CompletedActivityID) < 0 {
			return nil, fmt.Errorf("activity %q is not part of this path: %w", input.CompletedActivityID, apperror.ErrInvalidInput)
		}

		next, finished = s.step(path, progress, input)

		var completedPath *entity.LearningPath
		if finished {
			completedPath = path
		}
		err = s.repo.SaveAdvance(ctx, progress, completedPath)
		if err == nil {
			break
		}
		if !errors.Is(err, pathRepo.ErrStaleProgress) {
			return nil, fmt.Errorf("failed to save path progress: %w", err)
		}
		if attempt >= maxAdvanceAttempts {
			return nil, fmt.Errorf("path %s is being updated concurrently: %w", input.PathID, apperror.ErrConflict)
		}
	}

	var sideEffects []string
	if finished {
		s.log.Info("learning path completed", "path_id", path.ID, "profile_id", path.ProfileID)
		if err := s.awardCompletion(ctx, path); err != nil {
			s.log.Warn("path completion bonus failed", "path_id", path.ID, "error", err)
			sideEffects = append(sideEffects, "completion bonus failed: "+err.Error())
		}
	}

	return s.result(progress, next, finished, input.Score, sideEffects), nil
}

// step applies one advance to path and progress in memory and reports the next
// activity, or finished when the path has run out.
func (s *service) step(path *entity.LearningPath, progress *entity.PathProgress, input AdvanceInput) (*entity.PathActivity, bool) {
	var branchScore *float64
	if id := input.CompletedActivityID; id != "" {
		if !progress.HasCompleted(id) {
			progress.CompletedActivities = append(progress.CompletedActivities, id)
		}
		if input.Score != nil {
			scores := progress.Scores()
			scores[id] = *input.Score
			progress.ActivityScores = datatypes.NewJSONType(scores)
			branchScore = input.Score
		}
		if input.TimeSpentSeconds != nil {
			spent := progress.TimeSpent()
			spent[id] = *input.TimeSpentSeconds
			progress.TimeSpentPerActivity = datatypes.NewJSONType(spent)
		}
		progress.ProgressPercentage = ProgressPercentage(len(progress.CompletedActivities), len(path.Activities))
	}

	next := ResolveNext(path, progress.CurrentActivityID, branchScore)
	if next != nil {
		progress.CurrentActivityID = next.ID
	} else {
		completedAt := s.now()
		path.Status = entity.PathStatusCompleted
		path.CompletedAt = &completedAt
		progress.ProgressPercentage = 100
	}

	progress.PerformanceTrend = Trend(progress.CompletedActivities, progress.Scores())
	return next, next == nil
}

func (s *service) awardCompletion(ctx context.Context, path *entity.LearningPath) error {
	if s.awarder == nil {
		return nil
	}
	res, err := s.awarder.AwardPoints(ctx, progression.AwardRequest{
		ProfileID:    path.ProfileID,
		ActivityType: progression.ActivityPathCompleted,
		Metadata: map[string]interface{}{
			"path_id": path.ID.String(),
			"title":   path.Title,
		},
	})
	if err != nil {
		return err
	}

	if s.notifier != nil && res.Profile != nil {
		msg := fmt.Sprintf("🎓 %s finished the learning path \"%s\"!", res.Profile.DisplayName, path.Title)
		if err := s.notifier.Notify(ctx, res.Profile, entity.NotificationPathCompleted, msg); err != nil {
			s.log.Warn("failed to notify parent about path completion", "path_id", path.ID, "error", err)
		}
	}
	return nil
}

func (s *service) result(progress *entity.PathProgress, next *entity.PathActivity, finished bool, score *float64, sideEffects []string) *AdvanceResult {
	if sideEffects == nil {
		sideEffects = []string{}
	}
	return &AdvanceResult{
		NextActivity:       next,
		PathCompleted:      finished,
		ProgressPercentage: progress.ProgressPercentage,
		PerformanceTrend:   progress.PerformanceTrend,
		AdaptiveMessage:    AdaptiveMessage(progress.PerformanceTrend, score),
		SideEffectErrors:   sideEffects,
		Progress:           progress,
	}
}
