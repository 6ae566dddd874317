package profile

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"unicode/utf8"

	"anoa.com/storybloom/internal/entity"
	leaderboard "anoa.com/storybloom/internal/modules/leaderboard/service"
	profileDto "anoa.com/storybloom/internal/modules/profile/dto"
	profileRepo "anoa.com/storybloom/internal/modules/profile/repository"
	userRepo "anoa.com/storybloom/internal/modules/user/repository"
	"anoa.com/storybloom/pkg/apperror"
	"anoa.com/storybloom/pkg/logger"
	"anoa.com/storybloom/pkg/sanitize"
	"github.com/google/uuid"
)

const maxProfilesPerParent = 6

type ProfileService interface {
	CreateProfile(ctx context.Context, parentID uuid.UUID, input profileDto.CreateProfileInput) (*profileDto.ProfileResponse, error)
	ListProfiles(ctx context.Context, parentID uuid.UUID) ([]profileDto.ProfileResponse, error)
	GetProfile(ctx context.Context, userID, profileID uuid.UUID) (*profileDto.ProfileResponse, error)
	// Authorize returns nil when userID owns profileID or is an admin.
	Authorize(ctx context.Context, userID, profileID uuid.UUID) error
}

type profileService struct {
	repo        profileRepo.Repository
	userRepo    userRepo.UserRepository
	leaderboard leaderboard.LeaderboardService
	log         *logger.Logger
}

func NewProfileService(repo profileRepo.Repository, userRepo userRepo.UserRepository, leaderboard leaderboard.LeaderboardService, log *logger.Logger) ProfileService {
	if log == nil {
		log = logger.Nop()
	}
	return &profileService{
		repo:        repo,
		userRepo:    userRepo,
		leaderboard: leaderboard,
		log:         log,
	}
}

func (s *profileService) CreateProfile(ctx context.Context, parentID uuid.UUID, input profileDto.CreateProfileInput) (*profileDto.ProfileResponse, error) {
	name := sanitize.Text(input.DisplayName)
	if name == "" {
		return nil, fmt.Errorf("display_name is required: %w", apperror.ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > 50 {
		return nil, fmt.Errorf("display_name must be at most 50 characters: %w", apperror.ErrInvalidInput)
	}

	existing, err := s.repo.FindByParent(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if len(existing) >= maxProfilesPerParent {
		return nil, apperror.New(http.StatusBadRequest, fmt.Sprintf("a parent can manage at most %d profiles", maxProfilesPerParent), apperror.ErrBadRequest)
	}

	p := &entity.Profile{
		ParentID:    parentID,
		DisplayName: name,
		Age:         input.Age,
		Level:       1,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	s.log.Info("profile created", "profile_id", p.ID, "parent_id", parentID)
	res := profileDto.NewProfileResponse(p, s.leaderboard.Status(ctx, p.ID, p.TotalPoints))
	return &res, nil
}

func (s *profileService) ListProfiles(ctx context.Context, parentID uuid.UUID) ([]profileDto.ProfileResponse, error) {
	profiles, err := s.repo.FindByParent(ctx, parentID)
	if err != nil {
		return nil, err
	}

	out := make([]profileDto.ProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, profileDto.NewProfileResponse(p, s.leaderboard.Status(ctx, p.ID, p.TotalPoints)))
	}
	return out, nil
}

func (s *profileService) GetProfile(ctx context.Context, userID, profileID uuid.UUID) (*profileDto.ProfileResponse, error) {
	p, err := s.load(ctx, userID, profileID)
	if err != nil {
		return nil, err
	}
	res := profileDto.NewProfileResponse(p, s.leaderboard.Status(ctx, p.ID, p.TotalPoints))
	return &res, nil
}

func (s *profileService) Authorize(ctx context.Context, userID, profileID uuid.UUID) error {
	_, err := s.load(ctx, userID, profileID)
	return err
}

func (s *profileService) load(ctx context.Context, userID, profileID uuid.UUID) (*entity.Profile, error) {
	p, err := s.repo.FindByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if p.ParentID == userID {
		return p, nil
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.ErrUnauthorized
		}
		return nil, err
	}
	if !user.IsAdmin() {
		return nil, fmt.Errorf("profile %s belongs to another parent: %w", profileID, apperror.ErrForbidden)
	}
	return p, nil
}
