package repository

import (
	"context"
	"time"

	"anoa.com/storybloom/internal/entity"
	profileRepo "anoa.com/storybloom/internal/modules/profile/repository"
	"github.com/google/uuid"
)

// ErrStaleProfile is returned by ApplyAward when the stored version moved
// since the profile was read.
var ErrStaleProfile = profileRepo.ErrStaleProfile

// ActivityCount is the number of logs of one type.
type ActivityCount struct {
	ActivityType string
	Count        int64
}

// ProfilePoints is one leaderboard row.
type ProfilePoints struct {
	ProfileID   uuid.UUID
	DisplayName string
	Level       int
	TotalPoints int
	Points      int64
}

type Repository interface {
	FindProfile(ctx context.Context, id uuid.UUID) (*entity.Profile, error)
	// ApplyAward writes the progression fields of profile and inserts logs in one
	// transaction, guarded by profile.Version. On success profile.Version is bumped.
	ApplyAward(ctx context.Context, profile *entity.Profile, logs []*entity.ActivityLog) error
	CountActivities(ctx context.Context, profileID uuid.UUID, types []string) (map[string]int64, error)
	ListActivities(ctx context.Context, profileID uuid.UUID, limit, offset int) ([]entity.ActivityLog, int64, error)
	TopByTotal(ctx context.Context, limit int) ([]ProfilePoints, error)
	TopSince(ctx context.Context, since time.Time, limit int) ([]ProfilePoints, error)
	PointsSince(ctx context.Context, profileID uuid.UUID, since time.Time) (int64, error)
}
