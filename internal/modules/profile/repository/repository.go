package repository

import (
	"context"
	"errors"
	"time"

	"anoa.com/storybloom/internal/entity"
	"github.com/google/uuid"
)

// ErrStaleProfile is returned by versioned writes when another writer got there first.
var ErrStaleProfile = errors.New("profile version changed")

type Repository interface {
	Create(ctx context.Context, profile *entity.Profile) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Profile, error)
	FindByParent(ctx context.Context, parentID uuid.UUID) ([]*entity.Profile, error)
	// UpdateStreak writes the streak and session counters guarded by profile.Version.
	UpdateStreak(ctx context.Context, profile *entity.Profile) error
	// ResetStaleStreaks zeroes current_streak for profiles last active before cutoff.
	ResetStaleStreaks(ctx context.Context, cutoff time.Time) (int64, error)
}
