package repository

import (
	"context"
	"errors"

	"anoa.com/storybloom/internal/entity"
	"github.com/google/uuid"
)

// ErrStaleProgress is returned by SaveAdvance when another advance landed first.
var ErrStaleProgress = errors.New("path progress version changed")

type Repository interface {
	// CreatePath stores a path and its empty progress record together.
	CreatePath(ctx context.Context, path *entity.LearningPath, progress *entity.PathProgress) error
	FindPath(ctx context.Context, id uuid.UUID) (*entity.LearningPath, error)
	FindProgress(ctx context.Context, profileID, pathID uuid.UUID) (*entity.PathProgress, error)
	ListByProfile(ctx context.Context, profileID uuid.UUID) ([]entity.LearningPath, error)
	// SaveAdvance writes progress guarded by its version and, when completedPath
	// is non-nil, marks that path completed in the same transaction.
	SaveAdvance(ctx context.Context, progress *entity.PathProgress, completedPath *entity.LearningPath) error
}
