package repository

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/storybloom/internal/entity"
	"anoa.com/storybloom/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreatePath(ctx context.Context, path *entity.LearningPath, progress *entity.PathProgress) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(path).Error; err != nil {
			return fmt.Errorf("failed to create learning path: %w", err)
		}
		progress.PathID = path.ID
		progress.ProfileID = path.ProfileID
		if err := tx.Create(progress).Error; err != nil {
			return fmt.Errorf("failed to create path progress: %w", err)
		}
		return nil
	})
}

func (r *repository) FindPath(ctx context.Context, id uuid.UUID) (*entity.LearningPath, error) {
	var path entity.LearningPath
	if err := r.db.WithContext(ctx).First(&path, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("learning path %s: %w", id, apperror.ErrNotFound)
		}
		return nil, err
	}
	return &path, nil
}

func (r *repository) FindProgress(ctx context.Context, profileID, pathID uuid.UUID) (*entity.PathProgress, error) {
	var progress entity.PathProgress
	err := r.db.WithContext(ctx).
		Where("profile_id = ? AND path_id = ?", profileID, pathID).
		First(&progress).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("progress for path %s: %w", pathID, apperror.ErrNotFound)
		}
		return nil, err
	}
	return &progress, nil
}

func (r *repository) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]entity.LearningPath, error) {
	var paths []entity.LearningPath
	err := r.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("created_at desc").
		Find(&paths).Error
	return paths, err
}

func (r *repository) SaveAdvance(ctx context.Context, progress *entity.PathProgress, completedPath *entity.LearningPath) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.PathProgress{}).
			Where("id = ? AND version = ?", progress.ID, progress.Version).
			Updates(map[string]interface{}{
				"completed_activities":    progress.CompletedActivities,
				"activity_scores":         progress.ActivityScores,
				"time_spent_per_activity": progress.TimeSpentPerActivity,
				"current_activity_id":     progress.CurrentActivityID,
				"progress_percentage":     progress.ProgressPercentage,
				"performance_trend":       progress.PerformanceTrend,
				"version":                 gorm.Expr("version + 1"),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleProgress
		}

		if completedPath != nil {
			err := tx.Model(&entity.LearningPath{}).
				Where("id = ?", completedPath.ID).
				Updates(map[string]interface{}{
					"status":       entity.PathStatusCompleted,
					"completed_at": completedPath.CompletedAt,
				}).Error
			if err != nil {
				return fmt.Errorf("failed to complete learning path: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	progress.Version++
	return nil
}
