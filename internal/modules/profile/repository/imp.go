package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

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

func (r *repository) Create(ctx context.Context, profile *entity.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Profile, error) {
	var profile entity.Profile
	if err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("profile %s: %w", id, apperror.ErrNotFound)
		}
		return nil, err
	}
	return &profile, nil
}

func (r *repository) FindByParent(ctx context.Context, parentID uuid.UUID) ([]*entity.Profile, error) {
	var profiles []*entity.Profile
	err := r.db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("created_at asc").
		Find(&profiles).Error
	return profiles, err
}

func (r *repository) UpdateStreak(ctx context.Context, profile *entity.Profile) error {
	res := r.db.WithContext(ctx).
		Model(&entity.Profile{}).
		Where("id = ? AND version = ?", profile.ID, profile.Version).
		Updates(map[string]interface{}{
			"current_streak":         profile.CurrentStreak,
			"longest_streak":         profile.LongestStreak,
			"last_activity_date":     profile.LastActivityDate,
			"early_morning_sessions": profile.EarlyMorningSessions,
			"night_sessions":         profile.NightSessions,
			"version":                gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleProfile
	}
	profile.Version++
	return nil
}

func (r *repository) ResetStaleStreaks(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&entity.Profile{}).
		Where("current_streak > 0 AND (last_activity_date IS NULL OR last_activity_date < ?)", cutoff).
		Updates(map[string]interface{}{
			"current_streak": 0,
			"version":        gorm.Expr("version + 1"),
		})
	return res.RowsAffected, res.Error
}
