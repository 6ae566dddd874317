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

func (r *repository) FindProfile(ctx context.Context, id uuid.UUID) (*entity.Profile, error) {
	var profile entity.Profile
	if err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("profile %s: %w", id, apperror.ErrNotFound)
		}
		return nil, err
	}
	return &profile, nil
}

func (r *repository) ApplyAward(ctx context.Context, profile *entity.Profile, logs []*entity.ActivityLog) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.Profile{}).
			Where("id = ? AND version = ?", profile.ID, profile.Version).
			Updates(map[string]interface{}{
				"total_points":      profile.TotalPoints,
				"level":             profile.Level,
				"achievements":      profile.Achievements,
				"books_completed":   profile.BooksCompleted,
				"pages_colored":     profile.PagesColored,
				"total_likes_given": profile.TotalLikesGiven,
				"version":           gorm.Expr("version + 1"),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleProfile
		}

		if len(logs) > 0 {
			if err := tx.Create(&logs).Error; err != nil {
				return fmt.Errorf("failed to write activity log: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	profile.Version++
	return nil
}

func (r *repository) CountActivities(ctx context.Context, profileID uuid.UUID, types []string) (map[string]int64, error) {
	var rows []ActivityCount
	err := r.db.WithContext(ctx).
		Model(&entity.ActivityLog{}).
		Select("activity_type, COUNT(*) AS count").
		Where("profile_id = ? AND activity_type IN ?", profileID, types).
		Group("activity_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(types))
	for _, row := range rows {
		counts[row.ActivityType] = row.Count
	}
	return counts, nil
}

func (r *repository) ListActivities(ctx context.Context, profileID uuid.UUID, limit, offset int) ([]entity.ActivityLog, int64, error) {
	var (
		logs  []entity.ActivityLog
		total int64
	)

	query := r.db.WithContext(ctx).
		Model(&entity.ActivityLog{}).
		Where("profile_id = ?", profileID).
		Session(&gorm.Session{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at desc").Limit(limit).Offset(offset).Find(&logs).Error
	return logs, total, err
}

func (r *repository) TopByTotal(ctx context.Context, limit int) ([]ProfilePoints, error) {
	var rows []ProfilePoints
	err := r.db.WithContext(ctx).
		Model(&entity.Profile{}).
		Select("id AS profile_id, display_name, level, total_points, total_points AS points").
		Order("total_points desc").
		Order("created_at asc").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *repository) TopSince(ctx context.Context, since time.Time, limit int) ([]ProfilePoints, error) {
	var rows []ProfilePoints
	err := r.db.WithContext(ctx).
		Table("activity_logs").
		Select("profiles.id AS profile_id, profiles.display_name, profiles.level, profiles.total_points, SUM(activity_logs.points_awarded) AS points").
		Joins("JOIN profiles ON profiles.id = activity_logs.profile_id").
		Where("activity_logs.created_at >= ?", since).
		Group("profiles.id, profiles.display_name, profiles.level, profiles.total_points").
		Order("points desc").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *repository) PointsSince(ctx context.Context, profileID uuid.UUID, since time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&entity.ActivityLog{}).
		Select("COALESCE(SUM(points_awarded), 0)").
		Where("profile_id = ? AND created_at >= ?", profileID, since).
		Scan(&total).Error
	return total, err
}
