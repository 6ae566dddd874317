package service

import (
	"context"
	"encoding/json"
	"fmt"

	"anoa.com/storybloom/internal/entity"
	notifRepo "anoa.com/storybloom/internal/modules/notification/repository"
	"anoa.com/storybloom/pkg/apperror"
	"anoa.com/storybloom/pkg/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Channel is the redis pub/sub channel carrying a parent's notifications.
func Channel(userID uuid.UUID) string {
	return fmt.Sprintf("user_notifications:%s", userID.String())
}

type NotificationService interface {
	CreateNotification(ctx context.Context, notification *entity.Notification) error
	// Notify records a notification about profile for its parent.
	Notify(ctx context.Context, profile *entity.Profile, kind, message string) error
	GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Notification, error)
	MarkAsRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationService struct {
	repo        notifRepo.NotificationRepository
	redisClient redis.Cmdable
	log         *logger.Logger
	encode      func(v any) ([]byte, error)
}

func NewNotificationService(repo notifRepo.NotificationRepository, redisClient redis.Cmdable, log *logger.Logger) NotificationService {
	if log == nil {
		log = logger.Nop()
	}
	return &notificationService{
		repo:        repo,
		redisClient: redisClient,
		log:         log,
		encode:      json.Marshal,
	}
}

func (s *notificationService) CreateNotification(ctx context.Context, notification *entity.Notification) error {
	// 1. Save to DB
	if err := s.repo.Create(ctx, notification); err != nil {
		return err
	}

	// 2. Publish to Redis if Redis is available
	if s.redisClient != nil {
		payload, err := s.encode(notification)
		if err != nil {
			s.log.Warn("failed to encode notification", "user_id", notification.UserID, "error", err)
			return nil
		}
		if err := s.redisClient.Publish(ctx, Channel(notification.UserID), payload).Err(); err != nil {
			s.log.Warn("failed to publish notification", "user_id", notification.UserID, "error", err)
		}
	}

	return nil
}

func (s *notificationService) Notify(ctx context.Context, profile *entity.Profile, kind, message string) error {
	return s.CreateNotification(ctx, &entity.Notification{
		UserID:    profile.ParentID,
		ProfileID: profile.ID,
		Type:      kind,
		Message:   message,
	})
}

func (s *notificationService) GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Notification, error) {
	return s.repo.GetByUserID(ctx, userID, limit, offset)
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	updated, err := s.repo.MarkAsRead(ctx, userID, id)
	if err != nil {
		return err
	}
	if !updated {
		return fmt.Errorf("notification %s: %w", id, apperror.ErrNotFound)
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}
