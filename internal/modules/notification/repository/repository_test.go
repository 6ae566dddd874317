package repository

import (
	"context"
	"testing"

	"anoa.com/storybloom/internal/entity"
	"anoa.com/storybloom/pkg/database"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Options{Driver: "sqlite", SQLitePath: "file::memory:"})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&entity.Role{}, &entity.User{}, &entity.Profile{}, &entity.Notification{}))
	return db
}

func TestNotificationRepository_ReadFlow(t *testing.T) {
	db := openDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	parent := uuid.New()
	profile := &entity.Profile{ParentID: parent, DisplayName: "Mia"}
	require.NoError(t, db.Create(profile).Error)

	first := &entity.Notification{UserID: parent, ProfileID: profile.ID, Type: entity.NotificationLevelUp, Message: "level 2"}
	second := &entity.Notification{UserID: parent, ProfileID: profile.ID, Type: entity.NotificationAchievement, Message: "first book"}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	list, err := repo.GetByUserID(ctx, parent, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.NotNil(t, list[0].Profile)
	assert.Equal(t, "Mia", list[0].Profile.DisplayName)

	count, err := repo.CountUnread(ctx, parent)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	updated, err := repo.MarkAsRead(ctx, uuid.New(), first.ID)
	require.NoError(t, err)
	assert.False(t, updated, "another user cannot mark it")

	updated, err = repo.MarkAsRead(ctx, parent, first.ID)
	require.NoError(t, err)
	assert.True(t, updated)

	count, err = repo.CountUnread(ctx, parent)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, repo.MarkAllAsRead(ctx, parent))
	count, err = repo.CountUnread(ctx, parent)
	require.NoError(t, err)
	assert.Zero(t, count)
}
