package repository

import (
	"context"
	"testing"
	"time"

	"anoa.com/storybloom/internal/entity"
	"anoa.com/storybloom/pkg/apperror"
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
	require.NoError(t, db.AutoMigrate(&entity.Role{}, &entity.User{}, &entity.Profile{}))
	return db
}

func utcDate(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestCreateAndFind(t *testing.T) {
	repo := NewRepository(openDB(t))
	ctx := context.Background()
	parentID := uuid.New()

	require.NoError(t, repo.Create(ctx, &entity.Profile{ParentID: parentID, DisplayName: "Mia"}))
	require.NoError(t, repo.Create(ctx, &entity.Profile{ParentID: parentID, DisplayName: "Leo"}))
	require.NoError(t, repo.Create(ctx, &entity.Profile{ParentID: uuid.New(), DisplayName: "Ana"}))

	profiles, err := repo.FindByParent(ctx, parentID)
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, 1, profiles[0].Level)

	found, err := repo.FindByID(ctx, profiles[0].ID)
	require.NoError(t, err)
	assert.Equal(t, profiles[0].DisplayName, found.DisplayName)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUpdateStreak_VersionGuard(t *testing.T) {
	repo := NewRepository(openDB(t))
	ctx := context.Background()
	profile := &entity.Profile{ParentID: uuid.New(), DisplayName: "Mia"}
	require.NoError(t, repo.Create(ctx, profile))

	first, err := repo.FindByID(ctx, profile.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, profile.ID)
	require.NoError(t, err)

	first.CurrentStreak = 1
	first.LongestStreak = 1
	first.LastActivityDate = utcDate(2026, 3, 10)
	first.NightSessions = 1
	require.NoError(t, repo.UpdateStreak(ctx, first))

	second.CurrentStreak = 5
	assert.ErrorIs(t, repo.UpdateStreak(ctx, second), ErrStaleProfile)

	stored, err := repo.FindByID(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.CurrentStreak)
	assert.Equal(t, 1, stored.NightSessions)
	assert.Equal(t, 1, stored.Version)
}

func TestResetStaleStreaks(t *testing.T) {
	db := openDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	active := &entity.Profile{ParentID: uuid.New(), DisplayName: "active", CurrentStreak: 4, LastActivityDate: utcDate(2026, 3, 9)}
	broken := &entity.Profile{ParentID: uuid.New(), DisplayName: "broken", CurrentStreak: 9, LongestStreak: 9, LastActivityDate: utcDate(2026, 3, 5)}
	idle := &entity.Profile{ParentID: uuid.New(), DisplayName: "idle"}
	for _, p := range []*entity.Profile{active, broken, idle} {
		require.NoError(t, repo.Create(ctx, p))
	}

	n, err := repo.ResetStaleStreaks(ctx, *utcDate(2026, 3, 9))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := repo.FindByID(ctx, broken.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.CurrentStreak)
	assert.Equal(t, 9, got.LongestStreak)

	got, err = repo.FindByID(ctx, active.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.CurrentStreak)
}
