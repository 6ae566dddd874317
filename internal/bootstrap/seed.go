package bootstrap

import (
	"errors"
	"fmt"

	"anoa.com/storybloom/internal/entity"
	"anoa.com/storybloom/pkg/logger"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Development admin account created by SeedAdminUser.
const (
	DevAdminEmail    = "admin@storybloom.dev"
	DevAdminPassword = "admin123"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Role{},
		&entity.User{},
		&entity.Profile{},
		&entity.ActivityLog{},
		&entity.LearningPath{},
		&entity.PathProgress{},
		&entity.Notification{},
	)
}

func SeedRoles(db *gorm.DB) error {
	defaultRoles := []entity.Role{
		{Name: entity.RoleAdmin, Description: "Super administrator"},
		{Name: entity.RoleParent, Description: "Parent account owning child profiles"},
	}

	for _, role := range defaultRoles {
		var count int64
		if err := db.Model(&entity.Role{}).
			Where("name = ?", role.Name).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			if err := db.Create(&role).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

// SeedAdminUser creates the development admin account once.
func SeedAdminUser(db *gorm.DB, log *logger.Logger) error {
	if log == nil {
		log = logger.Nop()
	}

	var adminRole entity.Role
	if err := db.Where("name = ?", entity.RoleAdmin).First(&adminRole).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("admin role missing, run SeedRoles first: %w", err)
		}
		return err
	}

	var count int64
	if err := db.Model(&entity.User{}).
		Where("email = ?", DevAdminEmail).
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Debug("admin user already exists, skipping seed")
		return nil
	}

	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(DevAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	adminUser := entity.User{
		Email:        DevAdminEmail,
		DisplayName:  "Administrator",
		PasswordHash: string(hashedPasswordBytes),
		RoleID:       &adminRole.ID,
	}

	if err := db.Create(&adminUser).Error; err != nil {
		return err
	}

	log.Info("admin user seeded", "email", DevAdminEmail)
	return nil
}
