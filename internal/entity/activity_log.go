package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ActivityLog is written once per awarded event and never updated.
type ActivityLog struct {
	ID              uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileID       uuid.UUID                   `gorm:"type:uuid;not null;index:idx_profile_type,priority:1;index:idx_profile_date,priority:1" json:"profile_id"`
	Profile         *Profile                    `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE" json:"-"`
	ActivityType    string                      `gorm:"size:50;not null;index:idx_profile_type,priority:2" json:"activity_type"`
	PointsAwarded   int                         `gorm:"not null" json:"points_awarded"`
	BonusMultiplier float64                     `gorm:"not null;default:1" json:"bonus_multiplier"`
	BonusReasons    datatypes.JSONSlice[string] `json:"bonus_reasons"`
	PreviousLevel   int                         `gorm:"not null" json:"previous_level"`
	NewLevel        int                         `gorm:"not null" json:"new_level"`
	Metadata        datatypes.JSONMap           `json:"metadata,omitempty"`
	CreatedAt       time.Time                   `gorm:"index:idx_profile_date,priority:2;index:idx_activity_date" json:"created_at"`
}

func (a *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.BonusReasons == nil {
		a.BonusReasons = datatypes.JSONSlice[string]{}
	}
	if a.Metadata == nil {
		a.Metadata = datatypes.JSONMap{}
	}
	return nil
}
