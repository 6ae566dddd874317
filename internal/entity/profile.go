package entity

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Profile is a child's progression record. TotalPoints only grows, Level is
// always derived from TotalPoints, and Achievements is append-only.
type Profile struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ParentID    uuid.UUID `gorm:"type:uuid;index;not null" json:"parent_id"`
	Parent      *User     `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE" json:"-"`
	DisplayName string    `gorm:"size:50;not null" json:"display_name"`
	Age         *int      `json:"age,omitempty"`

	TotalPoints   int `gorm:"not null;default:0;index" json:"total_points"`
	Level         int `gorm:"not null;default:1" json:"level"`
	CurrentStreak int `gorm:"not null;default:0" json:"current_streak"`
	LongestStreak int `gorm:"not null;default:0" json:"longest_streak"`

	Achievements   datatypes.JSONSlice[string] `json:"achievements"`
	BooksCompleted datatypes.JSONSlice[string] `json:"books_completed"`
	PagesColored   datatypes.JSONSlice[string] `json:"pages_colored"`

	EarlyMorningSessions int `gorm:"not null;default:0" json:"early_morning_sessions"`
	NightSessions        int `gorm:"not null;default:0" json:"night_sessions"`
	TotalLikesGiven      int `gorm:"not null;default:0" json:"total_likes_given"`

	// LastActivityDate is normalized to UTC midnight.
	LastActivityDate *time.Time `json:"last_activity_date,omitempty"`

	// Version guards read-modify-write updates of the counters above.
	Version int `gorm:"not null;default:0" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Level < 1 {
		p.Level = 1
	}
	if p.Achievements == nil {
		p.Achievements = datatypes.JSONSlice[string]{}
	}
	if p.BooksCompleted == nil {
		p.BooksCompleted = datatypes.JSONSlice[string]{}
	}
	if p.PagesColored == nil {
		p.PagesColored = datatypes.JSONSlice[string]{}
	}
	return nil
}

func (p *Profile) HasAchievement(id string) bool {
	return slices.Contains(p.Achievements, id)
}

// AddAchievement appends id unless already present. It reports whether the set grew.
func (p *Profile) AddAchievement(id string) bool {
	if p.HasAchievement(id) {
		return false
	}
	p.Achievements = append(p.Achievements, id)
	return true
}

// AddBook records a completed book once.
func (p *Profile) AddBook(bookID string) bool {
	if bookID == "" || slices.Contains(p.BooksCompleted, bookID) {
		return false
	}
	p.BooksCompleted = append(p.BooksCompleted, bookID)
	return true
}

// AddColoredPage records a colored page once.
func (p *Profile) AddColoredPage(pageID string) bool {
	if pageID == "" || slices.Contains(p.PagesColored, pageID) {
		return false
	}
	p.PagesColored = append(p.PagesColored, pageID)
	return true
}
