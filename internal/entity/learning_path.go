package entity

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	PathStatusActive    = "active"
	PathStatusCompleted = "completed"
)

const (
	TrendImproving  = "improving"
	TrendStable     = "stable"
	TrendStruggling = "struggling"
)

// Branch conditions understood by the path state machine.
const (
	ConditionScoreHigh   = "score_high"
	ConditionScoreMedium = "score_medium"
	ConditionScoreLow    = "score_low"
)

// BranchOption routes to NextActivityID when Condition matches the submitted score.
type BranchOption struct {
	Condition      string `json:"condition"`
	NextActivityID string `json:"next_activity_id"`
}

// PathActivity is one node of a learning path. Nodes are immutable once the path exists.
type PathActivity struct {
	ID               string         `json:"id"`
	Type             string         `json:"type"`
	Title            string         `json:"title"`
	Description      string         `json:"description,omitempty"`
	Difficulty       string         `json:"difficulty,omitempty"`
	EstimatedMinutes int            `json:"estimated_minutes,omitempty"`
	Required         bool           `json:"required"`
	UnlockCondition  string         `json:"unlock_condition,omitempty"`
	BranchingOptions []BranchOption `json:"branching_options,omitempty"`
}

type LearningPath struct {
	ID          uuid.UUID                         `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileID   uuid.UUID                         `gorm:"type:uuid;not null;index" json:"profile_id"`
	Profile     *Profile                          `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE" json:"-"`
	Title       string                            `gorm:"size:150;not null" json:"title"`
	Topic       string                            `gorm:"size:100" json:"topic"`
	Source      string                            `gorm:"size:20" json:"source"` // "template" or "llm"
	Difficulty  string                            `gorm:"size:20" json:"difficulty"`
	Activities  datatypes.JSONSlice[PathActivity] `json:"activities"`
	Status      string                            `gorm:"size:20;not null;default:active" json:"status"`
	CompletedAt *time.Time                        `json:"completed_at,omitempty"`
	CreatedAt   time.Time                         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time                         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *LearningPath) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = PathStatusActive
	}
	return nil
}

// IndexOf returns the position of the activity with id, or -1.
func (p *LearningPath) IndexOf(id string) int {
	return slices.IndexFunc(p.Activities, func(a PathActivity) bool { return a.ID == id })
}

// Activity returns the node with id.
func (p *LearningPath) Activity(id string) (*PathActivity, bool) {
	i := p.IndexOf(id)
	if i < 0 {
		return nil, false
	}
	return &p.Activities[i], true
}

func (p *LearningPath) IsCompleted() bool {
	return p.Status == PathStatusCompleted
}

// PathProgress tracks one profile's advancement through one path.
type PathProgress struct {
	ID                   uuid.UUID                              `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileID            uuid.UUID                              `gorm:"type:uuid;not null;uniqueIndex:idx_progress_profile_path,priority:1" json:"profile_id"`
	PathID               uuid.UUID                              `gorm:"type:uuid;not null;uniqueIndex:idx_progress_profile_path,priority:2" json:"path_id"`
	Path                 *LearningPath                          `gorm:"foreignKey:PathID;constraint:OnDelete:CASCADE" json:"-"`
	CompletedActivities  datatypes.JSONSlice[string]            `json:"completed_activities"`
	ActivityScores       datatypes.JSONType[map[string]float64] `json:"activity_scores"`
	TimeSpentPerActivity datatypes.JSONType[map[string]int]     `json:"time_spent_per_activity"`
	CurrentActivityID    string                                 `gorm:"size:100" json:"current_activity_id"`
	ProgressPercentage   float64                                `gorm:"not null;default:0" json:"progress_percentage"`
	PerformanceTrend     string                                 `gorm:"size:20;not null;default:stable" json:"performance_trend"`
	Version              int                                    `gorm:"not null;default:0" json:"-"`
	CreatedAt            time.Time                              `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time                              `gorm:"autoUpdateTime" json:"updated_at"`
}

// NewPathProgress returns the empty progress record created alongside a path.
func NewPathProgress(path *LearningPath) *PathProgress {
	progress := &PathProgress{
		ProfileID:            path.ProfileID,
		PathID:               path.ID,
		CompletedActivities:  datatypes.JSONSlice[string]{},
		ActivityScores:       datatypes.NewJSONType(map[string]float64{}),
		TimeSpentPerActivity: datatypes.NewJSONType(map[string]int{}),
		PerformanceTrend:     TrendStable,
	}
	if len(path.Activities) > 0 {
		progress.CurrentActivityID = path.Activities[0].ID
	}
	return progress
}

func (p *PathProgress) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CompletedActivities == nil {
		p.CompletedActivities = datatypes.JSONSlice[string]{}
	}
	if p.ActivityScores.Data() == nil {
		p.ActivityScores = datatypes.NewJSONType(map[string]float64{})
	}
	if p.TimeSpentPerActivity.Data() == nil {
		p.TimeSpentPerActivity = datatypes.NewJSONType(map[string]int{})
	}
	if p.PerformanceTrend == "" {
		p.PerformanceTrend = TrendStable
	}
	return nil
}

// Scores returns the score map, never nil.
func (p *PathProgress) Scores() map[string]float64 {
	scores := p.ActivityScores.Data()
	if scores == nil {
		scores = map[string]float64{}
		p.ActivityScores = datatypes.NewJSONType(scores)
	}
	return scores
}

// TimeSpent returns the time-spent map, never nil.
func (p *PathProgress) TimeSpent() map[string]int {
	spent := p.TimeSpentPerActivity.Data()
	if spent == nil {
		spent = map[string]int{}
		p.TimeSpentPerActivity = datatypes.NewJSONType(spent)
	}
	return spent
}

func (p *PathProgress) HasCompleted(activityID string) bool {
	return slices.Contains(p.CompletedActivities, activityID)
}
