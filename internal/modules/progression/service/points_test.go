package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeBonus(t *testing.T) {
	tests := []struct {
		name       string
		streak     int
		level      int
		multiplier float64
		reasons    []string
	}{
		{"no bonus", 0, 1, 1.0, []string{}},
		{"week streak", 7, 1, 1.1, []string{ReasonWeekStreak}},
		{"month streak stacks", 30, 1, 1.3, []string{ReasonWeekStreak, ReasonMonthStreak}},
		{"high level", 0, 10, 1.05, []string{ReasonHighLevel}},
		{"everything", 30, 10, 1.35, []string{ReasonWeekStreak, ReasonMonthStreak, ReasonHighLevel}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := ComputeBonus(tt.streak, tt.level)
			assert.Equal(t, tt.multiplier, b.Multiplier())
			assert.Equal(t, tt.reasons, b.Reasons)
		})
	}
}

func TestBonusApply_RoundsHalfUp(t *testing.T) {
	assert.Equal(t, 135, ComputeBonus(30, 10).Apply(100))
	// 5 * 1.1 = 5.5
	assert.Equal(t, 6, ComputeBonus(7, 1).Apply(5))
	// 10 * 1.05 = 10.5
	assert.Equal(t, 11, ComputeBonus(0, 10).Apply(10))
	assert.Equal(t, 0, ComputeBonus(30, 10).Apply(0))
}

func TestLevelFromTotal(t *testing.T) {
	table := []int{0, 100, 250, 500}

	assert.Equal(t, 1, LevelFromTotal(0, table))
	assert.Equal(t, 1, LevelFromTotal(99, table))
	assert.Equal(t, 2, LevelFromTotal(100, table))
	assert.Equal(t, 3, LevelFromTotal(499, table))
	assert.Equal(t, 4, LevelFromTotal(500, table))
	assert.Equal(t, 4, LevelFromTotal(1_000_000, table))
	assert.Equal(t, 1, LevelFromTotal(50, nil))
}

func TestLevelFromTotal_DefaultTable(t *testing.T) {
	assert.Equal(t, 5, LevelFromTotal(1000, DefaultLevelThresholds))
	assert.Equal(t, 15, LevelFromTotal(25000, DefaultLevelThresholds))
	assert.Equal(t, 15, LevelFromTotal(99999, DefaultLevelThresholds))
}

func TestNextLevelTarget(t *testing.T) {
	table := []int{0, 100, 250}

	target, ok := NextLevelTarget(1, table)
	assert.True(t, ok)
	assert.Equal(t, 100, target)

	_, ok = NextLevelTarget(3, table)
	assert.False(t, ok)
}

func TestBasePoints(t *testing.T) {
	points, ok := BasePoints(ActivityBookCompleted)
	assert.True(t, ok)
	assert.Equal(t, 100, points)

	points, ok = BasePoints("juggling")
	assert.False(t, ok)
	assert.Zero(t, points)

	table := PointsTable()
	table[ActivityBookCompleted] = 1
	points, _ = BasePoints(ActivityBookCompleted)
	assert.Equal(t, 100, points)
}
