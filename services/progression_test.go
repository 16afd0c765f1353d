package services

import (
	"testing"

	"habit-battle-system/models"

	"github.com/stretchr/testify/assert"
)

func TestLevelFor(t *testing.T) {
	tests := []struct {
		xp   int64
		want int
	}{
		{xp: 0, want: 1},
		{xp: 99, want: 1},
		{xp: 100, want: 2},
		{xp: 299, want: 2},
		{xp: 300, want: 3},
		{xp: 600, want: 4},
		{xp: 5000, want: 10},
		{xp: 19999, want: 11},
		{xp: 20000, want: 12},
		{xp: 1_000_000, want: 12},
		{xp: -5, want: 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelFor(tt.xp), "xp=%d", tt.xp)
	}
}

func TestLevelForIsMonotonic(t *testing.T) {
	prev := LevelFor(0)
	for xp := int64(1); xp <= 25000; xp += 7 {
		lvl := LevelFor(xp)
		assert.GreaterOrEqual(t, lvl, prev, "xp=%d", xp)
		prev = lvl
	}
}

func TestApplyXPDeltaNeverBelowZero(t *testing.T) {
	u := &models.User{PlatformXP: 10, Level: 1}
	assert.Equal(t, int64(-15), ApplyXPDelta(u, -CompletionXP))
	assert.Equal(t, int64(0), u.PlatformXP)

	u = &models.User{PlatformXP: 10, Level: 1, HellWeek: models.HellWeek{IsActive: true}}
	assert.Equal(t, int64(-35), ApplyXPDelta(u, -CompletionXP))
	assert.Equal(t, int64(0), u.PlatformXP)
}

func TestApplyXPDeltaHellWeekInflation(t *testing.T) {
	u := &models.User{Level: 1, HellWeek: models.HellWeek{IsActive: true}}
	assert.Equal(t, int64(35), ApplyXPDelta(u, CompletionXP))
	assert.Equal(t, int64(35), u.PlatformXP)

	assert.Equal(t, int64(0), ApplyXPDelta(u, 0))
	assert.Equal(t, int64(35), u.PlatformXP)
}

func TestApplyXPDeltaOnlyRaisesLevel(t *testing.T) {
	u := &models.User{PlatformXP: 90, Level: 1}
	ApplyXPDelta(u, CompletionXP)
	assert.Equal(t, 2, u.Level)

	u = &models.User{PlatformXP: 0, Level: 7}
	ApplyXPDelta(u, CompletionXP)
	assert.Equal(t, 7, u.Level)

	u = &models.User{PlatformXP: 110, Level: 2}
	ApplyXPDelta(u, -CompletionXP)
	assert.Equal(t, int64(95), u.PlatformXP)
	assert.Equal(t, 2, u.Level)
}
