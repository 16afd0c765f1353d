package services

import (
	"testing"
	"time"

	"habit-battle-system/models"

	"github.com/stretchr/testify/assert"
)

const day = "2024-03-01"

func TestToggleUndoInsideWindowNetsZero(t *testing.T) {
	h := &models.Habit{}

	assert.Equal(t, CompletionXP, ToggleCompletion(h, day, testEpoch))
	assert.True(t, h.IsCompletedOn(day))

	assert.Equal(t, -CompletionXP, ToggleCompletion(h, day, testEpoch.Add(30*time.Second)))
	assert.False(t, h.IsCompletedOn(day))
	assert.NotContains(t, h.XPGrantedDates, day)
}

func TestToggleLateUncheckKeepsXPAndGrant(t *testing.T) {
	h := &models.Habit{}
	ToggleCompletion(h, day, testEpoch)

	assert.Equal(t, int64(0), ToggleCompletion(h, day, testEpoch.Add(61*time.Second)))
	assert.False(t, h.IsCompletedOn(day))
	assert.Contains(t, h.XPGrantedDates, day)

	// re-checking an already paid date never pays again
	assert.Equal(t, int64(0), ToggleCompletion(h, day, testEpoch.Add(2*time.Minute)))
	assert.True(t, h.IsCompletedOn(day))
	assert.True(t, h.XPGrantedDates[day].Equal(testEpoch))
}

func TestToggleUndoWindowBoundary(t *testing.T) {
	h := &models.Habit{}
	ToggleCompletion(h, day, testEpoch)
	assert.Equal(t, int64(0), ToggleCompletion(h, day, testEpoch.Add(UndoWindow)))
}

func TestToggleLegacyGrantIsNeverRefunded(t *testing.T) {
	h := &models.Habit{
		CompletedDates: []string{day},
		XPGrantedDates: models.XPGrants{day: time.Time{}},
	}
	assert.Equal(t, int64(0), ToggleCompletion(h, day, testEpoch))
	assert.Contains(t, h.XPGrantedDates, day)
}

func TestToggleRecomputesStreaks(t *testing.T) {
	h := &models.Habit{}
	for _, d := range []string{"2024-03-03", "2024-03-01", "2024-03-02"} {
		ToggleCompletion(h, d, testEpoch)
	}
	assert.Equal(t, []string{"2024-03-01", "2024-03-02", "2024-03-03"}, h.CompletedDates)
	assert.Equal(t, 3, h.CurrentStreak)
	assert.Equal(t, 3, h.LongestStreak)

	ToggleCompletion(h, "2024-03-02", testEpoch.Add(time.Hour))
	assert.Equal(t, 2, h.CurrentStreak)
	assert.Equal(t, 3, h.LongestStreak)
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-02-29")
	assert.NoError(t, err)
	assert.Equal(t, "2024-02-29", got)

	for _, bad := range []string{"", "2024-2-3", "2023-02-29", "03/01/2024", "2024-03-01T00:00:00Z"} {
		_, err := ParseDate(bad)
		assert.Equal(t, KindValidation, KindOf(err), "date=%q", bad)
	}
}
