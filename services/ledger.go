package services

import (
	"time"

	"habit-battle-system/models"
)

// UndoWindow is how long after a grant an uncheck still refunds the XP.
const UndoWindow = 60 * time.Second

// ToggleCompletion flips date's completion state on h and returns the raw XP delta
// the toggle earns.
//
//   - uncheck inside UndoWindow of the grant: grant dropped, -CompletionXP
//   - uncheck after the window (or with no grant): grant kept, 0
//   - check with no grant for date: grant recorded at now, +CompletionXP
//   - check when the date was already paid: 0
//
// Streak counters are recomputed afterwards.
func ToggleCompletion(h *models.Habit, date string, now time.Time) int64 {
	if h.XPGrantedDates == nil {
		h.XPGrantedDates = models.XPGrants{}
	}

	var delta int64
	if h.IsCompletedOn(date) {
		h.UnmarkCompleted(date)
		if grantedAt, ok := h.XPGrantedDates[date]; ok && now.Sub(grantedAt) < UndoWindow {
			delete(h.XPGrantedDates, date)
			delta = -CompletionXP
		}
	} else {
		h.MarkCompleted(date)
		if _, paid := h.XPGrantedDates[date]; !paid {
			h.XPGrantedDates[date] = now
			delta = CompletionXP
		}
	}

	recomputeStreaks(h)
	return delta
}

// recomputeStreaks sets CurrentStreak to the number of completed dates (not a
// consecutive-day run) and keeps LongestStreak as its high-water mark.
func recomputeStreaks(h *models.Habit) {
	h.CurrentStreak = len(h.CompletedDates)
	if h.CurrentStreak > h.LongestStreak {
		h.LongestStreak = h.CurrentStreak
	}
}

// ParseDate validates a canonical YYYY-MM-DD date string.
func ParseDate(date string) (string, error) {
	t, err := time.Parse(models.DateLayout, date)
	if err != nil || t.Format(models.DateLayout) != date {
		return "", validationError("date must be in YYYY-MM-DD form")
	}
	return date, nil
}
