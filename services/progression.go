package services

import (
	"habit-battle-system/models"
)

// XP amounts and windows used across the completion ledger, Hell Week and battles.
const (
	CompletionXP         int64 = 15
	HellWeekXPBonus      int64 = 20 // added to the magnitude of every ledger delta while Hell Week is active
	HellWeekMinLevel           = 4
	HellWeekDays               = 7
	HellWeekSurrenderXP  int64 = 700
	HellWeekFailXP       int64 = 500
	HellWeekCompleteXP   int64 = 1000
	BattleSurrenderXP    int64 = 100
	DefaultBattleDays          = 7
	MaxBattleDays              = 365
)

// LevelThresholds[i] is the XP needed to reach level i+1.
var LevelThresholds = [...]int64{0, 100, 300, 600, 1000, 1500, 2100, 2800, 3600, 5000, 10000, 20000}

// LevelFor counts the thresholds met by xp, scanning upward and stopping at the
// first one not met. The minimum level is 1.
func LevelFor(xp int64) int {
	level := 0
	for _, threshold := range LevelThresholds {
		if xp < threshold {
			break
		}
		level++
	}
	if level < 1 {
		return 1
	}
	return level
}

// raiseLevel lifts user.Level to the policy level for its XP. It never lowers it.
func raiseLevel(u *models.User) bool {
	if lvl := LevelFor(u.PlatformXP); lvl > u.Level {
		u.Level = lvl
		return true
	}
	return false
}

// adjustXP adds delta to the balance, flooring at zero, and returns the applied change.
func adjustXP(u *models.User, delta int64) int64 {
	before := u.PlatformXP
	u.PlatformXP += delta
	if u.PlatformXP < 0 {
		u.PlatformXP = 0
	}
	return u.PlatformXP - before
}

// ApplyXPDelta applies a completion-ledger delta to the user. While Hell Week is
// active the magnitude grows by HellWeekXPBonus in the delta's direction. The balance
// is floored at zero and the level is only ever raised. Returns the adjusted delta.
func ApplyXPDelta(u *models.User, rawDelta int64) int64 {
	adjusted := rawDelta
	if u.HellWeek.IsActive {
		switch {
		case rawDelta > 0:
			adjusted = rawDelta + HellWeekXPBonus
		case rawDelta < 0:
			adjusted = rawDelta - HellWeekXPBonus
		}
	}
	adjustXP(u, adjusted)
	raiseLevel(u)
	return adjusted
}
