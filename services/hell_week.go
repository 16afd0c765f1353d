package services

import (
	"context"

	"habit-battle-system/logger"
	"habit-battle-system/models"
)

type HellWeekAction string

const (
	HellWeekStart     HellWeekAction = "start"
	HellWeekSurrender HellWeekAction = "surrender"
	HellWeekFail      HellWeekAction = "fail"
	HellWeekComplete  HellWeekAction = "complete"
)

// HellWeekService drives the Hell Week state on the user entity.
type HellWeekService struct {
	Users *UserService
	Clock Clock
}

func NewHellWeekService(users *UserService, clock Clock) *HellWeekService {
	return &HellWeekService{Users: users, Clock: clockOrReal(clock)}
}

// ApplyHellWeek runs one Hell Week action on u in memory.
//
//	start:     Inactive -> Active, requires level >= HellWeekMinLevel; target = start + 7 days
//	surrender: Active -> Inactive, XP -= 700 (floored), level untouched
//	fail:      Active -> Inactive, XP -= 500 (floored), level untouched
//	complete:  Active -> Inactive, XP += 1000, level raised to match
func ApplyHellWeek(u *models.User, action HellWeekAction, now Clock) error {
	hw := &u.HellWeek
	switch action {
	case HellWeekStart:
		if hw.IsActive {
			return preconditionError("hell week is already active")
		}
		if u.Level < HellWeekMinLevel {
			return preconditionError("hell week unlocks at level %d", HellWeekMinLevel)
		}
		start := now.Now()
		target := start.AddDate(0, 0, HellWeekDays)
		hw.IsActive = true
		hw.StartDate = &start
		hw.TargetDate = &target
		return nil
	case HellWeekSurrender, HellWeekFail, HellWeekComplete:
		if !hw.IsActive {
			return preconditionError("hell week is not active")
		}
	default:
		return validationError("action must be one of start, surrender, fail, complete")
	}

	switch action {
	case HellWeekSurrender:
		adjustXP(u, -HellWeekSurrenderXP)
	case HellWeekFail:
		adjustXP(u, -HellWeekFailXP)
	case HellWeekComplete:
		adjustXP(u, HellWeekCompleteXP)
		raiseLevel(u)
	}
	hw.IsActive = false
	hw.StartDate = nil
	hw.TargetDate = nil
	return nil
}

// Apply loads the user, runs action and persists the result.
func (s *HellWeekService) Apply(ctx context.Context, userID string, action HellWeekAction) (*models.User, error) {
	u, err := s.Users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := ApplyHellWeek(u, action, s.Clock); err != nil {
		return nil, err
	}
	if err := s.Users.Repo.SaveUser(ctx, u); err != nil {
		return nil, internalError("failed to save user", err)
	}
	logger.Info("[HELL_WEEK] action applied", "user_id", u.ID, "action", action, "xp", u.PlatformXP, "level", u.Level)
	return u, nil
}
