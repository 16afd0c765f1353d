package services

import (
	"context"
	"strings"

	"habit-battle-system/logger"
	"habit-battle-system/models"
	"habit-battle-system/repository"

	"github.com/google/uuid"
)

type HabitService struct {
	Repo    repository.Repository
	Clock   Clock
	Battles *BattleService
}

func NewHabitService(repo repository.Repository, battles *BattleService, clock Clock) *HabitService {
	return &HabitService{Repo: repo, Battles: battles, Clock: clockOrReal(clock)}
}

// CreateHabitInput carries the display fields of a new habit. A non-empty PartnerID
// turns the request into a battle invite.
type CreateHabitInput struct {
	Name              string `json:"name"`
	Rules             string `json:"rules"`
	Color             string `json:"color"`
	Reps              *int   `json:"reps"`
	Unit              string `json:"unit"`
	RepIncrement      *int   `json:"rep_increment"`
	IncrementSchedule string `json:"increment_schedule"`
	PartnerID         string `json:"partner_id"`
	BattleDuration    int    `json:"battle_duration"`
}

type UpdateHabitInput struct {
	Name              *string `json:"name"`
	Rules             *string `json:"rules"`
	Color             *string `json:"color"`
	Reps              *int    `json:"reps"`
	Unit              *string `json:"unit"`
	RepIncrement      *int    `json:"rep_increment"`
	IncrementSchedule *string `json:"increment_schedule"`
}

// ToggleResult is what a completion toggle reports back.
type ToggleResult struct {
	Habit      *models.Habit `json:"habit"`
	XPDelta    int64         `json:"xp_delta"`
	PlatformXP int64         `json:"platform_xp"`
	Level      int           `json:"level"`
}

func validateIncrementSchedule(s string) error {
	switch s {
	case "", "none", "daily", "weekly", "monthly":
		return nil
	}
	return validationError("increment_schedule must be one of none, daily, weekly, monthly")
}

func (in CreateHabitInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return validationError("name is required")
	}
	if in.Reps != nil && *in.Reps < 0 {
		return validationError("reps cannot be negative")
	}
	return validateIncrementSchedule(in.IncrementSchedule)
}

// newHabit builds a visible, active solo habit owned by userID.
func newHabit(userID string, in CreateHabitInput) *models.Habit {
	return &models.Habit{
		ID:                uuid.NewString(),
		UserID:            userID,
		Name:              strings.TrimSpace(in.Name),
		Rules:             in.Rules,
		Color:             in.Color,
		CompletedDates:    []string{},
		XPGrantedDates:    models.XPGrants{},
		Reps:              in.Reps,
		Unit:              in.Unit,
		RepIncrement:      in.RepIncrement,
		IncrementSchedule: in.IncrementSchedule,
		Type:              models.HabitTypeSolo,
		BattleStatus:      models.BattleActive,
		IsVisible:         true,
	}
}

// Create makes a solo habit, or a battle pair when PartnerID is set.
// The returned habit is always the caller's record.
func (s *HabitService) Create(ctx context.Context, userID string, in CreateHabitInput) (*models.Habit, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.PartnerID != "" {
		return s.Battles.Create(ctx, userID, in)
	}

	if _, err := s.Repo.FindUserByID(ctx, userID); err != nil {
		return nil, lookupError("user", err)
	}
	h := newHabit(userID, in)
	h.CreatedAt = s.Clock.Now()
	if err := s.Repo.InsertHabit(ctx, h); err != nil {
		return nil, internalError("failed to create habit", err)
	}
	return h, nil
}

// ownedHabit loads a habit and hides it from anyone but its owner.
func ownedHabit(ctx context.Context, repo repository.Repository, userID, habitID string) (*models.Habit, error) {
	h, err := repo.FindHabitByID(ctx, habitID)
	if err != nil {
		return nil, lookupError("habit", err)
	}
	if h.UserID != userID {
		return nil, notFoundError("habit not found")
	}
	return h, nil
}

// List is the habit feed: visible habits minus completed battles.
func (s *HabitService) List(ctx context.Context, userID string) ([]models.Habit, error) {
	habits, err := s.Repo.FindHabits(ctx, repository.HabitFilter{UserID: userID, VisibleOnly: true})
	if err != nil {
		return nil, internalError("failed to list habits", err)
	}
	feed := make([]models.Habit, 0, len(habits))
	for _, h := range habits {
		if h.IsBattle() && h.BattleStatus == models.BattleCompleted {
			continue
		}
		feed = append(feed, h)
	}
	return feed, nil
}

func (s *HabitService) Update(ctx context.Context, userID, habitID string, in UpdateHabitInput) (*models.Habit, error) {
	h, err := ownedHabit(ctx, s.Repo, userID, habitID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, validationError("name cannot be empty")
		}
		h.Name = name
	}
	if in.Rules != nil {
		h.Rules = *in.Rules
	}
	if in.Color != nil {
		h.Color = *in.Color
	}
	if in.Reps != nil {
		if *in.Reps < 0 {
			return nil, validationError("reps cannot be negative")
		}
		h.Reps = in.Reps
	}
	if in.Unit != nil {
		h.Unit = *in.Unit
	}
	if in.RepIncrement != nil {
		h.RepIncrement = in.RepIncrement
	}
	if in.IncrementSchedule != nil {
		if err := validateIncrementSchedule(*in.IncrementSchedule); err != nil {
			return nil, err
		}
		h.IncrementSchedule = *in.IncrementSchedule
	}
	if err := s.Repo.SaveHabit(ctx, h); err != nil {
		return nil, internalError("failed to save habit", err)
	}
	return h, nil
}

// Delete removes a habit. Battle records still in play must go through
// cancel, respond or surrender instead.
func (s *HabitService) Delete(ctx context.Context, userID, habitID string) error {
	h, err := ownedHabit(ctx, s.Repo, userID, habitID)
	if err != nil {
		return err
	}
	if h.IsBattle() {
		switch h.BattleStatus {
		case models.BattleWaiting, models.BattlePending, models.BattleActive:
			return preconditionError("battle is still %s; cancel, respond or surrender instead", h.BattleStatus)
		}
	}
	if err := s.Repo.DeleteHabit(ctx, h.ID); err != nil {
		return lookupError("habit", err)
	}
	return nil
}

// Toggle flips one date on the caller's habit and settles the XP it earns or refunds.
func (s *HabitService) Toggle(ctx context.Context, userID, habitID, date string) (*ToggleResult, error) {
	date, err := ParseDate(date)
	if err != nil {
		return nil, err
	}
	now := s.Clock.Now()

	var result ToggleResult
	err = s.Repo.Transaction(ctx, func(repo repository.Repository) error {
		h, err := ownedHabit(ctx, repo, userID, habitID)
		if err != nil {
			return err
		}
		raw := ToggleCompletion(h, date, now)
		if err := repo.SaveHabit(ctx, h); err != nil {
			return internalError("failed to save habit", err)
		}

		u, err := repo.FindUserByID(ctx, userID)
		if err != nil {
			return lookupError("user", err)
		}
		if raw != 0 {
			result.XPDelta = ApplyXPDelta(u, raw)
			if err := repo.SaveUser(ctx, u); err != nil {
				return internalError("failed to save user", err)
			}
		}
		result.Habit = h
		result.PlatformXP = u.PlatformXP
		result.Level = u.Level
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("[HABIT] toggled", "habit_id", habitID, "date", date, "xp_delta", result.XPDelta)
	return &result, nil
}
