package services

import (
	"context"
	"errors"
	"time"

	"habit-battle-system/logger"
	"habit-battle-system/models"
	"habit-battle-system/repository"

	"github.com/google/uuid"
)

type BattleResponse string

const (
	BattleAccept BattleResponse = "accept"
	BattleReject BattleResponse = "reject"
)

// BattleService runs the two-record battle lifecycle. Every paired mutation goes
// through Repo.Transaction so both records move together where the store supports it.
type BattleService struct {
	Repo  repository.Repository
	Clock Clock
}

func NewBattleService(repo repository.Repository, clock Clock) *BattleService {
	return &BattleService{Repo: repo, Clock: clockOrReal(clock)}
}

// UserSummary is the public face of another user.
type UserSummary struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	FriendCode  string `json:"friend_code,omitempty"`
	Level       int    `json:"level"`
	MonsterType string `json:"monster_type"`
}

func summarize(u *models.User) UserSummary {
	s := UserSummary{ID: u.ID, Username: u.Username, Level: u.Level, MonsterType: u.MonsterType}
	if u.FriendCode != nil {
		s.FriendCode = *u.FriendCode
	}
	return s
}

// BattleRequest is a hidden pending invite addressed to the caller.
type BattleRequest struct {
	Habit models.Habit `json:"habit"`
	From  UserSummary  `json:"from"`
}

// BattleView is one of the caller's battle records plus the opponent's progress.
type BattleView struct {
	Habit               models.Habit `json:"habit"`
	Opponent            *UserSummary `json:"opponent,omitempty"`
	OpponentCompletions int          `json:"opponent_completions"`
	EndsAt              *time.Time   `json:"ends_at,omitempty"`
}

type SurrenderResult struct {
	Habit      *models.Habit `json:"habit"`
	XPDelta    int64         `json:"xp_delta"`
	PlatformXP int64         `json:"platform_xp"`
	Level      int           `json:"level"`
}

func battleDuration(days int) (int, error) {
	if days == 0 {
		return DefaultBattleDays, nil
	}
	if days < 1 || days > MaxBattleDays {
		return 0, validationError("battle_duration must be between 1 and %d days", MaxBattleDays)
	}
	return days, nil
}

// Create writes the battle pair: the creator's record (waiting, visible) and the
// partner's invite (pending, hidden), linked by a fresh group token.
func (s *BattleService) Create(ctx context.Context, creatorID string, in CreateHabitInput) (*models.Habit, error) {
	if in.PartnerID == creatorID {
		return nil, validationError("cannot start a battle with yourself")
	}
	days, err := battleDuration(in.BattleDuration)
	if err != nil {
		return nil, err
	}
	if _, err := s.Repo.FindUserByID(ctx, creatorID); err != nil {
		return nil, lookupError("user", err)
	}
	if _, err := s.Repo.FindUserByID(ctx, in.PartnerID); err != nil {
		return nil, lookupError("partner", err)
	}

	group := uuid.NewString()
	now := s.Clock.Now()
	partnerID := in.PartnerID

	mine := newHabit(creatorID, in)
	mine.Type = models.HabitTypeBattle
	mine.BattleStatus = models.BattleWaiting
	mine.BattleDuration = days
	mine.PartnerID = &partnerID
	mine.SharedGroupID = &group
	mine.IsVisible = true
	mine.CreatedAt = now

	theirs := newHabit(partnerID, in)
	theirs.Type = models.HabitTypeBattle
	theirs.BattleStatus = models.BattlePending
	theirs.BattleDuration = days
	theirs.PartnerID = &creatorID
	theirs.SharedGroupID = &group
	theirs.IsVisible = false
	theirs.CreatedAt = now

	err = s.Repo.Transaction(ctx, func(repo repository.Repository) error {
		if err := repo.InsertHabit(ctx, mine); err != nil {
			return err
		}
		return repo.InsertHabit(ctx, theirs)
	})
	if err != nil {
		return nil, internalError("failed to create battle", err)
	}

	logger.Info("[BATTLE] invite sent", "group", group, "creator", creatorID, "partner", partnerID, "days", days)
	return mine, nil
}

// ownedBattle loads the caller's battle record.
func ownedBattle(ctx context.Context, repo repository.Repository, userID, habitID string) (*models.Habit, error) {
	h, err := ownedHabit(ctx, repo, userID, habitID)
	if err != nil {
		return nil, err
	}
	if !h.IsBattle() || h.SharedGroupID == nil {
		return nil, preconditionError("habit is not a battle")
	}
	return h, nil
}

// counterpart finds the other record of h's battle group.
func counterpart(ctx context.Context, repo repository.Repository, h *models.Habit) (*models.Habit, error) {
	pair, err := repo.FindHabits(ctx, repository.HabitFilter{SharedGroupID: *h.SharedGroupID})
	if err != nil {
		return nil, internalError("failed to load battle", err)
	}
	for i := range pair {
		if pair[i].ID != h.ID {
			return &pair[i], nil
		}
	}
	return nil, notFoundError("battle partner record not found")
}

func transitionError(err error) error {
	var illegal models.IllegalTransitionError
	if errors.As(err, &illegal) {
		return preconditionError("%s", illegal.Error())
	}
	return err
}

// Respond accepts or rejects a pending invite. Accept activates both records with a
// shared start date and returns the caller's record. Reject deletes the caller's record,
// marks the creator's record rejected and returns nil.
func (s *BattleService) Respond(ctx context.Context, userID, habitID string, action BattleResponse) (*models.Habit, error) {
	if action != BattleAccept && action != BattleReject {
		return nil, validationError("action must be accept or reject")
	}

	var result *models.Habit
	err := s.Repo.Transaction(ctx, func(repo repository.Repository) error {
		h, err := ownedBattle(ctx, repo, userID, habitID)
		if err != nil {
			return err
		}
		if h.BattleStatus != models.BattlePending {
			return preconditionError("no pending battle invite to respond to")
		}
		other, err := counterpart(ctx, repo, h)
		if err != nil {
			return err
		}

		if action == BattleReject {
			if err := other.TransitionBattle(models.BattleRejected); err != nil {
				return transitionError(err)
			}
			if err := repo.DeleteHabit(ctx, h.ID); err != nil {
				return internalError("failed to delete invite", err)
			}
			if err := repo.SaveHabit(ctx, other); err != nil {
				return internalError("failed to save battle", err)
			}
			return nil
		}

		start := s.Clock.Now()
		for _, rec := range []*models.Habit{h, other} {
			if err := rec.TransitionBattle(models.BattleActive); err != nil {
				return transitionError(err)
			}
			rec.IsVisible = true
			rec.BattleStartDate = &start
		}
		if err := repo.SaveHabit(ctx, h); err != nil {
			return internalError("failed to save battle", err)
		}
		if err := repo.SaveHabit(ctx, other); err != nil {
			return internalError("failed to save battle", err)
		}
		result = h
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("[BATTLE] invite answered", "habit_id", habitID, "user_id", userID, "action", action)
	return result, nil
}

// Cancel withdraws an unanswered invite; both records are deleted.
func (s *BattleService) Cancel(ctx context.Context, userID, habitID string) error {
	h, err := ownedBattle(ctx, s.Repo, userID, habitID)
	if err != nil {
		return err
	}
	if h.BattleStatus != models.BattleWaiting {
		return preconditionError("only an unanswered invite can be cancelled")
	}
	n, err := s.Repo.DeleteHabitsByGroup(ctx, *h.SharedGroupID)
	if err != nil {
		return internalError("failed to cancel battle", err)
	}
	logger.Info("[BATTLE] invite cancelled", "group", *h.SharedGroupID, "deleted", n)
	return nil
}

// Surrender ends an active battle immediately. Both records complete with the other
// participant as winner and the surrendering user loses BattleSurrenderXP (floored at 0).
func (s *BattleService) Surrender(ctx context.Context, userID, habitID string) (*SurrenderResult, error) {
	now := s.Clock.Now()

	var result SurrenderResult
	err := s.Repo.Transaction(ctx, func(repo repository.Repository) error {
		h, err := ownedBattle(ctx, repo, userID, habitID)
		if err != nil {
			return err
		}
		if h.BattleStatus != models.BattleActive {
			return preconditionError("only an active battle can be surrendered")
		}
		if battleExpired(h, now) {
			return preconditionError("battle has already ended")
		}
		other, err := counterpart(ctx, repo, h)
		if err != nil {
			return err
		}
		u, err := repo.FindUserByID(ctx, userID)
		if err != nil {
			return lookupError("user", err)
		}

		winner := other.UserID
		for _, rec := range []*models.Habit{h, other} {
			if err := rec.TransitionBattle(models.BattleCompleted); err != nil {
				return transitionError(err)
			}
			rec.BattleWinner = &winner
		}
		result.XPDelta = adjustXP(u, -BattleSurrenderXP)

		if err := repo.SaveHabit(ctx, h); err != nil {
			return internalError("failed to save battle", err)
		}
		if err := repo.SaveHabit(ctx, other); err != nil {
			return internalError("failed to save battle", err)
		}
		if err := repo.SaveUser(ctx, u); err != nil {
			return internalError("failed to save user", err)
		}
		result.Habit = h
		result.PlatformXP = u.PlatformXP
		result.Level = u.Level
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("[BATTLE] surrendered", "habit_id", habitID, "user_id", userID, "winner", *result.Habit.BattleWinner)
	return &result, nil
}

func battleExpired(h *models.Habit, now time.Time) bool {
	end, ok := h.BattleEndsAt()
	return ok && now.After(end)
}

// ExpireBattle completes an active battle record whose duration has elapsed.
// No winner is assigned. Returns false (and changes nothing) otherwise.
func ExpireBattle(h *models.Habit, now time.Time) bool {
	if !h.IsBattle() || h.BattleStatus != models.BattleActive || !battleExpired(h, now) {
		return false
	}
	return h.TransitionBattle(models.BattleCompleted) == nil
}

func (s *BattleService) sweep(ctx context.Context, f repository.HabitFilter) (int, error) {
	f.Type = models.HabitTypeBattle
	f.Statuses = []models.BattleStatus{models.BattleActive}
	active, err := s.Repo.FindHabits(ctx, f)
	if err != nil {
		return 0, internalError("failed to load active battles", err)
	}
	now := s.Clock.Now()
	expired := 0
	for i := range active {
		h := &active[i]
		if !ExpireBattle(h, now) {
			continue
		}
		if err := s.Repo.SaveHabit(ctx, h); err != nil {
			return expired, internalError("failed to complete expired battle", err)
		}
		expired++
	}
	return expired, nil
}

// SweepUser completes the caller's expired battle records.
func (s *BattleService) SweepUser(ctx context.Context, userID string) (int, error) {
	return s.sweep(ctx, repository.HabitFilter{UserID: userID})
}

// SweepAll completes every expired battle record in the store.
func (s *BattleService) SweepAll(ctx context.Context) (int, error) {
	return s.sweep(ctx, repository.HabitFilter{})
}

// ListBattles sweeps the caller's battles, then returns every visible battle record.
func (s *BattleService) ListBattles(ctx context.Context, userID string) ([]BattleView, error) {
	if _, err := s.SweepUser(ctx, userID); err != nil {
		return nil, err
	}
	habits, err := s.Repo.FindHabits(ctx, repository.HabitFilter{
		UserID:      userID,
		Type:        models.HabitTypeBattle,
		VisibleOnly: true,
	})
	if err != nil {
		return nil, internalError("failed to list battles", err)
	}

	opponents, err := s.loadPartners(ctx, habits)
	if err != nil {
		return nil, err
	}

	views := make([]BattleView, 0, len(habits))
	for i := range habits {
		h := habits[i]
		v := BattleView{Habit: h}
		if end, ok := h.BattleEndsAt(); ok {
			v.EndsAt = &end
		}
		if h.PartnerID != nil {
			if opp, ok := opponents[*h.PartnerID]; ok {
				v.Opponent = &opp
			}
		}
		if h.SharedGroupID != nil {
			other, err := counterpart(ctx, s.Repo, &h)
			if err == nil {
				v.OpponentCompletions = len(other.CompletedDates)
			} else if KindOf(err) != KindNotFound {
				return nil, err
			}
		}
		views = append(views, v)
	}
	return views, nil
}

// ListRequests returns pending invites addressed to the caller.
func (s *BattleService) ListRequests(ctx context.Context, userID string) ([]BattleRequest, error) {
	habits, err := s.Repo.FindHabits(ctx, repository.HabitFilter{
		UserID:   userID,
		Type:     models.HabitTypeBattle,
		Statuses: []models.BattleStatus{models.BattlePending},
	})
	if err != nil {
		return nil, internalError("failed to list battle requests", err)
	}
	senders, err := s.loadPartners(ctx, habits)
	if err != nil {
		return nil, err
	}

	requests := make([]BattleRequest, 0, len(habits))
	for _, h := range habits {
		req := BattleRequest{Habit: h}
		if h.PartnerID != nil {
			req.From = senders[*h.PartnerID]
		}
		requests = append(requests, req)
	}
	return requests, nil
}

func (s *BattleService) loadPartners(ctx context.Context, habits []models.Habit) (map[string]UserSummary, error) {
	seen := map[string]bool{}
	ids := []string{}
	for _, h := range habits {
		if h.PartnerID != nil && !seen[*h.PartnerID] {
			seen[*h.PartnerID] = true
			ids = append(ids, *h.PartnerID)
		}
	}
	users, err := s.Repo.FindUsersByIDs(ctx, ids)
	if err != nil {
		return nil, internalError("failed to load battle partners", err)
	}
	out := make(map[string]UserSummary, len(users))
	for i := range users {
		out[users[i].ID] = summarize(&users[i])
	}
	return out, nil
}
