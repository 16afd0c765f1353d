package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// DateLayout is the canonical calendar-date form used for completions.
const DateLayout = "2006-01-02"

type HabitType string

const (
	HabitTypeSolo   HabitType = "solo"
	HabitTypeBattle HabitType = "battle"
)

// BattleStatus is the lifecycle state of one side of a battle.
// Solo habits carry BattleActive and never transition.
type BattleStatus string

const (
	BattleWaiting   BattleStatus = "waiting" // creator, invite sent
	BattlePending   BattleStatus = "pending" // invitee, invite not yet answered
	BattleActive    BattleStatus = "active"
	BattleCompleted BattleStatus = "completed"
	BattleRejected  BattleStatus = "rejected"
)

// Deletions (cancel, reject on the invitee side) are not transitions and are not listed here.
var battleTransitions = map[BattleStatus][]BattleStatus{
	BattleWaiting: {BattleActive, BattleRejected},
	BattlePending: {BattleActive},
	BattleActive:  {BattleCompleted},
}

func (s BattleStatus) CanTransitionTo(next BattleStatus) bool {
	for _, allowed := range battleTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IllegalTransitionError is returned when a battle record is asked to move along an edge
// that is not in the transition table (e.g. completed -> active).
type IllegalTransitionError struct {
	From BattleStatus
	To   BattleStatus
}

func (e IllegalTransitionError) Error() string {
	return fmt.Sprintf("battle cannot move from %s to %s", e.From, e.To)
}

// XPGrants maps a completion date to the moment XP was paid for it.
// A date stays here after a late uncheck so the same date is never paid twice.
type XPGrants map[string]time.Time

// UnmarshalJSON accepts the canonical object form and the two legacy array shapes:
// bare date strings and {"date", "grantedAt"} records. Bare strings carry no grant
// time and decode to the zero time, which is never inside the undo window.
func (g *XPGrants) UnmarshalJSON(data []byte) error {
	var canonical map[string]time.Time
	if err := json.Unmarshal(data, &canonical); err == nil {
		*g = canonical
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("xp grants: unsupported shape: %w", err)
	}

	out := make(XPGrants, len(raw))
	for _, item := range raw {
		var date string
		if err := json.Unmarshal(item, &date); err == nil {
			if _, exists := out[date]; !exists {
				out[date] = time.Time{}
			}
			continue
		}
		var rec struct {
			Date      string    `json:"date"`
			GrantedAt time.Time `json:"grantedAt"`
		}
		if err := json.Unmarshal(item, &rec); err != nil {
			return fmt.Errorf("xp grants: bad legacy entry %s: %w", string(item), err)
		}
		out[rec.Date] = rec.GrantedAt
	}
	*g = out
	return nil
}

// Habit is one tracked habit. A battle is represented by two Habit rows, one per
// participant, sharing SharedGroupID.
type Habit struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"type:uuid;index;not null" json:"user_id"`
	Name   string `gorm:"not null" json:"name"`
	Rules  string `gorm:"type:text" json:"rules,omitempty"`
	Color  string `gorm:"type:varchar(32)" json:"color"`

	CompletedDates []string `gorm:"serializer:json;type:jsonb" json:"completed_dates"`
	XPGrantedDates XPGrants `gorm:"serializer:json;type:jsonb" json:"xp_granted_dates"`
	CurrentStreak  int      `gorm:"not null;default:0" json:"current_streak"`
	LongestStreak  int      `gorm:"not null;default:0" json:"longest_streak"`

	// Rep-based quantification; stored and returned, not used by the completion ledger.
	Reps              *int   `json:"reps,omitempty"`
	Unit              string `gorm:"type:varchar(32)" json:"unit,omitempty"`
	RepIncrement      *int   `json:"rep_increment,omitempty"`
	IncrementSchedule string `gorm:"type:varchar(16)" json:"increment_schedule,omitempty"`

	// Social / battle
	PartnerID       *string      `gorm:"type:uuid" json:"partner_id,omitempty"`
	SharedGroupID   *string      `gorm:"type:uuid;index" json:"shared_group_id,omitempty"`
	Type            HabitType    `gorm:"type:varchar(16);not null" json:"type"`
	BattleStatus    BattleStatus `gorm:"type:varchar(16);not null;index" json:"battle_status"`
	BattleDuration  int          `gorm:"not null;default:0" json:"battle_duration"` // days
	BattleStartDate *time.Time   `json:"battle_start_date,omitempty"`
	BattleWinner    *string      `gorm:"type:uuid" json:"battle_winner,omitempty"`
	IsVisible       bool         `gorm:"not null" json:"is_visible"`

	Timestamps
}

func (h *Habit) IsBattle() bool {
	return h.Type == HabitTypeBattle
}

// TransitionBattle moves the record to next, rejecting edges missing from the table.
func (h *Habit) TransitionBattle(next BattleStatus) error {
	if !h.BattleStatus.CanTransitionTo(next) {
		return IllegalTransitionError{From: h.BattleStatus, To: next}
	}
	h.BattleStatus = next
	return nil
}

// BattleEndsAt is battleStartDate + battleDuration days; ok is false before the battle starts.
func (h *Habit) BattleEndsAt() (time.Time, bool) {
	if h.BattleStartDate == nil {
		return time.Time{}, false
	}
	return h.BattleStartDate.AddDate(0, 0, h.BattleDuration), true
}

func (h *Habit) IsCompletedOn(date string) bool {
	for _, d := range h.CompletedDates {
		if d == date {
			return true
		}
	}
	return false
}

// MarkCompleted adds date to the completed set, keeping it sorted and duplicate free.
func (h *Habit) MarkCompleted(date string) {
	if h.IsCompletedOn(date) {
		return
	}
	h.CompletedDates = append(h.CompletedDates, date)
	sort.Strings(h.CompletedDates)
}

func (h *Habit) UnmarkCompleted(date string) {
	kept := h.CompletedDates[:0]
	for _, d := range h.CompletedDates {
		if d != date {
			kept = append(kept, d)
		}
	}
	h.CompletedDates = kept
}
