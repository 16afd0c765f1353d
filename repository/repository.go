// Package repository is the persistence collaborator for users and habits.
package repository

import (
	"context"
	"errors"

	"habit-battle-system/models"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a write violates the email or friend_code uniqueness constraint.
	ErrConflict = errors.New("unique constraint violated")
)

// HabitFilter selects habits; zero-valued fields are ignored.
type HabitFilter struct {
	UserID        string
	SharedGroupID string
	Type          models.HabitType
	Statuses      []models.BattleStatus
	VisibleOnly   bool
}

type Repository interface {
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByFriendCode(ctx context.Context, code string) (*models.User, error)
	FindUsersByIDs(ctx context.Context, ids []string) ([]models.User, error)
	FriendCodeExists(ctx context.Context, code string) (bool, error)
	// ListUsers pages through all users ordered by id, returning at most limit rows after afterID.
	ListUsers(ctx context.Context, afterID string, limit int) ([]models.User, error)
	InsertUser(ctx context.Context, u *models.User) error
	SaveUser(ctx context.Context, u *models.User) error

	FindHabitByID(ctx context.Context, id string) (*models.Habit, error)
	FindHabits(ctx context.Context, f HabitFilter) ([]models.Habit, error)
	InsertHabit(ctx context.Context, h *models.Habit) error
	SaveHabit(ctx context.Context, h *models.Habit) error
	DeleteHabit(ctx context.Context, id string) error
	DeleteHabitsByGroup(ctx context.Context, groupID string) (int64, error)

	// Transaction runs fn against a repository bound to one unit of work.
	Transaction(ctx context.Context, fn func(repo Repository) error) error
}
