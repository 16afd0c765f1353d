package repository

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"habit-battle-system/models"
)

// MemoryRepository keeps users and habits in process memory. Records are deep-copied
// on the way in and out so callers never share state with the store.
// Transaction does not roll back: fn's writes are applied as they happen.
type MemoryRepository struct {
	mu     sync.RWMutex
	users  map[string]models.User
	habits map[string]models.Habit
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:  make(map[string]models.User),
		habits: make(map[string]models.Habit),
	}
}

func clone[T any](v T) T {
	var out T
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(b, &out); err != nil {
		panic(err)
	}
	return out
}

// cloneUser round-trips through JSON; Password is tagged json:"-" so it is copied by hand.
func cloneUser(u models.User) models.User {
	out := clone(u)
	out.Password = u.Password
	return out
}

func (r *MemoryRepository) FindUserByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneUser(u)
	return &out, nil
}

func (r *MemoryRepository) findUserBy(match func(models.User) bool) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if match(u) {
			out := cloneUser(u)
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	return r.findUserBy(func(u models.User) bool { return u.Email == email })
}

func (r *MemoryRepository) FindUserByFriendCode(_ context.Context, code string) (*models.User, error) {
	return r.findUserBy(func(u models.User) bool { return u.FriendCode != nil && *u.FriendCode == code })
}

func (r *MemoryRepository) FindUsersByIDs(_ context.Context, ids []string) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := []models.User{}
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			users = append(users, cloneUser(u))
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

func (r *MemoryRepository) FriendCodeExists(ctx context.Context, code string) (bool, error) {
	_, err := r.FindUserByFriendCode(ctx, code)
	if err == ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (r *MemoryRepository) ListUsers(_ context.Context, afterID string, limit int) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.users))
	for id := range r.users {
		if id > afterID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	users := make([]models.User, 0, len(ids))
	for _, id := range ids {
		users = append(users, cloneUser(r.users[id]))
	}
	return users, nil
}

// conflicts reports whether u would violate the email or friend_code unique index.
func (r *MemoryRepository) conflicts(u *models.User) bool {
	for id, other := range r.users {
		if id == u.ID {
			continue
		}
		if other.Email == u.Email {
			return true
		}
		if u.FriendCode != nil && other.FriendCode != nil && *other.FriendCode == *u.FriendCode {
			return true
		}
	}
	return false
}

func (r *MemoryRepository) InsertUser(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[u.ID]; exists || r.conflicts(u) {
		return ErrConflict
	}
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	r.users[u.ID] = cloneUser(*u)
	return nil
}

func (r *MemoryRepository) SaveUser(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conflicts(u) {
		return ErrConflict
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	u.UpdatedAt = time.Now()
	r.users[u.ID] = cloneUser(*u)
	return nil
}

func (r *MemoryRepository) FindHabitByID(_ context.Context, id string) (*models.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.habits[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := clone(h)
	return &out, nil
}

func (f HabitFilter) matches(h models.Habit) bool {
	if f.UserID != "" && h.UserID != f.UserID {
		return false
	}
	if f.SharedGroupID != "" && (h.SharedGroupID == nil || *h.SharedGroupID != f.SharedGroupID) {
		return false
	}
	if f.Type != "" && h.Type != f.Type {
		return false
	}
	if f.VisibleOnly && !h.IsVisible {
		return false
	}
	if len(f.Statuses) > 0 {
		for _, s := range f.Statuses {
			if h.BattleStatus == s {
				return true
			}
		}
		return false
	}
	return true
}

func (r *MemoryRepository) FindHabits(_ context.Context, f HabitFilter) ([]models.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	habits := []models.Habit{}
	for _, h := range r.habits {
		if f.matches(h) {
			habits = append(habits, clone(h))
		}
	}
	sort.Slice(habits, func(i, j int) bool {
		if habits[i].CreatedAt.Equal(habits[j].CreatedAt) {
			return habits[i].ID < habits[j].ID
		}
		return habits[i].CreatedAt.Before(habits[j].CreatedAt)
	})
	return habits, nil
}

func (r *MemoryRepository) InsertHabit(_ context.Context, h *models.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.habits[h.ID]; exists {
		return ErrConflict
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now()
	}
	h.UpdatedAt = h.CreatedAt
	r.habits[h.ID] = clone(*h)
	return nil
}

func (r *MemoryRepository) SaveHabit(_ context.Context, h *models.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now()
	}
	h.UpdatedAt = time.Now()
	r.habits[h.ID] = clone(*h)
	return nil
}

func (r *MemoryRepository) DeleteHabit(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.habits[id]; !ok {
		return ErrNotFound
	}
	delete(r.habits, id)
	return nil
}

func (r *MemoryRepository) DeleteHabitsByGroup(_ context.Context, groupID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, h := range r.habits {
		if h.SharedGroupID != nil && *h.SharedGroupID == groupID {
			delete(r.habits, id)
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) Transaction(_ context.Context, fn func(repo Repository) error) error {
	return fn(r)
}
