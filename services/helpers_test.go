package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"habit-battle-system/logger"
	"habit-battle-system/models"
	"habit-battle-system/repository"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testEpoch = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type testEnv struct {
	ctx      context.Context
	repo     *repository.MemoryRepository
	clock    *FakeClock
	users    *UserService
	hellWeek *HellWeekService
	battles  *BattleService
	habits   *HabitService
	friends  *FriendService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger.Discard()
	repo := repository.NewMemoryRepository()
	clock := NewFakeClock(testEpoch)
	users := NewUserService(repo, NewBcryptHasher(bcrypt.MinCost), clock)
	battles := NewBattleService(repo, clock)
	return &testEnv{
		ctx:      context.Background(),
		repo:     repo,
		clock:    clock,
		users:    users,
		hellWeek: NewHellWeekService(users, clock),
		battles:  battles,
		habits:   NewHabitService(repo, battles, clock),
		friends:  NewFriendService(repo, clock),
	}
}

func (e *testEnv) register(t *testing.T, name string) *models.User {
	t.Helper()
	u, err := e.users.Register(e.ctx, RegisterInput{
		Username: name,
		Email:    strings.ToLower(name) + "@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	return u
}

func (e *testEnv) reload(t *testing.T, userID string) *models.User {
	t.Helper()
	u, err := e.repo.FindUserByID(e.ctx, userID)
	require.NoError(t, err)
	return u
}

func (e *testEnv) setUser(t *testing.T, userID string, mutate func(*models.User)) *models.User {
	t.Helper()
	u := e.reload(t, userID)
	mutate(u)
	require.NoError(t, e.repo.SaveUser(e.ctx, u))
	return u
}

func (e *testEnv) habit(t *testing.T, habitID string) *models.Habit {
	t.Helper()
	h, err := e.repo.FindHabitByID(e.ctx, habitID)
	require.NoError(t, err)
	return h
}

func requireKind(t *testing.T, err error, kind ErrorKind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, KindOf(err), "error: %v", err)
}
