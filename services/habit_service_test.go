package services

import (
	"testing"
	"time"

	"habit-battle-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSoloHabit(t *testing.T) {
	env := newTestEnv(t)
	u := env.register(t, "Ana")

	h, err := env.habits.Create(env.ctx, u.ID, CreateHabitInput{Name: " Read ", Color: "#ff0000"})
	require.NoError(t, err)
	assert.Equal(t, "Read", h.Name)
	assert.Equal(t, models.HabitTypeSolo, h.Type)
	assert.Equal(t, models.BattleActive, h.BattleStatus)
	assert.True(t, h.IsVisible)
	assert.Nil(t, h.SharedGroupID)

	_, err = env.habits.Create(env.ctx, u.ID, CreateHabitInput{Name: "  "})
	requireKind(t, err, KindValidation)
	_, err = env.habits.Create(env.ctx, u.ID, CreateHabitInput{Name: "Run", IncrementSchedule: "hourly"})
	requireKind(t, err, KindValidation)
	_, err = env.habits.Create(env.ctx, "missing", CreateHabitInput{Name: "Run"})
	requireKind(t, err, KindNotFound)
}

func TestToggleSettlesXP(t *testing.T) {
	env := newTestEnv(t)
	u := env.register(t, "Ana")
	h, err := env.habits.Create(env.ctx, u.ID, CreateHabitInput{Name: "Read"})
	require.NoError(t, err)

	res, err := env.habits.Toggle(env.ctx, u.ID, h.ID, day)
	require.NoError(t, err)
	assert.Equal(t, CompletionXP, res.XPDelta)
	assert.Equal(t, int64(15), res.PlatformXP)
	assert.Equal(t, []string{day}, res.Habit.CompletedDates)

	env.clock.Advance(10 * time.Second)
	res, err = env.habits.Toggle(env.ctx, u.ID, h.ID, day)
	require.NoError(t, err)
	assert.Equal(t, -CompletionXP, res.XPDelta)
	assert.Equal(t, int64(0), env.reload(t, u.ID).PlatformXP)
	assert.Empty(t, env.habit(t, h.ID).CompletedDates)
}

func TestToggleAfterUndoWindowKeepsXP(t *testing.T) {
	env := newTestEnv(t)
	u := env.register(t, "Ana")
	h, err := env.habits.Create(env.ctx, u.ID, CreateHabitInput{Name: "Read"})
	require.NoError(t, err)

	_, err = env.habits.Toggle(env.ctx, u.ID, h.ID, day)
	require.NoError(t, err)
	env.clock.Advance(2 * time.Minute)

	res, err := env.habits.Toggle(env.ctx, u.ID, h.ID, day)
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.XPDelta)
	assert.Equal(t, int64(15), res.PlatformXP)

	res, err = env.habits.Toggle(env.ctx, u.ID, h.ID, day)
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.XPDelta)
	assert.Equal(t, int64(15), env.reload(t, u.ID).PlatformXP)
	assert.Contains(t, env.habit(t, h.ID).XPGrantedDates, day)
}

func TestToggleDuringHellWeek(t *testing.T) {
	env := newTestEnv(t)
	u := env.register(t, "Ana")
	env.setUser(t, u.ID, func(u *models.User) { u.HellWeek.IsActive = true })
	h, err := env.habits.Create(env.ctx, u.ID, CreateHabitInput{Name: "Read"})
	require.NoError(t, err)

	res, err := env.habits.Toggle(env.ctx, u.ID, h.ID, day)
	require.NoError(t, err)
	assert.Equal(t, int64(35), res.XPDelta)

	res, err = env.habits.Toggle(env.ctx, u.ID, h.ID, day)
	require.NoError(t, err)
	assert.Equal(t, int64(-35), res.XPDelta)
	assert.Equal(t, int64(0), res.PlatformXP)
}

func TestToggleRejectsOthersAndBadDates(t *testing.T) {
	env := newTestEnv(t)
	owner := env.register(t, "Ana")
	other := env.register(t, "Bo")
	h, err := env.habits.Create(env.ctx, owner.ID, CreateHabitInput{Name: "Read"})
	require.NoError(t, err)

	_, err = env.habits.Toggle(env.ctx, other.ID, h.ID, day)
	requireKind(t, err, KindNotFound)
	_, err = env.habits.Toggle(env.ctx, owner.ID, h.ID, "yesterday")
	requireKind(t, err, KindValidation)
	_, err = env.habits.Toggle(env.ctx, owner.ID, "missing", day)
	requireKind(t, err, KindNotFound)
}

func TestListFeedHidesInvitesAndFinishedBattles(t *testing.T) {
	env := newTestEnv(t)
	ana := env.register(t, "Ana")
	bo := env.register(t, "Bo")

	solo, err := env.habits.Create(env.ctx, bo.ID, CreateHabitInput{Name: "Read"})
	require.NoError(t, err)
	_, err = env.habits.Create(env.ctx, ana.ID, CreateHabitInput{Name: "Pushups", PartnerID: bo.ID})
	require.NoError(t, err)

	feed, err := env.habits.List(env.ctx, bo.ID)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, solo.ID, feed[0].ID)

	feed, err = env.habits.List(env.ctx, ana.ID)
	require.NoError(t, err)
	require.Len(t, feed, 1)

	battle := feed[0]
	battle.BattleStatus = models.BattleCompleted
	require.NoError(t, env.repo.SaveHabit(env.ctx, &battle))
	feed, err = env.habits.List(env.ctx, ana.ID)
	require.NoError(t, err)
	assert.Empty(t, feed)
}

func TestUpdateHabit(t *testing.T) {
	env := newTestEnv(t)
	u := env.register(t, "Ana")
	h, err := env.habits.Create(env.ctx, u.ID, CreateHabitInput{Name: "Read"})
	require.NoError(t, err)

	name, reps, schedule := "Read more", 20, "weekly"
	got, err := env.habits.Update(env.ctx, u.ID, h.ID, UpdateHabitInput{Name: &name, Reps: &reps, IncrementSchedule: &schedule})
	require.NoError(t, err)
	assert.Equal(t, "Read more", got.Name)
	require.NotNil(t, got.Reps)
	assert.Equal(t, 20, *got.Reps)
	assert.Equal(t, "weekly", env.habit(t, h.ID).IncrementSchedule)

	empty := " "
	_, err = env.habits.Update(env.ctx, u.ID, h.ID, UpdateHabitInput{Name: &empty})
	requireKind(t, err, KindValidation)
}

func TestDeleteHabit(t *testing.T) {
	env := newTestEnv(t)
	ana := env.register(t, "Ana")
	bo := env.register(t, "Bo")

	solo, err := env.habits.Create(env.ctx, ana.ID, CreateHabitInput{Name: "Read"})
	require.NoError(t, err)
	battle, err := env.habits.Create(env.ctx, ana.ID, CreateHabitInput{Name: "Run", PartnerID: bo.ID})
	require.NoError(t, err)

	requireKind(t, env.habits.Delete(env.ctx, bo.ID, solo.ID), KindNotFound)
	requireKind(t, env.habits.Delete(env.ctx, ana.ID, battle.ID), KindPrecondition)

	require.NoError(t, env.habits.Delete(env.ctx, ana.ID, solo.ID))
	_, err = env.repo.FindHabitByID(env.ctx, solo.ID)
	assert.Error(t, err)
}
