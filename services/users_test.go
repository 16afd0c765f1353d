package services

import (
	"testing"

	"habit-battle-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t)
	u, err := env.users.Register(env.ctx, RegisterInput{Username: " Ana ", Email: "Ana@Example.com", Password: "secret1"})
	require.NoError(t, err)

	assert.Equal(t, "Ana", u.Username)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.Equal(t, 1, u.Level)
	assert.Equal(t, int64(0), u.PlatformXP)
	assert.Equal(t, models.DefaultMonsterType, u.MonsterType)
	require.NotNil(t, u.FriendCode)
	assert.True(t, IsValidFriendCode(*u.FriendCode))

	stored := env.reload(t, u.ID)
	assert.NotEqual(t, "secret1", stored.Password)
	assert.True(t, env.users.Hasher.IsHashed(stored.Password))
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	bad := []RegisterInput{
		{Username: "", Email: "a@example.com", Password: "secret1"},
		{Username: "a", Email: "", Password: "secret1"},
		{Username: "a", Email: "not-an-email", Password: "secret1"},
		{Username: "a", Email: "a@example.com", Password: "123"},
	}
	for _, in := range bad {
		_, err := env.users.Register(env.ctx, in)
		requireKind(t, err, KindValidation)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Ana")
	_, err := env.users.Register(env.ctx, RegisterInput{Username: "Other", Email: "ANA@example.com", Password: "secret1"})
	requireKind(t, err, KindConflict)
}

func TestFriendCodeCollisionRetries(t *testing.T) {
	env := newTestEnv(t)
	draws := []string{"AAAAA", "AAAAA", "AAAAA", "BBBBB"}
	env.users.Codes = func() string {
		code := draws[0]
		draws = draws[1:]
		return code
	}

	first := env.register(t, "First")
	second := env.register(t, "Second")
	assert.Equal(t, "AAAAA", *first.FriendCode)
	assert.Equal(t, "BBBBB", *second.FriendCode)
	assert.Empty(t, draws)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	u := env.register(t, "Ana")

	got, err := env.users.Login(env.ctx, "ANA@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = env.users.Login(env.ctx, "ana@example.com", "wrong-pass")
	requireKind(t, err, KindUnauthorized)

	_, err = env.users.Login(env.ctx, "nobody@example.com", "secret1")
	requireKind(t, err, KindUnauthorized)

	_, err = env.users.Login(env.ctx, "", "")
	requireKind(t, err, KindValidation)
}

func TestLoginMigratesLegacyPlaintext(t *testing.T) {
	env := newTestEnv(t)
	u := env.register(t, "Old")
	env.setUser(t, u.ID, func(u *models.User) { u.Password = "hunter22" })

	_, err := env.users.Login(env.ctx, "old@example.com", "nope")
	requireKind(t, err, KindUnauthorized)
	assert.Equal(t, "hunter22", env.reload(t, u.ID).Password)

	_, err = env.users.Login(env.ctx, "old@example.com", "hunter22")
	require.NoError(t, err)

	stored := env.reload(t, u.ID)
	assert.True(t, env.users.Hasher.IsHashed(stored.Password))
	assert.True(t, env.users.Hasher.Compare("hunter22", stored.Password))

	_, err = env.users.Login(env.ctx, "old@example.com", "hunter22")
	require.NoError(t, err)
}

func TestGetUserHasNoSideEffects(t *testing.T) {
	env := newTestEnv(t)
	u := env.register(t, "Ana")
	env.setUser(t, u.ID, func(u *models.User) { u.FriendCode = nil; u.PlatformXP = 700 })

	got, err := env.users.GetUser(env.ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, got.FriendCode)
	assert.Equal(t, 1, got.Level)
	assert.Nil(t, env.reload(t, u.ID).FriendCode)

	_, err = env.users.GetUser(env.ctx, "missing")
	requireKind(t, err, KindNotFound)
}

func TestRepairIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	u := env.register(t, "Ana")
	u = env.setUser(t, u.ID, func(u *models.User) {
		u.FriendCode = nil
		u.PlatformXP = 700
		u.MonsterType = ""
	})

	changed, err := env.users.Repair(env.ctx, u)
	require.NoError(t, err)
	assert.True(t, changed)

	stored := env.reload(t, u.ID)
	require.NotNil(t, stored.FriendCode)
	assert.True(t, IsValidFriendCode(*stored.FriendCode))
	assert.Equal(t, 4, stored.Level)
	assert.Equal(t, models.DefaultMonsterType, stored.MonsterType)

	changed, err = env.users.Repair(env.ctx, stored)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestRepairNeverLowersLevel(t *testing.T) {
	env := newTestEnv(t)
	u := env.register(t, "Ana")
	u = env.setUser(t, u.ID, func(u *models.User) { u.Level = 9 })

	changed, err := env.users.Repair(env.ctx, u)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 9, env.reload(t, u.ID).Level)
}

func TestSetMonsterType(t *testing.T) {
	env := newTestEnv(t)
	u := env.register(t, "Ana")

	got, err := env.users.SetMonsterType(env.ctx, u.ID, " Dragon ")
	require.NoError(t, err)
	assert.Equal(t, "dragon", got.MonsterType)
	assert.Equal(t, "dragon", env.reload(t, u.ID).MonsterType)

	_, err = env.users.SetMonsterType(env.ctx, u.ID, "unicorn")
	requireKind(t, err, KindValidation)
}
