package services

import (
	"context"
	"testing"
	"time"

	"habit-battle-system/models"

	"github.com/stretchr/testify/require"
)

func TestBattleExpirySchedulerSweepsAllUsers(t *testing.T) {
	f := newBattle(t, 1)
	f.accept(t)
	f.clock.Advance(25 * time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sched, err := f.battles.StartBattleExpiryScheduler(ctx, 20*time.Millisecond)
	require.NoError(t, err)
	defer func() { _ = sched.Shutdown() }()

	completed := func(id string) bool {
		h, err := f.repo.FindHabitByID(ctx, id)
		return err == nil && h.BattleStatus == models.BattleCompleted
	}
	require.Eventually(t, func() bool {
		return completed(f.mine.ID) && completed(f.theirs.ID)
	}, 2*time.Second, 10*time.Millisecond)
}
