// workers/repair_worker.go
package workers

import (
	"context"
	"time"

	"habit-battle-system/logger"
	"habit-battle-system/repository"
	"habit-battle-system/services"
)

const repairPageSize = 200

// RepairStats summarizes one pass over the user table.
type RepairStats struct {
	Users           int
	Repaired        int
	HabitsRewritten int
}

// UserRepairWorker applies UserService.Repair to every user on an interval.
// The first pass also rewrites every habit so legacy grant shapes are stored
// in canonical form.
type UserRepairWorker struct {
	users    *services.UserService
	repo     repository.Repository
	interval time.Duration
}

func NewUserRepairWorker(users *services.UserService, interval time.Duration) *UserRepairWorker {
	return &UserRepairWorker{
		users:    users,
		repo:     users.Repo,
		interval: interval,
	}
}

func (w *UserRepairWorker) Start(ctx context.Context) {
	logger.Info("🔁 [REPAIR] starting user repair worker", "interval", w.interval)
	go w.run(ctx)
}

func (w *UserRepairWorker) run(ctx context.Context) {
	if stats, err := w.RunOnce(ctx, true); err != nil {
		logger.Warn("⚠️ [REPAIR] initial pass failed", "err", err)
	} else {
		logger.Info("[REPAIR] initial pass done", "users", stats.Users, "repaired", stats.Repaired, "habits", stats.HabitsRewritten)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			stats, err := w.RunOnce(ctx, false)
			if err != nil {
				logger.Error("❌ [REPAIR] pass failed", "err", err)
				continue
			}
			if stats.Repaired > 0 {
				logger.Info("[REPAIR] users repaired", "count", stats.Repaired)
			}
		case <-ctx.Done():
			logger.Info("⏹️ [REPAIR] user repair worker stopped")
			return
		}
	}
}

// RunOnce pages through every user, repairing each. With rewriteHabits set, every
// habit of every user is saved back unchanged.
func (w *UserRepairWorker) RunOnce(ctx context.Context, rewriteHabits bool) (RepairStats, error) {
	var stats RepairStats
	after := ""
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		page, err := w.repo.ListUsers(ctx, after, repairPageSize)
		if err != nil {
			return stats, err
		}
		if len(page) == 0 {
			return stats, nil
		}

		for i := range page {
			u := &page[i]
			stats.Users++
			changed, err := w.users.Repair(ctx, u)
			if err != nil {
				logger.Warn("⚠️ [REPAIR] user repair failed", "user_id", u.ID, "err", err)
				continue
			}
			if changed {
				stats.Repaired++
			}
			if rewriteHabits {
				n, err := w.rewriteHabits(ctx, u.ID)
				stats.HabitsRewritten += n
				if err != nil {
					logger.Warn("⚠️ [REPAIR] habit rewrite failed", "user_id", u.ID, "err", err)
				}
			}
		}
		after = page[len(page)-1].ID
	}
}

func (w *UserRepairWorker) rewriteHabits(ctx context.Context, userID string) (int, error) {
	habits, err := w.repo.FindHabits(ctx, repository.HabitFilter{UserID: userID})
	if err != nil {
		return 0, err
	}
	n := 0
	for i := range habits {
		if err := w.repo.SaveHabit(ctx, &habits[i]); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
