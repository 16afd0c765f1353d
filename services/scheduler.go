// services/scheduler.go
package services

import (
	"context"
	"time"

	"habit-battle-system/logger"

	"github.com/go-co-op/gocron/v2"
)

// StartBattleExpiryScheduler completes expired battles across all users every interval.
// The caller owns the returned scheduler and must Shutdown it.
func (s *BattleService) StartBattleExpiryScheduler(ctx context.Context, interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			n, err := s.SweepAll(ctx)
			if err != nil {
				logger.Error("[SCHEDULER] battle sweep failed", "err", err)
				return
			}
			if n > 0 {
				logger.Info("[SCHEDULER] ✅ completed expired battles", "count", n)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, err
	}

	sched.Start()
	return sched, nil
}
