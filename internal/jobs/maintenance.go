package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/yungbote/scandine-backend/internal/data/repos"
	"github.com/yungbote/scandine-backend/internal/jobs/worker"
	"github.com/yungbote/scandine-backend/internal/platform/dbctx"
	"github.com/yungbote/scandine-backend/internal/platform/logger"
	"github.com/yungbote/scandine-backend/internal/services"
)

const (
	TaskTrialSweep  = "trial_sweep"
	TaskTokenPurge  = "session_purge"
	TaskResetPurge  = "password_reset_purge"
	purgeInterval   = time.Hour
	resetKeepWindow = 24 * time.Hour
)

type MaintenanceDeps struct {
	Log               *logger.Logger
	Subscriptions     services.SubscriptionService
	UserTokenRepo     repos.UserTokenRepo
	PasswordResetRepo repos.PasswordResetRepo
	SweepInterval     time.Duration
	Now               func() time.Time
}

// MaintenanceTasks downgrades lapsed trials in bulk, so shops whose owners
// never sign in still drop to FREE, and purges dead auth rows.
func MaintenanceTasks(deps MaintenanceDeps) []worker.Task {
	now := deps.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	log := deps.Log.With("component", "Maintenance")
	tasks := []worker.Task{}
	if deps.Subscriptions != nil {
		tasks = append(tasks, worker.Task{
			Name:     TaskTrialSweep,
			Interval: deps.SweepInterval,
			Run: func(ctx context.Context) error {
				_, err := deps.Subscriptions.SweepExpiredTrials(ctx)
				return err
			},
		})
	}
	if deps.UserTokenRepo != nil {
		tasks = append(tasks, worker.Task{
			Name:     TaskTokenPurge,
			Interval: purgeInterval,
			Run: func(ctx context.Context) error {
				n, err := deps.UserTokenRepo.PurgeExpired(dbctx.Context{Ctx: ctx}, now())
				if err != nil {
					return fmt.Errorf("purge sessions: %w", err)
				}
				if n > 0 {
					log.Info("Expired sessions purged", "count", n)
				}
				return nil
			},
		})
	}
	if deps.PasswordResetRepo != nil {
		tasks = append(tasks, worker.Task{
			Name:     TaskResetPurge,
			Interval: purgeInterval,
			Run: func(ctx context.Context) error {
				n, err := deps.PasswordResetRepo.PurgeExpired(dbctx.Context{Ctx: ctx}, now().Add(-resetKeepWindow))
				if err != nil {
					return fmt.Errorf("purge password resets: %w", err)
				}
				if n > 0 {
					log.Info("Expired password resets purged", "count", n)
				}
				return nil
			},
		})
	}
	return tasks
}
