package tasks

import (
	"context"
	"log/slog"

	"github.com/fanbase-app/fanbase-api/membership"
	"github.com/hibiken/asynq"
)

const (
	TypeExpireSubscriptions = "subscriptions:expire"
)

func NewExpireSubscriptionsTask() *asynq.Task {
	return asynq.NewTask(TypeExpireSubscriptions, nil)
}

// HandleExpireSubscriptionsTask runs on a schedule and flips every active
// subscription whose paid period has lapsed over to expired. Safe to run
// as often as you like, the sweep is a no-op when nothing is due.
func HandleExpireSubscriptionsTask(ctx context.Context, t *asynq.Task, subs *membership.Store) error {
	slog.Info("Expiring lapsed subscriptions ✅")

	expired, err := subs.ExpireDue(ctx)

	if err != nil {
		slog.Error("Couldn't expire subscriptions 💀")
		slog.Error(err.Error())

		return err
	}

	if expired > 0 {
		slog.Info("Expired lapsed subscriptions ✅",
			slog.Int64("count", expired))
	}

	return nil
}
