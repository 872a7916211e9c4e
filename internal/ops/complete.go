package ops

import (
	"context"
	"database/sql"

	"github.com/hasnainakber9/tabflow-startup/internal/alarm"
	"github.com/hasnainakber9/tabflow-startup/internal/db"
	"github.com/hasnainakber9/tabflow-startup/internal/intent"
)

// CompleteInput contains parameters for the Complete operation.
type CompleteInput struct {
	ID string
}

// Complete marks an intent completed. Unknown ids return NOT_FOUND; an
// already-completed intent is returned unchanged (idempotent, same
// completedAt). The pending abandonment check is cancelled and the
// completed-intents counter is bumped on the actual transition only.
func Complete(ctx context.Context, database *sql.DB, sched alarm.Scheduler, notifier intent.Notifier, input CompleteInput) (*intent.Intent, error) {
	in, err := db.GetIntent(database, input.ID)
	if err != nil {
		return nil, err
	}

	if in.Status == intent.StatusCompleted {
		return in, nil
	}

	now := intent.NowMillis()
	if err := db.CompleteIntent(database, in.ID, now); err != nil {
		return nil, err
	}
	in.Status = intent.StatusCompleted
	in.CompletedAt = &now

	if err := db.BumpCounter(database, db.CounterCompletedIntents); err != nil {
		return nil, err
	}

	sched.Cancel(in.ID)

	settings, err := db.GetSettings(database)
	if err != nil {
		return nil, err
	}
	if settings.EnableNotifications {
		notifier.Notify(intent.Event{
			Kind:     intent.EventCompleted,
			IntentID: in.ID,
			Text:     in.Text,
		})
	}

	return in, nil
}
