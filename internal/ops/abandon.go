package ops

import (
	"context"
	"database/sql"

	"github.com/hasnainakber9/tabflow-startup/internal/alarm"
	"github.com/hasnainakber9/tabflow-startup/internal/db"
	"github.com/hasnainakber9/tabflow-startup/internal/errors"
	"github.com/hasnainakber9/tabflow-startup/internal/intent"
)

// CheckAbandonedOutput contains the result of the CheckAbandoned operation.
type CheckAbandonedOutput struct {
	Abandoned bool `json:"abandoned"`
}

// CheckAbandoned is the one-shot abandonment check armed at intent creation.
// It fires from the alarm registry and emits the abandoned event when the
// intent still exists, is still active, and every attached tab has been
// closed. Every other case — deleted intent, completed intent, a tab still
// open — drops the check silently. A stale firing is never an error.
func CheckAbandoned(ctx context.Context, database *sql.DB, tabs TabRegistry, notifier intent.Notifier, id string) (*CheckAbandonedOutput, error) {
	in, err := db.GetIntent(database, id)
	if errors.Is(err, errors.ErrNotFound) {
		return &CheckAbandonedOutput{}, nil
	}
	if err != nil {
		return nil, err
	}
	if in.Status != intent.StatusActive {
		return &CheckAbandonedOutput{}, nil
	}

	for _, tabID := range in.TabIDs {
		if tabs.IsOpen(tabID) {
			return &CheckAbandonedOutput{}, nil
		}
	}

	settings, err := db.GetSettings(database)
	if err != nil {
		return nil, err
	}
	if settings.EnableNotifications {
		notifier.Notify(intent.Event{
			Kind:     intent.EventAbandoned,
			IntentID: in.ID,
			Text:     in.Text,
		})
	}

	return &CheckAbandonedOutput{Abandoned: true}, nil
}

// ConfirmNotificationInput contains parameters for ConfirmNotification.
type ConfirmNotificationInput struct {
	NotificationID string
	// Complete is true when the user answered "yes, mark complete".
	Complete bool
}

// ConfirmNotificationOutput contains the result of ConfirmNotification.
type ConfirmNotificationOutput struct {
	IntentID  string `json:"intentId,omitempty"`
	Completed bool   `json:"completed"`
}

// ConfirmNotification resolves a notification button click back to its
// intent. The ephemeral mapping is consumed either way; a stale or unknown
// notification id is a silent no-op.
func ConfirmNotification(ctx context.Context, database *sql.DB, sched alarm.Scheduler, notifier intent.Notifier, input ConfirmNotificationInput) (*ConfirmNotificationOutput, error) {
	intentID, err := db.TakeNotification(database, input.NotificationID)
	if err != nil {
		return nil, err
	}
	if intentID == "" || !input.Complete {
		return &ConfirmNotificationOutput{IntentID: intentID}, nil
	}

	_, err = Complete(ctx, database, sched, notifier, CompleteInput{ID: intentID})
	if errors.Is(err, errors.ErrNotFound) {
		// Intent deleted between notification and answer.
		return &ConfirmNotificationOutput{IntentID: intentID}, nil
	}
	if err != nil {
		return nil, err
	}

	return &ConfirmNotificationOutput{IntentID: intentID, Completed: true}, nil
}
