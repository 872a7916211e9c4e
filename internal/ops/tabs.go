package ops

import (
	"context"
	"database/sql"

	"github.com/hasnainakber9/tabflow-startup/internal/db"
	"github.com/hasnainakber9/tabflow-startup/internal/errors"
	"github.com/hasnainakber9/tabflow-startup/internal/intent"
)

// AttachTabInput contains parameters for the AttachTab operation.
type AttachTabInput struct {
	IntentID string
	TabID    int
}

// AttachTabOutput contains the result of the AttachTab operation.
type AttachTabOutput struct {
	Attached bool `json:"attached"`
}

// AttachTab adds a tab handle to an intent's tab set. Idempotent; a missing
// or already-completed intent is a silent no-op because tab events arrive
// from the browser after the fact and may race user actions.
func AttachTab(ctx context.Context, database *sql.DB, input AttachTabInput) (*AttachTabOutput, error) {
	in, err := db.GetIntent(database, input.IntentID)
	if errors.Is(err, errors.ErrNotFound) {
		return &AttachTabOutput{}, nil
	}
	if err != nil {
		return nil, err
	}
	if in.Status == intent.StatusCompleted {
		return &AttachTabOutput{}, nil
	}
	if in.HasTab(input.TabID) {
		return &AttachTabOutput{Attached: true}, nil
	}

	in.AddTab(input.TabID)
	if err := db.UpdateIntentTabs(database, in); err != nil {
		return nil, err
	}
	return &AttachTabOutput{Attached: true}, nil
}

// DetachTabInput contains parameters for the DetachTab operation.
type DetachTabInput struct {
	IntentID string
	TabID    int
}

// DetachTabOutput contains the result of the DetachTab operation.
type DetachTabOutput struct {
	Detached bool `json:"detached"`
	// Candidate is true when the detach emptied the tab set of an active
	// intent. Status is never changed here: completion is always an explicit
	// user action, so the store only raises the abandon-candidate event.
	Candidate      bool   `json:"candidate"`
	NotificationID string `json:"notificationId,omitempty"`
}

// DetachTab removes a tab handle from an intent's tab set. When the last tab
// of an active intent goes away, an abandon-candidate event is emitted (if
// notifications are enabled) and the notification-to-intent mapping is
// recorded so the user's answer can be routed back.
func DetachTab(ctx context.Context, database *sql.DB, notifier intent.Notifier, input DetachTabInput) (*DetachTabOutput, error) {
	in, err := db.GetIntent(database, input.IntentID)
	if errors.Is(err, errors.ErrNotFound) {
		return &DetachTabOutput{}, nil
	}
	if err != nil {
		return nil, err
	}
	if in.Status == intent.StatusCompleted {
		return &DetachTabOutput{}, nil
	}

	emptied := in.RemoveTab(input.TabID)
	if err := db.UpdateIntentTabs(database, in); err != nil {
		return nil, err
	}

	out := &DetachTabOutput{Detached: true, Candidate: emptied}
	if !emptied {
		return out, nil
	}

	settings, err := db.GetSettings(database)
	if err != nil {
		return nil, err
	}
	if settings.EnableNotifications {
		notificationID, err := generateULID()
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		if err := db.PutNotification(database, notificationID, in.ID, intent.NowMillis()); err != nil {
			return nil, err
		}
		out.NotificationID = notificationID
		notifier.Notify(intent.Event{
			Kind:           intent.EventAbandonCandidate,
			IntentID:       in.ID,
			Text:           in.Text,
			TabID:          input.TabID,
			NotificationID: notificationID,
		})
	}

	return out, nil
}
