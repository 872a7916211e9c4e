package ops

import (
	"context"
	"testing"

	"github.com/hasnainakber9/tabflow-startup/internal/config"
	"github.com/hasnainakber9/tabflow-startup/internal/db"
	"github.com/hasnainakber9/tabflow-startup/internal/intent"
)

func TestAttachTab_Idempotent(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	created, err := Create(ctx, database, config.DefaultConfig(), newRecordingScheduler(), CreateInput{
		Text: "triage inbox", Category: "work",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		out, err := AttachTab(ctx, database, AttachTabInput{IntentID: created.ID, TabID: 7})
		if err != nil {
			t.Fatalf("AttachTab failed: %v", err)
		}
		if !out.Attached {
			t.Error("Attached = false, want true")
		}
	}

	got, err := db.GetIntent(database, created.ID)
	if err != nil {
		t.Fatalf("GetIntent failed: %v", err)
	}
	if len(got.TabIDs) != 1 {
		t.Errorf("TabIDs = %v, want a single entry after double attach", got.TabIDs)
	}
}

func TestAttachTab_UnknownIntent_SilentNoop(t *testing.T) {
	database := newTestDB(t)

	out, err := AttachTab(context.Background(), database, AttachTabInput{IntentID: "ghost", TabID: 1})
	if err != nil {
		t.Fatalf("AttachTab on unknown intent should not error: %v", err)
	}
	if out.Attached {
		t.Error("Attached = true for unknown intent")
	}
}

func TestAttachTab_CompletedIntent_SilentNoop(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	created, err := Create(ctx, database, config.DefaultConfig(), newRecordingScheduler(), CreateInput{
		Text: "book dentist", Category: "personal",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := Complete(ctx, database, newRecordingScheduler(), intent.NopNotifier{}, CompleteInput{ID: created.ID}); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	out, err := AttachTab(ctx, database, AttachTabInput{IntentID: created.ID, TabID: 3})
	if err != nil {
		t.Fatalf("AttachTab failed: %v", err)
	}
	if out.Attached {
		t.Error("attach to a completed intent should be a no-op")
	}

	got, err := db.GetIntent(database, created.ID)
	if err != nil {
		t.Fatalf("GetIntent failed: %v", err)
	}
	if got.HasTab(3) {
		t.Error("completed intent's tab set must not change")
	}
}

func TestDetachTab_LastTab_RaisesCandidate(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	notifier := &recordingNotifier{}

	created, err := Create(ctx, database, config.DefaultConfig(), newRecordingScheduler(), CreateInput{
		Text: "compare flights", Category: "research", OriginTab: intPtr(9),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	out, err := DetachTab(ctx, database, notifier, DetachTabInput{IntentID: created.ID, TabID: 9})
	if err != nil {
		t.Fatalf("DetachTab failed: %v", err)
	}
	if !out.Detached || !out.Candidate {
		t.Errorf("output = %+v, want detached candidate", out)
	}
	if out.NotificationID == "" {
		t.Error("candidate should carry a notification id")
	}

	if len(notifier.events) != 1 || notifier.events[0].Kind != intent.EventAbandonCandidate {
		t.Errorf("events = %v, want one abandon_candidate", notifier.kinds())
	}
	if notifier.events[0].NotificationID != out.NotificationID {
		t.Error("event notification id should match output")
	}

	// Status must not change: completion is always explicit
	got, err := db.GetIntent(database, created.ID)
	if err != nil {
		t.Fatalf("GetIntent failed: %v", err)
	}
	if got.Status != intent.StatusActive {
		t.Errorf("Status = %q, want active after last tab closed", got.Status)
	}
	if len(got.TabIDs) != 0 {
		t.Errorf("TabIDs = %v, want empty", got.TabIDs)
	}
}

func TestDetachTab_AlreadyEmpty_NoRepeatCandidate(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	notifier := &recordingNotifier{}

	created, err := Create(ctx, database, config.DefaultConfig(), newRecordingScheduler(), CreateInput{
		Text: "read the paper", Category: "learning", OriginTab: intPtr(4),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	out, err := DetachTab(ctx, database, notifier, DetachTabInput{IntentID: created.ID, TabID: 4})
	if err != nil {
		t.Fatalf("DetachTab failed: %v", err)
	}
	if !out.Candidate {
		t.Fatal("first detach should raise the candidate")
	}

	// Only the transition that empties the set fires; detaching anything
	// from an already-empty set must not renotify.
	out, err = DetachTab(ctx, database, notifier, DetachTabInput{IntentID: created.ID, TabID: 4})
	if err != nil {
		t.Fatalf("second DetachTab failed: %v", err)
	}
	if out.Candidate {
		t.Error("second detach re-reported candidate on an empty set")
	}
	if out.NotificationID != "" {
		t.Error("second detach issued a fresh notification id")
	}
	if len(notifier.events) != 1 {
		t.Errorf("events = %v, want exactly one abandon_candidate", notifier.kinds())
	}
}

func TestDetachTab_RemainingTabs_NoCandidate(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	notifier := &recordingNotifier{}

	created, err := Create(ctx, database, config.DefaultConfig(), newRecordingScheduler(), CreateInput{
		Text: "study for exam", Category: "learning", OriginTab: intPtr(1),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := AttachTab(ctx, database, AttachTabInput{IntentID: created.ID, TabID: 2}); err != nil {
		t.Fatalf("AttachTab failed: %v", err)
	}

	out, err := DetachTab(ctx, database, notifier, DetachTabInput{IntentID: created.ID, TabID: 1})
	if err != nil {
		t.Fatalf("DetachTab failed: %v", err)
	}
	if !out.Detached || out.Candidate {
		t.Errorf("output = %+v, want detached without candidate", out)
	}
	if len(notifier.events) != 0 {
		t.Errorf("no events expected, got %v", notifier.kinds())
	}
}

func TestDetachTab_NotificationsDisabled(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	notifier := &recordingNotifier{}

	settings := intent.DefaultSettings()
	settings.EnableNotifications = false
	if err := db.SaveSettings(database, settings); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}

	created, err := Create(ctx, database, config.DefaultConfig(), newRecordingScheduler(), CreateInput{
		Text: "buy groceries", Category: "shopping", OriginTab: intPtr(4),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	out, err := DetachTab(ctx, database, notifier, DetachTabInput{IntentID: created.ID, TabID: 4})
	if err != nil {
		t.Fatalf("DetachTab failed: %v", err)
	}
	if !out.Candidate {
		t.Error("Candidate should still be reported")
	}
	if out.NotificationID != "" {
		t.Error("no notification id should be issued when notifications are off")
	}
	if len(notifier.events) != 0 {
		t.Errorf("no events expected, got %v", notifier.kinds())
	}
}

func TestDetachTab_UnknownIntent_SilentNoop(t *testing.T) {
	database := newTestDB(t)

	out, err := DetachTab(context.Background(), database, &recordingNotifier{}, DetachTabInput{IntentID: "ghost", TabID: 1})
	if err != nil {
		t.Fatalf("DetachTab on unknown intent should not error: %v", err)
	}
	if out.Detached {
		t.Error("Detached = true for unknown intent")
	}
}
