package ops

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hasnainakber9/tabflow-startup/internal/config"
	"github.com/hasnainakber9/tabflow-startup/internal/db"
	"github.com/hasnainakber9/tabflow-startup/internal/intent"
)

// TestWorkflow_DeclareWorkAbandon walks the main lifecycle: declare an
// intent from a tab, browse across a second tab, close both, answer the
// abandon prompt with "complete".
func TestWorkflow_DeclareWorkAbandon(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	cfg := config.DefaultConfig()
	sched := newRecordingScheduler()
	notifier := &recordingNotifier{}

	created, err := Create(ctx, database, cfg, sched, CreateInput{
		Text:      "draft design doc",
		Category:  "work",
		OriginTab: intPtr(10),
	})
	require.NoError(t, err)
	require.Contains(t, sched.scheduled, created.ID)

	// A second tab joins the intent
	attach, err := AttachTab(ctx, database, AttachTabInput{IntentID: created.ID, TabID: 11})
	require.NoError(t, err)
	require.True(t, attach.Attached)

	// First tab closes: intent still has a tab, no candidate
	detach, err := DetachTab(ctx, database, notifier, DetachTabInput{IntentID: created.ID, TabID: 10})
	require.NoError(t, err)
	require.True(t, detach.Detached)
	require.False(t, detach.Candidate)
	require.Empty(t, notifier.events)

	// Last tab closes: candidate raised with a notification id
	detach, err = DetachTab(ctx, database, notifier, DetachTabInput{IntentID: created.ID, TabID: 11})
	require.NoError(t, err)
	require.True(t, detach.Candidate)
	require.NotEmpty(t, detach.NotificationID)
	require.Len(t, notifier.events, 1)
	require.Equal(t, intent.EventAbandonCandidate, notifier.events[0].Kind)

	// User answers "complete" on the notification
	confirm, err := ConfirmNotification(ctx, database, sched, notifier, ConfirmNotificationInput{
		NotificationID: detach.NotificationID,
		Complete:       true,
	})
	require.NoError(t, err)
	require.True(t, confirm.Completed)
	require.Equal(t, created.ID, confirm.IntentID)

	got, err := Get(ctx, database, created.ID)
	require.NoError(t, err)
	require.Equal(t, intent.StatusCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)

	// Counters and stats agree
	stats, err := ComputeStats(ctx, database)
	require.NoError(t, err)
	require.Equal(t, 1, stats.TotalIntents)
	require.Equal(t, 1, stats.CompletedIntents)
	require.Equal(t, 100, stats.ProductivityScore)
}

// TestWorkflow_TimerFiresAfterDelete exercises the stale-timer race: the
// user deletes the intent before the abandonment check fires.
func TestWorkflow_TimerFiresAfterDelete(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	sched := newRecordingScheduler()
	notifier := &recordingNotifier{}

	created, err := Create(ctx, database, config.DefaultConfig(), sched, CreateInput{
		Text: "look up recipe", Category: "personal",
	})
	require.NoError(t, err)

	_, err = Delete(ctx, database, sched, DeleteInput{ID: created.ID})
	require.NoError(t, err)
	require.Contains(t, sched.cancelled, created.ID)

	// Even if the check still fires, it drops silently
	out, err := CheckAbandoned(ctx, database, NoTabs{}, notifier, created.ID)
	require.NoError(t, err)
	require.False(t, out.Abandoned)
	require.Empty(t, notifier.events)
}

// TestWorkflow_CountersSurviveDeletes: counters only ever go up, so a
// create-delete cycle still advances totals while the derived view reflects
// the live collection.
func TestWorkflow_CountersSurviveDeletes(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		created, err := Create(ctx, database, config.DefaultConfig(), newRecordingScheduler(), CreateInput{
			Text: "ephemeral", Category: "break",
		})
		require.NoError(t, err)
		_, err = Delete(ctx, database, newRecordingScheduler(), DeleteInput{ID: created.ID})
		require.NoError(t, err)
	}

	counters, err := db.GetCounters(database)
	require.NoError(t, err)
	require.Equal(t, 3, counters.TotalIntents)

	stats, err := ComputeStats(ctx, database)
	require.NoError(t, err)
	require.Equal(t, 0, stats.TotalIntents, "derived view reflects the live collection")
	require.Equal(t, 0, stats.ActiveIntents)
}
