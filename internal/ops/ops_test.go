package ops

import (
	"database/sql"
	"testing"
	"time"

	"github.com/hasnainakber9/tabflow-startup/internal/db"
	"github.com/hasnainakber9/tabflow-startup/internal/intent"
)

// newTestDB opens a fresh database in a temp dir.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

// recordingScheduler records Schedule and Cancel calls.
type recordingScheduler struct {
	scheduled map[string]time.Duration
	cancelled []string
}

func newRecordingScheduler() *recordingScheduler {
	return &recordingScheduler{scheduled: make(map[string]time.Duration)}
}

func (r *recordingScheduler) Schedule(id string, delay time.Duration) {
	r.scheduled[id] = delay
}

func (r *recordingScheduler) Cancel(id string) {
	r.cancelled = append(r.cancelled, id)
}

// recordingNotifier collects emitted events.
type recordingNotifier struct {
	events []intent.Event
}

func (r *recordingNotifier) Notify(e intent.Event) {
	r.events = append(r.events, e)
}

func (r *recordingNotifier) kinds() []intent.EventKind {
	out := make([]intent.EventKind, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Kind)
	}
	return out
}

// openTabs is a TabRegistry with a fixed set of open tabs.
type openTabs map[int]bool

func (o openTabs) IsOpen(tabID int) bool { return o[tabID] }

func intPtr(v int) *int { return &v }
