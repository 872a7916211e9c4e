package ops

import (
	"context"
	"testing"
	"time"

	"github.com/hasnainakber9/tabflow-startup/internal/config"
	"github.com/hasnainakber9/tabflow-startup/internal/db"
	"github.com/hasnainakber9/tabflow-startup/internal/errors"
	"github.com/hasnainakber9/tabflow-startup/internal/intent"
)

func TestCreate_Basic(t *testing.T) {
	database := newTestDB(t)
	cfg := config.DefaultConfig()
	sched := newRecordingScheduler()

	out, err := Create(context.Background(), database, cfg, sched, CreateInput{
		Text:     "write the quarterly report",
		Category: "work",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if out.ID == "" {
		t.Error("ID should be assigned")
	}
	if out.Status != intent.StatusActive {
		t.Errorf("Status = %q, want active", out.Status)
	}
	if out.CreatedAt == 0 {
		t.Error("CreatedAt should be set")
	}
	if out.CompletedAt != nil {
		t.Error("CompletedAt should be nil on creation")
	}
	if len(out.TabIDs) != 0 {
		t.Errorf("TabIDs = %v, want empty without origin tab", out.TabIDs)
	}

	// Persisted
	got, err := db.GetIntent(database, out.ID)
	if err != nil {
		t.Fatalf("GetIntent failed: %v", err)
	}
	if got.Text != "write the quarterly report" {
		t.Errorf("Text = %q", got.Text)
	}

	// Counter bumped
	counters, err := db.GetCounters(database)
	if err != nil {
		t.Fatalf("GetCounters failed: %v", err)
	}
	if counters.TotalIntents != 1 {
		t.Errorf("TotalIntents = %d, want 1", counters.TotalIntents)
	}
}

func TestCreate_ArmsAbandonmentCheck(t *testing.T) {
	database := newTestDB(t)
	cfg := config.DefaultConfig()
	sched := newRecordingScheduler()

	out, err := Create(context.Background(), database, cfg, sched, CreateInput{
		Text:     "research flights",
		Category: "research",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	delay, ok := sched.scheduled[out.ID]
	if !ok {
		t.Fatal("abandonment check not scheduled")
	}
	want := time.Duration(cfg.AbandonCheckMinutes) * time.Minute
	if delay != want {
		t.Errorf("delay = %v, want %v", delay, want)
	}
}

func TestCreate_OriginTab(t *testing.T) {
	database := newTestDB(t)

	out, err := Create(context.Background(), database, config.DefaultConfig(), newRecordingScheduler(), CreateInput{
		Text:      "compare laptops",
		Category:  "shopping",
		OriginTab: intPtr(42),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if len(out.TabIDs) != 1 || out.TabIDs[0] != 42 {
		t.Errorf("TabIDs = %v, want [42]", out.TabIDs)
	}
}

func TestCreate_EmptyText(t *testing.T) {
	database := newTestDB(t)

	_, err := Create(context.Background(), database, config.DefaultConfig(), newRecordingScheduler(), CreateInput{
		Text:     "   ",
		Category: "work",
	})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("whitespace text should return INVALID_REQUEST, got: %v", err)
	}
}

func TestCreate_InvalidCategory(t *testing.T) {
	database := newTestDB(t)

	_, err := Create(context.Background(), database, config.DefaultConfig(), newRecordingScheduler(), CreateInput{
		Text:     "something",
		Category: "misc",
	})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("unknown category should return INVALID_REQUEST, got: %v", err)
	}
}

func TestCreate_TrimsText(t *testing.T) {
	database := newTestDB(t)

	out, err := Create(context.Background(), database, config.DefaultConfig(), newRecordingScheduler(), CreateInput{
		Text:     "  read the paper  ",
		Category: "learning",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if out.Text != "read the paper" {
		t.Errorf("Text = %q, want trimmed", out.Text)
	}
}
