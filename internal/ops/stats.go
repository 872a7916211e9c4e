package ops

import (
	"context"
	"database/sql"
	"time"

	"github.com/hasnainakber9/tabflow-startup/internal/db"
	"github.com/hasnainakber9/tabflow-startup/internal/intent"
)

// ComputeStats derives the full stats view from the current collection and
// the persisted counters. No side effects; callable at any time.
func ComputeStats(ctx context.Context, database *sql.DB) (*intent.Stats, error) {
	intents, err := db.ListIntents(database, "")
	if err != nil {
		return nil, err
	}
	counters, err := db.GetCounters(database)
	if err != nil {
		return nil, err
	}

	stats := intent.ComputeStats(intents, counters, time.Now())
	return &stats, nil
}

// SkipTabOutput contains the result of the SkipTab operation.
type SkipTabOutput struct {
	SkippedTabs int `json:"skippedTabs"`
}

// SkipTab records that the user opened a tab without declaring an intention.
// The skipped-tab count is an independent monotonic counter with no backing
// entity.
func SkipTab(ctx context.Context, database *sql.DB) (*SkipTabOutput, error) {
	if err := db.BumpCounter(database, db.CounterSkippedTabs); err != nil {
		return nil, err
	}
	counters, err := db.GetCounters(database)
	if err != nil {
		return nil, err
	}
	return &SkipTabOutput{SkippedTabs: counters.SkippedTabs}, nil
}

// ListInput contains parameters for the List operation.
type ListInput struct {
	Status string // "", "active", or "completed"
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Intents []intent.Intent `json:"intents"`
}

// List returns intents newest-first, optionally filtered by status.
func List(ctx context.Context, database *sql.DB, input ListInput) (*ListOutput, error) {
	intents, err := db.ListIntents(database, intent.Status(input.Status))
	if err != nil {
		return nil, err
	}
	return &ListOutput{Intents: intents}, nil
}

// Get returns a single intent by id.
func Get(ctx context.Context, database *sql.DB, id string) (*intent.Intent, error) {
	return db.GetIntent(database, id)
}
