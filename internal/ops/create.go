package ops

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/hasnainakber9/tabflow-startup/internal/alarm"
	"github.com/hasnainakber9/tabflow-startup/internal/config"
	"github.com/hasnainakber9/tabflow-startup/internal/db"
	"github.com/hasnainakber9/tabflow-startup/internal/errors"
	"github.com/hasnainakber9/tabflow-startup/internal/intent"
)

// CreateInput contains parameters for the Create operation.
type CreateInput struct {
	Text      string
	Category  string
	OriginTab *int // tab the intent was declared from, if any
}

// Create declares a new intent. The record starts active with the origin tab
// attached when provided, the total-intents counter is bumped, and a one-shot
// abandonment check is armed at the configured delay, keyed by the intent id.
func Create(ctx context.Context, database *sql.DB, cfg *config.Config, sched alarm.Scheduler, input CreateInput) (*intent.Intent, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, errors.NewInvalidRequest("text is required")
	}

	category := intent.Category(input.Category)
	if !intent.ValidCategories[category] {
		return nil, errors.NewInvalidRequest("category must be one of: work, research, shopping, learning, break, personal")
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	in := &intent.Intent{
		ID:        id,
		Text:      text,
		Category:  category,
		Status:    intent.StatusActive,
		CreatedAt: intent.NowMillis(),
	}
	if input.OriginTab != nil {
		in.TabIDs = []int{*input.OriginTab}
	}

	if err := db.InsertIntent(database, in); err != nil {
		return nil, err
	}
	if err := db.BumpCounter(database, db.CounterTotalIntents); err != nil {
		return nil, err
	}

	sched.Schedule(in.ID, time.Duration(cfg.AbandonCheckMinutes)*time.Minute)

	return in, nil
}
