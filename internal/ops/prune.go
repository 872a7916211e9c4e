package ops

import (
	"context"
	"database/sql"
	"time"

	"github.com/hasnainakber9/tabflow-startup/internal/db"
	"github.com/hasnainakber9/tabflow-startup/internal/errors"
	"github.com/hasnainakber9/tabflow-startup/internal/intent"
)

// PruneInput contains parameters for the Prune operation.
type PruneInput struct {
	RetentionDays int
}

// PruneOutput contains the result of the Prune operation.
type PruneOutput struct {
	Pruned int `json:"pruned"`
}

// Prune removes completed intents whose completion is older than the
// retention window. Active intents survive regardless of age. Runs on the
// recurring daily alarm; also callable directly.
func Prune(ctx context.Context, database *sql.DB, notifier intent.Notifier, input PruneInput) (*PruneOutput, error) {
	if input.RetentionDays <= 0 {
		return nil, errors.NewInvalidRequest("retention_days must be positive")
	}

	cutoff := time.Now().AddDate(0, 0, -input.RetentionDays).UnixMilli()
	pruned, err := db.PruneCompleted(database, cutoff)
	if err != nil {
		return nil, err
	}

	if pruned > 0 {
		notifier.Notify(intent.Event{Kind: intent.EventPruned, Count: pruned})
	}

	return &PruneOutput{Pruned: pruned}, nil
}
