package ops

import (
	"context"
	"database/sql"

	"github.com/hasnainakber9/tabflow-startup/internal/alarm"
	"github.com/hasnainakber9/tabflow-startup/internal/db"
)

// DeleteInput contains parameters for the Delete operation.
type DeleteInput struct {
	ID string
}

// DeleteOutput contains the result of the Delete operation.
type DeleteOutput struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// Delete removes an intent unconditionally, active or completed, and cancels
// any pending abandonment check so the timer can't fire against a dead id.
func Delete(ctx context.Context, database *sql.DB, sched alarm.Scheduler, input DeleteInput) (*DeleteOutput, error) {
	if err := db.DeleteIntent(database, input.ID); err != nil {
		return nil, err
	}
	sched.Cancel(input.ID)

	return &DeleteOutput{Deleted: true, ID: input.ID}, nil
}
