package ops

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"

	"github.com/hasnainakber9/tabflow-startup/internal/db"
	"github.com/hasnainakber9/tabflow-startup/internal/errors"
	"github.com/hasnainakber9/tabflow-startup/internal/intent"
)

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path string
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
}

// Import merges an export file into the local store by intent id: unknown
// ids are inserted, known ids are overwritten wholesale (the same
// last-write-wins contract the sync endpoint uses). Records failing basic
// validation are skipped, not fatal.
func Import(ctx context.Context, database *sql.DB, input ImportInput) (*ImportOutput, error) {
	if input.Path == "" {
		return nil, errors.NewInvalidRequest("path is required")
	}

	data, err := os.ReadFile(input.Path)
	if err != nil {
		return nil, errors.NewInvalidRequest("cannot read import file: " + err.Error())
	}

	var file exportFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, errors.NewInvalidRequest("import file is not valid JSON: " + err.Error())
	}

	out := &ImportOutput{}
	for i := range file.Intents {
		in := file.Intents[i]
		if in.ID == "" || in.Text == "" || !intent.ValidCategories[in.Category] {
			out.Skipped++
			continue
		}
		if in.Status != intent.StatusActive && in.Status != intent.StatusCompleted {
			out.Skipped++
			continue
		}

		_, err := db.GetIntent(database, in.ID)
		switch {
		case errors.Is(err, errors.ErrNotFound):
			if err := db.InsertIntent(database, &in); err != nil {
				return nil, err
			}
			out.Inserted++
		case err != nil:
			return nil, err
		default:
			if err := db.DeleteIntent(database, in.ID); err != nil {
				return nil, err
			}
			if err := db.InsertIntent(database, &in); err != nil {
				return nil, err
			}
			out.Updated++
		}
	}

	return out, nil
}
