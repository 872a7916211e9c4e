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

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Path string
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Exported int    `json:"exported"`
	Path     string `json:"path"`
}

// exportFile is the on-disk export shape.
type exportFile struct {
	Intents  []intent.Intent `json:"intents"`
	Counters intent.Counters `json:"stats"`
}

// Export writes the full intent collection and counters to a JSON file.
func Export(ctx context.Context, database *sql.DB, input ExportInput) (*ExportOutput, error) {
	if input.Path == "" {
		return nil, errors.NewInvalidRequest("path is required")
	}

	intents, err := db.ListIntents(database, "")
	if err != nil {
		return nil, err
	}
	counters, err := db.GetCounters(database)
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(exportFile{Intents: intents, Counters: counters}, "", "  ")
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := os.WriteFile(input.Path, data, 0600); err != nil {
		return nil, errors.NewInternal(err)
	}

	return &ExportOutput{Exported: len(intents), Path: input.Path}, nil
}
