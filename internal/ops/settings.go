package ops

import (
	"context"
	"database/sql"

	"github.com/hasnainakber9/tabflow-startup/internal/db"
	"github.com/hasnainakber9/tabflow-startup/internal/intent"
)

// GetSettings returns the current settings record.
func GetSettings(ctx context.Context, database *sql.DB) (intent.Settings, error) {
	return db.GetSettings(database)
}

// SaveSettings overwrites the settings record wholesale, as the extension
// does on every save from the settings panel.
func SaveSettings(ctx context.Context, database *sql.DB, s intent.Settings) (intent.Settings, error) {
	if err := db.SaveSettings(database, s); err != nil {
		return intent.Settings{}, err
	}
	return s, nil
}

// LoadSession returns the stored session, or nil in local-only mode.
func LoadSession(ctx context.Context, database *sql.DB) (*intent.Session, error) {
	return db.GetSession(database)
}

// SaveSession stores the session after authentication.
func SaveSession(ctx context.Context, database *sql.DB, s *intent.Session) error {
	return db.SaveSession(database, s)
}

// ClearSession drops the stored session, returning to local-only mode.
func ClearSession(ctx context.Context, database *sql.DB) error {
	return db.ClearSession(database)
}
