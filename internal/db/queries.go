package db

import (
	"database/sql"
	"encoding/json"

	"github.com/hasnainakber9/tabflow-startup/internal/errors"
	"github.com/hasnainakber9/tabflow-startup/internal/intent"
)

// InsertIntent stores a new intent.
func InsertIntent(db *sql.DB, in *intent.Intent) error {
	tabsJSON, err := marshalTabs(in.TabIDs)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO intents (id, text, category, status, created_at, completed_at, tab_ids_json, synced_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = db.Exec(query,
		in.ID, in.Text, string(in.Category), string(in.Status),
		in.CreatedAt, toNullInt64(in.CompletedAt), tabsJSON, toNullInt64(in.SyncedAt),
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// GetIntent retrieves an intent by id.
func GetIntent(db *sql.DB, id string) (*intent.Intent, error) {
	row := db.QueryRow(`
		SELECT id, text, category, status, created_at, completed_at, tab_ids_json, synced_at
		FROM intents WHERE id = ?
	`, id)

	in, err := scanIntent(row.Scan)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return in, nil
}

// ListIntents returns intents ordered by creation time descending.
// status filters by lifecycle state when non-empty.
func ListIntents(db *sql.DB, status intent.Status) ([]intent.Intent, error) {
	query := `
		SELECT id, text, category, status, created_at, completed_at, tab_ids_json, synced_at
		FROM intents
	`
	args := []any{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, string(status))
	}
	query += " ORDER BY created_at DESC"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	out := make([]intent.Intent, 0)
	for rows.Next() {
		in, err := scanIntent(rows.Scan)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		out = append(out, *in)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return out, nil
}

// UpdateIntentTabs persists the intent's tab set.
func UpdateIntentTabs(db *sql.DB, in *intent.Intent) error {
	tabsJSON, err := marshalTabs(in.TabIDs)
	if err != nil {
		return err
	}

	result, err := db.Exec(`UPDATE intents SET tab_ids_json = ? WHERE id = ?`, tabsJSON, in.ID)
	if err != nil {
		return errors.NewInternal(err)
	}
	return requireRow(result, in.ID)
}

// CompleteIntent marks an intent completed at the given timestamp.
// The guard on status makes the transition one-way at the storage layer too.
func CompleteIntent(db *sql.DB, id string, completedAt int64) error {
	result, err := db.Exec(`
		UPDATE intents SET status = ?, completed_at = ?
		WHERE id = ? AND status = ?
	`, string(intent.StatusCompleted), completedAt, id, string(intent.StatusActive))
	if err != nil {
		return errors.NewInternal(err)
	}
	return requireRow(result, id)
}

// MarkSynced records the last successful push time for an intent.
func MarkSynced(db *sql.DB, id string, syncedAt int64) error {
	_, err := db.Exec(`UPDATE intents SET synced_at = ? WHERE id = ?`, syncedAt, id)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// DeleteIntent removes an intent unconditionally.
func DeleteIntent(db *sql.DB, id string) error {
	result, err := db.Exec(`DELETE FROM intents WHERE id = ?`, id)
	if err != nil {
		return errors.NewInternal(err)
	}
	return requireRow(result, id)
}

// PruneCompleted removes completed intents whose completed_at is before
// cutoff. Active intents are never touched regardless of age.
func PruneCompleted(db *sql.DB, cutoff int64) (int, error) {
	result, err := db.Exec(`
		DELETE FROM intents WHERE status = ? AND completed_at < ?
	`, string(intent.StatusCompleted), cutoff)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return int(n), nil
}

// GetCounters returns the persisted monotonic counters.
func GetCounters(db *sql.DB) (intent.Counters, error) {
	var c intent.Counters
	err := db.QueryRow(`
		SELECT total_intents, completed_intents, skipped_tabs, install_date
		FROM stats WHERE id = 1
	`).Scan(&c.TotalIntents, &c.CompletedIntents, &c.SkippedTabs, &c.InstallDate)
	if err != nil {
		return c, errors.NewInternal(err)
	}
	return c, nil
}

// BumpCounter increments one of the stats counters. column must be one of
// the fixed counter names; it is never caller-supplied input.
func BumpCounter(db *sql.DB, column string) error {
	_, err := db.Exec(`UPDATE stats SET ` + column + ` = ` + column + ` + 1 WHERE id = 1`)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// Counter column names accepted by BumpCounter.
const (
	CounterTotalIntents     = "total_intents"
	CounterCompletedIntents = "completed_intents"
	CounterSkippedTabs      = "skipped_tabs"
)

// GetSettings loads the settings record.
func GetSettings(db *sql.DB) (intent.Settings, error) {
	var raw string
	err := db.QueryRow(`SELECT settings_json FROM settings WHERE id = 1`).Scan(&raw)
	if err == sql.ErrNoRows {
		return intent.DefaultSettings(), nil
	}
	if err != nil {
		return intent.Settings{}, errors.NewInternal(err)
	}

	var s intent.Settings
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return intent.Settings{}, errors.NewInternal(err)
	}
	return s, nil
}

// SaveSettings overwrites the settings record wholesale.
func SaveSettings(db *sql.DB, s intent.Settings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return errors.NewInternal(err)
	}
	_, err = db.Exec(`
		INSERT INTO settings (id, settings_json) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET settings_json = excluded.settings_json
	`, string(data))
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// GetSession loads the stored session, or nil when logged out.
func GetSession(db *sql.DB) (*intent.Session, error) {
	var raw string
	err := db.QueryRow(`SELECT session_json FROM session WHERE id = 1`).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	var s intent.Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, errors.NewInternal(err)
	}
	return &s, nil
}

// SaveSession stores the session record wholesale.
func SaveSession(db *sql.DB, s *intent.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return errors.NewInternal(err)
	}
	_, err = db.Exec(`
		INSERT INTO session (id, session_json) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET session_json = excluded.session_json
	`, string(data))
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// ClearSession removes the stored session. Idempotent.
func ClearSession(db *sql.DB) error {
	_, err := db.Exec(`DELETE FROM session WHERE id = 1`)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// PutNotification records the ephemeral notification-id -> intent-id mapping.
func PutNotification(db *sql.DB, notificationID, intentID string, now int64) error {
	_, err := db.Exec(`
		INSERT INTO notifications (notification_id, intent_id, created_at) VALUES (?, ?, ?)
		ON CONFLICT(notification_id) DO UPDATE SET intent_id = excluded.intent_id, created_at = excluded.created_at
	`, notificationID, intentID, now)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// TakeNotification resolves and removes a notification mapping.
// Returns empty string for an unknown notification id.
func TakeNotification(db *sql.DB, notificationID string) (string, error) {
	var intentID string
	err := db.QueryRow(`
		SELECT intent_id FROM notifications WHERE notification_id = ?
	`, notificationID).Scan(&intentID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", errors.NewInternal(err)
	}

	if _, err := db.Exec(`DELETE FROM notifications WHERE notification_id = ?`, notificationID); err != nil {
		return "", errors.NewInternal(err)
	}
	return intentID, nil
}

// scanIntent scans a single row into an Intent.
func scanIntent(scan func(...any) error) (*intent.Intent, error) {
	var (
		in          intent.Intent
		category    string
		status      string
		completedAt sql.NullInt64
		tabsJSON    sql.NullString
		syncedAt    sql.NullInt64
	)

	err := scan(&in.ID, &in.Text, &category, &status, &in.CreatedAt, &completedAt, &tabsJSON, &syncedAt)
	if err != nil {
		return nil, err
	}

	in.Category = intent.Category(category)
	in.Status = intent.Status(status)
	if completedAt.Valid {
		in.CompletedAt = &completedAt.Int64
	}
	if syncedAt.Valid {
		in.SyncedAt = &syncedAt.Int64
	}
	if tabsJSON.Valid && tabsJSON.String != "" {
		if err := json.Unmarshal([]byte(tabsJSON.String), &in.TabIDs); err != nil {
			return nil, err
		}
	}

	return &in, nil
}

// marshalTabs encodes the tab set as a JSON column value.
func marshalTabs(tabs []int) (sql.NullString, error) {
	if len(tabs) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(tabs)
	if err != nil {
		return sql.NullString{}, errors.NewInternal(err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// requireRow converts a zero-rows-affected result into NOT_FOUND.
func requireRow(result sql.Result, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if n == 0 {
		return errors.NewNotFound(id)
	}
	return nil
}

// toNullInt64 converts a *int64 to sql.NullInt64.
func toNullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
