package server

import (
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/hasnainakber9/tabflow-startup/internal/errors"
	"github.com/hasnainakber9/tabflow-startup/internal/intent"
)

// User is a registered account.
type User struct {
	ID           string          `json:"id"`
	Email        string          `json:"email"`
	Name         string          `json:"name"`
	Plan         string          `json:"plan"`
	PasswordHash string          `json:"-"`
	CreatedAt    int64           `json:"createdAt"`
	Settings     intent.Settings `json:"settings"`
}

// Store is the backend document store: users, per-user intents, per-user
// stats. Intents are keyed (id, user_id) so the sync endpoint can upsert
// records the client created offline.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) the backend database at path.
func OpenStore(path string) (*Store, error) {
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS users (
	  id            TEXT PRIMARY KEY,
	  email         TEXT NOT NULL UNIQUE,
	  password_hash TEXT NOT NULL,
	  name          TEXT NOT NULL,
	  plan          TEXT NOT NULL,
	  created_at    INTEGER NOT NULL,
	  settings_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS intents (
	  id           TEXT NOT NULL,
	  user_id      TEXT NOT NULL,
	  text         TEXT NOT NULL,
	  category     TEXT NOT NULL,
	  status       TEXT NOT NULL,
	  created_at   INTEGER NOT NULL,
	  completed_at INTEGER,
	  tab_ids_json TEXT,
	  synced_at    INTEGER NOT NULL,
	  PRIMARY KEY (id, user_id)
	);

	CREATE INDEX IF NOT EXISTS idx_intents_user_created
	ON intents(user_id, created_at DESC);

	CREATE TABLE IF NOT EXISTS stats (
	  user_id    TEXT PRIMARY KEY,
	  stats_json TEXT NOT NULL,
	  updated_at INTEGER NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateUser registers a new account. The name defaults to the local part of
// the email when empty; plan is always "free" at signup.
func (s *Store) CreateUser(email, passwordHash, name string) (*User, error) {
	if name == "" {
		name = email
		if i := strings.Index(email, "@"); i > 0 {
			name = email[:i]
		}
	}

	settings := intent.DefaultSettings()
	settings.EnableSync = true
	settingsJSON, err := json.Marshal(settings)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	u := &User{
		ID:           newULID(),
		Email:        email,
		Name:         name,
		Plan:         "free",
		PasswordHash: passwordHash,
		CreatedAt:    intent.NowMillis(),
		Settings:     settings,
	}

	_, err = s.db.Exec(`
		INSERT INTO users (id, email, password_hash, name, plan, created_at, settings_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, u.ID, u.Email, u.PasswordHash, u.Name, u.Plan, u.CreatedAt, string(settingsJSON))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, errors.NewUserExists(email)
		}
		return nil, errors.NewInternal(err)
	}

	return u, nil
}

// GetUserByEmail returns the account for email, or NOT_FOUND.
func (s *Store) GetUserByEmail(email string) (*User, error) {
	var (
		u            User
		settingsJSON string
	)
	err := s.db.QueryRow(`
		SELECT id, email, password_hash, name, plan, created_at, settings_json
		FROM users WHERE email = ?
	`, email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Plan, &u.CreatedAt, &settingsJSON)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(email)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := json.Unmarshal([]byte(settingsJSON), &u.Settings); err != nil {
		return nil, errors.NewInternal(err)
	}
	return &u, nil
}

// ListIntents returns a user's intents sorted by createdAt descending.
func (s *Store) ListIntents(userID string) ([]intent.Intent, error) {
	rows, err := s.db.Query(`
		SELECT id, text, category, status, created_at, completed_at, tab_ids_json
		FROM intents WHERE user_id = ?
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	out := make([]intent.Intent, 0)
	for rows.Next() {
		var (
			in          intent.Intent
			category    string
			status      string
			completedAt sql.NullInt64
			tabsJSON    sql.NullString
		)
		if err := rows.Scan(&in.ID, &in.Text, &category, &status, &in.CreatedAt, &completedAt, &tabsJSON); err != nil {
			return nil, errors.NewInternal(err)
		}
		in.Category = intent.Category(category)
		in.Status = intent.Status(status)
		if completedAt.Valid {
			in.CompletedAt = &completedAt.Int64
		}
		if tabsJSON.Valid && tabsJSON.String != "" {
			if err := json.Unmarshal([]byte(tabsJSON.String), &in.TabIDs); err != nil {
				return nil, errors.NewInternal(err)
			}
		}
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return out, nil
}

// UpsertIntent replaces or inserts the intent record keyed (id, user_id).
// Last write wins; there is no conflict detection or merge. An intent posted
// without an id gets a server-assigned one.
func (s *Store) UpsertIntent(userID string, in *intent.Intent) error {
	if in.ID == "" {
		in.ID = newULID()
	}

	var tabsJSON sql.NullString
	if len(in.TabIDs) > 0 {
		data, err := json.Marshal(in.TabIDs)
		if err != nil {
			return errors.NewInternal(err)
		}
		tabsJSON = sql.NullString{String: string(data), Valid: true}
	}

	var completedAt sql.NullInt64
	if in.CompletedAt != nil {
		completedAt = sql.NullInt64{Int64: *in.CompletedAt, Valid: true}
	}

	now := intent.NowMillis()
	_, err := s.db.Exec(`
		INSERT INTO intents (id, user_id, text, category, status, created_at, completed_at, tab_ids_json, synced_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id, user_id) DO UPDATE SET
			text = excluded.text,
			category = excluded.category,
			status = excluded.status,
			created_at = excluded.created_at,
			completed_at = excluded.completed_at,
			tab_ids_json = excluded.tab_ids_json,
			synced_at = excluded.synced_at
	`, in.ID, userID, in.Text, string(in.Category), string(in.Status),
		in.CreatedAt, completedAt, tabsJSON, now)
	if err != nil {
		return errors.NewInternal(err)
	}
	in.SyncedAt = &now
	return nil
}

// UpsertStats replaces the stats aggregate for a user.
func (s *Store) UpsertStats(userID string, stats *intent.Stats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return errors.NewInternal(err)
	}
	_, err = s.db.Exec(`
		INSERT INTO stats (user_id, stats_json, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			stats_json = excluded.stats_json,
			updated_at = excluded.updated_at
	`, userID, string(data), intent.NowMillis())
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// GetStats returns the stored stats aggregate for a user, or nil.
func (s *Store) GetStats(userID string) (*intent.Stats, error) {
	var raw string
	err := s.db.QueryRow(`SELECT stats_json FROM stats WHERE user_id = ?`, userID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	var stats intent.Stats
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		return nil, errors.NewInternal(err)
	}
	return &stats, nil
}

// newULID generates a server-side id.
func newULID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(rand.Reader, 0)).String()
}
