// Package ops implements the intent store operations. Each operation lives
// in its own file with explicit Input/Output structs; callers (CLI, MCP
// tools, the background shell) compose them over a shared *sql.DB.
package ops

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// TabRegistry reports tab liveness. The browser shell backs this with the
// real tab registry; the CLI owns no tabs and wires NoTabs; tests use fakes.
type TabRegistry interface {
	// IsOpen reports whether the tab handle still refers to an open tab.
	IsOpen(tabID int) bool
}

// NoTabs is a TabRegistry for processes without a browser: every handle is
// considered closed.
type NoTabs struct{}

// IsOpen implements TabRegistry.
func (NoTabs) IsOpen(int) bool { return false }

// generateULID generates a new ULID.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
