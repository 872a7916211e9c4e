// Package intent defines the core TabFlow domain types.
package intent

import "time"

// Status represents the lifecycle state of an intent.
// The only transition is active -> completed, and it is one-way.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// Category classifies an intent. The set is fixed.
type Category string

const (
	CategoryWork     Category = "work"
	CategoryResearch Category = "research"
	CategoryShopping Category = "shopping"
	CategoryLearning Category = "learning"
	CategoryBreak    Category = "break"
	CategoryPersonal Category = "personal"
)

// ValidCategories are the allowed intent categories.
var ValidCategories = map[Category]bool{
	CategoryWork:     true,
	CategoryResearch: true,
	CategoryShopping: true,
	CategoryLearning: true,
	CategoryBreak:    true,
	CategoryPersonal: true,
}

// Intent represents a declared user intention and the tabs serving it.
//
// Timestamps are Unix milliseconds. CompletedAt is non-nil if and only if
// Status is completed. TabIDs holds weak references into the browser's tab
// registry: a closed tab drops out of the set but never deletes the intent,
// and an active intent with no tabs is a valid state (an abandonment
// candidate, not garbage).
type Intent struct {
	ID          string   `json:"id"`
	Text        string   `json:"text"`
	Category    Category `json:"category"`
	Status      Status   `json:"status"`
	CreatedAt   int64    `json:"createdAt"`
	CompletedAt *int64   `json:"completedAt"`
	TabIDs      []int    `json:"tabIds"`
	SyncedAt    *int64   `json:"syncedAt,omitempty"`
}

// HasTab reports whether tabID is in the intent's tab set.
func (i *Intent) HasTab(tabID int) bool {
	for _, id := range i.TabIDs {
		if id == tabID {
			return true
		}
	}
	return false
}

// AddTab adds tabID to the tab set. Idempotent.
func (i *Intent) AddTab(tabID int) {
	if !i.HasTab(tabID) {
		i.TabIDs = append(i.TabIDs, tabID)
	}
}

// RemoveTab removes tabID from the tab set and reports whether this call
// emptied it. Removing an absent tab is a no-op, and a set that was already
// empty never reports the transition again.
func (i *Intent) RemoveTab(tabID int) bool {
	if len(i.TabIDs) == 0 {
		return false
	}
	out := i.TabIDs[:0]
	for _, id := range i.TabIDs {
		if id != tabID {
			out = append(out, id)
		}
	}
	i.TabIDs = out
	return len(i.TabIDs) == 0
}

// NowMillis returns the current time as Unix milliseconds.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
