package intent

// EventKind enumerates the lifecycle events the store can emit. Browser
// listeners, CLI output, and tests all consume the same enumeration, so
// every valid transition is explicit.
type EventKind string

const (
	EventCreated          EventKind = "created"
	EventTabAttached      EventKind = "tab_attached"
	EventTabDetached      EventKind = "tab_detached"
	EventCompleted        EventKind = "completed"
	EventDeleted          EventKind = "deleted"
	EventAbandonCandidate EventKind = "abandon_candidate"
	EventAbandoned        EventKind = "abandoned"
	EventPruned           EventKind = "pruned"
)

// Event is a lifecycle notification raised by the intent store.
// NotificationID is set on events that expect a user response (the
// abandon-candidate prompt); it keys the stored notification-to-intent
// mapping consumed when the user answers.
type Event struct {
	Kind           EventKind `json:"kind"`
	IntentID       string    `json:"intentId"`
	Text           string    `json:"text,omitempty"`
	TabID          int       `json:"tabId,omitempty"`
	Count          int       `json:"count,omitempty"`
	NotificationID string    `json:"notificationId,omitempty"`
}

// Notifier receives lifecycle events for user-facing surfaces
// (notifications, badges). Implementations must not block.
type Notifier interface {
	Notify(Event)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(Event)

// Notify implements Notifier.
func (f NotifierFunc) Notify(e Event) { f(e) }

// NopNotifier discards all events.
type NopNotifier struct{}

// Notify implements Notifier.
func (NopNotifier) Notify(Event) {}
