package intent

// Settings is the user-facing configuration record. It is defaulted at first
// install and overwritten wholesale on every save.
type Settings struct {
	AutoGroupTabs       bool `json:"autoGroupTabs"`
	EnableNotifications bool `json:"enableNotifications"`
	EnableAI            bool `json:"enableAI"`
	EnableSync          bool `json:"enableSync"`
}

// DefaultSettings returns the first-install settings.
func DefaultSettings() Settings {
	return Settings{
		AutoGroupTabs:       true,
		EnableNotifications: true,
		EnableAI:            false,
		EnableSync:          false,
	}
}

// Session is the identity held after authentication. A nil *Session means
// local-only mode, which is a normal operating state, never an error.
type Session struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Plan   string `json:"plan"`
	Token  string `json:"token"`
}
