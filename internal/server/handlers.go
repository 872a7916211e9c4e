package server

import (
	"encoding/json"
	"net/http"

	"github.com/hasnainakber9/tabflow-startup/internal/errors"
	"github.com/hasnainakber9/tabflow-startup/internal/intent"
)

// Handlers contains the HTTP route handlers for the API.
type Handlers struct {
	store *Store
}

// HandleSignup handles POST /auth/signup.
func (h *Handlers) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		renderError(w, errors.NewInvalidRequest("invalid JSON body"))
		return
	}
	if body.Email == "" || body.Password == "" {
		renderError(w, errors.NewInvalidRequest("Email and password required"))
		return
	}

	hash, err := hashPassword(body.Password)
	if err != nil {
		renderError(w, err)
		return
	}

	user, err := h.store.CreateUser(body.Email, hash, body.Name)
	if err != nil {
		renderError(w, err)
		return
	}

	token, err := generateToken(user.ID, user.Email)
	if err != nil {
		renderError(w, err)
		return
	}

	renderJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"user": map[string]any{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
			"plan":  user.Plan,
		},
		"token": token,
	})
}

// HandleListIntents handles GET /intents, returning the caller's intents newest first.
func (h *Handlers) HandleListIntents(w http.ResponseWriter, r *http.Request) {
	userID, err := authUserID(r)
	if err != nil {
		renderError(w, err)
		return
	}

	intents, err := h.store.ListIntents(userID)
	if err != nil {
		renderError(w, err)
		return
	}

	renderJSON(w, http.StatusOK, map[string]any{"intents": intents})
}

// HandleCreateIntent handles POST /intents, storing one intent under the
// caller's account and assigning an id when the body carries none.
func (h *Handlers) HandleCreateIntent(w http.ResponseWriter, r *http.Request) {
	userID, err := authUserID(r)
	if err != nil {
		renderError(w, err)
		return
	}

	var in intent.Intent
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		renderError(w, errors.NewInvalidRequest("invalid JSON body"))
		return
	}

	if err := h.store.UpsertIntent(userID, &in); err != nil {
		renderError(w, err)
		return
	}

	renderJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"intent":  in,
	})
}

// HandleSync handles POST /sync: bulk per-record upsert of intents and the
// stats aggregate. Succeeds regardless of how much of the payload was
// present; only auth and transport problems produce errors.
func (h *Handlers) HandleSync(w http.ResponseWriter, r *http.Request) {
	userID, err := authUserID(r)
	if err != nil {
		renderError(w, err)
		return
	}

	var body struct {
		Intents []intent.Intent `json:"intents"`
		Stats   *intent.Stats   `json:"stats"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		renderError(w, errors.NewInvalidRequest("invalid JSON body"))
		return
	}

	for i := range body.Intents {
		if err := h.store.UpsertIntent(userID, &body.Intents[i]); err != nil {
			renderError(w, err)
			return
		}
	}

	if body.Stats != nil {
		if err := h.store.UpsertStats(userID, body.Stats); err != nil {
			renderError(w, err)
			return
		}
	}

	renderJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Data synced successfully",
	})
}

// HandleHealth handles GET /healthz.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// renderJSON writes a JSON response with the given status code.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// renderError writes an error in the wire format clients expect:
// {"error": "..."} with the taxonomy's status code. Internal details are
// never leaked.
func renderError(w http.ResponseWriter, err error) {
	if tfErr, ok := err.(*errors.TabFlowError); ok {
		msg := tfErr.Message
		if tfErr.Code == errors.ErrInternal {
			msg = "Internal server error"
		}
		renderJSON(w, tfErr.Status, map[string]any{"error": msg})
		return
	}
	renderJSON(w, http.StatusInternalServerError, map[string]any{"error": "Internal server error"})
}
