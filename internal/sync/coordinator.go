// Package sync reconciles local intent state with the remote account.
//
// The coordinator is stateless between calls and carries no retry policy:
// the calling layer decides when to re-invoke. Local state is always
// authoritative — a failed push leaves it untouched, and operating without a
// session (local-only mode) is a successful no-op, not an error.
package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/hasnainakber9/tabflow-startup/internal/errors"
	"github.com/hasnainakber9/tabflow-startup/internal/intent"
)

// Ack reports the outcome of a push.
type Ack struct {
	// Skipped is true when there was no session and no network call was made.
	Skipped bool `json:"skipped"`
	// Synced is the number of records included in the push.
	Synced int `json:"synced"`
}

// Syncer pushes local intent state to the backend and pulls the remote copy.
type Syncer interface {
	// PushIntent upserts a single intent under the session's account.
	// A nil session returns a skipped Ack without any network call.
	PushIntent(ctx context.Context, in *intent.Intent, session *intent.Session) (*Ack, error)

	// PushBatch upserts a set of intents plus the stats aggregate in one
	// request. Server semantics are per-record upsert keyed by
	// (intent id, user id); last write wins, no merge.
	PushBatch(ctx context.Context, intents []intent.Intent, stats *intent.Stats, session *intent.Session) (*Ack, error)

	// FetchIntents returns the remote intent list, newest first.
	FetchIntents(ctx context.Context, session *intent.Session) ([]intent.Intent, error)

	// Signup registers a new account and returns its session.
	Signup(ctx context.Context, email, password, name string) (*intent.Session, error)
}

// coordinator implements the Syncer interface.
type coordinator struct {
	baseURL string
	client  *http.Client
	logger  *log.Logger
}

// New creates a new Syncer pointed at the given API base URL.
//
// If client is nil, a default client with a 15s timeout is used.
// If logger is nil, a default logger writing to stderr is used.
func New(baseURL string, client *http.Client, logger *log.Logger) Syncer {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if logger == nil {
		logger = log.New(os.Stderr, "[sync] ", log.LstdFlags)
	}
	return &coordinator{
		baseURL: baseURL,
		client:  client,
		logger:  logger,
	}
}

// PushIntent implements Syncer.PushIntent.
func (c *coordinator) PushIntent(ctx context.Context, in *intent.Intent, session *intent.Session) (*Ack, error) {
	if session == nil {
		return &Ack{Skipped: true}, nil
	}

	resp, err := c.post(ctx, "/intents", session.Token, in)
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	if err := checkStatus(resp, http.StatusCreated); err != nil {
		return nil, err
	}

	c.logger.Printf("Pushed intent: %s", in.ID)
	return &Ack{Synced: 1}, nil
}

// PushBatch implements Syncer.PushBatch.
func (c *coordinator) PushBatch(ctx context.Context, intents []intent.Intent, stats *intent.Stats, session *intent.Session) (*Ack, error) {
	if session == nil {
		return &Ack{Skipped: true}, nil
	}

	body := struct {
		Intents []intent.Intent `json:"intents"`
		Stats   *intent.Stats   `json:"stats,omitempty"`
	}{Intents: intents, Stats: stats}

	resp, err := c.post(ctx, "/sync", session.Token, body)
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	if err := checkStatus(resp, http.StatusOK); err != nil {
		return nil, err
	}

	c.logger.Printf("Pushed batch: %d intents", len(intents))
	return &Ack{Synced: len(intents)}, nil
}

// FetchIntents implements Syncer.FetchIntents.
func (c *coordinator) FetchIntents(ctx context.Context, session *intent.Session) ([]intent.Intent, error) {
	if session == nil {
		return nil, errors.NewUnauthorized()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/intents", nil)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	req.Header.Set("Authorization", "Bearer "+session.Token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.NewSyncTransport(err)
	}
	defer drain(resp)

	if err := checkStatus(resp, http.StatusOK); err != nil {
		return nil, err
	}

	var out struct {
		Intents []intent.Intent `json:"intents"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errors.NewSyncTransport(err)
	}
	return out.Intents, nil
}

// Signup implements Syncer.Signup.
func (c *coordinator) Signup(ctx context.Context, email, password, name string) (*intent.Session, error) {
	if email == "" || password == "" {
		return nil, errors.NewInvalidRequest("email and password are required")
	}

	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name,omitempty"`
	}{Email: email, Password: password, Name: name}

	resp, err := c.post(ctx, "/auth/signup", "", body)
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	if resp.StatusCode == http.StatusBadRequest {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return nil, errors.NewInvalidRequest(e.Error)
	}
	if err := checkStatus(resp, http.StatusCreated); err != nil {
		return nil, err
	}

	var out struct {
		User struct {
			ID    string `json:"id"`
			Email string `json:"email"`
			Name  string `json:"name"`
			Plan  string `json:"plan"`
		} `json:"user"`
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errors.NewSyncTransport(err)
	}

	return &intent.Session{
		UserID: out.User.ID,
		Email:  out.User.Email,
		Name:   out.User.Name,
		Plan:   out.User.Plan,
		Token:  out.Token,
	}, nil
}

// post issues an authenticated JSON POST to the given API path.
func (c *coordinator) post(ctx context.Context, path, token string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.NewSyncTransport(err)
	}
	return resp, nil
}

// checkStatus maps non-success responses onto the error taxonomy.
func checkStatus(resp *http.Response, want int) error {
	if resp.StatusCode == want {
		return nil
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return errors.NewUnauthorized()
	}
	return errors.NewSyncTransport(fmt.Errorf("unexpected status %d", resp.StatusCode))
}

// drain consumes and closes the response body so connections are reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
