package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hasnainakber9/tabflow-startup/internal/alarm"
	"github.com/hasnainakber9/tabflow-startup/internal/config"
	"github.com/hasnainakber9/tabflow-startup/internal/db"
	"github.com/hasnainakber9/tabflow-startup/internal/intent"
	syncpkg "github.com/hasnainakber9/tabflow-startup/internal/sync"
)

// stubSyncer is a Syncer that records the last batch without any network.
type stubSyncer struct {
	lastBatch int
}

func (s *stubSyncer) PushIntent(ctx context.Context, in *intent.Intent, session *intent.Session) (*syncpkg.Ack, error) {
	if session == nil {
		return &syncpkg.Ack{Skipped: true}, nil
	}
	return &syncpkg.Ack{Synced: 1}, nil
}

func (s *stubSyncer) PushBatch(ctx context.Context, intents []intent.Intent, stats *intent.Stats, session *intent.Session) (*syncpkg.Ack, error) {
	if session == nil {
		return &syncpkg.Ack{Skipped: true}, nil
	}
	s.lastBatch = len(intents)
	return &syncpkg.Ack{Synced: len(intents)}, nil
}

func (s *stubSyncer) FetchIntents(ctx context.Context, session *intent.Session) ([]intent.Intent, error) {
	return nil, nil
}

func (s *stubSyncer) Signup(ctx context.Context, email, password, name string) (*intent.Session, error) {
	return &intent.Session{UserID: "u1", Email: email, Name: name, Plan: "free", Token: "t"}, nil
}

// testSetup creates a temporary database and handlers for testing.
func testSetup(t *testing.T) (*sql.DB, *Handlers) {
	t.Helper()

	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	h := NewHandlers(database, config.DefaultConfig(), alarm.Nop{}, intent.NopNotifier{}, &stubSyncer{})
	return database, h
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func assertErrorCode(t *testing.T, result *mcp.CallToolResult, expectedCode string) {
	t.Helper()

	if len(result.Content) == 0 {
		t.Errorf("no content in error result")
		return
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Errorf("content is not TextContent")
		return
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(text.Text), &payload); err != nil {
		t.Errorf("failed to unmarshal error payload: %v", err)
		return
	}

	errorObj, ok := payload["error"].(map[string]any)
	if !ok {
		t.Errorf("no error object in payload")
		return
	}
	if code, _ := errorObj["code"].(string); code != expectedCode {
		t.Errorf("error code = %q, want %q", code, expectedCode)
	}
}

func extractErrorMessage(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return "<no content>"
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		return "<not text content>"
	}
	return text.Text
}

func resultPayload(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is not TextContent")
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(text.Text), &payload); err != nil {
		t.Fatalf("failed to unmarshal result: %v", err)
	}
	return payload
}

// TestHandleCreate tests the create handler.
func TestHandleCreate(t *testing.T) {
	_, h := testSetup(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		args      map[string]any
		wantError bool
		errorCode string
	}{
		{
			name: "create valid intent",
			args: map[string]any{
				"text":     "write the report",
				"category": "work",
			},
			wantError: false,
		},
		{
			name: "create with origin tab",
			args: map[string]any{
				"text":       "compare laptops",
				"category":   "shopping",
				"origin_tab": 12,
			},
			wantError: false,
		},
		{
			name: "create without text",
			args: map[string]any{
				"category": "work",
			},
			wantError: true,
			errorCode: "INVALID_REQUEST",
		},
		{
			name: "create with unknown category",
			args: map[string]any{
				"text":     "something",
				"category": "misc",
			},
			wantError: true,
			errorCode: "INVALID_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.HandleCreate(ctx, makeRequest(tt.args))
			if err != nil {
				t.Fatalf("handler returned error: %v", err)
			}

			if tt.wantError {
				if !result.IsError {
					t.Errorf("expected error result, got success")
				}
				if tt.errorCode != "" {
					assertErrorCode(t, result, tt.errorCode)
				}
			} else if result.IsError {
				t.Errorf("expected success, got error: %v", extractErrorMessage(result))
			}
		})
	}
}

// TestHandleLifecycle walks create, attach, detach, complete through handlers.
func TestHandleLifecycle(t *testing.T) {
	_, h := testSetup(t)
	ctx := context.Background()

	created, err := h.HandleCreate(ctx, makeRequest(map[string]any{
		"text": "draft proposal", "category": "work", "origin_tab": 5,
	}))
	if err != nil || created.IsError {
		t.Fatalf("create failed: %v %v", err, extractErrorMessage(created))
	}
	id := resultPayload(t, created)["id"].(string)

	attach, err := h.HandleAttachTab(ctx, makeRequest(map[string]any{"id": id, "tab_id": 6}))
	if err != nil || attach.IsError {
		t.Fatalf("attach failed: %v %v", err, extractErrorMessage(attach))
	}

	detach, err := h.HandleDetachTab(ctx, makeRequest(map[string]any{"id": id, "tab_id": 5}))
	if err != nil || detach.IsError {
		t.Fatalf("detach failed: %v %v", err, extractErrorMessage(detach))
	}
	if resultPayload(t, detach)["candidate"].(bool) {
		t.Error("candidate = true with a tab still attached")
	}

	complete, err := h.HandleComplete(ctx, makeRequest(map[string]any{"id": id}))
	if err != nil || complete.IsError {
		t.Fatalf("complete failed: %v %v", err, extractErrorMessage(complete))
	}
	if resultPayload(t, complete)["status"].(string) != "completed" {
		t.Error("intent should be completed")
	}

	list, err := h.HandleList(ctx, makeRequest(map[string]any{"status": "completed"}))
	if err != nil || list.IsError {
		t.Fatalf("list failed: %v %v", err, extractErrorMessage(list))
	}
	intents := resultPayload(t, list)["intents"].([]any)
	if len(intents) != 1 {
		t.Errorf("completed list = %d entries, want 1", len(intents))
	}
}

// TestHandleComplete_NotFound checks the error surface for unknown ids.
func TestHandleComplete_NotFound(t *testing.T) {
	_, h := testSetup(t)

	result, err := h.HandleComplete(context.Background(), makeRequest(map[string]any{"id": "ghost"}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result")
	}
	assertErrorCode(t, result, "NOT_FOUND")
}

// TestHandleStats exercises the derived stats surface.
func TestHandleStats(t *testing.T) {
	_, h := testSetup(t)
	ctx := context.Background()

	if _, err := h.HandleSkipTab(ctx, makeRequest(nil)); err != nil {
		t.Fatalf("skip failed: %v", err)
	}

	result, err := h.HandleStats(ctx, makeRequest(nil))
	if err != nil || result.IsError {
		t.Fatalf("stats failed: %v %v", err, extractErrorMessage(result))
	}
	payload := resultPayload(t, result)
	if payload["skippedTabs"].(float64) != 1 {
		t.Errorf("skippedTabs = %v, want 1", payload["skippedTabs"])
	}
}

// TestHandleSync_LocalOnly: without a session the push is skipped, not failed.
func TestHandleSync_LocalOnly(t *testing.T) {
	_, h := testSetup(t)

	result, err := h.HandleSync(context.Background(), makeRequest(nil))
	if err != nil || result.IsError {
		t.Fatalf("sync failed: %v %v", err, extractErrorMessage(result))
	}
	if !resultPayload(t, result)["skipped"].(bool) {
		t.Error("sync without a session should report skipped")
	}
}

// TestHandleSettings round-trips the settings tools.
func TestHandleSettings(t *testing.T) {
	_, h := testSetup(t)
	ctx := context.Background()

	got, err := h.HandleSettingsGet(ctx, makeRequest(nil))
	if err != nil || got.IsError {
		t.Fatalf("settings_get failed: %v %v", err, extractErrorMessage(got))
	}
	if !resultPayload(t, got)["autoGroupTabs"].(bool) {
		t.Error("autoGroupTabs should default true")
	}

	updated, err := h.HandleSettingsUpdate(ctx, makeRequest(map[string]any{
		"auto_group_tabs":      false,
		"enable_notifications": false,
		"enable_ai":            true,
		"enable_sync":          true,
	}))
	if err != nil || updated.IsError {
		t.Fatalf("settings_update failed: %v %v", err, extractErrorMessage(updated))
	}

	got, err = h.HandleSettingsGet(ctx, makeRequest(nil))
	if err != nil || got.IsError {
		t.Fatalf("settings_get failed: %v %v", err, extractErrorMessage(got))
	}
	payload := resultPayload(t, got)
	if payload["autoGroupTabs"].(bool) || !payload["enableAI"].(bool) {
		t.Errorf("settings = %v, want saved values", payload)
	}
}

// Registry tests

func TestGetTypeForTool(t *testing.T) {
	tests := []struct {
		tool string
		want string
	}{
		{"intent_create", "intent"},
		{"intent_attach_tab", "intent"},
		{"settings_get", "settings"},
		{"noprefix", ""},
	}
	for _, tt := range tests {
		if got := GetTypeForTool(tt.tool); got != tt.want {
			t.Errorf("GetTypeForTool(%q) = %q, want %q", tt.tool, got, tt.want)
		}
	}
}

func TestValidateDisabledTools(t *testing.T) {
	unknown := ValidateDisabledTools([]string{"intent_create", "bogus_tool"})
	if len(unknown) != 1 || unknown[0] != "bogus_tool" {
		t.Errorf("unknown = %v, want [bogus_tool]", unknown)
	}
}

func TestValidateDisabledTypes(t *testing.T) {
	unknown := ValidateDisabledTypes([]string{"intent", "bookmark"})
	if len(unknown) != 1 || unknown[0] != "bookmark" {
		t.Errorf("unknown = %v, want [bookmark]", unknown)
	}
}

func TestExpandTypesToTools(t *testing.T) {
	tools := ExpandTypesToTools([]string{"settings"})
	sort.Strings(tools)
	want := []string{"settings_get", "settings_update"}
	if len(tools) != 2 || tools[0] != want[0] || tools[1] != want[1] {
		t.Errorf("tools = %v, want %v", tools, want)
	}

	if ExpandTypesToTools(nil) != nil {
		t.Error("no types should expand to nil")
	}
}

func TestAllToolNames_MatchesRegistry(t *testing.T) {
	names := AllToolNames()
	if len(names) != len(toolRegistry) {
		t.Errorf("len = %d, want %d", len(names), len(toolRegistry))
	}
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			t.Errorf("unknown name %q", name)
		}
	}
}

func TestNewServer_Builds(t *testing.T) {
	database, _ := testSetup(t)

	cfg := config.DefaultConfig()
	cfg.DisabledTools = []string{"intent_sync"}
	cfg.DisabledTypes = []string{"settings"}

	s := NewServer(database, cfg, alarm.Nop{}, intent.NopNotifier{}, &stubSyncer{}, "test")
	if s == nil {
		t.Fatal("NewServer returned nil")
	}
}
