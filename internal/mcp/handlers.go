package mcp

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hasnainakber9/tabflow-startup/internal/alarm"
	"github.com/hasnainakber9/tabflow-startup/internal/config"
	"github.com/hasnainakber9/tabflow-startup/internal/errors"
	"github.com/hasnainakber9/tabflow-startup/internal/intent"
	"github.com/hasnainakber9/tabflow-startup/internal/ops"
	"github.com/hasnainakber9/tabflow-startup/internal/sync"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	sched    alarm.Scheduler
	notifier intent.Notifier
	syncer   sync.Syncer
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config, sched alarm.Scheduler, notifier intent.Notifier, syncer sync.Syncer) *Handlers {
	return &Handlers{db: db, cfg: cfg, sched: sched, notifier: notifier, syncer: syncer}
}

// Request types for each tool

// CreateRequest represents the arguments for intent_create.
type CreateRequest struct {
	Text      string `json:"text"`
	Category  string `json:"category"`
	OriginTab *int   `json:"origin_tab,omitempty"`
}

// ListRequest represents the arguments for intent_list.
type ListRequest struct {
	Status string `json:"status,omitempty"`
}

// IDRequest represents the arguments for tools addressing one intent.
type IDRequest struct {
	ID string `json:"id"`
}

// TabRequest represents the arguments for tab attach/detach tools.
type TabRequest struct {
	ID    string `json:"id"`
	TabID int    `json:"tab_id"`
}

// SettingsUpdateRequest represents the arguments for settings_update.
type SettingsUpdateRequest struct {
	AutoGroupTabs       bool `json:"auto_group_tabs"`
	EnableNotifications bool `json:"enable_notifications"`
	EnableAI            bool `json:"enable_ai"`
	EnableSync          bool `json:"enable_sync"`
}

// Handler implementations

// HandleCreate handles the intent_create tool call.
func (h *Handlers) HandleCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CreateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Create(ctx, h.db, h.cfg, h.sched, ops.CreateInput{
		Text:      input.Text,
		Category:  input.Category,
		OriginTab: input.OriginTab,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleList handles the intent_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.List(ctx, h.db, ops.ListInput{Status: input.Status})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleComplete handles the intent_complete tool call.
func (h *Handlers) HandleComplete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Complete(ctx, h.db, h.sched, h.notifier, ops.CompleteInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleDelete handles the intent_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Delete(ctx, h.db, h.sched, ops.DeleteInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleAttachTab handles the intent_attach_tab tool call.
func (h *Handlers) HandleAttachTab(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TabRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.AttachTab(ctx, h.db, ops.AttachTabInput{IntentID: input.ID, TabID: input.TabID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleDetachTab handles the intent_detach_tab tool call.
func (h *Handlers) HandleDetachTab(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TabRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.DetachTab(ctx, h.db, h.notifier, ops.DetachTabInput{IntentID: input.ID, TabID: input.TabID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleStats handles the intent_stats tool call.
func (h *Handlers) HandleStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.ComputeStats(ctx, h.db)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSkipTab handles the intent_skip_tab tool call.
func (h *Handlers) HandleSkipTab(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.SkipTab(ctx, h.db)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSync handles the intent_sync tool call.
func (h *Handlers) HandleSync(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, err := ops.LoadSession(ctx, h.db)
	if err != nil {
		return errorResult(err), nil
	}

	listOut, err := ops.List(ctx, h.db, ops.ListInput{})
	if err != nil {
		return errorResult(err), nil
	}
	stats, err := ops.ComputeStats(ctx, h.db)
	if err != nil {
		return errorResult(err), nil
	}

	ack, err := h.syncer.PushBatch(ctx, listOut.Intents, stats, session)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(ack)
}

// HandleSettingsGet handles the settings_get tool call.
func (h *Handlers) HandleSettingsGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.GetSettings(ctx, h.db)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSettingsUpdate handles the settings_update tool call.
func (h *Handlers) HandleSettingsUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SettingsUpdateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.SaveSettings(ctx, h.db, intent.Settings{
		AutoGroupTabs:       input.AutoGroupTabs,
		EnableNotifications: input.EnableNotifications,
		EnableAI:            input.EnableAI,
		EnableSync:          input.EnableSync,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// errorResult creates an MCP error result from a TabFlowError.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if tfErr, ok := err.(*errors.TabFlowError); ok {
		errorObj := map[string]any{
			"code":    tfErr.Code,
			"message": tfErr.Message,
			"status":  tfErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if tfErr.Code != errors.ErrInternal && tfErr.Details != nil {
			errorObj["details"] = tfErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return mcp.NewToolResultError(string(content))
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
