package mcp

import "github.com/mark3labs/mcp-go/mcp"

var createToolDef = mcp.NewTool("intent_create",
	mcp.WithDescription("Declare a new intention. Starts active with an optional origin tab attached and arms the abandonment check."),
	mcp.WithString("text", mcp.Required(), mcp.Description("Free-form description of the intention")),
	mcp.WithString("category", mcp.Required(), mcp.Description("One of: work, research, shopping, learning, break, personal")),
	mcp.WithNumber("origin_tab", mcp.Description("Tab id the intent was declared from")),
)

var listToolDef = mcp.NewTool("intent_list",
	mcp.WithDescription("List intents newest first, optionally filtered by status."),
	mcp.WithString("status", mcp.Description("Filter: active or completed. Empty returns all.")),
)

var completeToolDef = mcp.NewTool("intent_complete",
	mcp.WithDescription("Mark an intent completed. Idempotent; cancels the pending abandonment check."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Intent id")),
)

var deleteToolDef = mcp.NewTool("intent_delete",
	mcp.WithDescription("Delete an intent unconditionally."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Intent id")),
)

var attachTabToolDef = mcp.NewTool("intent_attach_tab",
	mcp.WithDescription("Associate a tab with an intent. Idempotent; no-op for completed or unknown intents."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Intent id")),
	mcp.WithNumber("tab_id", mcp.Required(), mcp.Description("Tab handle")),
)

var detachTabToolDef = mcp.NewTool("intent_detach_tab",
	mcp.WithDescription("Remove a tab from an intent. Emptying the tab set of an active intent raises the abandon-candidate prompt; status never changes automatically."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Intent id")),
	mcp.WithNumber("tab_id", mcp.Required(), mcp.Description("Tab handle")),
)

var statsToolDef = mcp.NewTool("intent_stats",
	mcp.WithDescription("Compute the stats aggregate: totals, today's counts, productivity score, streak."),
)

var skipTabToolDef = mcp.NewTool("intent_skip_tab",
	mcp.WithDescription("Record that a tab was opened without declaring an intention."),
)

var syncToolDef = mcp.NewTool("intent_sync",
	mcp.WithDescription("Push all intents and stats to the remote account. Succeeds as a no-op when not logged in."),
)

var settingsGetToolDef = mcp.NewTool("settings_get",
	mcp.WithDescription("Read the settings record."),
)

var settingsUpdateToolDef = mcp.NewTool("settings_update",
	mcp.WithDescription("Overwrite the settings record wholesale."),
	mcp.WithBoolean("auto_group_tabs", mcp.Required(), mcp.Description("Group tabs by intent")),
	mcp.WithBoolean("enable_notifications", mcp.Required(), mcp.Description("Show lifecycle notifications")),
	mcp.WithBoolean("enable_ai", mcp.Required(), mcp.Description("Enable AI suggestions")),
	mcp.WithBoolean("enable_sync", mcp.Required(), mcp.Description("Sync to the remote account")),
)
