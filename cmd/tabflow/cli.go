package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/hasnainakber9/tabflow-startup/internal/alarm"
	"github.com/hasnainakber9/tabflow-startup/internal/config"
	"github.com/hasnainakber9/tabflow-startup/internal/errors"
	"github.com/hasnainakber9/tabflow-startup/internal/intent"
	"github.com/hasnainakber9/tabflow-startup/internal/ops"
	"github.com/hasnainakber9/tabflow-startup/internal/server"
	"github.com/hasnainakber9/tabflow-startup/internal/sync"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "tabflow",
		Usage:   "Intent tracker for focused browsing",
		Version: Version,
		Commands: []*cli.Command{
			createCmd(db, cfg),
			listCmd(db),
			completeCmd(db),
			deleteCmd(db),
			attachCmd(db),
			detachCmd(db),
			statsCmd(db),
			skipCmd(db),
			pruneCmd(db, cfg),
			settingsCmd(db),
			signupCmd(db, cfg),
			syncCmd(db, cfg),
			exportCmd(db),
			importCmd(db),
			serveCmd(),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// createCmd creates the create command.
func createCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "create",
		Usage:     "Declare a new intent",
		ArgsUsage: "[text]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Value: "work", Usage: "Category: work|research|shopping|learning|break|personal"},
			&cli.IntFlag{Name: "tab", Aliases: []string{"t"}, Usage: "Origin tab to attach"},
		},
		Action: func(c *cli.Context) error {
			// Flag parsing stops at the first positional arg, so a flag
			// placed after the text would silently become part of it.
			args := c.Args().Slice()
			for _, a := range args {
				if strings.HasPrefix(a, "-") {
					return outputError(errors.NewInvalidRequest("flags must come before the intent text"))
				}
			}

			input := ops.CreateInput{
				Text:     strings.Join(args, " "),
				Category: c.String("category"),
			}
			if c.IsSet("tab") {
				tab := c.Int("tab")
				input.OriginTab = &tab
			}

			// Intents persist either way; the abandonment check only
			// matters in a long-lived process, not a one-shot command.
			output, err := ops.Create(c.Context, db, cfg, alarm.Nop{}, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// listCmd creates the list command.
func listCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List intents, newest first",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Usage: "Filter by status: active|completed"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.List(c.Context, db, ops.ListInput{
				Status: c.String("status"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// completeCmd creates the complete command.
func completeCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "complete",
		Usage:     "Mark an intent completed",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("intent id is required"))
			}

			output, err := ops.Complete(c.Context, db, alarm.Nop{}, intent.NopNotifier{}, ops.CompleteInput{
				ID: c.Args().First(),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete an intent",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("intent id is required"))
			}

			output, err := ops.Delete(c.Context, db, alarm.Nop{}, ops.DeleteInput{
				ID: c.Args().First(),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// attachCmd creates the attach command.
func attachCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "attach",
		Usage:     "Attach a tab to an intent",
		ArgsUsage: "<id> <tab-id>",
		Action: func(c *cli.Context) error {
			id, tabID, err := idAndTabArgs(c)
			if err != nil {
				return outputError(err)
			}

			output, opErr := ops.AttachTab(c.Context, db, ops.AttachTabInput{
				IntentID: id,
				TabID:    tabID,
			})
			if opErr != nil {
				return outputError(opErr)
			}

			return outputJSON(output)
		},
	}
}

// detachCmd creates the detach command.
func detachCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "detach",
		Usage:     "Detach a tab from an intent",
		ArgsUsage: "<id> <tab-id>",
		Action: func(c *cli.Context) error {
			id, tabID, err := idAndTabArgs(c)
			if err != nil {
				return outputError(err)
			}

			output, opErr := ops.DetachTab(c.Context, db, intent.NopNotifier{}, ops.DetachTabInput{
				IntentID: id,
				TabID:    tabID,
			})
			if opErr != nil {
				return outputError(opErr)
			}

			return outputJSON(output)
		},
	}
}

// statsCmd creates the stats command.
func statsCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show productivity stats",
		Action: func(c *cli.Context) error {
			output, err := ops.ComputeStats(c.Context, db)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// skipCmd creates the skip command.
func skipCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "skip",
		Usage: "Record an intent prompt skipped for a new tab",
		Action: func(c *cli.Context) error {
			output, err := ops.SkipTab(c.Context, db)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// pruneCmd creates the prune command.
func pruneCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "prune",
		Usage: "Remove completed intents past the retention window",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "retention-days", Aliases: []string{"r"}, Usage: "Override retention window in days"},
		},
		Action: func(c *cli.Context) error {
			days := cfg.RetentionDays
			if c.IsSet("retention-days") {
				days = c.Int("retention-days")
			}

			output, err := ops.Prune(c.Context, db, intent.NopNotifier{}, ops.PruneInput{
				RetentionDays: days,
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// settingsCmd creates the settings command.
func settingsCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Show or update settings",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "auto-group-tabs", Usage: "Group tabs by intent"},
			&cli.BoolFlag{Name: "notifications", Usage: "Enable notifications"},
			&cli.BoolFlag{Name: "ai", Usage: "Enable AI suggestions"},
			&cli.BoolFlag{Name: "sync", Usage: "Enable cloud sync"},
		},
		Action: func(c *cli.Context) error {
			current, err := ops.GetSettings(c.Context, db)
			if err != nil {
				return outputError(err)
			}

			// No flags → show current settings
			changed := false
			if c.IsSet("auto-group-tabs") {
				current.AutoGroupTabs = c.Bool("auto-group-tabs")
				changed = true
			}
			if c.IsSet("notifications") {
				current.EnableNotifications = c.Bool("notifications")
				changed = true
			}
			if c.IsSet("ai") {
				current.EnableAI = c.Bool("ai")
				changed = true
			}
			if c.IsSet("sync") {
				current.EnableSync = c.Bool("sync")
				changed = true
			}

			if !changed {
				return outputJSON(current)
			}

			output, err := ops.SaveSettings(c.Context, db, current)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// signupCmd creates the signup command.
func signupCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "signup",
		Usage: "Create a sync account (reads password from stdin when piped)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Required: true, Usage: "Account email"},
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Display name (defaults to email local part)"},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Account password (prefer piping via stdin)"},
		},
		Action: func(c *cli.Context) error {
			password := c.String("password")
			if stdinHasData() {
				text, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				if text != "" {
					password = text
				}
			}
			if password == "" {
				return outputError(errors.NewInvalidRequest("password is required"))
			}

			syncer := sync.New(cfg.APIBaseURL, nil, nil)
			session, err := syncer.Signup(c.Context, c.String("email"), password, c.String("name"))
			if err != nil {
				return outputError(err)
			}

			if err := ops.SaveSession(c.Context, db, session); err != nil {
				return outputError(err)
			}

			return outputJSON(session)
		},
	}
}

// syncCmd creates the sync command.
func syncCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Push local intents and stats to the backend",
		Action: func(c *cli.Context) error {
			session, err := ops.LoadSession(c.Context, db)
			if err != nil {
				return outputError(err)
			}

			listOut, err := ops.List(c.Context, db, ops.ListInput{})
			if err != nil {
				return outputError(err)
			}
			stats, err := ops.ComputeStats(c.Context, db)
			if err != nil {
				return outputError(err)
			}

			syncer := sync.New(cfg.APIBaseURL, nil, nil)
			ack, err := syncer.PushBatch(c.Context, listOut.Intents, stats, session)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(ack)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export intents and counters to a JSON file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: ~/.tabflow/exports/tabflow-<timestamp>.json)"},
		},
		Action: func(c *cli.Context) error {
			path := c.String("path")
			if path == "" {
				homeDir, err := os.UserHomeDir()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				dir := filepath.Join(homeDir, ".tabflow", "exports")
				if err := os.MkdirAll(dir, 0700); err != nil {
					return outputError(errors.NewInternal(err))
				}
				path = filepath.Join(dir, fmt.Sprintf("tabflow-%d.json", time.Now().Unix()))
			}

			output, err := ops.Export(c.Context, db, ops.ExportInput{
				Path: path,
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// importCmd creates the import command.
func importCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import intents from a JSON export file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Import file path"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Import(c.Context, db, ops.ImportInput{
				Path: c.String("path"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// serveCmd creates the serve command, which runs the sync backend.
func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the sync backend HTTP server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Bind address"},
			&cli.IntFlag{Name: "port", Value: 8787, Usage: "Listen port"},
			&cli.StringFlag{Name: "db", Usage: "Server database path (default: ~/.tabflow/server.db)"},
		},
		Action: func(c *cli.Context) error {
			path := c.String("db")
			if path == "" {
				homeDir, err := os.UserHomeDir()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				path = filepath.Join(homeDir, ".tabflow", "server.db")
			}

			store, err := server.OpenStore(path)
			if err != nil {
				return outputError(err)
			}
			defer store.Close()

			srv := server.NewServer(store, c.String("bind"), c.Int("port"))
			fmt.Fprintf(os.Stderr, "tabflow backend listening on %s\n", srv.Addr)
			if err := server.Run(srv); err != nil {
				return outputError(err)
			}
			return nil
		},
	}
}

// Helper functions

// idAndTabArgs parses the <id> <tab-id> positional pair.
func idAndTabArgs(c *cli.Context) (string, int, error) {
	if c.NArg() < 2 {
		return "", 0, errors.NewInvalidRequest("intent id and tab id are required")
	}
	var tabID int
	if _, err := fmt.Sscanf(c.Args().Get(1), "%d", &tabID); err != nil {
		return "", 0, errors.NewInvalidRequest("tab id must be an integer")
	}
	return c.Args().First(), tabID, nil
}

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if tfErr, ok := err.(*errors.TabFlowError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", tfErr.Code, tfErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
