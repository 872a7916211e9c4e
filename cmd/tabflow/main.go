package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/hasnainakber9/tabflow-startup/internal/alarm"
	"github.com/hasnainakber9/tabflow-startup/internal/config"
	"github.com/hasnainakber9/tabflow-startup/internal/db"
	"github.com/hasnainakber9/tabflow-startup/internal/intent"
	"github.com/hasnainakber9/tabflow-startup/internal/mcp"
	"github.com/hasnainakber9/tabflow-startup/internal/ops"
	"github.com/hasnainakber9/tabflow-startup/internal/sync"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"create": true, "list": true, "complete": true, "delete": true,
	"attach": true, "detach": true, "stats": true, "skip": true,
	"prune": true, "settings": true, "signup": true, "sync": true,
	"export": true, "import": true, "serve": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	// Known subcommand → CLI
	if cliCommands[arg] {
		return true
	}
	// --help or --version → CLI
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false // Default → MCP server
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   _____     _    ___ _
  |_   _|_ _| |__| __| |_____ __ __
    | |/ _' | '_ \ _|| / _ \ V  V /
    |_|\__,_|_.__/_| |_\___/\_/\_/

  Intent tracker for focused browsing

  Usage: tabflow <command> [options]
         tabflow --help

  MCP server mode requires piped input.`)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before DB init (no DB needed)
	if isHelpOrVersion() {
		app := newCLIApp(nil, nil)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine home directory: %v\n", err)
		os.Exit(1)
	}

	baseDir := filepath.Join(homeDir, ".tabflow")

	database, err := db.Init(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	cfg, err := config.Load(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	db.ConfigurePool(database, cfg)

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(database, cfg)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'tabflow --help' for usage.\n")
		os.Exit(1)
	}

	// MCP server mode (default). Lifecycle events go to stderr so they
	// never corrupt the stdio transport on stdout.
	eventLog := log.New(os.Stderr, "[tabflow] ", log.LstdFlags)
	notifier := intent.NotifierFunc(func(e intent.Event) {
		eventLog.Printf("event=%s intent=%s", e.Kind, e.IntentID)
	})

	// Without a browser attached every tab reads as closed, so an intent
	// still active when its check fires is reported abandoned.
	registry := alarm.NewRegistry(func(id string) {
		if _, err := ops.CheckAbandoned(context.Background(), database, ops.NoTabs{}, notifier, id); err != nil {
			eventLog.Printf("abandon check for %s: %v", id, err)
		}
	})
	defer registry.Stop()

	registry.Recur(time.Duration(cfg.PruneIntervalHours)*time.Hour, func() {
		if _, err := ops.Prune(context.Background(), database, notifier, ops.PruneInput{RetentionDays: cfg.RetentionDays}); err != nil {
			eventLog.Printf("prune: %v", err)
		}
	})

	syncer := sync.New(cfg.APIBaseURL, nil, nil)

	if err := mcp.Run(database, cfg, registry, notifier, syncer, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
