package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hpungsan/deckhand/internal/config"
	"github.com/hpungsan/deckhand/internal/db"
	"github.com/hpungsan/deckhand/internal/mcp"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// runMode is what one invocation of the binary does.
type runMode int

const (
	modeMCP     runMode = iota // serve tools over stdio
	modeBanner                 // no args on a terminal
	modeHelp                   // help or version, no database needed
	modeCLI                    // a subcommand
	modeUnknown                // unrecognized argument on a terminal
)

var cliCommands = map[string]bool{
	"convert": true, "store": true, "fetch": true, "list": true,
	"delete": true, "purge": true, "import": true, "export": true,
	"serve": true, "help": true,
}

// modeFor picks the run mode from the arguments and whether stdin is a
// terminal. Without a recognizable argument a piped stdin means an MCP
// client is attached.
func modeFor(args []string, interactive bool) runMode {
	if len(args) < 2 {
		if interactive {
			return modeBanner
		}
		return modeMCP
	}

	switch arg := args[1]; {
	case arg == "help" || arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v":
		return modeHelp
	case cliCommands[arg] || arg == "--verbose":
		return modeCLI
	case interactive:
		return modeUnknown
	}
	return modeMCP
}

func isTerminal() bool {
	stat, err := os.Stdin.Stat()
	return err == nil && stat.Mode()&os.ModeCharDevice != 0
}

const banner = `
   ___           _    _                 _
  |   \ ___ __ _| |__| |_  __ _ _ _  __| |
  | |) / -_) _| / / _| ' \/ _' | ' \/ _' |
  |___/\___\__|_\_\__|_||_\__,_|_||_\__,_|

  Markdown to slides

  Usage: deckhand <command> [options]
         deckhand --help

  MCP server mode requires piped input.`

func main() {
	if err := run(os.Args, modeFor(os.Args, isTerminal())); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, mode runMode) error {
	switch mode {
	case modeBanner:
		fmt.Println(banner)
		return nil
	case modeHelp:
		return newCLIApp(nil, nil).Run(args)
	case modeUnknown:
		return fmt.Errorf("unknown command %q (run 'deckhand --help' for usage)", args[1])
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("could not determine home directory: %w", err)
	}
	baseDir := filepath.Join(home, ".deckhand")

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("could not determine working directory: %w", err)
	}
	cfg, err := config.LoadWithRepo(baseDir, cwd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	for _, name := range mcp.ValidateDisabledTools(cfg.DisabledTools) {
		fmt.Fprintf(os.Stderr, "warning: unknown tool in disabled_tools: %q\n", name)
	}

	database, err := db.Init(baseDir)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()
	db.ConfigurePool(database, cfg)

	if mode == modeCLI {
		return newCLIApp(database, cfg).Run(args)
	}
	return mcp.Run(database, cfg, Version)
}
