package main

import (
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/deckhand/internal/config"
	"github.com/hpungsan/deckhand/internal/errors"
	"github.com/hpungsan/deckhand/internal/ops"
	"github.com/hpungsan/deckhand/internal/source"
	"github.com/hpungsan/deckhand/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "deckhand",
		Usage:   "Markdown to slides",
		Version: Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Usage: "Log segmentation decisions to stderr"},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
			}
			return nil
		},
		Commands: []*cli.Command{
			convertCmd(cfg),
			storeCmd(db, cfg),
			fetchCmd(db),
			listCmd(db),
			deleteCmd(db),
			purgeCmd(db),
			importCmd(db, cfg),
			exportCmd(db, cfg),
			serveCmd(db, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// budgetFlags are the per-call budget overrides shared by converting commands.
func budgetFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "max-chars", Usage: "Character budget of one slide"},
		&cli.IntFlag{Name: "max-words", Usage: "Word budget of one slide"},
		&cli.IntFlag{Name: "max-lines", Usage: "Line budget of one slide"},
		&cli.IntFlag{Name: "table-char-budget", Usage: "Character budget used to size table chunks"},
		&cli.BoolFlag{Name: "no-sanitize", Usage: "Skip the HTML allow-list"},
		&cli.BoolFlag{Name: "no-preserve-newlines", Usage: "Keep blank lines between tags"},
	}
}

// overridesFromFlags collects the budget flags that were set.
func overridesFromFlags(c *cli.Context) ops.Overrides {
	o := ops.Overrides{
		MaxChars:        intFlag(c, "max-chars"),
		MaxWords:        intFlag(c, "max-words"),
		MaxLines:        intFlag(c, "max-lines"),
		TableCharBudget: intFlag(c, "table-char-budget"),
	}
	if c.Bool("no-sanitize") {
		o.Sanitize = boolPtr(false)
	}
	if c.Bool("no-preserve-newlines") {
		o.PreserveNewlines = boolPtr(false)
	}
	return o
}

// intFlag returns the flag value, or nil when it was not given.
func intFlag(c *cli.Context, name string) *int {
	if !c.IsSet(name) {
		return nil
	}
	v := c.Int(name)
	return &v
}

// convertCmd creates the convert command.
func convertCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Usage:     "Convert markdown or HTML to slides without storing (reads file or stdin)",
		ArgsUsage: "[file]",
		Flags: append([]cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Print slides and stats as JSON instead of HTML"},
		}, budgetFlags()...),
		Action: func(c *cli.Context) error {
			var (
				data     []byte
				filename string
				err      error
			)
			if c.NArg() > 0 {
				filename = c.Args().First()
				data, err = readFile(filename, inputLimit(cfg))
			} else {
				if !stdinHasData() {
					return outputError(errors.NewInvalidRequest("markdown must be piped via stdin or passed as a file"))
				}
				data, err = readStdin(inputLimit(cfg))
			}
			if err != nil {
				return outputError(err)
			}

			doc, err := source.ToMarkdown(data, filename)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Convert(c.Context, cfg, ops.ConvertInput{
				Markdown:  doc.Markdown,
				Overrides: overridesFromFlags(c),
			})
			if err != nil {
				return outputError(err)
			}

			if c.Bool("json") {
				return outputJSON(output)
			}
			_, err = fmt.Fprintln(os.Stdout, output.HTML)
			return err
		},
	}
}

// storeCmd creates the store command.
func storeCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "store",
		Usage: "Convert and store a deck (reads markdown from stdin)",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "workspace", Aliases: []string{"w"}, Value: "default", Usage: "Workspace name"},
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Deck name (optional)"},
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Deck title (defaults to the first title slide, then name)"},
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "error", Usage: "Collision mode: error|replace"},
		}, budgetFlags()...),
		Action: func(c *cli.Context) error {
			// Require stdin input
			if !stdinHasData() {
				return outputError(errors.NewInvalidRequest("markdown must be piped via stdin"))
			}

			data, err := readStdin(inputLimit(cfg))
			if err != nil {
				return outputError(err)
			}
			markdown := source.Decode(data)
			if strings.TrimSpace(markdown) == "" {
				return outputError(errors.NewInvalidRequest("markdown is required"))
			}

			input := ops.StoreInput{
				Workspace: c.String("workspace"),
				Markdown:  markdown,
				Mode:      ops.StoreMode(c.String("mode")),
				Overrides: overridesFromFlags(c),
			}
			if name := c.String("name"); name != "" {
				input.Name = &name
			}
			if title := c.String("title"); title != "" {
				input.Title = &title
			}

			output, err := ops.Store(c.Context, db, cfg, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// fetchCmd creates the fetch command.
func fetchCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "fetch",
		Usage:     "Fetch a deck by ID or name",
		ArgsUsage: "[id]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "workspace", Aliases: []string{"w"}, Value: "default", Usage: "Workspace name"},
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Deck name"},
			&cli.BoolFlag{Name: "include-deleted", Usage: "Include soft-deleted decks"},
			&cli.BoolFlag{Name: "no-source", Usage: "Exclude the markdown source from output"},
			&cli.BoolFlag{Name: "no-html", Usage: "Exclude the slide HTML from output"},
		},
		Action: func(c *cli.Context) error {
			input := ops.FetchInput{
				IncludeDeleted: c.Bool("include-deleted"),
			}

			// Check for positional ID argument
			if c.NArg() > 0 {
				input.ID = c.Args().First()
			} else {
				input.Workspace = c.String("workspace")
				input.Name = c.String("name")
			}

			if c.Bool("no-source") {
				input.IncludeSource = boolPtr(false)
			}
			if c.Bool("no-html") {
				input.IncludeHTML = boolPtr(false)
			}

			output, err := ops.Fetch(c.Context, db, input)
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
		Usage: "List decks in a workspace",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "workspace", Aliases: []string{"w"}, Value: "default", Usage: "Workspace name"},
			&cli.BoolFlag{Name: "all-workspaces", Aliases: []string{"a"}, Usage: "List decks across every workspace"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
			&cli.BoolFlag{Name: "include-deleted", Usage: "Include soft-deleted decks"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.List(c.Context, db, ops.ListInput{
				Workspace:      c.String("workspace"),
				AllWorkspaces:  c.Bool("all-workspaces"),
				Limit:          c.Int("limit"),
				Offset:         c.Int("offset"),
				IncludeDeleted: c.Bool("include-deleted"),
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
		Usage:     "Soft-delete a deck",
		ArgsUsage: "[id]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "workspace", Aliases: []string{"w"}, Value: "default", Usage: "Workspace name"},
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Deck name"},
		},
		Action: func(c *cli.Context) error {
			input := ops.DeleteInput{}
			if c.NArg() > 0 {
				input.ID = c.Args().First()
			} else {
				input.Workspace = c.String("workspace")
				input.Name = c.String("name")
			}

			output, err := ops.Delete(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// purgeCmd creates the purge command.
func purgeCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "purge",
		Usage: "Permanently delete soft-deleted decks",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "workspace", Aliases: []string{"w"}, Usage: "Filter by workspace"},
			&cli.StringFlag{Name: "older-than", Usage: "Only purge if deleted more than N days ago (e.g., 7d)"},
		},
		Action: func(c *cli.Context) error {
			input := ops.PurgeInput{}
			if workspace := c.String("workspace"); workspace != "" {
				input.Workspace = &workspace
			}
			if olderThan := c.String("older-than"); olderThan != "" {
				days, err := parseDuration(olderThan)
				if err != nil {
					return outputError(errors.NewInvalidRequest(err.Error()))
				}
				input.OlderThanDays = &days
			}

			output, err := ops.Purge(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// importCmd creates the import command.
func importCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Store a markdown, text or HTML file as a deck",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Import file path"},
			&cli.StringFlag{Name: "workspace", Aliases: []string{"w"}, Value: "default", Usage: "Workspace name"},
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Deck name (defaults to the file name)"},
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Deck title"},
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "error", Usage: "Collision mode: error|replace"},
		}, budgetFlags()...),
		Action: func(c *cli.Context) error {
			input := ops.ImportInput{
				Path:      c.String("path"),
				Workspace: c.String("workspace"),
				Mode:      ops.StoreMode(c.String("mode")),
				Overrides: overridesFromFlags(c),
			}
			if name := c.String("name"); name != "" {
				input.Name = &name
			}
			if title := c.String("title"); title != "" {
				input.Title = &title
			}

			output, err := ops.Import(c.Context, db, cfg, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Write a deck to a standalone HTML file",
		ArgsUsage: "[id]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "workspace", Aliases: []string{"w"}, Value: "default", Usage: "Workspace name"},
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Deck name"},
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: ~/.deckhand/exports/<name>-<timestamp>.html)"},
		},
		Action: func(c *cli.Context) error {
			input := ops.ExportInput{Path: c.String("path")}
			if c.NArg() > 0 {
				input.ID = c.Args().First()
			} else {
				input.Workspace = c.String("workspace")
				input.Name = c.String("name")
			}

			output, err := ops.Export(c.Context, db, cfg, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the web UI for browsing and previewing decks",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			srv := web.NewServer(db, cfg, Version, c.String("bind"), c.Int("port"))
			return web.Run(srv)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var deckErr *errors.DeckError
	if stderrors.As(err, &deckErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", deckErr.Code, deckErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// inputLimit bounds raw input at four bytes per allowed character.
func inputLimit(cfg *config.Config) int64 {
	if cfg == nil || cfg.DeckMaxChars <= 0 {
		return 0
	}
	return int64(cfg.DeckMaxChars) * 4
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin, up to limit bytes (0 means unlimited).
func readStdin(limit int64) ([]byte, error) {
	return readLimited(os.Stdin, limit)
}

// readFile reads a local file named on the command line.
func readFile(path string, limit int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewFileNotFound(path)
		}
		return nil, errors.NewInternal(err)
	}
	defer f.Close()
	return readLimited(f, limit)
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("input exceeds %d bytes", limit))
	}
	return data, nil
}

// parseDuration parses "7d" format to days.
func parseDuration(s string) (int, error) {
	if numStr, ok := strings.CutSuffix(s, "d"); ok {
		days, err := strconv.Atoi(numStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		if days < 0 {
			return 0, fmt.Errorf("duration must be non-negative")
		}
		return days, nil
	}
	return 0, fmt.Errorf("duration must end with 'd' (days), e.g., 7d")
}

func boolPtr(b bool) *bool {
	return &b
}
