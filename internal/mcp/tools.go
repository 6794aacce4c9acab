package mcp

import "github.com/mark3labs/mcp-go/mcp"

// Shared parameter descriptions
const (
	descWorkspace = "Workspace the deck belongs to (default: \"default\"). Matched case-insensitively."
	descID        = "Deck ID. Use either id, or name (with optional workspace)."
	descName      = "Deck name, unique per workspace. Matched case-insensitively."
)

// budgetOptions are the per-call overrides accepted by tools that convert markdown.
func budgetOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithNumber("max_chars", mcp.Description("Character budget of one slide (default from config).")),
		mcp.WithNumber("max_words", mcp.Description("Word budget of one slide (default from config).")),
		mcp.WithNumber("max_lines", mcp.Description("Line budget of one slide. Headings, content lines, task lists, images and table chunks each count as one line.")),
		mcp.WithNumber("table_char_budget", mcp.Description("Caps table rows per slide at this value divided by the average row length.")),
		mcp.WithBoolean("preserve_newlines", mcp.Description("Collapse blank lines between tags in the output (default: true).")),
		mcp.WithBoolean("sanitize", mcp.Description("Run output through the HTML allow-list (default: true).")),
	}
}

func newTool(name string, opts ...mcp.ToolOption) mcp.Tool {
	return mcp.NewTool(name, opts...)
}

var convertToolDef = newTool("deck_convert", append([]mcp.ToolOption{
	mcp.WithDescription("Convert markdown into slide HTML without storing it. "+
		"Slides break at '# ' titles, '## ' headings, '===' lines, images and when a slide's budget is full. "+
		"Long tables are split across slides with the header repeated."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("markdown", mcp.Required(), mcp.Description("Markdown source of the deck.")),
}, budgetOptions()...)...)

var storeToolDef = newTool("deck_store", append([]mcp.ToolOption{
	mcp.WithDescription("Convert markdown into slides and store the deck. "+
		"Returns the deck id and a fetch_key for later retrieval."),
	mcp.WithString("markdown", mcp.Required(), mcp.Description("Markdown source of the deck.")),
	mcp.WithString("workspace", mcp.Description(descWorkspace)),
	mcp.WithString("name", mcp.Description(descName+" Omit for an unnamed deck.")),
	mcp.WithString("title", mcp.Description("Deck title (default: first '# ' title, then name).")),
	mcp.WithString("mode", mcp.Enum("error", "replace"),
		mcp.Description("On name collision: 'error' fails (default), 'replace' overwrites the existing deck.")),
}, budgetOptions()...)...)

var fetchToolDef = newTool("deck_fetch",
	mcp.WithDescription("Fetch a stored deck with its markdown source and slide HTML."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("id", mcp.Description(descID)),
	mcp.WithString("workspace", mcp.Description(descWorkspace)),
	mcp.WithString("name", mcp.Description(descName)),
	mcp.WithBoolean("include_source", mcp.Description("Include the markdown source (default: true).")),
	mcp.WithBoolean("include_html", mcp.Description("Include the slide HTML (default: true).")),
	mcp.WithBoolean("include_deleted", mcp.Description("Also match soft-deleted decks.")),
)

var listToolDef = newTool("deck_list",
	mcp.WithDescription("List deck summaries in a workspace, most recently updated first."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("workspace", mcp.Description(descWorkspace)),
	mcp.WithBoolean("all_workspaces", mcp.Description("List decks across every workspace.")),
	mcp.WithNumber("limit", mcp.Description("Page size (default 20, max 100).")),
	mcp.WithNumber("offset", mcp.Description("Items to skip.")),
	mcp.WithBoolean("include_deleted", mcp.Description("Include soft-deleted decks.")),
)

var deleteToolDef = newTool("deck_delete",
	mcp.WithDescription("Soft-delete a deck. It can still be fetched with include_deleted until purged."),
	mcp.WithDestructiveHintAnnotation(true),
	mcp.WithString("id", mcp.Description(descID)),
	mcp.WithString("workspace", mcp.Description(descWorkspace)),
	mcp.WithString("name", mcp.Description(descName)),
)

var purgeToolDef = newTool("deck_purge",
	mcp.WithDescription("Permanently remove soft-deleted decks."),
	mcp.WithDestructiveHintAnnotation(true),
	mcp.WithString("workspace", mcp.Description("Only purge decks in this workspace.")),
	mcp.WithNumber("older_than_days", mcp.Description("Only purge decks deleted more than this many days ago.")),
)

var importToolDef = newTool("deck_import", append([]mcp.ToolOption{
	mcp.WithDescription("Read a markdown, text or HTML file and store it as a deck. "+
		"HTML is converted to markdown first and its <hr> rules become slide breaks. "+
		"The file must be directly in ~/.deckhand/exports or a configured allowed path."),
	mcp.WithString("path", mcp.Required(), mcp.Description("File to import (.md, .markdown, .txt, .html, .htm).")),
	mcp.WithString("workspace", mcp.Description(descWorkspace)),
	mcp.WithString("name", mcp.Description(descName+" Defaults to the file name without extension.")),
	mcp.WithString("title", mcp.Description("Deck title (default: HTML <title>, first '# ' title, then name).")),
	mcp.WithString("mode", mcp.Enum("error", "replace"),
		mcp.Description("On name collision: 'error' fails (default), 'replace' overwrites the existing deck.")),
}, budgetOptions()...)...)

var exportToolDef = newTool("deck_export",
	mcp.WithDescription("Write a stored deck to a standalone HTML file. "+
		"Defaults to ~/.deckhand/exports/<name>-<timestamp>.html."),
	mcp.WithString("id", mcp.Description(descID)),
	mcp.WithString("workspace", mcp.Description(descWorkspace)),
	mcp.WithString("name", mcp.Description(descName)),
	mcp.WithString("path", mcp.Description("Destination .html file, directly in ~/.deckhand/exports or a configured allowed path.")),
)
