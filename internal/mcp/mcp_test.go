package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/deckhand/internal/config"
	"github.com/hpungsan/deckhand/internal/db"
	"github.com/hpungsan/deckhand/internal/errors"
)

// testSetup creates a temporary database and config for testing.
func testSetup(t *testing.T) (*sql.DB, *config.Config, func()) {
	t.Helper()

	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true // Allow temp dirs in tests

	cleanup := func() {
		database.Close()
	}

	return database, cfg, cleanup
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

// sampleMarkdown converts to three slides.
const sampleMarkdown = `# Kickoff

Welcome to the team.

## Agenda

- Intros
- Roadmap

===

Questions?`

// storeDeck stores sampleMarkdown under workspace/name and returns the new ID.
func storeDeck(t *testing.T, h *Handlers, workspace, name string) string {
	t.Helper()
	result, err := h.HandleStore(context.Background(), makeRequest(map[string]any{
		"markdown":  sampleMarkdown,
		"workspace": workspace,
		"name":      name,
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return parseOutput(t, result)["id"].(string)
}

// runCases calls handler for each case and checks success or the error code.
func runCases(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), tests []handlerCase) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := handler(context.Background(), makeRequest(tt.args))
			if err != nil {
				t.Fatalf("handler returned error: %v", err)
			}

			if tt.errorCode != "" {
				if !result.IsError {
					t.Fatalf("expected error result, got success")
				}
				assertErrorCode(t, result, tt.errorCode)
			} else if result.IsError {
				t.Errorf("expected success, got error: %v", extractErrorMessage(result))
			}
		})
	}
}

type handlerCase struct {
	name      string
	args      map[string]any
	errorCode string // empty means success
}

func TestHandleConvert(t *testing.T) {
	database, cfg, cleanup := testSetup(t)
	defer cleanup()

	h := NewHandlers(database, cfg)

	runCases(t, h.HandleConvert, []handlerCase{
		{name: "convert markdown", args: map[string]any{"markdown": sampleMarkdown}},
		{name: "convert with budget override", args: map[string]any{"markdown": sampleMarkdown, "max_lines": 2}},
		{name: "convert without markdown", args: map[string]any{}, errorCode: "INVALID_REQUEST"},
		{name: "convert with negative budget", args: map[string]any{"markdown": "x", "max_chars": -5}, errorCode: "INVALID_BUDGET"},
		{name: "convert with zero budget", args: map[string]any{"markdown": "x", "max_lines": 0}, errorCode: "INVALID_BUDGET"},
		{name: "convert with wrong argument type", args: map[string]any{"markdown": 42}, errorCode: "INVALID_REQUEST"},
	})
}

func TestHandleConvert_Output(t *testing.T) {
	database, cfg, cleanup := testSetup(t)
	defer cleanup()

	h := NewHandlers(database, cfg)
	result, err := h.HandleConvert(context.Background(), makeRequest(map[string]any{"markdown": sampleMarkdown}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	output := parseOutput(t, result)
	slides, ok := output["slides"].([]any)
	if !ok {
		t.Fatalf("slides = %T, want array", output["slides"])
	}
	stats := output["stats"].(map[string]any)
	if int(stats["slides"].(float64)) != len(slides) || len(slides) != 3 {
		t.Errorf("stats.slides = %v, len(slides) = %d, want 3", stats["slides"], len(slides))
	}
	if output["title"] != "Kickoff" {
		t.Errorf("title = %v, want Kickoff", output["title"])
	}
	if !strings.Contains(output["html"].(string), "<h1>Kickoff</h1>") {
		t.Errorf("html = %v, want title markup", output["html"])
	}
}

func TestHandleStore(t *testing.T) {
	database, cfg, cleanup := testSetup(t)
	defer cleanup()

	h := NewHandlers(database, cfg)

	runCases(t, h.HandleStore, []handlerCase{
		{
			name: "store valid deck",
			args: map[string]any{"markdown": sampleMarkdown, "workspace": "test", "name": "test-deck"},
		},
		{
			name:      "store without markdown",
			args:      map[string]any{"workspace": "test", "name": "empty"},
			errorCode: "INVALID_REQUEST",
		},
		{
			name:      "store duplicate name with mode:error",
			args:      map[string]any{"markdown": sampleMarkdown, "workspace": "test", "name": "test-deck", "mode": "error"},
			errorCode: "NAME_ALREADY_EXISTS",
		},
		{
			name: "store duplicate name with mode:replace",
			args: map[string]any{"markdown": sampleMarkdown, "workspace": "test", "name": "test-deck", "mode": "replace"},
		},
		{
			name:      "store with unknown mode",
			args:      map[string]any{"markdown": sampleMarkdown, "name": "x", "mode": "rename"},
			errorCode: "INVALID_REQUEST",
		},
		{
			name: "store unnamed deck",
			args: map[string]any{"markdown": sampleMarkdown},
		},
	})
}

func TestHandleStore_Output(t *testing.T) {
	database, cfg, cleanup := testSetup(t)
	defer cleanup()

	h := NewHandlers(database, cfg)
	result, err := h.HandleStore(context.Background(), makeRequest(map[string]any{
		"markdown":  sampleMarkdown,
		"workspace": "Team",
		"name":      "Kickoff",
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	output := parseOutput(t, result)
	if output["created"] != true {
		t.Errorf("created = %v, want true", output["created"])
	}
	key := output["fetch_key"].(map[string]any)
	if key["workspace"] != "team" || key["name"] != "kickoff" {
		t.Errorf("fetch_key = %v, want normalized workspace and name", key)
	}
}

func TestHandleFetch(t *testing.T) {
	database, cfg, cleanup := testSetup(t)
	defer cleanup()

	h := NewHandlers(database, cfg)
	deckID := storeDeck(t, h, "test", "fetch-test")

	runCases(t, h.HandleFetch, []handlerCase{
		{name: "fetch by name", args: map[string]any{"workspace": "test", "name": "fetch-test"}},
		{name: "fetch by id", args: map[string]any{"id": deckID}},
		{name: "fetch non-existent", args: map[string]any{"workspace": "test", "name": "does-not-exist"}, errorCode: "NOT_FOUND"},
		{name: "fetch with ambiguous addressing", args: map[string]any{"id": deckID, "workspace": "test", "name": "fetch-test"}, errorCode: "AMBIGUOUS_ADDRESSING"},
		{name: "fetch with no addressing", args: map[string]any{}, errorCode: "INVALID_REQUEST"},
	})
}

func TestHandleFetch_IncludeFlags(t *testing.T) {
	database, cfg, cleanup := testSetup(t)
	defer cleanup()

	h := NewHandlers(database, cfg)
	deckID := storeDeck(t, h, "test", "flags")
	ctx := context.Background()

	result, _ := h.HandleFetch(ctx, makeRequest(map[string]any{"id": deckID}))
	output := parseOutput(t, result)
	if output["source_text"] != sampleMarkdown {
		t.Error("source_text should be included by default")
	}
	if output["html"] == nil {
		t.Error("html should be included by default")
	}

	result, _ = h.HandleFetch(ctx, makeRequest(map[string]any{
		"id":             deckID,
		"include_source": false,
		"include_html":   false,
	}))
	output = parseOutput(t, result)
	if _, ok := output["source_text"]; ok {
		t.Error("source_text should be omitted")
	}
	if _, ok := output["html"]; ok {
		t.Error("html should be omitted")
	}
	if output["slide_count"].(float64) != 3 {
		t.Errorf("slide_count = %v, want 3", output["slide_count"])
	}
}

func TestHandleList(t *testing.T) {
	database, cfg, cleanup := testSetup(t)
	defer cleanup()

	h := NewHandlers(database, cfg)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		storeDeck(t, h, "list-ws", fmt.Sprintf("deck-%d", i))
	}
	storeDeck(t, h, "other-ws", "elsewhere")

	tests := []struct {
		name      string
		args      map[string]any
		wantItems int
		wantTotal int
	}{
		{"workspace", map[string]any{"workspace": "list-ws"}, 3, 3},
		{"paginated", map[string]any{"workspace": "list-ws", "limit": 2}, 2, 3},
		{"offset", map[string]any{"workspace": "list-ws", "limit": 2, "offset": 2}, 1, 3},
		{"all workspaces", map[string]any{"all_workspaces": true}, 4, 4},
		{"empty workspace", map[string]any{"workspace": "nothing-here"}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.HandleList(ctx, makeRequest(tt.args))
			if err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			output := parseOutput(t, result)

			items := output["items"].([]any)
			if len(items) != tt.wantItems {
				t.Errorf("items = %d, want %d", len(items), tt.wantItems)
			}
			pagination := output["pagination"].(map[string]any)
			if int(pagination["total"].(float64)) != tt.wantTotal {
				t.Errorf("total = %v, want %d", pagination["total"], tt.wantTotal)
			}
			if output["sort"] != "updated_at_desc" {
				t.Errorf("sort = %v, want updated_at_desc", output["sort"])
			}
		})
	}
}

func TestHandleDelete(t *testing.T) {
	database, cfg, cleanup := testSetup(t)
	defer cleanup()

	h := NewHandlers(database, cfg)
	ctx := context.Background()
	deckID := storeDeck(t, h, "test", "delete-me")

	runCases(t, h.HandleDelete, []handlerCase{
		{name: "delete by name", args: map[string]any{"workspace": "test", "name": "delete-me"}},
		{name: "delete again", args: map[string]any{"id": deckID}, errorCode: "NOT_FOUND"},
		{name: "delete with no addressing", args: map[string]any{}, errorCode: "INVALID_REQUEST"},
	})

	// Still visible with include_deleted
	result, _ := h.HandleFetch(ctx, makeRequest(map[string]any{"id": deckID, "include_deleted": true}))
	output := parseOutput(t, result)
	if output["deleted_at"] == nil {
		t.Error("deleted deck should carry deleted_at")
	}
}

func TestHandlePurge(t *testing.T) {
	database, cfg, cleanup := testSetup(t)
	defer cleanup()

	h := NewHandlers(database, cfg)
	ctx := context.Background()

	storeDeck(t, h, "test", "purge-test")
	if result, _ := h.HandleDelete(ctx, makeRequest(map[string]any{"workspace": "test", "name": "purge-test"})); result.IsError {
		t.Fatalf("setup delete failed: %v", extractErrorMessage(result))
	}

	result, err := h.HandlePurge(ctx, makeRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("purge handler returned error: %v", err)
	}
	output := parseOutput(t, result)
	if output["purged"].(float64) != 1 {
		t.Errorf("purged = %v, want 1", output["purged"])
	}

	fetchResult, _ := h.HandleFetch(ctx, makeRequest(map[string]any{
		"workspace":       "test",
		"name":            "purge-test",
		"include_deleted": true,
	}))
	if !fetchResult.IsError {
		t.Error("purged deck should not be found")
	}

	runCases(t, h.HandlePurge, []handlerCase{
		{name: "negative age", args: map[string]any{"older_than_days": -1}, errorCode: "INVALID_REQUEST"},
		{name: "nothing to purge", args: map[string]any{"workspace": "test"}},
	})
}

func TestHandleExportImport(t *testing.T) {
	database, cfg, cleanup := testSetup(t)
	defer cleanup()

	h := NewHandlers(database, cfg)
	ctx := context.Background()
	storeDeck(t, h, "test", "export-test")

	exportPath := filepath.Join(t.TempDir(), "export.html")
	exportResult, err := h.HandleExport(ctx, makeRequest(map[string]any{
		"workspace": "test",
		"name":      "export-test",
		"path":      exportPath,
	}))
	if err != nil {
		t.Fatalf("export handler returned error: %v", err)
	}
	exportOutput := parseOutput(t, exportResult)
	if exportOutput["slides"].(float64) != 3 {
		t.Errorf("slides = %v, want 3", exportOutput["slides"])
	}
	if _, err := os.Stat(exportPath); os.IsNotExist(err) {
		t.Fatal("export file not created")
	}

	// Import the exported page into a fresh database
	database2, cfg2, cleanup2 := testSetup(t)
	defer cleanup2()
	h2 := NewHandlers(database2, cfg2)

	importResult, err := h2.HandleImport(ctx, makeRequest(map[string]any{
		"path":      exportPath,
		"workspace": "test",
	}))
	if err != nil {
		t.Fatalf("import handler returned error: %v", err)
	}
	importOutput := parseOutput(t, importResult)
	if importOutput["mime"] != "text/html" {
		t.Errorf("mime = %v, want text/html", importOutput["mime"])
	}

	fetchResult, _ := h2.HandleFetch(ctx, makeRequest(map[string]any{
		"workspace": "test",
		"name":      "export",
	}))
	if fetchResult.IsError {
		t.Errorf("imported deck not found: %v", extractErrorMessage(fetchResult))
	}
}

func TestHandleImport_Errors(t *testing.T) {
	database, cfg, cleanup := testSetup(t)
	defer cleanup()

	h := NewHandlers(database, cfg)
	dir := t.TempDir()

	runCases(t, h.HandleImport, []handlerCase{
		{name: "import without path", args: map[string]any{}, errorCode: "INVALID_REQUEST"},
		{name: "import missing file", args: map[string]any{"path": filepath.Join(dir, "missing.md")}, errorCode: "FILE_NOT_FOUND"},
		{name: "import wrong extension", args: map[string]any{"path": filepath.Join(dir, "deck.pdf")}, errorCode: "INVALID_REQUEST"},
	})
}

func TestHandleExport_Errors(t *testing.T) {
	database, cfg, cleanup := testSetup(t)
	defer cleanup()

	h := NewHandlers(database, cfg)
	dir := t.TempDir()

	runCases(t, h.HandleExport, []handlerCase{
		{name: "export missing deck", args: map[string]any{"id": "01MISSING", "path": filepath.Join(dir, "a.html")}, errorCode: "NOT_FOUND"},
		{name: "export with no addressing", args: map[string]any{"path": filepath.Join(dir, "a.html")}, errorCode: "INVALID_REQUEST"},
	})
}

func TestDecode_TypeErrors(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"string field", map[string]any{"markdown": 12}, "markdown must be a string"},
		{"embedded number", map[string]any{"markdown": "x", "max_lines": "seven"}, "max_lines must be a number"},
		{"embedded bool", map[string]any{"markdown": "x", "sanitize": "no"}, "sanitize must be a boolean"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decode[ConvertRequest](makeRequest(tt.args))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if err.Error() != tt.want {
				t.Errorf("error = %q, want %q", err.Error(), tt.want)
			}
		})
	}

	h := NewHandlers(nil, config.DefaultConfig())
	result, err := h.HandleConvert(context.Background(), makeRequest(map[string]any{"markdown": 12}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	assertErrorCode(t, result, "INVALID_REQUEST")
}

func TestServerRegistration(t *testing.T) {
	database, cfg, cleanup := testSetup(t)
	defer cleanup()

	s := NewServer(database, cfg, "test")
	tools := s.ListTools()
	if tools == nil {
		t.Fatal("expected tools to be registered, got nil")
	}

	expectedTools := []string{
		"deck_convert",
		"deck_store",
		"deck_fetch",
		"deck_list",
		"deck_delete",
		"deck_purge",
		"deck_import",
		"deck_export",
	}

	if len(tools) != len(expectedTools) {
		t.Errorf("registered tool count = %d, want %d", len(tools), len(expectedTools))
	}

	for _, name := range expectedTools {
		if _, ok := tools[name]; !ok {
			t.Errorf("missing registered tool: %s", name)
		}
	}
}

func TestServerRegistration_WithDisabledTools(t *testing.T) {
	database, cfg, cleanup := testSetup(t)
	defer cleanup()

	cfg.DisabledTools = []string{"deck_purge", "deck_import", "deck_export"}
	s := NewServer(database, cfg, "test")
	tools := s.ListTools()

	// 8 tools minus 3 disabled
	if len(tools) != 5 {
		t.Errorf("registered tool count = %d, want 5", len(tools))
	}

	for _, name := range cfg.DisabledTools {
		if _, ok := tools[name]; ok {
			t.Errorf("disabled tool %q should not be registered", name)
		}
	}

	for _, name := range []string{"deck_convert", "deck_store", "deck_fetch", "deck_list"} {
		if _, ok := tools[name]; !ok {
			t.Errorf("core tool %q should be registered", name)
		}
	}
}

func TestServerRegistration_AllToolsDisabled(t *testing.T) {
	database, cfg, cleanup := testSetup(t)
	defer cleanup()

	cfg.DisabledTools = AllToolNames()
	s := NewServer(database, cfg, "test")
	tools := s.ListTools()

	if len(tools) != 0 {
		t.Errorf("registered tool count = %d, want 0 (all disabled)", len(tools))
	}
}

func TestServerRegistration_DuplicateDisabled(t *testing.T) {
	database, cfg, cleanup := testSetup(t)
	defer cleanup()

	cfg.DisabledTools = []string{"deck_purge", "deck_purge", "deck_purge"}
	s := NewServer(database, cfg, "test")
	tools := s.ListTools()

	if len(tools) != 7 {
		t.Errorf("registered tool count = %d, want 7", len(tools))
	}
	if _, ok := tools["deck_purge"]; ok {
		t.Error("disabled tool 'deck_purge' should not be registered")
	}
}

func TestValidateDisabledTools(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		wantLen int
	}{
		{"all valid", []string{"deck_purge", "deck_delete"}, 0},
		{"one unknown", []string{"deck_purge", "fake_tool"}, 1},
		{"unknown tool name", []string{"deck_search"}, 1},
		{"all unknown", []string{"foo", "bar", "baz"}, 3},
		{"empty list", []string{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unknown := ValidateDisabledTools(tt.input)
			if len(unknown) != tt.wantLen {
				t.Errorf("ValidateDisabledTools() returned %d unknown, want %d", len(unknown), tt.wantLen)
			}
		})
	}
}

func TestAllToolNames(t *testing.T) {
	names := AllToolNames()

	if len(names) != 8 {
		t.Errorf("AllToolNames() returned %d names, want 8", len(names))
	}
	if names[0] != "deck_convert" {
		t.Errorf("AllToolNames()[0] = %q, want sorted order", names[0])
	}

	unknown := ValidateDisabledTools(names)
	if len(unknown) != 0 {
		t.Errorf("AllToolNames() returned invalid names: %v", unknown)
	}
}

func TestErrorResult_InternalDoesNotExposeDetails(t *testing.T) {
	r := errorResult(errors.NewInternal(fmt.Errorf("sql error: open /tmp/secret.db: permission denied")))
	if !r.IsError {
		t.Fatal("expected IsError=true")
	}

	errObj := errorObject(t, r)
	if errObj["code"] != string(errors.ErrInternal) {
		t.Fatalf("code=%v, want %v", errObj["code"], errors.ErrInternal)
	}
	if _, ok := errObj["details"]; ok {
		t.Fatal("expected INTERNAL errors to omit details")
	}
}

func TestErrorResult_PlainError(t *testing.T) {
	r := errorResult(fmt.Errorf("boom"))
	errObj := errorObject(t, r)
	if errObj["code"] != "INTERNAL" {
		t.Errorf("code=%v, want INTERNAL", errObj["code"])
	}
	if strings.Contains(errObj["message"].(string), "boom") {
		t.Error("plain errors should not leak their message")
	}
}

func TestErrorResult_WrappedErrorPreservesContext(t *testing.T) {
	originalErr := errors.NewAmbiguousAddressing()
	wrappedErr := fmt.Errorf("import review.html: %w", originalErr)

	r := errorResult(wrappedErr)
	if !r.IsError {
		t.Fatal("expected IsError=true")
	}

	errObj := errorObject(t, r)
	if errObj["code"] != string(errors.ErrAmbiguousAddressing) {
		t.Errorf("code=%v, want %v", errObj["code"], errors.ErrAmbiguousAddressing)
	}

	msg := errObj["message"].(string)
	if !strings.Contains(msg, "import review.html") {
		t.Errorf("message should contain wrapper context, got: %s", msg)
	}
	if !strings.Contains(msg, originalErr.Message) {
		t.Errorf("message should contain original message, got: %s", msg)
	}
}

func TestErrorResult_NonInternalIncludesDetails(t *testing.T) {
	r := errorResult(errors.NewNotFound("abc"))
	if !r.IsError {
		t.Fatal("expected IsError=true")
	}

	errObj := errorObject(t, r)
	if errObj["code"] != string(errors.ErrNotFound) {
		t.Fatalf("code=%v, want %v", errObj["code"], errors.ErrNotFound)
	}
	if _, ok := errObj["details"]; !ok {
		t.Fatal("expected non-INTERNAL errors to include details when present")
	}
}

// Helper functions

// parseOutput extracts and unmarshals the JSON output from an MCP result.
func parseOutput(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	if result.IsError {
		t.Fatalf("expected success, got error: %v", extractErrorMessage(result))
	}
	var output map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &output); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return output
}

// errorObject returns the "error" object of an error result.
func errorObject(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &payload); err != nil {
		t.Fatalf("failed to unmarshal error payload: %v", err)
	}
	return payload["error"].(map[string]any)
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

	code, ok := errorObj["code"].(string)
	if !ok {
		t.Errorf("no code in error object")
		return
	}

	if code != expectedCode {
		t.Errorf("got error code %q, want %q", code, expectedCode)
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

func TestErrorResult_InternalHidesMessage(t *testing.T) {
	r := errorResult(fmt.Errorf("store: %w", errors.NewInternal(fmt.Errorf("open /tmp/secret.db: locked"))))
	errObj := errorObject(t, r)
	if errObj["code"] != string(errors.ErrInternal) {
		t.Fatalf("code=%v, want INTERNAL", errObj["code"])
	}
	if strings.Contains(errObj["message"].(string), "secret.db") {
		t.Errorf("internal message leaked: %v", errObj["message"])
	}
}
