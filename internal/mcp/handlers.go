package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/deckhand/internal/config"
	"github.com/hpungsan/deckhand/internal/errors"
	"github.com/hpungsan/deckhand/internal/ops"
)

// Handlers serves the deck tools against one database and config.
type Handlers struct {
	db  *sql.DB
	cfg *config.Config
}

func NewHandlers(db *sql.DB, cfg *config.Config) *Handlers {
	return &Handlers{db: db, cfg: cfg}
}

// BudgetArgs are the conversion overrides shared by convert, store and import.
type BudgetArgs struct {
	MaxChars         *int  `json:"max_chars,omitempty"`
	MaxWords         *int  `json:"max_words,omitempty"`
	MaxLines         *int  `json:"max_lines,omitempty"`
	TableCharBudget  *int  `json:"table_char_budget,omitempty"`
	PreserveNewlines *bool `json:"preserve_newlines,omitempty"`
	Sanitize         *bool `json:"sanitize,omitempty"`
}

func (b BudgetArgs) overrides() ops.Overrides {
	return ops.Overrides(b)
}

// Tool arguments. Each maps field for field onto its ops input.
type (
	ConvertRequest struct {
		Markdown string `json:"markdown"`
		BudgetArgs
	}

	StoreRequest struct {
		Workspace string  `json:"workspace"`
		Name      *string `json:"name,omitempty"`
		Title     *string `json:"title,omitempty"`
		Markdown  string  `json:"markdown"`
		Mode      string  `json:"mode,omitempty"`
		BudgetArgs
	}

	FetchRequest struct {
		ID             string `json:"id,omitempty"`
		Workspace      string `json:"workspace,omitempty"`
		Name           string `json:"name,omitempty"`
		IncludeDeleted bool   `json:"include_deleted,omitempty"`
		IncludeSource  *bool  `json:"include_source,omitempty"`
		IncludeHTML    *bool  `json:"include_html,omitempty"`
	}

	ListRequest struct {
		Workspace      string `json:"workspace,omitempty"`
		AllWorkspaces  bool   `json:"all_workspaces,omitempty"`
		Limit          int    `json:"limit,omitempty"`
		Offset         int    `json:"offset,omitempty"`
		IncludeDeleted bool   `json:"include_deleted,omitempty"`
	}

	DeleteRequest struct {
		ID        string `json:"id,omitempty"`
		Workspace string `json:"workspace,omitempty"`
		Name      string `json:"name,omitempty"`
	}

	PurgeRequest struct {
		Workspace     *string `json:"workspace,omitempty"`
		OlderThanDays *int    `json:"older_than_days,omitempty"`
	}

	ImportRequest struct {
		Path      string  `json:"path"`
		Workspace string  `json:"workspace,omitempty"`
		Name      *string `json:"name,omitempty"`
		Title     *string `json:"title,omitempty"`
		Mode      string  `json:"mode,omitempty"`
		BudgetArgs
	}

	ExportRequest struct {
		ID        string `json:"id,omitempty"`
		Workspace string `json:"workspace,omitempty"`
		Name      string `json:"name,omitempty"`
		Path      string `json:"path,omitempty"`
	}
)

// serve decodes the tool arguments into R and runs op. Failures of either
// step come back as an error result, never as a protocol error.
func serve[R, O any](req mcp.CallToolRequest, op func(R) (O, error)) (*mcp.CallToolResult, error) {
	args, err := decode[R](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	out, err := op(args)
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultJSON(out)
}

func (h *Handlers) HandleConvert(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return serve(req, func(r ConvertRequest) (*ops.ConvertOutput, error) {
		return ops.Convert(ctx, h.cfg, ops.ConvertInput{Markdown: r.Markdown, Overrides: r.overrides()})
	})
}

func (h *Handlers) HandleStore(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return serve(req, func(r StoreRequest) (*ops.StoreOutput, error) {
		return ops.Store(ctx, h.db, h.cfg, ops.StoreInput{
			Workspace: r.Workspace,
			Name:      r.Name,
			Title:     r.Title,
			Markdown:  r.Markdown,
			Mode:      ops.StoreMode(r.Mode),
			Overrides: r.overrides(),
		})
	})
}

func (h *Handlers) HandleFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return serve(req, func(r FetchRequest) (*ops.FetchOutput, error) {
		return ops.Fetch(ctx, h.db, ops.FetchInput(r))
	})
}

func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return serve(req, func(r ListRequest) (*ops.ListOutput, error) {
		return ops.List(ctx, h.db, ops.ListInput(r))
	})
}

func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return serve(req, func(r DeleteRequest) (*ops.DeleteOutput, error) {
		return ops.Delete(ctx, h.db, ops.DeleteInput(r))
	})
}

func (h *Handlers) HandlePurge(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return serve(req, func(r PurgeRequest) (*ops.PurgeOutput, error) {
		return ops.Purge(ctx, h.db, ops.PurgeInput(r))
	})
}

func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return serve(req, func(r ImportRequest) (*ops.ImportOutput, error) {
		return ops.Import(ctx, h.db, h.cfg, ops.ImportInput{
			Path:      r.Path,
			Workspace: r.Workspace,
			Name:      r.Name,
			Title:     r.Title,
			Mode:      ops.StoreMode(r.Mode),
			Overrides: r.overrides(),
		})
	})
}

func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return serve(req, func(r ExportRequest) (*ops.ExportOutput, error) {
		return ops.Export(ctx, h.db, h.cfg, ops.ExportInput(r))
	})
}

// toolError is the JSON body of a failed tool call.
type toolError struct {
	Code    errors.ErrorCode `json:"code"`
	Message string           `json:"message"`
	Status  int              `json:"status"`
	Details map[string]any   `json:"details,omitempty"`
}

// errorResult reports err with IsError set. Anything other than a
// non-internal DeckError becomes a bare INTERNAL. Context wrapped around a
// DeckError is kept as a prefix of the message.
func errorResult(err error) *mcp.CallToolResult {
	body := toolError{
		Code:    errors.ErrInternal,
		Message: "an internal error occurred",
		Status:  500,
	}

	var de *errors.DeckError
	if stderrors.As(err, &de) && de.Code != errors.ErrInternal {
		body = toolError{Code: de.Code, Message: de.Message, Status: de.Status, Details: de.Details}
		if prefix, ok := strings.CutSuffix(err.Error(), de.Error()); ok {
			body.Message = prefix + de.Message
		}
	}

	text, _ := json.Marshal(map[string]toolError{"error": body})
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(string(text))},
		IsError: true,
	}
}
