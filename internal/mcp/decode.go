package mcp

import (
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// decode binds tool arguments onto a request struct. Type mismatches are
// reported by argument name, e.g. "max_lines must be a number".
func decode[T any](req mcp.CallToolRequest) (T, error) {
	var args T
	raw, err := json.Marshal(req.GetArguments())
	if err != nil {
		return args, fmt.Errorf("invalid arguments: %w", err)
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		var typeErr *json.UnmarshalTypeError
		if stderrors.As(err, &typeErr) && typeErr.Field != "" {
			return args, fmt.Errorf("%s must be %s", typeErr.Field, jsonKind(typeErr.Type.Kind().String()))
		}
		return args, fmt.Errorf("invalid arguments: %w", err)
	}
	return args, nil
}

// jsonKind names a Go kind the way a tool caller sees it.
func jsonKind(kind string) string {
	switch kind {
	case "int", "int64", "float64":
		return "a number"
	case "bool":
		return "a boolean"
	case "string":
		return "a string"
	default:
		return "a " + kind
	}
}
