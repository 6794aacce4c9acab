package errors

import (
	"fmt"
	"testing"
)

func TestDeckError_Error(t *testing.T) {
	err := &DeckError{
		Code:    ErrNotFound,
		Status:  404,
		Message: "deck not found",
	}

	expected := "NOT_FOUND: deck not found"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewAmbiguousAddressing(t *testing.T) {
	err := NewAmbiguousAddressing()

	if err.Code != ErrAmbiguousAddressing {
		t.Errorf("Code = %q, want %q", err.Code, ErrAmbiguousAddressing)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
}

func TestNewInvalidRequest(t *testing.T) {
	err := NewInvalidRequest("source_text is required")

	if err.Code != ErrInvalidRequest {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidRequest)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
	if err.Message != "source_text is required" {
		t.Errorf("Message = %q, want %q", err.Message, "source_text is required")
	}
}

func TestNewInvalidBudget(t *testing.T) {
	err := NewInvalidBudget("max_words_per_slide", 0)

	if err.Code != ErrInvalidBudget {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidBudget)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
	if err.Details["field"] != "max_words_per_slide" {
		t.Errorf("Details[field] = %v, want max_words_per_slide", err.Details["field"])
	}
	if err.Details["value"] != 0 {
		t.Errorf("Details[value] = %v, want 0", err.Details["value"])
	}
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound("kickoff")

	if err.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotFound)
	}
	if err.Status != 404 {
		t.Errorf("Status = %d, want 404", err.Status)
	}
	if err.Details["identifier"] != "kickoff" {
		t.Errorf("Details[identifier] = %v, want %q", err.Details["identifier"], "kickoff")
	}
}

func TestNewFileNotFound(t *testing.T) {
	err := NewFileNotFound("/tmp/missing.md")

	if err.Code != ErrFileNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrFileNotFound)
	}
	if err.Status != 404 {
		t.Errorf("Status = %d, want 404", err.Status)
	}
	if err.Details["path"] != "/tmp/missing.md" {
		t.Errorf("Details[path] = %v", err.Details["path"])
	}
}

func TestNewNameAlreadyExists(t *testing.T) {
	err := NewNameAlreadyExists("default", "kickoff")

	if err.Code != ErrNameAlreadyExists {
		t.Errorf("Code = %q, want %q", err.Code, ErrNameAlreadyExists)
	}
	if err.Status != 409 {
		t.Errorf("Status = %d, want 409", err.Status)
	}
	if err.Details["workspace"] != "default" {
		t.Errorf("Details[workspace] = %v, want %q", err.Details["workspace"], "default")
	}
	if err.Details["name"] != "kickoff" {
		t.Errorf("Details[name] = %v, want %q", err.Details["name"], "kickoff")
	}
}

func TestNewSourceTooLarge(t *testing.T) {
	err := NewSourceTooLarge(200000, 250000)

	if err.Code != ErrSourceTooLarge {
		t.Errorf("Code = %q, want %q", err.Code, ErrSourceTooLarge)
	}
	if err.Status != 413 {
		t.Errorf("Status = %d, want 413", err.Status)
	}
	if err.Details["max_chars"] != 200000 {
		t.Errorf("Details[max_chars] = %v, want 200000", err.Details["max_chars"])
	}
	if err.Details["actual_chars"] != 250000 {
		t.Errorf("Details[actual_chars] = %v, want 250000", err.Details["actual_chars"])
	}
}

func TestNewUnsupportedSource(t *testing.T) {
	err := NewUnsupportedSource("application/pdf")

	if err.Code != ErrUnsupportedSource {
		t.Errorf("Code = %q, want %q", err.Code, ErrUnsupportedSource)
	}
	if err.Status != 415 {
		t.Errorf("Status = %d, want 415", err.Status)
	}
}

func TestNewCancelled(t *testing.T) {
	err := NewCancelled("export")
	if err.Code != ErrCancelled {
		t.Errorf("Code = %v, want %v", err.Code, ErrCancelled)
	}
	if err.Status != 499 {
		t.Errorf("Status = %d, want 499", err.Status)
	}
	if err.Message != "export cancelled" {
		t.Errorf("Message = %q, want %q", err.Message, "export cancelled")
	}
}

func TestNewInternal(t *testing.T) {
	err := NewInternal(fmt.Errorf("disk full"))
	if err.Code != ErrInternal {
		t.Errorf("Code = %q, want %q", err.Code, ErrInternal)
	}
	if err.Status != 500 {
		t.Errorf("Status = %d, want 500", err.Status)
	}
	if err.Message != "disk full" {
		t.Errorf("Message = %q, want %q", err.Message, "disk full")
	}

	nilErr := NewInternal(nil)
	if nilErr.Message != "internal error" {
		t.Errorf("Message = %q, want %q", nilErr.Message, "internal error")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code ErrorCode
		want bool
	}{
		{"matching code", NewNotFound("x"), ErrNotFound, true},
		{"different code", NewNotFound("x"), ErrInternal, false},
		{"wrapped", fmt.Errorf("loading deck: %w", NewInvalidBudget("max_chars_per_slide", -1)), ErrInvalidBudget, true},
		{"plain error", fmt.Errorf("boom"), ErrInternal, false},
		{"nil", nil, ErrInternal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}
