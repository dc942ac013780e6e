package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestReconcilerErrorMessage(t *testing.T) {
	err := NewFileError(CodeFileNotFound, "input file not found", nil)
	if err.Error() != "input file not found" {
		t.Errorf("Error() = %q", err.Error())
	}

	err.WithSuggestion("Check the path")
	if err.Error() != "input file not found (suggestion: Check the path)" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestWithContext(t *testing.T) {
	err := NewParseError(CodeEmptySheet, "worksheet is empty", nil).
		WithContext("path", "statement.xlsx").
		WithContext("sheet", "DataSheet")

	if err.Context["path"] != "statement.xlsx" || err.Context["sheet"] != "DataSheet" {
		t.Errorf("context = %v", err.Context)
	}
}

func TestExitCodes(t *testing.T) {
	tests := []struct {
		err  *ReconcilerError
		want int
	}{
		{NewFileError(CodeFileNotFound, "x", nil), 2},
		{NewParseError(CodeInvalidFormat, "x", nil), 3},
		{NewValidationError(CodeMissingField, "x", nil), 3},
		{NewConfigError(CodeInvalidConfig, "x", nil), 4},
		{NewStorageError(CodeStoreQuery, "x", nil), 5},
		{NewReconciliationError(CodeProcessingError, "x", nil), 6},
		{NewInternalError("x", nil), 6},
	}

	for _, tt := range tests {
		if got := tt.err.GetExitCode(); got != tt.want {
			t.Errorf("%s: exit code = %d, want %d", tt.err.Category, got, tt.want)
		}
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("disk on fire")
	err := NewStorageError(CodeStoreUnavailable, "failed to open lookup database", cause)

	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestAsReconcilerError(t *testing.T) {
	inner := NewParseError(CodeInvalidFormat, "bad workbook", nil)
	wrapped := fmt.Errorf("loading input: %w", inner)

	got, ok := AsReconcilerError(wrapped)
	if !ok || got.Code != CodeInvalidFormat {
		t.Errorf("AsReconcilerError = (%v, %v)", got, ok)
	}

	if _, ok := AsReconcilerError(stderrors.New("plain")); ok {
		t.Error("expected plain errors not to convert")
	}
}

func TestWrapPreservesMetadata(t *testing.T) {
	inner := NewStorageError(CodeStoreQuery, "failed to save name mapping", nil)
	wrapped := Wrap(inner, "importing snapshot")

	got, ok := AsReconcilerError(wrapped)
	if !ok {
		t.Fatal("expected wrapped error to stay a ReconcilerError")
	}
	if got.Category != CategoryStorage || got.Code != CodeStoreQuery {
		t.Errorf("category/code = %s/%s", got.Category, got.Code)
	}
	if got.Message != "importing snapshot: failed to save name mapping" {
		t.Errorf("message = %q", got.Message)
	}

	if Wrap(nil, "anything") != nil {
		t.Error("wrapping nil should stay nil")
	}
}
