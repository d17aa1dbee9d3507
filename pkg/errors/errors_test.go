package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jce77/melodygen/pkg/composer"
	"github.com/jce77/melodygen/pkg/history"
	"github.com/jce77/melodygen/pkg/pattern"
	"github.com/jce77/melodygen/pkg/sequencer"
	"github.com/jce77/melodygen/pkg/storage"
	"github.com/jce77/melodygen/pkg/theory"
)

// TestNewCLIError creates and validates a CLI error
func TestNewCLIError(t *testing.T) {
	cause := errors.New("underlying error")
	err := NewCLIError(ErrorTypeValidation, "Test error", cause)

	if err == nil {
		t.Fatal("NewCLIError returned nil")
	}

	if err.Type != ErrorTypeValidation {
		t.Errorf("Expected type %s, got %s", ErrorTypeValidation, err.Type)
	}

	if err.Message != "Test error" {
		t.Errorf("Expected message 'Test error', got '%s'", err.Message)
	}

	if !errors.Is(err, cause) {
		t.Error("Cause should be reachable through Unwrap")
	}
}

// TestWithSuggestion adds suggestion to error
func TestWithSuggestion(t *testing.T) {
	err := NewCLIError(ErrorTypeValidation, "Test", nil)
	suggestion := "Try something else"

	result := err.WithSuggestion(suggestion)

	if !result.HasSuggestion() {
		t.Error("HasSuggestion returned false")
	}

	if result.Suggestion != suggestion {
		t.Errorf("Expected suggestion '%s', got '%s'", suggestion, result.Suggestion)
	}
}

// TestCategorizeSentinels maps wrapped core errors to their types
func TestCategorizeSentinels(t *testing.T) {
	tests := []struct {
		err      error
		expected ErrorType
	}{
		{fmt.Errorf("%w: dorian2", theory.ErrUnknownScale), ErrorTypeUnknownScale},
		{fmt.Errorf("%w: no direction patterns selected", pattern.ErrEmptyPatternSet), ErrorTypeEmptyPatternSet},
		{fmt.Errorf("%w: C", theory.ErrNoteNotInScale), ErrorTypeNoteNotInScale},
		{fmt.Errorf("%w: note 3", sequencer.ErrPitchOutOfRange), ErrorTypePitchOutOfRange},
		{fmt.Errorf("%w: H", theory.ErrInvalidKey), ErrorTypeInvalidKey},
		{fmt.Errorf("%w: time_patterns/x.timepatterns", pattern.ErrNotFound), ErrorTypeFileNotFound},
		{fmt.Errorf("%w: abc", history.ErrRunNotFound), ErrorTypeNotFound},
		{fmt.Errorf("%w: disk full", storage.ErrStorage), ErrorTypeStorage},
		{fmt.Errorf("%w: budget", composer.ErrInvalidRequest), ErrorTypeValidation},
		{fmt.Errorf("%w: tempo", sequencer.ErrInvalidTiming), ErrorTypeValidation},
		{errors.New("something else"), ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(string(tt.expected), func(t *testing.T) {
			result := CategorizeError(tt.err)
			if result.Type != tt.expected {
				t.Errorf("Expected type %s, got %s", tt.expected, result.Type)
			}
			if !errors.Is(result, tt.err) {
				t.Error("Categorized error should wrap the original")
			}
		})
	}
}

// TestCategorizeCLIError returns an existing CLIError unchanged
func TestCategorizeCLIError(t *testing.T) {
	original := ValidationError("octave", "must be a number")
	wrapped := fmt.Errorf("parsing flags: %w", original)

	if result := CategorizeError(wrapped); result != original {
		t.Error("Expected the wrapped CLIError to be returned")
	}

	if CategorizeError(nil) != nil {
		t.Error("Expected nil for nil error")
	}
}

// TestInvalidKeySuggestion lists the valid keys
func TestInvalidKeySuggestion(t *testing.T) {
	err := InvalidKeyError(theory.ErrInvalidKey)
	if !strings.Contains(err.Suggestion, "CSharp") {
		t.Errorf("Expected key names in suggestion, got %q", err.Suggestion)
	}
}

// TestExitCode groups error types by exit status
func TestExitCode(t *testing.T) {
	tests := map[ErrorType]int{
		ErrorTypeValidation:      2,
		ErrorTypeUnknownScale:    2,
		ErrorTypeFileNotFound:    3,
		ErrorTypeStorage:         4,
		ErrorTypeEmptyPatternSet: 1,
		ErrorTypeUnknown:         1,
	}
	for typ, want := range tests {
		if got := NewCLIError(typ, "x", nil).ExitCode(); got != want {
			t.Errorf("%s: expected exit code %d, got %d", typ, want, got)
		}
	}
}

// TestFormatError renders type, message and suggestion
func TestFormatError(t *testing.T) {
	if FormatError(nil) != "" {
		t.Error("Expected empty string for nil error")
	}

	formatted := FormatError(fmt.Errorf("%w: dorian2", theory.ErrUnknownScale))
	if !strings.Contains(formatted, "unknown_scale") {
		t.Errorf("Expected type in output, got %q", formatted)
	}
	if !strings.Contains(formatted, "dorian2") {
		t.Errorf("Expected message in output, got %q", formatted)
	}
	if !strings.Contains(formatted, "scale list") {
		t.Errorf("Expected suggestion in output, got %q", formatted)
	}

	plain := FormatError(errors.New("boom"))
	if strings.Contains(plain, "(unknown)") {
		t.Errorf("Unknown errors should not show their type, got %q", plain)
	}
}
