package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jce77/melodygen/pkg/composer"
	"github.com/jce77/melodygen/pkg/history"
	"github.com/jce77/melodygen/pkg/pattern"
	"github.com/jce77/melodygen/pkg/sampler"
	"github.com/jce77/melodygen/pkg/sequencer"
	"github.com/jce77/melodygen/pkg/storage"
	"github.com/jce77/melodygen/pkg/theory"
)

// ErrorType categorizes different error types
type ErrorType string

const (
	// Generation errors
	ErrorTypeUnknownScale    ErrorType = "unknown_scale"
	ErrorTypeEmptyPatternSet ErrorType = "empty_pattern_set"
	ErrorTypeNoteNotInScale  ErrorType = "note_not_in_scale"
	ErrorTypePitchOutOfRange ErrorType = "pitch_out_of_range"
	ErrorTypeInvalidKey      ErrorType = "invalid_key"

	// Validation errors
	ErrorTypeValidation    ErrorType = "validation"
	ErrorTypeFileNotFound  ErrorType = "file_not_found"
	ErrorTypeInvalidFormat ErrorType = "invalid_format"

	// Persistence errors
	ErrorTypeStorage  ErrorType = "storage"
	ErrorTypeNotFound ErrorType = "not_found"

	// Unknown errors
	ErrorTypeUnknown ErrorType = "unknown"
)

// CLIError represents a structured error with context
type CLIError struct {
	Type       ErrorType
	Message    string
	Cause      error
	Suggestion string
}

// Error implements the error interface
func (e *CLIError) Error() string {
	return e.Message
}

// WithSuggestion adds a helpful suggestion to the error
func (e *CLIError) WithSuggestion(suggestion string) *CLIError {
	e.Suggestion = suggestion
	return e
}

// HasSuggestion returns true if the error has a suggestion
func (e *CLIError) HasSuggestion() bool {
	return e.Suggestion != ""
}

// Unwrap returns the underlying error
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// ExitCode maps the error type to a process exit status
func (e *CLIError) ExitCode() int {
	switch e.Type {
	case ErrorTypeValidation, ErrorTypeInvalidKey, ErrorTypeUnknownScale, ErrorTypeInvalidFormat:
		return 2
	case ErrorTypeFileNotFound, ErrorTypeNotFound:
		return 3
	case ErrorTypeStorage:
		return 4
	default:
		return 1
	}
}

// NewCLIError creates a new CLI error
func NewCLIError(errorType ErrorType, message string, cause error) *CLIError {
	return &CLIError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// UnknownScaleError creates an unknown scale error
func UnknownScaleError(cause error) *CLIError {
	err := NewCLIError(ErrorTypeUnknownScale, messageOf(cause, "Unknown scale"), cause)
	err.Suggestion = "Run 'melodygen scale list' to see the available scales."
	return err
}

// EmptyPatternSetError creates an empty pattern set error
func EmptyPatternSetError(cause error) *CLIError {
	err := NewCLIError(ErrorTypeEmptyPatternSet, messageOf(cause, "No patterns available"), cause)
	err.Suggestion = "Check that the pattern file contains 'pattern=' blocks and that the minimum pattern count is at least 1."
	return err
}

// NoteNotInScaleError creates a note not in scale error
func NoteNotInScaleError(cause error) *CLIError {
	err := NewCLIError(ErrorTypeNoteNotInScale, messageOf(cause, "Note is not part of the scale"), cause)
	err.Suggestion = "Try a higher --scale-percentage so fewer keys are removed from the scale."
	return err
}

// PitchOutOfRangeError creates a pitch out of range error
func PitchOutOfRangeError(cause error) *CLIError {
	err := NewCLIError(ErrorTypePitchOutOfRange, messageOf(cause, "Pitch outside the MIDI range"), cause)
	err.Suggestion = "Use a lower --octave or direction patterns with smaller jumps."
	return err
}

// InvalidKeyError creates an invalid key error
func InvalidKeyError(cause error) *CLIError {
	err := NewCLIError(ErrorTypeInvalidKey, messageOf(cause, "Invalid key"), cause)
	err.Suggestion = fmt.Sprintf("Valid keys: %s.", strings.Join(theory.KeyNames(), ", "))
	return err
}

// ValidationError creates a validation error
func ValidationError(field, reason string) *CLIError {
	message := fmt.Sprintf("Validation error: %s - %s", field, reason)
	return NewCLIError(ErrorTypeValidation, message, nil)
}

// FileNotFoundError creates a file not found error
func FileNotFoundError(path string) *CLIError {
	err := NewCLIError(ErrorTypeFileNotFound, fmt.Sprintf("File not found: %s", path), nil)
	err.Suggestion = "Check the file name and the assets.dir setting, then try again."
	return err
}

// InvalidFormatError creates an invalid format error
func InvalidFormatError(format string) *CLIError {
	err := NewCLIError(ErrorTypeInvalidFormat, fmt.Sprintf("Invalid output format: %s", format), nil)
	err.Suggestion = "Valid formats are: text, json, table."
	return err
}

// StorageError creates a storage error
func StorageError(cause error) *CLIError {
	err := NewCLIError(ErrorTypeStorage, messageOf(cause, "Failed to store the generated file"), cause)
	err.Suggestion = "Check write permissions for output.dir, or the S3 bucket and AWS credentials."
	return err
}

// NotFoundError creates a not found error
func NotFoundError(resourceType, identifier string) *CLIError {
	err := NewCLIError(ErrorTypeNotFound,
		fmt.Sprintf("%s not found: %s", resourceType, identifier),
		nil)
	return err
}

func messageOf(cause error, fallback string) string {
	if cause == nil {
		return fallback
	}
	return cause.Error()
}

// CategorizeError converts a standard error into a CLIError
func CategorizeError(err error) *CLIError {
	if err == nil {
		return nil
	}

	// Check if it's already a CLIError
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}

	switch {
	case errors.Is(err, theory.ErrUnknownScale):
		return UnknownScaleError(err)
	case errors.Is(err, pattern.ErrEmptyPatternSet):
		return EmptyPatternSetError(err)
	case errors.Is(err, theory.ErrNoteNotInScale):
		return NoteNotInScaleError(err)
	case errors.Is(err, sequencer.ErrPitchOutOfRange):
		return PitchOutOfRangeError(err)
	case errors.Is(err, theory.ErrInvalidKey):
		return InvalidKeyError(err)
	case errors.Is(err, pattern.ErrNotFound):
		cli := NewCLIError(ErrorTypeFileNotFound, err.Error(), err)
		cli.Suggestion = "Check the file name and the assets.dir setting, then try again."
		return cli
	case errors.Is(err, history.ErrRunNotFound):
		cli := NewCLIError(ErrorTypeNotFound, err.Error(), err)
		cli.Suggestion = "Run 'melodygen history list' to see recorded runs."
		return cli
	case errors.Is(err, storage.ErrStorage):
		return StorageError(err)
	case errors.Is(err, composer.ErrInvalidRequest),
		errors.Is(err, sequencer.ErrInvalidTiming),
		errors.Is(err, sampler.ErrEmptyTable),
		errors.Is(err, sampler.ErrOnlyRepeat):
		return NewCLIError(ErrorTypeValidation, err.Error(), err)
	default:
		return NewCLIError(ErrorTypeUnknown, err.Error(), err)
	}
}

// FormatError returns a user-friendly error message
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	cliErr := CategorizeError(err)
	var sb strings.Builder

	// Format the main error message
	sb.WriteString("❌ Error")
	if cliErr.Type != ErrorTypeUnknown {
		sb.WriteString(" (")
		sb.WriteString(string(cliErr.Type))
		sb.WriteString(")")
	}
	sb.WriteString(": ")
	sb.WriteString(cliErr.Message)
	sb.WriteString("\n")

	// Add suggestion if available
	if cliErr.HasSuggestion() {
		sb.WriteString("\n💡 Suggestion: ")
		sb.WriteString(cliErr.Suggestion)
		sb.WriteString("\n")
	}

	return sb.String()
}
