package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yairfalse/kartta/pkg/types"
)

// ErrorType categorizes failures per the discovery error taxonomy.
type ErrorType string

const (
	// ErrorTypeInputMissing marks a required input document that is absent.
	ErrorTypeInputMissing ErrorType = "InputMissing"
	// ErrorTypeFetch marks a trace store fetch that failed or timed out.
	ErrorTypeFetch ErrorType = "Fetch"
	// ErrorTypeParse marks a stored document that is not valid structured data.
	ErrorTypeParse ErrorType = "Parse"
	// ErrorTypeInvariant marks a snapshot that violates the closure property.
	ErrorTypeInvariant ErrorType = "Invariant"
	// ErrorTypeStorage marks filesystem failures in the history store.
	ErrorTypeStorage ErrorType = "Storage"
	// ErrorTypeValidation marks bad arguments or malformed in-memory data.
	ErrorTypeValidation ErrorType = "Validation"
	// ErrorTypeConfiguration marks unusable configuration.
	ErrorTypeConfiguration ErrorType = "Configuration"
)

// Source names the subsystem an error originated from.
type Source string

const (
	SourceTraceStore Source = "TraceStore"
	SourceSnapshot   Source = "Snapshot"
	SourceHistory    Source = "History"
	SourceConfig     Source = "Config"
	SourceUnknown    Source = "Unknown"
)

// KarttaError is a user-facing error with actionable guidance.
type KarttaError struct {
	Type      ErrorType
	Source    Source
	Message   string
	Cause     string
	Solutions []string
	Help      string
}

// Error implements the error interface.
func (e *KarttaError) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("\nError: %s\n", e.Message))
	if e.Cause != "" {
		sb.WriteString(fmt.Sprintf("Cause: %s\n", e.Cause))
	}
	if len(e.Solutions) > 0 {
		sb.WriteString("\nSolutions:\n")
		for _, solution := range e.Solutions {
			sb.WriteString(fmt.Sprintf("  %s\n", solution))
		}
	}
	if e.Help != "" {
		sb.WriteString(fmt.Sprintf("Help: %s\n", e.Help))
	}

	return sb.String()
}

// Format implements fmt.Formatter; %+v includes type and source.
func (e *KarttaError) Format(f fmt.State, verb rune) {
	switch verb {
	case 's':
		fmt.Fprintf(f, "%s", e.Error())
	case 'v':
		if f.Flag('+') {
			fmt.Fprintf(f, "[%s/%s] %s", e.Type, e.Source, e.Error())
		} else {
			fmt.Fprintf(f, "%s", e.Error())
		}
	}
}

// New creates a new KarttaError.
func New(errType ErrorType, source Source, message string) *KarttaError {
	return &KarttaError{
		Type:    errType,
		Source:  source,
		Message: message,
	}
}

// WithCause adds cause information.
func (e *KarttaError) WithCause(cause string) *KarttaError {
	e.Cause = cause
	return e
}

// WithSolutions adds solution steps.
func (e *KarttaError) WithSolutions(solutions ...string) *KarttaError {
	e.Solutions = append(e.Solutions, solutions...)
	return e
}

// WithHelp adds a help command.
func (e *KarttaError) WithHelp(help string) *KarttaError {
	e.Help = help
	return e
}

// IsType reports whether err is a KarttaError of the given type.
func IsType(err error, errType ErrorType) bool {
	var ke *KarttaError
	if errors.As(err, &ke) {
		return ke.Type == errType
	}
	return false
}

// GetExitCode returns a sysexits-style exit code for the error.
func GetExitCode(err error) int {
	var ke *KarttaError
	if !errors.As(err, &ke) {
		return 1
	}

	switch ke.Type {
	case ErrorTypeInputMissing:
		return 66 // EX_NOINPUT
	case ErrorTypeParse:
		return 65 // EX_DATAERR
	case ErrorTypeConfiguration:
		return 78 // EX_CONFIG
	case ErrorTypeFetch:
		return 69 // EX_UNAVAILABLE
	case ErrorTypeStorage:
		return 74 // EX_IOERR
	default:
		return 1
	}
}

// DriftExitCode maps a severity tier to the drift command's exit code.
// NO_CHANGE, LOW and MEDIUM pass; HIGH and CRITICAL gate the pipeline.
func DriftExitCode(severity types.Severity) int {
	if severity.RequiresAction() {
		return 1
	}
	return 0
}
