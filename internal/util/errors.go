package util

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors used throughout gridkit
var (
	ErrNoSource       = errors.New("no data source configured")
	ErrUnknownDriver  = errors.New("unknown source driver")
	ErrConfigNotFound = errors.New("grid config not found")
	ErrNoColumns      = errors.New("grid config defines no columns")
	ErrLayoutNotFound = errors.New("layout not found")
	ErrBadToken       = errors.New("malformed layout token")
)

// GridError is a structured error with context and suggestions
type GridError struct {
	Title       string   // Short error title
	Message     string   // Detailed message
	Context     string   // What was being attempted
	Causes      []string // Possible causes
	Suggestions []string // Actionable suggestions with commands
	Err         error    // Wrapped error
}

func (e *GridError) Error() string {
	if e.Err != nil {
		return e.Title + ": " + e.Err.Error()
	}
	return e.Title
}

func (e *GridError) Unwrap() error {
	return e.Err
}

// Format returns the multi-line rendering printed by the CLI
func (e *GridError) Format() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Error: %s\n", e.Title)
	if e.Message != "" {
		fmt.Fprintf(&sb, "\n  %s\n", e.Message)
	}
	if e.Context != "" {
		fmt.Fprintf(&sb, "\n  %s\n", e.Context)
	}
	if e.Err != nil {
		fmt.Fprintf(&sb, "\n  cause: %v\n", e.Err)
	}

	if len(e.Causes) > 0 {
		sb.WriteString("\n  Possible causes:\n")
		for _, cause := range e.Causes {
			fmt.Fprintf(&sb, "    • %s\n", cause)
		}
	}

	if len(e.Suggestions) > 0 {
		sb.WriteString("\n  Try:\n")
		for _, sug := range e.Suggestions {
			fmt.Fprintf(&sb, "    $ %s\n", sug)
		}
	}

	return sb.String()
}

// NewError creates a new GridError
func NewError(title string) *GridError {
	return &GridError{Title: title}
}

// WithMessage adds a detailed message
func (e *GridError) WithMessage(msg string) *GridError {
	e.Message = msg
	return e
}

// WithContext adds context about what was being attempted
func (e *GridError) WithContext(ctx string) *GridError {
	e.Context = ctx
	return e
}

// WithCauses adds possible causes
func (e *GridError) WithCauses(causes ...string) *GridError {
	e.Causes = append(e.Causes, causes...)
	return e
}

// WithSuggestions adds actionable suggestions
func (e *GridError) WithSuggestions(sugs ...string) *GridError {
	e.Suggestions = append(e.Suggestions, sugs...)
	return e
}

// Wrap wraps an underlying error
func (e *GridError) Wrap(err error) *GridError {
	e.Err = err
	return e
}

// ══════════════════════════════════════════════════════════════════════════
// Pre-built error constructors
// ══════════════════════════════════════════════════════════════════════════

// SourceConnectionError reports a data source that could not be reached.
// The URL is shown without credentials.
func SourceConnectionError(driver, url string, err error) *GridError {
	return NewError(fmt.Sprintf("Cannot open %s source", driver)).
		WithContext(RedactURL(url)).
		WithCauses(
			"Database server is not running",
			"Invalid connection credentials",
			"The table named in [source] does not exist",
		).
		WithSuggestions(
			"gridkit config --list          # Check defaults",
			"export GRIDKIT_DATABASE_URL=... # Override the source URL",
		).
		Wrap(err)
}

// ConfigNotFoundError reports a missing grid definition file.
func ConfigNotFoundError(path string) *GridError {
	return NewError("Grid config not found").
		WithContext(path).
		WithSuggestions(
			"gridkit view --config path/to/grid.toml",
		).
		Wrap(ErrConfigNotFound)
}

// UnknownColumnError reports a column key absent from the grid config.
func UnknownColumnError(key string, known []string) *GridError {
	return NewError(fmt.Sprintf("Unknown column '%s'", key)).
		WithMessage("Known columns: " + strings.Join(known, ", "))
}

// RedactURL hides the password part of a connection URL.
func RedactURL(url string) string {
	scheme := strings.Index(url, "://")
	at := strings.LastIndex(url, "@")
	if scheme < 0 || at < scheme {
		return url
	}
	creds := url[scheme+3 : at]
	if i := strings.Index(creds, ":"); i >= 0 {
		return url[:scheme+3] + creds[:i] + ":***" + url[at:]
	}
	return url
}
