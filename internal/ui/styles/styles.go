package styles

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Symbols - Unicode with ASCII fallbacks
const (
	SymbolSuccess   = "✓"
	SymbolError     = "✗"
	SymbolWarning   = "⚠"
	SymbolSelected  = "●"
	SymbolExpanded  = "▾"
	SymbolCollapsed = "▸"
	SymbolAsc       = "▲"
	SymbolDesc      = "▼"
	SymbolPending   = "…"
)

// NoColor checks if colors should be disabled
func NoColor() bool {
	return os.Getenv("NO_COLOR") != "" || os.Getenv("GRIDKIT_NO_COLOR") != ""
}

// IsAccessible checks if accessibility mode is enabled
// When enabled: no animations, no spinner, simplified output
func IsAccessible() bool {
	v := os.Getenv("GRIDKIT_ACCESSIBLE")
	return v == "1" || v == "true"
}

// Base text styles
var (
	Bold = lipgloss.NewStyle().Bold(true)
)

// Semantic styles - use these instead of raw colors
var (
	SuccessStyle = lipgloss.NewStyle().Foreground(Success)
	ErrorStyle   = lipgloss.NewStyle().Foreground(Error)
	WarningStyle = lipgloss.NewStyle().Foreground(Warning)
	MutedStyle   = lipgloss.NewStyle().Foreground(Muted)

	// Grid chrome
	HeaderStyle   = lipgloss.NewStyle().Bold(true).Foreground(TextPrimary)
	SortStyle     = lipgloss.NewStyle().Foreground(ColorSort).Bold(true)
	FilterStyle   = lipgloss.NewStyle().Foreground(ColorFilter)
	PendingStyle  = lipgloss.NewStyle().Foreground(ColorPending)
	SubLabelStyle = lipgloss.NewStyle().Foreground(ColorSubLabel)
	EditStyle     = lipgloss.NewStyle().Foreground(ColorEdit).Underline(true)
	ResizeStyle   = lipgloss.NewStyle().Foreground(Accent).Reverse(true)

	CursorStyle = lipgloss.NewStyle().
			Background(BgHighlight).
			Foreground(TextPrimary)
	SelectedStyle = lipgloss.NewStyle().
			Background(BgSelected).
			Foreground(TextPrimary)

	DiffAdd    = lipgloss.NewStyle().Foreground(ColorDiffAdd)
	DiffRemove = lipgloss.NewStyle().Foreground(ColorDiffRemove).Strikethrough(true)
)

// ═══════════════════════════════════════════════════════════════════════════
// Render functions - centralized formatting with NoColor support
// ═══════════════════════════════════════════════════════════════════════════

// Render applies a style if colors are enabled
func Render(s lipgloss.Style, text string) string {
	if NoColor() {
		return text
	}
	return s.Render(text)
}

// SortIndicator returns the header suffix for a sorted column.
func SortIndicator(desc bool) string {
	switch {
	case NoColor() && desc:
		return "v"
	case NoColor():
		return "^"
	case desc:
		return SortStyle.Render(SymbolDesc)
	default:
		return SortStyle.Render(SymbolAsc)
	}
}

// FilterBadge formats an active filter as column=value.
func FilterBadge(column, value string, pending bool) string {
	text := column + "=" + value
	if pending {
		return Render(PendingStyle, text+SymbolPending)
	}
	return Render(FilterStyle, text)
}

// ═══════════════════════════════════════════════════════════════════════════
// Message formatters - structured output
// ═══════════════════════════════════════════════════════════════════════════

// SuccessMsg formats a success message with checkmark
func SuccessMsg(msg string) string {
	symbol := SymbolSuccess
	if NoColor() {
		symbol = "+"
	}
	return fmt.Sprintf("%s %s", Render(SuccessStyle, symbol), msg)
}

// ErrorMsg formats an error message
func ErrorMsg(title string) string {
	return Render(ErrorStyle, "Error: "+title)
}

// WarningMsg formats a warning message
func WarningMsg(msg string) string {
	symbol := SymbolWarning
	if NoColor() {
		symbol = "!"
	}
	return fmt.Sprintf("%s %s", Render(WarningStyle, symbol), msg)
}

// MutedMsg formats muted/secondary text
func MutedMsg(msg string) string {
	return Render(MutedStyle, msg)
}

func Mute(s string) string                 { return Render(MutedStyle, s) }
func Mutef(format string, a ...any) string { return Mute(fmt.Sprintf(format, a...)) }
