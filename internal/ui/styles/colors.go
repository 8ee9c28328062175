package styles

import "github.com/charmbracelet/lipgloss"

// Color palette, dark mode first
var (
	Accent  = lipgloss.Color("#7C3AED") // violet-500 - cursor, active sort
	Success = lipgloss.Color("#10B981") // emerald-500 - committed edits
	Warning = lipgloss.Color("#F59E0B") // amber-500 - pending filters
	Error   = lipgloss.Color("#EF4444") // red-500 - errors, removed text
	Info    = lipgloss.Color("#3B82F6") // blue-500 - filter badges
	Muted   = lipgloss.Color("#6B7280") // gray-500 - secondary text

	TextPrimary = lipgloss.Color("#F9FAFB") // gray-50

	BgHighlight = lipgloss.Color("#1F2937") // gray-800 - cursor row
	BgSelected  = lipgloss.Color("#312E81") // indigo-900 - selected rows
)

// Semantic aliases
var (
	ColorSort     = Accent
	ColorFilter   = Info
	ColorPending  = Warning
	ColorEdit     = Success
	ColorSubLabel = Muted

	ColorDiffAdd    = Success
	ColorDiffRemove = Error
)
