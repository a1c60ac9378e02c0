package ui

import "github.com/charmbracelet/lipgloss"

// ANSI escape codes for simple terminal output (CLI commands)
const (
	Reset   = "\033[0m"
	Bold    = "\033[1m"
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Cyan    = "\033[36m"
	BoldRed = "\033[1;31m"
)

// Color palette
var (
	// Brand colors
	Primary   = lipgloss.Color("#7D56F4") // Purple
	Secondary = lipgloss.Color("#00D4AA") // Teal

	// Status colors
	Success = lipgloss.Color("#00D26A")
	Warning = lipgloss.Color("#FFB800")
	Error   = lipgloss.Color("#FF3838")
	Muted   = lipgloss.Color("#6B7280")

	// Verdict colors
	PassColor     = lipgloss.Color("#00D26A") // Green
	MismatchColor = lipgloss.Color("#FF3838") // Red - snapshot drifted
	ErroredColor  = lipgloss.Color("#FFB800") // Amber - tool problem
	SkippedColor  = lipgloss.Color("#6B7280") // Gray

	// Diff line colors
	DiffAddColor     = lipgloss.Color("#00D26A")
	DiffRemoveColor  = lipgloss.Color("#FF6B6B")
	DiffContextColor = lipgloss.Color("#6B7280")
)

// Pre-configured styles
var (
	// Title and headers
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(Primary).
			Padding(0, 1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	// Banner style
	BannerStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	// Version badge
	VersionStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	// Section headers
	SectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Bold(true).
			MarginTop(1)

	// Configuration display
	ConfigLabelStyle = lipgloss.NewStyle().
				Foreground(Muted).
				Width(15)

	ConfigValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FAFAFA"))

	// Statistics
	StatLabelStyle = lipgloss.NewStyle().
			Foreground(Muted)

	StatValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Bold(true)

	// Verdict styles
	PassStyle = lipgloss.NewStyle().
			Foreground(PassColor).
			Bold(true)

	MismatchStyle = lipgloss.NewStyle().
			Foreground(MismatchColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErroredColor).
			Bold(true)

	SkippedStyle = lipgloss.NewStyle().
			Foreground(SkippedColor)

	// Diff line styles
	DiffAddStyle = lipgloss.NewStyle().
			Foreground(DiffAddColor)

	DiffRemoveStyle = lipgloss.NewStyle().
			Foreground(DiffRemoveColor)

	DiffContextStyle = lipgloss.NewStyle().
				Foreground(DiffContextColor)

	// Divider
	DividerStyle = lipgloss.NewStyle().
			Foreground(Muted)

	// Help/footer
	HelpStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	// Case name badge
	CaseStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#3B3B4F")).
			Padding(0, 1)
)

// VerdictStyle returns the style for a verdict name. Verdicts are
// grouped by how a reader should react: green means nothing to do, red
// means the suite's expectations drifted, amber means the toolchain
// itself misbehaved.
func VerdictStyle(verdict string) lipgloss.Style {
	switch verdict {
	case "pass":
		return PassStyle
	case "snapshot-mismatch", "annotation-mismatch", "unexpected-success", "unexpected-failure":
		return MismatchStyle
	case "error", "timeout":
		return ErrorStyle
	case "skipped":
		return SkippedStyle
	default:
		return lipgloss.NewStyle().Foreground(Muted)
	}
}

// DiffLineStyle returns the style for one unified diff line based on
// its leading marker.
func DiffLineStyle(line string) lipgloss.Style {
	if len(line) == 0 {
		return DiffContextStyle
	}
	switch line[0] {
	case '+':
		return DiffAddStyle
	case '-':
		return DiffRemoveStyle
	default:
		return DiffContextStyle
	}
}
