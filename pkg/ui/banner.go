package ui

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/diagcheck/diagcheck/pkg/defaults"
)

// Version information - can be overridden at build time via ldflags:
// go build -ldflags "-X github.com/diagcheck/diagcheck/pkg/ui.Version=1.0.0"
var (
	Version   = defaults.Version
	BuildDate = "dev"
	Commit    = "dev"
)

// Global UI state
var (
	silentMode  bool
	noColorMode bool
	uiMu        sync.RWMutex
)

// SetSilent enables or disables silent mode (suppresses most output)
func SetSilent(silent bool) {
	uiMu.Lock()
	defer uiMu.Unlock()
	silentMode = silent
}

// IsSilent returns whether silent mode is enabled
func IsSilent() bool {
	uiMu.RLock()
	defer uiMu.RUnlock()
	return silentMode
}

// SetNoColor disables colored output. NO_COLOR in the environment has
// the same effect; otherwise the profile follows the terminal.
func SetNoColor(noColor bool) {
	uiMu.Lock()
	defer uiMu.Unlock()
	noColorMode = noColor || os.Getenv("NO_COLOR") != ""
	if noColorMode {
		lipgloss.SetColorProfile(termenv.Ascii)
	} else {
		lipgloss.SetColorProfile(termenv.ColorProfile())
	}
}

// IsNoColor returns whether color is disabled
func IsNoColor() bool {
	uiMu.RLock()
	defer uiMu.RUnlock()
	return noColorMode
}

// ASCII art banner
const bannerArt = `
     _ _                  _               _
  __| (_) __ _  __ _  ___| |__   ___  ___| | __
 / _' | |/ _' |/ _' |/ __| '_ \ / _ \/ __| |/ /
| (_| | | (_| | (_| | (__| | | |  __/ (__|   <
 \__,_|_|\__,_|\__, |\___|_| |_|\___|\___|_|\_\
               |___/
`

// Separator line
const bannerSeparator = "________________________________________________"

// PrintBanner prints the application banner with version info to
// stderr, keeping stdout clean for results.
func PrintBanner() {
	if IsSilent() {
		return
	}
	for _, line := range strings.Split(bannerArt, "\n") {
		if line != "" {
			fmt.Fprintln(os.Stderr, BannerStyle.Render(line))
		}
	}
	fmt.Fprintf(os.Stderr, "                 v%s\n\n", VersionStyle.Render(Version))
}

// printOption prints a configuration option
// Format:  :: Option              : Value
func printOption(name, value string) {
	fmt.Fprintf(os.Stderr, " :: %-20s : %s\n", ConfigLabelStyle.Render(name), ConfigValueStyle.Render(value))
}

// PrintConfigBanner prints the effective run settings before execution.
// Uses ordered keys for consistent display.
func PrintConfigBanner(options map[string]string) {
	if IsSilent() {
		return
	}

	order := []string{
		"Suite", "Compiler", "Mode", "Cases",
		"Concurrency", "Rate Limit", "Timeout",
		"Strict", "Bless", "Output", "Format",
	}

	printed := make(map[string]bool)
	for _, name := range order {
		if value, ok := options[name]; ok && value != "" {
			printOption(name, value)
			printed[name] = true
		}
	}

	for name, value := range options {
		if !printed[name] && value != "" {
			printOption(name, value)
		}
	}

	fmt.Fprintf(os.Stderr, "%s\n\n", DividerStyle.Render(bannerSeparator))
}

// PrintDivider prints a stylized divider (to stderr)
func PrintDivider() {
	if IsSilent() {
		return
	}
	fmt.Fprintln(os.Stderr, DividerStyle.Render(strings.Repeat("-", 72)))
}

// PrintSection prints a section header (to stderr)
func PrintSection(title string) {
	if IsSilent() {
		return
	}
	fmt.Fprintln(os.Stderr, SectionStyle.Render(title))
}

// PrintMiniBanner prints the one-line version banner.
func PrintMiniBanner() {
	fmt.Fprintf(os.Stderr, "%s v%s (%s, %s)\n",
		BannerStyle.Render(defaults.ToolName), Version, Commit, BuildDate)
}

// PrintHelp prints contextual help (to stderr)
func PrintHelp(text string) {
	fmt.Fprintln(os.Stderr, HelpStyle.Render("  [i] "+text))
}

// PrintSuccess prints a success message (to stderr)
func PrintSuccess(message string) {
	fmt.Fprintln(os.Stderr, PassStyle.Render("  [+] "+message))
}

// PrintError prints an error message (to stderr)
func PrintError(message string) {
	fmt.Fprintln(os.Stderr, MismatchStyle.Render("  [X] "+message))
}

// PrintWarning prints a warning message (to stderr)
func PrintWarning(message string) {
	fmt.Fprintln(os.Stderr, ErrorStyle.Render("  [!] "+message))
}

// PrintInfo prints an info message (to stderr)
func PrintInfo(message string) {
	if IsSilent() {
		return
	}
	fmt.Fprintf(os.Stderr, "  %s %s\n", SubtitleStyle.Render("*"), message)
}
