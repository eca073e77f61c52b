package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Terminal styles. setColor swaps them for plain renderers.
var (
	successStyle  lipgloss.Style
	warningStyle  lipgloss.Style
	errorStyle    lipgloss.Style
	progressStyle lipgloss.Style
	headerStyle   lipgloss.Style
	mutedStyle    lipgloss.Style
)

func init() {
	setColor(true)
}

func setColor(enabled bool) {
	if !enabled {
		plain := lipgloss.NewStyle()
		successStyle, warningStyle, errorStyle = plain, plain, plain
		progressStyle, headerStyle, mutedStyle = plain, plain, plain
		return
	}
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0B429"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	progressStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C678DD")).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
}

// printInfo prints an informational message
func printInfo(msg string) {
	if globalQuiet {
		return
	}
	fmt.Fprintln(stdout, msg)
}

// printSuccess prints a success message
func printSuccess(msg string) {
	if globalQuiet {
		return
	}
	fmt.Fprintf(stdout, "%s %s\n", successStyle.Render("✓"), msg)
}

// printWarning prints a warning message
func printWarning(msg string) {
	if globalQuiet {
		return
	}
	fmt.Fprintf(stdout, "%s %s\n", warningStyle.Render("⚠"), msg)
}

// printErrorMsg prints an error message (different from printError which takes error type)
func printErrorMsg(msg string) {
	fmt.Fprintf(stderr, "%s %s\n", errorStyle.Render("✗"), msg)
}

// printProgress prints a progress indicator
func printProgress(msg string) {
	if globalQuiet {
		return
	}
	fmt.Fprintf(stdout, "%s %s\n", progressStyle.Render("→"), msg)
}

// printVerbose prints a verbose message (only if verbose is enabled)
func printVerbose(verbose bool, msg string) {
	if !verbose || globalQuiet {
		return
	}
	fmt.Fprintf(stdout, "%s %s\n", mutedStyle.Render("[VERBOSE]"), msg)
}

// printHeader prints a section header
func printHeader(title string) {
	if globalQuiet {
		return
	}
	fmt.Fprintf(stdout, "\n%s\n", headerStyle.Render("=== "+title+" ==="))
}

// formatBytes formats bytes as human-readable string
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
