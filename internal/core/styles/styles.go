// Package styles provides shared lipgloss styles for CLI and TUI components.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/toastq/internal/core/notify"
)

// Palette defines a minimal semantic theme palette.
type Palette struct {
	Primary    lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Background lipgloss.Color
	Surface    lipgloss.Color
	Info       lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
}

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

// Style exports.
var (
	// CLI styles.
	HeaderStyle  lipgloss.Style
	MutedStyle   lipgloss.Style
	SuccessStyle lipgloss.Style
	WarningStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	InfoStyle    lipgloss.Style

	// Toast styles.
	ToastTitleStyle lipgloss.Style
	ToastBodyStyle  lipgloss.Style
	ToastHelpStyle  lipgloss.Style

	toastBase lipgloss.Style
)

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	HeaderStyle = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true)
	MutedStyle = lipgloss.NewStyle().Foreground(p.Muted)
	SuccessStyle = lipgloss.NewStyle().Foreground(p.Success)
	WarningStyle = lipgloss.NewStyle().Foreground(p.Warning)
	ErrorStyle = lipgloss.NewStyle().Foreground(p.Error)
	InfoStyle = lipgloss.NewStyle().Foreground(p.Info)

	ToastTitleStyle = lipgloss.NewStyle().
		Foreground(p.Foreground).
		Bold(true)
	ToastBodyStyle = lipgloss.NewStyle().
		Foreground(p.Muted)
	ToastHelpStyle = lipgloss.NewStyle().
		Foreground(p.Muted).
		MarginTop(1)

	toastBase = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)
}

// SeverityColor returns the palette color for a severity. Unknown severities
// use the info color.
func SeverityColor(s notify.Severity) lipgloss.Color {
	switch s {
	case notify.SeveritySuccess:
		return CurrentPalette.Success
	case notify.SeverityError:
		return CurrentPalette.Error
	case notify.SeverityWarning:
		return CurrentPalette.Warning
	default:
		return CurrentPalette.Info
	}
}

// SeverityIcon returns the icon for a severity.
func SeverityIcon(s notify.Severity) string {
	switch s {
	case notify.SeveritySuccess:
		return IconSuccess
	case notify.SeverityError:
		return IconError
	case notify.SeverityWarning:
		return IconWarning
	default:
		return IconInfo
	}
}

// ToastStyle returns the bordered container style for a toast.
func ToastStyle(s notify.Severity) lipgloss.Style {
	return toastBase.BorderForeground(SeverityColor(s))
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(themes[DefaultTheme])
}
