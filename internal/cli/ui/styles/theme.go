package styles

import "github.com/charmbracelet/lipgloss"

// Theme holds the composed styles for command output, grouped by use.
var Theme = struct {
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Heading   lipgloss.Style
	Body      lipgloss.Style
	Muted     lipgloss.Style
	Bold      lipgloss.Style
	Highlight lipgloss.Style

	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	BadgeCurrent    lipgloss.Style
	BadgePrevious   lipgloss.Style
	BadgeRolledBack lipgloss.Style
	BadgeArchived   lipgloss.Style
	BadgeError      lipgloss.Style

	TableHeader lipgloss.Style
	TableRow    lipgloss.Style
	TableBorder lipgloss.Style

	Box          lipgloss.Style
	BoxHighlight lipgloss.Style

	Banner      lipgloss.Style
	BannerTitle lipgloss.Style
}{
	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary),

	Subtitle: lipgloss.NewStyle().
		Foreground(ColorTextMuted),

	Heading: lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorText),

	Body: lipgloss.NewStyle().
		Foreground(ColorText),

	Muted: lipgloss.NewStyle().
		Foreground(ColorTextMuted),

	Bold: lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorText),

	Highlight: lipgloss.NewStyle().
		Foreground(ColorPrimary),

	Success: lipgloss.NewStyle().
		Foreground(ColorSuccess),

	Error: lipgloss.NewStyle().
		Foreground(ColorError),

	Warning: lipgloss.NewStyle().
		Foreground(ColorWarning),

	Info: lipgloss.NewStyle().
		Foreground(ColorInfo),

	BadgeCurrent: lipgloss.NewStyle().
		Foreground(ColorBg).
		Background(ColorSuccess).
		Padding(0, 1),

	BadgePrevious: lipgloss.NewStyle().
		Foreground(ColorBg).
		Background(ColorInfo).
		Padding(0, 1),

	BadgeRolledBack: lipgloss.NewStyle().
		Foreground(ColorBg).
		Background(ColorWarning).
		Padding(0, 1),

	BadgeArchived: lipgloss.NewStyle().
		Foreground(ColorBg).
		Background(ColorTextMuted).
		Padding(0, 1),

	BadgeError: lipgloss.NewStyle().
		Foreground(ColorBg).
		Background(ColorError).
		Padding(0, 1),

	TableHeader: lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary),

	TableRow: lipgloss.NewStyle().
		Foreground(ColorText),

	TableBorder: lipgloss.NewStyle().
		Foreground(ColorBorder),

	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(1, 2),

	BoxHighlight: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary).
		Padding(1, 2),

	Banner: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary).
		Padding(0, 2),

	BannerTitle: lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary),
}

// Render helpers for the common one-line outputs.

// RenderSuccess returns a styled success message.
func RenderSuccess(msg string) string {
	return Theme.Success.Render(IconSuccess + " " + msg)
}

// RenderError returns a styled error message.
func RenderError(msg string) string {
	return Theme.Error.Render(IconError + " " + msg)
}

// RenderWarning returns a styled warning message.
func RenderWarning(msg string) string {
	return Theme.Warning.Render(IconWarning + " " + msg)
}

// RenderInfo returns a styled info message.
func RenderInfo(msg string) string {
	return Theme.Info.Render(IconInfo + " " + msg)
}

// RenderStatusBadge maps a version history status to its badge.
func RenderStatusBadge(status string) string {
	switch status {
	case "current":
		return Theme.BadgeCurrent.Render(status)
	case "previous":
		return Theme.BadgePrevious.Render(status)
	case "rolled-back":
		return Theme.BadgeRolledBack.Render(status)
	case "archived":
		return Theme.BadgeArchived.Render(status)
	default:
		return Theme.BadgeArchived.Render(status)
	}
}

// RenderStateBadge maps a container state to its badge.
func RenderStateBadge(state string) string {
	switch state {
	case "running", "healthy":
		return Theme.BadgeCurrent.Render(state)
	case "restarting", "starting", "paused":
		return Theme.BadgeRolledBack.Render(state)
	case "exited", "dead", "unhealthy":
		return Theme.BadgeError.Render(state)
	default:
		return Theme.BadgeArchived.Render(state)
	}
}
