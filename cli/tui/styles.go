package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nox-hq/chatrelay/relay"
)

var (
	// Notice colors, matching the Discord embeds.
	colorInfo    = lipgloss.Color("#3498DB")
	colorWarning = lipgloss.Color("#FEE75C")
	colorError   = lipgloss.Color("#E74C3C")

	// UI colors.
	colorTitle    = lipgloss.Color("#FFFFFF")
	colorSubtle   = lipgloss.Color("#666666")
	colorSelected = lipgloss.Color("#7D56F4")
	colorBot      = lipgloss.Color("#2ECC71")
	colorUser     = lipgloss.Color("#88C0D0")

	// Styles.
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorTitle)

	subtleStyle = lipgloss.NewStyle().
			Foreground(colorSubtle)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorSelected)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorSubtle)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(colorSubtle)

	botStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBot)

	userStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorUser)

	configStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#B48EAD"))
)

// noticeStyle returns the style for a notice of kind k.
func noticeStyle(k relay.NoticeKind) lipgloss.Style {
	var color lipgloss.Color
	switch k {
	case relay.NoticeWarning:
		color = colorWarning
	case relay.NoticeError:
		color = colorError
	default:
		color = colorInfo
	}
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(color).
		PaddingLeft(1)
}

func joinDot(parts []string) string {
	return strings.Join(parts, " • ")
}
