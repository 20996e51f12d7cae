package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/hlop3z/autofk/internal/engine"
)

var (
	colorSuccess   = lipgloss.Color("10")
	colorWarning   = lipgloss.Color("11")
	colorError     = lipgloss.Color("9")
	colorMuted     = lipgloss.Color("8")
	colorHighlight = lipgloss.Color("14")
	colorBlack     = lipgloss.Color("0")
	colorWhite     = lipgloss.Color("15")
)

var (
	badgeApplied = badge(colorSuccess, colorBlack)
	badgePending = badge(colorWarning, colorBlack)
	badgeProblem = badge(colorError, colorWhite)
)

func badge(bg, fg lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Background(bg).Foreground(fg).Padding(0, 1).Bold(true)
}

// StatusBadge renders a migration status. Plain output uses the bare word.
func StatusBadge(s engine.PlanStatus) string {
	if !EnableColors() {
		return s.String()
	}
	switch s {
	case engine.StatusApplied:
		return badgeApplied.Render(s.String())
	case engine.StatusPending:
		return badgePending.Render(s.String())
	default:
		return badgeProblem.Render(s.String())
	}
}

// Title renders a section title.
func Title(s string) string {
	if !EnableColors() {
		return s
	}
	return lipgloss.NewStyle().Bold(true).Foreground(colorHighlight).Render(s)
}
