package components

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/puzzlealarm/internal/ui/theme"
)

// Button is a styled button component. A non-nil Fill paints the button
// in that color.
type Button struct {
	Label  string
	Active bool
	Fill   color.Color
}

// View renders the button.
func (b Button) View() string {
	if b.Fill != nil {
		marker := "   "
		if b.Active {
			marker = " ▸ "
		}
		style := lipgloss.NewStyle().
			Background(b.Fill).
			Foreground(theme.BgDark).
			Bold(true).
			Width(16).
			Align(lipgloss.Center)
		return marker + style.Render(b.Label)
	}

	label := " ▸ " + b.Label + " "
	if b.Active {
		return theme.ButtonActive.Render(label)
	}
	return theme.ButtonInactive.Render(label)
}
