package ringing

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/puzzlealarm/internal/alarm"
	"github.com/abhisek/puzzlealarm/internal/puzzle"
	"github.com/abhisek/puzzlealarm/internal/ui/components"
	"github.com/abhisek/puzzlealarm/internal/ui/theme"
)

func (s *RingingScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var b strings.Builder
	b.WriteString(theme.Ringing.Render(s.prompt.Alarm.TimeString() + "  " + s.prompt.Title))
	b.WriteString("\n")
	b.WriteString(theme.Hint.Render(s.prompt.Text))
	b.WriteString("\n\n")
	b.WriteString(theme.Title.Render(s.session.Instruction()))
	b.WriteString("\n\n")

	switch s.session.Kind {
	case alarm.PuzzleMath:
		b.WriteString(theme.Clock.Render(s.session.Math.Question()))
		b.WriteString("\n\n")
		b.WriteString(s.input.View())
	case alarm.PuzzleRetype:
		b.WriteString(components.Card(theme.Clock.Render(s.session.Retype.Target), 16))
		b.WriteString("\n\n")
		b.WriteString(s.input.View())
	case alarm.PuzzleShake:
		b.WriteString(s.shakeView(cw))
	case alarm.PuzzleMemory:
		b.WriteString(s.memoryView())
	case alarm.PuzzleColorMatch:
		b.WriteString(s.colorView())
	}

	b.WriteString("\n\n")
	if s.feedback != "" {
		b.WriteString(theme.Incorrect.Render(s.feedback))
	}

	return components.AlarmFrame(b.String(), width, height)
}

func (s *RingingScreen) shakeView(cw int) string {
	sh := s.session.Shake
	count := theme.Clock.Render(fmt.Sprintf("%d / %d", sh.Count, sh.Target))
	bar := components.NewProgressBar("", sh.Progress(), false, cw).View()
	hint := theme.Hint.Render("Hit space hard and steady, one jolt at a time.")
	return count + "\n\n" + bar + "\n\n" + hint
}

var (
	cardStyle = lipgloss.NewStyle().
			Width(5).
			Align(lipgloss.Center).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border)

	cardCursorStyle = cardStyle.BorderForeground(theme.Accent)
)

func (s *RingingScreen) memoryView() string {
	cards := s.session.Memory.Cards
	rows := make([]string, 0, (len(cards)+memoryColumns-1)/memoryColumns)

	for start := 0; start < len(cards); start += memoryColumns {
		end := min(start+memoryColumns, len(cards))
		cells := make([]string, 0, memoryColumns)
		for i := start; i < end; i++ {
			style := cardStyle
			if i == s.cursor {
				style = cardCursorStyle
			}
			cells = append(cells, style.Render(cardFace(cards[i])))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	matched := s.session.Memory.MatchedCount() / 2
	footer := theme.Hint.Render(fmt.Sprintf("%d of %d pairs found", matched, len(puzzle.MemorySymbols)))
	return lipgloss.JoinVertical(lipgloss.Center, rows...) + "\n" + footer
}

func cardFace(c puzzle.Card) string {
	switch c.State {
	case puzzle.FaceUp:
		return theme.Body.Bold(true).Render(c.Symbol)
	case puzzle.Matched:
		return theme.Disabled.Render(c.Symbol)
	default:
		return theme.Disabled.Render("?")
	}
}

func (s *RingingScreen) colorView() string {
	cm := s.session.ColorMatch
	word := lipgloss.NewStyle().
		Foreground(theme.Hex(cm.Display.Hex)).
		Bold(true).
		Render(strings.ToUpper(cm.Target.Name))

	lines := []string{word, ""}
	for i, c := range cm.Buttons() {
		btn := components.Button{
			Label:  fmt.Sprintf("%d  %s", i+1, c.Name),
			Active: i == s.cursor,
			Fill:   theme.Hex(c.Hex),
		}
		lines = append(lines, btn.View())
	}
	return strings.Join(lines, "\n")
}
