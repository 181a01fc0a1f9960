package history

import (
	"context"
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/puzzlealarm/internal/alarm"
	"github.com/abhisek/puzzlealarm/internal/router"
	"github.com/abhisek/puzzlealarm/internal/screen"
	"github.com/abhisek/puzzlealarm/internal/store"
	"github.com/abhisek/puzzlealarm/internal/ui/layout"
	"github.com/abhisek/puzzlealarm/internal/ui/theme"
)

// PageSize is the number of events loaded.
const PageSize = 100

type historyLoadedMsg struct {
	Events []store.AlarmEventRecord
	Err    error
}

// HistoryScreen displays recent alarm lifecycle events.
type HistoryScreen struct {
	eventRepo store.EventRepo
	alarmID   int
	events    []store.AlarmEventRecord
	selected  int
	offset    int
	expanded  map[int]bool
	loaded    bool
	errMsg    string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a HistoryScreen. A non-zero alarmID limits it to one alarm.
func New(eventRepo store.EventRepo, alarmID int) *HistoryScreen {
	return &HistoryScreen{
		eventRepo: eventRepo,
		alarmID:   alarmID,
		expanded:  make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return func() tea.Msg {
		events, err := s.eventRepo.QueryAlarmEvents(context.Background(), store.QueryOpts{
			Limit:   PageSize,
			AlarmID: s.alarmID,
		})
		return historyLoadedMsg{Events: events, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	if s.alarmID != 0 {
		return fmt.Sprintf("History · Alarm #%d", s.alarmID)
	}
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.events = msg.Events
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.events)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
			return s, nil
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.events) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  Nothing has happened yet.")
	}

	// Keep the cursor on screen; expanded rows take two lines.
	visible := max(1, height-2)
	if s.selected < s.offset {
		s.offset = s.selected
	}
	if s.selected >= s.offset+visible {
		s.offset = s.selected - visible + 1
	}

	var b strings.Builder
	b.WriteString("\n")

	lines := 0
	for i := s.offset; i < len(s.events) && lines < visible; i++ {
		ev := s.events[i]

		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		line := prefix + FormatEvent(ev)
		style := lipgloss.NewStyle().Foreground(actionColor(ev.Action))
		if i == s.selected {
			style = style.Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")
		lines++

		if s.expanded[i] {
			detail := ev.Detail
			if detail == "" {
				detail = "no details"
			}
			if ev.SessionID != "" {
				detail += "  session " + ev.SessionID
			}
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
				lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render("    "+detail)))
			b.WriteString("\n")
			lines++
		}
	}

	return b.String()
}

// FormatEvent renders one event as a single line.
func FormatEvent(ev store.AlarmEventRecord) string {
	puzzle := ""
	if ev.PuzzleType != "" {
		puzzle = alarm.PuzzleType(ev.PuzzleType).DisplayName()
	}
	return fmt.Sprintf("%s  #%-3d %-16s %s",
		ev.Timestamp.Local().Format("Jan 02 15:04:05"), ev.AlarmID, ActionLabel(ev.Action), puzzle)
}

// ActionLabel returns a human-readable name for a lifecycle action.
func ActionLabel(action string) string {
	switch action {
	case store.ActionScheduled:
		return "scheduled"
	case store.ActionCanceled:
		return "canceled"
	case store.ActionScheduleDenied:
		return "not permitted"
	case store.ActionFired:
		return "rang"
	case store.ActionAttemptFailed:
		return "wrong answer"
	case store.ActionSolved:
		return "dismissed"
	default:
		return action
	}
}

func actionColor(action string) color.Color {
	switch action {
	case store.ActionFired:
		return theme.Alarm
	case store.ActionSolved:
		return theme.Success
	case store.ActionAttemptFailed, store.ActionScheduleDenied:
		return theme.Accent
	case store.ActionCanceled:
		return theme.TextDim
	default:
		return theme.Text
	}
}
