package edit

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/puzzlealarm/internal/alarm"
	"github.com/abhisek/puzzlealarm/internal/router"
	"github.com/abhisek/puzzlealarm/internal/screen"
	"github.com/abhisek/puzzlealarm/internal/ui/components"
	"github.com/abhisek/puzzlealarm/internal/ui/layout"
	"github.com/abhisek/puzzlealarm/internal/ui/theme"
)

// Updater persists an edited alarm.
type Updater interface {
	Update(ctx context.Context, a alarm.Alarm) error
}

type field int

const (
	fieldTime field = iota
	fieldLabel
	fieldDays
	fieldPuzzle
	fieldVibrate
	fieldRingtone
	fieldCount
)

var fieldNames = [...]string{"Time", "Label", "Repeat", "Puzzle", "Vibrate", "Ringtone"}

// EditScreen edits one alarm. Nothing is saved until Ctrl+S.
type EditScreen struct {
	svc   Updater
	alarm alarm.Alarm

	timeIn   components.TextInput
	labelIn  components.TextInput
	ringIn   components.TextInput
	focus    field
	dayIndex int
	errMsg   string
}

var _ screen.Screen = (*EditScreen)(nil)
var _ screen.KeyHintProvider = (*EditScreen)(nil)

// New creates an edit screen for a.
func New(svc Updater, a alarm.Alarm) *EditScreen {
	timeIn := components.NewTextInput("HH:MM", false, 5)
	timeIn.SetValue(a.TimeString())

	labelIn := components.NewTextInput("Wake up", false, 40)
	labelIn.SetValue(a.Label)
	labelIn.Blur()

	ringIn := components.NewTextInput("default sound", false, 256)
	ringIn.SetValue(a.Ringtone())
	ringIn.Blur()

	return &EditScreen{
		svc:     svc,
		alarm:   a,
		timeIn:  timeIn,
		labelIn: labelIn,
		ringIn:  ringIn,
	}
}

func (s *EditScreen) Init() tea.Cmd {
	return s.timeIn.Init()
}

func (s *EditScreen) Title() string {
	return "Edit Alarm"
}

func (s *EditScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "Tab/↑↓", Description: "Field"},
	}
	switch s.focus {
	case fieldDays:
		hints = append(hints, layout.KeyHint{Key: "←→", Description: "Day"}, layout.KeyHint{Key: "Space", Description: "Toggle"})
	case fieldPuzzle:
		hints = append(hints, layout.KeyHint{Key: "←→", Description: "Change"})
	case fieldVibrate:
		hints = append(hints, layout.KeyHint{Key: "Space", Description: "Toggle"})
	}
	return append(hints,
		layout.KeyHint{Key: "Ctrl+S", Description: "Save"},
		layout.KeyHint{Key: "Esc", Description: "Cancel"},
	)
}

// Alarm returns the alarm as currently edited, without the text fields
// applied.
func (s *EditScreen) Alarm() alarm.Alarm {
	return s.alarm
}

func (s *EditScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, s.updateFocusedInput(msg)
	}

	switch kmsg.String() {
	case "ctrl+s":
		return s, s.save()
	case "tab", "down":
		return s, s.moveFocus(1)
	case "shift+tab", "up":
		return s, s.moveFocus(-1)
	}

	switch s.focus {
	case fieldDays:
		s.updateDays(kmsg.String())
		return s, nil
	case fieldPuzzle:
		s.updatePuzzle(kmsg.String())
		return s, nil
	case fieldVibrate:
		switch kmsg.String() {
		case "space", " ", "enter":
			s.alarm.Vibrate = !s.alarm.Vibrate
		}
		return s, nil
	}

	return s, s.updateFocusedInput(msg)
}

func (s *EditScreen) updateFocusedInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch s.focus {
	case fieldTime:
		s.timeIn, cmd = s.timeIn.Update(msg)
	case fieldLabel:
		s.labelIn, cmd = s.labelIn.Update(msg)
	case fieldRingtone:
		s.ringIn, cmd = s.ringIn.Update(msg)
	}
	return cmd
}

func (s *EditScreen) moveFocus(delta int) tea.Cmd {
	s.timeIn.Blur()
	s.labelIn.Blur()
	s.ringIn.Blur()

	s.focus = (s.focus + field(delta) + fieldCount) % fieldCount

	switch s.focus {
	case fieldTime:
		return s.timeIn.Focus()
	case fieldLabel:
		return s.labelIn.Focus()
	case fieldRingtone:
		return s.ringIn.Focus()
	}
	return nil
}

func (s *EditScreen) updateDays(key string) {
	days := alarm.AllWeekdays()
	switch key {
	case "left", "h":
		s.dayIndex = (s.dayIndex + len(days) - 1) % len(days)
	case "right", "l":
		s.dayIndex = (s.dayIndex + 1) % len(days)
	case "space", " ", "enter", "x":
		s.alarm.RecurringDays = s.alarm.RecurringDays.Toggle(days[s.dayIndex])
	case "1", "2", "3", "4", "5", "6", "7":
		i := int(key[0] - '1')
		s.dayIndex = i
		s.alarm.RecurringDays = s.alarm.RecurringDays.Toggle(days[i])
	}
}

func (s *EditScreen) updatePuzzle(key string) {
	switch key {
	case "right", "l", "space", " ", "enter":
		s.alarm.Puzzle = s.alarm.Puzzle.Next()
	case "left", "h":
		all := alarm.AllPuzzleTypes()
		for i, p := range all {
			if p == s.alarm.Puzzle {
				s.alarm.Puzzle = all[(i+len(all)-1)%len(all)]
				return
			}
		}
		s.alarm.Puzzle = alarm.PuzzleMath
	}
}

// save applies the text fields, persists, and leaves the screen on success.
func (s *EditScreen) save() tea.Cmd {
	hour, minute, err := alarm.ParseClock(s.timeIn.Value())
	if err != nil {
		s.timeIn.Submit(false)
		s.errMsg = err.Error()
		return nil
	}

	a := s.alarm
	a.Hour, a.Minute = hour, minute
	a.Label = strings.TrimSpace(s.labelIn.Value())
	if ring := strings.TrimSpace(s.ringIn.Value()); ring != "" {
		a.RingtoneURI = &ring
	} else {
		a.RingtoneURI = nil
	}

	if err := s.svc.Update(context.Background(), a); err != nil {
		s.errMsg = err.Error()
		return nil
	}
	s.alarm = a
	s.errMsg = ""
	return func() tea.Msg { return router.PopScreenMsg{} }
}

func (s *EditScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")

	for f := field(0); f < fieldCount; f++ {
		label := lipgloss.NewStyle().Width(12).Foreground(theme.TextDim).Render(fieldNames[f])
		if f == s.focus {
			label = theme.Selected.Width(12).Render("▸ " + fieldNames[f])
		}
		b.WriteString("  " + label + s.fieldView(f) + "\n\n")
	}

	if s.errMsg != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Render("  " + s.errMsg))
		b.WriteString("\n")
	}

	cw := components.ContentWidth(width)
	return lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Width(cw+6).Render(b.String()))
}

func (s *EditScreen) fieldView(f field) string {
	switch f {
	case fieldTime:
		return s.timeIn.View()
	case fieldLabel:
		return s.labelIn.View()
	case fieldRingtone:
		return s.ringIn.View()
	case fieldDays:
		return s.daysView()
	case fieldPuzzle:
		return "◂ " + theme.Body.Render(s.alarm.Puzzle.DisplayName()) + " ▸"
	case fieldVibrate:
		if s.alarm.Vibrate {
			return theme.Correct.Render("on")
		}
		return theme.Disabled.Render("off")
	}
	return ""
}

func (s *EditScreen) daysView() string {
	parts := make([]string, 0, 7)
	for i, d := range alarm.AllWeekdays() {
		style := theme.Disabled
		if s.alarm.RecurringDays.Has(d) {
			style = theme.Correct
		}
		text := d.Short()
		if s.focus == fieldDays && i == s.dayIndex {
			style = style.Underline(true)
		}
		parts = append(parts, style.Render(text))
	}
	return strings.Join(parts, " ")
}
