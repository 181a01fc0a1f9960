package alarms

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/puzzlealarm/internal/alarm"
	"github.com/abhisek/puzzlealarm/internal/router"
	"github.com/abhisek/puzzlealarm/internal/schedule"
	"github.com/abhisek/puzzlealarm/internal/screen"
	"github.com/abhisek/puzzlealarm/internal/screens/edit"
	"github.com/abhisek/puzzlealarm/internal/screens/history"
	"github.com/abhisek/puzzlealarm/internal/store"
	"github.com/abhisek/puzzlealarm/internal/ui/components"
	"github.com/abhisek/puzzlealarm/internal/ui/layout"
	"github.com/abhisek/puzzlealarm/internal/ui/theme"
)

// refreshInterval keeps the "rings in" countdown current.
const refreshInterval = 5 * time.Second

// Armed reports the instant a wake-up is registered for an alarm.
type Armed interface {
	NextFor(id int) (time.Time, bool)
}

type refreshTickMsg time.Time

// AlarmsScreen lists every alarm and is the root of the app.
type AlarmsScreen struct {
	svc    *alarm.Service
	events store.EventRepo
	armed  Armed
	now    func() time.Time

	alarms        []alarm.Alarm
	menu          components.Menu
	confirmDelete bool
	errMsg        string
}

var _ screen.Screen = (*AlarmsScreen)(nil)
var _ screen.KeyHintProvider = (*AlarmsScreen)(nil)

// New creates the list screen and subscribes it to list changes. events
// may be nil, which hides the history entry. armed may be nil, in which
// case every enabled alarm counts down to its next occurrence.
func New(svc *alarm.Service, events store.EventRepo, armed Armed) *AlarmsScreen {
	s := &AlarmsScreen{
		svc:    svc,
		events: events,
		armed:  armed,
		now:    time.Now,
	}
	s.setAlarms(svc.List())
	svc.Subscribe(s.setAlarms)
	return s
}

func (s *AlarmsScreen) setAlarms(list []alarm.Alarm) {
	s.alarms = list
	s.refresh()
}

// refresh rebuilds the rows from the current list and clock.
func (s *AlarmsScreen) refresh() {
	now := s.now()
	items := make([]components.MenuItem, len(s.alarms))
	for i, a := range s.alarms {
		items[i] = components.MenuItem{
			Label:  formatRow(a, now, s.nextFor(a, now)),
			Dimmed: !a.Enabled,
		}
	}
	s.menu.SetItems(items)
}

// nextFor returns when a will ring, or the zero time when it is not armed.
func (s *AlarmsScreen) nextFor(a alarm.Alarm, now time.Time) time.Time {
	if !a.Enabled {
		return time.Time{}
	}
	if s.armed == nil {
		return schedule.NextTrigger(now, a.Hour, a.Minute)
	}
	at, ok := s.armed.NextFor(a.ID)
	if !ok {
		return time.Time{}
	}
	return at
}

// formatRow renders one alarm. next is the armed wake-up; the zero time
// marks an enabled alarm that will not ring.
func formatRow(a alarm.Alarm, now, next time.Time) string {
	status := "off"
	if a.Enabled {
		status = "on "
	}
	row := fmt.Sprintf("%s  %s  %-16s %-13s %s",
		a.TimeString(), status, a.RecurringDaysText(), a.Puzzle.DisplayName(), a.Label)
	switch {
	case !a.Enabled:
	case next.IsZero():
		row += "  (not armed)"
	default:
		row += "  (" + Countdown(next.Sub(now)) + ")"
	}
	return strings.TrimRight(row, " ")
}

// Countdown renders a duration as "in 5h 03m".
func Countdown(d time.Duration) string {
	d = d.Round(time.Minute)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h == 0 {
		return fmt.Sprintf("in %dm", m)
	}
	return fmt.Sprintf("in %dh %02dm", h, m)
}

func (s *AlarmsScreen) selected() (alarm.Alarm, bool) {
	if len(s.alarms) == 0 {
		return alarm.Alarm{}, false
	}
	return s.alarms[s.menu.Selected], true
}

func (s *AlarmsScreen) Init() tea.Cmd {
	s.refresh()
	return s.tick()
}

func (s *AlarmsScreen) tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return refreshTickMsg(t)
	})
}

func (s *AlarmsScreen) Title() string {
	return "Alarms"
}

func (s *AlarmsScreen) KeyHints() []layout.KeyHint {
	if s.confirmDelete {
		return []layout.KeyHint{
			{Key: "Y", Description: "Delete"},
			{Key: "N", Description: "Keep"},
		}
	}
	hints := []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "N", Description: "New"},
		{Key: "Space", Description: "On/Off"},
		{Key: "Enter", Description: "Edit"},
		{Key: "D", Description: "Delete"},
	}
	if s.events != nil {
		hints = append(hints, layout.KeyHint{Key: "H", Description: "History"})
	}
	return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
}

func (s *AlarmsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshTickMsg:
		s.refresh()
		return s, s.tick()

	case tea.KeyMsg:
		var cmd tea.Cmd
		if s.confirmDelete {
			_, cmd = s.updateConfirm(msg)
		} else {
			_, cmd = s.updateList(msg)
		}
		// Arming happens after the list observers run.
		s.refresh()
		return s, cmd
	}
	return s, nil
}

func (s *AlarmsScreen) updateConfirm(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		s.confirmDelete = false
		if a, ok := s.selected(); ok {
			s.report(s.svc.Delete(context.Background(), a.ID))
		}
	case "n", "N", "esc":
		s.confirmDelete = false
	}
	return s, nil
}

func (s *AlarmsScreen) updateList(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	ctx := context.Background()

	switch msg.String() {
	case "n":
		a, err := s.svc.Create(ctx)
		if err != nil {
			s.report(err)
			return s, nil
		}
		s.selectID(a.ID)
		return s, push(edit.New(s.svc, a))

	case "space", " ":
		if a, ok := s.selected(); ok {
			s.report(s.svc.SetEnabled(ctx, a.ID, !a.Enabled))
		}
		return s, nil

	case "enter", "e":
		if a, ok := s.selected(); ok {
			return s, push(edit.New(s.svc, a))
		}
		return s, nil

	case "d", "delete":
		if _, ok := s.selected(); ok {
			s.confirmDelete = true
		}
		return s, nil

	case "h":
		if s.events != nil {
			return s, push(history.New(s.events, 0))
		}
		return s, nil
	}

	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *AlarmsScreen) selectID(id int) {
	for i, a := range s.alarms {
		if a.ID == id {
			s.menu.Selected = i
			return
		}
	}
}

func (s *AlarmsScreen) report(err error) {
	if err != nil {
		s.errMsg = err.Error()
		return
	}
	s.errMsg = ""
}

func push(scr screen.Screen) tea.Cmd {
	return func() tea.Msg { return router.PushScreenMsg{Screen: scr} }
}

func (s *AlarmsScreen) View(width, height int) string {
	if len(s.alarms) == 0 {
		return lipgloss.NewStyle().
			Width(width).Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.TextDim).Italic(true).
			Render("No alarms yet.\n\nPress N to add one.")
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(s.menu.View())

	if s.confirmDelete {
		a, _ := s.selected()
		b.WriteString("\n")
		b.WriteString(theme.Incorrect.Render(fmt.Sprintf("  Delete the %s alarm? (y/n)", a.TimeString())))
		b.WriteString("\n")
	}
	if s.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Render("  " + s.errMsg))
		b.WriteString("\n")
	}

	return lipgloss.NewStyle().Width(width).Render(b.String())
}
