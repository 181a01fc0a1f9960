package app

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"sync/atomic"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/puzzlealarm/internal/alarm"
	"github.com/abhisek/puzzlealarm/internal/notify"
	"github.com/abhisek/puzzlealarm/internal/ringer"
	"github.com/abhisek/puzzlealarm/internal/router"
	"github.com/abhisek/puzzlealarm/internal/schedule"
	"github.com/abhisek/puzzlealarm/internal/screen"
	"github.com/abhisek/puzzlealarm/internal/screens/alarms"
	"github.com/abhisek/puzzlealarm/internal/screens/ringing"
	"github.com/abhisek/puzzlealarm/internal/store"
	"github.com/abhisek/puzzlealarm/internal/trigger"
	"github.com/abhisek/puzzlealarm/internal/ui/layout"
	"github.com/abhisek/puzzlealarm/internal/ui/theme"
)

// toastDuration is how long a notice stays on screen.
const toastDuration = 3 * time.Second

type noticeMsg notify.Notice

type toastExpiredMsg struct{ seq int }

// pulseMsg carries the vibration state. seq orders pulses that arrive out
// of order.
type pulseMsg struct {
	on  bool
	seq int64
}

// promptMsg asks the app to interrupt with a fired alarm.
type promptMsg trigger.Prompt

type clockTickMsg time.Time

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router  *router.Router
	handler ringing.Dismisser
	rng     *rand.Rand
	now     func() time.Time

	width  int
	height int

	toast    notify.Notice
	toastSeq int
	buzzing  bool
	pulseSeq int64
}

// newAppModel creates an AppModel with the alarm list as the root screen.
func newAppModel(root screen.Screen, handler ringing.Dismisser, rng *rand.Rand) AppModel {
	return AppModel{
		router:  router.New(root),
		handler: handler,
		rng:     rng,
		now:     time.Now,
	}
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(m.router.Active().Init(), clockTick())
}

func clockTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return clockTickMsg(t) })
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case clockTickMsg:
		return m, clockTick()

	case noticeMsg:
		return m.showToast(notify.Notice(msg))

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.toast = notify.Notice{}
		}
		return m, nil

	case pulseMsg:
		if msg.seq > m.pulseSeq {
			m.pulseSeq = msg.seq
			m.buzzing = msg.on
		}
		return m, nil

	case promptMsg:
		scr := ringing.New(trigger.Prompt(msg), m.handler, m.rng)
		if m.ringingActive() {
			// A newer alarm takes over the puzzle screen. The sound already
			// belongs to it, so the older session is closed.
			return m, m.router.Replace(scr)
		}
		return m, m.router.Push(scr)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			if blocked, reason := m.blocked(); blocked {
				return m.showToast(notify.Notice{Level: notify.LevelWarn, Text: reason})
			}
			return m, tea.Quit
		case "esc":
			if blocked, reason := m.blocked(); blocked {
				return m.showToast(notify.Notice{Level: notify.LevelWarn, Text: reason})
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	if _, ok := msg.(router.PopScreenMsg); ok && !m.ringingActive() {
		m.buzzing = false
	}
	return m, cmd
}

func (m AppModel) showToast(n notify.Notice) (tea.Model, tea.Cmd) {
	m.toast = n
	m.toastSeq++
	seq := m.toastSeq
	return m, tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}

// blocked reports whether the active screen refuses to be left.
func (m AppModel) blocked() (bool, string) {
	if b, ok := m.router.Active().(screen.BackBlocker); ok {
		return b.BlocksBack()
	}
	return false, ""
}

func (m AppModel) ringingActive() bool {
	_, ok := m.router.Active().(*ringing.RingingScreen)
	return ok
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	status := lipgloss.NewStyle().Foreground(theme.Accent).Render(m.now().Format("15:04"))
	if m.buzzing {
		status = theme.Ringing.Render("BZZZ")
	}
	header := layout.RenderHeader(title, status, m.width)

	var footerHints []layout.KeyHint
	if p, ok := active.(screen.KeyHintProvider); ok {
		footerHints = p.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	footer := layout.RenderFooter(footerHints, m.width)

	toast := ""
	if m.toast.Text != "" {
		toast = layout.RenderToast(m.toast, m.width)
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	toastHeight := 0
	if toast != "" {
		toastHeight = lipgloss.Height(toast)
	}
	contentHeight := max(0, m.height-headerHeight-footerHeight-toastHeight)

	content := m.router.View(m.width, contentHeight)
	if toast != "" {
		content = lipgloss.NewStyle().Height(contentHeight).Render(content) + "\n" + toast
	}
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Options wires the app to the rest of the system.
type Options struct {
	Service  *alarm.Service
	Alarms   trigger.Loader
	Events   store.EventRepo
	Platform *schedule.TimerPlatform
	Notices  *notify.Bus
	Ringer   ringer.Config

	// Bell receives terminal bells when no audio player is available.
	Bell io.Writer

	// RingID fires this alarm as soon as the app starts. Zero means none.
	RingID int

	// Restore arms the stored alarms. It runs once the fire callback and
	// the notice subscription are in place.
	Restore func()
}

// Run starts the Bubble Tea program and blocks until it exits. It builds
// the process's single sound controller and routes fired wake-ups to the
// puzzle screen.
func Run(opts Options) error {
	var p *tea.Program
	var pulses atomic.Int64

	bell := opts.Bell
	if bell == nil {
		bell = os.Stderr
	}
	controller := ringer.NewFromConfig(opts.Ringer, bell, func(on bool) {
		msg := pulseMsg{on: on, seq: pulses.Add(1)}
		go p.Send(msg)
	})
	defer controller.Stop()

	handler := trigger.NewHandler(opts.Alarms, controller, trigger.SurfaceFunc(func(pr trigger.Prompt) {
		p.Send(promptMsg(pr))
	}), opts.Events)

	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), uint64(os.Getpid())))
	root := alarms.New(opts.Service, opts.Events, opts.Platform)
	p = tea.NewProgram(newAppModel(root, handler, rng))

	ctx := context.Background()
	opts.Platform.OnFire(func(id int) { handler.Fire(ctx, id) })
	defer opts.Platform.OnFire(nil)

	if opts.Notices != nil {
		unsubscribe := opts.Notices.Subscribe(func(n notify.Notice) {
			go p.Send(noticeMsg(n))
		})
		defer unsubscribe()
	}

	if opts.Restore != nil {
		opts.Restore()
	}

	if opts.RingID != 0 {
		go handler.Fire(ctx, opts.RingID)
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
