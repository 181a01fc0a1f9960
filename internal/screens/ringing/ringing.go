// Package ringing is the full-screen interruption shown while an alarm
// rings. The only way out is solving the alarm's puzzle.
package ringing

import (
	"context"
	"math/rand/v2"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/puzzlealarm/internal/alarm"
	"github.com/abhisek/puzzlealarm/internal/puzzle"
	"github.com/abhisek/puzzlealarm/internal/router"
	"github.com/abhisek/puzzlealarm/internal/screen"
	"github.com/abhisek/puzzlealarm/internal/trigger"
	"github.com/abhisek/puzzlealarm/internal/ui/components"
	"github.com/abhisek/puzzlealarm/internal/ui/layout"
)

// BackBlockedMessage is shown when the user tries to leave unsolved.
const BackBlockedMessage = "You must solve the puzzle to dismiss the alarm."

// Feedback shown for a wrong attempt.
const (
	wrongAnswer = "Wrong answer!"
	wrongText   = "Text does not match!"
	wrongColor  = "Wrong color!"
)

// feedbackDuration is how long a wrong-attempt message stays up.
const feedbackDuration = 2 * time.Second

// jolt is the acceleration, in g, of one simulated shake.
const jolt = 3.0

// memoryEvalMsg is delivered RevealDelay after a pair was turned up.
type memoryEvalMsg struct {
	sessionID string
}

type feedbackDoneMsg struct {
	seq int
}

// Dismisser records the outcome of the puzzle and silences the alarm.
type Dismisser interface {
	Dismiss(ctx context.Context, a alarm.Alarm, sessionID string)
	Failed(ctx context.Context, a alarm.Alarm, sessionID, detail string)
}

// RingingScreen hosts one puzzle session for a fired alarm.
type RingingScreen struct {
	prompt  trigger.Prompt
	handler Dismisser
	session *puzzle.Session
	now     func() time.Time

	input       components.TextInput
	cursor      int
	feedback    string
	feedbackSeq int
	solved      bool
}

var _ screen.Screen = (*RingingScreen)(nil)
var _ screen.KeyHintProvider = (*RingingScreen)(nil)
var _ screen.BackBlocker = (*RingingScreen)(nil)
var _ screen.Disposer = (*RingingScreen)(nil)

// New creates the screen for prompt. An alarm with an unknown puzzle type
// falls back to the math puzzle.
func New(prompt trigger.Prompt, handler Dismisser, rng *rand.Rand) *RingingScreen {
	sess, err := puzzle.NewSession(prompt.Alarm.Puzzle, rng)
	if err != nil {
		sess, _ = puzzle.NewSession(alarm.PuzzleMath, rng)
	}

	s := &RingingScreen{
		prompt:  prompt,
		handler: handler,
		session: sess,
		now:     time.Now,
	}
	switch sess.Kind {
	case alarm.PuzzleMath:
		s.input = components.NewTextInput("Your answer", true, 4)
	case alarm.PuzzleRetype:
		s.input = components.NewTextInput("Type here", false, 16)
	}
	return s
}

// Session exposes the running puzzle.
func (s *RingingScreen) Session() *puzzle.Session {
	return s.session
}

func (s *RingingScreen) Init() tea.Cmd {
	switch s.session.Kind {
	case alarm.PuzzleMath, alarm.PuzzleRetype:
		return s.input.Init()
	}
	return nil
}

func (s *RingingScreen) Title() string {
	return s.prompt.Title
}

func (s *RingingScreen) BlocksBack() (bool, string) {
	return !s.solved, BackBlockedMessage
}

// Dispose closes the session so a pending memory evaluation is dropped.
func (s *RingingScreen) Dispose() {
	s.session.Close()
}

func (s *RingingScreen) KeyHints() []layout.KeyHint {
	switch s.session.Kind {
	case alarm.PuzzleShake:
		return []layout.KeyHint{{Key: "Space", Description: "Shake"}}
	case alarm.PuzzleMemory:
		return []layout.KeyHint{
			{Key: "←↑↓→", Description: "Move"},
			{Key: "Enter", Description: "Flip"},
		}
	case alarm.PuzzleColorMatch:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Choose"},
			{Key: "Enter", Description: "Press"},
			{Key: "1-4", Description: "Press"},
		}
	}
	return []layout.KeyHint{{Key: "Enter", Description: "Submit"}}
}

func (s *RingingScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if s.solved {
		return s, nil
	}

	switch msg := msg.(type) {
	case memoryEvalMsg:
		if msg.sessionID != s.session.ID {
			return s, nil
		}
		if _, solved := s.session.Memory.Evaluate(); solved {
			return s, s.finish()
		}
		return s, nil

	case feedbackDoneMsg:
		if msg.seq == s.feedbackSeq {
			s.feedback = ""
		}
		return s, nil

	case tea.KeyMsg:
		switch s.session.Kind {
		case alarm.PuzzleMath:
			return s.updateMath(msg)
		case alarm.PuzzleRetype:
			return s.updateRetype(msg)
		case alarm.PuzzleShake:
			return s.updateShake(msg)
		case alarm.PuzzleMemory:
			return s.updateMemory(msg)
		case alarm.PuzzleColorMatch:
			return s.updateColor(msg)
		}
	}

	if s.session.Kind == alarm.PuzzleMath || s.session.Kind == alarm.PuzzleRetype {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *RingingScreen) updateMath(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if msg.String() != "enter" {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	if s.session.Math.Attempt(s.input.Value()) == puzzle.Solved {
		return s, s.finish()
	}
	s.input.Reset()
	return s, s.fail(wrongAnswer)
}

func (s *RingingScreen) updateRetype(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if msg.String() != "enter" {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	if s.session.Retype.Attempt(s.input.Value()) == puzzle.Solved {
		return s, s.finish()
	}
	s.input.Submit(false)
	return s, s.fail(wrongText)
}

func (s *RingingScreen) updateShake(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "space", " ":
		_, solved := s.session.Shake.Feed(puzzle.Sample{
			Z:  jolt * puzzle.StandardGravity,
			At: s.now(),
		})
		if solved {
			return s, s.finish()
		}
	}
	return s, nil
}

// memoryColumns is the width of the card grid.
const memoryColumns = 3

func (s *RingingScreen) updateMemory(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	n := len(s.session.Memory.Cards)
	switch msg.String() {
	case "left", "h":
		if s.cursor%memoryColumns > 0 {
			s.cursor--
		}
	case "right", "l":
		if s.cursor%memoryColumns < memoryColumns-1 && s.cursor+1 < n {
			s.cursor++
		}
	case "up", "k":
		if s.cursor-memoryColumns >= 0 {
			s.cursor -= memoryColumns
		}
	case "down", "j":
		if s.cursor+memoryColumns < n {
			s.cursor += memoryColumns
		}
	case "enter", "space", " ":
		res, err := s.session.Memory.Tap(s.cursor)
		if err != nil {
			// Matched, already face up, or a pair is pending: ignored.
			return s, nil
		}
		if res == puzzle.TapPairReady {
			id := s.session.ID
			return s, tea.Tick(puzzle.RevealDelay, func(time.Time) tea.Msg {
				return memoryEvalMsg{sessionID: id}
			})
		}
	}
	return s, nil
}

func (s *RingingScreen) updateColor(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	buttons := s.session.ColorMatch.Buttons()
	key := msg.String()
	switch key {
	case "up", "k", "left", "h":
		if s.cursor > 0 {
			s.cursor--
		}
		return s, nil
	case "down", "j", "right", "l":
		if s.cursor < len(buttons)-1 {
			s.cursor++
		}
		return s, nil
	case "enter", "space", " ":
		return s.pressColor(buttons[s.cursor].Name)
	}
	if len(key) == 1 && key[0] >= '1' && int(key[0]-'1') < len(buttons) {
		return s.pressColor(buttons[key[0]-'1'].Name)
	}
	return s, nil
}

func (s *RingingScreen) pressColor(name string) (screen.Screen, tea.Cmd) {
	if s.session.ColorMatch.Attempt(name) == puzzle.Solved {
		return s, s.finish()
	}
	return s, s.fail(wrongColor)
}

// fail shows feedback for a wrong attempt and records it. The alarm keeps
// ringing.
func (s *RingingScreen) fail(text string) tea.Cmd {
	s.handler.Failed(context.Background(), s.prompt.Alarm, s.session.ID, text)
	s.feedback = text
	s.feedbackSeq++
	seq := s.feedbackSeq
	return tea.Tick(feedbackDuration, func(time.Time) tea.Msg {
		return feedbackDoneMsg{seq: seq}
	})
}

// finish silences the alarm and leaves the screen.
func (s *RingingScreen) finish() tea.Cmd {
	s.solved = true
	s.feedback = ""
	s.handler.Dismiss(context.Background(), s.prompt.Alarm, s.session.ID)
	return func() tea.Msg { return router.PopScreenMsg{} }
}

// Solved reports whether the alarm was dismissed.
func (s *RingingScreen) Solved() bool {
	return s.solved
}
