// Package trigger reacts to fired alarm wake-ups: it starts the ringing and
// interrupts the user with the dismissal puzzle.
package trigger

import (
	"context"
	"fmt"
	"os"

	"github.com/abhisek/puzzlealarm/internal/alarm"
	"github.com/abhisek/puzzlealarm/internal/ringer"
	"github.com/abhisek/puzzlealarm/internal/store"
)

// PromptText is the body of every alarm interruption.
const PromptText = "Solve the puzzle to dismiss"

// Prompt is the full-screen interruption raised for a fired alarm.
type Prompt struct {
	Alarm alarm.Alarm
	Title string
	Text  string
}

// Surface shows a prompt to the user with the highest priority available.
type Surface interface {
	Show(p Prompt)
}

// SurfaceFunc adapts a function to Surface.
type SurfaceFunc func(Prompt)

func (f SurfaceFunc) Show(p Prompt) { f(p) }

// Ringer is the part of the sound controller the handler drives.
type Ringer interface {
	Play(ref *string) error
	StartVibration(w ringer.Waveform) error
	Stop()
}

// Loader reads the persisted alarm list.
type Loader interface {
	LoadAlarms(ctx context.Context) []alarm.Alarm
}

// Handler turns a fired alarm id into ringing plus a puzzle prompt. It
// only reads the store; the list may be stale.
type Handler struct {
	alarms  Loader
	ringer  Ringer
	surface Surface
	events  store.EventRepo
}

// NewHandler creates a Handler. events may be nil.
func NewHandler(alarms Loader, r Ringer, surface Surface, events store.EventRepo) *Handler {
	return &Handler{alarms: alarms, ringer: r, surface: surface, events: events}
}

// Fire handles one wake-up. An id that no longer exists is ignored.
func (h *Handler) Fire(ctx context.Context, id int) {
	a, ok := alarm.Find(h.alarms.LoadAlarms(ctx), id)
	if !ok {
		return
	}

	if err := h.ringer.Play(a.RingtoneURI); err != nil {
		fmt.Fprintf(os.Stderr, "warning: alarm %d: %v\n", a.ID, err)
	}
	if a.Vibrate {
		if err := h.ringer.StartVibration(ringer.DefaultWaveform); err != nil {
			fmt.Fprintf(os.Stderr, "warning: alarm %d: %v\n", a.ID, err)
		}
	}

	h.record(ctx, store.AlarmEventData{
		AlarmID:    a.ID,
		Action:     store.ActionFired,
		PuzzleType: string(a.Puzzle),
	})

	if h.surface != nil {
		h.surface.Show(Prompt{Alarm: a, Title: a.Title(), Text: PromptText})
	}
}

// Dismiss stops the ringing after the alarm's puzzle was solved.
func (h *Handler) Dismiss(ctx context.Context, a alarm.Alarm, sessionID string) {
	h.ringer.Stop()
	h.record(ctx, store.AlarmEventData{
		AlarmID:    a.ID,
		Action:     store.ActionSolved,
		PuzzleType: string(a.Puzzle),
		SessionID:  sessionID,
	})
}

// Failed records a wrong answer. Ringing continues.
func (h *Handler) Failed(ctx context.Context, a alarm.Alarm, sessionID, detail string) {
	h.record(ctx, store.AlarmEventData{
		AlarmID:    a.ID,
		Action:     store.ActionAttemptFailed,
		PuzzleType: string(a.Puzzle),
		SessionID:  sessionID,
		Detail:     detail,
	})
}

func (h *Handler) record(ctx context.Context, data store.AlarmEventData) {
	if h.events == nil {
		return
	}
	if err := h.events.AppendAlarmEvent(ctx, data); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to log %s event: %v\n", data.Action, err)
	}
}
