package trigger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/puzzlealarm/internal/alarm"
	"github.com/abhisek/puzzlealarm/internal/ringer"
	"github.com/abhisek/puzzlealarm/internal/store"
)

type staticLoader []alarm.Alarm

func (s staticLoader) LoadAlarms(context.Context) []alarm.Alarm { return s }

type mockRinger struct {
	played    []*string
	vibrating int
	stops     int
	playErr   error
}

func (m *mockRinger) Play(ref *string) error {
	m.played = append(m.played, ref)
	return m.playErr
}

func (m *mockRinger) StartVibration(ringer.Waveform) error {
	m.vibrating++
	return nil
}

func (m *mockRinger) Stop() { m.stops++ }

type mockEventRepo struct {
	events []store.AlarmEventData
}

func (m *mockEventRepo) AppendAlarmEvent(_ context.Context, data store.AlarmEventData) error {
	m.events = append(m.events, data)
	return nil
}

func (m *mockEventRepo) QueryAlarmEvents(context.Context, store.QueryOpts) ([]store.AlarmEventRecord, error) {
	return nil, nil
}

func TestFireUnknownIDHasNoSideEffects(t *testing.T) {
	r := &mockRinger{}
	events := &mockEventRepo{}
	var prompts []Prompt
	h := NewHandler(staticLoader{alarm.New(1)}, r, SurfaceFunc(func(p Prompt) { prompts = append(prompts, p) }), events)

	h.Fire(context.Background(), 42)

	assert.Empty(t, r.played)
	assert.Zero(t, r.vibrating)
	assert.Empty(t, events.events)
	assert.Empty(t, prompts)
}

func TestFireRingsAndPrompts(t *testing.T) {
	ring := "/tmp/wake.ogg"
	a := alarm.New(3)
	a.Label = "Gym"
	a.RingtoneURI = &ring
	a.Puzzle = alarm.PuzzleMemory

	r := &mockRinger{}
	events := &mockEventRepo{}
	var prompts []Prompt
	h := NewHandler(staticLoader{alarm.New(1), a}, r, SurfaceFunc(func(p Prompt) { prompts = append(prompts, p) }), events)

	h.Fire(context.Background(), 3)

	require.Len(t, r.played, 1)
	assert.Equal(t, ring, *r.played[0])
	assert.Equal(t, 1, r.vibrating)

	require.Len(t, prompts, 1)
	assert.Equal(t, "Gym", prompts[0].Title)
	assert.Equal(t, PromptText, prompts[0].Text)
	assert.Equal(t, alarm.PuzzleMemory, prompts[0].Alarm.Puzzle)

	require.Len(t, events.events, 1)
	assert.Equal(t, store.ActionFired, events.events[0].Action)
	assert.Equal(t, 3, events.events[0].AlarmID)
}

func TestFireWithoutVibrationOrLabel(t *testing.T) {
	a := alarm.New(1)
	a.Vibrate = false

	r := &mockRinger{}
	var got Prompt
	h := NewHandler(staticLoader{a}, r, SurfaceFunc(func(p Prompt) { got = p }), nil)

	h.Fire(context.Background(), 1)

	assert.Zero(t, r.vibrating)
	require.Len(t, r.played, 1)
	assert.Nil(t, r.played[0], "no ringtone plays the default sound")
	assert.Equal(t, "Alarm", got.Title)
}

func TestFireStillPromptsWhenSoundFails(t *testing.T) {
	r := &mockRinger{playErr: errors.New("no device")}
	shown := false
	h := NewHandler(staticLoader{alarm.New(1)}, r, SurfaceFunc(func(Prompt) { shown = true }), nil)

	h.Fire(context.Background(), 1)

	assert.True(t, shown)
}

func TestDismissStopsRinging(t *testing.T) {
	r := &mockRinger{}
	events := &mockEventRepo{}
	h := NewHandler(staticLoader{}, r, nil, events)

	h.Failed(context.Background(), alarm.New(2), "sess-1", "Wrong answer!")
	assert.Zero(t, r.stops, "a failed attempt keeps ringing")

	h.Dismiss(context.Background(), alarm.New(2), "sess-1")
	assert.Equal(t, 1, r.stops)

	require.Len(t, events.events, 2)
	assert.Equal(t, store.ActionAttemptFailed, events.events[0].Action)
	assert.Equal(t, store.ActionSolved, events.events[1].Action)
	assert.Equal(t, "sess-1", events.events[1].SessionID)
}
