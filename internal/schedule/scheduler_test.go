package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/abhisek/puzzlealarm/internal/alarm"
	"github.com/abhisek/puzzlealarm/internal/notify"
	"github.com/abhisek/puzzlealarm/internal/store"
)

// fakePlatform records registrations without real timers.
type fakePlatform struct {
	denied bool
	armed  map[int]time.Time
	sets   int
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{armed: make(map[int]time.Time)}
}

func (f *fakePlatform) CanScheduleExact() bool { return !f.denied }

func (f *fakePlatform) SetExact(id int, at time.Time) error {
	f.sets++
	f.armed[id] = at
	return nil
}

func (f *fakePlatform) Cancel(id int) bool {
	if _, ok := f.armed[id]; !ok {
		return false
	}
	delete(f.armed, id)
	return true
}

// mockEventRepo collects appended events.
type mockEventRepo struct {
	events []store.AlarmEventData
}

func (m *mockEventRepo) AppendAlarmEvent(_ context.Context, data store.AlarmEventData) error {
	m.events = append(m.events, data)
	return nil
}

func (m *mockEventRepo) QueryAlarmEvents(_ context.Context, _ store.QueryOpts) ([]store.AlarmEventRecord, error) {
	return nil, nil
}

func TestNextTrigger(t *testing.T) {
	loc := time.FixedZone("test", 2*60*60)
	tests := []struct {
		name         string
		now          time.Time
		hour, minute int
		want         time.Time
	}{
		{
			name: "later today",
			now:  time.Date(2026, 3, 10, 6, 0, 0, 0, loc),
			hour: 7, minute: 0,
			want: time.Date(2026, 3, 10, 7, 0, 0, 0, loc),
		},
		{
			name: "already passed today",
			now:  time.Date(2026, 3, 10, 8, 0, 0, 0, loc),
			hour: 7, minute: 0,
			want: time.Date(2026, 3, 11, 7, 0, 0, 0, loc),
		},
		{
			name: "exactly now is not in the future",
			now:  time.Date(2026, 3, 10, 7, 0, 0, 0, loc),
			hour: 7, minute: 0,
			want: time.Date(2026, 3, 11, 7, 0, 0, 0, loc),
		},
		{
			name: "seconds past the minute",
			now:  time.Date(2026, 3, 10, 7, 0, 1, 0, loc),
			hour: 7, minute: 0,
			want: time.Date(2026, 3, 11, 7, 0, 0, 0, loc),
		},
		{
			name: "end of year rolls over",
			now:  time.Date(2026, 12, 31, 23, 30, 0, 0, loc),
			hour: 0, minute: 15,
			want: time.Date(2027, 1, 1, 0, 15, 0, 0, loc),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextTrigger(tt.now, tt.hour, tt.minute)
			if !got.Equal(tt.want) {
				t.Errorf("NextTrigger = %v, want %v", got, tt.want)
			}
			if !got.After(tt.now) {
				t.Errorf("trigger %v not after now %v", got, tt.now)
			}
		})
	}
}

func TestScheduleArmsNextOccurrence(t *testing.T) {
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	p := newFakePlatform()
	events := &mockEventRepo{}
	bus := notify.NewBus()
	var notices []string
	bus.Subscribe(func(n notify.Notice) { notices = append(notices, n.Text) })

	s := New(p, Options{Events: events, Notices: bus, Now: func() time.Time { return now }})

	a := alarm.New(1)
	if err := s.Schedule(context.Background(), a); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	want := time.Date(2026, 5, 2, 7, 0, 0, 0, time.UTC)
	if got := p.armed[1]; !got.Equal(want) {
		t.Errorf("armed at %v, want %v", got, want)
	}
	if len(notices) != 1 || notices[0] != "Alarm set" {
		t.Errorf("notices = %v", notices)
	}
	if len(events.events) != 1 || events.events[0].Action != store.ActionScheduled {
		t.Errorf("events = %+v", events.events)
	}
}

func TestRescheduleReplaces(t *testing.T) {
	now := time.Date(2026, 5, 1, 6, 0, 0, 0, time.UTC)
	p := newFakePlatform()
	s := New(p, Options{Now: func() time.Time { return now }})
	ctx := context.Background()

	a := alarm.New(3)
	_ = s.Schedule(ctx, a)
	a.Hour = 9
	_ = s.Schedule(ctx, a)

	if len(p.armed) != 1 {
		t.Fatalf("armed = %d, want 1", len(p.armed))
	}
	if p.armed[3].Hour() != 9 {
		t.Errorf("armed hour = %d, want 9", p.armed[3].Hour())
	}
}

func TestSchedulePermissionDenied(t *testing.T) {
	p := newFakePlatform()
	p.denied = true
	events := &mockEventRepo{}
	bus := notify.NewBus()
	var got []notify.Notice
	bus.Subscribe(func(n notify.Notice) { got = append(got, n) })
	requested := 0

	s := New(p, Options{
		Events:            events,
		Notices:           bus,
		RequestPermission: func() { requested++ },
	})

	err := s.Schedule(context.Background(), alarm.New(1))
	if !errors.Is(err, ErrExactAlarmDenied) {
		t.Fatalf("err = %v, want ErrExactAlarmDenied", err)
	}
	if p.sets != 0 {
		t.Error("nothing should be registered when permission is denied")
	}
	if requested != 1 {
		t.Errorf("permission requests = %d, want 1", requested)
	}
	if len(got) != 1 || got[0].Text != "Please grant permission to set alarms" {
		t.Errorf("notices = %+v", got)
	}
	if len(events.events) != 1 || events.events[0].Action != store.ActionScheduleDenied {
		t.Errorf("events = %+v", events.events)
	}
}

func TestRearmIsQuiet(t *testing.T) {
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	p := newFakePlatform()
	events := &mockEventRepo{}
	bus := notify.NewBus()
	var notices []string
	bus.Subscribe(func(n notify.Notice) { notices = append(notices, n.Text) })

	s := New(p, Options{Events: events, Notices: bus, Now: func() time.Time { return now }})
	if err := s.Rearm(context.Background(), alarm.New(1)); err != nil {
		t.Fatalf("rearm: %v", err)
	}

	want := time.Date(2026, 5, 2, 7, 0, 0, 0, time.UTC)
	if got := p.armed[1]; !got.Equal(want) {
		t.Errorf("armed at %v, want %v", got, want)
	}
	if len(notices) != 0 || len(events.events) != 0 {
		t.Errorf("notices = %v, events = %+v", notices, events.events)
	}

	p.denied = true
	requested := 0
	s = New(p, Options{Events: events, Notices: bus, RequestPermission: func() { requested++ }})
	if err := s.Rearm(context.Background(), alarm.New(2)); !errors.Is(err, ErrExactAlarmDenied) {
		t.Errorf("err = %v, want ErrExactAlarmDenied", err)
	}
	if requested != 0 || len(notices) != 0 || len(events.events) != 0 {
		t.Error("a denied rearm must stay quiet")
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	p := newFakePlatform()
	bus := notify.NewBus()
	var notices []string
	bus.Subscribe(func(n notify.Notice) { notices = append(notices, n.Text) })
	s := New(p, Options{Notices: bus})
	ctx := context.Background()

	a := alarm.New(1)
	_ = s.Schedule(ctx, a)
	s.Cancel(ctx, a)
	s.Cancel(ctx, a)

	if len(p.armed) != 0 {
		t.Error("expected no live wake-up after cancel")
	}
	canceled := 0
	for _, n := range notices {
		if n == "Alarm canceled" {
			canceled++
		}
	}
	if canceled != 1 {
		t.Errorf("cancel notices = %d, want 1", canceled)
	}
}
