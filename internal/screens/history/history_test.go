package history

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/puzzlealarm/internal/router"
	"github.com/abhisek/puzzlealarm/internal/store"
)

type fakeEvents struct {
	records []store.AlarmEventRecord
	err     error
	opts    store.QueryOpts
}

func (f *fakeEvents) AppendAlarmEvent(context.Context, store.AlarmEventData) error { return nil }

func (f *fakeEvents) QueryAlarmEvents(_ context.Context, opts store.QueryOpts) ([]store.AlarmEventRecord, error) {
	f.opts = opts
	return f.records, f.err
}

func record(seq int64, action string) store.AlarmEventRecord {
	return store.AlarmEventRecord{
		Sequence:  seq,
		Timestamp: time.Date(2026, 5, 4, 7, 0, int(seq), 0, time.UTC),
		AlarmEventData: store.AlarmEventData{
			AlarmID:    3,
			Action:     action,
			PuzzleType: "MEMORY",
			SessionID:  "s-1",
		},
	}
}

func load(t *testing.T, s *HistoryScreen) {
	t.Helper()
	s.Update(s.Init()())
}

func TestInitQueriesAlarm(t *testing.T) {
	f := &fakeEvents{records: []store.AlarmEventRecord{record(2, store.ActionSolved), record(1, store.ActionFired)}}
	s := New(f, 3)

	load(t, s)

	if f.opts.AlarmID != 3 || f.opts.Limit != PageSize {
		t.Errorf("opts = %+v", f.opts)
	}
	if len(s.events) != 2 || !s.loaded {
		t.Fatalf("events = %d loaded = %v", len(s.events), s.loaded)
	}
	if s.Title() != "History · Alarm #3" {
		t.Errorf("Title() = %q", s.Title())
	}
}

func TestLoadError(t *testing.T) {
	s := New(&fakeEvents{err: errors.New("db locked")}, 0)
	load(t, s)

	if v := s.View(80, 20); !strings.Contains(v, "db locked") {
		t.Errorf("view should show the error: %q", v)
	}
}

func TestNavigateAndExpand(t *testing.T) {
	f := &fakeEvents{records: []store.AlarmEventRecord{
		record(3, store.ActionSolved),
		record(2, store.ActionAttemptFailed),
		record(1, store.ActionFired),
	}}
	s := New(f, 0)
	load(t, s)

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if s.selected != 2 {
		t.Errorf("selected = %d, want 2", s.selected)
	}

	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if !s.expanded[2] {
		t.Error("enter should expand the row")
	}
	if v := s.View(100, 20); !strings.Contains(v, "session s-1") {
		t.Error("expanded row should show the session")
	}
}

func TestEscPops(t *testing.T) {
	s := New(&fakeEvents{}, 0)
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}

func TestActionLabel(t *testing.T) {
	tests := map[string]string{
		store.ActionFired:          "rang",
		store.ActionSolved:         "dismissed",
		store.ActionAttemptFailed:  "wrong answer",
		store.ActionScheduleDenied: "not permitted",
		"custom":                   "custom",
	}
	for action, want := range tests {
		if got := ActionLabel(action); got != want {
			t.Errorf("ActionLabel(%q) = %q, want %q", action, got, want)
		}
	}
}

func TestFormatEvent(t *testing.T) {
	line := FormatEvent(record(1, store.ActionFired))
	if !strings.Contains(line, "#3") || !strings.Contains(line, "rang") || !strings.Contains(line, "Memory Pairs") {
		t.Errorf("FormatEvent = %q", line)
	}
}
