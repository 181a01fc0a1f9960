package alarm

import (
	"context"
	"errors"
	"testing"

	"github.com/abhisek/puzzlealarm/internal/notify"
)

// mockRepo implements Repo in memory.
type mockRepo struct {
	saved   [][]Alarm
	stored  []Alarm
	saveErr error
}

func (m *mockRepo) SaveAlarms(_ context.Context, alarms []Alarm) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	cp := make([]Alarm, len(alarms))
	copy(cp, alarms)
	m.saved = append(m.saved, cp)
	m.stored = cp
	return nil
}

func (m *mockRepo) LoadAlarms(_ context.Context) []Alarm {
	cp := make([]Alarm, len(m.stored))
	copy(cp, m.stored)
	return cp
}

// mockScheduler records schedule and cancel calls.
type mockScheduler struct {
	scheduled []int
	canceled  []int
	armed     map[int]bool
	err       error
}

func newMockScheduler() *mockScheduler {
	return &mockScheduler{armed: make(map[int]bool)}
}

func (m *mockScheduler) Schedule(_ context.Context, a Alarm) error {
	if m.err != nil {
		return m.err
	}
	m.scheduled = append(m.scheduled, a.ID)
	m.armed[a.ID] = true
	return nil
}

func (m *mockScheduler) Cancel(_ context.Context, a Alarm) {
	m.canceled = append(m.canceled, a.ID)
	delete(m.armed, a.ID)
}

func newTestService(stored ...Alarm) (*Service, *mockRepo, *mockScheduler) {
	repo := &mockRepo{stored: stored}
	sched := newMockScheduler()
	svc := NewService(repo, sched, nil)
	svc.Load(context.Background())
	return svc, repo, sched
}

func TestCreateAssignsNextIDAndSchedules(t *testing.T) {
	svc, repo, sched := newTestService(
		Alarm{ID: 4, Hour: 9, Puzzle: PuzzleMath, Enabled: true},
		Alarm{ID: 2, Hour: 5, Puzzle: PuzzleMath},
	)
	ctx := context.Background()

	a, err := svc.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.ID != 5 {
		t.Errorf("id = %d, want 5", a.ID)
	}
	if len(repo.saved) != 1 {
		t.Fatalf("saves = %d, want 1", len(repo.saved))
	}

	// Sorted by time of day: 05:00, 07:00, 09:00.
	var ids []int
	for _, x := range repo.stored {
		ids = append(ids, x.ID)
	}
	want := []int{2, 5, 4}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("stored order = %v, want %v", ids, want)
		}
	}

	if !sched.armed[5] {
		t.Error("expected new alarm to be scheduled")
	}
}

func TestCreateOnEmptyListStartsAtOne(t *testing.T) {
	svc, _, _ := newTestService()
	a, err := svc.Create(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if a.ID != 1 {
		t.Errorf("id = %d, want 1", a.ID)
	}
}

func TestToggleDisabledCancelsAndPersists(t *testing.T) {
	svc, repo, sched := newTestService()
	ctx := context.Background()

	a, _ := svc.Create(ctx)
	if err := svc.SetEnabled(ctx, a.ID, false); err != nil {
		t.Fatalf("disable: %v", err)
	}

	if sched.armed[a.ID] {
		t.Error("expected wake-up to be canceled")
	}
	got, ok := Find(repo.stored, a.ID)
	if !ok || got.Enabled {
		t.Errorf("persisted alarm = %+v, want isEnabled=false", got)
	}

	if err := svc.SetEnabled(ctx, a.ID, true); err != nil {
		t.Fatalf("enable: %v", err)
	}
	if !sched.armed[a.ID] {
		t.Error("expected wake-up to be re-armed")
	}
}

func TestDeleteCancelsAndRemoves(t *testing.T) {
	svc, repo, sched := newTestService()
	ctx := context.Background()

	a, _ := svc.Create(ctx)
	if err := svc.Delete(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := Find(repo.stored, a.ID); ok {
		t.Error("alarm still persisted after delete")
	}
	if sched.armed[a.ID] {
		t.Error("wake-up still armed after delete")
	}

	err := svc.Delete(ctx, a.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestUpdateUnknownID(t *testing.T) {
	svc, _, _ := newTestService()
	err := svc.Update(context.Background(), New(42))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateRejectsInvalid(t *testing.T) {
	svc, repo, _ := newTestService(New(1))
	a := New(1)
	a.Hour = 30
	if err := svc.Update(context.Background(), a); err == nil {
		t.Fatal("expected validation error")
	}
	if len(repo.saved) != 0 {
		t.Error("invalid alarm must not be persisted")
	}
}

func TestSaveFailureKeepsPreviousList(t *testing.T) {
	svc, repo, sched := newTestService(New(1))
	bus := notify.NewBus()
	svc.notices = bus
	var notices []notify.Notice
	bus.Subscribe(func(n notify.Notice) { notices = append(notices, n) })

	repo.saveErr = errors.New("disk full")
	if _, err := svc.Create(context.Background()); err == nil {
		t.Fatal("expected save error")
	}
	if len(svc.List()) != 1 {
		t.Errorf("list len = %d, want 1", len(svc.List()))
	}
	if len(sched.scheduled) != 0 {
		t.Error("nothing should be scheduled when save fails")
	}
	if len(notices) != 1 || notices[0].Level != notify.LevelError {
		t.Errorf("notices = %+v, want one error notice", notices)
	}
}

func TestScheduleFailureStillPersists(t *testing.T) {
	svc, repo, sched := newTestService()
	sched.err = errors.New("exact alarms not permitted")

	a, err := svc.Create(context.Background())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, ok := Find(repo.stored, a.ID); !ok {
		t.Error("alarm should be persisted even if scheduling is denied")
	}
}

func TestRestoreArmsOnlyEnabled(t *testing.T) {
	on := New(1)
	off := New(2)
	off.Enabled = false
	svc, _, sched := newTestService(on, off)

	n := svc.Restore(context.Background())
	if n != 1 {
		t.Errorf("armed = %d, want 1", n)
	}
	if !sched.armed[1] || sched.armed[2] {
		t.Errorf("armed set = %v", sched.armed)
	}
}

// rearmScheduler counts quiet re-registrations separately.
type rearmScheduler struct {
	*mockScheduler
	rearmed []int
	denied  bool
}

func (r *rearmScheduler) Rearm(_ context.Context, a Alarm) error {
	if r.denied {
		return ErrSchedulingDenied
	}
	r.rearmed = append(r.rearmed, a.ID)
	return nil
}

func TestRestoreRearmsQuietly(t *testing.T) {
	on1, on2 := New(1), New(2)
	off := New(3)
	off.Enabled = false

	sched := &rearmScheduler{mockScheduler: newMockScheduler()}
	bus := notify.NewBus()
	var notices []string
	bus.Subscribe(func(n notify.Notice) { notices = append(notices, n.Text) })
	svc := NewService(&mockRepo{stored: []Alarm{on1, on2, off}}, sched, bus)
	svc.Load(context.Background())

	if n := svc.Restore(context.Background()); n != 2 {
		t.Errorf("armed = %d, want 2", n)
	}
	if len(sched.rearmed) != 2 || len(sched.scheduled) != 0 {
		t.Errorf("rearmed = %v, scheduled = %v", sched.rearmed, sched.scheduled)
	}
	if len(notices) != 0 {
		t.Errorf("notices = %v", notices)
	}

	sched.denied = true
	if n := svc.Restore(context.Background()); n != 0 {
		t.Errorf("armed = %d, want 0", n)
	}
	if len(notices) != 1 {
		t.Errorf("want one notice for denied alarms, got %v", notices)
	}
}

func TestObserversNotifiedInOrder(t *testing.T) {
	svc, _, _ := newTestService()
	var calls []string
	svc.Subscribe(func(list []Alarm) { calls = append(calls, "first") })
	svc.Subscribe(func(list []Alarm) { calls = append(calls, "second") })

	if _, err := svc.Create(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(calls) != 2 || calls[0] != "first" || calls[1] != "second" {
		t.Errorf("calls = %v", calls)
	}
}

func TestAddAssignsIDAndSkipsDisabled(t *testing.T) {
	svc, _, sched := newTestService(New(3))
	a := New(0)
	a.Hour, a.Minute = 6, 15
	a.Enabled = false

	got, err := svc.Add(context.Background(), a)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != 4 {
		t.Errorf("id = %d, want 4", got.ID)
	}
	if len(sched.scheduled) != 0 {
		t.Error("disabled alarm must not be scheduled")
	}
	if svc.List()[0].ID != 4 {
		t.Error("06:15 alarm should sort first")
	}
}
