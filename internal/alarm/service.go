package alarm

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/abhisek/puzzlealarm/internal/notify"
)

// ErrNotFound is returned when no alarm has the requested id.
var ErrNotFound = errors.New("alarm not found")

// ErrSchedulingDenied is returned by a Scheduler when the host does not
// permit exact wake-ups. The scheduler has already told the user.
var ErrSchedulingDenied = errors.New("exact alarm scheduling not permitted")

// Repo persists the alarm list.
type Repo interface {
	// SaveAlarms replaces the persisted list.
	SaveAlarms(ctx context.Context, alarms []Alarm) error

	// LoadAlarms returns the persisted list, or an empty list when nothing
	// usable is stored.
	LoadAlarms(ctx context.Context) []Alarm
}

// Scheduler arms and disarms platform wake-ups.
type Scheduler interface {
	Schedule(ctx context.Context, a Alarm) error
	Cancel(ctx context.Context, a Alarm)
}

// Rearmer re-registers a wake-up that was already announced, without a
// notice or history event.
type Rearmer interface {
	Rearm(ctx context.Context, a Alarm) error
}

// Service owns the in-memory alarm list. Every mutation is persisted
// immediately and then reflected in the scheduler.
type Service struct {
	repo      Repo
	scheduler Scheduler
	notices   notify.Publisher

	mu        sync.Mutex
	alarms    []Alarm
	observers []func([]Alarm)
}

// NewService creates a Service. notices may be nil.
func NewService(repo Repo, scheduler Scheduler, notices notify.Publisher) *Service {
	if notices == nil {
		notices = notify.Discard
	}
	return &Service{repo: repo, scheduler: scheduler, notices: notices}
}

// Load replaces the in-memory list with the persisted one.
func (s *Service) Load(ctx context.Context) []Alarm {
	loaded := s.repo.LoadAlarms(ctx)

	s.mu.Lock()
	s.alarms = loaded
	s.mu.Unlock()

	s.emit()
	return s.List()
}

// List returns a copy of the current list.
func (s *Service) List() []Alarm {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Alarm, len(s.alarms))
	copy(out, s.alarms)
	return out
}

// Get returns the alarm with the given id.
func (s *Service) Get(id int) (Alarm, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Find(s.alarms, id)
}

// Subscribe registers fn to be called after every successful mutation.
// Observers run synchronously in subscription order.
func (s *Service) Subscribe(fn func([]Alarm)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Create adds an alarm with default settings, persists and schedules it.
func (s *Service) Create(ctx context.Context) (Alarm, error) {
	s.mu.Lock()
	a := New(NextID(s.alarms))
	updated := append(cloneAlarms(s.alarms), a)
	SortByTime(updated)
	s.mu.Unlock()

	if err := s.commit(ctx, updated); err != nil {
		return Alarm{}, err
	}
	s.schedule(ctx, a)
	return a, nil
}

// Add inserts a fully specified alarm, assigning it the next id.
func (s *Service) Add(ctx context.Context, a Alarm) (Alarm, error) {
	if err := a.Validate(); err != nil {
		return Alarm{}, err
	}

	s.mu.Lock()
	a.ID = NextID(s.alarms)
	updated := append(cloneAlarms(s.alarms), a)
	SortByTime(updated)
	s.mu.Unlock()

	if err := s.commit(ctx, updated); err != nil {
		return Alarm{}, err
	}
	if a.Enabled {
		s.schedule(ctx, a)
	}
	return a, nil
}

// Update replaces the alarm with the same id, persists the list, and then
// schedules the alarm when enabled or cancels it when disabled.
func (s *Service) Update(ctx context.Context, a Alarm) error {
	if err := a.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	updated := cloneAlarms(s.alarms)
	found := false
	for i := range updated {
		if updated[i].ID == a.ID {
			updated[i] = a
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		return fmt.Errorf("update alarm %d: %w", a.ID, ErrNotFound)
	}
	if err := s.commit(ctx, updated); err != nil {
		return err
	}

	if a.Enabled {
		s.schedule(ctx, a)
	} else {
		s.scheduler.Cancel(ctx, a)
	}
	return nil
}

// SetEnabled toggles the enabled flag of an alarm.
func (s *Service) SetEnabled(ctx context.Context, id int, enabled bool) error {
	a, ok := s.Get(id)
	if !ok {
		return fmt.Errorf("set enabled %d: %w", id, ErrNotFound)
	}
	a.Enabled = enabled
	return s.Update(ctx, a)
}

// Delete cancels the alarm's wake-up and removes it from the list.
func (s *Service) Delete(ctx context.Context, id int) error {
	a, ok := s.Get(id)
	if !ok {
		return fmt.Errorf("delete alarm %d: %w", id, ErrNotFound)
	}

	s.scheduler.Cancel(ctx, a)

	s.mu.Lock()
	updated := make([]Alarm, 0, len(s.alarms))
	for _, x := range s.alarms {
		if x.ID != id {
			updated = append(updated, x)
		}
	}
	s.mu.Unlock()

	return s.commit(ctx, updated)
}

// Restore arms every enabled alarm. In-process wake-ups do not outlive the
// process, so this runs at startup. A scheduler implementing Rearmer arms
// quietly and a single notice covers any alarms it could not arm.
func (s *Service) Restore(ctx context.Context) int {
	arm := s.scheduler.Schedule
	r, quiet := s.scheduler.(Rearmer)
	if quiet {
		arm = r.Rearm
	}

	armed, denied := 0, 0
	for _, a := range s.List() {
		if !a.Enabled {
			continue
		}
		switch err := arm(ctx, a); {
		case err == nil:
			armed++
		case errors.Is(err, ErrSchedulingDenied):
			denied++
		case quiet:
			notify.Warn(s.notices, fmt.Sprintf("Alarm %s not scheduled: %v", a.TimeString(), err))
		}
	}
	if quiet && denied > 0 {
		notify.Warn(s.notices, fmt.Sprintf("%d alarms not armed: grant permission to set alarms", denied))
	}
	return armed
}

// schedule arms a and publishes a notice on failure. The persisted change
// stands either way.
func (s *Service) schedule(ctx context.Context, a Alarm) {
	if err := s.scheduler.Schedule(ctx, a); err != nil && !errors.Is(err, ErrSchedulingDenied) {
		notify.Warn(s.notices, fmt.Sprintf("Alarm %s not scheduled: %v", a.TimeString(), err))
	}
}

// commit persists updated and, on success, makes it the current list.
func (s *Service) commit(ctx context.Context, updated []Alarm) error {
	if err := s.repo.SaveAlarms(ctx, updated); err != nil {
		notify.Error(s.notices, "Could not save alarms")
		return fmt.Errorf("save alarms: %w", err)
	}

	s.mu.Lock()
	s.alarms = updated
	s.mu.Unlock()

	s.emit()
	return nil
}

func (s *Service) emit() {
	s.mu.Lock()
	observers := make([]func([]Alarm), len(s.observers))
	copy(observers, s.observers)
	snapshot := cloneAlarms(s.alarms)
	s.mu.Unlock()

	for _, fn := range observers {
		fn(cloneAlarms(snapshot))
	}
}

func cloneAlarms(in []Alarm) []Alarm {
	out := make([]Alarm, len(in))
	copy(out, in)
	return out
}
