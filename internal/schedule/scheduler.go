package schedule

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/abhisek/puzzlealarm/internal/alarm"
	"github.com/abhisek/puzzlealarm/internal/notify"
	"github.com/abhisek/puzzlealarm/internal/store"
)

// ErrExactAlarmDenied is returned when the host does not allow exact
// wake-ups. The request is abandoned, not queued.
var ErrExactAlarmDenied = alarm.ErrSchedulingDenied

// Platform is the host's exact-alarm facility.
type Platform interface {
	// CanScheduleExact reports whether exact wake-ups are permitted.
	CanScheduleExact() bool

	// SetExact registers a wake-up for id at the given instant, replacing
	// any previous registration for the same id.
	SetExact(id int, at time.Time) error

	// Cancel removes the registration for id and reports whether one existed.
	Cancel(id int) bool
}

// NextTrigger returns the next instant strictly after now at hour:minute:00
// local time (in now's location). Recurring days are not consulted.
func NextTrigger(now time.Time, hour, minute int) time.Time {
	t := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !t.After(now) {
		t = time.Date(now.Year(), now.Month(), now.Day()+1, hour, minute, 0, 0, now.Location())
	}
	return t
}

// Options configures a Scheduler.
type Options struct {
	// Events records lifecycle events. Optional.
	Events store.EventRepo

	// Notices receives the transient confirmation messages. Optional.
	Notices notify.Publisher

	// RequestPermission is invoked when exact wake-ups are not permitted.
	RequestPermission func()

	// Now overrides the clock (tests).
	Now func() time.Time
}

// Scheduler translates alarms into platform wake-ups.
type Scheduler struct {
	platform          Platform
	events            store.EventRepo
	notices           notify.Publisher
	requestPermission func()
	now               func() time.Time
}

var _ alarm.Scheduler = (*Scheduler)(nil)
var _ alarm.Rearmer = (*Scheduler)(nil)

// New creates a Scheduler on top of platform.
func New(platform Platform, opts Options) *Scheduler {
	s := &Scheduler{
		platform:          platform,
		events:            opts.Events,
		notices:           opts.Notices,
		requestPermission: opts.RequestPermission,
		now:               opts.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.notices == nil {
		s.notices = notify.Discard
	}
	return s
}

// Schedule arms a single wake-up for the alarm's next occurrence.
func (s *Scheduler) Schedule(ctx context.Context, a alarm.Alarm) error {
	if !s.platform.CanScheduleExact() {
		notify.Warn(s.notices, "Please grant permission to set alarms")
		if s.requestPermission != nil {
			s.requestPermission()
		}
		s.record(ctx, a, store.ActionScheduleDenied, "")
		return ErrExactAlarmDenied
	}

	at := NextTrigger(s.now(), a.Hour, a.Minute)
	if err := s.platform.SetExact(a.ID, at); err != nil {
		return fmt.Errorf("schedule alarm %d: %w", a.ID, err)
	}

	notify.Info(s.notices, "Alarm set")
	s.record(ctx, a, store.ActionScheduled, at.Format(time.RFC3339))
	return nil
}

// Rearm registers the alarm's next occurrence without announcing it. A
// denied permission is returned for the caller to report.
func (s *Scheduler) Rearm(_ context.Context, a alarm.Alarm) error {
	if !s.platform.CanScheduleExact() {
		return ErrExactAlarmDenied
	}
	at := NextTrigger(s.now(), a.Hour, a.Minute)
	if err := s.platform.SetExact(a.ID, at); err != nil {
		return fmt.Errorf("rearm alarm %d: %w", a.ID, err)
	}
	return nil
}

// Cancel disarms any wake-up for the alarm. Canceling an alarm that is not
// armed is a no-op.
func (s *Scheduler) Cancel(ctx context.Context, a alarm.Alarm) {
	if !s.platform.Cancel(a.ID) {
		return
	}
	notify.Info(s.notices, "Alarm canceled")
	s.record(ctx, a, store.ActionCanceled, "")
}

// record logs the event but never fails the caller.
func (s *Scheduler) record(ctx context.Context, a alarm.Alarm, action, detail string) {
	if s.events == nil {
		return
	}
	err := s.events.AppendAlarmEvent(ctx, store.AlarmEventData{
		AlarmID:    a.ID,
		Action:     action,
		PuzzleType: string(a.Puzzle),
		Detail:     detail,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to log %s event: %v\n", action, err)
	}
}
