package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // sequence > After
	Before  int64     // sequence < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	AlarmID int       // 0 = any alarm
}

// Alarm lifecycle actions.
const (
	ActionScheduled      = "scheduled"
	ActionCanceled       = "canceled"
	ActionScheduleDenied = "schedule_denied"
	ActionFired          = "fired"
	ActionAttemptFailed  = "attempt_failed"
	ActionSolved         = "solved"
)

// AlarmEventData captures one step of an alarm's lifecycle.
type AlarmEventData struct {
	AlarmID    int
	Action     string
	PuzzleType string
	SessionID  string
	Detail     string
}

// AlarmEventRecord is a stored lifecycle event.
type AlarmEventRecord struct {
	Sequence  int64
	Timestamp time.Time
	AlarmEventData
}

// EventRepo provides append and query access to lifecycle events.
type EventRepo interface {
	// AppendAlarmEvent records a lifecycle event.
	AppendAlarmEvent(ctx context.Context, data AlarmEventData) error

	// QueryAlarmEvents returns events newest first.
	QueryAlarmEvents(ctx context.Context, opts QueryOpts) ([]AlarmEventRecord, error)
}
