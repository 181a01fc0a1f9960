package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

const alarmEventsTable = "alarm_events"

// eventRepo implements EventRepo on the alarm_events table.
type eventRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
}

func (r *eventRepo) AppendAlarmEvent(ctx context.Context, data AlarmEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(alarmEventsTable).
		Columns("sequence", "timestamp", "alarm_id", "action", "puzzle_type", "session_id", "detail").
		Values(seqNum, time.Now().UTC().UnixMilli(), data.AlarmID, data.Action, data.PuzzleType, data.SessionID, data.Detail).
		Query()

	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save alarm event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryAlarmEvents(ctx context.Context, opts QueryOpts) ([]AlarmEventRecord, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select("sequence", "timestamp", "alarm_id", "action", "puzzle_type", "session_id", "detail").
		From(entsql.Table(alarmEventsTable)).
		OrderBy(entsql.Desc("sequence"))

	if opts.After > 0 {
		sel.Where(entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		sel.Where(entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		sel.Where(entsql.GTE("timestamp", opts.From.UTC().UnixMilli()))
	}
	if !opts.To.IsZero() {
		sel.Where(entsql.LTE("timestamp", opts.To.UTC().UnixMilli()))
	}
	if opts.AlarmID != 0 {
		sel.Where(entsql.EQ("alarm_id", opts.AlarmID))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query alarm events: %w", err)
	}
	defer rows.Close()

	var records []AlarmEventRecord
	for rows.Next() {
		var (
			rec AlarmEventRecord
			ts  int64
		)
		if err := rows.Scan(&rec.Sequence, &ts, &rec.AlarmID, &rec.Action, &rec.PuzzleType, &rec.SessionID, &rec.Detail); err != nil {
			return nil, fmt.Errorf("scan alarm event: %w", err)
		}
		rec.Timestamp = time.UnixMilli(ts).UTC()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read alarm events: %w", err)
	}
	return records, nil
}
