package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/abhisek/puzzlealarm/internal/alarm"
)

// AlarmsKey is the preference key holding the JSON-encoded alarm list.
const AlarmsKey = "alarms_list"

// alarmListSchema accepts any record carrying a valid id and local time.
// Unknown properties and enum values are allowed so newer records still
// load; the alarm decoder defaults what it does not recognise.
const alarmListSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["id", "hour", "minute"],
		"properties": {
			"id":            {"type": "integer"},
			"hour":          {"type": "integer", "minimum": 0, "maximum": 23},
			"minute":        {"type": "integer", "minimum": 0, "maximum": 59},
			"isEnabled":     {"type": "boolean"},
			"recurringDays": {
				"type": "array",
				"items": {"type": "string"}
			},
			"puzzleType":    {"type": "string"},
			"label":         {"type": "string"},
			"vibrate":       {"type": "boolean"},
			"ringtoneUri":   {"type": ["string", "null"]}
		}
	}
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func alarmSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		var doc any
		if err := json.Unmarshal([]byte(alarmListSchema), &doc); err != nil {
			schemaErr = fmt.Errorf("parse schema definition: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		const url = "schema://alarms.json"
		if err := c.AddResource(url, doc); err != nil {
			schemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile(url)
	})
	return compiledSchema, schemaErr
}

// AlarmRepo persists the alarm list as a single JSON array in the
// preference table.
type AlarmRepo struct {
	prefs *Preferences
}

var _ alarm.Repo = (*AlarmRepo)(nil)

// SaveAlarms encodes alarms as JSON and stores them under AlarmsKey.
func (r *AlarmRepo) SaveAlarms(ctx context.Context, alarms []alarm.Alarm) error {
	if alarms == nil {
		alarms = []alarm.Alarm{}
	}
	b, err := json.Marshal(alarms)
	if err != nil {
		return fmt.Errorf("marshal alarms: %w", err)
	}
	return r.prefs.Put(ctx, AlarmsKey, string(b))
}

// LoadAlarms returns the stored list. Missing, unreadable or invalid data
// yields an empty list; the caller never sees an error.
func (r *AlarmRepo) LoadAlarms(ctx context.Context) []alarm.Alarm {
	raw, err := r.prefs.Get(ctx, AlarmsKey)
	if err != nil {
		if !errors.Is(err, ErrNoValue) {
			fmt.Fprintf(os.Stderr, "warning: failed to read alarms: %v\n", err)
		}
		return []alarm.Alarm{}
	}

	alarms, err := DecodeAlarms([]byte(raw))
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: discarding stored alarms: %v\n", err)
		return []alarm.Alarm{}
	}
	return alarms
}

// DecodeAlarms validates raw against the alarm list schema and decodes it.
func DecodeAlarms(raw []byte) ([]alarm.Alarm, error) {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	sch, err := alarmSchema()
	if err != nil {
		return nil, fmt.Errorf("compile alarm schema: %w", err)
	}
	if err := sch.Validate(parsed); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	var alarms []alarm.Alarm
	if err := json.Unmarshal(raw, &alarms); err != nil {
		return nil, fmt.Errorf("decode alarms: %w", err)
	}
	if alarms == nil {
		alarms = []alarm.Alarm{}
	}
	return alarms, nil
}
