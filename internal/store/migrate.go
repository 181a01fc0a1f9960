package store

import (
	"context"

	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// PreferencesColumns holds the columns for the "preferences" table.
	PreferencesColumns = []*schema.Column{
		{Name: "name", Type: field.TypeString},
		{Name: "value", Type: field.TypeString, Size: 2147483647},
		{Name: "updated_at", Type: field.TypeInt64},
	}
	// PreferencesTable holds the schema information for the "preferences" table.
	PreferencesTable = &schema.Table{
		Name:       preferencesTable,
		Columns:    PreferencesColumns,
		PrimaryKey: []*schema.Column{PreferencesColumns[0]},
	}

	// AlarmEventsColumns holds the columns for the "alarm_events" table.
	AlarmEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeInt64},
		{Name: "alarm_id", Type: field.TypeInt},
		{Name: "action", Type: field.TypeString},
		{Name: "puzzle_type", Type: field.TypeString, Default: ""},
		{Name: "session_id", Type: field.TypeString, Default: ""},
		{Name: "detail", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	// AlarmEventsTable holds the schema information for the "alarm_events" table.
	AlarmEventsTable = &schema.Table{
		Name:       alarmEventsTable,
		Columns:    AlarmEventsColumns,
		PrimaryKey: []*schema.Column{AlarmEventsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "alarmevent_timestamp",
				Unique:  false,
				Columns: []*schema.Column{AlarmEventsColumns[2]},
			},
			{
				Name:    "alarmevent_alarm_id",
				Unique:  false,
				Columns: []*schema.Column{AlarmEventsColumns[3]},
			},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		PreferencesTable,
		AlarmEventsTable,
	}
)

// migrate brings the database up to the tables above. Existing data is
// kept; only missing tables, columns and indexes are added.
func migrate(ctx context.Context, drv *entsql.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return err
	}
	return m.Create(ctx, Tables...)
}
