package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// ErrNoValue is returned by Preferences.Get for a key that was never set.
var ErrNoValue = errors.New("preference not set")

const preferencesTable = "preferences"

// Preferences is a string key-value table, the local equivalent of a
// platform preference store.
type Preferences struct {
	drv *entsql.Driver
	now func() time.Time
}

func (p *Preferences) clock() time.Time {
	if p.now != nil {
		return p.now()
	}
	return time.Now()
}

// Get returns the value stored under name, or ErrNoValue.
func (p *Preferences) Get(ctx context.Context, name string) (string, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("value").
		From(entsql.Table(preferencesTable)).
		Where(entsql.EQ("name", name)).
		Query()

	rows := &entsql.Rows{}
	if err := p.drv.Query(ctx, query, args, rows); err != nil {
		return "", fmt.Errorf("query preference %q: %w", name, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return "", fmt.Errorf("read preference %q: %w", name, err)
		}
		return "", ErrNoValue
	}
	var value string
	if err := rows.Scan(&value); err != nil {
		return "", fmt.Errorf("scan preference %q: %w", name, err)
	}
	return value, nil
}

// Put stores value under name, replacing any previous value.
func (p *Preferences) Put(ctx context.Context, name, value string) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(preferencesTable).
		Columns("name", "value", "updated_at").
		Values(name, value, p.clock().UnixMilli()).
		OnConflict(
			entsql.ConflictColumns("name"),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if err := p.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("put preference %q: %w", name, err)
	}
	return nil
}

// Delete removes name. Deleting a missing key is not an error.
func (p *Preferences) Delete(ctx context.Context, name string) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Delete(preferencesTable).
		Where(entsql.EQ("name", name)).
		Query()

	if err := p.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("delete preference %q: %w", name, err)
	}
	return nil
}
