package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/moodsense/store"
)

func (d *DB) CreateHabitEvent(ctx context.Context, create *store.HabitEvent) (*store.HabitEvent, error) {
	fields := []string{"user_id", "ts", "habit_id", "completed", "created_ts"}
	if create.Timestamp.IsZero() {
		create.Timestamp = time.Now()
	}
	if create.CreatedTs == 0 {
		create.CreatedTs = time.Now().Unix()
	}
	args := []any{create.UserID, create.Timestamp.Unix(), create.HabitID, create.Completed, create.CreatedTs}

	stmt := "INSERT INTO habit_event (" + strings.Join(fields, ", ") + ") VALUES (" + placeholders(len(args)) + ") RETURNING id"
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.ID); err != nil {
		return nil, errors.Wrap(err, "failed to create habit_event")
	}
	create.Timestamp = time.Unix(create.Timestamp.Unix(), 0)
	return create, nil
}

func (d *DB) ListHabitEvents(ctx context.Context, find *store.FindHabitEvent) ([]*store.HabitEvent, error) {
	if find == nil {
		return nil, errors.New("find parameter cannot be nil")
	}

	where, args := []string{"1 = 1"}, []any{}
	if find.UserID != nil {
		where, args = append(where, "user_id = "+placeholder(len(args)+1)), append(args, *find.UserID)
	}
	if find.HabitID != nil {
		where, args = append(where, "habit_id = "+placeholder(len(args)+1)), append(args, *find.HabitID)
	}
	if find.Since != nil {
		where, args = append(where, "ts >= "+placeholder(len(args)+1)), append(args, find.Since.Unix())
	}
	if find.Until != nil {
		where, args = append(where, "ts < "+placeholder(len(args)+1)), append(args, find.Until.Unix())
	}

	query := "SELECT id, user_id, ts, habit_id, completed, created_ts FROM habit_event WHERE " + strings.Join(where, " AND ") + " ORDER BY ts ASC, id ASC"
	if find.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list habit_events")
	}
	defer rows.Close()

	list := make([]*store.HabitEvent, 0)
	for rows.Next() {
		var ts int64
		event := &store.HabitEvent{}
		if err := rows.Scan(&event.ID, &event.UserID, &ts, &event.HabitID, &event.Completed, &event.CreatedTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan habit_event")
		}
		event.Timestamp = time.Unix(ts, 0)
		list = append(list, event)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate habit_events")
	}
	return list, nil
}
