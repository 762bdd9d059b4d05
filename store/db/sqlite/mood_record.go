package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/moodsense/store"
)

func (d *DB) CreateMoodRecord(ctx context.Context, create *store.MoodRecord) (*store.MoodRecord, error) {
	fields := []string{"user_id", "ts", "level", "note", "created_ts"}
	if create.Timestamp.IsZero() {
		create.Timestamp = time.Now()
	}
	if create.CreatedTs == 0 {
		create.CreatedTs = time.Now().Unix()
	}
	args := []any{create.UserID, create.Timestamp.Unix(), create.Level, create.Note, create.CreatedTs}

	stmt := "INSERT INTO mood_record (" + strings.Join(fields, ", ") + ") VALUES (" + placeholders(len(args)) + ") RETURNING id"
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.ID); err != nil {
		return nil, errors.Wrap(err, "failed to create mood_record")
	}
	create.Timestamp = time.Unix(create.Timestamp.Unix(), 0)
	return create, nil
}

func (d *DB) ListMoodRecords(ctx context.Context, find *store.FindMoodRecord) ([]*store.MoodRecord, error) {
	if find == nil {
		return nil, errors.New("find parameter cannot be nil")
	}

	where, args := []string{"1 = 1"}, []any{}
	if find.UserID != nil {
		where, args = append(where, "user_id = "+placeholder(len(args)+1)), append(args, *find.UserID)
	}
	if find.Since != nil {
		where, args = append(where, "ts >= "+placeholder(len(args)+1)), append(args, find.Since.Unix())
	}
	if find.Until != nil {
		where, args = append(where, "ts < "+placeholder(len(args)+1)), append(args, find.Until.Unix())
	}

	query := "SELECT id, user_id, ts, level, note, created_ts FROM mood_record WHERE " + strings.Join(where, " AND ") + " ORDER BY ts ASC, id ASC"
	if find.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list mood_records")
	}
	defer rows.Close()

	list := make([]*store.MoodRecord, 0)
	for rows.Next() {
		var ts int64
		record := &store.MoodRecord{}
		if err := rows.Scan(&record.ID, &record.UserID, &ts, &record.Level, &record.Note, &record.CreatedTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan mood_record")
		}
		record.Timestamp = time.Unix(ts, 0)
		list = append(list, record)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate mood_records")
	}
	return list, nil
}

func (d *DB) ListActiveUserIDs(ctx context.Context, cutoff time.Time) ([]int32, error) {
	query := `SELECT user_id FROM mood_record WHERE ts > ` + placeholder(1) + `
		UNION SELECT user_id FROM habit_event WHERE ts > ` + placeholder(2) + `
		ORDER BY user_id`

	rows, err := d.db.QueryContext(ctx, query, cutoff.Unix(), cutoff.Unix())
	if err != nil {
		return nil, errors.Wrap(err, "failed to list active user IDs")
	}
	defer rows.Close()

	var userIDs []int32
	for rows.Next() {
		var userID int32
		if err := rows.Scan(&userID); err != nil {
			return nil, errors.Wrap(err, "failed to scan user ID")
		}
		userIDs = append(userIDs, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate user IDs")
	}
	return userIDs, nil
}
