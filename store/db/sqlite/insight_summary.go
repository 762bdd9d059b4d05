package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/moodsense/store"
)

func (d *DB) UpsertInsightSummary(ctx context.Context, upsert *store.InsightSummary) (*store.InsightSummary, error) {
	stmt := `INSERT INTO insight_summary (uid, user_id, kind, payload, computed_ts)
		VALUES (` + placeholders(5) + `)
		ON CONFLICT (user_id, kind) DO UPDATE SET
			payload = excluded.payload,
			computed_ts = excluded.computed_ts
		RETURNING id, uid`

	result := *upsert
	err := d.db.QueryRowContext(ctx, stmt, upsert.UID, upsert.UserID, upsert.Kind, upsert.Payload, upsert.ComputedAt.Unix()).Scan(&result.ID, &result.UID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to upsert insight_summary")
	}
	result.ComputedAt = time.Unix(upsert.ComputedAt.Unix(), 0)
	return &result, nil
}

func (d *DB) ListInsightSummaries(ctx context.Context, find *store.FindInsightSummary) ([]*store.InsightSummary, error) {
	where, args := []string{"1 = 1"}, []any{}
	if find.UserID != nil {
		where, args = append(where, "user_id = "+placeholder(len(args)+1)), append(args, *find.UserID)
	}
	if find.Kind != nil {
		where, args = append(where, "kind = "+placeholder(len(args)+1)), append(args, *find.Kind)
	}

	query := "SELECT id, uid, user_id, kind, payload, computed_ts FROM insight_summary WHERE " + strings.Join(where, " AND ") + " ORDER BY user_id ASC, kind ASC"
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list insight_summaries")
	}
	defer rows.Close()

	list := make([]*store.InsightSummary, 0)
	for rows.Next() {
		var computedTs int64
		summary := &store.InsightSummary{}
		if err := rows.Scan(&summary.ID, &summary.UID, &summary.UserID, &summary.Kind, &summary.Payload, &computedTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan insight_summary")
		}
		summary.ComputedAt = time.Unix(computedTs, 0)
		list = append(list, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate insight_summaries")
	}
	return list, nil
}
