package postgres

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

func (d *DB) GetSystemSetting(ctx context.Context, name string) (string, error) {
	var value string
	err := d.db.QueryRowContext(ctx, "SELECT value FROM system_setting WHERE name = "+placeholder(1), name).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", errors.Wrapf(err, "failed to get system_setting %s", name)
	}
	return value, nil
}

func (d *DB) UpsertSystemSetting(ctx context.Context, name, value string) error {
	stmt := `INSERT INTO system_setting (name, value) VALUES (` + placeholders(2) + `)
		ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value`
	if _, err := d.db.ExecContext(ctx, stmt, name, value); err != nil {
		return errors.Wrapf(err, "failed to upsert system_setting %s", name)
	}
	return nil
}
