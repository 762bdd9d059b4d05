package store

import "context"

const schemaVersionSettingName = "schema_version"

// GetSchemaVersion returns the schema version recorded in system_setting, or "" if unset.
func (s *Store) GetSchemaVersion(ctx context.Context) (string, error) {
	return s.driver.GetSystemSetting(ctx, schemaVersionSettingName)
}

func (s *Store) updateCurrentSchemaVersion(ctx context.Context, schemaVersion string) error {
	return s.driver.UpsertSystemSetting(ctx, schemaVersionSettingName, schemaVersion)
}
