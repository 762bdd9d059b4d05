package test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hrygo/moodsense/internal/profile"
	"github.com/hrygo/moodsense/store"
	"github.com/hrygo/moodsense/store/db"
)

// NewTestingStore opens a migrated store for the driver named by DRIVER.
// SQLite runs against a file in t.TempDir(); PostgreSQL requires POSTGRES_TEST_DSN
// and is skipped without it.
func NewTestingStore(ctx context.Context, t *testing.T) *store.Store {
	t.Helper()
	p := getTestingProfile(t)
	driver, err := db.NewDBDriver(p)
	if err != nil {
		t.Fatalf("failed to create db driver: %v", err)
	}
	ts := store.New(driver, p)
	if err := ts.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	t.Cleanup(func() {
		_ = ts.Close()
	})
	return ts
}

func getTestingProfile(t *testing.T) *profile.Profile {
	driver := getDriverFromEnv()
	dir := t.TempDir()
	p := &profile.Profile{
		Mode:   "dev",
		Data:   dir,
		Driver: driver,
	}
	switch driver {
	case "postgres":
		dsn := os.Getenv("POSTGRES_TEST_DSN")
		if dsn == "" {
			t.Skip("POSTGRES_TEST_DSN not set")
		}
		p.DSN = dsn
	default:
		p.DSN = filepath.Join(dir, "moodsense_test.db")
	}
	return p
}

func getDriverFromEnv() string {
	driver := os.Getenv("DRIVER")
	if driver == "" {
		driver = "sqlite"
	}
	return driver
}
