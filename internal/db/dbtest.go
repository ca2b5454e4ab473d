package db

import (
	"path/filepath"
	"testing"

	"gorm.io/gorm"
)

// OpenTest returns a migrated sqlite database private to t.
func OpenTest(t testing.TB) *gorm.DB {
	t.Helper()
	gdb, err := Connect("sqlite", filepath.Join(t.TempDir(), "test.db")+"?_pragma=foreign_keys(1)")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := Migrate(gdb); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}
