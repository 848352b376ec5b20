// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"userauth/internal/db"
)

// NewSQLiteDB returns a migrated in-memory database closed at test cleanup.
func NewSQLiteDB(tb testing.TB) *gorm.DB {
	tb.Helper()

	gdb, err := db.NewSQLite(":memory:")
	require.NoError(tb, err)
	require.NoError(tb, db.Migrate(gdb, false))

	tb.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}
