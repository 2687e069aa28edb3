package migrations

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/mwantia/mediacat/pkg/db/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(schema.DSN(filepath.Join(t.TempDir(), "migrations.db"))), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestMigrateAppliesPendingOnce(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	m := NewMigrator(db)

	count, err := m.Migrate(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(allMigrations()), count)

	count, err = m.Migrate(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	for _, table := range []string{schema.MediaTable, schema.ClassTable, schema.JunctionTable} {
		assert.True(t, db.Migrator().HasTable(table), "table %s", table)
	}
}

func TestStatus(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	m := NewMigrator(db)

	statuses, err := m.Status(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.False(t, statuses[0].Applied)

	_, err = m.Migrate(ctx)
	require.NoError(t, err)

	statuses, err = m.Status(ctx)
	require.NoError(t, err)
	assert.True(t, statuses[0].Applied)
	assert.False(t, statuses[0].AppliedAt.IsZero())
}

func TestRollback(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	m := NewMigrator(db)

	_, err := m.Rollback(ctx)
	assert.ErrorIs(t, err, ErrNothingToRollback)

	_, err = m.Migrate(ctx)
	require.NoError(t, err)

	// Linked rows must not block the rollback while foreign keys are enforced.
	require.NoError(t, db.Exec("INSERT INTO MEDIA(hash, path) VALUES(?, ?)", "aa11", "/img/1.png").Error)
	require.NoError(t, db.Exec("INSERT INTO CLASS(class) VALUES(?)", "cat").Error)
	require.NoError(t, db.Exec("INSERT INTO JUNCTION(imageID, classID) VALUES(1, 1)").Error)

	status, err := m.Rollback(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, status.Version)
	for _, table := range []string{schema.MediaTable, schema.ClassTable, schema.JunctionTable} {
		assert.False(t, db.Migrator().HasTable(table), "table %s", table)
	}

	// Reapplying after a rollback recreates the relations.
	count, err := m.Migrate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.True(t, db.Migrator().HasTable(schema.MediaTable))
}
