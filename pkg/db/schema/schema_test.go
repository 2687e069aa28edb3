package schema

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "schema.db")
	db, err := gorm.Open(sqlite.Open(DSN(path)), &gorm.Config{
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

func TestCreateTableIsIdempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, CreateTable(db, "SAMPLE", "id INTEGER PRIMARY KEY", "name TEXT"))
	require.NoError(t, db.Exec("INSERT INTO SAMPLE(name) VALUES(?)", "first").Error)

	// Second call must not drop or recreate the relation.
	require.NoError(t, CreateTable(db, "SAMPLE", "id INTEGER PRIMARY KEY", "name TEXT"))

	var count int64
	require.NoError(t, db.Raw("SELECT COUNT(*) FROM SAMPLE").Scan(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreateTableRejectsInvalidNames(t *testing.T) {
	db := openTestDB(t)

	for _, name := range []string{"", "1abc", "MEDIA; DROP TABLE CLASS", "a b"} {
		err := CreateTable(db, name, "id INTEGER")
		assert.ErrorIs(t, err, ErrInvalidIdentifier, "name %q", name)
	}
}

func TestCreateTableRequiresColumns(t *testing.T) {
	db := openTestDB(t)
	assert.Error(t, CreateTable(db, "EMPTY"))
}

func TestBootstrap(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, Bootstrap(db))
	require.NoError(t, Bootstrap(db))

	for _, table := range []string{MediaTable, ClassTable, JunctionTable} {
		assert.True(t, db.Migrator().HasTable(table), "table %s", table)
	}
}

func TestDSN(t *testing.T) {
	assert.Equal(t, "a.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", DSN("a.db"))
	assert.Equal(t, "a.db?mode=rw&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", DSN("a.db?mode=rw"))
}

func TestTeardownWithLinkedRows(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Bootstrap(db))

	var enabled int
	require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&enabled).Error)
	require.Equal(t, 1, enabled)

	require.NoError(t, db.Exec("INSERT INTO MEDIA(hash, path) VALUES(?, ?)", "aa11", "/img/1.png").Error)
	require.NoError(t, db.Exec("INSERT INTO CLASS(class) VALUES(?)", "cat").Error)
	require.NoError(t, db.Exec("INSERT INTO JUNCTION(imageID, classID) VALUES(1, 1)").Error)

	require.NoError(t, Teardown(db))
	require.NoError(t, Teardown(db))

	for _, table := range []string{MediaTable, ClassTable, JunctionTable} {
		assert.False(t, db.Migrator().HasTable(table), "table %s", table)
	}
}
