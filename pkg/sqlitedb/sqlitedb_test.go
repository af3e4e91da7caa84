package sqlitedb

import (
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMigrations() fstest.MapFS {
	return fstest.MapFS{
		"001_items.sql": {Data: []byte(`-- +migrate Up
CREATE TABLE items (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL);
-- +migrate Down
DROP TABLE items;
`)},
		"002_index.sql": {Data: []byte(`CREATE INDEX idx_items_name ON items(name);`)},
		"README.md":     {Data: []byte("not a migration")},
	}
}

func TestOpenAppliesMigrationsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := Open(path, testMigrations())
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO items (name) VALUES ('a')`)
	require.NoError(t, err)

	applied, err := ApplyMigrations(db, testMigrations())
	require.NoError(t, err)
	assert.Equal(t, 0, applied, "second run must not reapply anything")
	require.NoError(t, db.Close())

	db, err = Open(path, testMigrations())
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM items`).Scan(&count))
	assert.Equal(t, 1, count)

	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&count))
	assert.Equal(t, 2, count)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ", testMigrations())
	assert.Error(t, err)
}

func TestExtractUp(t *testing.T) {
	assert.Equal(t, "\nSELECT 1;\n", ExtractUp("-- +migrate Up\nSELECT 1;\n-- +migrate Down\nSELECT 2;"))
	assert.Equal(t, "SELECT 3;", ExtractUp("SELECT 3;"))
}

func TestMillisHelpers(t *testing.T) {
	assert.Nil(t, NullableMillis(nil))

	ts := time.UnixMilli(1700000000123)
	assert.Equal(t, int64(1700000000123), NullableMillis(&ts))

	assert.Nil(t, TimeFromMillis(sql.NullInt64{}))
	got := TimeFromMillis(sql.NullInt64{Int64: 1700000000123, Valid: true})
	require.NotNil(t, got)
	assert.True(t, got.Equal(ts))
}
