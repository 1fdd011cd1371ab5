package db

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allTables = []string{
	"clothes", "outfits", "outfit_clothes", "outfit_wear",
	"tags", "clothing_tags", "saved_filters", "saved_filter_tags",
}

func TestOpenForTesting(t *testing.T) {
	d, err := OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })

	for _, table := range allTables {
		var name string
		err := d.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		assert.NoError(t, err, "table %s", table)
		assert.Equal(t, table, name)
	}
}

func TestOpenForTestingIsolated(t *testing.T) {
	a, err := OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	b, err := OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	_, err = a.Exec("INSERT INTO clothes (name, category, color) VALUES ('Shirt', 'Shirt', 'Blue')")
	require.NoError(t, err)

	var n int
	require.NoError(t, b.QueryRow("SELECT COUNT(*) FROM clothes").Scan(&n))
	assert.Zero(t, n)
}

func TestUpgradeFromClothesOnlySchema(t *testing.T) {
	d, err := openMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	require.NoError(t, migrateTo(d, 1, slog.Default()))

	var n int
	require.NoError(t, d.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='outfits'").Scan(&n))
	require.Zero(t, n, "version 1 must only contain clothes")

	_, err = d.Exec(`INSERT INTO clothes (name, category, color, size, season, imageUri)
		VALUES ('Red Shirt', 'Shirt', 'Red', NULL, 'Summer', 'clothing_1.jpg')`)
	require.NoError(t, err)

	require.NoError(t, migrateUp(d, slog.Default()))

	var name, season, image string
	require.NoError(t, d.QueryRow("SELECT name, season, imageUri FROM clothes").Scan(&name, &season, &image))
	assert.Equal(t, "Red Shirt", name)
	assert.Equal(t, "Summer", season)
	assert.Equal(t, "clothing_1.jpg", image)

	for _, table := range allTables {
		require.NoError(t, d.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&n))
		assert.Equal(t, 1, n, "table %s", table)
	}
}

func TestMigrateUpIdempotent(t *testing.T) {
	d, err := OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	assert.NoError(t, migrateUp(d, slog.Default()))
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wardrobe.db")

	d, err := Open(path, slog.Default())
	require.NoError(t, err)
	_, err = d.Exec("INSERT INTO tags (name) VALUES ('Work')")
	require.NoError(t, err)
	require.NoError(t, d.Close())

	// Reopening keeps data and does not re-run migrations.
	d, err = Open(path, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	var name string
	require.NoError(t, d.QueryRow("SELECT name FROM tags").Scan(&name))
	assert.Equal(t, "Work", name)
}
