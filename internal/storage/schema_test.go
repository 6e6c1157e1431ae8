package storage

// Test Plan for Index Schema:
// - CreateSchema creates every base table, mirror table and index_metadata
// - Bootstrap metadata carries the schema version
// - GetSchemaVersion returns "0" for an empty database
// - Token path and component name are UNIQUE
// - Category CHECK constraints reject values outside the closed sets
// - Deleting a component cascades to all child tables
// - Foreign keys reject a child row without a parent
// - Mirror row counts track base tables through insert, update and delete

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/dsindex/internal/indexer/extraction"
)

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", name).Scan(&n)
	require.NoError(t, err)
	return n > 0
}

func TestCreateSchema(t *testing.T) {
	t.Parallel()
	db := NewTestDB(t)

	tables := []string{
		"tokens", "token_properties",
		"components", "component_props", "component_slots", "component_events",
		"component_examples", "component_css_classes",
		"css_utilities", "utility_classes", "utility_examples",
		"documentation", "icons", "index_metadata",
		"tokens_fts", "docs_fts", "icons_fts",
	}
	for _, table := range tables {
		assert.True(t, tableExists(t, db, table), "table %s should exist", table)
	}

	version, err := GetSchemaVersion(db)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, version)
}

func TestGetSchemaVersion_EmptyDatabase(t *testing.T) {
	t.Parallel()
	db, err := sql.Open(DriverModernc, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)

	version, err := GetSchemaVersion(db)
	require.NoError(t, err)
	assert.Equal(t, "0", version)
}

func TestSchema_UniqueTokenPath(t *testing.T) {
	t.Parallel()
	db := NewTestDB(t)

	insert := `INSERT INTO tokens (category, name, path, value_raw) VALUES ('color', 'a', 'color.a', '#fff')`
	_, err := db.Exec(insert)
	require.NoError(t, err)
	_, err = db.Exec(insert)
	assert.Error(t, err)
}

func TestSchema_CategoryCheck(t *testing.T) {
	t.Parallel()
	db := NewTestDB(t)

	_, err := db.Exec(`INSERT INTO tokens (category, name, path, value_raw) VALUES ('motion', 'a', 'motion.a', '1s')`)
	assert.Error(t, err, "unknown token category")

	_, err = db.Exec(`INSERT INTO components (name, slug, category) VALUES ('X', 'x', 'widgets')`)
	assert.Error(t, err, "unknown component category")

	_, err = db.Exec(`INSERT INTO css_utilities (name, slug, category, description) VALUES ('X', 'x', 'misc', '')`)
	assert.Error(t, err, "unknown utility category")
}

func TestSchema_CascadeDelete(t *testing.T) {
	t.Parallel()
	db := NewTestDB(t)
	seed(t, db)

	_, err := db.Exec(`DELETE FROM components WHERE name = 'Button'`)
	require.NoError(t, err)

	for _, table := range []string{
		"component_props", "component_slots", "component_events",
		"component_examples", "component_css_classes",
	} {
		assert.Zero(t, count(t, db, table), table)
	}

	_, err = db.Exec(`DELETE FROM tokens WHERE path = 'shadow.raised'`)
	require.NoError(t, err)
	assert.Zero(t, count(t, db, "token_properties"))
}

func TestSchema_ForeignKeyRejectsOrphan(t *testing.T) {
	t.Parallel()
	db := NewTestDB(t)

	_, err := db.Exec(`INSERT INTO component_props (component_id, name) VALUES (42, 'size')`)
	assert.Error(t, err)
}

func TestSchema_FTSMirrorTracksBaseTable(t *testing.T) {
	t.Parallel()
	db := NewTestDB(t)
	ctx := context.Background()

	mirrorsMatch := func(step string) {
		for _, m := range ftsMirrors {
			assert.Equal(t, count(t, db, m.base), count(t, db, m.fts), "%s after %s", m.fts, step)
		}
	}

	require.NoError(t, NewWriter(db).InsertDocumentation(ctx, sampleDocs()))
	require.NoError(t, NewWriter(db).InsertTokens(ctx, sampleTokens()))
	require.NoError(t, NewWriter(db).InsertIcons(ctx, sampleIcons()))
	mirrorsMatch("insert")
	assert.Equal(t, 2, count(t, db, "docs_fts"))

	_, err := db.Exec(`UPDATE documentation SET title = 'Buttons', keywords = '["cta"]' WHERE path = '/components/button'`)
	require.NoError(t, err)
	_, err = db.Exec(`UPDATE tokens SET description = 'Green' WHERE path = 'color.primary-01.100'`)
	require.NoError(t, err)
	mirrorsMatch("update")

	var hits int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM docs_fts WHERE docs_fts MATCH 'cta'`).Scan(&hits))
	assert.Equal(t, 1, hits, "updated keywords are searchable")

	_, err = db.Exec(`DELETE FROM documentation WHERE path = '/foundations/colors'`)
	require.NoError(t, err)
	_, err = db.Exec(`DELETE FROM icons`)
	require.NoError(t, err)
	mirrorsMatch("delete")
	assert.Equal(t, 1, count(t, db, "docs_fts"))
}

func TestSchema_DocKeywordsMirrored(t *testing.T) {
	t.Parallel()
	db := NewTestDB(t)
	require.NoError(t, NewWriter(db).InsertDocumentation(context.Background(), []extraction.Documentation{
		{Title: "Grid", Path: "/grid", Content: "layout", Keywords: []string{"flexy", "columns"}},
	}))

	var keywords string
	require.NoError(t, db.QueryRow(`SELECT keywords FROM docs_fts`).Scan(&keywords))
	assert.Equal(t, "flexy columns", keywords)
}
