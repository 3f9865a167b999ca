package extract

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/rs/zerolog"

	"github.com/datamimic/metaextractor"
)

func openSQLiteDB(t *testing.T, queries []string) *sql.DB {
	t.Helper()
	return openSQLiteDBAt(t, filepath.Join(t.TempDir(), "test.db"), queries)
}

func openSQLiteDBAt(t *testing.T, dbPath string, queries []string) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", dbPath)
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	for _, query := range queries {
		_, err := db.Exec(query)
		assert.NoError(t, err, "failed to execute %q", query)
	}

	return db
}

func TestSQLiteExtractFullMetadata(t *testing.T) {
	db := openSQLiteDB(t, []string{
		`CREATE TABLE users (
			id INTEGER NOT NULL PRIMARY KEY,
			email TEXT NOT NULL,
			bio TEXT
		)`,
		`CREATE TABLE posts (
			id INTEGER NOT NULL PRIMARY KEY,
			user_id INTEGER REFERENCES users(id),
			title TEXT NOT NULL
		)`,
	})

	extractor := NewSQLiteExtractor(db, zerolog.Nop())

	snapshot, err := extractor.ExtractFullMetadata(t.Context(), "")
	assert.NoError(t, err)
	assert.NoError(t, snapshot.Validate())

	// bare table names in creation order
	assert.Equal(t, []string{"users", "posts"}, snapshot.Tables.Keys())

	users, ok := snapshot.Tables.Get("users")
	assert.True(t, ok)
	assert.Equal(t, 3, len(users.Columns))

	id := users.Columns[0]
	assert.Equal(t, "id", id.Name)
	assert.Equal(t, "INTEGER", id.DataType)
	assert.False(t, id.Nullable)
	assert.True(t, id.PrimaryKey)
	assert.NotZero(t, id.IsChecked)
	assert.True(t, *id.IsChecked)

	email := users.Columns[1]
	assert.Equal(t, "email", email.Name)
	assert.Equal(t, "TEXT", email.DataType)
	assert.False(t, email.Nullable)
	assert.False(t, email.PrimaryKey)

	bio := users.Columns[2]
	assert.Equal(t, "bio", bio.Name)
	assert.True(t, bio.Nullable)

	assert.Equal(t, []string{"id"}, users.PrimaryKeys)
	assert.Equal(t, 0, users.ForeignKeys.Len())

	posts, ok := snapshot.Tables.Get("posts")
	assert.True(t, ok)

	ref, ok := posts.ForeignKeys.Get("user_id")
	assert.True(t, ok)
	assert.Equal(t, "users.id", ref)
}

func TestSQLiteCompositePrimaryKey(t *testing.T) {
	db := openSQLiteDB(t, []string{
		`CREATE TABLE products (
			id INTEGER NOT NULL PRIMARY KEY,
			sku TEXT NOT NULL
		)`,
		`CREATE TABLE order_items (
			order_id INTEGER NOT NULL,
			product_id INTEGER NOT NULL,
			quantity INTEGER,
			PRIMARY KEY (order_id, product_id),
			FOREIGN KEY (product_id) REFERENCES products(id)
		)`,
	})

	extractor := NewSQLiteExtractor(db, zerolog.Nop())

	snapshot, err := extractor.ExtractFullMetadata(t.Context(), "")
	assert.NoError(t, err)
	assert.NoError(t, snapshot.Validate())

	table, ok := snapshot.Tables.Get("order_items")
	assert.True(t, ok)

	// both key members flagged and listed, in column order
	assert.Equal(t, []string{"order_id", "product_id"}, table.PrimaryKeys)
	assert.True(t, table.Columns[0].PrimaryKey)
	assert.True(t, table.Columns[1].PrimaryKey)
	assert.False(t, table.Columns[2].PrimaryKey)

	// a key member can carry a foreign key at the same time
	ref, ok := table.ForeignKeys.Get("product_id")
	assert.True(t, ok)
	assert.Equal(t, "products.id", ref)
}

func TestSQLiteDottedTableName(t *testing.T) {
	db := openSQLiteDB(t, []string{
		`CREATE TABLE "archive.2024" (
			id INTEGER NOT NULL PRIMARY KEY,
			payload TEXT
		)`,
	})

	extractor := NewSQLiteExtractor(db, zerolog.Nop())

	snapshot, err := extractor.ExtractFullMetadata(t.Context(), "")
	assert.NoError(t, err)

	// the key is the verbatim table name, dot included
	table, ok := snapshot.Tables.Get("archive.2024")
	assert.True(t, ok)
	assert.Equal(t, 2, len(table.Columns))
	assert.Equal(t, []string{"id"}, table.PrimaryKeys)
}

func TestSQLiteSystemTablesSuppressed(t *testing.T) {
	db := openSQLiteDB(t, []string{
		`CREATE TABLE counters (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			value INTEGER
		)`,
	})

	extractor := NewSQLiteExtractor(db, zerolog.Nop())

	snapshot, err := extractor.ExtractFullMetadata(t.Context(), "")
	assert.NoError(t, err)

	// AUTOINCREMENT creates sqlite_sequence, which must stay hidden
	assert.Equal(t, []string{"counters"}, snapshot.Tables.Keys())
}

func TestSQLiteFilterIgnored(t *testing.T) {
	db := openSQLiteDB(t, []string{
		`CREATE TABLE notes (id INTEGER NOT NULL PRIMARY KEY, body TEXT)`,
	})

	extractor := NewSQLiteExtractor(db, zerolog.Nop())

	unfiltered, err := extractor.ExtractFullMetadata(t.Context(), "")
	assert.NoError(t, err)

	filtered, err := extractor.ExtractFullMetadata(t.Context(), "does-not-matter")
	assert.NoError(t, err)

	assert.Equal(t, unfiltered.Tables.Keys(), filtered.Tables.Keys())
}

func TestSQLiteRawTypePreserved(t *testing.T) {
	db := openSQLiteDB(t, []string{
		`CREATE TABLE samples (
			id INTEGER NOT NULL PRIMARY KEY,
			score REAL,
			blob_data BLOB,
			custom VARCHAR(40)
		)`,
	})

	extractor := NewSQLiteExtractor(db, zerolog.Nop())

	snapshot, err := extractor.ExtractFullMetadata(t.Context(), "")
	assert.NoError(t, err)

	table, ok := snapshot.Tables.Get("samples")
	assert.True(t, ok)

	// declared types come back verbatim, casing and length included
	types := make(map[string]string)
	for _, col := range table.Columns {
		types[col.Name] = col.DataType
	}

	assert.Equal(t, "INTEGER", types["id"])
	assert.Equal(t, "REAL", types["score"])
	assert.Equal(t, "BLOB", types["blob_data"])
	assert.Equal(t, "VARCHAR(40)", types["custom"])
}

func TestSQLiteExtractorViaNewExtractor(t *testing.T) {
	db := openSQLiteDB(t, []string{
		`CREATE TABLE things (id INTEGER NOT NULL PRIMARY KEY)`,
	})

	extractor, err := NewExtractor(metaextractor.EngineSQLite, db, zerolog.Nop())
	assert.NoError(t, err)

	snapshot, err := extractor.ExtractFullMetadata(t.Context(), "")
	assert.NoError(t, err)
	assert.Equal(t, 1, snapshot.Tables.Len())
}
