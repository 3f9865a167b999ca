package extract

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/datamimic/metaextractor"
)

// SQLiteExtractor reads schema structure from sqlite_master and the
// table_info / foreign_key_list pragmas.
type SQLiteExtractor struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewSQLiteExtractor creates a new SQLite extractor over an open handle.
func NewSQLiteExtractor(db *sql.DB, logger zerolog.Logger) *SQLiteExtractor {
	return &SQLiteExtractor{db: db, logger: logger}
}

const sqliteTablesQuery = `SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'`

// ExtractFullMetadata extracts every user table in the database file. The
// filter is ignored since SQLite has a single unnamed scope; table keys
// are the bare table names.
func (e *SQLiteExtractor) ExtractFullMetadata(ctx context.Context, _ string) (*metaextractor.Database, error) {
	names, err := e.tableNames(ctx)
	if err != nil {
		return nil, err
	}

	e.logger.Debug().Int("tables", len(names)).Msg("discovered tables")

	snapshot := metaextractor.NewDatabase()

	for _, name := range names {
		table, err := e.extractTable(ctx, name)
		if err != nil {
			return nil, err
		}

		snapshot.Tables.Set(name, table)
	}

	return snapshot, nil
}

func (e *SQLiteExtractor) tableNames(ctx context.Context) ([]string, error) {
	rows, err := e.db.QueryContext(ctx, sqliteTablesQuery)
	if err != nil {
		return nil, catalogError(metaextractor.EngineSQLite, StageTables, "", err)
	}
	defer rows.Close()

	var names []string

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, catalogError(metaextractor.EngineSQLite, StageTables, "", err)
		}

		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, catalogError(metaextractor.EngineSQLite, StageTables, "", err)
	}

	return names, nil
}

// extractTable builds columns and primary keys from a single table_info
// pass. The pk column of the pragma is the 1-based position of the column
// within the primary key, or 0 when it is not part of it.
func (e *SQLiteExtractor) extractTable(ctx context.Context, name string) (*metaextractor.Table, error) {
	table := metaextractor.NewTable()

	rows, err := e.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info('%s')", name))
	if err != nil {
		return nil, catalogError(metaextractor.EngineSQLite, StageColumns, name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid          int
			colName      string
			dataType     string
			notNull      int
			defaultValue sql.NullString
			pk           int
		)

		if err := rows.Scan(&cid, &colName, &dataType, &notNull, &defaultValue, &pk); err != nil {
			return nil, catalogError(metaextractor.EngineSQLite, StageColumns, name, err)
		}

		table.Columns = append(table.Columns, metaextractor.Column{
			Name:       colName,
			DataType:   dataType,
			Nullable:   notNull == 0,
			PrimaryKey: pk > 0,
			IsChecked:  boolPtr(true),
		})

		if pk > 0 {
			table.PrimaryKeys = append(table.PrimaryKeys, colName)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, catalogError(metaextractor.EngineSQLite, StageColumns, name, err)
	}

	if err := e.extractForeignKeys(ctx, name, table); err != nil {
		return nil, err
	}

	e.logger.Debug().
		Str("table", name).
		Int("columns", len(table.Columns)).
		Int("primary_keys", len(table.PrimaryKeys)).
		Int("foreign_keys", table.ForeignKeys.Len()).
		Msg("extracted table")

	return table, nil
}

func (e *SQLiteExtractor) extractForeignKeys(ctx context.Context, name string, table *metaextractor.Table) error {
	rows, err := e.db.QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list('%s')", name))
	if err != nil {
		return catalogError(metaextractor.EngineSQLite, StageForeignKeys, name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, seq                   int
			refTable, from, to        string
			onUpdate, onDelete, match string
		)

		if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return catalogError(metaextractor.EngineSQLite, StageForeignKeys, name, err)
		}

		table.ForeignKeys.Set(from, refTable+"."+to)
	}

	if err := rows.Err(); err != nil {
		return catalogError(metaextractor.EngineSQLite, StageForeignKeys, name, err)
	}

	return nil
}
