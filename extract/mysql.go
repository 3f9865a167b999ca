package extract

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/datamimic/metaextractor"
)

// MySQLExtractor reads schema structure from the information_schema views
// of a MySQL server.
type MySQLExtractor struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewMySQLExtractor creates a new MySQL extractor over an open handle.
func NewMySQLExtractor(db *sql.DB, logger zerolog.Logger) *MySQLExtractor {
	return &MySQLExtractor{db: db, logger: logger}
}

const (
	mysqlTablesQuery = `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = ?
	`

	mysqlColumnsQuery = `
		SELECT column_name, data_type, is_nullable, character_maximum_length
		FROM information_schema.columns
		WHERE table_schema = ? AND table_name = ?
		ORDER BY ordinal_position
	`

	mysqlPrimaryKeysQuery = `
		SELECT column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = ? AND table_name = ? AND constraint_name = 'PRIMARY'
		ORDER BY ordinal_position
	`

	mysqlForeignKeysQuery = `
		SELECT column_name, referenced_table_schema, referenced_table_name, referenced_column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = ? AND table_name = ? AND referenced_table_name IS NOT NULL
	`
)

// ExtractFullMetadata extracts every table in the given database. An empty
// filter falls back to information_schema, which is rarely what callers
// want; front ends should pass the target database explicitly. Table keys
// are qualified as "{database}.{table}".
func (e *MySQLExtractor) ExtractFullMetadata(ctx context.Context, filter string) (*metaextractor.Database, error) {
	database := filter
	if database == "" {
		database = "information_schema"
	}

	names, err := e.tableNames(ctx, database)
	if err != nil {
		return nil, err
	}

	e.logger.Debug().Str("database", database).Int("tables", len(names)).Msg("discovered tables")

	snapshot := metaextractor.NewDatabase()

	for _, name := range names {
		table, err := e.extractTable(ctx, database, name)
		if err != nil {
			return nil, err
		}

		snapshot.Tables.Set(database+"."+name, table)
	}

	return snapshot, nil
}

func (e *MySQLExtractor) tableNames(ctx context.Context, database string) ([]string, error) {
	rows, err := e.db.QueryContext(ctx, mysqlTablesQuery, database)
	if err != nil {
		return nil, catalogError(metaextractor.EngineMySQL, StageTables, "", err)
	}
	defer rows.Close()

	var names []string

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, catalogError(metaextractor.EngineMySQL, StageTables, "", err)
		}

		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, catalogError(metaextractor.EngineMySQL, StageTables, "", err)
	}

	return names, nil
}

func (e *MySQLExtractor) extractTable(ctx context.Context, database, name string) (*metaextractor.Table, error) {
	table := metaextractor.NewTable()

	columns, err := e.extractColumns(ctx, database, name)
	if err != nil {
		return nil, err
	}

	table.Columns = columns

	primaryKeys, err := e.extractPrimaryKeys(ctx, database, name)
	if err != nil {
		return nil, err
	}

	table.PrimaryKeys = primaryKeys
	markPrimaryKeys(table)

	if err := e.extractForeignKeys(ctx, database, name, table); err != nil {
		return nil, err
	}

	e.logger.Debug().
		Str("table", database+"."+name).
		Int("columns", len(table.Columns)).
		Int("primary_keys", len(table.PrimaryKeys)).
		Int("foreign_keys", table.ForeignKeys.Len()).
		Msg("extracted table")

	return table, nil
}

func (e *MySQLExtractor) extractColumns(ctx context.Context, database, name string) ([]metaextractor.Column, error) {
	rows, err := e.db.QueryContext(ctx, mysqlColumnsQuery, database, name)
	if err != nil {
		return nil, catalogError(metaextractor.EngineMySQL, StageColumns, name, err)
	}
	defer rows.Close()

	var columns []metaextractor.Column

	for rows.Next() {
		var (
			colName     string
			dataType    string
			isNullable  string
			fieldLength sql.NullInt64
		)

		if err := rows.Scan(&colName, &dataType, &isNullable, &fieldLength); err != nil {
			return nil, catalogError(metaextractor.EngineMySQL, StageColumns, name, err)
		}

		column := metaextractor.Column{
			Name:      colName,
			DataType:  dataType,
			Nullable:  isNullable == "YES",
			IsChecked: boolPtr(true),
		}
		if fieldLength.Valid {
			length := fieldLength.Int64
			column.FieldLength = &length
		}

		columns = append(columns, column)
	}

	if err := rows.Err(); err != nil {
		return nil, catalogError(metaextractor.EngineMySQL, StageColumns, name, err)
	}

	return columns, nil
}

func (e *MySQLExtractor) extractPrimaryKeys(ctx context.Context, database, name string) ([]string, error) {
	rows, err := e.db.QueryContext(ctx, mysqlPrimaryKeysQuery, database, name)
	if err != nil {
		return nil, catalogError(metaextractor.EngineMySQL, StagePrimaryKeys, name, err)
	}
	defer rows.Close()

	var keys []string

	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, catalogError(metaextractor.EngineMySQL, StagePrimaryKeys, name, err)
		}

		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, catalogError(metaextractor.EngineMySQL, StagePrimaryKeys, name, err)
	}

	return keys, nil
}

func (e *MySQLExtractor) extractForeignKeys(ctx context.Context, database, name string, table *metaextractor.Table) error {
	rows, err := e.db.QueryContext(ctx, mysqlForeignKeysQuery, database, name)
	if err != nil {
		return catalogError(metaextractor.EngineMySQL, StageForeignKeys, name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var columnName, refSchema, refTable, refColumn string
		if err := rows.Scan(&columnName, &refSchema, &refTable, &refColumn); err != nil {
			return catalogError(metaextractor.EngineMySQL, StageForeignKeys, name, err)
		}

		table.ForeignKeys.Set(columnName, refSchema+"."+refTable+"."+refColumn)
	}

	if err := rows.Err(); err != nil {
		return catalogError(metaextractor.EngineMySQL, StageForeignKeys, name, err)
	}

	return nil
}
