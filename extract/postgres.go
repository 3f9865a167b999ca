package extract

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/datamimic/metaextractor"
)

// PostgresExtractor reads schema structure from the information_schema
// and pg_catalog views of a PostgreSQL server.
type PostgresExtractor struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewPostgresExtractor creates a new PostgreSQL extractor over an open handle.
func NewPostgresExtractor(db *sql.DB, logger zerolog.Logger) *PostgresExtractor {
	return &PostgresExtractor{db: db, logger: logger}
}

const (
	postgresTablesQuery = `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1
	`

	postgresColumnsQuery = `
		SELECT column_name, data_type, is_nullable, character_maximum_length
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`

	// indkey holds the key columns of the index; indisprimary narrows the
	// join to the primary key index of the relation
	postgresPrimaryKeysQuery = `
		SELECT a.attname
		FROM pg_index i
		JOIN pg_attribute a ON a.attrelid = i.indrelid AND a.attnum = ANY(i.indkey)
		WHERE i.indrelid = $1::regclass AND i.indisprimary
	`

	postgresForeignKeysQuery = `
		SELECT
			kcu.column_name,
			ccu.table_schema AS foreign_table_schema,
			ccu.table_name AS foreign_table_name,
			ccu.column_name AS foreign_column_name
		FROM information_schema.table_constraints AS tc
		JOIN information_schema.key_column_usage AS kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage AS ccu
			ON ccu.constraint_name = tc.constraint_name
			AND ccu.table_schema = tc.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
			AND tc.table_schema = $1
			AND tc.table_name = $2
	`
)

// ExtractFullMetadata extracts every table visible in the given schema.
// An empty filter falls back to the public schema. Table keys are
// qualified as "{schema}.{table}".
func (e *PostgresExtractor) ExtractFullMetadata(ctx context.Context, filter string) (*metaextractor.Database, error) {
	schema := filter
	if schema == "" {
		schema = "public"
	}

	names, err := e.tableNames(ctx, schema)
	if err != nil {
		return nil, err
	}

	e.logger.Debug().Str("schema", schema).Int("tables", len(names)).Msg("discovered tables")

	snapshot := metaextractor.NewDatabase()

	for _, name := range names {
		table, err := e.extractTable(ctx, schema, name)
		if err != nil {
			return nil, err
		}

		snapshot.Tables.Set(schema+"."+name, table)
	}

	return snapshot, nil
}

func (e *PostgresExtractor) tableNames(ctx context.Context, schema string) ([]string, error) {
	rows, err := e.db.QueryContext(ctx, postgresTablesQuery, schema)
	if err != nil {
		return nil, catalogError(metaextractor.EnginePostgres, StageTables, "", err)
	}
	defer rows.Close()

	var names []string

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, catalogError(metaextractor.EnginePostgres, StageTables, "", err)
		}

		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, catalogError(metaextractor.EnginePostgres, StageTables, "", err)
	}

	return names, nil
}

func (e *PostgresExtractor) extractTable(ctx context.Context, schema, name string) (*metaextractor.Table, error) {
	table := metaextractor.NewTable()

	columns, err := e.extractColumns(ctx, schema, name)
	if err != nil {
		return nil, err
	}

	table.Columns = columns

	primaryKeys, err := e.extractPrimaryKeys(ctx, schema, name)
	if err != nil {
		return nil, err
	}

	table.PrimaryKeys = primaryKeys
	markPrimaryKeys(table)

	if err := e.extractForeignKeys(ctx, schema, name, table); err != nil {
		return nil, err
	}

	e.logger.Debug().
		Str("table", schema+"."+name).
		Int("columns", len(table.Columns)).
		Int("primary_keys", len(table.PrimaryKeys)).
		Int("foreign_keys", table.ForeignKeys.Len()).
		Msg("extracted table")

	return table, nil
}

func (e *PostgresExtractor) extractColumns(ctx context.Context, schema, name string) ([]metaextractor.Column, error) {
	rows, err := e.db.QueryContext(ctx, postgresColumnsQuery, schema, name)
	if err != nil {
		return nil, catalogError(metaextractor.EnginePostgres, StageColumns, name, err)
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
			return nil, catalogError(metaextractor.EnginePostgres, StageColumns, name, err)
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
		return nil, catalogError(metaextractor.EnginePostgres, StageColumns, name, err)
	}

	return columns, nil
}

func (e *PostgresExtractor) extractPrimaryKeys(ctx context.Context, schema, name string) ([]string, error) {
	rows, err := e.db.QueryContext(ctx, postgresPrimaryKeysQuery, schema+"."+name)
	if err != nil {
		return nil, catalogError(metaextractor.EnginePostgres, StagePrimaryKeys, name, err)
	}
	defer rows.Close()

	var keys []string

	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, catalogError(metaextractor.EnginePostgres, StagePrimaryKeys, name, err)
		}

		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, catalogError(metaextractor.EnginePostgres, StagePrimaryKeys, name, err)
	}

	return keys, nil
}

func (e *PostgresExtractor) extractForeignKeys(ctx context.Context, schema, name string, table *metaextractor.Table) error {
	rows, err := e.db.QueryContext(ctx, postgresForeignKeysQuery, schema, name)
	if err != nil {
		return catalogError(metaextractor.EnginePostgres, StageForeignKeys, name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var columnName, refSchema, refTable, refColumn string
		if err := rows.Scan(&columnName, &refSchema, &refTable, &refColumn); err != nil {
			return catalogError(metaextractor.EnginePostgres, StageForeignKeys, name, err)
		}

		table.ForeignKeys.Set(columnName, refSchema+"."+refTable+"."+refColumn)
	}

	if err := rows.Err(); err != nil {
		return catalogError(metaextractor.EnginePostgres, StageForeignKeys, name, err)
	}

	return nil
}
