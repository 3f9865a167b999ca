package extract

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/rs/zerolog"

	"github.com/datamimic/metaextractor"
)

// Extractor is the engine-agnostic interface for full schema extraction.
type Extractor interface {
	// ExtractFullMetadata walks the engine catalog and returns every user
	// table with columns, primary keys and foreign keys populated. The
	// filter selects the schema (PostgreSQL) or database (MySQL) to read;
	// SQLite ignores it. An empty filter falls back to the engine default.
	ExtractFullMetadata(ctx context.Context, filter string) (*metaextractor.Database, error)
}

// NewExtractor creates a new extractor for the specified database engine.
// The handle stays owned by the caller and is not closed by the extractor.
func NewExtractor(engine metaextractor.Engine, db *sql.DB, logger zerolog.Logger) (Extractor, error) {
	switch engine {
	case metaextractor.EnginePostgres:
		return NewPostgresExtractor(db, logger), nil
	case metaextractor.EngineMySQL:
		return NewMySQLExtractor(db, logger), nil
	case metaextractor.EngineSQLite:
		return NewSQLiteExtractor(db, logger), nil
	default:
		return nil, fmt.Errorf("%w: %s", metaextractor.ErrUnsupportedEngine, engine)
	}
}

// markPrimaryKeys flips the per-column primary key flag for every column
// named in the table's key list.
func markPrimaryKeys(table *metaextractor.Table) {
	for i := range table.Columns {
		if slices.Contains(table.PrimaryKeys, table.Columns[i].Name) {
			table.Columns[i].PrimaryKey = true
		}
	}
}

func boolPtr(v bool) *bool {
	return &v
}
