package extract

import (
	"errors"
	"fmt"

	"github.com/datamimic/metaextractor"
)

// Connection errors
var (
	ErrConnectionFailed      = errors.New("failed to connect to database")
	ErrInvalidDatabaseURL    = errors.New("invalid database URL")
	ErrEmptyDatabaseURL      = errors.New("database URL cannot be empty")
	ErrInvalidConnectionInfo = errors.New("invalid connection info")
)

// Extraction stages, in the order every adapter runs them.
const (
	StageTables      = "tables"
	StageColumns     = "columns"
	StagePrimaryKeys = "primary_keys"
	StageForeignKeys = "foreign_keys"
)

// CatalogError reports a failed catalog query together with the engine
// and the stage that failed. Extraction aborts on the first one.
type CatalogError struct {
	Engine metaextractor.Engine
	Stage  string
	Table  string // empty while enumerating tables
	Err    error
}

func (e *CatalogError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("%s: %s query failed for table %s: %v", e.Engine, e.Stage, e.Table, e.Err)
	}

	return fmt.Sprintf("%s: %s query failed: %v", e.Engine, e.Stage, e.Err)
}

func (e *CatalogError) Unwrap() error {
	return e.Err
}

func catalogError(engine metaextractor.Engine, stage, table string, err error) error {
	return &CatalogError{Engine: engine, Stage: stage, Table: table, Err: err}
}
