package metaextractor

import (
	"fmt"
	"time"
)

// Column is a single column as reported by the engine catalog.
// DataType keeps the native type string verbatim; normalization into
// generator tokens happens in the datamimic package only.
type Column struct {
	Name        string         `json:"name" yaml:"name"`
	DataType    string         `json:"type" yaml:"type"` // raw native type, e.g. "character varying"
	Nullable    bool           `json:"nullable" yaml:"nullable"`
	PrimaryKey  bool           `json:"primary_key" yaml:"primary_key"`
	FieldLength *int64         `json:"field_length" yaml:"field_length"` // character maximum length (optional)
	Unique      *bool          `json:"unique" yaml:"unique"`             // reserved (optional)
	Spec        *AttributeSpec `json:"spec" yaml:"spec"`                 // downstream annotation slot (optional)
	IsChecked   *bool          `json:"isChecked" yaml:"isChecked"`       // UI-facing flag, passed through
}

// AttributeSpec carries downstream annotation hints. The extractor never
// reads or enforces it.
type AttributeSpec struct {
	Placeholder *string `json:"placeholder" yaml:"placeholder"`
}

// Table holds columns in catalog reporting order plus the derived
// primary-key and foreign-key views.
type Table struct {
	Columns     []Column            `json:"columns" yaml:"columns"`
	PrimaryKeys []string            `json:"primary_keys" yaml:"primary_keys"`
	ForeignKeys *OrderedMap[string] `json:"foreign_keys" yaml:"foreign_keys"` // local column -> qualified reference
}

// NewTable returns an empty table with initialized collections.
func NewTable() *Table {
	return &Table{
		Columns:     []Column{},
		PrimaryKeys: []string{},
		ForeignKeys: NewOrderedMap[string](),
	}
}

// Database is the normalized snapshot of one engine's schema. Table keys
// are qualified per engine: "{schema}.{table}" for PostgreSQL,
// "{db}.{table}" for MySQL, the bare table name for SQLite.
type Database struct {
	Tables *OrderedMap[*Table] `json:"tables" yaml:"tables"`
}

// NewDatabase returns an empty database snapshot.
func NewDatabase() *Database {
	return &Database{Tables: NewOrderedMap[*Table]()}
}

// Envelope wraps a Database snapshot with provenance and timestamps.
// Optional fields stay nil when absent and serialize as null.
type Envelope struct {
	ID                  *int64     `json:"id" yaml:"id"`
	SystemEnvironmentID int64      `json:"system_environment_id" yaml:"system_environment_id"`
	CreationSource      *string    `json:"tc_creation_src" yaml:"tc_creation_src"`
	CreatedAt           *time.Time `json:"tc_creation" yaml:"tc_creation"`
	UpdateSource        *string    `json:"tc_update_src" yaml:"tc_update_src"`
	UpdatedAt           *time.Time `json:"tc_update" yaml:"tc_update"`
	Metadata            *Database  `json:"db_metadata" yaml:"db_metadata"`
	UserConfigMetadata  *Database  `json:"user_config_db_metadata" yaml:"user_config_db_metadata"`
}

// Validate checks the structural invariants of a snapshot: primary-key
// flags agree with the primary_keys list, foreign-key columns exist, and
// column names are unique per table. Adapters produce valid snapshots by
// construction; this is for callers that assemble or mutate snapshots
// themselves.
func (d *Database) Validate() error {
	for key, table := range d.Tables.All() {
		flagged := make(map[string]bool, len(table.PrimaryKeys))
		for _, name := range table.PrimaryKeys {
			flagged[name] = true
		}

		seen := make(map[string]bool, len(table.Columns))

		for _, col := range table.Columns {
			if seen[col.Name] {
				return fmt.Errorf("%w: %s.%s", ErrDuplicateColumn, key, col.Name)
			}

			seen[col.Name] = true

			if col.PrimaryKey != flagged[col.Name] {
				return fmt.Errorf("%w: %s.%s", ErrPrimaryKeyMismatch, key, col.Name)
			}
		}

		for _, name := range table.PrimaryKeys {
			if !seen[name] {
				return fmt.Errorf("%w: %s.%s", ErrPrimaryKeyMismatch, key, name)
			}
		}

		for col := range table.ForeignKeys.All() {
			if !seen[col] {
				return fmt.Errorf("%w: %s.%s", ErrUnknownForeignKeyColumn, key, col)
			}
		}
	}

	return nil
}
