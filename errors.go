package metaextractor

import "errors"

// Common errors shared across the metaextractor packages
var (
	// ErrUnsupportedEngine is returned for engine tags outside
	// sqlite/postgres/postgresql/mysql/mariadb.
	ErrUnsupportedEngine = errors.New("unsupported database engine")

	// ErrExpectedMapping indicates a document node that should have been a
	// mapping/object was something else.
	ErrExpectedMapping = errors.New("expected a mapping node")
	// ErrInvalidMapKey indicates a mapping key that is not a string.
	ErrInvalidMapKey = errors.New("mapping key is not a string")

	// ErrDuplicateColumn indicates two columns in one table share a name.
	ErrDuplicateColumn = errors.New("duplicate column name in table")
	// ErrPrimaryKeyMismatch indicates a primary_key flag that disagrees with
	// the table's primary_keys list.
	ErrPrimaryKeyMismatch = errors.New("primary key flag does not match primary_keys list")
	// ErrUnknownForeignKeyColumn indicates a foreign-key entry keyed by a
	// column the table does not have.
	ErrUnknownForeignKeyColumn = errors.New("foreign key references unknown column")
)
