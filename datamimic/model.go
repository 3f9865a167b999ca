// Package datamimic projects extracted schema snapshots into the model
// consumed by the DataMimic synthetic-data generator.
package datamimic

import (
	"strings"

	"github.com/datamimic/metaextractor"
)

// Model is the document handed to the data generator.
type Model struct {
	Version            string  `json:"version" yaml:"version"`
	SourceDatabaseType string  `json:"source_database_type" yaml:"source_database_type"`
	Tables             []Table `json:"tables" yaml:"tables"`
}

// Table is one table in generator form, with the qualified key split
// into schema and name.
type Table struct {
	Schema  string   `json:"schema" yaml:"schema"`
	Name    string   `json:"name" yaml:"name"`
	Columns []Column `json:"columns" yaml:"columns"`
}

// Column pairs a column with its generator token.
type Column struct {
	Name          string `json:"name" yaml:"name"`
	GeneratorType string `json:"generator_type" yaml:"generator_type"`
	Nullable      bool   `json:"nullable" yaml:"nullable"`
	IsPrimaryKey  bool   `json:"is_primary_key" yaml:"is_primary_key"`
}

// Project rewrites a snapshot into the DataMimic view. Qualified table
// keys split at the first "."; unqualified keys (SQLite) get the literal
// schema "main". The engine tag is echoed verbatim into
// source_database_type and drives the type mapping, so tags outside the
// supported set produce all-string models.
func Project(db *metaextractor.Database, engineTag string) *Model {
	model := &Model{
		Version:            metaextractor.Version,
		SourceDatabaseType: engineTag,
		Tables:             make([]Table, 0, db.Tables.Len()),
	}

	for key, table := range db.Tables.All() {
		schema, name, found := strings.Cut(key, ".")
		if !found {
			schema, name = "main", key
		}

		columns := make([]Column, 0, len(table.Columns))
		for _, col := range table.Columns {
			columns = append(columns, Column{
				Name:          col.Name,
				GeneratorType: MapType(col.DataType, engineTag),
				Nullable:      col.Nullable,
				IsPrimaryKey:  col.PrimaryKey,
			})
		}

		model.Tables = append(model.Tables, Table{
			Schema:  schema,
			Name:    name,
			Columns: columns,
		})
	}

	return model
}
