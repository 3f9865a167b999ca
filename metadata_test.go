package metaextractor

import (
	"encoding/json"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestColumnWireFormat(t *testing.T) {
	t.Run("FieldAliases", func(t *testing.T) {
		col := Column{
			Name:     "email",
			DataType: "character varying",
			Nullable: false,
		}

		data, err := json.Marshal(col)
		assert.NoError(t, err)

		var fields map[string]json.RawMessage
		assert.NoError(t, json.Unmarshal(data, &fields))

		// data_type goes out as "type", is_checked as "isChecked"
		assert.Equal(t, `"character varying"`, string(fields["type"]))

		_, hasIsChecked := fields["isChecked"]
		assert.True(t, hasIsChecked)

		_, hasDataType := fields["data_type"]
		assert.False(t, hasDataType)
	})

	t.Run("AbsentOptionalsEmitNull", func(t *testing.T) {
		col := Column{Name: "id", DataType: "int4"}

		data, err := json.Marshal(col)
		assert.NoError(t, err)

		var fields map[string]json.RawMessage
		assert.NoError(t, json.Unmarshal(data, &fields))

		for _, name := range []string{"field_length", "unique", "spec", "isChecked"} {
			assert.Equal(t, "null", string(fields[name]), "field %s should serialize as null", name)
		}
	})

	t.Run("PresentOptionals", func(t *testing.T) {
		length := int64(255)
		checked := true
		col := Column{
			Name:        "email",
			DataType:    "varchar",
			FieldLength: &length,
			IsChecked:   &checked,
		}

		data, err := json.Marshal(col)
		assert.NoError(t, err)

		var decoded Column
		assert.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, int64(255), *decoded.FieldLength)
		assert.True(t, *decoded.IsChecked)
	})
}

func TestEnvelopeWireFormat(t *testing.T) {
	env := Envelope{Metadata: NewDatabase()}

	data, err := json.Marshal(env)
	assert.NoError(t, err)

	var fields map[string]json.RawMessage
	assert.NoError(t, json.Unmarshal(data, &fields))

	expected := []string{
		"id", "system_environment_id",
		"tc_creation_src", "tc_creation",
		"tc_update_src", "tc_update",
		"db_metadata", "user_config_db_metadata",
	}
	for _, name := range expected {
		_, ok := fields[name]
		assert.True(t, ok, "missing envelope field %s", name)
	}

	assert.Equal(t, 8, len(fields))
	assert.Equal(t, "null", string(fields["id"]))
	assert.Equal(t, "0", string(fields["system_environment_id"]))
	assert.Equal(t, "null", string(fields["user_config_db_metadata"]))
}

func TestDatabaseValidate(t *testing.T) {
	buildTable := func() *Table {
		table := NewTable()
		table.Columns = []Column{
			{Name: "id", DataType: "INTEGER", PrimaryKey: true},
			{Name: "parent_id", DataType: "INTEGER", Nullable: true},
		}
		table.PrimaryKeys = []string{"id"}
		table.ForeignKeys.Set("parent_id", "parents.id")

		return table
	}

	t.Run("ValidSnapshot", func(t *testing.T) {
		db := NewDatabase()
		db.Tables.Set("children", buildTable())

		assert.NoError(t, db.Validate())
	})

	t.Run("PrimaryKeyFlagWithoutListEntry", func(t *testing.T) {
		db := NewDatabase()
		table := buildTable()
		table.PrimaryKeys = []string{}
		db.Tables.Set("children", table)

		assert.IsError(t, db.Validate(), ErrPrimaryKeyMismatch)
	})

	t.Run("ListEntryWithoutFlag", func(t *testing.T) {
		db := NewDatabase()
		table := buildTable()
		table.Columns[0].PrimaryKey = false
		db.Tables.Set("children", table)

		assert.IsError(t, db.Validate(), ErrPrimaryKeyMismatch)
	})

	t.Run("ListEntryNamesMissingColumn", func(t *testing.T) {
		db := NewDatabase()
		table := buildTable()
		table.PrimaryKeys = append(table.PrimaryKeys, "ghost")
		db.Tables.Set("children", table)

		assert.IsError(t, db.Validate(), ErrPrimaryKeyMismatch)
	})

	t.Run("ForeignKeyOnUnknownColumn", func(t *testing.T) {
		db := NewDatabase()
		table := buildTable()
		table.ForeignKeys.Set("ghost", "parents.id")
		db.Tables.Set("children", table)

		assert.IsError(t, db.Validate(), ErrUnknownForeignKeyColumn)
	})

	t.Run("DuplicateColumnName", func(t *testing.T) {
		db := NewDatabase()
		table := buildTable()
		table.Columns = append(table.Columns, Column{Name: "id", DataType: "TEXT"})
		db.Tables.Set("children", table)

		assert.IsError(t, db.Validate(), ErrDuplicateColumn)
	})
}
