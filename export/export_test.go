package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/datamimic/metaextractor"
	"github.com/goccy/go-yaml"
)

func TestParseFormat(t *testing.T) {
	testCases := []struct {
		name     string
		expected Format
		wantErr  bool
	}{
		{"json", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"YAML", FormatYAML, false},
		{"yml", FormatYAML, false},
		{"xml", "", true},
		{"", "", true},
	}

	for _, tc := range testCases {
		format, err := ParseFormat(tc.name)
		if tc.wantErr {
			assert.IsError(t, err, ErrUnsupportedFormat)
		} else {
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, format, "format name %q", tc.name)
		}
	}
}

func TestFormatExt(t *testing.T) {
	assert.Equal(t, "json", FormatJSON.Ext())
	assert.Equal(t, "yaml", FormatYAML.Ext())
}

func TestMarshalJSONIsPretty(t *testing.T) {
	data, err := Marshal(map[string]string{"key": "value"}, FormatJSON)
	assert.NoError(t, err)
	assert.Equal(t, "{\n  \"key\": \"value\"\n}", string(data))
}

func TestMarshalUnknownFormat(t *testing.T) {
	_, err := Marshal(struct{}{}, Format("toml"))
	assert.IsError(t, err, ErrUnsupportedFormat)
}

func TestWrite(t *testing.T) {
	t.Run("JSON", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "schema.json")

		err := Write(map[string]int{"n": 1}, path, FormatJSON)
		assert.NoError(t, err)

		data, err := os.ReadFile(path)
		assert.NoError(t, err)
		assert.Equal(t, "{\n  \"n\": 1\n}", string(data))
	})

	t.Run("YAML", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "schema.yaml")

		err := Write(map[string]int{"n": 1}, path, FormatYAML)
		assert.NoError(t, err)

		data, err := os.ReadFile(path)
		assert.NoError(t, err)
		assert.Equal(t, "n: 1\n", string(data))
	})

	t.Run("NoTemporaryLeftovers", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "schema.json")

		assert.NoError(t, Write([]string{"a"}, path, FormatJSON))

		entries, err := os.ReadDir(dir)
		assert.NoError(t, err)

		for _, entry := range entries {
			assert.False(t, strings.HasSuffix(entry.Name(), ".tmp"),
				"temporary file left behind: %s", entry.Name())
		}
	})

	t.Run("MissingDirectory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "schema.json")

		err := Write(struct{}{}, path, FormatJSON)
		assert.Error(t, err)
	})
}

func TestDataMimicPath(t *testing.T) {
	testCases := []struct {
		outputPath string
		format     Format
		expected   string
	}{
		{"output.json", FormatJSON, "output_datamimic.json"},
		{"schema.yaml", FormatYAML, "schema_datamimic.yaml"},
		{"noext", FormatJSON, "noext_datamimic.json"},
		// the suffix extension follows the format, not the metadata path
		{"schema.txt", FormatYAML, "schema_datamimic.yaml"},
		{"out/schema.json", FormatJSON, "out/schema_datamimic.json"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, DataMimicPath(tc.outputPath, tc.format),
			"output path %q format %q", tc.outputPath, tc.format)
	}
}

func TestDefaultOutputPath(t *testing.T) {
	assert.Equal(t, "output.json", DefaultOutputPath(FormatJSON))
	assert.Equal(t, "output.yaml", DefaultOutputPath(FormatYAML))
}

func buildEnvelope() *metaextractor.Envelope {
	table := metaextractor.NewTable()
	length := int64(255)
	checked := true
	table.Columns = []metaextractor.Column{
		{Name: "id", DataType: "int4", PrimaryKey: true, IsChecked: &checked},
		{Name: "email", DataType: "character varying", FieldLength: &length, IsChecked: &checked},
		{Name: "org_id", DataType: "int4", Nullable: true, IsChecked: &checked},
	}
	table.PrimaryKeys = []string{"id"}
	table.ForeignKeys.Set("org_id", "public.orgs.id")

	db := metaextractor.NewDatabase()
	db.Tables.Set("public.users", table)

	now := time.Date(2025, 6, 1, 12, 30, 15, 0, time.UTC)
	src := "metaextractor"

	return &metaextractor.Envelope{
		CreationSource: &src,
		CreatedAt:      &now,
		UpdateSource:   &src,
		UpdatedAt:      &now,
		Metadata:       db,
	}
}

func TestEnvelopeRoundTripJSON(t *testing.T) {
	envelope := buildEnvelope()
	path := filepath.Join(t.TempDir(), "envelope.json")

	assert.NoError(t, Write(envelope, path, FormatJSON))

	data, err := os.ReadFile(path)
	assert.NoError(t, err)

	var decoded metaextractor.Envelope
	assert.NoError(t, json.Unmarshal(data, &decoded))

	assert.Zero(t, decoded.ID)
	assert.Equal(t, "metaextractor", *decoded.CreationSource)
	assert.Equal(t, "metaextractor", *decoded.UpdateSource)
	assert.True(t, envelope.CreatedAt.Equal(*decoded.CreatedAt))
	assert.Zero(t, decoded.UserConfigMetadata)

	assert.Equal(t, []string{"public.users"}, decoded.Metadata.Tables.Keys())

	table, ok := decoded.Metadata.Tables.Get("public.users")
	assert.True(t, ok)
	assert.Equal(t, []string{"id"}, table.PrimaryKeys)
	assert.Equal(t, 3, len(table.Columns))
	assert.Equal(t, "character varying", table.Columns[1].DataType)
	assert.Equal(t, int64(255), *table.Columns[1].FieldLength)

	ref, ok := table.ForeignKeys.Get("org_id")
	assert.True(t, ok)
	assert.Equal(t, "public.orgs.id", ref)
}

func TestEnvelopeRoundTripYAML(t *testing.T) {
	envelope := buildEnvelope()
	path := filepath.Join(t.TempDir(), "envelope.yaml")

	assert.NoError(t, Write(envelope, path, FormatYAML))

	data, err := os.ReadFile(path)
	assert.NoError(t, err)

	var decoded metaextractor.Envelope
	assert.NoError(t, yaml.Unmarshal(data, &decoded))

	assert.Equal(t, "metaextractor", *decoded.CreationSource)
	assert.Equal(t, envelope.CreatedAt.Unix(), decoded.CreatedAt.Unix())
	assert.Equal(t, []string{"public.users"}, decoded.Metadata.Tables.Keys())

	table, ok := decoded.Metadata.Tables.Get("public.users")
	assert.True(t, ok)
	assert.Equal(t, "id", table.Columns[0].Name)
	assert.True(t, table.Columns[0].PrimaryKey)

	ref, ok := table.ForeignKeys.Get("org_id")
	assert.True(t, ok)
	assert.Equal(t, "public.orgs.id", ref)
}
