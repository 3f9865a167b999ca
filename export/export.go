// Package export writes extracted documents to disk as pretty-printed
// JSON or YAML.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/google/uuid"
)

// ErrUnsupportedFormat is returned for output formats other than json and yaml.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// Format selects the on-disk document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat normalizes a format name. Matching is case-insensitive and
// "yml" is accepted for yaml.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
}

// Ext returns the file extension for the format, without the dot.
func (f Format) Ext() string {
	if f == FormatYAML {
		return "yaml"
	}

	return "json"
}

// Marshal encodes v in the requested format.
func Marshal(v any, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		return json.MarshalIndent(v, "", "  ")
	case FormatYAML:
		return yaml.Marshal(v)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}
}

// Write marshals v and writes it to path. The document goes to a
// temporary file in the destination directory first and is renamed into
// place, so a failed run never leaves a partial document behind.
func Write(v any, path string, f Format) error {
	data, err := Marshal(v, f)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), uuid.NewString()))

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

// DataMimicPath derives the generator-model path from the metadata
// output path: the stem gains a _datamimic suffix and the extension
// follows the output format.
func DataMimicPath(outputPath string, f Format) string {
	stem := outputPath
	if idx := strings.LastIndex(outputPath, "."); idx >= 0 {
		stem = outputPath[:idx]
	}

	return fmt.Sprintf("%s_datamimic.%s", stem, f.Ext())
}

// DefaultOutputPath is the metadata output file used when the caller
// does not supply one.
func DefaultOutputPath(f Format) string {
	return "output." + f.Ext()
}
