package wizard

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/datamimic/metaextractor"
	"github.com/datamimic/metaextractor/datamimic"
	"github.com/datamimic/metaextractor/export"
	"github.com/datamimic/metaextractor/extract"
)

// The wizard always writes JSON next to the working directory.
// TODO: add a step to customize the output paths.
const (
	metadataOutputPath = "output.json"
	modelOutputPath    = "output_datamimic.json"
)

// settings holds everything the wizard collected from the user.
type settings struct {
	Engine   string
	Host     string
	Port     string
	Database string
	Username string
	Password string
	Schema   string
}

// connectionString assembles the URL shown on the confirm screen and
// handed to the extractor. Credentials pass through verbatim.
func (s settings) connectionString() string {
	engine, err := metaextractor.ParseEngine(s.Engine)
	if err != nil {
		return ""
	}

	return extract.BuildConnectionString(extract.ConnectionInfo{
		Engine:   engine,
		Host:     s.Host,
		Port:     s.Port,
		Database: s.Database,
		Username: s.Username,
		Password: s.Password,
	})
}

// runExport pulls the metadata and writes both output documents.
func runExport(ctx context.Context, s settings, logger zerolog.Logger) error {
	envelope, err := extract.Extract(ctx, extract.Options{
		Engine:           s.Engine,
		ConnectionString: s.connectionString(),
		Filter:           s.Schema,
		Logger:           logger,
	})
	if err != nil {
		return fmt.Errorf("metadata extraction failed: %w", err)
	}

	if err := export.Write(envelope, metadataOutputPath, export.FormatJSON); err != nil {
		return fmt.Errorf("metadata export failed: %w", err)
	}

	model := datamimic.Project(envelope.Metadata, s.Engine)
	if err := export.Write(model, modelOutputPath, export.FormatJSON); err != nil {
		return fmt.Errorf("generator model export failed: %w", err)
	}

	return nil
}
