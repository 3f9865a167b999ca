package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"

	"github.com/datamimic/metaextractor"
	"github.com/datamimic/metaextractor/datamimic"
	"github.com/datamimic/metaextractor/export"
	"github.com/datamimic/metaextractor/extract"
	"github.com/datamimic/metaextractor/wizard"
)

// provenanceName is stamped into tc_creation_src and tc_update_src of
// every envelope written by the extract command.
const provenanceName = "metaextractor"

// ExtractCmd represents the extract command
type ExtractCmd struct {
	DBType           string `help:"Database engine (sqlite, postgres, postgresql, mysql, mariadb)" required:""`
	ConnectionString string `help:"Database connection string (URL form, supports ${VAR} expansion)" required:""`
	SchemaOrDatabase string `help:"Schema (PostgreSQL) or database (MySQL) to extract"`
	OutputFile       string `short:"o" help:"Metadata output path (default output.<ext>)"`
	Format           string `help:"Output format (json or yaml)" default:"json"`
}

func (cmd *ExtractCmd) Run(ctx *Context) error {
	if err := loadEnvFiles(); err != nil {
		return err
	}

	connectionString := expandEnvVars(cmd.ConnectionString)

	engine, err := metaextractor.ParseEngine(cmd.DBType)
	if err != nil {
		return err
	}

	format, err := export.ParseFormat(cmd.Format)
	if err != nil {
		return err
	}

	outputFile := cmd.OutputFile
	if outputFile == "" {
		outputFile = export.DefaultOutputPath(format)
	}

	dataMimicFile := export.DataMimicPath(outputFile, format)

	if !ctx.Quiet {
		fmt.Println("--- Database Metadata Export and DATAMIMIC Generator ---")
		fmt.Printf("Database Type: %s\n", cmd.DBType)
		fmt.Println("Connection: [REDACTED]")

		if cmd.SchemaOrDatabase != "" {
			fmt.Printf("Schema/DB Filter: %s\n", cmd.SchemaOrDatabase)
		}

		fmt.Printf("Metadata Output: %s (%s)\n", outputFile, format)
		fmt.Printf("DATAMIMIC Output: %s\n", dataMimicFile)
		fmt.Println("-------------------------------------------------------")
	}

	if engine == metaextractor.EngineMySQL && cmd.SchemaOrDatabase == "" {
		color.Yellow("Warning: no --schema-or-database given; MySQL falls back to information_schema")
	}

	if !ctx.Quiet {
		fmt.Printf("Initializing %s extractor...\n", engineDisplayName(engine))
	}

	envelope, err := extract.Extract(context.Background(), extract.Options{
		Engine:           cmd.DBType,
		ConnectionString: connectionString,
		Filter:           cmd.SchemaOrDatabase,
		Provenance:       provenanceName,
		Logger:           ctx.Logger,
	})
	if err != nil {
		return fmt.Errorf("metadata extraction failed: %w", err)
	}

	if err := export.Write(envelope, outputFile, format); err != nil {
		return err
	}

	model := datamimic.Project(envelope.Metadata, cmd.DBType)
	if err := export.Write(model, dataMimicFile, format); err != nil {
		return err
	}

	if !ctx.Quiet {
		cmd.displayResults(envelope, outputFile, dataMimicFile)
	}

	return nil
}

// displayResults shows the outcome of the extract command
func (cmd *ExtractCmd) displayResults(envelope *metaextractor.Envelope, outputFile, dataMimicFile string) {
	color.Green("✓ Metadata export completed successfully")

	totalColumns := 0
	for _, table := range envelope.Metadata.Tables.All() {
		totalColumns += len(table.Columns)
	}

	color.Green("  Tables: %d", envelope.Metadata.Tables.Len())
	color.Green("  Columns: %d", totalColumns)
	color.Green("  Metadata: %s", outputFile)
	color.Green("  DATAMIMIC model: %s", dataMimicFile)
}

func engineDisplayName(engine metaextractor.Engine) string {
	switch engine {
	case metaextractor.EnginePostgres:
		return "PostgreSQL"
	case metaextractor.EngineMySQL:
		return "MySQL"
	default:
		return "SQLite"
	}
}

// WizardCmd represents the wizard command
type WizardCmd struct{}

func (cmd *WizardCmd) Run(ctx *Context) error {
	return wizard.Run(ctx.Logger)
}

// VersionCmd represents the version command
type VersionCmd struct{}

func (cmd *VersionCmd) Run() error {
	fmt.Printf("metaextractor v%s\n", metaextractor.Version)
	return nil
}
