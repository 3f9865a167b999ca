package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
)

// Context carries the global flags and logger into each command.
type Context struct {
	Verbose bool
	Quiet   bool
	Logger  zerolog.Logger
}

// CLI is the root command tree.
var CLI struct {
	Verbose bool `help:"Enable verbose output" short:"v"`
	Quiet   bool `help:"Suppress non-error output" short:"q"`

	Extract ExtractCmd `cmd:"" help:"Extract schema metadata from a database"`
	Wizard  WizardCmd  `cmd:"" help:"Run the interactive export wizard"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

func main() {
	ctx := kong.Parse(&CLI)

	appCtx := &Context{
		Verbose: CLI.Verbose,
		Quiet:   CLI.Quiet,
		Logger:  newLogger(CLI.Verbose, CLI.Quiet),
	}

	err := ctx.Run(appCtx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger builds the console logger. Warn by default, debug with
// --verbose, errors only with --quiet.
func newLogger(verbose, quiet bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	if quiet {
		level = zerolog.ErrorLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Logger()
}
