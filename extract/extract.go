// Package extract connects to live databases and pulls their schema
// metadata into the transfer envelope format. It supports PostgreSQL,
// MySQL and SQLite through one extractor per engine, each reading the
// engine's native catalog.
package extract

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/datamimic/metaextractor"
)

// Options control a single extraction run.
type Options struct {
	// Engine is the caller-supplied database type tag, parsed
	// case-insensitively. See metaextractor.ParseEngine for the accepted
	// spellings.
	Engine string

	// ConnectionString is the URL-form database address
	// (postgres://..., mysql://..., sqlite://...).
	ConnectionString string

	// Filter selects the schema (PostgreSQL) or database (MySQL) to
	// extract. SQLite ignores it. Empty means the engine default.
	Filter string

	// Provenance is stamped into both source fields of the envelope.
	// Empty leaves them unset.
	Provenance string

	// Logger receives stage-level debug output during extraction.
	Logger zerolog.Logger
}

// Extract connects to the database, pulls the full schema metadata and
// wraps it in a transfer envelope stamped with the current time.
func Extract(ctx context.Context, opts Options) (*metaextractor.Envelope, error) {
	engine, err := metaextractor.ParseEngine(opts.Engine)
	if err != nil {
		return nil, err
	}

	connector := NewConnector()

	db, err := connector.Connect(opts.ConnectionString)
	if err != nil {
		return nil, err
	}
	defer connector.Close(db)

	if err := connector.Ping(ctx, db); err != nil {
		return nil, err
	}

	extractor, err := NewExtractor(engine, db, opts.Logger)
	if err != nil {
		return nil, err
	}

	metadata, err := extractor.ExtractFullMetadata(ctx, opts.Filter)
	if err != nil {
		return nil, err
	}

	return NewEnvelope(metadata, opts.Provenance), nil
}

// NewEnvelope wraps extracted metadata in a fresh transfer envelope. The
// creation and update timestamps share a single clock reading so they are
// always identical on a new snapshot.
func NewEnvelope(metadata *metaextractor.Database, provenance string) *metaextractor.Envelope {
	now := time.Now().UTC()

	envelope := &metaextractor.Envelope{
		CreatedAt: &now,
		UpdatedAt: &now,
		Metadata:  metadata,
	}

	if provenance != "" {
		envelope.CreationSource = &provenance
		envelope.UpdateSource = &provenance
	}

	return envelope
}
