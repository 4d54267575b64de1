// Package storage loads embedding tables and identifier lists from disk.
package storage

import (
	"fmt"

	"github.com/hyperjump/memefeed/internal/config"
	"github.com/hyperjump/memefeed/internal/vector"
	"go.uber.org/zap"
)

// Sources pairs the embedding and identifier sources for one configured backend.
type Sources struct {
	Embeddings  vector.EmbeddingSource
	Identifiers vector.IdentifierSource
	closer      func() error
}

// Close releases any resources held by the sources.
func (s *Sources) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

// OpenSources returns the sources for cfg.Source: "csv" reads the embeddings CSV and
// identifier JSON; "sqlite" reads both from the items table.
func OpenSources(cfg config.DataConfig, logger *zap.Logger) (*Sources, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Source {
	case config.SourceCSV, "":
		return &Sources{
			Embeddings:  &CSVTable{Path: cfg.EmbeddingsPath, Logger: logger},
			Identifiers: &JSONIdentifiers{Path: cfg.IdentifiersPath},
		}, nil
	case config.SourceSQLite:
		db, err := NewSQLiteStorage(cfg.DatabasePath)
		if err != nil {
			return nil, err
		}
		return &Sources{Embeddings: db, Identifiers: db, closer: db.Close}, nil
	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.Source)
	}
}
