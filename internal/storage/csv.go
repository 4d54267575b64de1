package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hyperjump/memefeed/internal/vector"
	"go.uber.org/zap"
)

// CSVTable reads an embedding table with one comma-separated row per item and no header.
// Rows may differ in width here; the store rejects inconsistent widths.
type CSVTable struct {
	Path   string
	Logger *zap.Logger
}

// LoadEmbeddingTable implements vector.EmbeddingSource.
func (c *CSVTable) LoadEmbeddingTable(ctx context.Context) ([][]float32, error) {
	f, err := os.Open(c.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open embeddings: %w", err)
	}
	defer f.Close()
	return c.read(ctx, f)
}

func (c *CSVTable) read(ctx context.Context, r io.Reader) ([][]float32, error) {
	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	var rows [][]float32
	defaulted := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read embeddings row %d: %w", len(rows), err)
		}
		// A trailing comma does not add a column.
		if n := len(record); n > 1 && strings.TrimSpace(record[n-1]) == "" {
			record = record[:n-1]
		}
		row := make([]float32, len(record))
		for j, field := range record {
			tok := vector.ParseToken(field)
			if tok.Defaulted {
				defaulted++
				logger.Warn("malformed embedding value replaced with 0",
					zap.String("path", c.Path),
					zap.Int("row", len(rows)),
					zap.Int("column", j),
					zap.String("token", field),
				)
			}
			row[j] = tok.Value
		}
		rows = append(rows, row)
	}
	logger.Debug("embedding table read",
		zap.String("path", c.Path),
		zap.Int("rows", len(rows)),
		zap.Int("defaulted_values", defaulted),
	)
	return rows, nil
}
