package storage

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-json"
)

// JSONIdentifiers reads a JSON array of item identifiers, index-aligned with the embedding table.
type JSONIdentifiers struct {
	Path string
}

// LoadIdentifiers implements vector.IdentifierSource.
func (j *JSONIdentifiers) LoadIdentifiers(ctx context.Context) ([]string, error) {
	data, err := os.ReadFile(j.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read identifiers: %w", err)
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("failed to parse identifiers %s: %w", j.Path, err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// WriteIdentifiers writes ids as a JSON array to path.
func WriteIdentifiers(path string, ids []string) error {
	data, err := json.MarshalIndent(ids, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal identifiers: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
