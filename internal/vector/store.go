// Package vector provides the immutable embedding store and cosine top-k ranking.
package vector

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// EmbeddingSource supplies the raw embedding table, one row per item.
type EmbeddingSource interface {
	LoadEmbeddingTable(ctx context.Context) ([][]float32, error)
}

// IdentifierSource supplies display identifiers, index-aligned with the embedding table.
type IdentifierSource interface {
	LoadIdentifiers(ctx context.Context) ([]string, error)
}

// Store holds item embeddings and their display identifiers.
// It has no mutation API, so concurrent reads need no locking.
type Store struct {
	dimensions  int
	identifiers []string
	vectors     [][]float32
}

// Load reads both sources and builds a Store. Any failure is a *LoadError.
func Load(ctx context.Context, table EmbeddingSource, ids IdentifierSource) (*Store, error) {
	rows, err := table.LoadEmbeddingTable(ctx)
	if err != nil {
		return nil, &LoadError{Reason: ReasonSource, Row: -1, Msg: "embedding table", Err: err}
	}
	identifiers, err := ids.LoadIdentifiers(ctx)
	if err != nil {
		return nil, &LoadError{Reason: ReasonSource, Row: -1, Msg: "identifiers", Err: err}
	}
	return NewStore(rows, identifiers)
}

// NewStore validates rows and identifiers and copies them into a new Store.
// The dimension is taken from the first row; every other row must match it.
func NewStore(rows [][]float32, identifiers []string) (*Store, error) {
	if len(rows) != len(identifiers) {
		return nil, &LoadError{
			Reason: ReasonRowCountMismatch,
			Row:    -1,
			Msg:    fmt.Sprintf("%d embedding rows, %d identifiers", len(rows), len(identifiers)),
		}
	}
	s := &Store{
		identifiers: make([]string, len(identifiers)),
		vectors:     make([][]float32, len(rows)),
	}
	copy(s.identifiers, identifiers)
	if len(rows) == 0 {
		return s, nil
	}
	s.dimensions = len(rows[0])
	if s.dimensions == 0 {
		return nil, &LoadError{Reason: ReasonMalformedRow, Row: 0, Msg: "empty row"}
	}
	for i, row := range rows {
		if len(row) != s.dimensions {
			return nil, &LoadError{
				Reason: ReasonMalformedRow,
				Row:    i,
				Msg:    fmt.Sprintf("row %d has width %d, expected %d", i, len(row), s.dimensions),
			}
		}
		vec := make([]float32, s.dimensions)
		copy(vec, row)
		s.vectors[i] = vec
	}
	return s, nil
}

// Size returns the number of items.
func (s *Store) Size() int {
	return len(s.vectors)
}

// Dimension returns the embedding width, or 0 for an empty store.
func (s *Store) Dimension() int {
	return s.dimensions
}

// EmbeddingAt returns a copy of the embedding at index i.
func (s *Store) EmbeddingAt(i int) ([]float32, error) {
	if err := s.checkIndex(i); err != nil {
		return nil, err
	}
	out := make([]float32, s.dimensions)
	copy(out, s.vectors[i])
	return out, nil
}

// IdentifierAt returns the display identifier at index i.
func (s *Store) IdentifierAt(i int) (string, error) {
	if err := s.checkIndex(i); err != nil {
		return "", err
	}
	return s.identifiers[i], nil
}

// Identifiers returns a copy of all identifiers in index order.
func (s *Store) Identifiers() []string {
	return append([]string(nil), s.identifiers...)
}

// Contains reports whether i is a valid item index.
func (s *Store) Contains(i int) bool {
	return i >= 0 && i < len(s.vectors)
}

func (s *Store) checkIndex(i int) error {
	if !s.Contains(i) {
		return &IndexError{Index: i, Size: len(s.vectors)}
	}
	return nil
}

// vectorAt returns the stored slice without copying. Callers must not modify it.
func (s *Store) vectorAt(i int) []float32 {
	return s.vectors[i]
}

// Token is the result of parsing one numeric field of the embedding table.
// Defaulted is set when the field was not a finite number and Value was replaced by 0.
type Token struct {
	Value     float32
	Defaulted bool
}

// ParseToken parses a single table field. It never fails: unparseable or
// non-finite input yields a zero value marked Defaulted.
func ParseToken(s string) Token {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Token{Defaulted: true}
	}
	return Token{Value: float32(f)}
}
