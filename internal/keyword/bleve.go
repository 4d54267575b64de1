package keyword

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
	"github.com/hyperjump/memefeed/internal/vector"
)

const (
	batchSize = 500
	fuzziness = 1
)

// BleveIndex indexes item identifiers with Bleve.
type BleveIndex struct {
	index bleve.Index
}

func newMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	nameField := bleve.NewTextFieldMapping()
	// Standard analyzer: lowercase + tokenize, no stemming, so "cats" does not match "cat".
	nameField.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("name", nameField)
	pathField := bleve.NewKeywordFieldMapping()
	pathField.Index = false
	docMapping.AddFieldMappingsAt("path", pathField)

	im.AddDocumentMapping("item", docMapping)
	im.DefaultType = "item"
	im.DefaultMapping = docMapping
	return im
}

// NewBleveIndex creates or opens a Bleve index at path. An empty path keeps the index in memory.
func NewBleveIndex(path string) (*BleveIndex, error) {
	if path == "" {
		index, err := bleve.NewMemOnly(newMapping())
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory Bleve index: %w", err)
		}
		return &BleveIndex{index: index}, nil
	}

	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &BleveIndex{index: index}, nil
	}

	index, err := bleve.New(path, newMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// IndexStore indexes every identifier in store under its position and removes
// documents left over from a larger, previously indexed store.
func (b *BleveIndex) IndexStore(ctx context.Context, store *vector.Store) error {
	ids := store.Identifiers()
	batch := b.index.NewBatch()
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc := itemDoc{Name: DocumentName(id), Path: id}
		if err := batch.Index(strconv.Itoa(i), doc); err != nil {
			return fmt.Errorf("failed to add item %d to batch: %w", i, err)
		}
		if batch.Size() >= batchSize {
			if err := b.index.Batch(batch); err != nil {
				return fmt.Errorf("failed to index batch: %w", err)
			}
			batch.Reset()
		}
	}
	if batch.Size() > 0 {
		if err := b.index.Batch(batch); err != nil {
			return fmt.Errorf("failed to index batch: %w", err)
		}
	}
	return b.pruneFrom(ctx, len(ids))
}

func (b *BleveIndex) pruneFrom(ctx context.Context, size int) error {
	count, err := b.index.DocCount()
	if err != nil {
		return fmt.Errorf("failed to get doc count: %w", err)
	}
	if count <= uint64(size) {
		return nil
	}
	req := bleve.NewSearchRequest(bleve.NewMatchAllQuery())
	req.Size = int(count)
	results, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to list indexed items: %w", err)
	}
	batch := b.index.NewBatch()
	for _, hit := range results.Hits {
		if idx, err := strconv.Atoi(hit.ID); err != nil || idx >= size {
			batch.Delete(hit.ID)
		}
	}
	if err := b.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to prune stale items: %w", err)
	}
	return nil
}

// Search runs a match query over item names and returns up to limit results, best first.
// When the exact terms match nothing, a fuzzy query tolerates one typo per term.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int) ([]*KeywordResult, error) {
	if strings.TrimSpace(query) == "" || limit <= 0 {
		return []*KeywordResult{}, nil
	}
	mq := bleve.NewMatchQuery(query)
	mq.SetField("name")
	out, err := b.run(ctx, mq, limit)
	if err != nil || len(out) > 0 {
		return out, err
	}
	return b.run(ctx, buildFuzzyQuery(query), limit)
}

func (b *BleveIndex) run(ctx context.Context, q blevequery.Query, limit int) ([]*KeywordResult, error) {
	req := bleve.NewSearchRequest(q)
	req.Size = limit
	results, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	out := make([]*KeywordResult, 0, len(results.Hits))
	for _, hit := range results.Hits {
		idx, err := strconv.Atoi(hit.ID)
		if err != nil {
			continue
		}
		out = append(out, &KeywordResult{Index: idx, Score: hit.Score})
	}
	return out, nil
}

// buildFuzzyQuery creates a disjunction of FuzzyQueries, one per query term.
func buildFuzzyQuery(queryStr string) blevequery.Query {
	terms := strings.Fields(strings.ToLower(queryStr))
	queries := make([]blevequery.Query, 0, len(terms))
	for _, term := range terms {
		fq := bleve.NewFuzzyQuery(term)
		fq.SetFuzziness(fuzziness)
		fq.SetField("name")
		queries = append(queries, fq)
	}
	return bleve.NewDisjunctionQuery(queries...)
}

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}

// DocCount returns the total number of documents in the index.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}
