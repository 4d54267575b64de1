package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hyperjump/memefeed/internal/config"
	"github.com/hyperjump/memefeed/internal/feedback"
	"github.com/hyperjump/memefeed/internal/keyword"
	"github.com/hyperjump/memefeed/internal/metrics"
	"github.com/hyperjump/memefeed/internal/models"
	"github.com/hyperjump/memefeed/internal/vector"
	"github.com/hyperjump/memefeed/pkg/utils"
	"go.uber.org/zap"
)

// ErrSearchDisabled is returned by Search when no keyword index is configured.
var ErrSearchDisabled = errors.New("identifier search is disabled")

// KeywordIndex is the identifier search backend used by Engine.Search.
type KeywordIndex interface {
	IndexStore(ctx context.Context, store *vector.Store) error
	Search(ctx context.Context, query string, limit int) ([]*keyword.KeywordResult, error)
}

// Engine owns the vector store and the session's feedback log.
// It is safe for concurrent use: the store is immutable and swapped atomically,
// and the log hands out copy-on-read snapshots.
type Engine struct {
	store    atomic.Pointer[vector.Store]
	reloadMu sync.Mutex
	log      *feedback.Log
	config   *config.RecommendConfig
	logger   *zap.Logger
	keywords KeywordIndex
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithKeywordIndex enables identifier search. The caller must have indexed the initial store.
func WithKeywordIndex(idx KeywordIndex) EngineOption {
	return func(e *Engine) { e.keywords = idx }
}

// WithFeedbackLog replaces the engine's empty log.
func WithFeedbackLog(l *feedback.Log) EngineOption {
	return func(e *Engine) { e.log = l }
}

// NewEngine creates an engine over store. A nil cfg or logger is replaced with defaults.
func NewEngine(store *vector.Store, cfg *config.RecommendConfig, logger *zap.Logger, opts ...EngineOption) *Engine {
	if cfg == nil {
		cfg = &config.RecommendConfig{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		log:    feedback.NewLog(),
		config: cfg,
		logger: logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.store.Store(store)
	metrics.StoreItems.Set(float64(store.Size()))
	return e
}

// Store returns the active vector store.
func (e *Engine) Store() *vector.Store {
	return e.store.Load()
}

// Recommend returns the top k items for the current preference vector, best first.
// k <= 0 yields an empty list; k larger than the store is clamped.
func (e *Engine) Recommend(k int) []models.Recommendation {
	start := time.Now()
	store := e.store.Load()
	pref, _ := e.preference(store)
	scored := vector.RankScored(pref, store, k)

	out := make([]models.Recommendation, len(scored))
	for i, s := range scored {
		path, _ := store.IdentifierAt(s.Index)
		out[i] = models.Recommendation{Index: s.Index, Path: path, Score: s.Score}
	}

	metrics.RecommendationsTotal.Inc()
	metrics.RecommendDuration.Observe(time.Since(start).Seconds())
	e.logger.Debug("recommendations computed",
		zap.Int("k", k),
		zap.Int("returned", len(out)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return out
}

// Preference returns the current preference vector and whether any like contributed to it.
func (e *Engine) Preference() ([]float32, bool) {
	pref, used := e.preference(e.store.Load())
	return pref, used > 0
}

func (e *Engine) preference(store *vector.Store) ([]float32, int) {
	liked := e.log.LikedIndices()
	pref, used := aggregate(liked, store)
	if skipped := len(liked) - used; skipped > 0 {
		e.logger.Debug("liked indices skipped during aggregation", zap.Int("skipped", skipped))
	}
	if used > 0 && e.config.NormalizePreference {
		utils.NormalizeL2(pref)
	}
	return pref, used
}

// RecordFeedback appends a like or skip for index. An out-of-range index returns
// *vector.IndexError and leaves the log unchanged.
func (e *Engine) RecordFeedback(action feedback.Action, index int) (*models.FeedbackResult, error) {
	ev, err := e.log.Append(action, index, e.store.Load())
	if err != nil {
		metrics.FeedbackRejectedTotal.Inc()
		e.logger.Debug("feedback rejected", zap.String("action", string(action)), zap.Int("index", index), zap.Error(err))
		return nil, err
	}
	metrics.FeedbackEventsTotal.WithLabelValues(string(action)).Inc()
	total, liked, _ := e.log.Counts()
	e.logger.Debug("feedback recorded",
		zap.String("id", ev.ID),
		zap.String("action", string(action)),
		zap.Int("index", index),
		zap.Int("liked_count", liked),
	)
	return &models.FeedbackResult{
		ID:            ev.ID,
		Action:        string(ev.Action),
		Index:         ev.Index,
		AcceptedCount: total,
		LikedCount:    liked,
	}, nil
}

// Status returns item count, dimension and feedback counters.
func (e *Engine) Status() models.Status {
	store := e.store.Load()
	total, liked, skipped := e.log.Counts()
	return models.Status{
		ItemCount:     store.Size(),
		Dimension:     store.Dimension(),
		LikedCount:    liked,
		SkippedCount:  skipped,
		FeedbackCount: total,
		SearchEnabled: e.keywords != nil,
	}
}

// Item returns the identifier stored at index.
func (e *Engine) Item(index int) (models.Item, error) {
	path, err := e.store.Load().IdentifierAt(index)
	if err != nil {
		return models.Item{}, err
	}
	return models.Item{Index: index, Path: path}, nil
}

// Search finds items whose identifiers match query.
func (e *Engine) Search(ctx context.Context, query string, limit int) ([]models.SearchHit, error) {
	if e.keywords == nil {
		return nil, ErrSearchDisabled
	}
	results, err := e.keywords.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("keyword search failed: %w", err)
	}
	store := e.store.Load()
	hits := make([]models.SearchHit, 0, len(results))
	for _, r := range results {
		path, err := store.IdentifierAt(r.Index)
		if err != nil {
			continue
		}
		hits = append(hits, models.SearchHit{Index: r.Index, Path: path, Score: r.Score})
	}
	return hits, nil
}

// ReplaceStore swaps in a freshly loaded store. The new store must have the same
// number of items so that recorded feedback indices stay valid; otherwise the
// current store is kept and an error is returned.
func (e *Engine) ReplaceStore(ctx context.Context, store *vector.Store) error {
	e.reloadMu.Lock()
	defer e.reloadMu.Unlock()
	current := e.store.Load()
	if store.Size() != current.Size() {
		return fmt.Errorf("store size changed from %d to %d items; restart to load a different item set",
			current.Size(), store.Size())
	}
	e.store.Store(store)
	metrics.StoreItems.Set(float64(store.Size()))
	if e.keywords != nil {
		if err := e.keywords.IndexStore(ctx, store); err != nil {
			e.logger.Warn("keyword reindex failed", zap.Error(err))
		}
	}
	e.logger.Info("vector store replaced",
		zap.Int("items", store.Size()),
		zap.Int("dimension", store.Dimension()),
	)
	return nil
}
