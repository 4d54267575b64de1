package main

import (
	"context"
	"fmt"

	"github.com/hyperjump/memefeed/internal/config"
	"github.com/hyperjump/memefeed/internal/keyword"
	"github.com/hyperjump/memefeed/internal/metrics"
	"github.com/hyperjump/memefeed/internal/recommend"
	"github.com/hyperjump/memefeed/internal/storage"
	"github.com/hyperjump/memefeed/internal/vector"
	"go.uber.org/zap"
)

// Components holds the long-lived pieces built from config.
type Components struct {
	Engine   *recommend.Engine
	Keywords *keyword.BleveIndex
	config   *config.Config
	logger   *zap.Logger
}

// Close releases the keyword index.
func (c *Components) Close() {
	if c.Keywords != nil {
		if err := c.Keywords.Close(); err != nil {
			c.logger.Warn("keyword index close failed", zap.Error(err))
		}
	}
}

// loadStore opens the configured sources and builds a store. Failures are *vector.LoadError.
func loadStore(ctx context.Context, data config.DataConfig, logger *zap.Logger) (*vector.Store, error) {
	src, err := storage.OpenSources(data, logger)
	if err != nil {
		return nil, &vector.LoadError{Reason: vector.ReasonSource, Row: -1, Msg: "open sources", Err: err}
	}
	defer src.Close()
	return vector.Load(ctx, src.Embeddings, src.Identifiers)
}

func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := loadStore(ctx, cfg.Data, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("vector store loaded",
		zap.Int("items", store.Size()),
		zap.Int("dimension", store.Dimension()),
	)

	c := &Components{config: cfg, logger: logger}
	var opts []recommend.EngineOption
	if cfg.Search.EnabledOrDefault() {
		idx, err := keyword.NewBleveIndex(cfg.Search.IndexPath)
		if err != nil {
			return nil, err
		}
		if err := idx.IndexStore(ctx, store); err != nil {
			_ = idx.Close()
			return nil, fmt.Errorf("failed to index identifiers: %w", err)
		}
		c.Keywords = idx
		opts = append(opts, recommend.WithKeywordIndex(idx))
	}
	c.Engine = recommend.NewEngine(store, &cfg.Recommend, logger, opts...)
	return c, nil
}

// Reload rebuilds the store from the data files and swaps it into the engine.
// The current store keeps serving when loading or swapping fails.
func (c *Components) Reload(ctx context.Context) error {
	store, err := loadStore(ctx, c.config.Data, c.logger)
	if err != nil {
		metrics.StoreReloadsTotal.WithLabelValues("load_error").Inc()
		return err
	}
	if err := c.Engine.ReplaceStore(ctx, store); err != nil {
		metrics.StoreReloadsTotal.WithLabelValues("rejected").Inc()
		return err
	}
	metrics.StoreReloadsTotal.WithLabelValues("ok").Inc()
	return nil
}
